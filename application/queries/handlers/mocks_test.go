package handlers

import (
	"context"

	"itemname-api/domain/core/entities"
	"itemname-api/domain/core/valueobjects"

	"github.com/stretchr/testify/mock"
)

// MockItemRepository is a mock implementation of ports.ItemRepository
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) FindByIDs(ctx context.Context, ids []valueobjects.ItemID) ([]*entities.Item, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Item), args.Error(1)
}

func (m *MockItemRepository) SearchByName(ctx context.Context, lang valueobjects.Language, text string) ([]*entities.Item, error) {
	args := m.Called(ctx, lang, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Item), args.Error(1)
}

func newTestItem(id uint32, categoryID *uint32, nameEN string) *entities.Item {
	return entities.NewItem(entities.ItemParams{
		ID:               valueobjects.ItemID(id),
		Icon:             "/i/000000/000001.png",
		Category:         entities.NewItemCategory(categoryID, nil),
		NameDE:           nameEN + " (de)",
		NameEN:           nameEN,
		NameFR:           nameEN + " (fr)",
		NameJA:           nameEN + " (ja)",
		EorzeaDatabaseID: "db" + nameEN,
	})
}

func u32(v uint32) *uint32 { return &v }
