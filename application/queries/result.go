package queries

import (
	"slices"

	"itemname-api/domain/core/entities"
	"itemname-api/domain/core/valueobjects"
)

// CategoryView is the wire form of an item's search category. Absent parts
// serialize as null.
type CategoryView struct {
	ID   *uint32 `json:"ID"`
	Name *string `json:"Name"`
}

// ItemView is the wire form of a single item
type ItemView struct {
	ID                 uint32       `json:"ID"`
	Icon               string       `json:"Icon"`
	ItemSearchCategory CategoryView `json:"ItemSearchCategory"`
	NameDE             string       `json:"Name_de"`
	NameEN             string       `json:"Name_en"`
	NameFR             string       `json:"Name_fr"`
	NameJA             string       `json:"Name_ja"`
	EorzeaDatabaseID   string       `json:"EorzeaDatabaseId"`
}

// ItemsResult pairs the echoed request condition with the matching items
type ItemsResult[C any] struct {
	Condition C          `json:"Condition"`
	Results   []ItemView `json:"Results"`
}

// NewItemView converts a domain item to its wire form
func NewItemView(item *entities.Item) ItemView {
	view := ItemView{
		ID:               item.ID().Uint32(),
		Icon:             item.Icon(),
		NameDE:           item.Name(valueobjects.LanguageGerman),
		NameEN:           item.Name(valueobjects.LanguageEnglish),
		NameFR:           item.Name(valueobjects.LanguageFrench),
		NameJA:           item.Name(valueobjects.LanguageJapanese),
		EorzeaDatabaseID: item.EorzeaDatabaseID(),
	}

	category := item.Category()
	if id, ok := category.ID(); ok {
		view.ItemSearchCategory.ID = &id
	}
	if name, ok := category.Name(); ok {
		view.ItemSearchCategory.Name = &name
	}
	return view
}

// AssembleItemsResult sorts items by category id then item id and pairs them
// with condition. The input slice is left untouched.
func AssembleItemsResult[C any](condition C, items []*entities.Item) *ItemsResult[C] {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b *entities.Item) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		default:
			return 0
		}
	})

	results := make([]ItemView, 0, len(sorted))
	for _, item := range sorted {
		results = append(results, NewItemView(item))
	}

	return &ItemsResult[C]{
		Condition: condition,
		Results:   results,
	}
}
