package entities

import (
	"testing"

	"itemname-api/domain/core/valueobjects"

	"github.com/stretchr/testify/assert"
)

func u32(v uint32) *uint32 { return &v }
func str(v string) *string { return &v }

func item(id uint32, category ItemCategory) *Item {
	return NewItem(ItemParams{ID: valueobjects.ItemID(id), Category: category})
}

func TestItemCategory(t *testing.T) {
	t.Run("Should copy optional parts", func(t *testing.T) {
		id, name := uint32(58), "Medicine"
		c := NewItemCategory(&id, &name)
		id, name = 0, ""

		gotID, ok := c.ID()
		assert.True(t, ok)
		assert.Equal(t, uint32(58), gotID)
		gotName, ok := c.Name()
		assert.True(t, ok)
		assert.Equal(t, "Medicine", gotName)
	})

	t.Run("Should report absent parts", func(t *testing.T) {
		c := NewItemCategory(nil, nil)
		_, ok := c.ID()
		assert.False(t, ok)
		_, ok = c.Name()
		assert.False(t, ok)
		assert.Equal(t, uint32(0), c.SortKey())
	})
}

func TestItem_Less(t *testing.T) {
	t.Run("Should order by category id first", func(t *testing.T) {
		a := item(9, NewItemCategory(u32(1), nil))
		b := item(1, NewItemCategory(u32(2), nil))
		assert.True(t, a.Less(b))
		assert.False(t, b.Less(a))
	})

	t.Run("Should break ties by item id", func(t *testing.T) {
		a := item(1, NewItemCategory(u32(5), str("x")))
		b := item(2, NewItemCategory(u32(5), str("y")))
		assert.True(t, a.Less(b))
		assert.False(t, b.Less(a))
	})

	t.Run("Should sort a missing category id like zero", func(t *testing.T) {
		missing := item(3, NewItemCategory(nil, str("Unknown")))
		zero := item(4, NewItemCategory(u32(0), nil))
		one := item(1, NewItemCategory(u32(1), nil))
		assert.True(t, missing.Less(zero))
		assert.True(t, zero.Less(one))
		assert.True(t, missing.Less(one))
	})
}

func TestItem_Name(t *testing.T) {
	i := NewItem(ItemParams{
		ID:     1,
		NameDE: "Trank",
		NameEN: "Potion",
		NameFR: "Potion (fr)",
		NameJA: "ポーション",
	})

	assert.Equal(t, "Trank", i.Name(valueobjects.LanguageGerman))
	assert.Equal(t, "Potion", i.Name(valueobjects.LanguageEnglish))
	assert.Equal(t, "Potion (fr)", i.Name(valueobjects.LanguageFrench))
	assert.Equal(t, "ポーション", i.Name(valueobjects.LanguageJapanese))
}
