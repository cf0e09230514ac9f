package entities

import (
	"itemname-api/domain/core/valueobjects"
)

// ItemCategory is the search category an item is filed under. Both fields are
// independently optional; a nil pointer means the catalog has no value.
type ItemCategory struct {
	id   *uint32
	name *string
}

// NewItemCategory creates a category from optional parts
func NewItemCategory(id *uint32, name *string) ItemCategory {
	c := ItemCategory{}
	if id != nil {
		v := *id
		c.id = &v
	}
	if name != nil {
		v := *name
		c.name = &v
	}
	return c
}

// ID returns the category id and whether it is present
func (c ItemCategory) ID() (uint32, bool) {
	if c.id == nil {
		return 0, false
	}
	return *c.id, true
}

// Name returns the category name and whether it is present
func (c ItemCategory) Name() (string, bool) {
	if c.name == nil {
		return "", false
	}
	return *c.name, true
}

// SortKey is the category id used for ordering results. A missing id sorts as 0,
// the same as an explicit 0.
func (c ItemCategory) SortKey() uint32 {
	id, _ := c.ID()
	return id
}

// ItemParams carries every field needed to build an Item
type ItemParams struct {
	ID               valueobjects.ItemID
	Icon             string
	Category         ItemCategory
	NameDE           string
	NameEN           string
	NameFR           string
	NameJA           string
	EorzeaDatabaseID string
}

// Item is a catalog entry. It is immutable once constructed.
type Item struct {
	id               valueobjects.ItemID
	icon             string
	category         ItemCategory
	names            map[valueobjects.Language]string
	eorzeaDatabaseID string
}

// NewItem builds an Item from already validated parts
func NewItem(p ItemParams) *Item {
	return &Item{
		id:       p.ID,
		icon:     p.Icon,
		category: p.Category,
		names: map[valueobjects.Language]string{
			valueobjects.LanguageGerman:   p.NameDE,
			valueobjects.LanguageEnglish:  p.NameEN,
			valueobjects.LanguageFrench:   p.NameFR,
			valueobjects.LanguageJapanese: p.NameJA,
		},
		eorzeaDatabaseID: p.EorzeaDatabaseID,
	}
}

// Getters

func (i *Item) ID() valueobjects.ItemID  { return i.id }
func (i *Item) Icon() string             { return i.icon }
func (i *Item) Category() ItemCategory   { return i.category }
func (i *Item) EorzeaDatabaseID() string { return i.eorzeaDatabaseID }

// Name returns the item's name in the given language
func (i *Item) Name(lang valueobjects.Language) string {
	return i.names[lang]
}

// Less reports whether i is ordered before other: by category id (missing as 0),
// then by item id.
func (i *Item) Less(other *Item) bool {
	a, b := i.category.SortKey(), other.category.SortKey()
	if a != b {
		return a < b
	}
	return i.id < other.id
}
