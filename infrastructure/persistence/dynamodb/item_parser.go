package dynamodb

import (
	"strconv"

	"itemname-api/domain/core/entities"
	"itemname-api/domain/core/valueobjects"
	pkgerrors "itemname-api/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Attribute names of a catalog record
const (
	AttrID               = "ID"
	AttrIcon             = "Icon"
	AttrCategory         = "ItemSearchCategory"
	AttrCategoryID       = "ID"
	AttrCategoryName     = "Name"
	AttrEorzeaDatabaseID = "EorzeaDatabaseId"
)

// Decode failure reasons
const (
	ReasonMissing   = "missing"
	ReasonWrongType = "of the wrong type"
	ReasonMalformed = "malformed"
)

// nameOrder is the order in which localized names are checked
var nameOrder = []valueobjects.Language{
	valueobjects.LanguageGerman,
	valueobjects.LanguageEnglish,
	valueobjects.LanguageFrench,
	valueobjects.LanguageJapanese,
}

// ItemParser converts between DynamoDB attribute maps and catalog items.
// The same parser decodes scan pages, batch-get responses and snapshot records.
type ItemParser struct{}

// NewItemParser creates a new item parser instance
func NewItemParser() *ItemParser {
	return &ItemParser{}
}

// FromItem decodes a raw record. Required fields are checked in a fixed order and
// the first problem is reported; no partial item is ever returned.
func (p *ItemParser) FromItem(item map[string]types.AttributeValue) (*entities.Item, error) {
	rawID, reason := numberAttr(item, AttrID)
	if reason != "" {
		return nil, pkgerrors.NewDecodeError(AttrID, reason)
	}
	id, err := valueobjects.ParseItemID(rawID)
	if err != nil {
		return nil, pkgerrors.NewDecodeError(AttrID, ReasonMalformed).WithCause(err)
	}

	icon, reason := stringAttr(item, AttrIcon)
	if reason != "" {
		return nil, pkgerrors.NewDecodeError(AttrIcon, reason)
	}

	names := make(map[valueobjects.Language]string, len(nameOrder))
	for _, lang := range nameOrder {
		name, reason := stringAttr(item, lang.FieldName())
		if reason != "" {
			return nil, pkgerrors.NewDecodeError(lang.FieldName(), reason)
		}
		names[lang] = name
	}

	eorzeaDatabaseID, reason := stringAttr(item, AttrEorzeaDatabaseID)
	if reason != "" {
		return nil, pkgerrors.NewDecodeError(AttrEorzeaDatabaseID, reason)
	}

	category, err := p.parseCategory(item[AttrCategory])
	if err != nil {
		return nil, err
	}

	return entities.NewItem(entities.ItemParams{
		ID:               id,
		Icon:             icon,
		Category:         category,
		NameDE:           names[valueobjects.LanguageGerman],
		NameEN:           names[valueobjects.LanguageEnglish],
		NameFR:           names[valueobjects.LanguageFrench],
		NameJA:           names[valueobjects.LanguageJapanese],
		EorzeaDatabaseID: eorzeaDatabaseID,
	}), nil
}

// parseCategory decodes the optional category map. Anything that is not a map
// yields an empty category.
func (p *ItemParser) parseCategory(av types.AttributeValue) (entities.ItemCategory, error) {
	m, ok := av.(*types.AttributeValueMemberM)
	if !ok {
		return entities.NewItemCategory(nil, nil), nil
	}

	var id *uint32
	if raw, reason := numberAttr(m.Value, AttrCategoryID); reason == "" {
		n, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return entities.ItemCategory{}, pkgerrors.NewDecodeError(AttrCategory+"."+AttrCategoryID, ReasonMalformed).WithCause(err)
		}
		v := uint32(n)
		id = &v
	}

	var name *string
	if s, reason := stringAttr(m.Value, AttrCategoryName); reason == "" {
		name = &s
	}

	return entities.NewItemCategory(id, name), nil
}

// ToItem encodes an item in the record layout FromItem reads
func (p *ItemParser) ToItem(i *entities.Item) map[string]types.AttributeValue {
	item := map[string]types.AttributeValue{
		AttrID:               &types.AttributeValueMemberN{Value: i.ID().String()},
		AttrIcon:             &types.AttributeValueMemberS{Value: i.Icon()},
		AttrEorzeaDatabaseID: &types.AttributeValueMemberS{Value: i.EorzeaDatabaseID()},
	}
	for _, lang := range nameOrder {
		item[lang.FieldName()] = &types.AttributeValueMemberS{Value: i.Name(lang)}
	}

	category := map[string]types.AttributeValue{
		AttrCategoryID:   &types.AttributeValueMemberNULL{Value: true},
		AttrCategoryName: &types.AttributeValueMemberNULL{Value: true},
	}
	if id, ok := i.Category().ID(); ok {
		category[AttrCategoryID] = &types.AttributeValueMemberN{Value: strconv.FormatUint(uint64(id), 10)}
	}
	if name, ok := i.Category().Name(); ok {
		category[AttrCategoryName] = &types.AttributeValueMemberS{Value: name}
	}
	item[AttrCategory] = &types.AttributeValueMemberM{Value: category}

	return item
}

// stringAttr returns the S value at key, or the reason there is none.
// An explicit NULL counts as missing.
func stringAttr(item map[string]types.AttributeValue, key string) (string, string) {
	if reason := presence(item, key); reason != "" {
		return "", reason
	}
	av, ok := item[key].(*types.AttributeValueMemberS)
	if !ok {
		return "", ReasonWrongType
	}
	return av.Value, ""
}

// numberAttr returns the N value at key, or the reason there is none
func numberAttr(item map[string]types.AttributeValue, key string) (string, string) {
	if reason := presence(item, key); reason != "" {
		return "", reason
	}
	av, ok := item[key].(*types.AttributeValueMemberN)
	if !ok {
		return "", ReasonWrongType
	}
	return av.Value, ""
}

func presence(item map[string]types.AttributeValue, key string) string {
	av, ok := item[key]
	if !ok || av == nil {
		return ReasonMissing
	}
	if _, isNull := av.(*types.AttributeValueMemberNULL); isNull {
		return ReasonMissing
	}
	return ""
}
