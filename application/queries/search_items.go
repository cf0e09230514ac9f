package queries

import (
	"fmt"

	"itemname-api/domain/core/valueobjects"
	pkgerrors "itemname-api/pkg/errors"
	"itemname-api/pkg/utils"
)

// SearchItemsQuery represents a substring search over one language's names
type SearchItemsQuery struct {
	Language valueobjects.Language `validate:"required,oneof=de fr en ja"`
	Text     string
}

// ParseSearchItemsQuery builds a SearchItemsQuery from raw query parameters.
// The text is used verbatim; an empty string is allowed and matches everything.
func ParseSearchItemsQuery(params map[string]string) (SearchItemsQuery, error) {
	code, ok := params[ParamLanguage]
	if !ok {
		return SearchItemsQuery{}, missingParam(ParamLanguage)
	}

	lang, err := valueobjects.ParseLanguage(code)
	if err != nil {
		return SearchItemsQuery{}, pkgerrors.NewBadRequestError(fmt.Sprintf("language '%s' is invalid.", code))
	}

	text, ok := params[ParamString]
	if !ok {
		return SearchItemsQuery{}, missingParam(ParamString)
	}

	return SearchItemsQuery{Language: lang, Text: text}, nil
}

// Validate validates the SearchItemsQuery
func (q SearchItemsQuery) Validate() error {
	if err := utils.ValidateStruct(q); err != nil {
		return pkgerrors.NewBadRequestError(err.Error())
	}
	return nil
}

// Condition returns the normalized condition echoed back to the client
func (q SearchItemsQuery) Condition() SearchCondition {
	return SearchCondition{
		Language: q.Language.Code(),
		String:   q.Text,
	}
}

// SearchCondition is the echoed form of a SearchItemsQuery
type SearchCondition struct {
	Language string `json:"language"`
	String   string `json:"string"`
}

// SearchItemsResult represents the result of a name search
type SearchItemsResult = ItemsResult[SearchCondition]
