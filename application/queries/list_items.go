package queries

import (
	"strings"

	"itemname-api/domain/core/valueobjects"
	pkgerrors "itemname-api/pkg/errors"
	"itemname-api/pkg/utils"
)

// ListItemsQuery represents a query for items by id
type ListItemsQuery struct {
	IDs []valueobjects.ItemID `validate:"required,min=1"`
}

// ParseListItemsQuery builds a ListItemsQuery from raw query parameters.
// The ids parameter is a comma separated list of unsigned 32-bit numbers; one bad
// token rejects the whole request.
func ParseListItemsQuery(params map[string]string) (ListItemsQuery, error) {
	text, ok := params[ParamIDs]
	if !ok {
		return ListItemsQuery{}, missingParam(ParamIDs)
	}

	tokens := strings.Split(text, ",")
	ids := make([]valueobjects.ItemID, 0, len(tokens))
	for _, token := range tokens {
		id, err := valueobjects.ParseItemID(token)
		if err != nil {
			return ListItemsQuery{}, pkgerrors.NewBadRequestError("ids must be comma separated numbers")
		}
		ids = append(ids, id)
	}

	return ListItemsQuery{IDs: ids}, nil
}

// Validate validates the ListItemsQuery
func (q ListItemsQuery) Validate() error {
	if err := utils.ValidateStruct(q); err != nil {
		return pkgerrors.NewBadRequestError(err.Error())
	}
	return nil
}

// Condition returns the normalized condition echoed back to the client
func (q ListItemsQuery) Condition() ListCondition {
	ids := make([]uint32, len(q.IDs))
	for i, id := range q.IDs {
		ids[i] = id.Uint32()
	}
	return ListCondition{IDs: ids}
}

// ListCondition is the echoed form of a ListItemsQuery
type ListCondition struct {
	IDs []uint32 `json:"ids"`
}

// ListItemsResult represents the result of listing items by id
type ListItemsResult = ItemsResult[ListCondition]
