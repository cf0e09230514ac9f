package queries

import (
	"fmt"

	pkgerrors "itemname-api/pkg/errors"
)

// Query parameter names
const (
	ParamIDs      = "ids"
	ParamLanguage = "language"
	ParamString   = "string"
)

func missingParam(name string) error {
	return pkgerrors.NewBadRequestError(fmt.Sprintf("%s is required.", name))
}
