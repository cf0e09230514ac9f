package ports

import (
	"context"

	"itemname-api/domain/core/entities"
	"itemname-api/domain/core/valueobjects"
)

// ItemRepository defines read access to the item catalog.
// This is a port in hexagonal architecture - the query handlers don't know whether
// items come from DynamoDB or from a bundled snapshot.
// Results are returned in no particular order.
type ItemRepository interface {
	// FindByIDs returns the items whose ids are in ids. Unknown ids are skipped.
	FindByIDs(ctx context.Context, ids []valueobjects.ItemID) ([]*entities.Item, error)

	// SearchByName returns the items whose name in lang contains text
	// (literal, case-sensitive). An empty text matches every item.
	SearchByName(ctx context.Context, lang valueobjects.Language, text string) ([]*entities.Item, error)
}

// ItemLister is implemented by repositories that can enumerate the whole catalog
type ItemLister interface {
	All(ctx context.Context) ([]*entities.Item, error)
}

