// Package snapshot serves the catalog from a JSON file bundled with the
// deployment. The file is a JSON array of records laid out like the DynamoDB
// items, so it is decoded with the same parser.
package snapshot

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"itemname-api/domain/core/entities"
	"itemname-api/domain/core/valueobjects"
	"itemname-api/infrastructure/persistence/dynamodb"
	pkgerrors "itemname-api/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
)

// DefaultPath is where the Lambda layer mounts the snapshot
const DefaultPath = "/opt/database.json"

// Repository is an immutable, in-memory catalog. It is safe for concurrent use
// without locking because nothing mutates it after Load.
type Repository struct {
	items []*entities.Item
}

// New creates a repository over already decoded items
func New(items []*entities.Item) *Repository {
	return &Repository{items: items}
}

// Load reads and decodes the snapshot at path. Any unreadable file or invalid
// record fails the whole load.
func Load(path string) (*Repository, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to open snapshot").
			WithCause(err).
			WithDetails(map[string]interface{}{"path": path})
	}
	defer f.Close()

	return Decode(f)
}

// Decode reads a snapshot from r
func Decode(r io.Reader) (*Repository, error) {
	var records []map[string]interface{}
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, pkgerrors.NewInternalError("snapshot is not a JSON array of records").WithCause(err)
	}

	parser := dynamodb.NewItemParser()
	items := make([]*entities.Item, 0, len(records))
	for i, record := range records {
		av, err := attributevalue.MarshalMap(record)
		if err != nil {
			return nil, pkgerrors.NewInternalError("failed to convert snapshot record").
				WithCause(err).
				WithDetails(map[string]interface{}{"index": i})
		}

		item, err := parser.FromItem(av)
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "snapshot record %d", i)
		}
		items = append(items, item)
	}

	return New(items), nil
}

// Write encodes items as a snapshot that Decode can read back
func Write(w io.Writer, items []*entities.Item) error {
	parser := dynamodb.NewItemParser()
	records := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		var record map[string]interface{}
		if err := attributevalue.UnmarshalMap(parser.ToItem(item), &record); err != nil {
			return pkgerrors.NewInternalError("failed to convert item for snapshot").WithCause(err)
		}
		records = append(records, record)
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		return pkgerrors.NewInternalError("failed to write snapshot").WithCause(err)
	}
	return nil
}

// FindByIDs returns the items whose id is in ids, in snapshot order
func (r *Repository) FindByIDs(ctx context.Context, ids []valueobjects.ItemID) ([]*entities.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, pkgerrors.NewInternalError("request cancelled").WithCause(err)
	}

	wanted := make(map[valueobjects.ItemID]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	var items []*entities.Item
	for _, item := range r.items {
		if _, ok := wanted[item.ID()]; ok {
			items = append(items, item)
		}
	}
	return items, nil
}

// SearchByName returns the items whose name in lang contains text
func (r *Repository) SearchByName(ctx context.Context, lang valueobjects.Language, text string) ([]*entities.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, pkgerrors.NewInternalError("request cancelled").WithCause(err)
	}

	var items []*entities.Item
	for _, item := range r.items {
		if strings.Contains(item.Name(lang), text) {
			items = append(items, item)
		}
	}
	return items, nil
}

// All returns every item in the snapshot
func (r *Repository) All(ctx context.Context) ([]*entities.Item, error) {
	return append([]*entities.Item(nil), r.items...), nil
}

// Count returns the number of items loaded
func (r *Repository) Count() int {
	return len(r.items)
}
