package persistence

import (
	"context"
	"strconv"

	"itemname-api/application/ports"
	"itemname-api/domain/core/entities"
	"itemname-api/domain/core/valueobjects"
	"itemname-api/pkg/observability"
)

// TracingItemRepository records an X-Ray subsegment around each repository call
type TracingItemRepository struct {
	next   ports.ItemRepository
	tracer *observability.Tracer
}

// NewTracingItemRepository wraps next with tracing
func NewTracingItemRepository(next ports.ItemRepository, tracer *observability.Tracer) *TracingItemRepository {
	return &TracingItemRepository{next: next, tracer: tracer}
}

func (r *TracingItemRepository) FindByIDs(ctx context.Context, ids []valueobjects.ItemID) ([]*entities.Item, error) {
	var items []*entities.Item
	err := r.tracer.TraceFunction(ctx, "ItemRepository.FindByIDs", func(ctx context.Context) error {
		r.tracer.AddAnnotation(ctx, "id_count", strconv.Itoa(len(ids)))

		var err error
		items, err = r.next.FindByIDs(ctx, ids)
		r.tracer.AddMetadata(ctx, "found", len(items))
		return err
	})
	return items, err
}

func (r *TracingItemRepository) SearchByName(ctx context.Context, lang valueobjects.Language, text string) ([]*entities.Item, error) {
	var items []*entities.Item
	err := r.tracer.TraceFunction(ctx, "ItemRepository.SearchByName", func(ctx context.Context) error {
		r.tracer.AddAnnotation(ctx, "language", lang.Code())

		var err error
		items, err = r.next.SearchByName(ctx, lang, text)
		r.tracer.AddMetadata(ctx, "found", len(items))
		return err
	})
	return items, err
}
