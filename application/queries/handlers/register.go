package handlers

import (
	"context"
	"fmt"

	"itemname-api/application/ports"
	"itemname-api/application/queries"
	"itemname-api/application/queries/bus"

	"go.uber.org/zap"
)

// Middleware decorates a query handler
type Middleware func(bus.QueryHandler) bus.QueryHandler

// Register adds the list and search handlers to b. Middlewares are applied so
// that the first one runs outermost.
func Register(b *bus.QueryBus, repo ports.ItemRepository, logger *zap.Logger, middlewares ...Middleware) error {
	list := NewListItemsHandler(repo, logger)
	search := NewSearchItemsHandler(repo, logger)

	registrations := []struct {
		query   bus.Query
		handler bus.QueryHandler
	}{
		{
			query: queries.ListItemsQuery{},
			handler: bus.QueryHandlerFunc(func(ctx context.Context, q bus.Query) (interface{}, error) {
				return list.Handle(ctx, q.(queries.ListItemsQuery))
			}),
		},
		{
			query: queries.SearchItemsQuery{},
			handler: bus.QueryHandlerFunc(func(ctx context.Context, q bus.Query) (interface{}, error) {
				return search.Handle(ctx, q.(queries.SearchItemsQuery))
			}),
		},
	}

	for _, reg := range registrations {
		handler := reg.handler
		for i := len(middlewares) - 1; i >= 0; i-- {
			handler = middlewares[i](handler)
		}
		if err := b.Register(reg.query, handler); err != nil {
			return fmt.Errorf("failed to register %T: %w", reg.query, err)
		}
	}

	return nil
}
