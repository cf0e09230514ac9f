package handlers

import (
	"context"

	"itemname-api/application/ports"
	"itemname-api/application/queries"

	"go.uber.org/zap"
)

// ListItemsHandler answers queries for items by id
type ListItemsHandler struct {
	repo   ports.ItemRepository
	logger *zap.Logger
}

// NewListItemsHandler creates a new list items handler
func NewListItemsHandler(repo ports.ItemRepository, logger *zap.Logger) *ListItemsHandler {
	return &ListItemsHandler{
		repo:   repo,
		logger: logger,
	}
}

// Handle executes the list query. The query bus has already validated it.
// Unknown ids are silently absent from the result.
func (h *ListItemsHandler) Handle(ctx context.Context, query queries.ListItemsQuery) (*queries.ListItemsResult, error) {
	items, err := h.repo.FindByIDs(ctx, query.IDs)
	if err != nil {
		h.logger.Error("Failed to fetch items by id",
			zap.Int("requested", len(query.IDs)),
			zap.Error(err),
		)
		return nil, err
	}

	h.logger.Debug("Fetched items by id",
		zap.Int("requested", len(query.IDs)),
		zap.Int("found", len(items)),
	)

	return queries.AssembleItemsResult(query.Condition(), items), nil
}
