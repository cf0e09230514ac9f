package handlers

import (
	"context"

	"itemname-api/application/ports"
	"itemname-api/application/queries"

	"go.uber.org/zap"
)

// SearchItemsHandler answers substring searches over item names
type SearchItemsHandler struct {
	repo   ports.ItemRepository
	logger *zap.Logger
}

// NewSearchItemsHandler creates a new search items handler
func NewSearchItemsHandler(repo ports.ItemRepository, logger *zap.Logger) *SearchItemsHandler {
	return &SearchItemsHandler{
		repo:   repo,
		logger: logger,
	}
}

// Handle executes the search query
func (h *SearchItemsHandler) Handle(ctx context.Context, query queries.SearchItemsQuery) (*queries.SearchItemsResult, error) {
	items, err := h.repo.SearchByName(ctx, query.Language, query.Text)
	if err != nil {
		h.logger.Error("Failed to search items",
			zap.String("language", query.Language.Code()),
			zap.String("text", query.Text),
			zap.Error(err),
		)
		return nil, err
	}

	h.logger.Debug("Searched items",
		zap.String("language", query.Language.Code()),
		zap.Int("found", len(items)),
	)

	return queries.AssembleItemsResult(query.Condition(), items), nil
}
