package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"

	"itemname-api/application/queries"
	querybus "itemname-api/application/queries/bus"
	pkgerrors "itemname-api/pkg/errors"

	"go.uber.org/zap"
)

// ItemHandler handles catalog lookup requests
type ItemHandler struct {
	queryBus     *querybus.QueryBus
	errorHandler *pkgerrors.ErrorHandler
	logger       *zap.Logger
}

// NewItemHandler creates a new item handler
func NewItemHandler(
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *ItemHandler {
	return &ItemHandler{
		queryBus:     queryBus,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// ListItems handles GET /list?ids=1,2,3
func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	query, err := queries.ParseListItemsQuery(queryParams(r.URL.Query()))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// SearchItems handles GET /search?language=en&string=Potion
func (h *ItemHandler) SearchItems(w http.ResponseWriter, r *http.Request) {
	query, err := queries.ParseSearchItemsQuery(queryParams(r.URL.Query()))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

func (h *ItemHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// queryParams keeps the first value of each parameter
func queryParams(values url.Values) map[string]string {
	params := make(map[string]string, len(values))
	for key, vals := range values {
		if len(vals) > 0 {
			params[key] = vals[0]
		}
	}
	return params
}
