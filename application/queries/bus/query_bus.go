package bus

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	pkgerrors "itemname-api/pkg/errors"
)

// Query is a read against the item catalog that can check its own parameters
type Query interface {
	Validate() error
}

// QueryHandler handles a specific query type
type QueryHandler interface {
	Handle(ctx context.Context, query Query) (interface{}, error)
}

// QueryBus routes each query to the handler registered for its type. A query
// and a pointer to it share one registration.
type QueryBus struct {
	mu       sync.RWMutex
	handlers map[reflect.Type]QueryHandler
}

// NewQueryBus creates an empty query bus
func NewQueryBus() *QueryBus {
	return &QueryBus{
		handlers: make(map[reflect.Type]QueryHandler),
	}
}

// Register binds handler to the type of query
func (b *QueryBus) Register(query Query, handler QueryHandler) error {
	if query == nil || handler == nil {
		return fmt.Errorf("nil query or handler for query type %s", QueryName(query))
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	t := queryType(query)
	if _, exists := b.handlers[t]; exists {
		return fmt.Errorf("handler already registered for query type %s", t.Name())
	}

	b.handlers[t] = handler
	return nil
}

// Ask validates query and then runs its handler. The bus is the only place a
// query is validated. A plain error from Validate becomes a bad request, so a
// rejected query never reaches a client as an internal error.
func (b *QueryBus) Ask(ctx context.Context, query Query) (interface{}, error) {
	if query == nil {
		return nil, pkgerrors.NewInternalError("nil query")
	}
	query = indirect(query)
	name := QueryName(query)

	if err := query.Validate(); err != nil {
		if pkgerrors.GetAppError(err) == nil {
			err = pkgerrors.NewBadRequestError(err.Error()).WithCause(err)
		}
		return nil, fmt.Errorf("%s rejected: %w", name, err)
	}

	b.mu.RLock()
	handler, exists := b.handlers[queryType(query)]
	b.mu.RUnlock()

	if !exists {
		return nil, pkgerrors.NewInternalError(fmt.Sprintf("no handler registered for query type %s", name)).
			WithCode("NO_HANDLER")
	}

	result, err := handler.Handle(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", name, err)
	}

	return result, nil
}

// QueryName is the type name used to label a query in logs and metrics
func QueryName(query Query) string {
	if query == nil {
		return "nil"
	}
	return queryType(query).Name()
}

func queryType(query Query) reflect.Type {
	t := reflect.TypeOf(query)
	if t.Kind() == reflect.Ptr {
		return t.Elem()
	}
	return t
}

// indirect returns the value a non-nil query pointer points to when that value
// is itself a Query.
func indirect(query Query) Query {
	v := reflect.ValueOf(query)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return query
	}
	if q, ok := v.Elem().Interface().(Query); ok {
		return q
	}
	return query
}

// QueryHandlerFunc is an adapter to allow functions to be used as handlers
type QueryHandlerFunc func(ctx context.Context, query Query) (interface{}, error)

// Handle implements QueryHandler
func (f QueryHandlerFunc) Handle(ctx context.Context, query Query) (interface{}, error) {
	return f(ctx, query)
}

// MetricsMiddleware counts and times every query a handler runs. Bad requests
// are counted as query_rejected so query_errors only tracks catalog failures.
type MetricsMiddleware struct {
	metrics Metrics
}

// NewMetricsMiddleware creates a metrics middleware reporting to metrics
func NewMetricsMiddleware(metrics Metrics) *MetricsMiddleware {
	return &MetricsMiddleware{
		metrics: metrics,
	}
}

// Wrap decorates next
func (m *MetricsMiddleware) Wrap(next QueryHandler) QueryHandler {
	return QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
		label := QueryName(query)

		timer := m.metrics.StartTimer("query_duration", label)
		defer timer.Stop()

		m.metrics.Increment("query_count", label)

		result, err := next.Handle(ctx, query)
		switch {
		case err == nil:
			m.metrics.Increment("query_success", label)
			return result, nil
		case pkgerrors.IsBadRequest(err):
			m.metrics.Increment("query_rejected", label)
		default:
			m.metrics.Increment("query_errors", label)
		}
		return nil, err
	})
}

// Metrics records query counts and latencies. label is the query type name.
type Metrics interface {
	StartTimer(metric, label string) Timer
	Increment(metric, label string)
}

// Timer measures one query execution
type Timer interface {
	Stop()
}