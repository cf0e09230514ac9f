package bus

import (
	"context"
	"errors"
	"sync"
	"testing"

	pkgerrors "itemname-api/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errInvalidPing = errors.New("invalid ping")

type pingQuery struct {
	Fail bool
}

func (q pingQuery) Validate() error {
	if q.Fail {
		return errInvalidPing
	}
	return nil
}

type strictQuery struct{}

func (strictQuery) Validate() error {
	return pkgerrors.NewBadRequestError("ids is required.")
}

type recordingMetrics struct {
	mu      sync.Mutex
	counts  map[string]int
	stopped int
}

func (m *recordingMetrics) StartTimer(metric, label string) Timer {
	return timerFunc(func() {
		m.mu.Lock()
		m.stopped++
		m.mu.Unlock()
	})
}

func (m *recordingMetrics) Increment(metric, label string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[metric+"/"+label]++
}

type timerFunc func()

func (f timerFunc) Stop() { f() }

func TestQueryBus_Ask(t *testing.T) {
	ctx := context.Background()

	t.Run("Should dispatch to the registered handler", func(t *testing.T) {
		b := NewQueryBus()
		require.NoError(t, b.Register(pingQuery{}, QueryHandlerFunc(func(ctx context.Context, q Query) (interface{}, error) {
			return "pong", nil
		})))

		result, err := b.Ask(ctx, pingQuery{})
		require.NoError(t, err)
		assert.Equal(t, "pong", result)
	})

	t.Run("Should reject duplicate registration", func(t *testing.T) {
		b := NewQueryBus()
		h := QueryHandlerFunc(func(ctx context.Context, q Query) (interface{}, error) { return nil, nil })
		require.NoError(t, b.Register(pingQuery{}, h))
		assert.Error(t, b.Register(pingQuery{}, h))
	})

	t.Run("Should reject an invalid query as a bad request before dispatching", func(t *testing.T) {
		// Arrange
		b := NewQueryBus()
		called := false
		require.NoError(t, b.Register(pingQuery{}, QueryHandlerFunc(func(ctx context.Context, q Query) (interface{}, error) {
			called = true
			return nil, nil
		})))

		// Act
		_, err := b.Ask(ctx, pingQuery{Fail: true})

		// Assert
		assert.True(t, pkgerrors.IsBadRequest(err))
		assert.ErrorIs(t, err, errInvalidPing)
		assert.Equal(t, "invalid ping", pkgerrors.GetAppError(err).Message)
		assert.False(t, called)
	})

	t.Run("Should keep an AppError returned by Validate", func(t *testing.T) {
		// Arrange
		b := NewQueryBus()

		// Act
		_, err := b.Ask(ctx, strictQuery{})

		// Assert
		appErr := pkgerrors.GetAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, "ids is required.", appErr.Message)
	})

	t.Run("Should keep the handler error in the chain", func(t *testing.T) {
		// Arrange
		b := NewQueryBus()
		sentinel := errors.New("store down")
		require.NoError(t, b.Register(pingQuery{}, QueryHandlerFunc(func(ctx context.Context, q Query) (interface{}, error) {
			return nil, sentinel
		})))

		// Act
		_, err := b.Ask(ctx, pingQuery{})

		// Assert
		assert.ErrorIs(t, err, sentinel)
		assert.Contains(t, err.Error(), "pingQuery failed")
	})

	t.Run("Should route a query pointer to the value registration", func(t *testing.T) {
		// Arrange
		b := NewQueryBus()
		var got Query
		require.NoError(t, b.Register(pingQuery{}, QueryHandlerFunc(func(ctx context.Context, q Query) (interface{}, error) {
			got = q
			return "pong", nil
		})))

		// Act
		result, err := b.Ask(ctx, &pingQuery{})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "pong", result)
		assert.IsType(t, pingQuery{}, got)
		assert.Error(t, b.Register(&pingQuery{}, QueryHandlerFunc(func(ctx context.Context, q Query) (interface{}, error) {
			return nil, nil
		})))
	})

	t.Run("Should fail for unknown query types", func(t *testing.T) {
		// Act
		_, err := NewQueryBus().Ask(ctx, pingQuery{})

		// Assert
		assert.True(t, pkgerrors.IsInternal(err))
		assert.Equal(t, "NO_HANDLER", pkgerrors.GetAppError(err).Code)
	})

	t.Run("Should refuse a nil query and a nil handler", func(t *testing.T) {
		b := NewQueryBus()

		_, err := b.Ask(ctx, nil)
		assert.True(t, pkgerrors.IsInternal(err))
		assert.Error(t, b.Register(pingQuery{}, nil))
	})
}

func TestMetricsMiddleware(t *testing.T) {
	ctx := context.Background()
	metrics := &recordingMetrics{counts: map[string]int{}}
	mw := NewMetricsMiddleware(metrics)

	ok := mw.Wrap(QueryHandlerFunc(func(ctx context.Context, q Query) (interface{}, error) { return 1, nil }))
	failing := mw.Wrap(QueryHandlerFunc(func(ctx context.Context, q Query) (interface{}, error) {
		return nil, errors.New("nope")
	}))
	rejecting := mw.Wrap(QueryHandlerFunc(func(ctx context.Context, q Query) (interface{}, error) {
		return nil, pkgerrors.NewBadRequestError("string is required.")
	}))

	_, err := ok.Handle(ctx, pingQuery{})
	require.NoError(t, err)
	_, err = ok.Handle(ctx, &pingQuery{})
	require.NoError(t, err)
	_, err = failing.Handle(ctx, pingQuery{})
	require.Error(t, err)
	_, err = rejecting.Handle(ctx, pingQuery{})
	require.Error(t, err)

	assert.Equal(t, 4, metrics.counts["query_count/pingQuery"])
	assert.Equal(t, 2, metrics.counts["query_success/pingQuery"])
	assert.Equal(t, 1, metrics.counts["query_errors/pingQuery"])
	assert.Equal(t, 1, metrics.counts["query_rejected/pingQuery"])
	assert.Equal(t, 4, metrics.stopped)
}
