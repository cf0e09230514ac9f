// Package persistence holds decorators shared by every ItemRepository adapter.
package persistence

import (
	"context"
	"errors"
	"time"

	"itemname-api/application/ports"
	"itemname-api/domain/core/entities"
	"itemname-api/domain/core/valueobjects"
	pkgerrors "itemname-api/pkg/errors"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// CircuitBreakerConfig holds configuration for the repository circuit breaker
type CircuitBreakerConfig struct {
	Name             string
	MaxRequests      uint32        // Requests allowed through while half-open
	Interval         time.Duration // Period after which closed-state counts reset
	Timeout          time.Duration // Time spent open before trying half-open
	FailureThreshold float64       // Failure ratio that trips the breaker
	MinRequests      uint32        // Requests needed before the ratio is evaluated
}

// DefaultCircuitBreakerConfig returns a default configuration
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// CircuitBreakerItemRepository stops calling the store while it keeps failing
type CircuitBreakerItemRepository struct {
	next   ports.ItemRepository
	cb     *gobreaker.CircuitBreaker
	logger *zap.Logger
}

// NewCircuitBreakerItemRepository wraps next with a circuit breaker
func NewCircuitBreakerItemRepository(next ports.ItemRepository, config CircuitBreakerConfig, logger *zap.Logger) *CircuitBreakerItemRepository {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < config.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= config.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		// Cancelled requests and decode failures say nothing about store health
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			if errors.Is(err, context.Canceled) {
				return true
			}
			if appErr := pkgerrors.GetAppError(err); appErr != nil && appErr.Code == "DECODE" {
				return true
			}
			return false
		},
	})

	return &CircuitBreakerItemRepository{
		next:   next,
		cb:     cb,
		logger: logger,
	}
}

func (r *CircuitBreakerItemRepository) FindByIDs(ctx context.Context, ids []valueobjects.ItemID) ([]*entities.Item, error) {
	return r.execute(func() ([]*entities.Item, error) {
		return r.next.FindByIDs(ctx, ids)
	})
}

func (r *CircuitBreakerItemRepository) SearchByName(ctx context.Context, lang valueobjects.Language, text string) ([]*entities.Item, error) {
	return r.execute(func() ([]*entities.Item, error) {
		return r.next.SearchByName(ctx, lang, text)
	})
}

// State returns the current breaker state
func (r *CircuitBreakerItemRepository) State() gobreaker.State {
	return r.cb.State()
}

func (r *CircuitBreakerItemRepository) execute(fn func() ([]*entities.Item, error)) ([]*entities.Item, error) {
	result, err := r.cb.Execute(func() (interface{}, error) {
		return fn()
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		r.logger.Warn("Circuit breaker rejected repository call", zap.Error(err))
		return nil, pkgerrors.NewInternalError("catalog store temporarily unavailable").
			WithCode("CIRCUIT_OPEN").
			WithCause(err)
	case err != nil:
		return nil, err
	}

	items, _ := result.([]*entities.Item)
	return items, nil
}
