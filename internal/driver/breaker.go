package driver

import (
	"context"
	"errors"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/agenthands/flavorgraph/internal/config"
	"github.com/agenthands/flavorgraph/internal/logging"
	"github.com/agenthands/flavorgraph/internal/metrics"
)

// BreakerDriver guards a GraphDriver with a circuit breaker. While the circuit
// is open every query fails fast with ErrStorageUnavailable.
type BreakerDriver struct {
	next GraphDriver
	cb   *gobreaker.CircuitBreaker[neo4j.EagerResult]
}

func NewBreakerDriver(next GraphDriver, cfg config.BreakerConfig) *BreakerDriver {
	name := "neo4j"
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[neo4j.EagerResult](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval.Duration,
		Timeout:     cfg.Timeout.Duration,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
		// Only outages count. A rejected query or a caller giving up does not.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || !errors.Is(err, ErrStorageUnavailable)
		},
	})

	return &BreakerDriver{next: next, cb: cb}
}

func (b *BreakerDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	res, err := b.cb.Execute(func() (neo4j.EagerResult, error) {
		return b.next.ExecuteQuery(ctx, query, params)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return neo4j.EagerResult{}, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return res, err
}

func (b *BreakerDriver) BuildIndices(ctx context.Context) error {
	return b.next.BuildIndices(ctx)
}

func (b *BreakerDriver) Close(ctx context.Context) error {
	return b.next.Close(ctx)
}

func (b *BreakerDriver) State() gobreaker.State {
	return b.cb.State()
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
