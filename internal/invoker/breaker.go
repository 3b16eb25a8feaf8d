// Package invoker wraps a mascara.Client's Invoke calls with optional
// circuit-breaking: a convenience layer that sits above the wire
// protocol rather than inside it, so timeouts and retries never become
// part of the wire contract.
package invoker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

// ErrCircuitOpen is returned in place of the underlying call's own error
// when the breaker is open and short-circuiting invocations.
var ErrCircuitOpen = errors.New("invoker: circuit breaker is open")

// Caller is the subset of *mascara.Client a Breaker wraps; satisfied by
// (*mascara.Client).Invoke without an import cycle back to the root
// package.
type Caller interface {
	Invoke(ctx context.Context, method string, params ...interface{}) ([]interface{}, error)
}

// BreakerConfig tunes when the breaker trips and recovers.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failed invocations that
	// trips the circuit open. Default: 3.
	MaxFailures uint32
	// Timeout is how long the circuit stays open before allowing a
	// half-open trial invocation. Default: 30s.
	Timeout time.Duration
	// HalfOpenMaxSuccesses is the number of consecutive half-open
	// successes required to close the circuit again. Default: 2.
	HalfOpenMaxSuccesses uint32
}

// Metrics summarizes a Breaker's invocation history.
type Metrics struct {
	TotalRequests        uint64
	TotalSuccesses       uint64
	TotalFailures        uint64
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
}

// Breaker wraps a Caller so that repeated invocation failures for a
// misbehaving peer stop producing new requests for a cooldown period
// instead of piling up pending calls against a connection that is
// unlikely to recover mid-failure.
type Breaker struct {
	inner   Caller
	breaker *gobreaker.CircuitBreaker
	mu      sync.RWMutex
	metrics Metrics
}

// NewBreaker wraps inner with default tuning: 3 consecutive failures
// trips the circuit, it stays open 30s, and 2 half-open successes close
// it again.
func NewBreaker(inner Caller) *Breaker {
	return NewBreakerWithConfig(inner, BreakerConfig{
		MaxFailures:          3,
		Timeout:              30 * time.Second,
		HalfOpenMaxSuccesses: 2,
	})
}

// NewBreakerWithConfig wraps inner with explicit tuning.
func NewBreakerWithConfig(inner Caller, cfg BreakerConfig) *Breaker {
	b := &Breaker{inner: inner}
	b.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "mascara.invoker",
		MaxRequests: cfg.HalfOpenMaxSuccesses,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
	})
	return b
}

// Invoke runs method through the circuit breaker. If the circuit is
// open, it returns ErrCircuitOpen without calling the wrapped Caller.
func (b *Breaker) Invoke(ctx context.Context, method string, params ...interface{}) ([]interface{}, error) {
	select {
	case <-ctx.Done():
		b.recordFailure()
		return nil, ctx.Err()
	default:
	}

	result, err := b.breaker.Execute(func() (interface{}, error) {
		return b.inner.Invoke(ctx, method, params...)
	})

	if err != nil {
		b.recordFailure()
		if errors.Is(err, gobreaker.ErrOpenState) {
			return nil, ErrCircuitOpen
		}
		return nil, err
	}
	b.recordSuccess()
	return result.([]interface{}), nil
}

// State reports the breaker's current state: "closed", "open", or
// "half-open".
func (b *Breaker) State() string {
	switch b.breaker.State() {
	case gobreaker.StateOpen:
		return "open"
	case gobreaker.StateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// Metrics returns a snapshot of the breaker's invocation counts.
func (b *Breaker) Metrics() Metrics {
	b.mu.RLock()
	defer b.mu.RUnlock()
	counts := b.breaker.Counts()
	return Metrics{
		TotalRequests:        b.metrics.TotalRequests,
		TotalSuccesses:       b.metrics.TotalSuccesses,
		TotalFailures:        b.metrics.TotalFailures,
		ConsecutiveSuccesses: counts.ConsecutiveSuccesses,
		ConsecutiveFailures:  counts.ConsecutiveFailures,
	}
}

func (b *Breaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.metrics.TotalRequests++
	b.metrics.TotalSuccesses++
}

func (b *Breaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.metrics.TotalRequests++
	b.metrics.TotalFailures++
}
