package prefixcache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig bounds how often the miss path may invoke a retriever.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
	// WaitTimeout > 0 blocks up to this long for a slot instead of rejecting
	// immediately.
	WaitTimeout time.Duration
}

// CircuitBreakerConfig opens the retriever circuit after FailureThreshold
// consecutive failures; after ResetTimeout one probe is let through.
type CircuitBreakerConfig struct {
	FailureThreshold int
	ResetTimeout     time.Duration
}

type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

// retrieverGuard fronts retriever invocation with an optional rate limiter
// and circuit breaker. A nil guard allows everything.
type retrieverGuard struct {
	limiter     *rate.Limiter
	waitTimeout time.Duration
	breaker     *circuitBreaker
}

func newRetrieverGuard(rl *RateLimitConfig, cb *CircuitBreakerConfig) *retrieverGuard {
	g := &retrieverGuard{}
	if rl != nil && rl.RequestsPerSecond > 0 {
		burst := rl.Burst
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(rl.RequestsPerSecond), burst)
		g.waitTimeout = rl.WaitTimeout
	}
	if cb != nil && cb.FailureThreshold > 0 && cb.ResetTimeout > 0 {
		g.breaker = &circuitBreaker{
			threshold:    cb.FailureThreshold,
			resetTimeout: cb.ResetTimeout,
		}
	}
	if g.limiter == nil && g.breaker == nil {
		return nil
	}
	return g
}

// allow must be followed by exactly one record call when it returns nil and
// a breaker is configured; record releases the half-open probe slot.
func (g *retrieverGuard) allow(ctx context.Context) error {
	if g == nil {
		return nil
	}
	if g.limiter != nil {
		if g.waitTimeout <= 0 {
			if !g.limiter.Allow() {
				return ErrRetrieverRateLimited
			}
		} else {
			waitCtx, cancel := context.WithTimeout(ctx, g.waitTimeout)
			err := g.limiter.Wait(waitCtx)
			cancel()
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return ErrRetrieverRateLimited
			}
		}
	}
	if g.breaker != nil {
		if !g.breaker.allow() {
			return ErrRetrieverCircuitOpen
		}
	}
	return nil
}

func (g *retrieverGuard) record(err error) {
	if g == nil || g.breaker == nil {
		return
	}
	if err != nil {
		g.breaker.failure()
	} else {
		g.breaker.success()
	}
}

// circuitBreaker counts consecutive failures. Closed admits everything; open
// rejects until resetTimeout has elapsed; half-open admits a single probe
// whose outcome closes or re-opens the circuit.
type circuitBreaker struct {
	mu               sync.Mutex
	state            breakerState
	failures         int
	threshold        int
	resetTimeout     time.Duration
	openedAt         time.Time
	halfOpenInflight bool
}

func (b *circuitBreaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case breakerClosed:
		return true
	case breakerOpen:
		if time.Since(b.openedAt) < b.resetTimeout {
			return false
		}
		b.state = breakerHalfOpen
		b.halfOpenInflight = true
		return true
	default: // half-open
		if b.halfOpenInflight {
			return false
		}
		b.halfOpenInflight = true
		return true
	}
}

func (b *circuitBreaker) success() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.state = breakerClosed
	b.halfOpenInflight = false
}

func (b *circuitBreaker) failure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case breakerHalfOpen:
		b.state = breakerOpen
		b.openedAt = time.Now()
		b.halfOpenInflight = false
	default:
		b.failures++
		if b.failures >= b.threshold {
			b.state = breakerOpen
			b.openedAt = time.Now()
		}
	}
}
