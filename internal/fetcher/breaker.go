package fetcher

import (
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrHostOpen is returned when a request is rejected because the host's
// circuit is open after repeated failed downloads.
var ErrHostOpen = eris.New("fetcher: host circuit open")

type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

func (s breakerState) String() string {
	switch s {
	case breakerClosed:
		return "closed"
	case breakerOpen:
		return "open"
	case breakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// HostBreaker trips after consecutive failed downloads from one feed
// host, so a dead partner feed fails fast instead of burning the full
// retry budget on every file. After resetTimeout a single probe request
// is let through; its outcome closes or reopens the circuit.
type HostBreaker struct {
	mu        sync.Mutex
	state     breakerState
	failures  int
	threshold int
	resetAt   time.Time
	timeout   time.Duration

	nowFunc func() time.Time
}

// NewHostBreaker creates a breaker that opens after threshold
// consecutive failures and probes again after resetTimeout.
func NewHostBreaker(threshold int, resetTimeout time.Duration) *HostBreaker {
	if threshold <= 0 {
		threshold = 3
	}
	if resetTimeout <= 0 {
		resetTimeout = 30 * time.Second
	}
	return &HostBreaker{
		threshold: threshold,
		timeout:   resetTimeout,
		nowFunc:   time.Now,
	}
}

// Allow reports whether a request may proceed. In the open state it
// returns ErrHostOpen until the reset timeout passes, then admits one
// probe in half-open state.
func (b *HostBreaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == breakerOpen {
		if b.nowFunc().Before(b.resetAt) {
			return ErrHostOpen
		}
		b.state = breakerHalfOpen
	}
	return nil
}

// RecordSuccess closes the circuit and clears the failure count.
func (b *HostBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = breakerClosed
	b.failures = 0
}

// RecordFailure counts a failed download. Reaching the threshold, or
// any failure while half-open, opens the circuit.
func (b *HostBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	if b.state == breakerHalfOpen || b.failures >= b.threshold {
		b.state = breakerOpen
		b.resetAt = b.nowFunc().Add(b.timeout)
		zap.L().Warn("feed host circuit opened",
			zap.Int("consecutive_failures", b.failures),
			zap.Duration("reset_timeout", b.timeout),
		)
	}
}

// State returns the current state, accounting for reset timeout expiry.
func (b *HostBreaker) State() breakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == breakerOpen && !b.nowFunc().Before(b.resetAt) {
		return breakerHalfOpen
	}
	return b.state
}
