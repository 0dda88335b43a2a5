package infra

import (
	"errors"
	"sync"
	"time"
)

// CircuitBreaker guards snapshot writes. After FailureThreshold consecutive
// failed writes it opens and rejects writes for the backoff period; the
// next write after that is a probe. Each failed probe doubles the backoff up
// to MaxBackoff, and a successful probe closes the breaker and resets it.
type CircuitBreaker struct {
	mu  sync.Mutex
	cfg CircuitBreakerConfig
	now func() time.Time

	state    CBState
	failures int // consecutive
	backoff  time.Duration
	openedAt time.Time

	rejected    int64
	lastErr     error
	lastFailure time.Time
	lastSuccess time.Time
}

type CBState int

const (
	CBClosed CBState = iota
	CBOpen
	CBHalfOpen
)

func (s CBState) String() string {
	switch s {
	case CBClosed:
		return "closed"
	case CBOpen:
		return "open"
	case CBHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned by Execute while the breaker is open.
var ErrCircuitOpen = errors.New("snapshot store breaker is open")

type CircuitBreakerConfig struct {
	FailureThreshold int           // consecutive failures that open the breaker
	OpenTimeout      time.Duration // first backoff
	MaxBackoff       time.Duration // cap for the doubled backoff
}

// DefaultCBConfig trips fast and probes soon; the store is usually local.
func DefaultCBConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold: 3,
		OpenTimeout:      15 * time.Second,
		MaxBackoff:       5 * time.Minute,
	}
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	def := DefaultCBConfig()
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}
	if cfg.MaxBackoff < cfg.OpenTimeout {
		cfg.MaxBackoff = cfg.OpenTimeout
	}
	return &CircuitBreaker{cfg: cfg, now: time.Now, backoff: cfg.OpenTimeout}
}

func (cb *CircuitBreaker) State() CBState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.stateLocked()
}

func (cb *CircuitBreaker) stateLocked() CBState {
	if cb.state == CBOpen && cb.now().Sub(cb.openedAt) >= cb.backoff {
		cb.state = CBHalfOpen
	}
	return cb.state
}

// Execute runs write unless the breaker is open. Only one probe runs while
// half-open; concurrent callers are rejected until it reports.
func (cb *CircuitBreaker) Execute(write func() error) error {
	cb.mu.Lock()
	switch cb.stateLocked() {
	case CBOpen:
		cb.rejected++
		cb.mu.Unlock()
		return ErrCircuitOpen
	case CBHalfOpen:
		// hold the probe slot
		cb.state = CBOpen
		cb.openedAt = cb.now()
		cb.mu.Unlock()
		return cb.report(write(), true)
	}
	cb.mu.Unlock()
	return cb.report(write(), false)
}

func (cb *CircuitBreaker) report(err error, probe bool) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	now := cb.now()
	if err == nil {
		cb.state = CBClosed
		cb.failures = 0
		cb.backoff = cb.cfg.OpenTimeout
		cb.lastSuccess = now
		return nil
	}

	cb.failures++
	cb.lastErr = err
	cb.lastFailure = now
	switch {
	case probe:
		cb.backoff *= 2
		if cb.backoff > cb.cfg.MaxBackoff {
			cb.backoff = cb.cfg.MaxBackoff
		}
		cb.state = CBOpen
		cb.openedAt = now
	case cb.failures >= cb.cfg.FailureThreshold:
		cb.state = CBOpen
		cb.openedAt = now
	}
	return err
}

// BreakerStats is the view reported by /health.
type BreakerStats struct {
	State               string     `json:"state"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
	RejectedWrites      int64      `json:"rejected_writes"`
	Backoff             string     `json:"backoff,omitempty"`
	LastError           string     `json:"-"` // logged, never served
	LastFailureAt       *time.Time `json:"last_failure_at,omitempty"`
	LastSuccessAt       *time.Time `json:"last_success_at,omitempty"`
}

func (cb *CircuitBreaker) Stats() BreakerStats {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	st := BreakerStats{
		State:               cb.stateLocked().String(),
		ConsecutiveFailures: cb.failures,
		RejectedWrites:      cb.rejected,
	}
	if cb.state != CBClosed {
		st.Backoff = cb.backoff.String()
	}
	if cb.lastErr != nil {
		st.LastError = cb.lastErr.Error()
		t := cb.lastFailure
		st.LastFailureAt = &t
	}
	if !cb.lastSuccess.IsZero() {
		t := cb.lastSuccess
		st.LastSuccessAt = &t
	}
	return st
}
