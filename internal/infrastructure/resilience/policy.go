package resilience

import (
	"strings"
	"time"
)

// RetryPolicy bounds the attempts made for one operation call.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64
}

// BreakerPolicy configures the per-operation circuit breakers.
type BreakerPolicy struct {
	Enabled          bool
	MinRequests      uint32
	FailureRatio     float64
	OpenTimeout      time.Duration
	HalfOpenMaxCalls uint32
}

// Config is shared by every outbound collaborator. Operation names follow
// "<backend>.<call>" (stripe.checkout, s3.put, nats.publish); Backends
// overrides Retry for all operations of one backend.
type Config struct {
	Retry    RetryPolicy
	Breaker  BreakerPolicy
	Backends map[string]RetryPolicy
}

func DefaultConfig() Config {
	return Config{
		Retry: RetryPolicy{
			MaxAttempts:    3,
			InitialBackoff: 100 * time.Millisecond,
			MaxBackoff:     400 * time.Millisecond,
			Multiplier:     2.0,
		},
		Breaker: BreakerPolicy{
			Enabled:          true,
			MinRequests:      10,
			FailureRatio:     0.5,
			OpenTimeout:      30 * time.Second,
			HalfOpenMaxCalls: 2,
		},
		Backends: map[string]RetryPolicy{
			// Event publishing runs after the write has committed; keep it short.
			"nats": {MaxAttempts: 2, InitialBackoff: 50 * time.Millisecond, MaxBackoff: 100 * time.Millisecond, Multiplier: 2.0},
		},
	}
}

// retryFor picks the backend override for operation, falling back to Retry.
func (c Config) retryFor(operation string) RetryPolicy {
	backend, _, _ := strings.Cut(operation, ".")
	if p, ok := c.Backends[backend]; ok {
		return p.normalize(c.Retry)
	}
	return c.Retry
}

func (p RetryPolicy) normalize(def RetryPolicy) RetryPolicy {
	out := p
	if out.MaxAttempts <= 0 {
		out.MaxAttempts = def.MaxAttempts
	}
	if out.InitialBackoff <= 0 {
		out.InitialBackoff = def.InitialBackoff
	}
	if out.MaxBackoff <= 0 {
		out.MaxBackoff = def.MaxBackoff
	}
	if out.MaxBackoff < out.InitialBackoff {
		out.MaxBackoff = out.InitialBackoff
	}
	if out.Multiplier < 1.0 {
		out.Multiplier = def.Multiplier
	}
	return out
}

func (c Config) normalize() Config {
	def := DefaultConfig()
	out := Config{
		Retry:    c.Retry.normalize(def.Retry),
		Breaker:  c.Breaker,
		Backends: make(map[string]RetryPolicy, len(c.Backends)),
	}
	for name, p := range c.Backends {
		out.Backends[name] = p
	}

	b := &out.Breaker
	if b.MinRequests == 0 {
		b.MinRequests = def.Breaker.MinRequests
	}
	if b.FailureRatio <= 0 || b.FailureRatio > 1 {
		b.FailureRatio = def.Breaker.FailureRatio
	}
	if b.OpenTimeout <= 0 {
		b.OpenTimeout = def.Breaker.OpenTimeout
	}
	if b.HalfOpenMaxCalls == 0 {
		b.HalfOpenMaxCalls = def.Breaker.HalfOpenMaxCalls
	}
	return out
}
