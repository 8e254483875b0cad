package summarizer

import (
	"context"
	"math"
	"time"

	logx "gazettebot/pkg/logx"

	"github.com/avast/retry-go/v4"
)

// RetryPolicy bounds retries of rate-limited generation calls.
type RetryPolicy struct {
	Attempts   int
	Initial    time.Duration
	MaxDelay   time.Duration
	Multiplier float64
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, Initial: 4 * time.Second, MaxDelay: 30 * time.Second, Multiplier: 2}
}

func (p RetryPolicy) normalize() RetryPolicy {
	d := DefaultRetryPolicy()
	if p.Attempts <= 0 {
		p.Attempts = d.Attempts
	}
	if p.Initial <= 0 {
		p.Initial = d.Initial
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = d.MaxDelay
	}
	if p.MaxDelay < p.Initial {
		p.MaxDelay = p.Initial
	}
	if p.Multiplier < 1 {
		p.Multiplier = 1
	}
	return p
}

// delay is Initial * Multiplier^n capped at MaxDelay, where n counts the
// failed attempts so far starting at 0.
func (p RetryPolicy) delay(n uint) time.Duration {
	f := float64(p.Initial) * math.Pow(p.Multiplier, float64(n))
	if f >= float64(p.MaxDelay) || math.IsInf(f, 0) || math.IsNaN(f) {
		return p.MaxDelay
	}
	return time.Duration(f)
}

// do runs fn until it succeeds, fails with a non-retryable error, or the
// attempts are exhausted. It returns the last error.
func (p RetryPolicy) do(ctx context.Context, log logx.Logger, fn func() error) error {
	p = p.normalize()
	return retry.Do(
		fn,
		retry.Context(ctx),
		retry.Attempts(uint(p.Attempts)),
		retry.RetryIf(IsRetryable),
		retry.LastErrorOnly(true),
		retry.DelayType(func(n uint, _ error, _ *retry.Config) time.Duration {
			return p.delay(n)
		}),
		retry.OnRetry(func(n uint, err error) {
			log.Warn("generation rate limited; backing off",
				logx.Int("attempt", int(n)+1),
				logx.Int("max_attempts", p.Attempts),
				logx.Duration("delay", p.delay(n)),
				logx.Err(err),
			)
		}),
	)
}
