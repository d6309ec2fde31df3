// Package retry runs an operation again with exponential backoff.
package retry

import (
	"context"
	"log/slog"
	"time"
)

const (
	MaxAttempts  = 3
	InitialDelay = 1 * time.Second
)

// Policy controls Do. The zero value means MaxAttempts tries starting at
// InitialDelay.
type Policy struct {
	Attempts int
	Initial  time.Duration
	// Sleep waits between attempts; nil uses a timer bound to ctx.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Default is the policy used for design submissions: 3 tries, waiting 1s
// and then 2s.
var Default = Policy{Attempts: MaxAttempts, Initial: InitialDelay}

// Delay is the wait after the n-th failed attempt (1-based).
func (p Policy) Delay(n int) time.Duration {
	initial := p.Initial
	if initial <= 0 {
		initial = InitialDelay
	}
	return initial << (n - 1)
}

// Do calls fn until it succeeds or the attempts run out, returning the last
// error as is. A cancelled ctx stops the loop early.
func Do(ctx context.Context, p Policy, op string, fn func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = MaxAttempts
	}

	var err error
	for n := 1; n <= attempts; n++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if n == attempts {
			break
		}
		delay := p.Delay(n)
		slog.Warn("Attempt failed, retrying", "op", op, "attempt", n, "of", attempts, "delay", delay, "error", err)
		if serr := p.sleep(ctx, delay); serr != nil {
			return err
		}
	}
	slog.Error("All attempts failed", "op", op, "attempts", attempts, "error", err)
	return err
}

func (p Policy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
