// Package retry provides a small retry-with-backoff helper, used outside
// the sender core's own send/process loop (which deliberately has no
// built-in retry — spec.md §4.4 handles that itself via send_next/sleep)
// for ambient startup concerns, namely internal/di.SeedTasks retrying
// AddNewTask while a freshly configured partition's first binlog file has
// not been created yet.
package retry

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/luzijia/zeppelin/internal/log"
)

// ErrRetryable marks an error that Retryer.Run should retry rather than
// give up on immediately.
var ErrRetryable = errors.New("retryable error")

// Retryer runs fn until it succeeds, returns a non-retryable error, or ctx
// is canceled, backing off geometrically between attempts.
type Retryer struct {
	fn           func(ctx context.Context) error
	interval     time.Duration
	backoffCoeff int
}

// New builds a Retryer around fn. interval is the base delay before the
// first retry; backoffCoeff multiplies it geometrically on each further
// attempt (1 for a constant interval).
func New(fn func(ctx context.Context) error, interval time.Duration, backoffCoeff int) *Retryer {
	return &Retryer{fn: fn, interval: interval, backoffCoeff: backoffCoeff}
}

func (r *Retryer) Run(ctx context.Context) error {
	attempt := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := r.fn(ctx)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrRetryable) {
			return err
		}

		wait := backoff(r.interval, r.backoffCoeff, attempt)
		log.Warn("retryable error, retrying in %s: %v", wait, err)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		attempt++
	}
}

func backoff(interval time.Duration, coeff, attempt int) time.Duration {
	factor := math.Pow(float64(coeff), float64(attempt))
	return time.Duration(float64(interval) * factor)
}
