package fetcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.trai.ch/twig/internal/core/domain"
	"go.trai.ch/zerr"
)

// retry runs fn up to Retries times, doubling the delay after each failure.
// Exhausted retries are reported as domain.ErrFetchFailed.
func (f *Fetcher) retry(ctx context.Context, op, location string, fn func(context.Context) error) error {
	delay := f.opts.RetryDelay
	var lastErr error

	for attempt := 1; attempt <= f.opts.Retries; attempt++ {
		if lastErr = fn(ctx); lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if attempt < f.opts.Retries {
			f.logger.Warn(fmt.Sprintf("%s for %s failed (attempt %d/%d), retrying in %s",
				op, location, attempt, f.opts.Retries, delay))

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}

	err := zerr.With(zerr.Wrap(lastErr, op+" failed"), "location", location)
	return errors.Join(domain.ErrFetchFailed, zerr.With(err, "attempts", f.opts.Retries))
}
