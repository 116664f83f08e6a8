package ai

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/leadtriage/backend/internal/apperr"
	"github.com/leadtriage/backend/internal/models"
)

const (
	DefaultAttempts  = 3
	DefaultBaseDelay = time.Second
)

type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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

// Retrier runs an operation up to Attempts times, waiting BaseDelay*2^attempt
// between tries. Non-retryable failures end the loop immediately.
type Retrier struct {
	Attempts  int
	BaseDelay time.Duration
	Sleep     SleepFunc
	Logger    zerolog.Logger
}

func (r Retrier) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = DefaultAttempts
	}
	base := r.BaseDelay
	if base <= 0 {
		base = DefaultBaseDelay
	}
	sleep := r.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if attempt == attempts-1 || !apperr.Retryable(err) {
			return err
		}

		delay := base << attempt
		if ra := apperr.RetryAfter(err); ra > delay {
			delay = ra
		}
		r.Logger.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Str("kind", apperr.GetKind(err).String()).
			Msg("scoring call failed, retrying")

		if serr := sleep(ctx, delay); serr != nil {
			return err
		}
	}
	return err
}

// RetryingQualifier adds backoff retries to any Qualifier.
type RetryingQualifier struct {
	Next    Qualifier
	Retrier Retrier
}

func (q RetryingQualifier) Qualify(ctx context.Context, lead models.Lead) (models.Qualification, error) {
	var out models.Qualification
	err := q.Retrier.Do(ctx, func(ctx context.Context) error {
		res, err := q.Next.Qualify(ctx, lead)
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	return out, err
}
