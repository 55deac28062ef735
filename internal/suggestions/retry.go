package suggestions

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Retrying retries a Generator with exponential backoff. Input errors and
// context cancellation are returned immediately.
type Retrying struct {
	next        Generator
	maxAttempts int
	backoff     time.Duration
	log         *zap.Logger
}

func NewRetrying(next Generator, maxAttempts int, backoff time.Duration, log *zap.Logger) *Retrying {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Retrying{next: next, maxAttempts: maxAttempts, backoff: backoff, log: log}
}

func (r *Retrying) Generate(ctx context.Context, members []MemberProfile) (Suggestions, error) {
	if len(members) == 0 {
		return Suggestions{}, ErrNoMembers
	}

	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		if attempt > 1 {
			// backoff, 2*backoff, 4*backoff, ...
			wait := r.backoff << (attempt - 2)
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return Suggestions{}, ctx.Err()
			case <-timer.C:
			}
		}

		s, err := r.next.Generate(ctx, members)
		if err == nil {
			return s, nil
		}
		lastErr = err
		if !retryable(err) {
			return Suggestions{}, err
		}
		r.log.Warn("suggestion generation failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", r.maxAttempts),
			zap.Error(err))
	}
	return Suggestions{}, lastErr
}

func retryable(err error) bool {
	return !errors.Is(err, ErrNoMembers) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}
