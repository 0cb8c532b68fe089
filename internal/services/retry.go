package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/vendora/backend/internal/models"
)

const (
	DefaultMaxConflictRetries = 50
	conflictBackoffBase       = time.Millisecond
	conflictBackoffMax        = 20 * time.Millisecond
)

// conflictRetrier reruns a load-mutate-save step while the store reports a version
// conflict. Business errors are returned on the first attempt.
type conflictRetrier struct {
	maxRetries int
}

func newConflictRetrier(maxRetries int) conflictRetrier {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxConflictRetries
	}
	return conflictRetrier{maxRetries: maxRetries}
}

func (r conflictRetrier) do(ctx context.Context, step func() error) error {
	for attempt := 0; ; attempt++ {
		err := step()
		if !errors.Is(err, models.ErrVersionConflict) {
			return err
		}
		if attempt >= r.maxRetries {
			return fmt.Errorf("%w: gave up after %d attempts", ErrContention, attempt+1)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff(attempt)):
		}
	}
}

func backoff(attempt int) time.Duration {
	d := conflictBackoffBase << min(attempt, 5)
	d = min(d, conflictBackoffMax)
	return d/2 + rand.N(d/2+1)
}
