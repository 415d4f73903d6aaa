package services

import (
	"context"
	"time"
)

// RetryPolicy is the single retry configuration shared by the message
// service (persistence) and the AI responder (backend calls), replacing
// ad hoc loops in callers.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

// Do runs op up to Attempts times with linear backoff between attempts.
// The context cancels waiting, not a running attempt.
func (p RetryPolicy) Do(ctx context.Context, op func() error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.Backoff * time.Duration(attempt)):
		}
	}
	return err
}
