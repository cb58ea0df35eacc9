package kv

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"
)

// MaxRetries bounds how often a transient pathstore failure is retried.
const MaxRetries = 2

// StatusError is returned when pathstore answers with an unexpected status.
type StatusError struct {
	Op     string
	Key    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s node %s: status %d: %s", e.Op, e.Key, e.Status, e.Body)
}

// IsRetryable reports whether err is worth retrying: server errors, rate
// limiting, and transport failures that were not caused by the caller's
// context ending.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status >= 500 || se.Status == http.StatusTooManyRequests
	}
	return true
}

// Backoff returns a duration for attempt n (0-indexed) with jitter. Page
// turns are interactive, so the base stays in the tens of milliseconds.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * 50 * time.Millisecond
	if base > time.Second {
		base = time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

// retry runs fn until it succeeds, fails permanently, or runs out of
// attempts.
func retry(ctx context.Context, backoff func(int) time.Duration, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil || attempt >= MaxRetries || !IsRetryable(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(backoff(attempt)):
		}
	}
}
