package store

import (
	"context"
	"time"
)

const (
	defaultRetryAttempts = 4
	retryBaseDelay       = 150 * time.Millisecond
	retryMaxDelay        = 2 * time.Second
)

// retryStore retries writes that fail transiently, with capped exponential
// backoff. Reads are not retried; callers re-poll anyway and a failed read
// has no state to lose.
type retryStore struct {
	inner    Store
	attempts int
	base     time.Duration
	max      time.Duration
}

// WithRetry wraps inner so that Put, PutTTL and Delete survive transient
// store failures. attempts <= 0 selects the default.
func WithRetry(inner Store, attempts int) Store {
	if attempts <= 0 {
		attempts = defaultRetryAttempts
	}
	return &retryStore{inner: inner, attempts: attempts, base: retryBaseDelay, max: retryMaxDelay}
}

func (s *retryStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.inner.Get(ctx, key)
}

func (s *retryStore) Put(ctx context.Context, key string, value []byte) error {
	return s.retry(ctx, func() error { return s.inner.Put(ctx, key, value) })
}

func (s *retryStore) PutTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.retry(ctx, func() error { return s.inner.PutTTL(ctx, key, value, ttl) })
}

func (s *retryStore) Delete(ctx context.Context, key string) error {
	return s.retry(ctx, func() error { return s.inner.Delete(ctx, key) })
}

func (s *retryStore) retry(ctx context.Context, op func() error) error {
	delay := s.base
	var err error
	for attempt := 0; attempt < s.attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if delay > s.max {
				delay = s.max
			}
		}
		err = op()
		if err == nil || !IsTransient(err) {
			return err
		}
	}
	return err
}
