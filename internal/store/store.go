// Package store defines the key-value contract all coordination state lives
// behind: single-key reads and last-write-wins writes with optional TTL
// expiry. There are no transactions and no cross-key ordering; every
// component is written to tolerate that.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned by Get when a key is absent or expired.
var ErrKeyNotFound = errors.New("store: key not found")

// Store is the injected key-value medium.
type Store interface {
	// Get returns the value for key, or ErrKeyNotFound if the key is absent
	// or its TTL has elapsed.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put writes a value with no expiry, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// PutTTL writes a value that expires ttl from now.
	PutTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// TransientError marks a store failure worth retrying (overload,
// connection churn). The retry wrapper keys off it via IsTransient.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return "store: transient failure: " + e.Err.Error() }

func (e *TransientError) Unwrap() error { return e.Err }

// IsTransient reports whether err is (or wraps) a TransientError.
func IsTransient(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}
