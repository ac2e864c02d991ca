package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPutGet(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k", []byte(`{"a":1}`)))

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), got)
}

func TestMemoryGetMissing(t *testing.T) {
	s := NewMemory()

	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMemoryTTLExpiry(t *testing.T) {
	now := time.Now()
	s := NewMemory()
	s.Now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, s.PutTTL(ctx, "k", []byte("v"), time.Minute))

	_, err := s.Get(ctx, "k")
	require.NoError(t, err)

	now = now.Add(time.Minute + time.Second)
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMemoryDelete(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k", []byte("v")))
	require.NoError(t, s.Delete(ctx, "k"))
	require.NoError(t, s.Delete(ctx, "k")) // idempotent

	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestIsTransient(t *testing.T) {
	base := errors.New("connection reset")
	assert.True(t, IsTransient(&TransientError{Err: base}))
	assert.False(t, IsTransient(base))
	assert.False(t, IsTransient(nil))
}

// flakyStore fails the first n writes with a transient error.
type flakyStore struct {
	*Memory
	failures int
}

func (s *flakyStore) Put(ctx context.Context, key string, value []byte) error {
	if s.failures > 0 {
		s.failures--
		return &TransientError{Err: errors.New("overloaded")}
	}
	return s.Memory.Put(ctx, key, value)
}

func TestRetryEventuallySucceeds(t *testing.T) {
	inner := &flakyStore{Memory: NewMemory(), failures: 2}
	s := WithRetry(inner, 4).(*retryStore)
	s.base = time.Millisecond
	s.max = time.Millisecond

	err := s.Put(context.Background(), "k", []byte("v"))
	require.NoError(t, err)

	got, err := inner.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestRetryGivesUpAfterAttempts(t *testing.T) {
	inner := &flakyStore{Memory: NewMemory(), failures: 10}
	s := WithRetry(inner, 3).(*retryStore)
	s.base = time.Millisecond
	s.max = time.Millisecond

	err := s.Put(context.Background(), "k", []byte("v"))
	assert.True(t, IsTransient(err))
	assert.Equal(t, 7, inner.failures) // exactly 3 attempts consumed
}

func TestRetryDoesNotRetryPermanentErrors(t *testing.T) {
	inner := &permanentFailStore{}
	s := WithRetry(inner, 5).(*retryStore)
	s.base = time.Millisecond

	err := s.Put(context.Background(), "k", []byte("v"))
	require.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}

type permanentFailStore struct {
	calls int
}

func (s *permanentFailStore) Get(context.Context, string) ([]byte, error) {
	return nil, ErrKeyNotFound
}

func (s *permanentFailStore) Put(context.Context, string, []byte) error {
	s.calls++
	return errors.New("constraint violation")
}

func (s *permanentFailStore) PutTTL(context.Context, string, []byte, time.Duration) error {
	s.calls++
	return errors.New("constraint violation")
}

func (s *permanentFailStore) Delete(context.Context, string) error {
	s.calls++
	return errors.New("constraint violation")
}
