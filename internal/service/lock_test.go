package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openblox/liveops/internal/domain"
)

const testCooldown = 30 * time.Second

func newTestLock(t *testing.T) (*LockService, *testClock) {
	t.Helper()
	clock := newTestClock()
	st := newTestStore(clock)
	svc := NewLockService(st, testCooldown, nil, testLogger())
	svc.now = clock.Now
	return svc, clock
}

func TestLockAbsentMeansUnlocked(t *testing.T) {
	svc, _ := newTestLock(t)

	lock, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.False(t, lock.Locked)
}

func TestSetLockRequiresIdentity(t *testing.T) {
	svc, _ := newTestLock(t)

	_, _, err := svc.Set(context.Background(), true, "")
	require.Error(t, err)
	assert.Equal(t, 400, err.(*domain.AppError).Status)
}

func TestSetLockThenGet(t *testing.T) {
	svc, clock := newTestLock(t)
	ctx := context.Background()

	lock, retryAfter, err := svc.Set(ctx, true, "admin-1")
	require.NoError(t, err)
	assert.Zero(t, retryAfter)
	assert.True(t, lock.Locked)
	assert.Equal(t, "admin-1", lock.By)
	assert.Equal(t, clock.Now(), lock.At)

	got, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.True(t, got.Locked)
	assert.Equal(t, "admin-1", got.By)
}

func TestSetLockCooldownSameIdentity(t *testing.T) {
	svc, clock := newTestLock(t)
	ctx := context.Background()

	_, _, err := svc.Set(ctx, true, "admin-1")
	require.NoError(t, err)

	clock.Advance(10 * time.Second)
	_, retryAfter, err := svc.Set(ctx, false, "admin-1")
	require.Error(t, err)
	assert.Equal(t, 429, err.(*domain.AppError).Status)
	assert.Equal(t, testCooldown-10*time.Second, retryAfter)

	// The denied toggle must not have changed the lock.
	lock, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.True(t, lock.Locked)
}

func TestSetLockCooldownDoesNotAffectOtherIdentity(t *testing.T) {
	svc, clock := newTestLock(t)
	ctx := context.Background()

	_, _, err := svc.Set(ctx, true, "admin-1")
	require.NoError(t, err)

	clock.Advance(time.Second)
	lock, _, err := svc.Set(ctx, false, "admin-2")
	require.NoError(t, err)
	assert.False(t, lock.Locked)
	assert.Equal(t, "admin-2", lock.By)
}

func TestSetLockAllowedAfterCooldownElapses(t *testing.T) {
	svc, clock := newTestLock(t)
	ctx := context.Background()

	_, _, err := svc.Set(ctx, true, "admin-1")
	require.NoError(t, err)

	clock.Advance(testCooldown + time.Second)
	lock, _, err := svc.Set(ctx, false, "admin-1")
	require.NoError(t, err)
	assert.False(t, lock.Locked)
}
