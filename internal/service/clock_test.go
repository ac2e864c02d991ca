package service

import (
	"io"
	"log/slog"
	"time"

	"github.com/openblox/liveops/internal/store"
)

// testClock drives both the store's expiry and the services' pruning so
// tests step time instead of sleeping.
type testClock struct {
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestStore(clock *testClock) *store.Memory {
	st := store.NewMemory()
	st.Now = clock.Now
	return st
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
