package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/openblox/liveops/internal/domain"
	"github.com/openblox/liveops/internal/store"
)

// LockService controls the global game lock. Toggles are rate-limited per
// identity via a TTL cooldown mark; the lock itself is last-write-wins
// across identities.
type LockService struct {
	store    store.Store
	cooldown time.Duration
	events   EventPublisher
	logger   *slog.Logger
	now      func() time.Time
}

// NewLockService creates a lock controller with the given per-identity
// cooldown window.
func NewLockService(st store.Store, cooldown time.Duration, events EventPublisher, logger *slog.Logger) *LockService {
	if events == nil {
		events = NopPublisher{}
	}
	return &LockService{store: st, cooldown: cooldown, events: events, logger: logger, now: time.Now}
}

// Get returns the lock singleton. Absence means unlocked.
func (s *LockService) Get(ctx context.Context) (domain.GameLock, error) {
	lock := domain.GameLock{}
	if _, err := load(ctx, s.store, keyGameLock, &lock); err != nil {
		return domain.GameLock{}, domain.ErrInternal("read lock", err)
	}
	return lock, nil
}

// Set overwrites the lock state unless identity toggled within the cooldown
// window. On a cooldown violation the remaining wait is returned alongside
// the error.
func (s *LockService) Set(ctx context.Context, locked bool, identity string) (domain.GameLock, time.Duration, error) {
	if identity == "" {
		return domain.GameLock{}, 0, domain.ErrValidation("identity is required")
	}

	now := s.now()

	var mark domain.CooldownMark
	found, err := load(ctx, s.store, domain.CooldownKey(identity), &mark)
	if err != nil {
		return domain.GameLock{}, 0, domain.ErrInternal("read cooldown", err)
	}
	if found {
		if remaining := s.cooldown - now.Sub(mark.At); remaining > 0 {
			return domain.GameLock{}, remaining, domain.ErrCooldown(
				fmt.Sprintf("lock toggled recently; retry in %s", remaining.Round(time.Second)))
		}
	}

	lock := domain.GameLock{Locked: locked, By: identity, At: now}
	if err := save(ctx, s.store, keyGameLock, lock); err != nil {
		return domain.GameLock{}, 0, domain.ErrInternal("write lock", err)
	}
	if err := saveTTL(ctx, s.store, domain.CooldownKey(identity), domain.CooldownMark{At: now}, s.cooldown); err != nil {
		return domain.GameLock{}, 0, domain.ErrInternal("write cooldown", err)
	}

	publishLockEvent(ctx, s.events, s.logger, lockEvent{Locked: locked, By: identity, At: now})
	s.logger.Info("lock updated", "locked", locked, "by", identity)
	return lock, 0, nil
}
