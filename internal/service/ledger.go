package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/openblox/liveops/internal/domain"
	"github.com/openblox/liveops/internal/store"
)

// LedgerService keeps the bounded moderation log and reconciles the
// currently-banned view from acknowledged outcomes. Issuance alone never
// touches ban state; only a confirmed ban/unban does.
type LedgerService struct {
	store    store.Store
	max      int
	operator string
	logger   *slog.Logger
}

// NewLedgerService creates a ledger capped at max entries. operator is the
// only identity allowed to clear it.
func NewLedgerService(st store.Store, max int, operator string, logger *slog.Logger) *LedgerService {
	return &LedgerService{store: st, max: max, operator: operator, logger: logger}
}

// Append prepends an entry and trims the log to its cap. Lost updates under
// concurrent appends are accepted; the log is advisory history, not the
// source of ban state.
func (s *LedgerService) Append(ctx context.Context, e domain.LedgerEntry) error {
	log := []domain.LedgerEntry{}
	if _, err := load(ctx, s.store, keyModerationLog, &log); err != nil {
		return err
	}
	log = append([]domain.LedgerEntry{e}, log...)
	if len(log) > s.max {
		log = log[:s.max]
	}
	return save(ctx, s.store, keyModerationLog, log)
}

// MarkAcked records the acknowledgment outcome on the matching entry.
// Reports found=false when the id is unknown (expired out of the log or
// never issued); that is not an error.
func (s *LedgerService) MarkAcked(ctx context.Context, id string, ok bool, at time.Time) (domain.LedgerEntry, bool, error) {
	log := []domain.LedgerEntry{}
	if _, err := load(ctx, s.store, keyModerationLog, &log); err != nil {
		return domain.LedgerEntry{}, false, err
	}
	for i := range log {
		if log[i].ID != id {
			continue
		}
		if ok {
			log[i].Status = domain.StatusApplied
		} else {
			log[i].Status = domain.StatusFailed
		}
		ackedAt := at
		log[i].AckedAt = &ackedAt
		if err := save(ctx, s.store, keyModerationLog, log); err != nil {
			return domain.LedgerEntry{}, false, err
		}
		return log[i], true, nil
	}
	return domain.LedgerEntry{}, false, nil
}

// History returns the full bounded log, most recent first.
func (s *LedgerService) History(ctx context.Context) ([]domain.LedgerEntry, error) {
	log := []domain.LedgerEntry{}
	if _, err := load(ctx, s.store, keyModerationLog, &log); err != nil {
		return nil, domain.ErrInternal("read moderation log", err)
	}
	return log, nil
}

// Find returns the log entry for one command id.
func (s *LedgerService) Find(ctx context.Context, id string) (domain.LedgerEntry, bool, error) {
	log, err := s.History(ctx)
	if err != nil {
		return domain.LedgerEntry{}, false, err
	}
	for _, e := range log {
		if e.ID == id {
			return e, true, nil
		}
	}
	return domain.LedgerEntry{}, false, nil
}

// SetBan inserts or overwrites the ban record for a user.
func (s *LedgerService) SetBan(ctx context.Context, rec domain.BanRecord) error {
	state := domain.BanState{}
	if _, err := load(ctx, s.store, keyBanState, &state); err != nil {
		return err
	}
	state[rec.UserID] = rec
	return save(ctx, s.store, keyBanState, state)
}

// RemoveBan lifts the ban for a user. Removing an absent ban is a no-op.
func (s *LedgerService) RemoveBan(ctx context.Context, userID int64) error {
	state := domain.BanState{}
	if _, err := load(ctx, s.store, keyBanState, &state); err != nil {
		return err
	}
	delete(state, userID)
	return save(ctx, s.store, keyBanState, state)
}

// CurrentBans returns confirmed bans, most recent first.
func (s *LedgerService) CurrentBans(ctx context.Context) ([]domain.BanRecord, error) {
	state := domain.BanState{}
	if _, err := load(ctx, s.store, keyBanState, &state); err != nil {
		return nil, domain.ErrInternal("read ban state", err)
	}
	bans := make([]domain.BanRecord, 0, len(state))
	for _, rec := range state {
		bans = append(bans, rec)
	}
	sort.SliceStable(bans, func(i, j int) bool {
		if !bans[i].BannedAt.Equal(bans[j].BannedAt) {
			return bans[i].BannedAt.After(bans[j].BannedAt)
		}
		return bans[i].UserID < bans[j].UserID
	})
	return bans, nil
}

// Clear wipes the log and the ban state. Only the designated operator may
// do this. The two deletes are independent; a reader racing between them can
// see one cleared and the other not.
func (s *LedgerService) Clear(ctx context.Context, identity string) error {
	if s.operator == "" || identity != s.operator {
		return domain.ErrForbidden("only the designated operator may clear moderation history")
	}
	if err := s.store.Delete(ctx, keyModerationLog); err != nil {
		return domain.ErrInternal("clear moderation log", err)
	}
	if err := s.store.Delete(ctx, keyBanState); err != nil {
		return domain.ErrInternal("clear ban state", err)
	}
	s.logger.Info("moderation history cleared", "by", identity)
	return nil
}
