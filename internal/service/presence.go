package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/openblox/liveops/internal/domain"
	"github.com/openblox/liveops/internal/store"
)

// PresenceService accepts per-process player snapshots and aggregates them
// into the global view. Snapshots self-expire via TTL; the shared index only
// exists to make aggregation cheap and is pruned on every rewrite.
type PresenceService struct {
	store        store.Store
	ttl          time.Duration
	rewriteEvery time.Duration
	collator     *collate.Collator
	logger       *slog.Logger
	now          func() time.Time
}

// NewPresenceService creates a presence registry. ttl bounds snapshot
// visibility; rewriteEvery throttles index rewrites per publisher to limit
// lost-update churn on the shared index record.
func NewPresenceService(st store.Store, ttl, rewriteEvery time.Duration, logger *slog.Logger) *PresenceService {
	return &PresenceService{
		store:        st,
		ttl:          ttl,
		rewriteEvery: rewriteEvery,
		collator:     collate.New(language.Und, collate.IgnoreCase),
		logger:       logger,
		now:          time.Now,
	}
}

// PublishInput is one game process's snapshot report.
type PublishInput struct {
	PlaceID int64
	JobID   string
	Players []domain.Player
}

// Publish validates and stores the snapshot, then refreshes the server
// index. A missing job id means a studio session and gets a synthesized one.
func (s *PresenceService) Publish(ctx context.Context, in PublishInput) (domain.ServerSnapshot, error) {
	if in.PlaceID <= 0 {
		return domain.ServerSnapshot{}, domain.ErrValidation("placeId must be a positive number")
	}
	if in.Players == nil {
		return domain.ServerSnapshot{}, domain.ErrValidation("players array is required")
	}

	jobID := in.JobID
	if jobID == "" {
		jobID = "studio-" + uuid.NewString()
	}

	now := s.now()
	snap := domain.ServerSnapshot{
		PlaceID:   in.PlaceID,
		JobID:     jobID,
		UpdatedAt: now,
		Players:   in.Players,
	}

	if err := saveTTL(ctx, s.store, snap.Key(), snap, s.ttl); err != nil {
		return domain.ServerSnapshot{}, domain.ErrInternal("write snapshot", err)
	}
	if err := s.refreshIndex(ctx, snap.Key(), now); err != nil {
		return domain.ServerSnapshot{}, domain.ErrInternal("update server index", err)
	}
	return snap, nil
}

// refreshIndex sets the publisher's entry and prunes stale ones. The rewrite
// is skipped while the publisher's own entry is fresh, which bounds how often
// concurrent publishers race on the shared record; the staleness window this
// opens is at most rewriteEvery and only affects the index, never snapshots.
func (s *PresenceService) refreshIndex(ctx context.Context, key string, now time.Time) error {
	idx := domain.ServerIndex{}
	if _, err := load(ctx, s.store, keyServerIndex, &idx); err != nil {
		return err
	}
	if seen, ok := idx[key]; ok && now.Sub(seen) < s.rewriteEvery {
		return nil
	}
	idx[key] = now
	idx.Prune(now, s.ttl)
	return save(ctx, s.store, keyServerIndex, idx)
}

// AggregateResult is the global presence view.
type AggregateResult struct {
	UpdatedAt    time.Time                 `json:"updatedAt"`
	TotalPlayers int                       `json:"totalPlayers"`
	Players      []domain.AggregatedPlayer `json:"players"`
}

type presenceKey struct {
	userID  int64
	placeID int64
}

// Aggregate flattens all live snapshots into a de-duplicated player list.
// A missing index means no servers online; snapshots that are gone or
// unreadable are treated as already expired.
func (s *PresenceService) Aggregate(ctx context.Context) (AggregateResult, error) {
	now := s.now()
	res := AggregateResult{UpdatedAt: now, Players: []domain.AggregatedPlayer{}}

	idx := domain.ServerIndex{}
	if _, err := load(ctx, s.store, keyServerIndex, &idx); err != nil {
		return res, domain.ErrInternal("read server index", err)
	}

	seen := map[presenceKey]struct{}{}
	for key, lastSeen := range idx {
		if now.Sub(lastSeen) > s.ttl {
			continue
		}
		var snap domain.ServerSnapshot
		ok, err := load(ctx, s.store, key, &snap)
		if err != nil {
			return res, domain.ErrInternal("read snapshot", err)
		}
		if !ok {
			continue
		}
		if now.Sub(snap.UpdatedAt) > s.ttl {
			continue
		}
		for _, p := range snap.Players {
			if p.UserID <= 0 {
				continue
			}
			k := presenceKey{userID: p.UserID, placeID: snap.PlaceID}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			res.Players = append(res.Players, domain.AggregatedPlayer{
				UserID:      p.UserID,
				Username:    p.Username,
				DisplayName: p.DisplayName,
				Team:        p.Team,
				PlaceID:     snap.PlaceID,
			})
		}
	}

	sort.SliceStable(res.Players, func(i, j int) bool {
		a, b := res.Players[i], res.Players[j]
		if c := s.collator.CompareString(a.Name(), b.Name()); c != 0 {
			return c < 0
		}
		if a.UserID != b.UserID {
			return a.UserID < b.UserID
		}
		return a.PlaceID < b.PlaceID
	})
	res.TotalPlayers = len(res.Players)
	return res, nil
}
