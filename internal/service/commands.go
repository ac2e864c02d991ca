package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/openblox/liveops/internal/domain"
	"github.com/openblox/liveops/internal/store"
)

// CommandService is the moderation command bus. Commands are delivered
// at-least-once within their TTL window via polling, then dropped silently.
// Acknowledgment removes a command for good: a consumer whose ack response
// is lost will not see the command again, so application must be idempotent.
type CommandService struct {
	store  store.Store
	ledger *LedgerService
	events EventPublisher
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// NewCommandService creates a command bus with the given TTL window.
func NewCommandService(st store.Store, ledger *LedgerService, events EventPublisher, ttl time.Duration, logger *slog.Logger) *CommandService {
	if events == nil {
		events = NopPublisher{}
	}
	return &CommandService{
		store:  st,
		ledger: ledger,
		events: events,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// EnqueueInput is an administrative moderation request.
type EnqueueInput struct {
	Action   domain.Action
	UserID   int64
	Reason   string
	IssuedBy string

	// Optional labels for the target user, display only.
	Username    string
	DisplayName string
}

// Enqueue validates and stores a new command, indexes it for polling and
// appends a pending ledger entry.
func (s *CommandService) Enqueue(ctx context.Context, in EnqueueInput) (domain.ModerationCommand, error) {
	if !in.Action.Valid() {
		return domain.ModerationCommand{}, domain.ErrValidation("action must be one of kick, ban, unban")
	}
	if in.UserID <= 0 {
		return domain.ModerationCommand{}, domain.ErrValidation("userId must be a positive number")
	}

	now := s.now()
	cmd := domain.ModerationCommand{
		ID:          uuid.NewString(),
		CreatedAt:   now,
		Action:      in.Action,
		UserID:      in.UserID,
		Reason:      domain.Clip(in.Reason, domain.MaxReasonLen),
		IssuedBy:    domain.Clip(in.IssuedBy, domain.MaxIssuedByLen),
		Username:    domain.Clip(in.Username, domain.MaxUsernameLen),
		DisplayName: domain.Clip(in.DisplayName, domain.MaxDisplayNameLen),
	}

	if err := saveTTL(ctx, s.store, cmd.Key(), cmd, s.ttl); err != nil {
		return domain.ModerationCommand{}, domain.ErrInternal("write command", err)
	}

	idx := domain.CommandIndex{}
	if _, err := load(ctx, s.store, keyCommandIndex, &idx); err != nil {
		return domain.ModerationCommand{}, domain.ErrInternal("read command index", err)
	}
	idx[cmd.ID] = now
	idx.Prune(now, s.ttl)
	if err := save(ctx, s.store, keyCommandIndex, idx); err != nil {
		return domain.ModerationCommand{}, domain.ErrInternal("write command index", err)
	}

	entry := domain.LedgerEntry{ModerationCommand: cmd, Status: domain.StatusPending}
	if err := s.ledger.Append(ctx, entry); err != nil {
		// The command is already live; the log entry is history, not
		// lifecycle state.
		s.logger.Warn("ledger append failed", "id", cmd.ID, "error", err)
	}

	publishCommandEvent(ctx, s.events, s.logger, commandEvent{
		Phase:    "issued",
		ID:       cmd.ID,
		Action:   cmd.Action,
		UserID:   cmd.UserID,
		IssuedBy: cmd.IssuedBy,
		At:       now,
	})

	s.logger.Info("command enqueued", "id", cmd.ID, "action", cmd.Action, "userId", cmd.UserID)
	return cmd, nil
}

// Poll returns live commands and prunes expired ids from the index. The
// prune-on-read is the only mechanism that stops redelivery of commands
// nobody ever acknowledged.
func (s *CommandService) Poll(ctx context.Context) ([]domain.ModerationCommand, error) {
	now := s.now()

	idx := domain.CommandIndex{}
	if _, err := load(ctx, s.store, keyCommandIndex, &idx); err != nil {
		return nil, domain.ErrInternal("read command index", err)
	}
	dropped := idx.Prune(now, s.ttl)

	cmds := make([]domain.ModerationCommand, 0, len(idx))
	for id := range idx {
		var cmd domain.ModerationCommand
		ok, err := load(ctx, s.store, domain.CommandKey(id), &cmd)
		if err != nil {
			return nil, domain.ErrInternal("read command", err)
		}
		if !ok {
			continue
		}
		cmds = append(cmds, cmd)
	}

	if dropped > 0 {
		if err := save(ctx, s.store, keyCommandIndex, idx); err != nil {
			return nil, domain.ErrInternal("prune command index", err)
		}
	}

	sort.SliceStable(cmds, func(i, j int) bool {
		if !cmds[i].CreatedAt.Equal(cmds[j].CreatedAt) {
			return cmds[i].CreatedAt.Before(cmds[j].CreatedAt)
		}
		return cmds[i].ID < cmds[j].ID
	})
	return cmds, nil
}

// AckInput is a consumer's report of the outcome of applying a command.
type AckInput struct {
	ID     string
	OK     bool
	Action domain.Action
	UserID int64
}

// Acknowledge retires the command and reconciles ledger and ban state. The
// command is deleted unconditionally, whatever the outcome, so it is never
// redelivered. An unknown id is accepted silently.
func (s *CommandService) Acknowledge(ctx context.Context, in AckInput) error {
	if in.ID == "" {
		return domain.ErrValidation("id is required")
	}
	banRelated := in.OK && (in.Action == domain.ActionBan || in.Action == domain.ActionUnban)
	if banRelated && in.UserID <= 0 {
		return domain.ErrValidation("userId must be a positive number for ban/unban acknowledgments")
	}

	now := s.now()

	if err := s.store.Delete(ctx, domain.CommandKey(in.ID)); err != nil {
		return domain.ErrInternal("delete command", err)
	}

	idx := domain.CommandIndex{}
	if _, err := load(ctx, s.store, keyCommandIndex, &idx); err != nil {
		return domain.ErrInternal("read command index", err)
	}
	if _, ok := idx[in.ID]; ok {
		delete(idx, in.ID)
		if err := save(ctx, s.store, keyCommandIndex, idx); err != nil {
			return domain.ErrInternal("write command index", err)
		}
	}

	entry, found, err := s.ledger.MarkAcked(ctx, in.ID, in.OK, now)
	if err != nil {
		s.logger.Warn("ledger ack update failed", "id", in.ID, "error", err)
	}

	if banRelated {
		switch in.Action {
		case domain.ActionBan:
			rec := domain.BanRecord{
				UserID:        in.UserID,
				BannedAt:      now,
				LastCommandID: in.ID,
			}
			if found {
				rec.Reason = entry.Reason
				rec.IssuedBy = entry.IssuedBy
			}
			if err := s.ledger.SetBan(ctx, rec); err != nil {
				return domain.ErrInternal("record ban", err)
			}
		case domain.ActionUnban:
			if err := s.ledger.RemoveBan(ctx, in.UserID); err != nil {
				return domain.ErrInternal("lift ban", err)
			}
		}
	}

	ok := in.OK
	publishCommandEvent(ctx, s.events, s.logger, commandEvent{
		Phase:  "acked",
		ID:     in.ID,
		Action: in.Action,
		UserID: in.UserID,
		OK:     &ok,
		At:     now,
	})

	s.logger.Info("command acknowledged", "id", in.ID, "ok", in.OK, "action", in.Action)
	return nil
}
