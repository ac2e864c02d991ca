package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/openblox/liveops/internal/domain"
	"github.com/openblox/liveops/internal/infra"
)

// EventPublisher is the moderation activity stream. Publishing is
// best-effort; a failure is logged and never fails the operation that
// produced the event.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// NopPublisher discards events.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, []byte, []byte) error { return nil }

type commandEvent struct {
	Phase    string        `json:"phase"` // issued | acked
	ID       string        `json:"id"`
	Action   domain.Action `json:"action"`
	UserID   int64         `json:"userId"`
	OK       *bool         `json:"ok,omitempty"`
	IssuedBy string        `json:"issuedBy,omitempty"`
	At       time.Time     `json:"at"`
}

type lockEvent struct {
	Locked bool      `json:"locked"`
	By     string    `json:"by"`
	At     time.Time `json:"at"`
}

func publishCommandEvent(ctx context.Context, events EventPublisher, logger *slog.Logger, ev commandEvent) {
	raw, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if err := events.Publish(ctx, infra.TopicModerationCommand, []byte(ev.ID), raw); err != nil {
		logger.Warn("publish command event failed", "id", ev.ID, "phase", ev.Phase, "error", err)
	}
}

func publishLockEvent(ctx context.Context, events EventPublisher, logger *slog.Logger, ev lockEvent) {
	raw, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if err := events.Publish(ctx, infra.TopicModerationLock, []byte(ev.By), raw); err != nil {
		logger.Warn("publish lock event failed", "by", ev.By, "error", err)
	}
}
