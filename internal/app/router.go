// Package app assembles services and handlers into the HTTP surface.
package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/openblox/liveops/internal/auth"
	"github.com/openblox/liveops/internal/handler"
	adminhandler "github.com/openblox/liveops/internal/handler/admin"
	"github.com/openblox/liveops/internal/service"
)

// Deps carries everything the router needs.
type Deps struct {
	Presence *service.PresenceService
	Commands *service.CommandService
	Ledger   *service.LedgerService
	Lock     *service.LockService

	Secrets              auth.Secrets
	HistoryRequiresAdmin bool

	Logger *slog.Logger

	// Health is optional; wired only when a backing pool exists.
	Health http.HandlerFunc
}

// NewRouter builds the chi router with the full middleware chain and all
// routes.
func NewRouter(d Deps) chi.Router {
	presenceHandler := handler.NewPresenceHandler(d.Presence)
	commandHandler := handler.NewCommandHandler(d.Commands)
	ledgerHandler := handler.NewLedgerHandler(d.Ledger)
	lockHandler := handler.NewLockHandler(d.Lock)
	moderationAdmin := adminhandler.NewModerationHandler(d.Commands, d.Ledger)
	lockAdmin := adminhandler.NewLockHandler(d.Lock)

	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(d.Logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(d.Logger))
	r.Use(handler.CORS)
	r.Use(handler.JSONContentType)

	if d.Health != nil {
		r.Get("/health", d.Health)
	}

	// Public reads
	r.Get("/players", presenceHandler.Aggregate)
	r.Get("/moderated", ledgerHandler.CurrentBans)
	r.Get("/lockState", lockHandler.State)
	if d.HistoryRequiresAdmin {
		r.With(auth.RequireAdmin(d.Secrets)).Get("/history", ledgerHandler.History)
	} else {
		r.Get("/history", ledgerHandler.History)
	}

	// Game-process routes
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireProcess(d.Secrets))

		r.Post("/update", presenceHandler.Publish)
		r.Get("/commands", commandHandler.Poll)
		r.Post("/ack", commandHandler.Acknowledge)
	})

	// Admin routes
	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.RequireAdmin(d.Secrets))

		r.Post("/moderate", moderationAdmin.Enqueue)
		r.Post("/setLock", lockAdmin.SetLock)
		r.Post("/clearLogs", moderationAdmin.ClearLogs)
	})

	return r
}
