package handler

import (
	"net/http"

	"github.com/openblox/liveops/internal/domain"
	"github.com/openblox/liveops/internal/service"
)

// LedgerHandler serves the public moderation views.
type LedgerHandler struct {
	svc *service.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(svc *service.LedgerService) *LedgerHandler {
	return &LedgerHandler{svc: svc}
}

// CurrentBans handles GET /moderated.
func (h *LedgerHandler) CurrentBans(w http.ResponseWriter, r *http.Request) {
	bans, err := h.svc.CurrentBans(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"ok":    true,
		"items": bans,
	})
}

// History handles GET /history. With ?id= it returns the single matching
// ledger entry, 404 if unknown.
func (h *LedgerHandler) History(w http.ResponseWriter, r *http.Request) {
	if id := r.URL.Query().Get("id"); id != "" {
		entry, found, err := h.svc.Find(r.Context(), id)
		if err != nil {
			RespondError(w, err)
			return
		}
		if !found {
			RespondError(w, domain.ErrNotFound("ledger entry", id))
			return
		}
		RespondJSON(w, http.StatusOK, map[string]interface{}{
			"ok":   true,
			"item": entry,
		})
		return
	}

	log, err := h.svc.History(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"ok":    true,
		"items": log,
	})
}
