package admin

import (
	"net/http"

	"github.com/openblox/liveops/internal/domain"
	"github.com/openblox/liveops/internal/handler"
	"github.com/openblox/liveops/internal/service"
)

// ModerationHandler handles the administrative moderation surface.
type ModerationHandler struct {
	commands *service.CommandService
	ledger   *service.LedgerService
}

// NewModerationHandler creates a new ModerationHandler.
func NewModerationHandler(commands *service.CommandService, ledger *service.LedgerService) *ModerationHandler {
	return &ModerationHandler{commands: commands, ledger: ledger}
}

type moderateRequest struct {
	Action   domain.Action `json:"action"`
	UserID   int64         `json:"userId"`
	Reason   string        `json:"reason"`
	IssuedBy string        `json:"issuedBy"`

	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

// Enqueue handles POST /admin/moderate.
func (h *ModerationHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	var req moderateRequest
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid JSON body"))
		return
	}

	cmd, err := h.commands.Enqueue(r.Context(), service.EnqueueInput{
		Action:      req.Action,
		UserID:      req.UserID,
		Reason:      req.Reason,
		IssuedBy:    req.IssuedBy,
		Username:    req.Username,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	handler.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"ok": true,
		"id": cmd.ID,
	})
}

type clearRequest struct {
	Identity string `json:"identity"`
}

// ClearLogs handles POST /admin/clearLogs.
func (h *ModerationHandler) ClearLogs(w http.ResponseWriter, r *http.Request) {
	var req clearRequest
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid JSON body"))
		return
	}

	if err := h.ledger.Clear(r.Context(), req.Identity); err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
