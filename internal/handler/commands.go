package handler

import (
	"net/http"

	"github.com/openblox/liveops/internal/domain"
	"github.com/openblox/liveops/internal/service"
)

// CommandHandler serves the game-process side of the command bus.
type CommandHandler struct {
	svc *service.CommandService
}

// NewCommandHandler creates a new CommandHandler.
func NewCommandHandler(svc *service.CommandService) *CommandHandler {
	return &CommandHandler{svc: svc}
}

// Poll handles GET /commands.
func (h *CommandHandler) Poll(w http.ResponseWriter, r *http.Request) {
	cmds, err := h.svc.Poll(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"ok":       true,
		"commands": cmds,
	})
}

type ackRequest struct {
	ID     string        `json:"id"`
	OK     bool          `json:"ok"`
	Action domain.Action `json:"action"`
	UserID int64         `json:"userId"`
}

// Acknowledge handles POST /ack.
func (h *CommandHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	var req ackRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid JSON body"))
		return
	}

	err := h.svc.Acknowledge(r.Context(), service.AckInput{
		ID:     req.ID,
		OK:     req.OK,
		Action: req.Action,
		UserID: req.UserID,
	})
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
