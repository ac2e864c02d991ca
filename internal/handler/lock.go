package handler

import (
	"net/http"

	"github.com/openblox/liveops/internal/service"
)

// LockHandler serves the public lock state read.
type LockHandler struct {
	svc *service.LockService
}

// NewLockHandler creates a new LockHandler.
func NewLockHandler(svc *service.LockService) *LockHandler {
	return &LockHandler{svc: svc}
}

// State handles GET /lockState.
func (h *LockHandler) State(w http.ResponseWriter, r *http.Request) {
	lock, err := h.svc.Get(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, lock)
}
