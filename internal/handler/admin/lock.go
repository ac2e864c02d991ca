package admin

import (
	"net/http"
	"strconv"

	"github.com/openblox/liveops/internal/domain"
	"github.com/openblox/liveops/internal/handler"
	"github.com/openblox/liveops/internal/service"
)

// LockHandler handles administrative lock toggles.
type LockHandler struct {
	svc *service.LockService
}

// NewLockHandler creates a new admin LockHandler.
func NewLockHandler(svc *service.LockService) *LockHandler {
	return &LockHandler{svc: svc}
}

type setLockRequest struct {
	Locked   bool   `json:"locked"`
	Identity string `json:"identity"`
}

// SetLock handles POST /admin/setLock. Cooldown violations answer 429 with a
// Retry-After header in whole seconds.
func (h *LockHandler) SetLock(w http.ResponseWriter, r *http.Request) {
	var req setLockRequest
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid JSON body"))
		return
	}

	lock, retryAfter, err := h.svc.Set(r.Context(), req.Locked, req.Identity)
	if err != nil {
		if retryAfter > 0 {
			seconds := int(retryAfter.Seconds())
			if seconds < 1 {
				seconds = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
		}
		handler.RespondError(w, err)
		return
	}

	handler.RespondJSON(w, http.StatusOK, lock)
}
