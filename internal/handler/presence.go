package handler

import (
	"net/http"

	"github.com/openblox/liveops/internal/domain"
	"github.com/openblox/liveops/internal/service"
)

// PresenceHandler serves snapshot publishing and the aggregated player view.
type PresenceHandler struct {
	svc *service.PresenceService
}

// NewPresenceHandler creates a new PresenceHandler.
func NewPresenceHandler(svc *service.PresenceService) *PresenceHandler {
	return &PresenceHandler{svc: svc}
}

type publishRequest struct {
	PlaceID int64           `json:"placeId"`
	JobID   string          `json:"jobId"`
	Players []domain.Player `json:"players"`
}

// Publish handles POST /update.
func (h *PresenceHandler) Publish(w http.ResponseWriter, r *http.Request) {
	var req publishRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid JSON body"))
		return
	}

	snap, err := h.svc.Publish(r.Context(), service.PublishInput{
		PlaceID: req.PlaceID,
		JobID:   req.JobID,
		Players: req.Players,
	})
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"ok":    true,
		"jobId": snap.JobID,
	})
}

// Aggregate handles GET /players.
func (h *PresenceHandler) Aggregate(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Aggregate(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, res)
}
