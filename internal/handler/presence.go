package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/relayhq/chat-platform/internal/middleware"
	"github.com/relayhq/chat-platform/internal/presence"
	"github.com/relayhq/chat-platform/pkg/logger"
)

// PresenceHandler exposes the presence lookup and heartbeat.
type PresenceHandler struct {
	service *presence.Service
	logger  *logger.Logger
}

// NewPresenceHandler creates a new presence handler.
func NewPresenceHandler(svc *presence.Service, log *logger.Logger) *PresenceHandler {
	return &PresenceHandler{service: svc, logger: log}
}

// PresenceResponse is the presence lookup result.
type PresenceResponse struct {
	UserID   string     `json:"user_id"`
	Online   bool       `json:"online"`
	LastSeen *time.Time `json:"last_seen,omitempty"`
}

// Get handles GET /api/v1/presence/{userID}
func (h *PresenceHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if err := middleware.ValidateParticipantID(userID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := PresenceResponse{
		UserID: userID,
		Online: h.service.Online(userID),
	}
	if last := h.service.LastSeen(userID); !last.IsZero() {
		resp.LastSeen = &last
	}

	writeJSON(w, http.StatusOK, resp)
}

// Heartbeat handles POST /api/v1/presence/heartbeat
func (h *PresenceHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetUserID(r.Context())
	h.service.Heartbeat(caller)
	w.WriteHeader(http.StatusNoContent)
}
