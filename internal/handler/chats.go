// Package handler provides HTTP handlers for the API.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/relayhq/chat-platform/internal/middleware"
	"github.com/relayhq/chat-platform/internal/model"
	"github.com/relayhq/chat-platform/internal/service"
	"github.com/relayhq/chat-platform/pkg/logger"
)

// ChatHandler handles conversation endpoints.
type ChatHandler struct {
	service *service.ConversationService
	logger  *logger.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(svc *service.ConversationService, log *logger.Logger) *ChatHandler {
	return &ChatHandler{service: svc, logger: log}
}

// List handles GET /api/v1/chats
func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetUserID(ctx)

	resp, err := h.service.ListRooms(ctx, caller)
	if err != nil {
		h.logger.Error("failed to list chats", "user_id", caller, "error", err)
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// CreateDirect handles POST /api/v1/chats/direct
func (h *ChatHandler) CreateDirect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetUserID(ctx)

	var req model.CreateDirectChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := middleware.ValidateParticipantID(req.ParticipantID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	room, err := h.service.OpenDirect(ctx, caller, req.ParticipantID)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, room)
}

// Get handles GET /api/v1/chats/{id}
func (h *ChatHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetUserID(ctx)
	conversationID := chi.URLParam(r, "id")

	if err := middleware.ValidateConversationID(conversationID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	conv, err := h.service.Get(ctx, conversationID, caller)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, conv)
}
