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

// MessageHandler handles message endpoints.
type MessageHandler struct {
	service *service.MessageService
	logger  *logger.Logger
}

// NewMessageHandler creates a new message handler.
func NewMessageHandler(svc *service.MessageService, log *logger.Logger) *MessageHandler {
	return &MessageHandler{service: svc, logger: log}
}

// Send handles POST /api/v1/messages
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sender := middleware.GetUserID(ctx)

	var draft model.MessageDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := middleware.ValidateConversationID(draft.ConversationID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateMessageContent(draft.Content); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	msg, err := h.service.Send(ctx, &draft, sender)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}

// List handles GET /api/v1/messages?chat_id=...&page=...&size=...
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conversationID := r.URL.Query().Get("chat_id")

	if err := middleware.ValidateConversationID(conversationID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, size := pageParams(r, 50)
	result, err := h.service.History(ctx, conversationID, page, size)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Search handles GET /api/v1/messages/search?query=...&chat_id=...
func (h *MessageHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query().Get("query")
	conversationID := r.URL.Query().Get("chat_id")

	if err := middleware.ValidateSearchQuery(query); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, size := pageParams(r, 20)
	result, err := h.service.Search(ctx, query, conversationID, page, size)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Edit handles PUT /api/v1/messages/{id}
func (h *MessageHandler) Edit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetUserID(ctx)
	messageID := chi.URLParam(r, "id")

	var req model.EditMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := middleware.ValidateMessageContent(req.Content); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	msg, err := h.service.Edit(ctx, messageID, req.Content, actor)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, msg)
}

// Delete handles DELETE /api/v1/messages/{id}
func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetUserID(ctx)
	messageID := chi.URLParam(r, "id")

	if err := h.service.Delete(ctx, messageID, actor); err != nil {
		writeAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// React handles POST /api/v1/messages/{id}/react
func (h *MessageHandler) React(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetUserID(ctx)
	messageID := chi.URLParam(r, "id")

	var req model.ReactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, err := h.service.React(ctx, messageID, actor, req.Emoji)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, msg)
}

// TogglePin handles PUT /api/v1/messages/{id}/pin
func (h *MessageHandler) TogglePin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetUserID(ctx)
	messageID := chi.URLParam(r, "id")

	msg, err := h.service.TogglePin(ctx, messageID, actor)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, msg)
}

// MarkRead handles POST /api/v1/messages/{id}/read
func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetUserID(ctx)
	messageID := chi.URLParam(r, "id")

	if err := h.service.MarkRead(ctx, messageID, actor); err != nil {
		writeAppError(w, err)
		return
	}

	// Mismatched readers get the same response as the declared
	// receiver: read receipts are best-effort and never fail the
	// caller's flow.
	w.WriteHeader(http.StatusNoContent)
}

// Typing handles POST /api/v1/typing
func (h *MessageHandler) Typing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := middleware.GetUserID(ctx)
	actorName := middleware.GetUserName(ctx)

	var req model.TypingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := middleware.ValidateConversationID(req.ConversationID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.service.Typing(ctx, req.ConversationID, actor, actorName, req.IsTyping)

	w.WriteHeader(http.StatusAccepted)
}
