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

// GroupHandler handles group conversation endpoints.
type GroupHandler struct {
	service *service.ConversationService
	logger  *logger.Logger
}

// NewGroupHandler creates a new group handler.
func NewGroupHandler(svc *service.ConversationService, log *logger.Logger) *GroupHandler {
	return &GroupHandler{service: svc, logger: log}
}

// Create handles POST /api/v1/groups
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetUserID(ctx)

	var req model.CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := middleware.ValidateGroupName(req.Name); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	group, err := h.service.CreateGroup(ctx, &req, caller)
	if err != nil {
		h.logger.Error("failed to create group", "user_id", caller, "error", err)
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, group)
}

// Update handles PUT /api/v1/groups/{id}
func (h *GroupHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetUserID(ctx)
	groupID := chi.URLParam(r, "id")

	var req model.UpdateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name != "" {
		if err := middleware.ValidateGroupName(req.Name); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	group, err := h.service.UpdateGroup(ctx, groupID, &req, caller)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, group)
}

// Delete handles DELETE /api/v1/groups/{id}
func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetUserID(ctx)
	groupID := chi.URLParam(r, "id")

	if err := h.service.DeleteGroup(ctx, groupID, caller); err != nil {
		writeAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddMember handles POST /api/v1/groups/{id}/members
func (h *GroupHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetUserID(ctx)
	groupID := chi.URLParam(r, "id")

	var req model.AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := middleware.ValidateParticipantID(req.MemberID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	group, err := h.service.AddMember(ctx, groupID, req.MemberID, caller)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, group)
}

// RemoveMember handles DELETE /api/v1/groups/{id}/members/{memberID}
func (h *GroupHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetUserID(ctx)
	groupID := chi.URLParam(r, "id")
	memberID := chi.URLParam(r, "memberID")

	group, err := h.service.RemoveMember(ctx, groupID, memberID, caller)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, group)
}
