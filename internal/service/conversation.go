package service

import (
	"context"
	"sort"

	"github.com/relayhq/chat-platform/internal/apperr"
	"github.com/relayhq/chat-platform/internal/model"
	"github.com/relayhq/chat-platform/internal/store"
	"github.com/relayhq/chat-platform/pkg/logger"
)

// ConversationService handles conversation operations and enforces the
// group authorization policy at the domain layer, not the transport.
type ConversationService struct {
	conversations *store.ConversationStore
	logger        *logger.Logger
}

// NewConversationService creates a conversation service.
func NewConversationService(conversations *store.ConversationStore, log *logger.Logger) *ConversationService {
	return &ConversationService{conversations: conversations, logger: log}
}

// OpenDirect returns the direct chat between the caller and the other
// participant, creating it on first contact. Racing first contacts
// converge on one record.
func (s *ConversationService) OpenDirect(ctx context.Context, caller, other string) (*model.ChatRoom, error) {
	conv, err := s.conversations.CreateOrGetDirect(caller, other)
	if err != nil {
		return nil, err
	}
	room := toChatRoom(conv, caller)
	return &room, nil
}

// ListRooms returns typed summaries of every conversation the caller
// belongs to, most recently active first.
func (s *ConversationService) ListRooms(ctx context.Context, caller string) (*model.ListChatRoomsResponse, error) {
	convs, err := s.conversations.ListForParticipant(caller)
	if err != nil {
		return nil, err
	}

	rooms := make([]model.ChatRoom, 0, len(convs))
	for i := range convs {
		rooms = append(rooms, toChatRoom(&convs[i], caller))
	}
	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].LastActivity.After(rooms[j].LastActivity)
	})

	return &model.ListChatRoomsResponse{Chats: rooms, Total: len(rooms)}, nil
}

// CreateGroup creates a group owned by the caller.
func (s *ConversationService) CreateGroup(ctx context.Context, req *model.CreateGroupRequest, caller string) (*model.Conversation, error) {
	return s.conversations.CreateGroup(req.Name, req.Description, req.AvatarURL, caller, req.Members)
}

// UpdateGroup updates group metadata. Owner only.
func (s *ConversationService) UpdateGroup(ctx context.Context, groupID string, req *model.UpdateGroupRequest, caller string) (*model.Conversation, error) {
	return s.conversations.UpdateMetadata(groupID, req, caller)
}

// AddMember adds a participant to a group. Owner or existing member.
func (s *ConversationService) AddMember(ctx context.Context, groupID, memberID, caller string) (*model.Conversation, error) {
	return s.conversations.AddMember(groupID, memberID, caller)
}

// RemoveMember removes a participant from a group. Owner, or a member
// removing themself.
func (s *ConversationService) RemoveMember(ctx context.Context, groupID, memberID, caller string) (*model.Conversation, error) {
	return s.conversations.RemoveMember(groupID, memberID, caller)
}

// DeleteGroup removes a group. Owner only.
func (s *ConversationService) DeleteGroup(ctx context.Context, groupID, caller string) error {
	return s.conversations.Delete(groupID, caller)
}

// Get returns a conversation the caller belongs to.
func (s *ConversationService) Get(ctx context.Context, id, caller string) (*model.Conversation, error) {
	conv, err := s.conversations.Get(id)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(caller) {
		return nil, apperr.NotFound("conversation", id)
	}
	return conv, nil
}

// toChatRoom builds the caller-relative summary. Direct chats are
// named after the other participant; profile display names live in the
// excluded user service, so the participant id stands in here.
func toChatRoom(conv *model.Conversation, caller string) model.ChatRoom {
	name := conv.Name
	if conv.Type == model.ConversationDirect {
		for _, p := range conv.Participants {
			if p != caller {
				name = p
				break
			}
		}
	}
	return model.ChatRoom{
		ID:           conv.ID,
		Type:         conv.Type,
		Name:         name,
		AvatarURL:    conv.AvatarURL,
		Participants: conv.Participants,
		LastActivity: conv.LastActivity,
	}
}
