// Package service provides business logic for the chat platform.
package service

import (
	"context"

	"github.com/relayhq/chat-platform/internal/model"
	"github.com/relayhq/chat-platform/internal/router"
	"github.com/relayhq/chat-platform/internal/store"
	"github.com/relayhq/chat-platform/pkg/logger"
	"github.com/relayhq/chat-platform/pkg/metrics"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// MessageService orchestrates the message lifecycle: persistence is
// the durability boundary, and routing happens exactly once per
// successful append.
type MessageService struct {
	messages      *store.MessageStore
	conversations *store.ConversationStore
	router        *router.Router
	logger        *logger.Logger
}

// NewMessageService creates a message service.
func NewMessageService(
	messages *store.MessageStore,
	conversations *store.ConversationStore,
	rt *router.Router,
	log *logger.Logger,
) *MessageService {
	return &MessageService{
		messages:      messages,
		conversations: conversations,
		router:        rt,
		logger:        log,
	}
}

// Send persists the draft and routes the stored record. If persistence
// fails nothing is published to delivery channels; the sender instead
// receives a payload on their private error channel and the error is
// returned. Routing failures after a successful append are absorbed by
// the router and never fail the send.
func (s *MessageService) Send(ctx context.Context, draft *model.MessageDraft, sender string) (*model.Message, error) {
	msg, err := s.messages.Append(draft, sender)
	if err != nil {
		if sender != "" {
			s.router.RouteError(sender, "failed to send message: "+err.Error())
		}
		return nil, err
	}

	if err := s.conversations.TouchActivity(msg.ConversationID); err != nil {
		s.logger.Warn("failed to bump conversation activity",
			"conversation_id", msg.ConversationID, "error", err)
	}

	s.router.RouteMessage(msg)
	metrics.MessagesTotal.WithLabelValues(string(msg.Kind)).Inc()

	return msg, nil
}

// Edit replaces message content. Sender-only.
func (s *MessageService) Edit(ctx context.Context, messageID, newContent, actor string) (*model.Message, error) {
	return s.messages.EditContent(messageID, newContent, actor)
}

// Delete removes a message. Sender-only.
func (s *MessageService) Delete(ctx context.Context, messageID, actor string) error {
	return s.messages.Delete(messageID, actor)
}

// React adds or replaces the actor's reaction. Reactions do not
// re-route the message.
func (s *MessageService) React(ctx context.Context, messageID, actor, emoji string) (*model.Message, error) {
	return s.messages.React(messageID, actor, emoji)
}

// TogglePin flips the pinned flag. Any chat participant may call it.
func (s *MessageService) TogglePin(ctx context.Context, messageID, actor string) (*model.Message, error) {
	return s.messages.TogglePin(messageID, actor)
}

// MarkRead records a read receipt. When the actor is the declared
// receiver the status transitions to read and a receipt is routed;
// otherwise the call is a silent no-op.
func (s *MessageService) MarkRead(ctx context.Context, messageID, actor string) error {
	_, applied, err := s.messages.MarkRead(messageID, actor)
	if err != nil {
		return err
	}
	if applied {
		s.router.RouteReadReceipt(messageID, actor)
	}
	return nil
}

// History returns a page of conversation messages, newest first.
func (s *MessageService) History(ctx context.Context, conversationID string, page, size int) (*model.MessagePage, error) {
	return s.messages.Page(conversationID, page, clampSize(size))
}

// Search returns messages matching query, optionally scoped to one
// conversation.
func (s *MessageService) Search(ctx context.Context, query, conversationID string, page, size int) (*model.MessagePage, error) {
	return s.messages.Search(query, conversationID, page, clampSize(size))
}

// Typing routes a transient typing indicator. Fire-and-forget: no
// persistence, no error surfaced.
func (s *MessageService) Typing(ctx context.Context, conversationID, actorID, actorName string, isTyping bool) {
	s.router.RouteTyping(&model.TypingEvent{
		ConversationID: conversationID,
		UserID:         actorID,
		UserName:       actorName,
		IsTyping:       isTyping,
	})
}

func clampSize(size int) int {
	if size <= 0 {
		return defaultPageSize
	}
	if size > maxPageSize {
		return maxPageSize
	}
	return size
}
