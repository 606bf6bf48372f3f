package model

import (
	"time"
)

// TypingEvent is the transient payload broadcast on the conversation
// typing channel. Typing events are never persisted and never routed
// to private channels.
type TypingEvent struct {
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
	UserName       string `json:"user_name"`
	IsTyping       bool   `json:"isTyping"`
}

// ReadReceiptEvent is published after a successful read transition.
type ReadReceiptEvent struct {
	MessageID string `json:"message_id"`
	ReadBy    string `json:"read_by"`
}

// SendErrorEvent is published to the sender's private error channel
// when a realtime send cannot be persisted.
type SendErrorEvent struct {
	Error string `json:"error"`
}

// PresenceEvent announces an explicit presence transition.
type PresenceEvent struct {
	UserID   string    `json:"user_id"`
	Online   bool      `json:"online"`
	LastSeen time.Time `json:"last_seen"`
}

// TypingRequest is the inbound fire-and-forget typing indicator.
type TypingRequest struct {
	ConversationID string `json:"conversation_id"`
	IsTyping       bool   `json:"isTyping"`
}
