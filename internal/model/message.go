package model

import (
	"time"
)

// MessageKind represents the content type of a message.
type MessageKind string

const (
	KindText  MessageKind = "text"
	KindImage MessageKind = "image"
	KindFile  MessageKind = "file"
)

// MessageStatus tracks the delivery lifecycle. Status only advances
// sent -> delivered -> read and never regresses.
type MessageStatus string

const (
	StatusSent      MessageStatus = "sent"
	StatusDelivered MessageStatus = "delivered"
	StatusRead      MessageStatus = "read"
)

// Reaction is one participant's emoji reaction. A participant has at
// most one entry per message; a new reaction replaces the old one.
type Reaction struct {
	Emoji     string    `json:"emoji"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Message is a persisted chat message. ID, SenderID and CreatedAt are
// immutable after append; the remaining fields are mutated in place by
// edit, react, pin and read operations.
type Message struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id"`
	SenderID       string `json:"sender_id"`

	// ReceiverID is set for direct messages with a declared receiver;
	// GroupID is set for messages addressed to a group.
	ReceiverID string `json:"receiver_id,omitempty"`
	GroupID    string `json:"group_id,omitempty"`

	Content string      `json:"content"`
	Kind    MessageKind `json:"kind"`

	CreatedAt time.Time  `json:"created_at"`
	EditedAt  *time.Time `json:"edited_at,omitempty"`

	Status MessageStatus `json:"status"`

	// Reactions is keyed by reacting participant id.
	Reactions map[string]Reaction `json:"reactions,omitempty"`

	Pinned bool `json:"pinned"`

	// File metadata, present for image and file kinds.
	FileURL  string `json:"file_url,omitempty"`
	FileName string `json:"file_name,omitempty"`
	FileSize int64  `json:"file_size,omitempty"`
}

// MessageDraft is the client payload for sending a message. The stored
// Message returned by the append, not the draft, is the source of
// truth for routing: it carries the generated id and timestamp.
type MessageDraft struct {
	ConversationID string      `json:"conversation_id"`
	ReceiverID     string      `json:"receiver_id,omitempty"`
	GroupID        string      `json:"group_id,omitempty"`
	Content        string      `json:"content"`
	Kind           MessageKind `json:"kind,omitempty"`
	FileURL        string      `json:"file_url,omitempty"`
	FileName       string      `json:"file_name,omitempty"`
	FileSize       int64       `json:"file_size,omitempty"`
}

// EditMessageRequest replaces message content. Sender-only.
type EditMessageRequest struct {
	Content string `json:"content"`
}

// ReactRequest adds or replaces the caller's reaction.
type ReactRequest struct {
	Emoji string `json:"emoji"`
}

// MessagePage is the pagination contract shared by history and search:
// messages ordered by created_at descending, a flag for older pages,
// and the total match count.
type MessagePage struct {
	Messages []Message `json:"messages"`
	HasMore  bool      `json:"hasMore"`
	Total    int       `json:"totalCount"`
}
