// Package model defines data structures for the chat platform.
package model

import (
	"time"
)

// ConversationType distinguishes the two conversation variants.
type ConversationType string

const (
	ConversationDirect ConversationType = "direct"
	ConversationGroup  ConversationType = "group"
)

// Conversation is the addressing unit for messages. Direct
// conversations have exactly two participants and a derived id; group
// conversations carry metadata and a server-generated id.
type Conversation struct {
	ID           string           `json:"id"`
	Type         ConversationType `json:"type"`
	Participants []string         `json:"participants"`
	CreatedAt    time.Time        `json:"created_at"`
	LastActivity time.Time        `json:"last_activity"`

	// Group-only attributes. Owner is the creating participant and is
	// immutable after creation.
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	Owner       string `json:"owner,omitempty"`
}

// HasParticipant reports whether p belongs to the conversation.
func (c *Conversation) HasParticipant(p string) bool {
	for _, id := range c.Participants {
		if id == p {
			return true
		}
	}
	return false
}

// ChatRoom is the typed summary returned when listing a participant's
// conversations.
type ChatRoom struct {
	ID           string           `json:"id"`
	Type         ConversationType `json:"type"`
	Name         string           `json:"name"`
	AvatarURL    string           `json:"avatar_url,omitempty"`
	Participants []string         `json:"participants"`
	LastActivity time.Time        `json:"last_activity"`
}

// CreateDirectChatRequest opens (or returns) the direct conversation
// with another participant.
type CreateDirectChatRequest struct {
	ParticipantID string `json:"participant_id"`
}

// CreateGroupRequest creates a group conversation. The caller becomes
// the owner and is always a member.
type CreateGroupRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	AvatarURL   string   `json:"avatar_url,omitempty"`
	Members     []string `json:"members,omitempty"`
}

// UpdateGroupRequest updates group metadata. Empty fields are left
// unchanged.
type UpdateGroupRequest struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// AddMemberRequest adds a participant to a group.
type AddMemberRequest struct {
	MemberID string `json:"member_id"`
}

// ListChatRoomsResponse is the response for listing conversations.
type ListChatRoomsResponse struct {
	Chats []ChatRoom `json:"chats"`
	Total int        `json:"total"`
}
