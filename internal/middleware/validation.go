package middleware

import (
	"errors"
	"unicode/utf8"
)

// ValidateMessageContent validates message content.
func ValidateMessageContent(content string) error {
	if len(content) > 100000 { // ~100KB limit
		return errors.New("content exceeds maximum length")
	}
	if !utf8.ValidString(content) {
		return errors.New("content must be valid UTF-8")
	}
	return nil
}

// ValidateConversationID validates a conversation id. Direct ids are
// derived strings and group ids are UUIDs, so only shape is checked.
func ValidateConversationID(id string) error {
	if id == "" {
		return errors.New("conversation id cannot be empty")
	}
	if len(id) > 256 {
		return errors.New("conversation id exceeds maximum length")
	}
	return nil
}

// ValidateParticipantID validates an opaque participant id.
func ValidateParticipantID(id string) error {
	if id == "" {
		return errors.New("participant id cannot be empty")
	}
	if len(id) > 128 {
		return errors.New("participant id exceeds maximum length")
	}
	return nil
}

// ValidateGroupName validates a group name.
func ValidateGroupName(name string) error {
	if name == "" {
		return errors.New("group name cannot be empty")
	}
	if len(name) > 256 {
		return errors.New("group name exceeds maximum length")
	}
	if !utf8.ValidString(name) {
		return errors.New("group name must be valid UTF-8")
	}
	return nil
}

// ValidateSearchQuery validates a search query.
func ValidateSearchQuery(query string) error {
	if query == "" {
		return errors.New("query cannot be empty")
	}
	if len(query) > 512 {
		return errors.New("query exceeds maximum length")
	}
	return nil
}
