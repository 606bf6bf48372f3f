package nats

// Delivery channel names. Clients subscribe to these subjects, so the
// formats are part of the wire contract and must not change.

// ConversationSubject is the broadcast channel every live subscriber
// to a conversation receives messages on.
func ConversationSubject(conversationID string) string {
	return "chat." + conversationID
}

// TypingSubject carries transient typing indicators for a conversation.
func TypingSubject(conversationID string) string {
	return "chat." + conversationID + ".typing"
}

// UserMessagesSubject is a participant's private notification channel.
// Direct messages are delivered here redundantly so a participant who
// is not viewing the conversation still gets notified; clients
// de-duplicate by message id.
func UserMessagesSubject(participantID string) string {
	return "user." + participantID + ".messages"
}

// UserErrorsSubject is a participant's private error channel.
func UserErrorsSubject(participantID string) string {
	return "user." + participantID + ".errors"
}

// GroupSubject is the broadcast channel for a group.
func GroupSubject(groupID string) string {
	return "group." + groupID
}

// ReadSubject carries the read receipt for a single message.
func ReadSubject(messageID string) string {
	return "read." + messageID
}

// PresenceSubject announces a participant's presence transitions.
func PresenceSubject(participantID string) string {
	return "presence." + participantID
}
