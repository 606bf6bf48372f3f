// Package router computes delivery channels for persisted messages and
// transient events and publishes to each exactly once.
package router

import (
	"encoding/json"
	"strings"

	"github.com/relayhq/chat-platform/internal/chatid"
	"github.com/relayhq/chat-platform/internal/model"
	"github.com/relayhq/chat-platform/internal/nats"
	"github.com/relayhq/chat-platform/pkg/logger"
	"github.com/relayhq/chat-platform/pkg/metrics"
)

// Publisher is the transport the router fans out through. Publishing
// is fire-and-forget; slow subscribers exert no backpressure here.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Router maps persisted messages and transient events onto delivery
// channels. It never mutates a message: it reads the just-persisted
// record to compute routing, and persistence failure upstream means
// nothing is published.
type Router struct {
	pub    Publisher
	logger *logger.Logger
}

// New creates a router over the given transport.
func New(pub Publisher, log *logger.Logger) *Router {
	return &Router{pub: pub, logger: log}
}

// ChannelsFor computes the full, deduplicated channel set for a
// persisted message. Rules are evaluated independently and unioned:
//
//  1. The conversation broadcast channel, always.
//  2. For direct conversations, each embedded participant's private
//     channel. This is deliberate redundant delivery for participants
//     not subscribed to the broadcast; clients de-duplicate by
//     message id.
//  3. The explicit receiver's private channel, when a receiver
//     distinct from the sender is declared.
//  4. The group broadcast channel, when a group reference is carried.
//
// Duplicates are suppressed by channel name, preserving first
// occurrence order.
func ChannelsFor(msg *model.Message) []string {
	channels := []string{nats.ConversationSubject(msg.ConversationID)}

	if p1, p2, ok := chatid.ParseDirectID(msg.ConversationID); ok {
		channels = append(channels,
			nats.UserMessagesSubject(p1),
			nats.UserMessagesSubject(p2),
		)
	}

	if msg.ReceiverID != "" && msg.ReceiverID != msg.SenderID {
		channels = append(channels, nats.UserMessagesSubject(msg.ReceiverID))
	}

	if msg.GroupID != "" {
		channels = append(channels, nats.GroupSubject(msg.GroupID))
	}

	return dedupe(channels)
}

// RouteMessage publishes the message to every derived channel exactly
// once. A failed publish to one channel is logged and counted but
// never rolls back persistence or blocks the remaining channels: the
// durable record already exists and is retrievable through history.
func (r *Router) RouteMessage(msg *model.Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		r.logger.Error("failed to marshal message for routing",
			"message_id", msg.ID, "error", err)
		return
	}

	for _, channel := range ChannelsFor(msg) {
		r.publish(channel, payload)
	}
}

// RouteTyping broadcasts a typing indicator on the conversation typing
// channel only. Typing events have no persistence and no retry; a
// dropped indicator is an accepted loss.
func (r *Router) RouteTyping(event *model.TypingEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	r.publish(nats.TypingSubject(event.ConversationID), payload)
	metrics.TypingEventsTotal.Inc()
}

// RouteReadReceipt publishes a read receipt after a successful read
// transition.
func (r *Router) RouteReadReceipt(messageID, readerID string) {
	payload, err := json.Marshal(&model.ReadReceiptEvent{
		MessageID: messageID,
		ReadBy:    readerID,
	})
	if err != nil {
		return
	}
	r.publish(nats.ReadSubject(messageID), payload)
	metrics.ReadReceiptsTotal.Inc()
}

// RouteError publishes a single error payload to the sender's private
// error channel and performs no other routing.
func (r *Router) RouteError(senderID, reason string) {
	payload, err := json.Marshal(&model.SendErrorEvent{Error: reason})
	if err != nil {
		return
	}
	r.publish(nats.UserErrorsSubject(senderID), payload)
}

func (r *Router) publish(channel string, payload []byte) {
	class := channelClass(channel)
	if err := r.pub.Publish(channel, payload); err != nil {
		// Partial delivery failure: observable, never surfaced.
		metrics.DeliveryFailures.WithLabelValues(class).Inc()
		r.logger.Warn("delivery channel publish failed",
			"channel", channel, "error", err)
		return
	}
	metrics.ChannelsPublished.WithLabelValues(class).Inc()
}

// channelClass buckets channel names for metric labels.
func channelClass(channel string) string {
	switch {
	case strings.HasSuffix(channel, ".typing"):
		return "typing"
	case strings.HasSuffix(channel, ".errors"):
		return "error"
	case strings.HasSuffix(channel, ".messages"):
		return "private"
	case strings.HasPrefix(channel, "group."):
		return "group"
	case strings.HasPrefix(channel, "read."):
		return "read"
	case strings.HasPrefix(channel, "presence."):
		return "presence"
	default:
		return "broadcast"
	}
}

func dedupe(channels []string) []string {
	seen := make(map[string]bool, len(channels))
	out := channels[:0]
	for _, c := range channels {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
