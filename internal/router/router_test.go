package router

import (
	"encoding/json"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/relayhq/chat-platform/internal/model"
	"github.com/relayhq/chat-platform/pkg/logger"
)

// fakePublisher records publishes and can fail selected subjects.
type fakePublisher struct {
	mu       sync.Mutex
	subjects []string
	payloads map[string][]byte
	failOn   map[string]bool
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{
		payloads: map[string][]byte{},
		failOn:   map[string]bool{},
	}
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn[subject] {
		return errors.New("transport unavailable")
	}
	f.subjects = append(f.subjects, subject)
	f.payloads[subject] = data
	return nil
}

func TestChannelsForDirectMessage(t *testing.T) {
	msg := &model.Message{
		ID:             "m1",
		ConversationID: "direct_u1_u2",
		SenderID:       "u1",
	}

	got := ChannelsFor(msg)
	want := []string{
		"chat.direct_u1_u2",
		"user.u1.messages",
		"user.u2.messages",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("channels = %v, want %v", got, want)
	}
}

func TestChannelsForExplicitReceiverIsDeduplicated(t *testing.T) {
	// Receiver u2 is already covered by the direct-id rule; the channel
	// set must still contain its name exactly once.
	msg := &model.Message{
		ID:             "m1",
		ConversationID: "direct_u1_u2",
		SenderID:       "u1",
		ReceiverID:     "u2",
	}

	got := ChannelsFor(msg)
	want := []string{
		"chat.direct_u1_u2",
		"user.u1.messages",
		"user.u2.messages",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("channels = %v, want %v", got, want)
	}
}

func TestChannelsForGroupMessage(t *testing.T) {
	msg := &model.Message{
		ID:             "m1",
		ConversationID: "conv-42",
		SenderID:       "u1",
		GroupID:        "g7",
	}

	got := ChannelsFor(msg)
	want := []string{"chat.conv-42", "group.g7"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("channels = %v, want %v", got, want)
	}
}

func TestChannelsForReceiverOutsideDirectPair(t *testing.T) {
	msg := &model.Message{
		ID:             "m1",
		ConversationID: "conv-42",
		SenderID:       "u1",
		ReceiverID:     "u9",
	}

	got := ChannelsFor(msg)
	want := []string{"chat.conv-42", "user.u9.messages"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("channels = %v, want %v", got, want)
	}
}

func TestChannelsForIgnoresSelfReceiver(t *testing.T) {
	msg := &model.Message{
		ID:             "m1",
		ConversationID: "conv-42",
		SenderID:       "u1",
		ReceiverID:     "u1",
	}

	got := ChannelsFor(msg)
	want := []string{"chat.conv-42"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("channels = %v, want %v", got, want)
	}
}

func TestRouteMessagePublishesEachChannelOnce(t *testing.T) {
	pub := newFakePublisher()
	rt := New(pub, logger.NewNop())

	msg := &model.Message{
		ID:             "m1",
		ConversationID: "direct_u1_u2",
		SenderID:       "u1",
		ReceiverID:     "u2",
		Content:        "hi",
	}
	rt.RouteMessage(msg)

	seen := map[string]int{}
	for _, s := range pub.subjects {
		seen[s]++
	}
	for subject, n := range seen {
		if n != 1 {
			t.Fatalf("subject %q published %d times", subject, n)
		}
	}
	if len(seen) != 3 {
		t.Fatalf("published %d channels, want 3: %v", len(seen), pub.subjects)
	}

	var decoded model.Message
	if err := json.Unmarshal(pub.payloads["chat.direct_u1_u2"], &decoded); err != nil {
		t.Fatalf("payload not a message: %v", err)
	}
	if decoded.ID != "m1" || decoded.Content != "hi" {
		t.Fatalf("payload = %+v", decoded)
	}
}

func TestRouteMessageFailureDoesNotBlockOtherChannels(t *testing.T) {
	pub := newFakePublisher()
	pub.failOn["user.u1.messages"] = true
	rt := New(pub, logger.NewNop())

	rt.RouteMessage(&model.Message{
		ID:             "m1",
		ConversationID: "direct_u1_u2",
		SenderID:       "u1",
	})

	want := []string{"chat.direct_u1_u2", "user.u2.messages"}
	if !reflect.DeepEqual(pub.subjects, want) {
		t.Fatalf("published = %v, want %v", pub.subjects, want)
	}
}

func TestRouteTypingOnlyTouchesTypingChannel(t *testing.T) {
	pub := newFakePublisher()
	rt := New(pub, logger.NewNop())

	rt.RouteTyping(&model.TypingEvent{
		ConversationID: "direct_u1_u2",
		UserID:         "u1",
		UserName:       "User One",
		IsTyping:       true,
	})

	want := []string{"chat.direct_u1_u2.typing"}
	if !reflect.DeepEqual(pub.subjects, want) {
		t.Fatalf("published = %v, want %v", pub.subjects, want)
	}

	var ev model.TypingEvent
	if err := json.Unmarshal(pub.payloads[want[0]], &ev); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if !ev.IsTyping || ev.UserID != "u1" || ev.UserName != "User One" {
		t.Fatalf("event = %+v", ev)
	}
}

func TestRouteReadReceipt(t *testing.T) {
	pub := newFakePublisher()
	rt := New(pub, logger.NewNop())

	rt.RouteReadReceipt("m42", "u2")

	want := []string{"read.m42"}
	if !reflect.DeepEqual(pub.subjects, want) {
		t.Fatalf("published = %v, want %v", pub.subjects, want)
	}

	var ev model.ReadReceiptEvent
	if err := json.Unmarshal(pub.payloads["read.m42"], &ev); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if ev.MessageID != "m42" || ev.ReadBy != "u2" {
		t.Fatalf("event = %+v", ev)
	}
}

func TestRouteErrorOnlyTouchesSenderErrorChannel(t *testing.T) {
	pub := newFakePublisher()
	rt := New(pub, logger.NewNop())

	rt.RouteError("u1", "sender not resolved")

	want := []string{"user.u1.errors"}
	if !reflect.DeepEqual(pub.subjects, want) {
		t.Fatalf("published = %v, want %v", pub.subjects, want)
	}
}
