package store

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/relayhq/chat-platform/internal/apperr"
	"github.com/relayhq/chat-platform/internal/model"
)

func appendText(t *testing.T, s *MessageStore, conv, sender, content string) *model.Message {
	t.Helper()
	msg, err := s.Append(&model.MessageDraft{
		ConversationID: conv,
		Content:        content,
	}, sender)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	return msg
}

func TestAppendAssignsDefaults(t *testing.T) {
	s := NewMessageStore(openTestDB(t))

	msg := appendText(t, s, "direct_a_b", "a", "hi")
	if msg.ID == "" {
		t.Fatal("id not assigned")
	}
	if msg.Status != model.StatusSent {
		t.Fatalf("status = %q, want sent", msg.Status)
	}
	if msg.Kind != model.KindText {
		t.Fatalf("kind = %q, want text", msg.Kind)
	}
	if msg.CreatedAt.IsZero() {
		t.Fatal("created_at not assigned")
	}
	if msg.Pinned {
		t.Fatal("new message is pinned")
	}
	if len(msg.Reactions) != 0 {
		t.Fatalf("new message has reactions: %v", msg.Reactions)
	}
}

func TestPageOrdersNewestFirst(t *testing.T) {
	s := NewMessageStore(openTestDB(t))
	for i := 0; i < 5; i++ {
		appendText(t, s, "direct_a_b", "a", fmt.Sprintf("m%d", i))
	}

	page0, err := s.Page("direct_a_b", 0, 2)
	if err != nil {
		t.Fatalf("Page 0: %v", err)
	}
	if len(page0.Messages) != 2 {
		t.Fatalf("page 0 size = %d", len(page0.Messages))
	}
	if page0.Messages[0].Content != "m4" || page0.Messages[1].Content != "m3" {
		t.Fatalf("page 0 order: %q, %q", page0.Messages[0].Content, page0.Messages[1].Content)
	}
	if !page0.HasMore {
		t.Fatal("page 0 should have more")
	}
	if page0.Total != 5 {
		t.Fatalf("total = %d", page0.Total)
	}

	page2, err := s.Page("direct_a_b", 2, 2)
	if err != nil {
		t.Fatalf("Page 2: %v", err)
	}
	if len(page2.Messages) != 1 {
		t.Fatalf("page 2 size = %d", len(page2.Messages))
	}
	if page2.Messages[0].Content != "m0" {
		t.Fatalf("page 2 content = %q", page2.Messages[0].Content)
	}
	if page2.HasMore {
		t.Fatal("page 2 should be the last page")
	}
}

func TestPageScopesByConversation(t *testing.T) {
	s := NewMessageStore(openTestDB(t))
	appendText(t, s, "direct_a_b", "a", "one")
	appendText(t, s, "direct_a_c", "a", "other")

	page, err := s.Page("direct_a_b", 0, 10)
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if page.Total != 1 || page.Messages[0].Content != "one" {
		t.Fatalf("leaked messages across conversations: %+v", page)
	}
}

func TestSearchCaseInsensitiveAcrossConversations(t *testing.T) {
	s := NewMessageStore(openTestDB(t))
	appendText(t, s, "direct_a_b", "a", "Hello world")
	appendText(t, s, "direct_a_c", "a", "say HELLO")
	appendText(t, s, "direct_a_b", "b", "unrelated")

	all, err := s.Search("hello", "", 0, 20)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if all.Total != 2 {
		t.Fatalf("total = %d, want 2", all.Total)
	}
	for _, m := range all.Messages {
		if m.Content == "unrelated" {
			t.Fatal("non-matching message returned")
		}
	}

	scoped, err := s.Search("hello", "direct_a_c", 0, 20)
	if err != nil {
		t.Fatalf("scoped Search: %v", err)
	}
	if scoped.Total != 1 || scoped.Messages[0].Content != "say HELLO" {
		t.Fatalf("scoped search wrong: %+v", scoped)
	}
}

func TestReactLastWriteWinsPerParticipant(t *testing.T) {
	s := NewMessageStore(openTestDB(t))
	msg := appendText(t, s, "direct_a_b", "a", "hi")

	if _, err := s.React(msg.ID, "alice", "👍"); err != nil {
		t.Fatalf("first react: %v", err)
	}
	updated, err := s.React(msg.ID, "alice", "🔥")
	if err != nil {
		t.Fatalf("second react: %v", err)
	}

	if len(updated.Reactions) != 1 {
		t.Fatalf("reactions = %v, want exactly one entry", updated.Reactions)
	}
	if updated.Reactions["alice"].Emoji != "🔥" {
		t.Fatalf("emoji = %q, want 🔥", updated.Reactions["alice"].Emoji)
	}
}

func TestReactConcurrentParticipantsAllLand(t *testing.T) {
	s := NewMessageStore(openTestDB(t))
	msg := appendText(t, s, "direct_a_b", "a", "hi")

	const reactors = 8
	var wg sync.WaitGroup
	for i := 0; i < reactors; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := s.React(msg.ID, fmt.Sprintf("user%d", i), "👍"); err != nil {
				t.Errorf("React: %v", err)
			}
		}(i)
	}
	wg.Wait()

	got, err := s.Get(msg.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Reactions) != reactors {
		t.Fatalf("reactions = %d, want %d (lost update)", len(got.Reactions), reactors)
	}
}

func TestReactRejectsEmptyEmoji(t *testing.T) {
	s := NewMessageStore(openTestDB(t))
	msg := appendText(t, s, "direct_a_b", "a", "hi")

	if _, err := s.React(msg.ID, "alice", ""); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestEditIsSenderOnly(t *testing.T) {
	s := NewMessageStore(openTestDB(t))
	msg := appendText(t, s, "direct_a_b", "a", "original")

	if _, err := s.EditContent(msg.ID, "hacked", "b"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("non-sender edit: expected Unauthorized, got %v", err)
	}

	edited, err := s.EditContent(msg.ID, "fixed", "a")
	if err != nil {
		t.Fatalf("sender edit: %v", err)
	}
	if edited.Content != "fixed" {
		t.Fatalf("content = %q", edited.Content)
	}
	if edited.EditedAt == nil {
		t.Fatal("edited_at not set")
	}
}

func TestDeleteIsSenderOnlyAndFinal(t *testing.T) {
	s := NewMessageStore(openTestDB(t))
	msg := appendText(t, s, "direct_a_b", "a", "bye")

	if err := s.Delete(msg.ID, "b"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("non-sender delete: expected Unauthorized, got %v", err)
	}
	if err := s.Delete(msg.ID, "a"); err != nil {
		t.Fatalf("sender delete: %v", err)
	}
	if _, err := s.Get(msg.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected NotFound after delete, got %v", err)
	}

	page, _ := s.Page("direct_a_b", 0, 10)
	if page.Total != 0 {
		t.Fatal("deleted message still listed")
	}
}

func TestTogglePinFlipsForAnyParticipant(t *testing.T) {
	s := NewMessageStore(openTestDB(t))
	msg := appendText(t, s, "direct_a_b", "a", "hi")

	pinned, err := s.TogglePin(msg.ID, "b")
	if err != nil {
		t.Fatalf("TogglePin: %v", err)
	}
	if !pinned.Pinned {
		t.Fatal("message not pinned")
	}

	unpinned, err := s.TogglePin(msg.ID, "a")
	if err != nil {
		t.Fatalf("second TogglePin: %v", err)
	}
	if unpinned.Pinned {
		t.Fatal("message still pinned")
	}
}

func TestMarkReadOnlyForDeclaredReceiver(t *testing.T) {
	s := NewMessageStore(openTestDB(t))
	msg, err := s.Append(&model.MessageDraft{
		ConversationID: "direct_a_b",
		ReceiverID:     "b",
		Content:        "hi",
	}, "a")
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	// Wrong actor: silent no-op, not an error.
	got, applied, err := s.MarkRead(msg.ID, "a")
	if err != nil {
		t.Fatalf("MarkRead by sender: %v", err)
	}
	if applied {
		t.Fatal("sender should not apply a read receipt")
	}
	if got.Status != model.StatusSent {
		t.Fatalf("status changed to %q", got.Status)
	}

	got, applied, err = s.MarkRead(msg.ID, "b")
	if err != nil {
		t.Fatalf("MarkRead by receiver: %v", err)
	}
	if !applied {
		t.Fatal("receiver read not applied")
	}
	if got.Status != model.StatusRead {
		t.Fatalf("status = %q, want read", got.Status)
	}
}

func TestMarkReadWithoutReceiverIsNoop(t *testing.T) {
	s := NewMessageStore(openTestDB(t))
	msg := appendText(t, s, "group-conv", "a", "hi")

	got, applied, err := s.MarkRead(msg.ID, "b")
	if err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if applied || got.Status != model.StatusSent {
		t.Fatalf("no-receiver message mutated: applied=%v status=%q", applied, got.Status)
	}
}

func TestOperationsOnMissingMessage(t *testing.T) {
	s := NewMessageStore(openTestDB(t))

	if _, err := s.EditContent("missing", "x", "a"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("edit: expected NotFound, got %v", err)
	}
	if err := s.Delete("missing", "a"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("delete: expected NotFound, got %v", err)
	}
	if _, err := s.React("missing", "a", "👍"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("react: expected NotFound, got %v", err)
	}
	if _, _, err := s.MarkRead("missing", "a"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("markRead: expected NotFound, got %v", err)
	}
}
