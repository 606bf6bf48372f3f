package store

import (
	"errors"
	"sync"
	"testing"

	"github.com/relayhq/chat-platform/internal/apperr"
	"github.com/relayhq/chat-platform/internal/model"
	"github.com/relayhq/chat-platform/pkg/logger"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir(), logger.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCreateOrGetDirectIsIdempotent(t *testing.T) {
	s := NewConversationStore(openTestDB(t))

	first, err := s.CreateOrGetDirect("alice", "bob")
	if err != nil {
		t.Fatalf("first CreateOrGetDirect: %v", err)
	}
	second, err := s.CreateOrGetDirect("bob", "alice")
	if err != nil {
		t.Fatalf("second CreateOrGetDirect: %v", err)
	}

	if first.ID != second.ID {
		t.Fatalf("ids differ: %q vs %q", first.ID, second.ID)
	}
	if !first.CreatedAt.Equal(second.CreatedAt) {
		t.Fatal("second call created a new record instead of returning the existing one")
	}

	rooms, err := s.ListForParticipant("alice")
	if err != nil {
		t.Fatalf("ListForParticipant: %v", err)
	}
	if len(rooms) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(rooms))
	}
}

func TestCreateOrGetDirectConcurrentFirstContact(t *testing.T) {
	s := NewConversationStore(openTestDB(t))

	const callers = 8
	ids := make([]string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			conv, err := s.CreateOrGetDirect("u1", "u2")
			if err != nil {
				t.Errorf("CreateOrGetDirect: %v", err)
				return
			}
			ids[i] = conv.ID
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		if id != ids[0] {
			t.Fatalf("racing callers diverged: %q vs %q", id, ids[0])
		}
	}

	rooms, err := s.ListForParticipant("u1")
	if err != nil {
		t.Fatalf("ListForParticipant: %v", err)
	}
	if len(rooms) != 1 {
		t.Fatalf("expected exactly 1 conversation after race, got %d", len(rooms))
	}
}

func TestCreateOrGetDirectRejectsSelfChat(t *testing.T) {
	s := NewConversationStore(openTestDB(t))
	if _, err := s.CreateOrGetDirect("alice", "alice"); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestCreateGroupAlwaysIncludesOwner(t *testing.T) {
	s := NewConversationStore(openTestDB(t))

	group, err := s.CreateGroup("team", "desc", "", "owner", []string{"m1", "m2"})
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if !group.HasParticipant("owner") {
		t.Fatal("owner missing from participants")
	}
	if group.Owner != "owner" {
		t.Fatalf("owner = %q", group.Owner)
	}
	if group.Type != model.ConversationGroup {
		t.Fatalf("type = %q", group.Type)
	}
	if len(group.Participants) != 3 {
		t.Fatalf("participants = %v", group.Participants)
	}
}

func TestGroupUpdateIsOwnerOnly(t *testing.T) {
	s := NewConversationStore(openTestDB(t))
	group, _ := s.CreateGroup("team", "", "", "owner", []string{"m1"})

	_, err := s.UpdateMetadata(group.ID, &model.UpdateGroupRequest{Name: "renamed"}, "m1")
	if !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("member update: expected Unauthorized, got %v", err)
	}

	updated, err := s.UpdateMetadata(group.ID, &model.UpdateGroupRequest{Name: "renamed"}, "owner")
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Name != "renamed" {
		t.Fatalf("name = %q", updated.Name)
	}
}

func TestGroupDeleteIsOwnerOnly(t *testing.T) {
	s := NewConversationStore(openTestDB(t))
	group, _ := s.CreateGroup("team", "", "", "owner", []string{"m1"})

	if err := s.Delete(group.ID, "m1"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("member delete: expected Unauthorized, got %v", err)
	}
	if err := s.Delete(group.ID, "owner"); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, err := s.Get(group.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected NotFound after delete, got %v", err)
	}

	rooms, _ := s.ListForParticipant("m1")
	if len(rooms) != 0 {
		t.Fatalf("membership index not cleaned up: %v", rooms)
	}
}

func TestAddMemberRequiresOwnerOrMember(t *testing.T) {
	s := NewConversationStore(openTestDB(t))
	group, _ := s.CreateGroup("team", "", "", "owner", []string{"m1"})

	if _, err := s.AddMember(group.ID, "m2", "stranger"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("stranger add: expected Unauthorized, got %v", err)
	}

	updated, err := s.AddMember(group.ID, "m2", "m1")
	if err != nil {
		t.Fatalf("member add: %v", err)
	}
	if !updated.HasParticipant("m2") {
		t.Fatal("m2 not added")
	}

	// Re-adding is a no-op.
	again, err := s.AddMember(group.ID, "m2", "owner")
	if err != nil {
		t.Fatalf("re-add: %v", err)
	}
	if len(again.Participants) != len(updated.Participants) {
		t.Fatal("duplicate member added")
	}
}

func TestRemoveMemberSelfOrOwner(t *testing.T) {
	s := NewConversationStore(openTestDB(t))
	group, _ := s.CreateGroup("team", "", "", "owner", []string{"m1", "m2"})

	if _, err := s.RemoveMember(group.ID, "m2", "m1"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("peer removal: expected Unauthorized, got %v", err)
	}

	if _, err := s.RemoveMember(group.ID, "m1", "m1"); err != nil {
		t.Fatalf("self removal: %v", err)
	}
	if _, err := s.RemoveMember(group.ID, "m2", "owner"); err != nil {
		t.Fatalf("owner removal: %v", err)
	}

	conv, _ := s.Get(group.ID)
	if conv.HasParticipant("m1") || conv.HasParticipant("m2") {
		t.Fatalf("members not removed: %v", conv.Participants)
	}

	rooms, _ := s.ListForParticipant("m1")
	if len(rooms) != 0 {
		t.Fatal("removed member still indexed")
	}
}

func TestGroupOperationsOnDirectChatAreNotFound(t *testing.T) {
	s := NewConversationStore(openTestDB(t))
	conv, _ := s.CreateOrGetDirect("a", "b")

	if _, err := s.AddMember(conv.ID, "c", "a"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected NotFound for direct chat, got %v", err)
	}
}
