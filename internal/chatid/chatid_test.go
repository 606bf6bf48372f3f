package chatid

import (
	"errors"
	"testing"

	"github.com/relayhq/chat-platform/internal/apperr"
)

func TestDeriveDirectIDIsOrderInsensitive(t *testing.T) {
	ab, err := DeriveDirectID("alice", "bob")
	if err != nil {
		t.Fatalf("DeriveDirectID(alice, bob): %v", err)
	}
	ba, err := DeriveDirectID("bob", "alice")
	if err != nil {
		t.Fatalf("DeriveDirectID(bob, alice): %v", err)
	}
	if ab != ba {
		t.Fatalf("ids differ: %q vs %q", ab, ba)
	}
	if ab != "direct_alice_bob" {
		t.Fatalf("unexpected id format: %q", ab)
	}
}

func TestDeriveDirectIDDistinctPairs(t *testing.T) {
	ab, _ := DeriveDirectID("alice", "bob")
	ac, _ := DeriveDirectID("alice", "carol")
	if ab == ac {
		t.Fatalf("distinct pairs produced the same id: %q", ab)
	}
}

func TestDeriveDirectIDRejectsSelfChat(t *testing.T) {
	if _, err := DeriveDirectID("alice", "alice"); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestDeriveDirectIDRejectsEmpty(t *testing.T) {
	if _, err := DeriveDirectID("", "bob"); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestParseDirectIDRoundTrip(t *testing.T) {
	id, _ := DeriveDirectID("u2", "u1")
	p1, p2, ok := ParseDirectID(id)
	if !ok {
		t.Fatalf("ParseDirectID(%q) not ok", id)
	}
	if p1 != "u1" || p2 != "u2" {
		t.Fatalf("got (%q, %q), want (u1, u2)", p1, p2)
	}
}

func TestParseDirectIDRejectsForeignIDs(t *testing.T) {
	for _, id := range []string{"group_abc", "direct_", "direct_solo", ""} {
		if _, _, ok := ParseDirectID(id); ok {
			t.Fatalf("ParseDirectID(%q) unexpectedly ok", id)
		}
	}
}

func TestIsDirectID(t *testing.T) {
	if !IsDirectID("direct_a_b") {
		t.Fatal("direct_a_b should be a direct id")
	}
	if IsDirectID("e4b9cf5e-0000-7000-8000-000000000000") {
		t.Fatal("uuid should not be a direct id")
	}
}
