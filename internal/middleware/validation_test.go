package middleware

import (
	"strings"
	"testing"
)

func TestValidateMessageContent(t *testing.T) {
	if err := ValidateMessageContent("hello"); err != nil {
		t.Fatalf("plain content rejected: %v", err)
	}
	// Empty content is legal; attachment-only messages carry no text.
	if err := ValidateMessageContent(""); err != nil {
		t.Fatalf("empty content rejected: %v", err)
	}
	if err := ValidateMessageContent(strings.Repeat("a", 100001)); err == nil {
		t.Fatal("oversized content accepted")
	}
	if err := ValidateMessageContent(string([]byte{0xff, 0xfe})); err == nil {
		t.Fatal("invalid UTF-8 accepted")
	}
}

func TestValidateConversationID(t *testing.T) {
	if err := ValidateConversationID("direct_a_b"); err != nil {
		t.Fatalf("direct id rejected: %v", err)
	}
	if err := ValidateConversationID(""); err == nil {
		t.Fatal("empty id accepted")
	}
	if err := ValidateConversationID(strings.Repeat("x", 257)); err == nil {
		t.Fatal("oversized id accepted")
	}
}

func TestValidateGroupName(t *testing.T) {
	if err := ValidateGroupName("engineering"); err != nil {
		t.Fatalf("valid name rejected: %v", err)
	}
	if err := ValidateGroupName(""); err == nil {
		t.Fatal("empty name accepted")
	}
}

func TestValidateSearchQuery(t *testing.T) {
	if err := ValidateSearchQuery("hello"); err != nil {
		t.Fatalf("valid query rejected: %v", err)
	}
	if err := ValidateSearchQuery(""); err == nil {
		t.Fatal("empty query accepted")
	}
	if err := ValidateSearchQuery(strings.Repeat("q", 513)); err == nil {
		t.Fatal("oversized query accepted")
	}
}
