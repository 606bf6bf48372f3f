// Package chatid derives canonical conversation identifiers for
// two-party chats. The id is a pure function of the unordered
// participant pair, so two clients racing to open the same direct chat
// always compute the same id and create-or-get reduces to an
// idempotent upsert with no lookup race.
package chatid

import (
	"strings"

	"github.com/relayhq/chat-platform/internal/apperr"
)

// DirectPrefix namespaces every direct-conversation id. Clients depend
// on this format; it must not change.
const DirectPrefix = "direct_"

// DeriveDirectID returns the canonical conversation id for the
// unordered pair {p1, p2}: "direct_" + min + "_" + max under
// lexicographic ordering. Self-chats are rejected.
func DeriveDirectID(p1, p2 string) (string, error) {
	if p1 == "" || p2 == "" {
		return "", apperr.InvalidArgument("participant id cannot be empty")
	}
	if p1 == p2 {
		return "", apperr.InvalidArgument("cannot open a chat with yourself")
	}
	if p2 < p1 {
		p1, p2 = p2, p1
	}
	return DirectPrefix + p1 + "_" + p2, nil
}

// IsDirectID reports whether id belongs to the direct-chat namespace.
func IsDirectID(id string) bool {
	return strings.HasPrefix(id, DirectPrefix)
}

// ParseDirectID extracts the two participant ids embedded in a direct
// conversation id. The split is taken at the first separator, which
// round-trips the derivation for underscore-free participant ids.
func ParseDirectID(id string) (string, string, bool) {
	if !IsDirectID(id) {
		return "", "", false
	}
	rest := strings.TrimPrefix(id, DirectPrefix)
	i := strings.Index(rest, "_")
	if i <= 0 || i == len(rest)-1 {
		return "", "", false
	}
	return rest[:i], rest[i+1:], true
}
