package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/relayhq/chat-platform/internal/apperr"
	"github.com/relayhq/chat-platform/internal/model"
)

// Key layout:
//
//	msg:<conv_id>:<padded_unixnano>-<padded_seq>  -> Message JSON
//	msgidx:<message_id>                           -> primary key
//
// The padded timestamp makes a prefix scan return messages in creation
// order; the atomic sequence counter breaks ties between appends that
// share a nanosecond, so racing appends are never reordered relative
// to their assigned keys.

// MessageStore owns persisted message records and their lifecycle.
type MessageStore struct {
	db  *DB
	seq uint64

	// mu serializes read-modify-write mutations on individual
	// messages. Reaction merges from different participants touch
	// independent map keys but share the JSON document, so the
	// document update itself must be atomic.
	mu sync.Mutex
}

// NewMessageStore creates a message store over db.
func NewMessageStore(db *DB) *MessageStore {
	return &MessageStore{db: db}
}

func msgPrefix(conversationID string) []byte {
	return []byte("msg:" + conversationID + ":")
}

func msgIndexKey(id string) []byte {
	return []byte("msgidx:" + id)
}

// Append persists a new message from draft. The returned record, not
// the draft, is the source of truth for routing: it carries the
// generated id, timestamp and initial status.
func (s *MessageStore) Append(draft *model.MessageDraft, sender string) (*model.Message, error) {
	if sender == "" {
		return nil, apperr.InvalidArgument("sender cannot be empty")
	}
	if draft.ConversationID == "" {
		return nil, apperr.InvalidArgument("conversation id cannot be empty")
	}

	kind := draft.Kind
	if kind == "" {
		kind = model.KindText
	}

	now := time.Now().UTC()
	msg := &model.Message{
		ID:             uuid.Must(uuid.NewV7()).String(),
		ConversationID: draft.ConversationID,
		SenderID:       sender,
		ReceiverID:     draft.ReceiverID,
		GroupID:        draft.GroupID,
		Content:        draft.Content,
		Kind:           kind,
		CreatedAt:      now,
		Status:         model.StatusSent,
		Reactions:      map[string]model.Reaction{},
		FileURL:        draft.FileURL,
		FileName:       draft.FileName,
		FileSize:       draft.FileSize,
	}

	n := atomic.AddUint64(&s.seq, 1)
	key := fmt.Sprintf("msg:%s:%020d-%06d", msg.ConversationID, now.UnixNano(), n)

	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}
	if err := s.db.set([]byte(key), data); err != nil {
		return nil, err
	}
	if err := s.db.set(msgIndexKey(msg.ID), []byte(key)); err != nil {
		return nil, err
	}
	return msg, nil
}

// Get returns the message with the given id.
func (s *MessageStore) Get(id string) (*model.Message, error) {
	msg, _, err := s.find(id)
	return msg, err
}

// EditContent replaces a message's content. Only the original sender
// may edit; a successful edit records edited_at.
func (s *MessageStore) EditContent(id, newContent, actor string) (*model.Message, error) {
	return s.mutate(id, func(msg *model.Message) error {
		if msg.SenderID != actor {
			return apperr.Unauthorized("edit this message")
		}
		now := time.Now().UTC()
		msg.Content = newContent
		msg.EditedAt = &now
		return nil
	})
}

// Delete removes a message. Only the original sender may delete;
// deleted messages are never resurrected.
func (s *MessageStore) Delete(id, actor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, key, err := s.find(id)
	if err != nil {
		return err
	}
	if msg.SenderID != actor {
		return apperr.Unauthorized("delete this message")
	}
	if err := s.db.delete(key); err != nil {
		return err
	}
	return s.db.delete(msgIndexKey(id))
}

// React adds or replaces the actor's reaction. Each participant holds
// at most one entry; a new reaction replaces the prior one atomically.
func (s *MessageStore) React(id, actor, emoji string) (*model.Message, error) {
	if emoji == "" {
		return nil, apperr.InvalidArgument("emoji cannot be empty")
	}
	return s.mutate(id, func(msg *model.Message) error {
		if msg.Reactions == nil {
			msg.Reactions = map[string]model.Reaction{}
		}
		msg.Reactions[actor] = model.Reaction{
			Emoji:     emoji,
			UserID:    actor,
			Timestamp: time.Now().UTC(),
		}
		return nil
	})
}

// TogglePin flips the pinned flag. Any participant of the chat may
// pin or unpin.
func (s *MessageStore) TogglePin(id, actor string) (*model.Message, error) {
	return s.mutate(id, func(msg *model.Message) error {
		msg.Pinned = !msg.Pinned
		return nil
	})
}

// MarkRead transitions status to read when the actor is the declared
// receiver. For any other actor it is a silent no-op, not an error:
// read receipts are best-effort and must not fail the caller's flow.
// The returned bool reports whether the actor was the declared
// receiver, which gates read-receipt routing.
func (s *MessageStore) MarkRead(id, actor string) (*model.Message, bool, error) {
	applied := false
	msg, err := s.mutate(id, func(msg *model.Message) error {
		if msg.ReceiverID == "" || msg.ReceiverID != actor {
			return nil
		}
		applied = true
		msg.Status = model.StatusRead
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return msg, applied, nil
}

// Page returns messages for a conversation ordered by created_at
// descending. Pages are 0-based; hasMore reports whether older pages
// remain.
func (s *MessageStore) Page(conversationID string, page, size int) (*model.MessagePage, error) {
	msgs, err := s.loadConversation(conversationID)
	if err != nil {
		return nil, err
	}
	return paginateDescending(msgs, page, size), nil
}

// Search returns messages whose content contains query
// case-insensitively, optionally scoped to one conversation, with the
// same ordering and pagination contract as Page.
func (s *MessageStore) Search(query, conversationID string, page, size int) (*model.MessagePage, error) {
	prefix := []byte("msg:")
	if conversationID != "" {
		prefix = msgPrefix(conversationID)
	}

	needle := strings.ToLower(query)
	var matches []model.Message
	err := s.db.scanPrefix(prefix, func(key, value []byte) bool {
		var msg model.Message
		if json.Unmarshal(value, &msg) != nil {
			return true
		}
		if strings.Contains(strings.ToLower(msg.Content), needle) {
			matches = append(matches, msg)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return paginateDescending(matches, page, size), nil
}

// mutate applies fn to the message under the store lock and writes the
// result back in place.
func (s *MessageStore) mutate(id string, fn func(*model.Message) error) (*model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, key, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if err := fn(msg); err != nil {
		return nil, err
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}
	if err := s.db.set(key, data); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *MessageStore) find(id string) (*model.Message, []byte, error) {
	key, ok, err := s.db.get(msgIndexKey(id))
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, apperr.NotFound("message", id)
	}
	data, ok, err := s.db.get(key)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, apperr.NotFound("message", id)
	}
	var msg model.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, nil, fmt.Errorf("corrupt message record %s: %w", id, err)
	}
	return &msg, key, nil
}

func (s *MessageStore) loadConversation(conversationID string) ([]model.Message, error) {
	var msgs []model.Message
	err := s.db.scanPrefix(msgPrefix(conversationID), func(key, value []byte) bool {
		var msg model.Message
		if json.Unmarshal(value, &msg) == nil {
			msgs = append(msgs, msg)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

// paginateDescending sorts newest-first (insertion order breaks
// created_at ties) and slices out the requested page.
func paginateDescending(msgs []model.Message, page, size int) *model.MessagePage {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = 50
	}

	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.After(msgs[j].CreatedAt)
	})

	total := len(msgs)
	start := page * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}

	return &model.MessagePage{
		Messages: msgs[start:end],
		HasMore:  end < total,
		Total:    total,
	}
}
