package store

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/relayhq/chat-platform/internal/apperr"
	"github.com/relayhq/chat-platform/internal/chatid"
	"github.com/relayhq/chat-platform/internal/model"
)

// Key layout:
//
//	conv:<conversation_id>                 -> Conversation JSON
//	convidx:<participant_id>:<conv_id>    -> conversation id
//
// The index keys make ListForParticipant a single prefix scan.

// ConversationStore owns persisted conversation records.
type ConversationStore struct {
	db *DB

	// mu serializes conditional inserts and membership mutations so
	// check-then-write sequences are atomic at the storage layer.
	mu sync.Mutex
}

// NewConversationStore creates a conversation store over db.
func NewConversationStore(db *DB) *ConversationStore {
	return &ConversationStore{db: db}
}

func convKey(id string) []byte {
	return []byte("conv:" + id)
}

func convIndexKey(participant, id string) []byte {
	return []byte("convidx:" + participant + ":" + id)
}

// CreateOrGetDirect returns the direct conversation between p1 and p2,
// creating it if absent. The id is derived from the pair, so two
// callers racing to create the same chat converge on one record; the
// loser of the race gets the winner's record back, never an error.
func (s *ConversationStore) CreateOrGetDirect(p1, p2 string) (*model.Conversation, error) {
	id, err := chatid.DeriveDirectID(p1, p2)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, err := s.getLocked(id); err == nil {
		return existing, nil
	} else if err != nil && !isNotFound(err) {
		return nil, err
	}

	now := time.Now().UTC()
	conv := &model.Conversation{
		ID:           id,
		Type:         model.ConversationDirect,
		Participants: sortedPair(p1, p2),
		CreatedAt:    now,
		LastActivity: now,
	}
	if err := s.putLocked(conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// CreateGroup creates a group conversation owned by owner. The owner
// is always a member, whether or not the initial member list names
// them.
func (s *ConversationStore) CreateGroup(name, description, avatarURL, owner string, members []string) (*model.Conversation, error) {
	if name == "" {
		return nil, apperr.InvalidArgument("group name cannot be empty")
	}
	if owner == "" {
		return nil, apperr.InvalidArgument("group owner cannot be empty")
	}

	participants := make([]string, 0, len(members)+1)
	seen := map[string]bool{}
	for _, m := range append([]string{owner}, members...) {
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		participants = append(participants, m)
	}

	now := time.Now().UTC()
	conv := &model.Conversation{
		ID:           uuid.Must(uuid.NewV7()).String(),
		Type:         model.ConversationGroup,
		Participants: participants,
		CreatedAt:    now,
		LastActivity: now,
		Name:         name,
		Description:  description,
		AvatarURL:    avatarURL,
		Owner:        owner,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.putLocked(conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// Get returns the conversation with the given id.
func (s *ConversationStore) Get(id string) (*model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(id)
}

// ListForParticipant returns every conversation p belongs to.
func (s *ConversationStore) ListForParticipant(p string) ([]model.Conversation, error) {
	var ids []string
	prefix := []byte("convidx:" + p + ":")
	err := s.db.scanPrefix(prefix, func(key, value []byte) bool {
		ids = append(ids, string(value))
		return true
	})
	if err != nil {
		return nil, err
	}

	out := make([]model.Conversation, 0, len(ids))
	for _, id := range ids {
		conv, err := s.Get(id)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, err
		}
		out = append(out, *conv)
	}
	return out, nil
}

// AddMember adds memberID to a group. The actor must be the owner or
// an existing member. Adding an existing member is a no-op.
func (s *ConversationStore) AddMember(groupID, memberID, actor string) (*model.Conversation, error) {
	if memberID == "" {
		return nil, apperr.InvalidArgument("member id cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	conv, err := s.getGroupLocked(groupID)
	if err != nil {
		return nil, err
	}
	if conv.Owner != actor && !conv.HasParticipant(actor) {
		return nil, apperr.Unauthorized("add members to this group")
	}
	if conv.HasParticipant(memberID) {
		return conv, nil
	}

	conv.Participants = append(conv.Participants, memberID)
	if err := s.putLocked(conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// RemoveMember removes memberID from a group. Only the owner may
// remove others; any member may remove themself.
func (s *ConversationStore) RemoveMember(groupID, memberID, actor string) (*model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, err := s.getGroupLocked(groupID)
	if err != nil {
		return nil, err
	}
	if conv.Owner != actor && memberID != actor {
		return nil, apperr.Unauthorized("remove this member")
	}

	kept := conv.Participants[:0]
	removed := false
	for _, id := range conv.Participants {
		if id == memberID {
			removed = true
			continue
		}
		kept = append(kept, id)
	}
	conv.Participants = kept
	if !removed {
		return conv, nil
	}

	if err := s.db.delete(convIndexKey(memberID, conv.ID)); err != nil {
		return nil, err
	}
	if err := s.putLocked(conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// UpdateMetadata updates group name, description and avatar. Owner
// only; empty fields are left unchanged.
func (s *ConversationStore) UpdateMetadata(groupID string, req *model.UpdateGroupRequest, actor string) (*model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, err := s.getGroupLocked(groupID)
	if err != nil {
		return nil, err
	}
	if conv.Owner != actor {
		return nil, apperr.Unauthorized("update this group")
	}

	if req.Name != "" {
		conv.Name = req.Name
	}
	if req.Description != "" {
		conv.Description = req.Description
	}
	if req.AvatarURL != "" {
		conv.AvatarURL = req.AvatarURL
	}

	if err := s.putLocked(conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// Delete removes a group and its membership index entries. Owner only.
func (s *ConversationStore) Delete(groupID, actor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, err := s.getGroupLocked(groupID)
	if err != nil {
		return err
	}
	if conv.Owner != actor {
		return apperr.Unauthorized("delete this group")
	}

	for _, p := range conv.Participants {
		if err := s.db.delete(convIndexKey(p, conv.ID)); err != nil {
			return err
		}
	}
	return s.db.delete(convKey(conv.ID))
}

// TouchActivity bumps last_activity, creating nothing. Missing
// conversations are ignored: direct chats can receive their first
// message before the conversation record is explicitly opened.
func (s *ConversationStore) TouchActivity(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, err := s.getLocked(id)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}
	conv.LastActivity = time.Now().UTC()
	return s.putLocked(conv)
}

func (s *ConversationStore) getLocked(id string) (*model.Conversation, error) {
	data, ok, err := s.db.get(convKey(id))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("conversation", id)
	}
	var conv model.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("corrupt conversation record %s: %w", id, err)
	}
	return &conv, nil
}

func (s *ConversationStore) putLocked(conv *model.Conversation) error {
	data, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}
	if err := s.db.set(convKey(conv.ID), data); err != nil {
		return err
	}
	for _, p := range conv.Participants {
		if err := s.db.set(convIndexKey(p, conv.ID), []byte(conv.ID)); err != nil {
			return err
		}
	}
	return nil
}

func (s *ConversationStore) getGroupLocked(id string) (*model.Conversation, error) {
	conv, err := s.getLocked(id)
	if err != nil {
		return nil, err
	}
	if conv.Type != model.ConversationGroup {
		return nil, apperr.NotFound("group", id)
	}
	return conv, nil
}

func sortedPair(p1, p2 string) []string {
	if p2 < p1 {
		p1, p2 = p2, p1
	}
	return []string{p1, p2}
}
