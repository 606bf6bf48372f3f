// Package presence tracks which participants are online. Transitions
// are explicit (connect, disconnect, heartbeat) rather than flags
// mutated inline by request handlers; consumers only need the boolean
// lookup and last-seen timestamp.
package presence

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/relayhq/chat-platform/internal/model"
	"github.com/relayhq/chat-platform/internal/nats"
	"github.com/relayhq/chat-platform/pkg/logger"
	"github.com/relayhq/chat-platform/pkg/metrics"
)

// Publisher publishes presence transition events.
type Publisher interface {
	Publish(subject string, data []byte) error
}

type entry struct {
	online   bool
	lastSeen time.Time
}

// Service is an in-memory presence registry with TTL expiry of stale
// heartbeats.
type Service struct {
	pub    Publisher
	logger *logger.Logger
	ttl    time.Duration

	mu      sync.RWMutex
	entries map[string]*entry
}

// NewService creates a presence service. Participants with no
// heartbeat within ttl are reported offline.
func NewService(pub Publisher, ttl time.Duration, log *logger.Logger) *Service {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &Service{
		pub:     pub,
		logger:  log,
		ttl:     ttl,
		entries: make(map[string]*entry),
	}
}

// SetOnline marks p online and announces the transition.
func (s *Service) SetOnline(p string) {
	s.transition(p, true)
}

// SetOffline marks p offline, records last-seen, and announces the
// transition.
func (s *Service) SetOffline(p string) {
	s.transition(p, false)
}

// Heartbeat refreshes p's liveness without announcing anything unless
// the participant was previously offline or expired.
func (s *Service) Heartbeat(p string) {
	s.mu.Lock()
	e, ok := s.entries[p]
	wasOnline := ok && e.online && time.Since(e.lastSeen) < s.ttl
	if !ok {
		e = &entry{}
		s.entries[p] = e
	}
	e.online = true
	e.lastSeen = time.Now().UTC()
	s.mu.Unlock()

	if !wasOnline {
		s.announce(p, true)
		metrics.PresenceOnline.Inc()
	}
}

// Online reports whether p has a live heartbeat.
func (s *Service) Online(p string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[p]
	return ok && e.online && time.Since(e.lastSeen) < s.ttl
}

// LastSeen returns p's last recorded activity time, zero if unknown.
func (s *Service) LastSeen(p string) time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.entries[p]; ok {
		return e.lastSeen
	}
	return time.Time{}
}

func (s *Service) transition(p string, online bool) {
	s.mu.Lock()
	e, ok := s.entries[p]
	if !ok {
		e = &entry{}
		s.entries[p] = e
	}
	changed := e.online != online
	e.online = online
	e.lastSeen = time.Now().UTC()
	s.mu.Unlock()

	if !changed {
		return
	}
	if online {
		metrics.PresenceOnline.Inc()
	} else {
		metrics.PresenceOnline.Dec()
	}
	s.announce(p, online)
}

func (s *Service) announce(p string, online bool) {
	payload, err := json.Marshal(&model.PresenceEvent{
		UserID:   p,
		Online:   online,
		LastSeen: time.Now().UTC(),
	})
	if err != nil {
		return
	}
	if err := s.pub.Publish(nats.PresenceSubject(p), payload); err != nil {
		s.logger.Warn("presence publish failed", "user_id", p, "error", err)
	}
}
