package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	natsio "github.com/nats-io/nats.go"

	"github.com/relayhq/chat-platform/internal/middleware"
	natsclient "github.com/relayhq/chat-platform/internal/nats"
	"github.com/relayhq/chat-platform/internal/presence"
	"github.com/relayhq/chat-platform/pkg/logger"
	"github.com/relayhq/chat-platform/pkg/metrics"
)

const maxSubscribeChannels = 64

// SubscribeHandler bridges delivery channels to SSE. Each connection
// subscribes the caller's requested channels and forwards payloads as
// they arrive; the connection also drives the caller's presence.
type SubscribeHandler struct {
	nats     *natsclient.Client
	presence *presence.Service
	logger   *logger.Logger
}

// NewSubscribeHandler creates a new subscribe handler.
func NewSubscribeHandler(nc *natsclient.Client, pres *presence.Service, log *logger.Logger) *SubscribeHandler {
	return &SubscribeHandler{nats: nc, presence: pres, logger: log}
}

type channelEvent struct {
	channel string
	data    []byte
}

// Subscribe handles GET /api/v1/subscribe?channels=a,b,c
func (h *SubscribeHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetUserID(ctx)

	raw := r.URL.Query().Get("channels")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "channels parameter is required")
		return
	}
	channels := strings.Split(raw, ",")
	if len(channels) > maxSubscribeChannels {
		writeError(w, http.StatusBadRequest, "too many channels")
		return
	}
	for _, ch := range channels {
		if !channelAllowed(ch, caller) {
			writeError(w, http.StatusForbidden, fmt.Sprintf("channel %q not allowed", ch))
			return
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	// Buffered so a slow SSE write drops events instead of blocking
	// the NATS callback.
	events := make(chan channelEvent, 256)

	var subs []*natsio.Subscription
	for _, ch := range channels {
		sub, err := h.nats.Subscribe(ch, func(subject string, data []byte) {
			select {
			case events <- channelEvent{channel: subject, data: data}:
			default:
			}
		})
		if err != nil {
			for _, s := range subs {
				s.Unsubscribe()
			}
			h.logger.Error("failed to subscribe channel", "channel", ch, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to subscribe")
			return
		}
		subs = append(subs, sub)
	}
	defer func() {
		for _, s := range subs {
			s.Unsubscribe()
		}
	}()

	metrics.IncrementSSEConnections()
	defer metrics.DecrementSSEConnections()

	// The live connection is the caller's presence signal.
	h.presence.SetOnline(caller)
	defer h.presence.SetOffline(caller)

	sendSSEEvent(w, flusher, "connected", map[string]interface{}{
		"channels": channels,
	})

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	done := ctx.Done()
	for {
		select {
		case <-done:
			h.logger.Info("SSE client disconnected", "user_id", caller)
			return

		case ev := <-events:
			fmt.Fprintf(w, "event: message\n")
			fmt.Fprintf(w, "data: {\"channel\":%q,\"payload\":%s}\n\n", ev.channel, ev.data)
			flusher.Flush()

		case <-heartbeat.C:
			h.presence.Heartbeat(caller)
			sendSSEEvent(w, flusher, "heartbeat", map[string]interface{}{
				"timestamp": time.Now().UTC(),
			})
		}
	}
}

// channelAllowed restricts private channels to their owner. Broadcast
// channels rely on conversation-level access checks at read time.
func channelAllowed(channel, caller string) bool {
	switch {
	case strings.HasPrefix(channel, "user."):
		return channel == natsclient.UserMessagesSubject(caller) ||
			channel == natsclient.UserErrorsSubject(caller)
	case strings.HasPrefix(channel, "chat."),
		strings.HasPrefix(channel, "group."),
		strings.HasPrefix(channel, "read."),
		strings.HasPrefix(channel, "presence."):
		return true
	default:
		return false
	}
}

func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, event string, data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\n", event)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
	flusher.Flush()
}
