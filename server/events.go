package main

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Event is the wire shape fanned out to a board room's subscribers.
type Event struct {
	Name    string `json:"name"`
	BoardID string `json:"boardId"`
	Payload any    `json:"payload,omitempty"`
}

// EventBus fans events out to SSE subscribers grouped by board room.
// Delivery is best effort: publishing never blocks and never fails the
// mutation that triggered it.
type EventBus struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewEventBus() *EventBus { return &EventBus{subs: make(map[string]map[chan []byte]struct{})} }

func (b *EventBus) Subscribe(boardID string) (ch chan []byte, cancel func()) {
	ch = make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[boardID] == nil {
		b.subs[boardID] = make(map[chan []byte]struct{})
	}
	b.subs[boardID][ch] = struct{}{}
	b.mu.Unlock()
	return ch, func() {
		b.mu.Lock()
		if subs, ok := b.subs[boardID]; ok {
			delete(subs, ch)
			if len(subs) == 0 {
				delete(b.subs, boardID)
			}
		}
		b.mu.Unlock()
		close(ch)
	}
}

func (b *EventBus) Publish(boardID, name string, payload any) {
	data, _ := json.Marshal(Event{Name: name, BoardID: boardID, Payload: payload})
	b.mu.RLock()
	subs := b.subs[boardID]
	for ch := range subs {
		select {
		case ch <- data:
		default: // drop if slow
		}
	}
	b.mu.RUnlock()
}

// emitActivity broadcasts a committed activity event to its board room,
// mirroring the shape clients already consume.
func (b *EventBus) emitActivity(ev ActivityEvent, payload any) {
	b.Publish(ev.BoardID, "board:activity_event_created", map[string]any{
		"activityEvent": ev,
		"payload":       payload,
	})
}

// ServeSSE streams one board room to a single connection.
func (b *EventBus) ServeSSE(w http.ResponseWriter, r *http.Request, boardID string) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "stream unsupported", http.StatusInternalServerError)
		return
	}

	ch, cancel := b.Subscribe(boardID)
	defer cancel()

	_, _ = w.Write([]byte(": connected\n\n"))
	flusher.Flush()

	ticker := time.NewTicker(25 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			// heartbeat comment to keep the connection alive through proxies
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write([]byte("data: "))
			_, _ = w.Write(msg)
			_, _ = w.Write([]byte("\n\n"))
			flusher.Flush()
		}
	}
}
