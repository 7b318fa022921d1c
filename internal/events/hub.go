package events

import (
	"strconv"
	"sync"
	"time"
)

// Publisher is the best-effort notification contract. Implementations must
// never fail or block the mutation that triggered the event.
type Publisher interface {
	Notify(playerID, kind string, payload any)
}

type PlayerEvent struct {
	EventID  string `json:"event_id"`
	Kind     string `json:"kind"`
	PlayerID string `json:"player_id"`
	ServerTS int64  `json:"server_ts"`
	Payload  any    `json:"payload"`
}

// Hub keeps a bounded per-player ring of recent events and fans them out to
// non-blocking watchers. Slow watchers drop events rather than stall a
// publish.
type Hub struct {
	mu      sync.Mutex
	max     int
	players map[string]*playerFeed
}

type playerFeed struct {
	nextID   int64
	events   []PlayerEvent
	watchers map[chan PlayerEvent]struct{}
}

func NewHub(maxPerPlayer int) *Hub {
	if maxPerPlayer <= 0 {
		maxPerPlayer = 200
	}
	return &Hub{max: maxPerPlayer, players: map[string]*playerFeed{}}
}

func (h *Hub) feedLocked(playerID string) *playerFeed {
	f := h.players[playerID]
	if f == nil {
		f = &playerFeed{watchers: map[chan PlayerEvent]struct{}{}}
		h.players[playerID] = f
	}
	return f
}

func (h *Hub) Notify(playerID, kind string, payload any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	f := h.feedLocked(playerID)
	f.nextID++
	ev := PlayerEvent{
		EventID:  strconv.FormatInt(f.nextID, 10),
		Kind:     kind,
		PlayerID: playerID,
		ServerTS: time.Now().UnixMilli(),
		Payload:  payload,
	}
	f.events = append(f.events, ev)
	if len(f.events) > h.max {
		f.events = f.events[len(f.events)-h.max:]
	}
	for ch := range f.watchers {
		select {
		case ch <- ev:
		default:
		}
	}
}

// ReplayAfter returns buffered events with an id greater than lastEventID; an
// empty or unparsable id replays the whole buffer.
func (h *Hub) ReplayAfter(playerID, lastEventID string) []PlayerEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	f := h.players[playerID]
	if f == nil || len(f.events) == 0 {
		return nil
	}
	last, err := strconv.ParseInt(lastEventID, 10, 64)
	if lastEventID == "" || err != nil {
		out := make([]PlayerEvent, len(f.events))
		copy(out, f.events)
		return out
	}
	out := make([]PlayerEvent, 0, len(f.events))
	for _, ev := range f.events {
		id, _ := strconv.ParseInt(ev.EventID, 10, 64)
		if id > last {
			out = append(out, ev)
		}
	}
	return out
}

func (h *Hub) Subscribe(playerID string) chan PlayerEvent {
	ch := make(chan PlayerEvent, 32)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.feedLocked(playerID).watchers[ch] = struct{}{}
	return ch
}

func (h *Hub) Unsubscribe(playerID string, ch chan PlayerEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	f := h.players[playerID]
	if f == nil {
		return
	}
	if _, ok := f.watchers[ch]; ok {
		delete(f.watchers, ch)
		close(ch)
	}
}

// NopPublisher satisfies Publisher for tests and tools that do not care about
// notifications.
type NopPublisher struct{}

func (NopPublisher) Notify(string, string, any) {}
