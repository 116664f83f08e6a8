package service

import "sync"

type EventType string

const (
	EventRunStarted  EventType = "run_started"
	EventProgress    EventType = "progress"
	EventRunFinished EventType = "run_finished"
)

type ProgressEvent struct {
	Type  EventType   `json:"type"`
	RunID string      `json:"runId"`
	Done  int         `json:"done"`
	Total int         `json:"total"`
	Run   *RunSummary `json:"run,omitempty"`
}

// hub fans progress events out to subscribers. Slow subscribers miss events
// instead of blocking the batch.
type hub struct {
	mu   sync.RWMutex
	subs map[chan ProgressEvent]struct{}
}

func newHub() *hub {
	return &hub{subs: map[chan ProgressEvent]struct{}{}}
}

func (h *hub) subscribe() (<-chan ProgressEvent, func()) {
	ch := make(chan ProgressEvent, 32)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

func (h *hub) publish(ev ProgressEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
