package poll

import (
	"sync"
	"time"
)

type EventType string

const (
	EventPollCreated          EventType = "PollCreated"
	EventVoteCast             EventType = "VoteCast"
	EventPollClosed           EventType = "PollClosed"
	EventPollExtended         EventType = "PollExtended"
	EventOwnershipTransferred EventType = "OwnershipTransferred"
)

// Event records one successful mutation. Seq is assigned by the registry and
// increases by one per event. Fields that do not apply to Type are left zero.
type Event struct {
	Seq      uint64    `json:"seq"`
	Type     EventType `json:"type"`
	PollID   uint64    `json:"poll_id"`
	Actor    Identity  `json:"actor"`
	At       time.Time `json:"at"`
	Question string    `json:"question,omitempty"`
	Options  []string  `json:"options,omitempty"`
	Choice   int       `json:"choice,omitempty"`
	EndTime  time.Time `json:"end_time,omitzero"`
	NewOwner Identity  `json:"new_owner,omitempty"`
}

// Emitter receives events in the order the registry applied them. Emit is
// called with the registry lock held and must not block or call back into
// the registry.
type Emitter interface {
	Emit(e Event)
}

type discard struct{}

func (discard) Emit(Event) {}

// EventQueue is an unbounded Emitter that buffers events until drained.
type EventQueue struct {
	mu     sync.Mutex
	events []Event
	ready  chan struct{}
}

func NewEventQueue() *EventQueue {
	return &EventQueue{ready: make(chan struct{}, 1)}
}

func (q *EventQueue) Emit(e Event) {
	q.mu.Lock()
	q.events = append(q.events, e)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Ready is signalled after at least one Emit since the last receive.
func (q *EventQueue) Ready() <-chan struct{} {
	return q.ready
}

// Drain removes and returns all buffered events in emission order.
func (q *EventQueue) Drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.events
	q.events = nil
	return out
}

// Len returns the number of buffered events.
func (q *EventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
