package eventbus

import (
	"sync"
	"time"
)

// MeetingsUpdated is published after every reconciliation run, successful or
// degraded, so subscribers can refresh their view of the meeting list.
type MeetingsUpdated struct {
	At       time.Time
	Total    int
	Degraded []string
}

// Subscription is one subscriber's handle. Events arrive on C; the subscriber
// must call Unsubscribe when its own lifetime ends, which closes C.
type Subscription struct {
	C   <-chan MeetingsUpdated
	id  int
	bus *Bus
}

// Unsubscribe detaches the subscription and closes its channel. Safe to call
// more than once.
func (s *Subscription) Unsubscribe() {
	s.bus.remove(s.id)
}

// Bus is an in-process broadcast of reconciliation completions. Publish never
// blocks: a subscriber that has not drained its buffer misses the event, which
// is acceptable because every event only means "reload".
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan MeetingsUpdated
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{subs: make(map[int]chan MeetingsUpdated)}
}

// Subscribe registers a new subscriber with a one-event buffer.
func (b *Bus) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan MeetingsUpdated, 1)
	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	return &Subscription{C: ch, id: id, bus: b}
}

// Publish delivers the event to every current subscriber without blocking.
func (b *Bus) Publish(ev MeetingsUpdated) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (b *Bus) remove(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}
