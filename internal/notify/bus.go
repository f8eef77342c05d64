// Package notify is the in-memory mediator that guides users through the
// purchase order chain: PO created → internal payment → external payment →
// procurement. It also keeps per-collection refresh stamps so clients know
// when to refetch. Nothing here is persisted.
package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Topic names one of the pending queues
type Topic string

const (
	ProcurementPending     Topic = "procurement_pending"
	InternalPaymentPending Topic = "internal_payment_pending"
	ExternalPaymentPending Topic = "external_payment_pending"
)

// Topics lists every queue in display order.
var Topics = []Topic{InternalPaymentPending, ExternalPaymentPending, ProcurementPending}

// Valid reports whether t is a known topic.
func (t Topic) Valid() bool {
	switch t {
	case ProcurementPending, InternalPaymentPending, ExternalPaymentPending:
		return true
	}
	return false
}

// Notification is one pending step for a purchase order
type Notification struct {
	Topic     Topic                  `json:"topic"`
	PONumber  string                 `json:"po_number"`
	IMEI      string                 `json:"imei,omitempty"`
	Prefill   map[string]interface{} `json:"prefill,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (n Notification) matches(topic Topic, po, imei string) bool {
	return n.Topic == topic && n.PONumber == po && n.IMEI == imei
}

// EventType describes what changed on the bus
type EventType string

const (
	EventAdded   EventType = "notification_added"
	EventCleared EventType = "notification_cleared"
	EventFlushed EventType = "notifications_cleared"
	EventRefresh EventType = "refresh"
)

// Event is what subscribers and the websocket stream receive
type Event struct {
	Type         EventType              `json:"type"`
	Topic        Topic                  `json:"topic,omitempty"`
	Notification *Notification          `json:"notification,omitempty"`
	Refreshed    map[DataType]time.Time `json:"refreshed,omitempty"`
}

// Publisher pushes events out of process, typically the websocket hub.
type Publisher interface {
	Publish(Event)
}

// Bus is safe for concurrent use.
type Bus struct {
	mu        sync.RWMutex
	pending   map[Topic][]Notification
	refreshed map[DataType]time.Time
	subs      map[int]chan Event
	nextSub   int
	closed    bool

	pub Publisher
	log *zap.Logger
	now func() time.Time
}

// New creates a bus. pub may be nil.
func New(pub Publisher, log *zap.Logger) *Bus {
	if log == nil {
		log = zap.NewNop()
	}
	b := &Bus{
		pending:   make(map[Topic][]Notification),
		refreshed: make(map[DataType]time.Time),
		subs:      make(map[int]chan Event),
		pub:       pub,
		log:       log,
		now:       time.Now,
	}
	start := b.now()
	for _, dt := range DataTypes {
		b.refreshed[dt] = start
	}
	return b
}

// Push appends n to its queue unless an entry with the same
// (topic, po_number, imei) is already pending. It reports whether n was added.
func (b *Bus) Push(n Notification) bool {
	if !n.Topic.Valid() || n.PONumber == "" {
		return false
	}
	b.mu.Lock()
	for _, p := range b.pending[n.Topic] {
		if p.matches(n.Topic, n.PONumber, n.IMEI) {
			b.mu.Unlock()
			return false
		}
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = b.now()
	}
	b.pending[n.Topic] = append(b.pending[n.Topic], n)
	b.mu.Unlock()

	b.log.Debug("notification queued", zap.String("topic", string(n.Topic)), zap.String("po", n.PONumber), zap.String("imei", n.IMEI))
	b.emit(Event{Type: EventAdded, Topic: n.Topic, Notification: &n})
	return true
}

// Clear removes entries matching (topic, po, imei) exactly and returns how many went.
func (b *Bus) Clear(topic Topic, po, imei string) int {
	b.mu.Lock()
	queue := b.pending[topic]
	kept := queue[:0:0]
	var removed []Notification
	for _, p := range queue {
		if p.matches(topic, po, imei) {
			removed = append(removed, p)
			continue
		}
		kept = append(kept, p)
	}
	b.pending[topic] = kept
	b.mu.Unlock()

	for i := range removed {
		b.emit(Event{Type: EventCleared, Topic: topic, Notification: &removed[i]})
	}
	return len(removed)
}

// ClearAll empties one queue.
func (b *Bus) ClearAll(topic Topic) int {
	b.mu.Lock()
	n := len(b.pending[topic])
	delete(b.pending, topic)
	b.mu.Unlock()

	if n > 0 {
		b.emit(Event{Type: EventFlushed, Topic: topic})
	}
	return n
}

// Pending returns a copy of one queue in append order.
func (b *Bus) Pending(topic Topic) []Notification {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Notification, len(b.pending[topic]))
	copy(out, b.pending[topic])
	return out
}

// Snapshot returns every queue keyed by topic.
func (b *Bus) Snapshot() map[Topic][]Notification {
	out := make(map[Topic][]Notification, len(Topics))
	for _, t := range Topics {
		out[t] = b.Pending(t)
	}
	return out
}

// Subscribe returns a buffered event channel and a func that detaches it.
// Events are dropped for a subscriber whose buffer is full.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := b.nextSub
	b.nextSub++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			if c, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(c)
			}
			b.mu.Unlock()
		})
	}
}

// Close detaches every subscriber. Further events are only logged.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		close(ch)
		delete(b.subs, id)
	}
}

func (b *Bus) emit(ev Event) {
	b.mu.RLock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			b.log.Warn("notification subscriber lagging, event dropped", zap.String("type", string(ev.Type)))
		}
	}
	b.mu.RUnlock()

	if b.pub != nil {
		b.pub.Publish(ev)
	}
}
