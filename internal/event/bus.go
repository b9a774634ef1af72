package event

import "sync"

// Handler receives a published event.
type Handler func(Event)

// Publisher is the write side of the bus handed to registries.
type Publisher interface {
	Publish(Event)
}

// Discard is a Publisher that drops every event.
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(Event) {}

type subscription struct {
	id int
	fn Handler
}

// Bus is a synchronous in-process publish/subscribe channel. Handlers run on
// the publisher's goroutine in subscription order.
type Bus struct {
	mu     sync.RWMutex
	nextId int
	byKind map[Kind][]subscription
	all    []subscription
}

func NewBus() *Bus {
	return &Bus{byKind: map[Kind][]subscription{}}
}

// Subscribe registers fn for one kind of event.
func (b *Bus) Subscribe(kind Kind, fn Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextId++
	id := b.nextId
	b.byKind[kind] = append(b.byKind[kind], subscription{id: id, fn: fn})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.byKind[kind] = remove(b.byKind[kind], id)
	}
}

// SubscribeAll registers fn for every event.
func (b *Bus) SubscribeAll(fn Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextId++
	id := b.nextId
	b.all = append(b.all, subscription{id: id, fn: fn})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.all = remove(b.all, id)
	}
}

// On registers a handler typed to a single payload type.
func On[T Event](b *Bus, fn func(T)) (unsubscribe func()) {
	var zero T
	return b.Subscribe(zero.Kind(), func(ev Event) {
		if typed, ok := ev.(T); ok {
			fn(typed)
		}
	})
}

// Publish delivers ev to kind subscribers first, then to catch-all subscribers.
// Handlers may publish further events.
func (b *Bus) Publish(ev Event) {
	if ev == nil {
		return
	}

	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.byKind[ev.Kind()])+len(b.all))
	for _, s := range b.byKind[ev.Kind()] {
		handlers = append(handlers, s.fn)
	}
	for _, s := range b.all {
		handlers = append(handlers, s.fn)
	}
	b.mu.RUnlock()

	for _, fn := range handlers {
		fn(ev)
	}
}

func remove(subs []subscription, id int) []subscription {
	out := subs[:0]
	for _, s := range subs {
		if s.id != id {
			out = append(out, s)
		}
	}
	return out
}

// Recorder collects published events. It is useful wherever a Publisher is
// required but nothing renders the output.
type Recorder struct {
	mu     sync.Mutex
	Events []Event
}

func (r *Recorder) Publish(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, ev)
}

// OfKind returns the recorded events of one kind, in publish order.
func (r *Recorder) OfKind(kind Kind) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Event
	for _, ev := range r.Events {
		if ev.Kind() == kind {
			out = append(out, ev)
		}
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = nil
}
