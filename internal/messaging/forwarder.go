package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/pixil98/go-timeloop/internal/display"
	"github.com/pixil98/go-timeloop/internal/event"
)

const (
	SubjectEventPrefix = "timeloop.event."
	SubjectNotice      = "timeloop.notice"

	DefaultBufferSize = 256
)

// Publisher is the broker side of a Forwarder.
type Publisher interface {
	WaitReady(ctx context.Context) error
	Publish(subject string, data []byte) error
}

// Source is anything events can be subscribed from.
type Source interface {
	SubscribeAll(fn event.Handler) (unsubscribe func())
}

type envelope struct {
	Kind  event.Kind  `json:"kind"`
	Event event.Event `json:"event"`
}

// Forwarder relays every event from a Source to the broker as JSON on
// timeloop.event.<kind> and as rendered text on timeloop.notice. Events are
// queued from the moment the forwarder is built, so nothing published before
// Start is lost, and the publishing goroutine never blocks on the broker.
type Forwarder struct {
	pub         Publisher
	bufferSize  int
	queue       chan event.Event
	unsubscribe func()
}

func NewForwarder(src Source, pub Publisher, opts ...ForwarderOpt) *Forwarder {
	f := &Forwarder{
		pub:        pub,
		bufferSize: DefaultBufferSize,
	}

	for _, opt := range opts {
		opt(f)
	}
	f.queue = make(chan event.Event, f.bufferSize)
	f.unsubscribe = src.SubscribeAll(f.enqueue)

	return f
}

func (f *Forwarder) Start(ctx context.Context) error {
	defer f.unsubscribe()

	if err := f.pub.WaitReady(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("waiting for broker: %w", err)
	}
	slog.InfoContext(ctx, "event forwarder started")

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-f.queue:
			f.forward(ctx, ev)
		}
	}
}

func (f *Forwarder) enqueue(ev event.Event) {
	select {
	case f.queue <- ev:
	default:
		slog.Warn("event queue full, dropping event", "kind", ev.Kind())
	}
}

func (f *Forwarder) forward(ctx context.Context, ev event.Event) {
	data, err := json.Marshal(envelope{Kind: ev.Kind(), Event: ev})
	if err != nil {
		slog.ErrorContext(ctx, "marshalling event", "kind", ev.Kind(), "error", err)
		return
	}
	if err := f.pub.Publish(SubjectEventPrefix+string(ev.Kind()), data); err != nil {
		slog.WarnContext(ctx, "publishing event", "kind", ev.Kind(), "error", err)
	}

	text, err := display.RenderEvent(ev)
	if err != nil {
		slog.DebugContext(ctx, "no notice for event", "kind", ev.Kind(), "error", err)
		return
	}
	if err := f.pub.Publish(SubjectNotice, []byte(text)); err != nil {
		slog.WarnContext(ctx, "publishing notice", "kind", ev.Kind(), "error", err)
	}
}
