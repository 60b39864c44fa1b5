// Package eventbus implements the typed publish/subscribe bus described in
// spec §4.4: synchronous, in-process delivery with per-subscriber panic
// isolation, grounded on the subscribe/unsubscribe shape of the teacher's
// live/pubsub_test.go (subscribe returns membership, unsubscribe is a
// no-op on an unknown subscriber).
package eventbus

import (
	"log/slog"
	"sync"
	"time"
)

// Type names the event vocabulary from spec §4.4.
type Type string

const (
	DocumentChanged  Type = "document:changed"
	BlockCreated     Type = "block:created"
	BlockUpdated     Type = "block:updated"
	BlockDeleted     Type = "block:deleted"
	BlockMoved       Type = "block:moved"
	SelectionChanged Type = "selection:changed"
	FocusChanged     Type = "focus:changed"
	CommandExecuted  Type = "command:executed"
	CommandUndone    Type = "command:undone"
	CommandRedone    Type = "command:redone"
)

// Source identifies who triggered an event (§4.4).
type Source string

const (
	SourceUser          Source = "user"
	SourceAPI           Source = "api"
	SourceHistory       Source = "history"
	SourceCollaboration Source = "collaboration"
)

// Event is the value every subscriber receives.
type Event struct {
	Type      Type
	Payload   any
	Timestamp time.Time
	Source    Source
}

// Handler processes one Event. A Handler must not panic across emit's
// boundary — Bus recovers and logs on its behalf (§7: "subscriber fault").
type Handler func(Event)

// Bus is a typed pub/sub hub. The zero value is not usable; use New.
type Bus struct {
	mu       sync.Mutex
	handlers map[Type][]subscription
	nextID   uint64
	log      *slog.Logger
}

type subscription struct {
	id uint64
	fn Handler
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger used to report subscriber faults. Defaults to
// slog.Default(), following the teacher's app.go convention.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bus) {
		if l != nil {
			b.log = l
		}
	}
}

// New creates an empty Bus.
func New(opts ...Option) *Bus {
	b := &Bus{handlers: make(map[Type][]subscription), log: slog.Default()}
	for _, o := range opts {
		o(b)
	}
	return b
}

// On subscribes fn to events of type t and returns an unsubscribe func.
func (b *Bus) On(t Type, fn Handler) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.handlers[t] = append(b.handlers[t], subscription{id: id, fn: fn})
	b.mu.Unlock()

	return func() { b.Off(t, id) }
}

// Off removes the subscription identified by id from t's handler list. It
// is a no-op if id is not currently subscribed (mirrors §7's no-op
// philosophy for stale references).
func (b *Bus) Off(t Type, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.handlers[t]
	for i, s := range subs {
		if s.id == id {
			b.handlers[t] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Emit delivers event synchronously to every current subscriber of t, in
// subscription order. A handler panic is caught, logged, and does not stop
// delivery to the remaining subscribers (§4.4, §7).
func (b *Bus) Emit(t Type, payload any, source Source) {
	b.mu.Lock()
	subs := append([]subscription(nil), b.handlers[t]...)
	b.mu.Unlock()

	ev := Event{Type: t, Payload: payload, Timestamp: time.Now(), Source: source}
	for _, s := range subs {
		b.dispatch(s, ev)
	}
}

func (b *Bus) dispatch(s subscription, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("eventbus subscriber panicked", slog.Any("recovered", r), slog.String("type", string(ev.Type)))
		}
	}()
	s.fn(ev)
}
