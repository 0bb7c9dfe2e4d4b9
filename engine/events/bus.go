package events

import (
	"log"

	"github.com/google/uuid"
)

// Listener receives events fired on a Bus.
type Listener func(e Event)

type subscription struct {
	token    uuid.UUID
	listener Listener
}

// bus is the implementation of the Bus interface.
type bus struct {
	listeners map[Name][]subscription
}

// Bus is an ordered event emitter. Listeners of one event run in registration order, and a
// panicking listener is logged and skipped without stopping the remaining ones.
type Bus interface {
	// On registers a listener for the named event.
	//
	// Parameters:
	//   - name: the event name
	//   - l: the listener
	//
	// Returns:
	//   - uuid.UUID: the token identifying this registration, used by Off
	On(name Name, l Listener) uuid.UUID

	// Off removes a registration.
	//
	// Parameters:
	//   - name: the event name
	//   - token: the token returned by On
	//
	// Returns:
	//   - bool: false if no such registration exists
	Off(name Name, token uuid.UUID) bool

	// Fire delivers an event to every listener registered for e.Name.
	//
	// Parameters:
	//   - e: the event
	Fire(e Event)

	// Count returns the number of listeners registered for the named event.
	Count(name Name) int
}

var _ Bus = &bus{}

// NewBus creates an empty Bus.
//
// Returns:
//   - Bus: the newly created bus
func NewBus() Bus {
	return &bus{listeners: make(map[Name][]subscription)}
}

func (b *bus) On(name Name, l Listener) uuid.UUID {
	token := uuid.New()
	b.listeners[name] = append(b.listeners[name], subscription{token: token, listener: l})
	return token
}

func (b *bus) Off(name Name, token uuid.UUID) bool {
	subs := b.listeners[name]
	for i, s := range subs {
		if s.token == token {
			b.listeners[name] = append(subs[:i:i], subs[i+1:]...)
			return true
		}
	}
	return false
}

func (b *bus) Fire(e Event) {
	// Listeners may call On or Off while the event is being delivered; iterate a snapshot.
	subs := b.listeners[e.Name]
	for _, s := range subs {
		deliver(e, s.listener)
	}
}

func (b *bus) Count(name Name) int {
	return len(b.listeners[name])
}

func deliver(e Event, l Listener) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[EventBus] listener for %q panicked: %v", e.Name, r)
		}
	}()
	l(e)
}
