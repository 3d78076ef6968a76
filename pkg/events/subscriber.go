package events

import (
	"fmt"
	"sync"

	"github.com/go-logr/logr"
)

// Subscriber is an observer attached to a Hub.
type Subscriber interface {
	// ID returns a unique identifier for this subscriber.
	ID() string

	// Handle is called once per event. It must not block on the controller.
	Handle(Event)
}

// SubscriberFunc adapts a function into a Subscriber.
type SubscriberFunc struct {
	id string
	fn func(Event)
}

// NewSubscriberFunc creates a Subscriber named id that calls fn.
func NewSubscriberFunc(id string, fn func(Event)) *SubscriberFunc {
	return &SubscriberFunc{id: id, fn: fn}
}

// ID returns the subscriber's identifier.
func (s *SubscriberFunc) ID() string { return s.id }

// Handle forwards the event to the wrapped function.
func (s *SubscriberFunc) Handle(e Event) { s.fn(e) }

// Recorder keeps every event it receives. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	id     string
	events []Event
}

// NewRecorder creates a Recorder with the given ID.
func NewRecorder(id string) *Recorder {
	return &Recorder{id: id}
}

// ID returns the recorder's identifier.
func (r *Recorder) ID() string { return r.id }

// Handle appends the event.
func (r *Recorder) Handle(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Sink returns r.Handle as a Sink.
func (r *Recorder) Sink() Sink { return r.Handle }

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event{}, r.events...)
}

// Stages returns the recorded stage names in order.
func (r *Recorder) Stages() []Stage {
	return Stages(r.Events())
}

// Reset drops all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// Hub fans each event out to its subscribers in registration order.
type Hub struct {
	mu          sync.RWMutex
	subscribers []Subscriber
	logger      logr.Logger
}

// NewHub creates an empty hub.
func NewHub(logger logr.Logger) *Hub {
	return &Hub{logger: logger.WithName("hub")}
}

// Subscribe registers s. Subscribing the same ID twice is an error.
func (h *Hub) Subscribe(s Subscriber) error {
	if s == nil {
		return fmt.Errorf("subscriber cannot be nil")
	}
	if s.ID() == "" {
		return fmt.Errorf("subscriber ID cannot be empty")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, existing := range h.subscribers {
		if existing.ID() == s.ID() {
			return fmt.Errorf("subscriber %s already registered", s.ID())
		}
	}
	h.subscribers = append(h.subscribers, s)
	return nil
}

// Unsubscribe removes the subscriber with the given ID.
func (h *Hub) Unsubscribe(id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i, s := range h.subscribers {
		if s.ID() == id {
			h.subscribers = append(h.subscribers[:i:i], h.subscribers[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("subscriber %s not found", id)
}

// SubscriberCount returns the number of registered subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Dispatch delivers e to every subscriber. It has the Sink signature so it
// can be passed to Wrap. A panicking subscriber is logged and skipped; the
// remaining subscribers still receive the event.
func (h *Hub) Dispatch(e Event) {
	h.mu.RLock()
	subs := append([]Subscriber{}, h.subscribers...)
	h.mu.RUnlock()

	for _, s := range subs {
		h.deliver(s, e)
	}
}

func (h *Hub) deliver(s Subscriber, e Event) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error(fmt.Errorf("panic: %v", r), "subscriber failed", "subscriber", s.ID(), "stage", e.Stage())
		}
	}()
	s.Handle(e)
}
