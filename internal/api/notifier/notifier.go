// Package notifier fans catalog change events out to streaming HTTP clients.
package notifier

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event announces that the served catalog was replaced.
type Event struct {
	ID        string    `json:"id"`
	Version   uint64    `json:"version"`
	Relations int       `json:"relations"`
	At        time.Time `json:"at"`
}

// Notifier broadcasts events to all subscribed listeners. Each listener
// holds at most one pending event; a slow listener sees only the latest.
type Notifier struct {
	mu        sync.Mutex
	listeners map[chan Event]struct{}
	version   uint64
}

// New creates a new Notifier instance.
func New() *Notifier {
	return &Notifier{
		listeners: make(map[chan Event]struct{}),
	}
}

// Subscribe returns a channel that receives events.
// The caller must call Unsubscribe when done to prevent goroutine leaks.
func (n *Notifier) Subscribe() chan Event {
	ch := make(chan Event, 1)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (n *Notifier) Unsubscribe(ch chan Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.listeners[ch]; !ok {
		return
	}
	delete(n.listeners, ch)
	close(ch)
}

// Publish records a catalog change and delivers it to every listener
// without blocking. A pending undelivered event is replaced.
func (n *Notifier) Publish(relations int) Event {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.version++
	ev := Event{
		ID:        uuid.NewString(),
		Version:   n.version,
		Relations: relations,
		At:        time.Now().UTC(),
	}

	for ch := range n.listeners {
		select {
		case <-ch:
		default:
		}
		ch <- ev
	}
	return ev
}

// Version returns the number of events published so far.
func (n *Notifier) Version() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.version
}

// Listeners returns the number of active subscriptions.
func (n *Notifier) Listeners() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.listeners)
}
