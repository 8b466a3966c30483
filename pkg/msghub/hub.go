// Package msghub relays mailbox events to live listeners, such as the websocket monitor.
package msghub

import (
	"container/ring"
	"context"

	"github.com/Veenbreeze/aru-connect-mail/pkg/extension"
	"github.com/Veenbreeze/aru-connect-mail/pkg/extension/event"
)

// Length of msghub operation queue
const opChanLen = 100

// AllMailboxes subscribes a listener to events from every mailbox.
const AllMailboxes = ""

// Listener receives the contents of the history buffer, followed by new events.
type Listener interface {
	Receive(email event.EmailMetadata) error
	Delete(mailbox string, id string) error
}

// Hub relays mailbox events on to its listeners.
type Hub struct {
	// history buffer, points next entry to write.  Proceeding non-nil entry is oldest.
	history   *ring.Ring
	listeners map[Listener]string // listener to mailbox filter
	opChan    chan func(h *Hub)   // operations queued for this actor
	done      chan struct{}       // closed once Start returns
}

// New constructs a new Hub which will cache historyLen events in memory for playback to future
// listeners.  The hub subscribes itself to the mailbox events of extHost.
func New(historyLen int, extHost *extension.Host) *Hub {
	hub := &Hub{
		history:   ring.New(historyLen),
		listeners: make(map[Listener]string),
		opChan:    make(chan func(h *Hub), opChanLen),
		done:      make(chan struct{}),
	}

	events := extHost.Events
	events.AfterEmailStored.AddListener("msghub", hub.Dispatch)
	events.AfterEmailUpdated.AddListener("msghub", hub.Update)
	events.AfterEmailDeleted.AddListener("msghub", func(email event.EmailMetadata) {
		hub.Delete(email.Mailbox, email.ID)
	})

	return hub
}

// Start Hub processing loop, it will run until the provided context is canceled.
func (hub *Hub) Start(ctx context.Context) {
	defer close(hub.done)
	for {
		select {
		case <-ctx.Done():
			return
		case op := <-hub.opChan:
			if ctx.Err() != nil {
				return
			}
			op(hub)
		}
	}
}

// enqueue hands op to the actor, dropping it once the hub has shut down.
func (hub *Hub) enqueue(op func(h *Hub)) bool {
	select {
	case hub.opChan <- op:
		return true
	case <-hub.done:
		return false
	}
}

// Dispatch queues an event for broadcast by the hub.  The event will be placed into the history
// buffer and then relayed to all interested listeners.
func (hub *Hub) Dispatch(email event.EmailMetadata) {
	hub.enqueue(func(h *Hub) {
		if h.history == nil {
			return
		}
		h.history.Value = email
		h.history = h.history.Next()
		h.broadcast(email.Mailbox, func(l Listener) error { return l.Receive(email) })
	})
}

// Update replaces the history entry for an existing email, and relays the new state to
// listeners.
func (hub *Hub) Update(email event.EmailMetadata) {
	hub.enqueue(func(h *Hub) {
		if h.history == nil {
			return
		}
		for r, i := h.history, 0; i < h.history.Len(); r, i = r.Next(), i+1 {
			if prev, ok := r.Value.(event.EmailMetadata); ok &&
				prev.Mailbox == email.Mailbox && prev.ID == email.ID {
				r.Value = email
			}
		}
		h.broadcast(email.Mailbox, func(l Listener) error { return l.Receive(email) })
	})
}

// Delete removes the email from history, and tells listeners it is gone.
func (hub *Hub) Delete(mailbox string, id string) {
	hub.enqueue(func(h *Hub) {
		if h.history == nil {
			return
		}
		for r, i := h.history, 0; i < h.history.Len(); r, i = r.Next(), i+1 {
			if prev, ok := r.Value.(event.EmailMetadata); ok &&
				prev.Mailbox == mailbox && prev.ID == id {
				r.Value = nil
			}
		}
		h.broadcast(mailbox, func(l Listener) error { return l.Delete(mailbox, id) })
	})
}

// broadcast delivers to every listener interested in mailbox, removing listeners that return an
// error.
func (hub *Hub) broadcast(mailbox string, deliver func(Listener) error) {
	for l, filter := range hub.listeners {
		if filter != AllMailboxes && filter != mailbox {
			continue
		}
		if err := deliver(l); err != nil {
			delete(hub.listeners, l)
		}
	}
}

// AddListener registers a listener to receive events for mailbox, or AllMailboxes.  Matching
// history is played back first.
func (hub *Hub) AddListener(mailbox string, l Listener) {
	hub.enqueue(func(h *Hub) {
		h.history.Do(func(v any) {
			if email, ok := v.(event.EmailMetadata); ok {
				if mailbox == AllMailboxes || email.Mailbox == mailbox {
					_ = l.Receive(email)
				}
			}
		})
		h.listeners[l] = mailbox
	})
}

// RemoveListener deletes a listener registration, it will cease to receive events.
func (hub *Hub) RemoveListener(l Listener) {
	hub.enqueue(func(h *Hub) {
		delete(h.listeners, l)
	})
}

// Sync blocks until the msghub has processed its queue up to this point, useful for unit tests.
func (hub *Hub) Sync() {
	done := make(chan struct{})
	if !hub.enqueue(func(h *Hub) { close(done) }) {
		return
	}
	select {
	case <-done:
	case <-hub.done:
	}
}
