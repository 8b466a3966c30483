package extension

import (
	"errors"
	"sync"
	"time"
)

// listenerList is an ordered set of named listeners shared by both broker kinds.  Callers
// must hold the owning broker's lock.
type listenerList[F any] struct {
	names []string
	funcs []F
}

func (ll *listenerList[F]) add(name string, f F) {
	ll.remove(name)
	ll.names = append(ll.names, name)
	ll.funcs = append(ll.funcs, f)
}

func (ll *listenerList[F]) remove(name string) {
	for i, entry := range ll.names {
		if entry == name {
			ll.names = append(ll.names[:i], ll.names[i+1:]...)
			ll.funcs = append(ll.funcs[:i], ll.funcs[i+1:]...)
			return
		}
	}
}

// EventBroker maintains a list of listeners interested in a specific type of event.  Listeners
// are called in order until one returns a non-nil result.
type EventBroker[E any, R any] struct {
	sync.RWMutex
	listeners listenerList[func(E) *R]
}

// Emit sends the provided event to each registered listener in order, until one returns a
// non-nil result.  That result will be returned to the caller.
func (eb *EventBroker[E, R]) Emit(event *E) *R {
	eb.RLock()
	defer eb.RUnlock()

	for _, l := range eb.listeners.funcs {
		// Listeners get a copy, they cannot mutate the caller's event.
		if result := l(*event); result != nil {
			return result
		}
	}

	return nil
}

// AddListener registers the named listener, replacing one with a duplicate name if present.
// Listeners should be added in order of priority, most significant first.
func (eb *EventBroker[E, R]) AddListener(name string, listener func(E) *R) {
	eb.Lock()
	defer eb.Unlock()
	eb.listeners.add(name, listener)
}

// RemoveListener unregisters the named listener.
func (eb *EventBroker[E, R]) RemoveListener(name string) {
	eb.Lock()
	defer eb.Unlock()
	eb.listeners.remove(name)
}

// AsyncEventBroker maintains a list of listeners interested in a specific type of event.
// Events are sent to all listeners in parallel, and no result is returned.
type AsyncEventBroker[E any] struct {
	sync.RWMutex
	listeners listenerList[func(E)]
}

// Emit sends the provided event to each registered listener on its own goroutine.
func (eb *AsyncEventBroker[E]) Emit(event *E) {
	eb.RLock()
	defer eb.RUnlock()

	for _, l := range eb.listeners.funcs {
		go l(*event)
	}
}

// AddListener registers the named listener, replacing one with a duplicate name if present.
func (eb *AsyncEventBroker[E]) AddListener(name string, listener func(E)) {
	eb.Lock()
	defer eb.Unlock()
	eb.listeners.add(name, listener)
}

// RemoveListener unregisters the named listener.
func (eb *AsyncEventBroker[E]) RemoveListener(name string) {
	eb.Lock()
	defer eb.Unlock()
	eb.listeners.remove(name)
}

// AsyncTestListener returns a func that will wait for an event and return it, or timeout with
// an error.  The listener unregisters itself after capacity events.
func (eb *AsyncEventBroker[E]) AsyncTestListener(name string, capacity int) func() (*E, error) {
	events := make(chan E, capacity)
	eb.AddListener(name, func(msg E) {
		events <- msg
	})

	count := 0
	return func() (*E, error) {
		count++
		defer func() {
			if count >= capacity {
				eb.RemoveListener(name)
			}
		}()

		select {
		case event := <-events:
			return &event, nil
		case <-time.After(2 * time.Second):
			return nil, errors.New("timeout waiting for event")
		}
	}
}
