// Package event is a small in-process event bus. Order creation publishes
// domain events; listeners (email job dispatch, websocket broadcast) react
// without the order service knowing about them.
package event

import (
	"sync"

	"github.com/bloomkart/bloomkart/pkg/logger"
)

// Listener handles one published event payload.
type Listener func(payload interface{})

var (
	mu        sync.RWMutex
	listeners = map[string][]Listener{}
)

// Listen registers a listener for the named event. Multiple listeners per
// event run in registration order.
func Listen(name string, fn Listener) {
	mu.Lock()
	defer mu.Unlock()
	listeners[name] = append(listeners[name], fn)
}

// Dispatch publishes payload to every listener of the named event.
// Listeners run synchronously on the caller's goroutine; a panicking
// listener is recovered and logged so one bad listener cannot take down the
// request that triggered it.
func Dispatch(name string, payload interface{}) {
	mu.RLock()
	fns := append([]Listener(nil), listeners[name]...)
	mu.RUnlock()

	for _, fn := range fns {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("event: listener panic", "event", name, "panic", r)
				}
			}()
			fn(payload)
		}()
	}
}

// Reset removes all listeners. Test helper.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	listeners = map[string][]Listener{}
}
