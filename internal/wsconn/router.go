package wsconn

import (
	"encoding/json"
	"sync"
)

// Handler consumes one inbound payload. A returned error is logged by the
// connection; it never closes it.
type Handler func(payload json.RawMessage) error

// Router maps action tags to handlers. It outlives individual connections:
// consumers register once and keep receiving across reconnects until they
// unregister.
type Router struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRouter returns an empty router.
func NewRouter() *Router {
	return &Router{handlers: make(map[string]Handler)}
}

// Handle registers h for action, replacing any previous handler.
func (r *Router) Handle(action string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h == nil {
		delete(r.handlers, action)
		return
	}
	r.handlers[action] = h
}

// Unhandle removes the handler for action.
func (r *Router) Unhandle(action string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, action)
}

// Dispatch runs the handler registered for action. handled is false when no
// handler exists.
func (r *Router) Dispatch(action string, payload json.RawMessage) (handled bool, err error) {
	if r == nil {
		return false, nil
	}
	r.mu.RLock()
	h, ok := r.handlers[action]
	r.mu.RUnlock()
	if !ok {
		return false, nil
	}
	return true, h(payload)
}
