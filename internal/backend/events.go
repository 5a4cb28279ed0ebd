package backend

import "sync"

// AuthEvent is an auth lifecycle notification emitted by the client on its
// own transitions.
type AuthEvent string

const (
	EventInitialSession AuthEvent = "initial_session"
	EventSignedIn       AuthEvent = "signed_in"
	EventSignedOut      AuthEvent = "signed_out"
	EventTokenRefreshed AuthEvent = "token_refreshed"
)

// broadcaster fans auth events out to subscribers. Emissions are queued and
// drained by a single dispatch goroutine, so subscribers see events in
// emission order and a slow subscriber cannot block an auth operation.
// Handlers registered at emission time all see the event.
type broadcaster struct {
	mu       sync.Mutex
	nextID   int
	handlers map[int]AuthStateHandler

	queue       []emission
	dispatching bool
}

// emission is one queued event with the handler set captured when it was
// emitted.
type emission struct {
	event    AuthEvent
	session  *Session
	handlers []AuthStateHandler
}

func (b *broadcaster) subscribe(h AuthStateHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.handlers == nil {
		b.handlers = make(map[int]AuthStateHandler)
	}
	id := b.nextID
	b.nextID++
	b.handlers[id] = h
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers, id)
	}
}

func (b *broadcaster) emit(event AuthEvent, session *Session) {
	b.mu.Lock()
	hs := make([]AuthStateHandler, 0, len(b.handlers))
	for _, h := range b.handlers {
		hs = append(hs, h)
	}
	b.queue = append(b.queue, emission{event: event, session: session, handlers: hs})
	if !b.dispatching {
		b.dispatching = true
		go b.dispatch()
	}
	b.mu.Unlock()
}

// dispatch drains the emission queue in FIFO order and exits once it is
// empty; the next emit starts a fresh one.
func (b *broadcaster) dispatch() {
	for {
		b.mu.Lock()
		if len(b.queue) == 0 {
			b.dispatching = false
			b.mu.Unlock()
			return
		}
		e := b.queue[0]
		b.queue = b.queue[1:]
		b.mu.Unlock()

		for _, h := range e.handlers {
			h(e.event, e.session)
		}
	}
}
