// Package title derives session titles on a deferred timer so the
// first exchange never has to complete synchronously.
package title

import (
	"log"
	"sync"
	"time"
)

// DefaultDelay is how long after the first message the derivation runs.
const DefaultDelay = 60 * time.Second

// Applier applies a derived title if the session is still eligible.
// Satisfied by the session store.
type Applier interface {
	ApplyDerivedTitle(sessionID string) (string, bool)
}

// Sink receives title-applied notifications. Optional.
type Sink interface {
	TitleDerived(sessionID, title string)
}

// Generator keeps one pending timer per session. Timers are owned here:
// they are cancelled when the session is deleted and when the generator
// is closed, never left dangling.
type Generator struct {
	mu      sync.Mutex
	applier Applier
	sink    Sink
	delay   time.Duration
	timers  map[string]*time.Timer
	// scheduled survives the timer firing so a session is only ever
	// scheduled once in its lifetime.
	scheduled map[string]bool
	closed    bool
}

// NewGenerator builds a generator with the given delay; delay <= 0
// falls back to DefaultDelay. sink may be nil.
func NewGenerator(applier Applier, delay time.Duration, sink Sink) *Generator {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Generator{
		applier:   applier,
		sink:      sink,
		delay:     delay,
		timers:    make(map[string]*time.Timer),
		scheduled: make(map[string]bool),
	}
}

// Schedule arms the derivation timer for a session. Only the first call
// per session does anything.
func (g *Generator) Schedule(sessionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed || g.scheduled[sessionID] {
		return
	}
	g.scheduled[sessionID] = true
	g.timers[sessionID] = time.AfterFunc(g.delay, func() {
		g.fire(sessionID)
	})
}

func (g *Generator) fire(sessionID string) {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	delete(g.timers, sessionID)
	g.mu.Unlock()

	title, ok := g.applier.ApplyDerivedTitle(sessionID)
	if !ok {
		return
	}
	log.Printf("[title] derived title for session=%s", sessionID)
	if g.sink != nil {
		g.sink.TitleDerived(sessionID, title)
	}
}

// Cancel drops the pending timer for a session, typically because the
// session was deleted before the delay elapsed.
func (g *Generator) Cancel(sessionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if timer, ok := g.timers[sessionID]; ok {
		timer.Stop()
		delete(g.timers, sessionID)
	}
}

// Close stops every pending timer. Further Schedule calls are ignored.
func (g *Generator) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.closed = true
	for id, timer := range g.timers {
		timer.Stop()
		delete(g.timers, id)
	}
}
