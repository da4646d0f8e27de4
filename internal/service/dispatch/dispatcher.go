// Package dispatch orchestrates the send lifecycle: optimistic append,
// cancellation of superseded requests, the gateway call, and the
// generation-checked commit. Nothing dispatched here ever escapes to a
// global error surface; failures become in-session messages or silence.
package dispatch

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ashleyhq/chat-backend/internal/model/chat"
	"github.com/ashleyhq/chat-backend/internal/service/session"
)

// State of the dispatcher's send machine.
type State string

const (
	StateIdle    State = "idle"
	StateSending State = "sending"
)

// Outcome of one dispatch, observable once Done() is closed.
type Outcome string

const (
	// OutcomeCommitted: the gateway reply was merged into the session.
	OutcomeCommitted Outcome = "committed"
	// OutcomeAborted: the call was cancelled; nothing was mutated.
	OutcomeAborted Outcome = "aborted"
	// OutcomeFailed: the gateway failed; a synthetic assistant message
	// describing the failure was appended.
	OutcomeFailed Outcome = "failed"
	// OutcomeSuperseded: a newer send took over before this one
	// completed; its late result was discarded entirely.
	OutcomeSuperseded Outcome = "superseded"
)

var (
	ErrEmptyMessage     = errors.New("message content is empty")
	ErrDispatcherClosed = errors.New("dispatcher is closed")
	ErrNoActiveSession  = errors.New("no active session")
)

const failureReply = "Sorry, something went wrong while generating a reply. Please try again."
const missingAssistantReply = "I'm not sure how to respond to that."

// Scheduler arms the deferred title derivation. Satisfied by the title
// generator.
type Scheduler interface {
	Schedule(sessionID string)
}

// Event describes one dispatcher state transition.
type Event struct {
	SessionID string  `json:"sessionId"`
	State     State   `json:"state"`
	Outcome   Outcome `json:"outcome,omitempty"`
}

// EventSink receives dispatcher transitions. Optional.
type EventSink interface {
	DispatchEvent(Event)
}

// Dispatch is the handle for one send. Done() closes when the dispatch
// reaches a terminal outcome (including being superseded).
type Dispatch struct {
	SessionID  string
	Generation uint64

	done    chan struct{}
	outcome Outcome
	err     error
}

// Done reports completion.
func (d *Dispatch) Done() <-chan struct{} { return d.done }

// Outcome is valid once Done() is closed.
func (d *Dispatch) Outcome() Outcome { return d.outcome }

// Err returns the gateway error for a failed dispatch.
func (d *Dispatch) Err() error { return d.err }

// Dispatcher runs at most one current dispatch. A newer send supersedes
// the in-flight one: its context is cancelled and its completion is
// identified as stale by a generation check at commit time.
type Dispatcher struct {
	mu      sync.Mutex
	store   *session.Store
	gateway Gateway
	titles  Scheduler
	sink    EventSink

	base       context.Context
	baseCancel context.CancelFunc

	state      State
	generation uint64
	cancel     context.CancelFunc
	closed     bool
}

// New wires the dispatcher. titles and sink may be nil.
func New(store *session.Store, gateway Gateway, titles Scheduler, sink EventSink) *Dispatcher {
	base, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		store:      store,
		gateway:    gateway,
		titles:     titles,
		sink:       sink,
		base:       base,
		baseCancel: cancel,
		state:      StateIdle,
	}
}

// State returns the current machine state.
func (d *Dispatcher) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Send dispatches one user message on the active session. Empty or
// whitespace-only content is refused with no state change. An in-flight
// dispatch is superseded: its context is cancelled and its eventual
// completion is discarded.
func (d *Dispatcher) Send(content string) (*Dispatch, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, ErrEmptyMessage
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, ErrDispatcherClosed
	}
	active, ok := d.store.Active()
	if !ok {
		return nil, ErrNoActiveSession
	}

	if d.cancel != nil {
		d.cancel()
	}
	d.generation++
	gen := d.generation
	ctx, cancel := context.WithCancel(d.base)
	d.cancel = cancel
	d.state = StateSending

	_, count, err := d.store.AppendMessage(active.ID, chat.RoleUser, content, active.PersonaID)
	if err != nil {
		cancel()
		d.cancel = nil
		d.state = StateIdle
		return nil, err
	}
	if count == 1 && d.titles != nil {
		d.titles.Schedule(active.ID)
	}

	snapshot, _ := d.store.Get(active.ID)
	req := Request{
		Turns:     historyTurns(snapshot.Messages),
		PersonaID: active.PersonaID,
		ModelID:   active.ModelID,
	}

	disp := &Dispatch{
		SessionID:  active.ID,
		Generation: gen,
		done:       make(chan struct{}),
	}

	d.publish(Event{SessionID: active.ID, State: StateSending})
	go d.run(ctx, gen, active, disp, req)
	return disp, nil
}

func (d *Dispatcher) run(ctx context.Context, gen uint64, active chat.Session, disp *Dispatch, req Request) {
	resp, err := d.gateway.Send(ctx, req)

	d.mu.Lock()
	defer d.mu.Unlock()
	defer close(disp.done)

	// Only the call path whose generation is still current may touch
	// state. A stale completion, however it ended, mutates nothing.
	if gen != d.generation {
		disp.outcome = OutcomeSuperseded
		return
	}

	d.cancel = nil
	d.state = StateIdle

	switch {
	case err == nil:
		d.commit(active, resp)
		disp.outcome = OutcomeCommitted
	case errors.Is(err, context.Canceled):
		disp.outcome = OutcomeAborted
	default:
		log.Printf("[dispatch] gateway failure for session=%s: %v", active.ID, err)
		if _, _, appendErr := d.store.AppendMessage(active.ID, chat.RoleAssistant, failureReply, active.PersonaID); appendErr != nil {
			log.Printf("[dispatch] could not record failure message: %v", appendErr)
		}
		disp.outcome = OutcomeFailed
		disp.err = err
	}

	d.publish(Event{SessionID: active.ID, State: StateIdle, Outcome: disp.outcome})
}

// commit merges a successful gateway response. A committed send always
// leaves the session ending with at least one assistant message.
func (d *Dispatcher) commit(active chat.Session, resp Response) {
	if len(resp.Turns) > 0 {
		messages := make([]chat.Message, 0, len(resp.Turns)+1)
		hasAssistant := false
		now := time.Now().UTC()
		for _, turn := range resp.Turns {
			if turn.Role == chat.RoleAssistant {
				hasAssistant = true
			}
			messages = append(messages, chat.Message{
				ID:        uuid.NewString(),
				Role:      turn.Role,
				Content:   turn.Content,
				PersonaID: active.PersonaID,
				CreatedAt: now,
			})
		}
		if !hasAssistant {
			messages = append(messages, chat.Message{
				ID:        uuid.NewString(),
				Role:      chat.RoleAssistant,
				Content:   missingAssistantReply,
				PersonaID: active.PersonaID,
				CreatedAt: now,
			})
		}
		if err := d.store.ReplaceTranscript(active.ID, messages); err != nil {
			log.Printf("[dispatch] could not adopt gateway transcript: %v", err)
		}
	} else {
		reply := strings.TrimSpace(resp.Message)
		if reply == "" {
			reply = missingAssistantReply
		}
		if _, _, err := d.store.AppendMessage(active.ID, chat.RoleAssistant, reply, active.PersonaID); err != nil {
			log.Printf("[dispatch] could not append assistant reply: %v", err)
		}
	}

	if resp.Usage != nil {
		d.store.AddUsage(active.ID, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	}
}

// CancelActive aborts any in-flight dispatch: on session switch, sign
// out, or teardown. The late completion is identified as stale and
// discarded silently.
func (d *Dispatcher) CancelActive() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelActiveLocked()
}

func (d *Dispatcher) cancelActiveLocked() {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.generation++
	d.state = StateIdle
}

// Close cancels any outstanding call and refuses further sends.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	d.cancelActiveLocked()
	d.baseCancel()
}

func (d *Dispatcher) publish(ev Event) {
	if d.sink != nil {
		d.sink.DispatchEvent(ev)
	}
}

// historyTurns projects a transcript down to role+content pairs.
func historyTurns(messages []chat.Message) []Turn {
	turns := make([]Turn, 0, len(messages))
	for _, msg := range messages {
		turns = append(turns, Turn{Role: msg.Role, Content: msg.Content})
	}
	return turns
}
