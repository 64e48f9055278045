// Copyright (c) 2025 ByChat Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"
	"sync"

	"github.com/bychat/bychat/internal/model"
	"github.com/bychat/bychat/internal/ollama"
	"github.com/bychat/bychat/internal/store"
)

// =============================================================================
// STATE MACHINE
// =============================================================================

// State is the orchestrator's send state.
type State int

const (
	StateIdle State = iota
	StateSending
	StateCompleted
	StateFailed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// =============================================================================
// ERRORS
// =============================================================================

// OrchestratorError represents a rejected orchestrator operation.
type OrchestratorError struct {
	Message string
}

func (e *OrchestratorError) Error() string {
	return e.Message
}

func (e *OrchestratorError) Is(target error) bool {
	t, ok := target.(*OrchestratorError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// Guard errors. Use errors.Is to check.
var (
	ErrBusy       = &OrchestratorError{Message: "a send is already in flight"}
	ErrNoModel    = &OrchestratorError{Message: "no model selected"}
	ErrEmptyInput = &OrchestratorError{Message: "input is empty"}
)

// =============================================================================
// ORCHESTRATOR
// =============================================================================

// Completer runs one chat completion. *ollama.Client satisfies it.
type Completer interface {
	Chat(ctx context.Context, model string, messages []ollama.Message) (string, error)
}

// Orchestrator drives the per-turn control loop for the open session.
//
// All session mutations flow through it, so the store sees a single
// logical writer. Methods are safe for concurrent use; concurrent
// sends are rejected with ErrBusy rather than queued.
type Orchestrator struct {
	mu         sync.Mutex
	store      *store.SessionStore
	gateway    Completer
	state      State
	sessionID  string
	chatModel  string
	transcript []model.Message
}

// NewOrchestrator creates an orchestrator over the given store and
// inference gateway.
func NewOrchestrator(ss *store.SessionStore, gateway Completer) *Orchestrator {
	return &Orchestrator{
		store:   ss,
		gateway: gateway,
		state:   StateIdle,
	}
}

// State returns the current send state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// SessionID returns the open session's id, empty until the first save
// of a new session.
func (o *Orchestrator) SessionID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sessionID
}

// Model returns the selected chat model.
func (o *Orchestrator) Model() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.chatModel
}

// SetModel selects the model for subsequent sends. Rejected with
// ErrBusy while a send is in flight.
func (o *Orchestrator) SetModel(m string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateIdle {
		return ErrBusy
	}
	o.chatModel = m
	return nil
}

// Transcript returns a copy of the in-memory transcript.
func (o *Orchestrator) Transcript() []model.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]model.Message(nil), o.transcript...)
}

// =============================================================================
// SEND
// =============================================================================

// Send runs one full turn: append the user message, persist, complete,
// append the assistant message or error placeholder, persist again.
// It returns the appended assistant message.
//
// Guard failures (empty input, no model, send in flight) are returned
// as errors before anything is mutated. Gateway failures are not
// errors from Send's point of view: they are recorded in the
// transcript and persisted like any other turn. A persistence failure
// on the closing save is returned alongside the assistant message;
// the in-memory transcript already holds the full turn.
func (o *Orchestrator) Send(ctx context.Context, input string) (model.Message, error) {
	input = strings.TrimSpace(input)

	o.mu.Lock()
	if input == "" {
		o.mu.Unlock()
		return model.Message{}, ErrEmptyInput
	}
	if o.chatModel == "" {
		o.mu.Unlock()
		return model.Message{}, ErrNoModel
	}
	if o.state != StateIdle {
		o.mu.Unlock()
		return model.Message{}, ErrBusy
	}

	o.state = StateSending
	o.transcript = append(o.transcript, model.NewUserMessage(input))

	isNew := o.sessionID == ""
	sessionID := o.sessionID
	chatModel := o.chatModel
	transcript := append([]model.Message(nil), o.transcript...)
	o.mu.Unlock()

	// First save: commit the user message, generating a title for a
	// new session. A persistence failure is not fatal to the turn;
	// the completion still runs and the second save retries.
	if id, err := o.store.Save(ctx, transcript, sessionID, chatModel, isNew); err == nil {
		sessionID = id
		o.mu.Lock()
		o.sessionID = id
		o.mu.Unlock()
	}

	content, chatErr := o.gateway.Chat(ctx, chatModel, model.ToOllama(transcript))

	var assistant model.Message
	outcome := StateCompleted
	if chatErr != nil {
		assistant = model.NewAssistantMessage("Error: " + chatErr.Error())
		outcome = StateFailed
	} else {
		if content == "" {
			content = "No response"
		}
		assistant = model.NewAssistantMessage(content)
	}

	o.mu.Lock()
	o.transcript = append(o.transcript, assistant)
	o.state = outcome
	transcript = append([]model.Message(nil), o.transcript...)
	o.mu.Unlock()

	// Second save: never a new session, so the title is carried
	// forward untouched. The turn stays busy (state is Completed or
	// Failed, not Idle) until this save lands, so concurrent sends and
	// session switches are still rejected here.
	id, saveErr := o.store.Save(ctx, transcript, sessionID, chatModel, false)
	if saveErr == nil {
		o.mu.Lock()
		o.sessionID = id
		o.mu.Unlock()
	}

	// Completed or Failed, the machine always returns to Idle so the
	// next send is accepted.
	o.mu.Lock()
	o.state = StateIdle
	o.mu.Unlock()

	return assistant, saveErr
}

// =============================================================================
// SESSION SWITCHING
// =============================================================================

// Open loads an existing session into the transcript. Only permitted
// while no send is in flight.
func (o *Orchestrator) Open(id string) error {
	o.mu.Lock()
	if o.state != StateIdle {
		o.mu.Unlock()
		return ErrBusy
	}
	o.mu.Unlock()

	sess, err := o.store.Get(id)
	if err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateIdle {
		return ErrBusy
	}
	o.sessionID = sess.ID
	o.transcript = sess.Messages
	if sess.Model != "" {
		o.chatModel = sess.Model
	}
	return nil
}

// Reset clears the transcript and session id so the next send starts
// a new session. Only permitted while no send is in flight.
func (o *Orchestrator) Reset() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateIdle {
		return ErrBusy
	}
	o.sessionID = ""
	o.transcript = nil
	return nil
}
