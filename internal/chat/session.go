// Package chat owns conversation sessions: message history, turn
// counting, windowing, and the order/state signals derived from it.
package chat

import (
	"strings"

	"github.com/google/uuid"

	"github.com/ordena/ordena/internal/domain"
	"github.com/ordena/ordena/internal/extract"
)

// NewSessionID generates an opaque session identifier.
func NewSessionID() string {
	return "sess_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}

// Session is one end-user conversation's full mutable state. All
// mutation is sequential per session; the Manager enforces that.
type Session struct {
	id            string
	messages      []domain.Message
	turnCount     int
	activeHandler domain.Handler
	state         domain.State
	order         *domain.Order

	extractor   *extract.Extractor
	maxTurns    int
	maxMessages int
}

// NewSession creates a session in the main state with an empty order.
func NewSession(id string, ex *extract.Extractor, maxTurns, maxMessages int) *Session {
	if id == "" {
		id = NewSessionID()
	}
	return &Session{
		id:            id,
		activeHandler: domain.HandlerMain,
		state:         domain.State{},
		order:         domain.NewOrder(),
		extractor:     ex,
		maxTurns:      maxTurns,
		maxMessages:   maxMessages,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// TurnCount returns the number of user messages since the last prune
// or reset.
func (s *Session) TurnCount() int { return s.turnCount }

// ActiveHandler returns the handler owning the current turn.
func (s *Session) ActiveHandler() domain.Handler { return s.activeHandler }

// SetHandler transfers ownership of the conversation.
func (s *Session) SetHandler(h domain.Handler) { s.activeHandler = h }

// State returns the live conversation state map.
func (s *Session) State() domain.State { return s.state }

// Order returns the canonical order aggregate. Hand-off receivers must
// write price resolutions back here, not into their payload copy.
func (s *Session) Order() *domain.Order { return s.order }

// Messages returns a copy of the message history.
func (s *Session) Messages() []domain.Message {
	out := make([]domain.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// AddMessage appends a message. User messages increment the turn
// counter, run the extractor, and may trigger pruning.
func (s *Session) AddMessage(role, content string) {
	s.messages = append(s.messages, domain.Message{Role: role, Content: content})
	if role != domain.RoleUser {
		return
	}
	s.turnCount++
	s.extractor.Apply(s, content)
	if s.turnCount >= s.maxTurns {
		s.prune()
	}
}

// AddToOrder adds a line to the order and applies the routing nudge:
// a session with items belongs to the sales flow.
func (s *Session) AddToOrder(name string, quantity int) {
	if err := s.order.AddItem(name, quantity, nil); err != nil {
		return
	}
	s.state.Set(domain.StateHasItems, true)
	s.activeHandler = domain.HandlerSales
}

// ClearOrder empties the order and resets the has_items signal.
func (s *Session) ClearOrder() {
	s.order.Clear()
	s.state.Set(domain.StateHasItems, false)
}

// Snapshot returns an immutable value copy of the order and state for
// hand-off payloads and prompt construction.
func (s *Session) Snapshot() domain.Snapshot {
	return domain.Snapshot{
		Order: s.order.Items(),
		State: s.state.Clone(),
	}
}

// Reset clears everything and returns the session to the main state.
// Only invoked on an explicit user command.
func (s *Session) Reset() {
	s.messages = nil
	s.turnCount = 0
	s.activeHandler = domain.HandlerMain
	s.state = domain.State{}
	s.order.Clear()
}

// prune bounds the context sent to the reasoner: keep the most recent
// messages, reduce the state to the allow-listed signals, restart the
// turn counter.
func (s *Session) prune() {
	if len(s.messages) > s.maxMessages {
		s.messages = append([]domain.Message(nil), s.messages[len(s.messages)-s.maxMessages:]...)
	}
	s.state = s.state.Prune(!s.order.IsEmpty())
	s.turnCount = 0
}
