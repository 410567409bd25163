package chat

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ordena/ordena/internal/domain"
	"github.com/ordena/ordena/internal/extract"
)

// Dispatcher runs one turn for a session and returns the assistant
// reply. The router implements this.
type Dispatcher interface {
	Dispatch(ctx context.Context, sess *Session, userText string) (string, error)
}

// errorReply is surfaced when a turn fails. The session stays usable on
// the next turn.
const errorReply = "Lo siento, no pude procesar tu mensaje en este momento. Por favor, intenta nuevamente."

// Manager owns all live sessions and gives each one mutual exclusion:
// one inbound message is processed to completion before the next
// message on the same session is accepted. Different sessions run in
// parallel.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*managedSession

	extractor   *extract.Extractor
	dispatcher  Dispatcher
	logger      *zap.Logger
	maxTurns    int
	maxMessages int
}

type managedSession struct {
	mu      sync.Mutex
	session *Session
}

// NewManager creates a session manager.
func NewManager(ex *extract.Extractor, d Dispatcher, logger *zap.Logger, maxTurns, maxMessages int) *Manager {
	return &Manager{
		sessions:    make(map[string]*managedSession),
		extractor:   ex,
		dispatcher:  d,
		logger:      logger,
		maxTurns:    maxTurns,
		maxMessages: maxMessages,
	}
}

// Run processes one inbound user message for the given session and
// returns the assistant reply. A session is created on the first
// message for a new conversation id.
func (m *Manager) Run(ctx context.Context, sessionID, userText string) (string, error) {
	if sessionID == "" {
		return "", fmt.Errorf("session id is required")
	}
	ms := m.getOrCreate(sessionID)
	ms.mu.Lock()
	defer ms.mu.Unlock()

	sess := ms.session
	sess.AddMessage(domain.RoleUser, userText)

	reply, err := m.dispatcher.Dispatch(ctx, sess, userText)
	if err != nil {
		m.logger.Error("turn failed",
			zap.String("session_id", sessionID),
			zap.String("handler", string(sess.ActiveHandler())),
			zap.Error(err))
		reply = errorReply
		sess.AddMessage(domain.RoleAssistant, reply)
		return reply, nil
	}

	sess.AddMessage(domain.RoleAssistant, reply)
	return reply, nil
}

// Reset clears a session on an explicit user command. It reports
// whether the session existed.
func (m *Manager) Reset(sessionID string) bool {
	m.mu.RLock()
	ms, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if !ok {
		return false
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.session.Reset()
	m.logger.Info("session reset", zap.String("session_id", sessionID))
	return true
}

// SessionInfo is a value snapshot of a session, safe to read while
// other turns run on it.
type SessionInfo struct {
	ID            string
	ActiveHandler domain.Handler
	TurnCount     int
	Messages      []domain.Message
	State         domain.State
	Order         map[string]domain.OrderItem
}

// Inspect returns a snapshot of the session for id. It takes the
// per-session lock, so it never observes a turn mid-flight; the live
// session is never handed out.
func (m *Manager) Inspect(sessionID string) (SessionInfo, bool) {
	m.mu.RLock()
	ms, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if !ok {
		return SessionInfo{}, false
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()
	sess := ms.session
	snap := sess.Snapshot()
	return SessionInfo{
		ID:            sess.ID(),
		ActiveHandler: sess.ActiveHandler(),
		TurnCount:     sess.TurnCount(),
		Messages:      sess.Messages(),
		State:         snap.State,
		Order:         snap.Order,
	}, true
}

func (m *Manager) getOrCreate(sessionID string) *managedSession {
	m.mu.RLock()
	ms, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if ok {
		return ms
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if ms, ok := m.sessions[sessionID]; ok {
		return ms
	}
	ms = &managedSession{
		session: NewSession(sessionID, m.extractor, m.maxTurns, m.maxMessages),
	}
	m.sessions[sessionID] = ms
	m.logger.Info("session created", zap.String("session_id", sessionID))
	return ms
}
