package state

import (
	"log/slog"
	"sync"

	"github.com/m3rciful/filmbot/core/logger"
	tghelpers "github.com/m3rciful/filmbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

type memoryManager struct {
	mu       sync.RWMutex
	sessions map[int64]*Session

	handlersMu sync.RWMutex
	handlers   map[State]tele.HandlerFunc
}

// NewMemoryManager constructs an in-memory Manager. Sessions live until cleared or process exit.
func NewMemoryManager() Manager {
	return &memoryManager{
		sessions: make(map[int64]*Session),
		handlers: make(map[State]tele.HandlerFunc),
	}
}

func (m *memoryManager) session(convID int64) *Session {
	s, ok := m.sessions[convID]
	if !ok {
		s = &Session{State: StateIdle, TempData: make(map[string]interface{})}
		m.sessions[convID] = s
	}
	return s
}

// Get returns a copy of the session so callers never race with later updates.
func (m *memoryManager) Get(convID int64) Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[convID]
	if !ok {
		return Session{State: StateIdle, TempData: make(map[string]interface{})}
	}
	data := make(map[string]interface{}, len(s.TempData))
	for k, v := range s.TempData {
		data[k] = v
	}
	return Session{State: s.State, TempData: data}
}

// SetTemp stores a key/value pair in the conversation's session.
func (m *memoryManager) SetTemp(convID int64, key string, value interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session(convID).TempData[key] = value
}

// GetTemp retrieves a stored value.
func (m *memoryManager) GetTemp(convID int64, key string) (interface{}, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[convID]
	if !ok {
		return nil, false
	}
	val, ok := s.TempData[key]
	return val, ok
}

// GetTempString retrieves a stored value and asserts it as string.
func (m *memoryManager) GetTempString(convID int64, key string) (string, bool) {
	val, found := m.GetTemp(convID, key)
	if !found {
		return "", false
	}
	s, ok := val.(string)
	return s, ok
}

// ClearTemp removes a stored value.
func (m *memoryManager) ClearTemp(convID int64, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[convID]; ok {
		delete(s.TempData, key)
	}
}

// Clear removes the entire session.
func (m *memoryManager) Clear(convID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, convID)
}

// SetState moves the conversation to st, creating the session if needed.
func (m *memoryManager) SetState(convID int64, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session(convID).State = st
}

// GetState returns the conversation's state, or StateIdle if none exists.
func (m *memoryManager) GetState(convID int64) State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[convID]; ok {
		return s.State
	}
	return StateIdle
}

// Advance is a compare-and-set on the session state.
func (m *memoryManager) Advance(convID int64, from, to State, key string, value interface{}) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[convID]
	if !ok || s.State != from {
		return false
	}
	if key != "" {
		s.TempData[key] = value
	}
	s.State = to
	return true
}

// HasState reports whether the conversation has a state other than idle.
func (m *memoryManager) HasState(convID int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[convID]
	return ok && s.State != StateIdle
}

// Handle binds a handler to a state. Nil handlers are ignored.
func (m *memoryManager) Handle(st State, h tele.HandlerFunc) {
	if h == nil {
		return
	}
	m.handlersMu.Lock()
	defer m.handlersMu.Unlock()
	m.handlers[st] = h
}

// InProgress reports whether the conversation is in a state with a bound handler.
func (m *memoryManager) InProgress(convID int64) bool {
	st := m.GetState(convID)
	if st == StateIdle {
		return false
	}
	m.handlersMu.RLock()
	defer m.handlersMu.RUnlock()
	_, ok := m.handlers[st]
	return ok
}

// ManagerHandler executes the handler bound to the conversation's current state, if any.
func (m *memoryManager) ManagerHandler(c tele.Context) error {
	convID := ConversationID(c)
	current := m.GetState(convID)
	ctx := tghelpers.BuildContext(c)
	logger.Debug(ctx, "tg", "fsm.manager",
		slog.String("status", "ok"),
		slog.Int64("conv_id", convID),
		slog.String("state", string(current)),
	)

	m.handlersMu.RLock()
	handler, ok := m.handlers[current]
	m.handlersMu.RUnlock()
	if ok {
		return handler(c)
	}
	return nil
}
