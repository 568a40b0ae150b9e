// Package session owns per-session conversation history. Sessions live in
// memory only and do not survive a process restart.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/studyloop/studyloop/internal/domain"
)

// DefaultMaxHistory bounds the number of retained turns per session.
const DefaultMaxHistory = 2

// turnRing is a fixed-capacity ring buffer of turns. When full, appending
// evicts the oldest turn.
type turnRing struct {
	turns []domain.Turn
	head  int
	count int
}

func newTurnRing(capacity int) *turnRing {
	return &turnRing{turns: make([]domain.Turn, capacity)}
}

func (r *turnRing) append(t domain.Turn) {
	if r.count < len(r.turns) {
		r.turns[(r.head+r.count)%len(r.turns)] = t
		r.count++
		return
	}
	r.turns[r.head] = t
	r.head = (r.head + 1) % len(r.turns)
}

// snapshot returns the retained turns in chronological order.
func (r *turnRing) snapshot() []domain.Turn {
	out := make([]domain.Turn, 0, r.count)
	for i := 0; i < r.count; i++ {
		out = append(out, r.turns[(r.head+i)%len(r.turns)])
	}
	return out
}

type sessionState struct {
	mu   sync.Mutex
	ring *turnRing
}

// Manager tracks conversation sessions keyed by an opaque identifier.
// Writes to the same session are serialized; different sessions proceed
// independently.
type Manager struct {
	maxHistory int

	mu       sync.RWMutex
	sessions map[string]*sessionState
}

// NewManager creates a Manager retaining at most maxHistory turns per
// session.
func NewManager(maxHistory int) *Manager {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	return &Manager{
		maxHistory: maxHistory,
		sessions:   make(map[string]*sessionState),
	}
}

// CreateSession generates a fresh unique session identifier.
func (m *Manager) CreateSession() string {
	id := uuid.New().String()

	m.mu.Lock()
	m.sessions[id] = &sessionState{ring: newTurnRing(m.maxHistory)}
	m.mu.Unlock()

	return id
}

// GetHistory returns the retained turns for a session in chronological
// order. An unknown id is not an error; it reads as an empty history.
func (m *Manager) GetHistory(sessionID string) []domain.Turn {
	m.mu.RLock()
	state := m.sessions[sessionID]
	m.mu.RUnlock()

	if state == nil {
		return nil
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	return state.ring.snapshot()
}

// RecordTurn appends a turn to the session, evicting the oldest turn once
// the history bound is exceeded. Recording against an unknown id creates
// the session, so ids minted elsewhere remain valid write targets.
func (m *Manager) RecordTurn(sessionID, query, answer string, sources []domain.Source) {
	state := m.getOrCreate(sessionID)

	turn := domain.Turn{
		Query:     query,
		Answer:    answer,
		Sources:   append([]domain.Source(nil), sources...),
		CreatedAt: time.Now().UTC(),
	}

	state.mu.Lock()
	state.ring.append(turn)
	state.mu.Unlock()
}

// ClearSession discards a session's history. Clearing an unknown id is a
// no-op.
func (m *Manager) ClearSession(sessionID string) {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
}

// SessionCount returns the number of live sessions.
func (m *Manager) SessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) getOrCreate(sessionID string) *sessionState {
	m.mu.RLock()
	state := m.sessions[sessionID]
	m.mu.RUnlock()
	if state != nil {
		return state
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if state = m.sessions[sessionID]; state == nil {
		state = &sessionState{ring: newTurnRing(m.maxHistory)}
		m.sessions[sessionID] = state
	}
	return state
}
