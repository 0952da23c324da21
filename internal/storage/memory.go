package storage

import (
	"sync"
	"time"

	"reelchat-backend/internal/model"
)

type MemoryStorage struct {
	sessions map[string]*model.Session
	mu       sync.RWMutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		sessions: make(map[string]*model.Session),
	}
}

func (m *MemoryStorage) Init() error {
	return nil
}

func (m *MemoryStorage) Close() error {
	return nil
}

// cloneSession copies a session so callers never alias the stored turn
// slice. Result and actor slices are attached once at finalize and never
// mutated afterwards, so sharing their backing arrays is safe.
func cloneSession(session *model.Session) *model.Session {
	clone := *session
	clone.Turns = make([]model.Turn, len(session.Turns))
	copy(clone.Turns, session.Turns)
	return &clone
}

func (m *MemoryStorage) CreateSession(session *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[session.ID] = cloneSession(session)
	return nil
}

// GetSession returns a copy; mutating it does not touch the store.
func (m *MemoryStorage) GetSession(sessionID string) (*model.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return nil, ErrSessionNotFound
	}

	return cloneSession(session), nil
}

// UpdateSession applies metadata changes (title, timestamps). Turns are
// managed through the turn operations and are not replaced here.
func (m *MemoryStorage) UpdateSession(session *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, exists := m.sessions[session.ID]
	if !exists {
		return ErrSessionNotFound
	}

	stored.Title = session.Title
	stored.UpdatedAt = session.UpdatedAt
	return nil
}

func (m *MemoryStorage) DeleteSession(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[sessionID]; !exists {
		return ErrSessionNotFound
	}

	delete(m.sessions, sessionID)
	return nil
}

func (m *MemoryStorage) ListSessions() ([]*model.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sessions := make([]*model.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		sessions = append(sessions, cloneSession(session))
	}

	return sessions, nil
}

// AppendTurn adds a turn at the end of the session history. A streaming
// turn may only be appended while no other turn in the session is
// streaming.
func (m *MemoryStorage) AppendTurn(sessionID string, turn *model.Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return ErrSessionNotFound
	}

	if turn.IsStreaming {
		for i := range session.Turns {
			if session.Turns[i].IsStreaming {
				return ErrTurnStreaming
			}
		}
	}

	session.Turns = append(session.Turns, *turn)
	session.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStorage) GetTurns(sessionID string) ([]model.Turn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return nil, ErrSessionNotFound
	}

	turns := make([]model.Turn, len(session.Turns))
	copy(turns, session.Turns)
	return turns, nil
}

// SetStreamingText replaces the text of a turn that is still streaming.
// Finalized turns are immutable.
func (m *MemoryStorage) SetStreamingText(sessionID, turnID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return ErrSessionNotFound
	}

	for i := range session.Turns {
		if session.Turns[i].ID == turnID {
			if !session.Turns[i].IsStreaming {
				return ErrTurnNotFound
			}
			session.Turns[i].Text = text
			return nil
		}
	}

	return ErrTurnNotFound
}

// FinalizeTurn ends streaming for a turn and attaches its results.
// Idempotent: finalizing an already-finalized turn is a no-op.
func (m *MemoryStorage) FinalizeTurn(sessionID, turnID, text string, results []model.DisplayItem, actors []model.DisplayActor) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return ErrSessionNotFound
	}

	for i := range session.Turns {
		if session.Turns[i].ID == turnID {
			if !session.Turns[i].IsStreaming {
				return nil
			}
			session.Turns[i].Text = text
			session.Turns[i].Results = results
			session.Turns[i].Actors = actors
			session.Turns[i].IsStreaming = false
			session.UpdatedAt = time.Now()
			return nil
		}
	}

	return ErrTurnNotFound
}

func (m *MemoryStorage) ClearTurns(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return ErrSessionNotFound
	}

	session.Turns = session.Turns[:0]
	session.UpdatedAt = time.Now()
	return nil
}
