package storage

import (
	"reelchat-backend/internal/model"
)

// Storage holds conversation state. History mutation goes through these
// operations only; turns are append-only and never reordered.
type Storage interface {
	// Session management
	CreateSession(session *model.Session) error
	GetSession(sessionID string) (*model.Session, error)
	UpdateSession(session *model.Session) error
	DeleteSession(sessionID string) error
	ListSessions() ([]*model.Session, error)

	// Turn management
	AppendTurn(sessionID string, turn *model.Turn) error
	GetTurns(sessionID string) ([]model.Turn, error)
	SetStreamingText(sessionID, turnID, text string) error
	FinalizeTurn(sessionID, turnID, text string, results []model.DisplayItem, actors []model.DisplayActor) error
	ClearTurns(sessionID string) error

	Init() error
	Close() error
}
