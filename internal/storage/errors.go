package storage

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTurnNotFound    = errors.New("turn not found")
	ErrTurnStreaming   = errors.New("a turn is already streaming")
)
