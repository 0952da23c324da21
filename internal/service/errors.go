package service

import "errors"

var (
	// ErrEmptyQuery rejects a free-text submission whose trimmed text is empty.
	ErrEmptyQuery = errors.New("query text is empty")
	// ErrNoMood rejects a mood submission without a selected mood.
	ErrNoMood = errors.New("no mood selected")
	// ErrBusy rejects a submission while a request is already in flight for
	// the session. The input is ignored, not queued.
	ErrBusy = errors.New("a request is already in flight for this session")
	// ErrCanceled marks a request whose liveness token was revoked; its
	// continuations stop without touching history.
	ErrCanceled = errors.New("request canceled")
)
