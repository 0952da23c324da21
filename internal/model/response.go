package model

import "time"

// ChatChunk is one paced update for the streaming assistant turn. Content is
// cumulative: each chunk extends the previous one by whole words. The final
// chunk has Done set and carries the normalized result set.
type ChatChunk struct {
	SessionID    string         `json:"session_id"`
	TurnID       string         `json:"turn_id"`
	Role         string         `json:"role"`
	Content      string         `json:"content"`
	Done         bool           `json:"done"`
	Timestamp    int64          `json:"timestamp"`
	Results      []DisplayItem  `json:"results,omitempty"`
	Actors       []DisplayActor `json:"actors,omitempty"`
	TotalResults int            `json:"total_results,omitempty"`
}

// ChatResults carries the normalized result set attached to a finished turn.
type ChatResults struct {
	SessionID    string         `json:"session_id"`
	TurnID       string         `json:"turn_id"`
	Items        []DisplayItem  `json:"items"`
	Actors       []DisplayActor `json:"actors,omitempty"`
	TotalResults int            `json:"total_results"`
}

type SessionResponse struct {
	SessionID string    `json:"session_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	TurnCount int       `json:"turn_count"`
}
