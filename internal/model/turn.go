package model

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one entry in a conversation. Creation order is carried by the
// turn's position in the session's append-only history (and by CreatedAt);
// IDs are opaque and carry no ordering. Text is mutable only while
// IsStreaming is true; Results and Actors are attached when the turn is
// finalized.
type Turn struct {
	ID          string         `json:"id"`
	SessionID   string         `json:"session_id"`
	Role        string         `json:"role"`
	Text        string         `json:"text"`
	CreatedAt   time.Time      `json:"created_at"`
	IsStreaming bool           `json:"is_streaming"`
	Results     []DisplayItem  `json:"results,omitempty"`
	Actors      []DisplayActor `json:"actors,omitempty"`
}

type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Turns     []Turn    `json:"turns"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
