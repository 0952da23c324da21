package model

type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message" binding:"required"`
}

type MoodChatRequest struct {
	SessionID            string `json:"session_id"`
	Mood                 string `json:"mood"`
	EnergyLevel          int    `json:"energy_level"`
	TimeAvailableMinutes int    `json:"time_available_minutes"`
}

type CreateSessionRequest struct {
	Title string `json:"title"`
}

// RecommendationQuery is the canonical backend request built from free text.
type RecommendationQuery struct {
	Query     string                 `json:"query"`
	MediaType string                 `json:"media_type"`
	Filters   map[string]interface{} `json:"filters,omitempty"`
	Limit     int                    `json:"limit"`
}

// MoodQuery is the canonical backend request built from the structured
// mood/energy/time tuple. Query carries the phrased form of the same tuple.
type MoodQuery struct {
	Mood                 string `json:"mood"`
	Query                string `json:"query"`
	EnergyLevel          int    `json:"energy_level"`
	TimeAvailableMinutes int    `json:"time_available_minutes,omitempty"`
	MediaType            string `json:"media_type"`
	Limit                int    `json:"limit"`
}
