package recommender

import (
	"encoding/json"

	"reelchat-backend/internal/genres"
)

// Entry is one ranked recommendation. Content is kept raw so one malformed
// entry can be skipped without failing the whole batch.
type Entry struct {
	Content        json.RawMessage `json:"content"`
	RelevanceScore float64         `json:"relevance_score"`
	Explanation    string          `json:"explanation"`
	MoodMatch      *float64        `json:"mood_match,omitempty"`
	Reasons        []string        `json:"reasons"`
}

// Envelope is the backend's response to any recommendation request.
type Envelope struct {
	Query           string  `json:"query"`
	TotalResults    int     `json:"total_results"`
	Page            int     `json:"page"`
	TotalPages      int     `json:"total_pages"`
	Recommendations []Entry `json:"recommendations"`
	Explanation     string  `json:"explanation,omitempty"`
}

// GenreSet is the backend's combined genre lookup.
type GenreSet struct {
	MovieGenres []genres.Genre `json:"movie_genres"`
	TVGenres    []genres.Genre `json:"tv_genres"`
}
