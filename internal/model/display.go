package model

const (
	KindMovie = "movie"
	KindShow  = "show"
)

// RatingUnavailable is rendered when the provider sent no vote average.
// Never "0.0": that would imply a real zero score.
const RatingUnavailable = "N/A"

const TitleUnknown = "Unknown"

// DisplayItem is a normalized movie or show recommendation, ready for a
// result card. IDs are unique within one result set only.
type DisplayItem struct {
	ID           int      `json:"id"`
	Kind         string   `json:"kind"`
	Title        string   `json:"title"`
	Overview     string   `json:"overview,omitempty"`
	Rating       string   `json:"rating"`
	Year         int      `json:"year,omitempty"`
	GenreIDs     []int    `json:"genre_ids,omitempty"`
	GenreNames   []string `json:"genre_names,omitempty"`
	PosterPath   string   `json:"poster_path,omitempty"`
	BackdropPath string   `json:"backdrop_path,omitempty"`
	PosterURL    string   `json:"poster_url,omitempty"`
	BackdropURL  string   `json:"backdrop_url,omitempty"`
	Reasons      []string `json:"reasons,omitempty"`
	Explanation  string   `json:"explanation,omitempty"`
}

// DisplayActor is a normalized person result, structurally parallel to
// DisplayItem.
type DisplayActor struct {
	ID          int           `json:"id"`
	Name        string        `json:"name"`
	ProfilePath string        `json:"profile_path,omitempty"`
	ProfileURL  string        `json:"profile_url,omitempty"`
	Character   string        `json:"character,omitempty"`
	Department  string        `json:"department,omitempty"`
	Biography   string        `json:"biography,omitempty"`
	Popularity  float64       `json:"popularity,omitempty"`
	KnownFor    []DisplayItem `json:"known_for,omitempty"`
}
