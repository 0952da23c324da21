package service

import (
	"encoding/json"
	"fmt"
	"strconv"

	"reelchat-backend/internal/genres"
	"reelchat-backend/internal/images"
	"reelchat-backend/internal/model"
	"reelchat-backend/internal/recommender"
	"reelchat-backend/pkg/logger"
)

// rawContent covers every field shape the provider sends across movie, show
// and person entries. All fields are optional; the normalizer resolves them.
type rawContent struct {
	ID           *int            `json:"id"`
	MediaType    string          `json:"media_type"`
	Title        string          `json:"title"`
	Name         string          `json:"name"`
	Overview     string          `json:"overview"`
	ReleaseDate  string          `json:"release_date"`
	FirstAirDate string          `json:"first_air_date"`
	VoteAverage  *float64        `json:"vote_average"`
	GenreIDs     []int           `json:"genre_ids"`
	Genres       []genres.Genre  `json:"genres"`
	PosterPath   string          `json:"poster_path"`
	BackdropPath string          `json:"backdrop_path"`
	ProfilePath  string          `json:"profile_path"`
	Popularity   float64         `json:"popularity"`
	Character    string          `json:"character"`
	Department   string          `json:"known_for_department"`
	Biography    string          `json:"biography"`
	KnownFor     json.RawMessage `json:"known_for"`
}

// Normalizer converts raw recommendation entries into display models. One
// malformed entry never fails the batch: it is skipped and the rest proceed.
type Normalizer struct {
	genres *genres.Catalog
	images *images.Builder
}

func NewNormalizer(catalog *genres.Catalog, builder *images.Builder) *Normalizer {
	return &Normalizer{
		genres: catalog,
		images: builder,
	}
}

// Normalize converts a result envelope's entries, preserving input order
// among the well-formed ones. Person entries come back as actors.
func (n *Normalizer) Normalize(entries []recommender.Entry) ([]model.DisplayItem, []model.DisplayActor) {
	items := make([]model.DisplayItem, 0, len(entries))
	var actors []model.DisplayActor

	for i, entry := range entries {
		raw, ok := decodeContent(entry.Content)
		if !ok {
			logger.Warnf("skipping malformed recommendation entry %d", i)
			continue
		}

		if raw.MediaType == "person" {
			actors = append(actors, n.actor(raw))
			continue
		}

		item := n.item(raw)
		item.Reasons = entry.Reasons
		item.Explanation = entry.Explanation
		items = append(items, item)
	}

	return items, actors
}

func decodeContent(content json.RawMessage) (rawContent, bool) {
	var raw rawContent
	if len(content) == 0 {
		return raw, false
	}
	if err := json.Unmarshal(content, &raw); err != nil {
		return raw, false
	}
	// Entries without a provider id cannot be rendered or looked up.
	if raw.ID == nil {
		return raw, false
	}
	return raw, true
}

func (n *Normalizer) item(raw rawContent) model.DisplayItem {
	kind := resolveKind(raw)

	item := model.DisplayItem{
		ID:           *raw.ID,
		Kind:         kind,
		Title:        resolveTitle(raw, kind),
		Overview:     raw.Overview,
		Rating:       formatRating(raw.VoteAverage),
		PosterPath:   raw.PosterPath,
		BackdropPath: raw.BackdropPath,
		PosterURL:    n.images.PosterURL(raw.PosterPath),
		BackdropURL:  n.images.BackdropURL(raw.BackdropPath),
	}

	if kind == model.KindShow {
		item.Year = yearOf(raw.FirstAirDate)
	} else {
		item.Year = yearOf(raw.ReleaseDate)
	}

	item.GenreIDs, item.GenreNames = n.resolveGenres(raw)

	return item
}

func (n *Normalizer) actor(raw rawContent) model.DisplayActor {
	actor := model.DisplayActor{
		ID:          *raw.ID,
		Name:        raw.Name,
		ProfilePath: raw.ProfilePath,
		ProfileURL:  n.images.ProfileURL(raw.ProfilePath),
		Character:   raw.Character,
		Department:  raw.Department,
		Biography:   raw.Biography,
		Popularity:  raw.Popularity,
	}
	if actor.Name == "" {
		actor.Name = model.TitleUnknown
	}

	// known_for is a nested list of movie/show entries; malformed members
	// are skipped like top-level ones.
	if len(raw.KnownFor) > 0 {
		var nested []json.RawMessage
		if err := json.Unmarshal(raw.KnownFor, &nested); err == nil {
			for _, member := range nested {
				if inner, ok := decodeContent(member); ok && inner.MediaType != "person" {
					actor.KnownFor = append(actor.KnownFor, n.item(inner))
				}
			}
		}
	}

	return actor
}

// resolveKind applies the discriminant priority: explicit type field first,
// then the show-specific date field, then movie.
func resolveKind(raw rawContent) string {
	switch raw.MediaType {
	case "tv":
		return model.KindShow
	case "movie":
		return model.KindMovie
	}
	if raw.FirstAirDate != "" {
		return model.KindShow
	}
	return model.KindMovie
}

func resolveTitle(raw rawContent, kind string) string {
	title := raw.Title
	name := raw.Name
	if kind == model.KindShow {
		title, name = name, title
	}
	if title != "" {
		return title
	}
	if name != "" {
		return name
	}
	return model.TitleUnknown
}

// formatRating renders a vote average to one decimal. A missing average is
// the N/A sentinel, never zero.
func formatRating(voteAverage *float64) string {
	if voteAverage == nil {
		return model.RatingUnavailable
	}
	return fmt.Sprintf("%.1f", *voteAverage)
}

func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

// resolveGenres prefers nested genre objects (they carry names), falling
// back to bare ids resolved through the catalog. Unknown ids keep their
// position with an Unknown label so result counts stay stable.
func (n *Normalizer) resolveGenres(raw rawContent) ([]int, []string) {
	if len(raw.Genres) > 0 {
		ids := make([]int, len(raw.Genres))
		names := make([]string, len(raw.Genres))
		for i, g := range raw.Genres {
			ids[i] = g.ID
			if g.Name != "" {
				names[i] = g.Name
			} else {
				names[i] = n.genres.Name(g.ID)
			}
		}
		return ids, names
	}

	if len(raw.GenreIDs) > 0 {
		return raw.GenreIDs, n.genres.Names(raw.GenreIDs)
	}

	return nil, nil
}
