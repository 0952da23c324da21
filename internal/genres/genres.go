// Package genres maps TMDB genre ids to display labels. A built-in table
// covers the standard movie and TV genres so lookups work before (or
// without) a refresh from the backend.
package genres

import "sync"

// UnknownGenre is returned for ids outside the catalog so result cards keep
// a label instead of dropping the entry.
const UnknownGenre = "Unknown"

var defaultGenres = map[int]string{
	// Movie genres
	28:    "Action",
	12:    "Adventure",
	16:    "Animation",
	35:    "Comedy",
	80:    "Crime",
	99:    "Documentary",
	18:    "Drama",
	10751: "Family",
	14:    "Fantasy",
	36:    "History",
	27:    "Horror",
	10402: "Music",
	9648:  "Mystery",
	10749: "Romance",
	878:   "Science Fiction",
	10770: "TV Movie",
	53:    "Thriller",
	10752: "War",
	37:    "Western",
	// TV genres
	10759: "Action & Adventure",
	10762: "Kids",
	10763: "News",
	10764: "Reality",
	10765: "Sci-Fi & Fantasy",
	10766: "Soap",
	10767: "Talk",
	10768: "War & Politics",
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Catalog is a concurrency-safe id→name table.
type Catalog struct {
	mu    sync.RWMutex
	names map[int]string
}

func NewCatalog() *Catalog {
	names := make(map[int]string, len(defaultGenres))
	for id, name := range defaultGenres {
		names[id] = name
	}
	return &Catalog{names: names}
}

// Name returns the label for id, or UnknownGenre when the id is not in the
// catalog.
func (c *Catalog) Name(id int) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if name, ok := c.names[id]; ok {
		return name
	}
	return UnknownGenre
}

// Names resolves a list of ids, preserving order and length.
func (c *Catalog) Names(ids []int) []string {
	if len(ids) == 0 {
		return nil
	}
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = c.Name(id)
	}
	return names
}

// Merge adds or overwrites entries, typically from a backend genre lookup.
// Entries with empty names are ignored.
func (c *Catalog) Merge(genres []Genre) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, g := range genres {
		if g.Name == "" {
			continue
		}
		c.names[g.ID] = g.Name
	}
}

// All returns the catalog as a sorted-by-nothing slice; callers that need
// ordering sort on their side.
func (c *Catalog) All() []Genre {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Genre, 0, len(c.names))
	for id, name := range c.names {
		out = append(out, Genre{ID: id, Name: name})
	}
	return out
}
