// Package images builds full image URLs from the opaque path fragments the
// provider returns. The core only ever hands over (path, size class).
package images

import "strings"

const (
	SizeProfile     = "w185"
	SizePosterLarge = "w500"
	SizeOriginal    = "original"
)

type Builder struct {
	baseURL      string
	posterSize   string
	backdropSize string
}

func NewBuilder(baseURL, posterSize, backdropSize string) *Builder {
	if posterSize == "" {
		posterSize = SizePosterLarge
	}
	if backdropSize == "" {
		backdropSize = SizeOriginal
	}
	return &Builder{
		baseURL:      strings.TrimRight(baseURL, "/"),
		posterSize:   posterSize,
		backdropSize: backdropSize,
	}
}

// URL builds <base>/<size><path>. Provider paths carry a leading slash;
// one is added when missing. An empty path yields an empty URL.
func (b *Builder) URL(path, size string) string {
	if path == "" {
		return ""
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return b.baseURL + "/" + size + path
}

func (b *Builder) PosterURL(path string) string {
	return b.URL(path, b.posterSize)
}

func (b *Builder) BackdropURL(path string) string {
	return b.URL(path, b.backdropSize)
}

// ProfileURL uses the provider's person image size class, which is narrower
// than any poster size.
func (b *Builder) ProfileURL(path string) string {
	return b.URL(path, SizeProfile)
}
