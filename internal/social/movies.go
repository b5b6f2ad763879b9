package social

import (
	"context"
	"sync"

	"github.com/cinevibe/cinevibe/internal/api"
	"github.com/cinevibe/cinevibe/internal/feed"
)

// Movies is the read-only browse list, optionally narrowed to one media type.
type Movies struct {
	*feed.Controller[api.Movie, int64]

	mu    sync.Mutex
	media api.MediaType
}

func NewMovies(svc api.MovieReader, opts Options) *Movies {
	m := &Movies{}
	fetch := func(ctx context.Context, page, size int) (api.Page[api.Movie], error) {
		return svc.FetchMovies(ctx, m.Media(), page, size)
	}
	m.Controller = feed.NewController(fetch, func(mv api.Movie) int64 { return mv.ID }, opts.controllerOptions("movies")...)
	return m
}

func (m *Movies) Media() api.MediaType {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.media
}

// SetMedia changes the filter and reloads from the first page. An empty
// media type shows everything.
func (m *Movies) SetMedia(ctx context.Context, media api.MediaType) {
	m.mu.Lock()
	m.media = media
	m.mu.Unlock()
	m.Load(ctx, true)
}

// CycleMedia steps through all, movies only and series only.
func (m *Movies) CycleMedia(ctx context.Context) api.MediaType {
	next := api.MediaMovie
	switch m.Media() {
	case api.MediaMovie:
		next = api.MediaTV
	case api.MediaTV:
		next = ""
	}
	m.SetMedia(ctx, next)
	return next
}
