package catalog

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/cinepos/internal/model"
)

// ErrUnknownFilm is returned when a film id is not in the current list.
var ErrUnknownFilm = errors.New("unknown film")

// RuntimeFetcher looks up the running time of a film by id.
type RuntimeFetcher interface {
	Runtime(ctx context.Context, id string) (int, error)
}

// Catalog holds the film list currently offered at the till.  The list
// comes from a Source; when the source fails the built-in films are used.
type Catalog struct {
	source  Source
	runtime RuntimeFetcher
	timeout time.Duration
	logger  *zap.Logger

	mu         sync.RWMutex
	films      []model.Film
	live       bool
	backfilled map[string]bool
}

// Options configures a Catalog.  Zero values select the static list,
// no runtime backfill, a 10 second fetch timeout and a no-op logger.
type Options struct {
	Source  Source
	Runtime RuntimeFetcher
	Timeout time.Duration
	Logger  *zap.Logger
}

// New returns a catalog preloaded with the built-in films.  Call Refresh
// to load the configured source.
func New(opts Options) *Catalog {
	if opts.Source == nil {
		opts.Source = StaticSource{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Catalog{
		source:     opts.Source,
		runtime:    opts.Runtime,
		timeout:    opts.Timeout,
		logger:     opts.Logger,
		films:      DefaultFilms(),
		backfilled: map[string]bool{},
	}
}

// Refresh reloads the film list from the source.  On failure, or when the
// source returns nothing, the built-in films are installed and the source
// error (if any) is returned.
func (c *Catalog) Refresh(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	films, err := c.source.Films(ctx)
	_, static := c.source.(StaticSource)
	live := err == nil && len(films) > 0 && !static
	if !live {
		if err != nil {
			c.logger.Warn("catalog: source failed, using built-in films", zap.Error(err))
		}
		films = DefaultFilms()
	}

	c.mu.Lock()
	c.films = films
	c.live = live
	c.backfilled = map[string]bool{}
	c.mu.Unlock()

	c.logger.Info("catalog: loaded", zap.Int("films", len(films)), zap.Bool("live", live))
	return err
}

// Live reports whether the current list came from a live source.
func (c *Catalog) Live() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.live
}

// Films returns a copy of the current list.
func (c *Catalog) Films() []model.Film {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Film, len(c.films))
	copy(out, c.films)
	return out
}

// FilmsByRating returns the films of the given rating.  A live list
// without AA films falls back to the built-in AA films.
func (c *Catalog) FilmsByRating(r model.Rating) []model.Film {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return FilterByRating(c.films, r, c.live)
}

// Film looks up a film by id in the current list, then among the
// built-in films offered through the AA fallback.
func (c *Catalog) Film(id string) (model.Film, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, f := range c.films {
		if f.ID == id {
			return f, nil
		}
	}
	if c.live {
		for _, f := range FilterByRating(c.films, model.RatingAA, true) {
			if f.ID == id {
				return f, nil
			}
		}
	}
	return model.Film{}, ErrUnknownFilm
}

// FilmDetail returns the film and, for numeric ids of a live list, fills
// in its real running time the first time it is asked for.  Backfill
// failures are logged and the film is returned as is.
func (c *Catalog) FilmDetail(ctx context.Context, id string) (model.Film, error) {
	f, err := c.Film(id)
	if err != nil {
		return f, err
	}
	if c.runtime == nil || !c.needsBackfill(id) {
		return f, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	mins, err := c.runtime.Runtime(ctx, id)
	if err != nil {
		c.logger.Warn("catalog: runtime lookup failed", zap.String("film_id", id), zap.Error(err))
		return f, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.backfilled[id] = true
	for i := range c.films {
		if c.films[i].ID == id {
			if mins > 0 {
				c.films[i].DurationMin = mins
			}
			return c.films[i], nil
		}
	}
	return f, nil
}

func (c *Catalog) needsBackfill(id string) bool {
	if _, err := strconv.ParseInt(id, 10, 64); err != nil {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.live && !c.backfilled[id]
}

// Reload drops any cached copy held by the source and refreshes.
func (c *Catalog) Reload(ctx context.Context) error {
	if inv, ok := c.source.(interface{ Invalidate(context.Context) error }); ok {
		if err := inv.Invalidate(ctx); err != nil {
			c.logger.Warn("catalog: cache invalidation failed", zap.Error(err))
		}
	}
	return c.Refresh(ctx)
}
