package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/iliyamo/cinepos/internal/model"
)

const (
	defaultTMDBBaseURL  = "https://api.themoviedb.org/3"
	defaultTMDBImageURL = "https://image.tmdb.org/t/p/w342"
	defaultTMDBLanguage = "es-MX"
	defaultTMDBLimit    = 12

	// defaultDurationMin is shown until the real runtime is fetched.
	defaultDurationMin = 100
)

// ErrTMDBUnauthorized is returned when neither a bearer token nor an API
// key is configured.
var ErrTMDBUnauthorized = errors.New("tmdb: no credentials configured")

// TMDBConfig configures the TMDB "now playing" source.
type TMDBConfig struct {
	BaseURL      string
	ImageBaseURL string
	Bearer       string
	APIKey       string
	Language     string
	Limit        int
}

// TMDBSource reads the films currently in theaters from TMDB.
type TMDBSource struct {
	cfg    TMDBConfig
	client *http.Client
}

// NewTMDBSource builds a source with defaults filled in.  client may be
// nil, in which case a client with a 10 second timeout is used.
func NewTMDBSource(cfg TMDBConfig, client *http.Client) *TMDBSource {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultTMDBBaseURL
	}
	if cfg.ImageBaseURL == "" {
		cfg.ImageBaseURL = defaultTMDBImageURL
	}
	if cfg.Language == "" {
		cfg.Language = defaultTMDBLanguage
	}
	if cfg.Limit <= 0 {
		cfg.Limit = defaultTMDBLimit
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &TMDBSource{cfg: cfg, client: client}
}

type tmdbMovie struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	Adult         bool    `json:"adult"`
	PosterPath    string  `json:"poster_path"`
	VoteAverage   float64 `json:"vote_average"`
	Runtime       int     `json:"runtime"`
}

type tmdbPage struct {
	Results []tmdbMovie `json:"results"`
}

// Films fetches page 1 of now_playing and maps the first results to films.
func (s *TMDBSource) Films(ctx context.Context) ([]model.Film, error) {
	var page tmdbPage
	if err := s.get(ctx, "/movie/now_playing", url.Values{"page": {"1"}}, &page); err != nil {
		return nil, err
	}
	n := len(page.Results)
	if n > s.cfg.Limit {
		n = s.cfg.Limit
	}
	films := make([]model.Film, 0, n)
	for _, m := range page.Results[:n] {
		films = append(films, s.toFilm(m))
	}
	return films, nil
}

// Runtime returns the running time in minutes of the TMDB movie id.
// A zero runtime means TMDB does not know it.
func (s *TMDBSource) Runtime(ctx context.Context, id string) (int, error) {
	if _, err := strconv.ParseInt(id, 10, 64); err != nil {
		return 0, fmt.Errorf("tmdb: film id %q is not numeric", id)
	}
	var m tmdbMovie
	if err := s.get(ctx, "/movie/"+id, nil, &m); err != nil {
		return 0, err
	}
	return m.Runtime, nil
}

func (s *TMDBSource) toFilm(m tmdbMovie) model.Film {
	title := m.Title
	if title == "" {
		title = m.OriginalTitle
	}
	rating := model.RatingB15
	if m.Adult {
		rating = model.RatingC
	}
	f := model.Film{
		ID:          strconv.FormatInt(m.ID, 10),
		Title:       title,
		Rating:      rating,
		DurationMin: defaultDurationMin,
	}
	if m.PosterPath != "" {
		f.PosterURL = s.cfg.ImageBaseURL + m.PosterPath
	}
	if m.VoteAverage > 0 {
		f.Score = strconv.FormatFloat(m.VoteAverage, 'f', 1, 64)
	}
	return f
}

func (s *TMDBSource) get(ctx context.Context, path string, q url.Values, out any) error {
	if s.cfg.Bearer == "" && s.cfg.APIKey == "" {
		return ErrTMDBUnauthorized
	}
	if q == nil {
		q = url.Values{}
	}
	q.Set("language", s.cfg.Language)
	if s.cfg.Bearer == "" {
		q.Set("api_key", s.cfg.APIKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.BaseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if s.cfg.Bearer != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.Bearer)
	}
	res, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("tmdb: %w", err)
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("tmdb: read body: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("tmdb: %s returned %d", path, res.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("tmdb: decode %s: %w", path, err)
	}
	return nil
}
