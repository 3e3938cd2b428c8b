package catalog

import (
	"context"

	"github.com/iliyamo/cinepos/internal/model"
)

// defaultFilms is the built-in catalog used when no live source is
// configured or the live source fails.
var defaultFilms = []model.Film{
	{ID: "aa1", Title: "Exploradores del Bosque", Rating: model.RatingAA, DurationMin: 92},
	{ID: "aa2", Title: "Robotín y la Chispa", Rating: model.RatingAA, DurationMin: 88},
	{ID: "aa3", Title: "La Carrera Imposible", Rating: model.RatingAA, DurationMin: 95},
	{ID: "b151", Title: "Ciudad en Sombras", Rating: model.RatingB15, DurationMin: 112},
	{ID: "b152", Title: "Crónicas del Extremo", Rating: model.RatingB15, DurationMin: 104},
	{ID: "b153", Title: "El Efecto Marfil", Rating: model.RatingB15, DurationMin: 120},
	{ID: "c1", Title: "La Noche Más Larga", Rating: model.RatingC, DurationMin: 118},
	{ID: "c2", Title: "Silencio de Acero", Rating: model.RatingC, DurationMin: 101},
	{ID: "c3", Title: "Bajo Cero", Rating: model.RatingC, DurationMin: 110},
}

// DefaultFilms returns a copy of the built-in film list.
func DefaultFilms() []model.Film {
	out := make([]model.Film, len(defaultFilms))
	copy(out, defaultFilms)
	return out
}

// Source produces the list of films offered at the till.
type Source interface {
	Films(ctx context.Context) ([]model.Film, error)
}

// StaticSource serves the built-in film list.
type StaticSource struct{}

// Films returns DefaultFilms.  It never fails.
func (StaticSource) Films(context.Context) ([]model.Film, error) {
	return DefaultFilms(), nil
}

// FilterByRating keeps the films of the given rating.  When a live
// list carries no AA titles, the built-in AA films are offered instead
// so the children's rooms are never empty.
func FilterByRating(films []model.Film, rating model.Rating, live bool) []model.Film {
	out := make([]model.Film, 0, len(films))
	for _, f := range films {
		if f.Rating == rating {
			out = append(out, f)
		}
	}
	if len(out) == 0 && live && rating == model.RatingAA {
		return FilterByRating(DefaultFilms(), model.RatingAA, false)
	}
	return out
}
