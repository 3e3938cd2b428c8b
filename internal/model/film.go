package model

// Rating is a content classification controlling the minimum
// admission age for a film.
type Rating string

const (
	RatingAA  Rating = "AA"  // all audiences
	RatingB15 Rating = "B15" // 15 and over
	RatingC   Rating = "C"   // 18 and over
)

// Ratings lists every rating class in ascending order of minimum age.
var Ratings = []Rating{RatingAA, RatingB15, RatingC}

// Valid reports whether r is one of the known rating classes.
func (r Rating) Valid() bool {
	switch r {
	case RatingAA, RatingB15, RatingC:
		return true
	}
	return false
}

// Film is a title offered at the till.  Films come from the static
// catalog, a database table or the live TMDB feed; all sources produce
// this shape.  Optional fields use their zero value when unknown.
//
// Fields:
//
//	ID          – identifier, unique within its source.
//	Title       – display title.
//	Rating      – rating class used by the age gate.
//	DurationMin – running time in minutes (0 when unknown).
//	PosterURL   – poster image URL ("" when none).
//	Score       – audience score with one decimal ("" when none).
type Film struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Rating      Rating `json:"rating"`
	DurationMin int    `json:"duration_min,omitempty"`
	PosterURL   string `json:"poster_url,omitempty"`
	Score       string `json:"score,omitempty"`
}
