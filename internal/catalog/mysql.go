package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/cinepos/internal/model"
)

// MySQLSource reads the film list from the films table:
//
//	CREATE TABLE films (
//	  id           VARCHAR(32) PRIMARY KEY,
//	  title        VARCHAR(255) NOT NULL,
//	  rating       ENUM('AA','B15','C') NOT NULL,
//	  duration_min INT NULL,
//	  poster_url   VARCHAR(512) NULL,
//	  score        VARCHAR(8) NULL,
//	  active       TINYINT(1) NOT NULL DEFAULT 1
//	);
type MySQLSource struct {
	DB *sql.DB
}

// NewMySQLSource returns a source backed by db.
func NewMySQLSource(db *sql.DB) *MySQLSource { return &MySQLSource{DB: db} }

const listFilmsSQL = `SELECT id, title, rating, duration_min, poster_url, score
  FROM films
 WHERE active = 1
 ORDER BY FIELD(rating,'AA','B15','C'), title`

// Films returns the active films.  Rows with an unknown rating are an error.
func (s *MySQLSource) Films(ctx context.Context) ([]model.Film, error) {
	rows, err := s.DB.QueryContext(ctx, listFilmsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Film
	for rows.Next() {
		var (
			r        filmRow
			duration sql.NullInt64
			poster   sql.NullString
			score    sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Title, &r.Rating, &duration, &poster, &score); err != nil {
			return nil, err
		}
		r.DurationMin = int(duration.Int64)
		r.PosterURL = poster.String
		r.Score = score.String
		f, err := r.film()
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// filmRow is one scanned films row with NULLs already collapsed.
type filmRow struct {
	ID          string
	Title       string
	Rating      string
	DurationMin int
	PosterURL   string
	Score       string
}

func (r filmRow) film() (model.Film, error) {
	rating := model.Rating(r.Rating)
	if !rating.Valid() {
		return model.Film{}, fmt.Errorf("films row %s: invalid rating %q", r.ID, r.Rating)
	}
	return model.Film{
		ID:          r.ID,
		Title:       r.Title,
		Rating:      rating,
		DurationMin: r.DurationMin,
		PosterURL:   r.PosterURL,
		Score:       r.Score,
	}, nil
}
