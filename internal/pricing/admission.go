// Package pricing holds the pure rules applied at the till: the age gate
// per rating class, ticket charges and cash change.
package pricing

import (
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/cinepos/internal/model"
)

// ErrInvalidBirthDate is returned when a birth date is not YYYY-MM-DD.
var ErrInvalidBirthDate = errors.New("invalid birth date")

// Minimum ages per rating class.
const (
	MinAgeB15 = 15
	MinAgeC   = 18
)

// IsAdmitted reports whether a customer of the given age may watch a film
// of rating r.  Unknown ratings never admit.
func IsAdmitted(age int, r model.Rating) bool {
	switch r {
	case model.RatingAA:
		return true
	case model.RatingB15:
		return age >= MinAgeB15
	case model.RatingC:
		return age >= MinAgeC
	}
	return false
}

// AgeOn returns the age in whole years on date now of someone born on
// birth.  It is negative for birth dates after now.
func AgeOn(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}

// AgeFromBirthDate parses s (YYYY-MM-DD) and returns the age on now.  An
// empty string means the age is unknown and yields nil without error.
func AgeFromBirthDate(s string, now time.Time) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	birth, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, ErrInvalidBirthDate
	}
	age := AgeOn(birth, now)
	return &age, nil
}
