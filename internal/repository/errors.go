// Package repository holds the till's in-memory stores: seat occupancy per
// (room, film) and the ledger of sales recorded during the session.  The
// sentinel values below let the service and handler layers tell the
// failure scenarios apart with errors.Is.
package repository

import (
	"errors"
	"fmt"

	"github.com/iliyamo/cinepos/internal/model"
)

// ErrInvalidSeat is returned when a seat id does not belong to the room.
var ErrInvalidSeat = errors.New("invalid seat")

// ErrDuplicateSeat is returned when a request names the same seat twice.
var ErrDuplicateSeat = errors.New("duplicate seat in request")

// ErrSeatConflict is returned when a seat is already occupied.  Handlers
// should translate it into an HTTP 409 response.
var ErrSeatConflict = errors.New("seat already occupied")

// ErrNotFound is returned when a receipt folio is not in the ledger.
var ErrNotFound = errors.New("not found")

// SeatConflictError names the first occupied seat that blocked a booking.
// It matches ErrSeatConflict.
type SeatConflictError struct {
	RoomKey model.RoomKey
	FilmID  string
	Seat    string
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("seat %s already occupied in %s for film %s", e.Seat, e.RoomKey, e.FilmID)
}

func (e *SeatConflictError) Is(target error) bool { return target == ErrSeatConflict }
