package repository

import (
	"fmt"
	"sort"
	"sync"

	"github.com/iliyamo/cinepos/internal/catalog"
	"github.com/iliyamo/cinepos/internal/model"
)

// showKey identifies one screening: a film in a room.
type showKey struct {
	room model.RoomKey
	film string
}

// OccupancyRepo tracks the seats sold per (room, film).  Seats only ever
// enter a set; the whole store is cleared by Reset at the end of the day.
// A single RWMutex guards every set so readers never see half a booking.
type OccupancyRepo struct {
	mu    sync.RWMutex
	taken map[showKey]map[string]struct{}
}

// NewOccupancyRepo returns an empty store.
func NewOccupancyRepo() *OccupancyRepo {
	return &OccupancyRepo{taken: map[showKey]map[string]struct{}{}}
}

// BookSeats marks seats as occupied for the film in the room.  Either all
// seats are booked or none is.  Errors:
//
//	catalog.ErrUnknownRoom – roomKey is not a room.
//	ErrInvalidSeat         – a seat is outside the room grid.
//	ErrDuplicateSeat       – a seat appears twice in the request.
//	*SeatConflictError     – a seat is already occupied (matches ErrSeatConflict).
func (r *OccupancyRepo) BookSeats(roomKey model.RoomKey, filmID string, seats []string) error {
	room, err := catalog.Room(roomKey)
	if err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(seats))
	for _, s := range seats {
		if !catalog.SeatInRoom(room, s) {
			return fmt.Errorf("%w: %q in %s", ErrInvalidSeat, s, roomKey)
		}
		if _, dup := seen[s]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateSeat, s)
		}
		seen[s] = struct{}{}
	}

	key := showKey{room: roomKey, film: filmID}
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.taken[key]
	for _, s := range seats {
		if _, ok := set[s]; ok {
			return &SeatConflictError{RoomKey: roomKey, FilmID: filmID, Seat: s}
		}
	}
	if set == nil {
		set = make(map[string]struct{}, len(seats))
		r.taken[key] = set
	}
	for _, s := range seats {
		set[s] = struct{}{}
	}
	return nil
}

// Occupied returns the occupied seats of the screening, sorted by row then
// column.  The slice is a copy and is empty, not nil, when nothing is sold.
func (r *OccupancyRepo) Occupied(roomKey model.RoomKey, filmID string) []string {
	r.mu.RLock()
	set := r.taken[showKey{room: roomKey, film: filmID}]
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	r.mu.RUnlock()

	SortSeats(out)
	return out
}

// IsOccupied reports whether seat is sold for the screening.
func (r *OccupancyRepo) IsOccupied(roomKey model.RoomKey, filmID, seat string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.taken[showKey{room: roomKey, film: filmID}][seat]
	return ok
}

// Available returns the number of unsold seats for the screening, or 0 for
// an unknown room.
func (r *OccupancyRepo) Available(roomKey model.RoomKey, filmID string) int {
	room, err := catalog.Room(roomKey)
	if err != nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return room.Capacity() - len(r.taken[showKey{room: roomKey, film: filmID}])
}

// HasCapacity reports whether n more seats can be sold for the screening.
func (r *OccupancyRepo) HasCapacity(roomKey model.RoomKey, filmID string, n int) bool {
	return n >= 0 && r.Available(roomKey, filmID) >= n
}

// Reset clears every screening.
func (r *OccupancyRepo) Reset() {
	r.mu.Lock()
	r.taken = map[showKey]map[string]struct{}{}
	r.mu.Unlock()
}

// SortSeats orders seat ids by row then column (A2 before A10 before B1).
// Ids that do not parse sort last, lexically.
func SortSeats(seats []string) {
	sort.Slice(seats, func(i, j int) bool {
		ri, ci, oki := catalog.ParseSeat(seats[i])
		rj, cj, okj := catalog.ParseSeat(seats[j])
		switch {
		case oki && okj:
			if ri != rj {
				return ri < rj
			}
			return ci < cj
		case oki != okj:
			return oki
		}
		return seats[i] < seats[j]
	})
}
