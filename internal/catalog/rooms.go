// Package catalog holds the static reference data sold at the till
// (rooms, rating classes, the default film list) and the film sources
// that can replace the default list at runtime.
package catalog

import (
	"errors"

	"github.com/iliyamo/cinepos/internal/model"
)

// ErrUnknownRoom is returned when a room key is not part of the catalog.
var ErrUnknownRoom = errors.New("unknown room")

// rooms is the fixed room table.  Prices are in cents.
var rooms = map[model.RoomKey]model.Room{
	model.RoomChild:    {Key: model.RoomChild, Name: "Sala Infantil", Rows: 5, Cols: 8, PriceCents: 2050},
	model.RoomStandard: {Key: model.RoomStandard, Name: "Sala Estándar", Rows: 6, Cols: 10, PriceCents: 4500},
	model.Room3D:       {Key: model.Room3D, Name: "Sala 3D", Rows: 8, Cols: 12, PriceCents: 8500},
}

// roomOrder is the display order used by the till.
var roomOrder = []model.RoomKey{model.RoomChild, model.RoomStandard, model.Room3D}

// Room returns the room registered under key.
func Room(key model.RoomKey) (model.Room, error) {
	r, ok := rooms[key]
	if !ok {
		return model.Room{}, ErrUnknownRoom
	}
	return r, nil
}

// Rooms returns every room in display order.
func Rooms() []model.Room {
	out := make([]model.Room, 0, len(roomOrder))
	for _, k := range roomOrder {
		out = append(out, rooms[k])
	}
	return out
}
