package model

// RoomKey identifies one of the screening room types sold at the till.
type RoomKey string

const (
	RoomChild    RoomKey = "infantil" // children's room
	RoomStandard RoomKey = "estandar" // standard room
	Room3D       RoomKey = "3d"       // 3D room
)

// Room describes a screening room type.  Its seating grid and unit
// price are fixed for the whole session.
//
// Fields:
//
//	Key        – room identifier used by the till.
//	Name       – display name printed on tickets.
//	Rows       – number of seat rows (A, B, C, ...).
//	Cols       – seats per row, numbered from 1.
//	PriceCents – unit ticket price in cents.
type Room struct {
	Key        RoomKey `json:"key"`
	Name       string  `json:"name"`
	Rows       int     `json:"rows"`
	Cols       int     `json:"cols"`
	PriceCents int64   `json:"price_cents"`
}

// Capacity returns the total number of seats in the room.
func (r Room) Capacity() int {
	return r.Rows * r.Cols
}
