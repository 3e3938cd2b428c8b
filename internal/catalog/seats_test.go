package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinepos/internal/model"
)

func TestRowLabel(t *testing.T) {
	cases := map[int]string{0: "A", 2: "C", 25: "Z", 26: "AA", 27: "AB", 51: "AZ", 52: "BA", -1: ""}
	for in, want := range cases {
		assert.Equal(t, want, RowLabel(in), "row %d", in)
	}
}

func TestRowIndexRoundTrip(t *testing.T) {
	for i := 0; i < 800; i++ {
		got, ok := rowIndex(RowLabel(i))
		require.True(t, ok)
		require.Equal(t, i, got)
	}
}

func TestSeatIDsCoverGrid(t *testing.T) {
	for _, room := range Rooms() {
		ids := SeatIDs(room)
		assert.Len(t, ids, room.Capacity())

		seen := map[string]bool{}
		for _, id := range ids {
			assert.False(t, seen[id], "duplicate seat %s", id)
			seen[id] = true
			assert.True(t, SeatInRoom(room, id), "seat %s outside %s", id, room.Key)
		}
	}

	child, err := Room(model.RoomChild)
	require.NoError(t, err)
	ids := SeatIDs(child)
	assert.Equal(t, "A1", ids[0])
	assert.Equal(t, "A8", ids[7])
	assert.Equal(t, "B1", ids[8])
	assert.Equal(t, "E8", ids[len(ids)-1])
}

func TestSeatInRoom(t *testing.T) {
	std, err := Room(model.RoomStandard) // 6 rows x 10 cols
	require.NoError(t, err)

	valid := []string{"A1", "C7", "F10"}
	for _, id := range valid {
		assert.True(t, SeatInRoom(std, id), id)
	}
	invalid := []string{"", "A", "7", "A0", "A01", "A11", "G1", "a1", "A-1", "1A", "A1x"}
	for _, id := range invalid {
		assert.False(t, SeatInRoom(std, id), id)
	}
}

func TestRooms(t *testing.T) {
	rooms := Rooms()
	require.Len(t, rooms, 3)
	assert.Equal(t, model.RoomChild, rooms[0].Key)
	assert.Equal(t, int64(2050), rooms[0].PriceCents)
	assert.Equal(t, 40, rooms[0].Capacity())
	assert.Equal(t, 60, rooms[1].Capacity())
	assert.Equal(t, 96, rooms[2].Capacity())

	_, err := Room("imax")
	assert.ErrorIs(t, err, ErrUnknownRoom)
}
