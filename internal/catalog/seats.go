package catalog

import (
	"strconv"
	"strings"

	"github.com/iliyamo/cinepos/internal/model"
)

// RowLabel converts a zero-based row index to its letter label:
// 0 -> A, 25 -> Z, 26 -> AA.
func RowLabel(i int) string {
	if i < 0 {
		return ""
	}
	res := []rune{}
	for {
		res = append(res, rune('A'+i%26))
		i = i/26 - 1
		if i < 0 {
			break
		}
	}
	for j, k := 0, len(res)-1; j < k; j, k = j+1, k-1 {
		res[j], res[k] = res[k], res[j]
	}
	return string(res)
}

// rowIndex is the inverse of RowLabel.
func rowIndex(label string) (int, bool) {
	if label == "" {
		return -1, false
	}
	n := 0
	for i := 0; i < len(label); i++ {
		ch := label[i]
		if ch < 'A' || ch > 'Z' {
			return -1, false
		}
		n = n*26 + int(ch-'A'+1)
	}
	return n - 1, true
}

// SeatID builds the identifier of the seat at row index row and
// 1-based column col, e.g. SeatID(2, 7) == "C7".
func SeatID(row, col int) string {
	return RowLabel(row) + strconv.Itoa(col)
}

// SeatIDs lists every seat of the room row by row, left to right.
func SeatIDs(room model.Room) []string {
	out := make([]string, 0, room.Capacity())
	for r := 0; r < room.Rows; r++ {
		for c := 1; c <= room.Cols; c++ {
			out = append(out, SeatID(r, c))
		}
	}
	return out
}

// ParseSeat splits a seat id into its zero-based row index and 1-based
// column.  It rejects ids that are not a row label followed by a
// positive number without leading zeros.
func ParseSeat(id string) (row, col int, ok bool) {
	i := strings.IndexFunc(id, func(r rune) bool { return r >= '0' && r <= '9' })
	if i <= 0 || id[i] == '0' {
		return 0, 0, false
	}
	row, ok = rowIndex(id[:i])
	if !ok {
		return 0, 0, false
	}
	col, err := strconv.Atoi(id[i:])
	if err != nil || col < 1 {
		return 0, 0, false
	}
	return row, col, true
}

// SeatInRoom reports whether id names a seat inside the room's grid.
func SeatInRoom(room model.Room, id string) bool {
	row, col, ok := ParseSeat(id)
	return ok && row < room.Rows && col <= room.Cols
}
