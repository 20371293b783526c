package model

import "strconv"

// Every coach on every departure has the same fixed grid of seats.
const (
	SeatRows    = 5
	SeatColumns = 4
)

// Seat is a position in the coach grid.  Row and Column are 1-based.
type Seat struct {
	Row    int
	Column int
}

// InGrid reports whether the seat lies inside the SeatRows x SeatColumns grid.
func (s Seat) InGrid() bool {
	return s.Row >= 1 && s.Row <= SeatRows && s.Column >= 1 && s.Column <= SeatColumns
}

// Label renders the seat as column letter followed by row, e.g. "B3".
func (s Seat) Label() string {
	if s.Column < 1 || s.Column > 26 {
		return strconv.Itoa(s.Column) + "-" + strconv.Itoa(s.Row)
	}
	return string(rune('A'+s.Column-1)) + strconv.Itoa(s.Row)
}
