// Package calendar projects attendance history onto a month grid for
// client rendering. The grid is Monday-first: leading blank cells pad the
// first week so day 1 lands in its weekday column.
package calendar

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for session dates.
const DateLayout = "2006-01-02"

// Cell is one slot in a month grid. Day 0 marks a leading blank.
type Cell struct {
	Day      int    `json:"day"`
	Date     string `json:"date,omitempty"`
	Attended bool   `json:"attended"`
}

type MonthGrid struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Cells []Cell `json:"cells"`
}

// Grid builds the month grid for (year, month), marking each date attended
// iff it appears in the attended list. Dates outside the month are ignored.
func Grid(year int, month time.Month, attended []string) MonthGrid {
	set := make(map[string]struct{}, len(attended))
	for _, d := range attended {
		set[d] = struct{}{}
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()

	// Monday-first column offset: Monday=0 .. Sunday=6.
	offset := (int(first.Weekday()) + 6) % 7

	cells := make([]Cell, 0, offset+daysInMonth)
	for i := 0; i < offset; i++ {
		cells = append(cells, Cell{})
	}
	for day := 1; day <= daysInMonth; day++ {
		date := fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
		_, ok := set[date]
		cells = append(cells, Cell{Day: day, Date: date, Attended: ok})
	}

	return MonthGrid{Year: year, Month: int(month), Cells: cells}
}
