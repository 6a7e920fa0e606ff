package calendar

import (
	"time"

	"github.com/salonbook/admin-panel/pkg/appointment"
)

// WeekdayHeaders are the grid column titles, week starting on Sunday.
var WeekdayHeaders = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// DateSet is a set of calendar dates keyed by their YYYY-MM-DD form.
type DateSet map[string]struct{}

func NewDateSet(dates ...time.Time) DateSet {
	set := make(DateSet, len(dates))
	for _, d := range dates {
		set.Add(d)
	}
	return set
}

func (s DateSet) Add(date time.Time) {
	s[appointment.FormatDate(date)] = struct{}{}
}

func (s DateSet) Has(date time.Time) bool {
	_, ok := s[appointment.FormatDate(date)]
	return ok
}

type Cell struct {
	// Blank cells pad the first week up to the weekday of day 1.
	Blank    bool
	Day      int
	Date     time.Time
	ISO      string
	Booked   bool
	Selected bool
	Today    bool
}

type Grid struct {
	Month   appointment.YearMonth
	Headers []string
	Cells   []Cell
}

// BuildGrid lays out a month: leading blanks for the weekday of day 1 (Sunday = 0),
// then one cell per day. It has no side effects.
func BuildGrid(month appointment.YearMonth, booked DateSet, selected *time.Time, today time.Time) Grid {
	first := month.FirstDay()
	leading := int(first.Weekday())
	days := month.DaysInMonth()

	headers := make([]string, len(WeekdayHeaders))
	copy(headers, WeekdayHeaders)

	grid := Grid{
		Month:   month,
		Headers: headers,
		Cells:   make([]Cell, 0, leading+days),
	}
	for i := 0; i < leading; i++ {
		grid.Cells = append(grid.Cells, Cell{Blank: true})
	}

	todayISO := appointment.FormatDate(today)
	selectedISO := ""
	if selected != nil {
		selectedISO = appointment.FormatDate(*selected)
	}

	for day := 1; day <= days; day++ {
		date := first.AddDate(0, 0, day-1)
		iso := appointment.FormatDate(date)
		grid.Cells = append(grid.Cells, Cell{
			Day:      day,
			Date:     date,
			ISO:      iso,
			Booked:   booked.Has(date),
			Selected: iso == selectedISO,
			Today:    iso == todayISO,
		})
	}
	return grid
}

// Weeks splits the cells into rows of seven, padding the last row with blanks.
func (g Grid) Weeks() [][]Cell {
	weeks := make([][]Cell, 0, 6)
	for start := 0; start < len(g.Cells); start += 7 {
		end := min(start+7, len(g.Cells))
		week := make([]Cell, 7)
		copy(week, g.Cells[start:end])
		for i := end - start; i < 7; i++ {
			week[i] = Cell{Blank: true}
		}
		weeks = append(weeks, week)
	}
	return weeks
}

// BookedCount returns how many days of the grid carry a booking indicator.
func (g Grid) BookedCount() int {
	n := 0
	for _, c := range g.Cells {
		if c.Booked {
			n++
		}
	}
	return n
}
