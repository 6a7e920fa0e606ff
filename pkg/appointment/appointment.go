package appointment

import (
	"fmt"
	"time"
)

// DateLayout is the ISO date format used on the wire and in calendar cells.
const DateLayout = "2006-01-02"

type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
)

// ParseStatus maps stored status values onto the two supported states.
// Values written by older tooling ("confirmed", "completed") count as active.
func ParseStatus(s string) Status {
	if Status(s) == StatusCancelled {
		return StatusCancelled
	}
	return StatusActive
}

type Appointment struct {
	Id        int64
	UserId    *int64
	UserName  string
	ServiceId string
	// Date carries date-only semantics; it is always midnight UTC.
	Date      time.Time
	TimeSlot  string
	Price     float64
	Status    Status
	CreatedAt time.Time
}

func (a Appointment) IsCancelled() bool {
	return a.Status == StatusCancelled
}

// ParseDate parses an ISO YYYY-MM-DD date into midnight UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

// DateOf truncates t to its calendar date in t's own location, returned as midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
