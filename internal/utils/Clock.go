package utils

import "time"

type Clock interface {
	Now() time.Time
}

// SystemClock reads the host clock in the host's local time zone.
type SystemClock struct{}

func (s SystemClock) Now() time.Time {
	return time.Now()
}

type MockClock struct {
	FixedNow time.Time
}

func (m *MockClock) Now() time.Time {
	return m.FixedNow
}

func (m *MockClock) SetNow(now time.Time) {
	m.FixedNow = now
}

func (m *MockClock) AdvanceDays(days int) {
	m.FixedNow = m.FixedNow.AddDate(0, 0, days)
}

// Today returns the clock's current calendar date as midnight UTC.
func Today(c Clock) time.Time {
	y, m, d := c.Now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
