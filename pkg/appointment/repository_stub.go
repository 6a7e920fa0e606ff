package appointment

import (
	"context"
	"sort"
	"sync"
	"time"
)

type RepositoryStub struct {
	mu     sync.RWMutex
	items  map[int64]Appointment
	nextId int64
	// Err, when set, is returned by every call.
	Err error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		items:  make(map[int64]Appointment),
		nextId: 1,
	}
}

// Add stores a copy of a with a freshly assigned id and returns it.
func (r *RepositoryStub) Add(a Appointment) Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()

	a.Id = r.nextId
	r.nextId++
	a.Date = DateOf(a.Date)
	if a.Status == "" {
		a.Status = StatusActive
	}
	r.items[a.Id] = a
	return a
}

func (r *RepositoryStub) Get(id int64) (Appointment, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.items[id]
	return a, ok
}

func (r *RepositoryStub) ListAppointments(ctx context.Context, date time.Time) ([]Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}

	day := DateOf(date)
	result := make([]Appointment, 0)
	for _, a := range r.items {
		if a.Date.Equal(day) {
			result = append(result, a)
		}
	}
	sortAppointments(result)
	return result, nil
}

func (r *RepositoryStub) ListAllAppointments(ctx context.Context) ([]Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}

	result := make([]Appointment, 0, len(r.items))
	for _, a := range r.items {
		result = append(result, a)
	}
	sortAppointments(result)
	return result, nil
}

func (r *RepositoryStub) ListBookedDates(ctx context.Context, month YearMonth, includeCancelled bool) ([]time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}

	seen := make(map[time.Time]struct{})
	dates := make([]time.Time, 0)
	for _, a := range r.items {
		if !month.Contains(a.Date) || (!includeCancelled && a.IsCancelled()) {
			continue
		}
		if _, ok := seen[a.Date]; ok {
			continue
		}
		seen[a.Date] = struct{}{}
		dates = append(dates, a.Date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

func (r *RepositoryStub) CancelAppointment(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}

	a, ok := r.items[id]
	if !ok {
		return ErrAppointmentNotFound
	}
	a.Status = StatusCancelled
	r.items[id] = a
	return nil
}

func (r *RepositoryStub) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = make(map[int64]Appointment)
	r.nextId = 1
	r.Err = nil
}

func sortAppointments(items []Appointment) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].Date.Equal(items[j].Date) {
			return items[i].Date.Before(items[j].Date)
		}
		if items[i].TimeSlot != items[j].TimeSlot {
			return items[i].TimeSlot < items[j].TimeSlot
		}
		return items[i].Id < items[j].Id
	})
}
