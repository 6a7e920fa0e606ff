package calendar

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/salonbook/admin-panel/internal/utils"
	"github.com/salonbook/admin-panel/pkg/appointment"
	log "github.com/sirupsen/logrus"
)

var ErrCancelInProgress = errors.New("cancellation already in progress")

// Source is the subset of the appointment store the calendar reads from.
type Source interface {
	ListAppointments(ctx context.Context, date time.Time) ([]appointment.Appointment, error)
	ListAllAppointments(ctx context.Context) ([]appointment.Appointment, error)
	ListBookedDates(ctx context.Context, month appointment.YearMonth) ([]time.Time, error)
	CancelAppointment(ctx context.Context, id int64) error
}

type State int

const (
	Idle State = iota
	LoadingBookedDates
	LoadingAppointments
	Ready
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case LoadingBookedDates:
		return "loading-booked-dates"
	case LoadingAppointments:
		return "loading-appointments"
	case Ready:
		return "ready"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// ViewModel holds the state of the calendar page: the visible month, its booked
// dates, the selected date and the appointments listed for it.
//
// The booked-dates and appointment regions load independently. Each load bumps
// a generation counter; a response that arrives after a newer load started is
// dropped.
type ViewModel struct {
	mu     sync.Mutex
	source Source
	clock  utils.Clock

	month    appointment.YearMonth
	booked   DateSet
	selected *time.Time

	appointments       []appointment.Appointment
	appointmentsLoaded bool
	pending            map[int64]bool

	bookedLoading       bool
	appointmentsLoading bool
	bookedErr           error
	appointmentsErr     error

	monthGen     uint64
	selectionGen uint64
}

func NewViewModel(source Source, clock utils.Clock) *ViewModel {
	return &ViewModel{
		source:  source,
		clock:   clock,
		month:   appointment.YearMonthOf(clock.Now()),
		booked:  NewDateSet(),
		pending: make(map[int64]bool),
	}
}

// ShowMonth switches the visible month and loads its booked dates. Switching to
// another month drops the selection. A failed load leaves the month without
// booking indicators; the error is recorded and returned.
func (vm *ViewModel) ShowMonth(ctx context.Context, month appointment.YearMonth) error {
	vm.mu.Lock()
	if month != vm.month {
		vm.clearSelectionLocked()
	}
	vm.month = month
	vm.booked = NewDateSet()
	vm.bookedErr = nil
	vm.bookedLoading = true
	vm.monthGen++
	gen := vm.monthGen
	vm.mu.Unlock()

	dates, err := vm.source.ListBookedDates(ctx, month)

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if gen != vm.monthGen {
		log.Debugf("discarding stale booked dates for %s", month)
		return nil
	}
	vm.bookedLoading = false
	if err != nil {
		log.Warnf("could not load booked dates for %s: %v", month, err)
		vm.bookedErr = err
		return err
	}
	vm.booked = NewDateSet(dates...)
	return nil
}

// startAt positions the view on month without loading anything.
func (vm *ViewModel) startAt(month appointment.YearMonth) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.month = month
}

func (vm *ViewModel) NextMonth(ctx context.Context) error {
	return vm.ShowMonth(ctx, vm.Month().Next())
}

func (vm *ViewModel) PreviousMonth(ctx context.Context) error {
	return vm.ShowMonth(ctx, vm.Month().Prev())
}

// SelectDate selects a day and loads its appointments, moving the visible month
// first when the day lies outside it.
func (vm *ViewModel) SelectDate(ctx context.Context, date time.Time) error {
	day := appointment.DateOf(date)
	if !vm.Month().Contains(day) {
		// fail-open: booked-date errors stay recorded on the calendar region
		_ = vm.ShowMonth(ctx, appointment.YearMonthOf(day))
	}

	gen := vm.beginAppointmentsLoad(&day)
	items, err := vm.source.ListAppointments(ctx, day)
	return vm.finishAppointmentsLoad(gen, items, err)
}

// ShowAll clears the selection and lists every appointment.
func (vm *ViewModel) ShowAll(ctx context.Context) error {
	gen := vm.beginAppointmentsLoad(nil)
	items, err := vm.source.ListAllAppointments(ctx)
	return vm.finishAppointmentsLoad(gen, items, err)
}

func (vm *ViewModel) beginAppointmentsLoad(selected *time.Time) uint64 {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.selected = selected
	vm.appointments = nil
	vm.appointmentsLoaded = false
	vm.appointmentsErr = nil
	vm.appointmentsLoading = true
	vm.selectionGen++
	return vm.selectionGen
}

func (vm *ViewModel) finishAppointmentsLoad(gen uint64, items []appointment.Appointment, err error) error {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if gen != vm.selectionGen {
		log.Debug("discarding stale appointment list")
		return nil
	}
	vm.appointmentsLoading = false
	if err != nil {
		log.Warnf("could not load appointments: %v", err)
		vm.appointmentsErr = err
		return err
	}
	vm.appointments = items
	vm.appointmentsLoaded = true
	return nil
}

// Cancel cancels an appointment through the store. The appointment is pending
// (its control disabled) while the call runs. On success the local copy is
// marked cancelled; on failure nothing but the pending flag changes and the
// error is returned for the caller to report.
func (vm *ViewModel) Cancel(ctx context.Context, id int64) error {
	vm.mu.Lock()
	if vm.pending[id] {
		vm.mu.Unlock()
		return ErrCancelInProgress
	}
	vm.pending[id] = true
	vm.mu.Unlock()

	err := vm.source.CancelAppointment(ctx, id)

	vm.mu.Lock()
	defer vm.mu.Unlock()
	delete(vm.pending, id)
	if err != nil {
		return err
	}
	for i := range vm.appointments {
		if vm.appointments[i].Id == id {
			vm.appointments[i].Status = appointment.StatusCancelled
		}
	}
	return nil
}

func (vm *ViewModel) Month() appointment.YearMonth {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.month
}

func (vm *ViewModel) State() State {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.stateLocked()
}

func (vm *ViewModel) stateLocked() State {
	switch {
	case vm.bookedLoading:
		return LoadingBookedDates
	case vm.appointmentsLoading:
		return LoadingAppointments
	case vm.bookedErr != nil || vm.appointmentsErr != nil:
		return Error
	case vm.monthGen > 0 || vm.selectionGen > 0:
		return Ready
	default:
		return Idle
	}
}

func (vm *ViewModel) clearSelectionLocked() {
	vm.selected = nil
	vm.appointments = nil
	vm.appointmentsLoaded = false
	vm.appointmentsErr = nil
	vm.appointmentsLoading = false
	vm.selectionGen++
}

// View is an immutable snapshot of the view-model.
type View struct {
	State        State
	Month        appointment.YearMonth
	Grid         Grid
	Selected     *time.Time
	Appointments []appointment.Appointment
	// Pending holds ids whose cancel control is disabled.
	Pending map[int64]bool
	// AppointmentsLoaded is false until a list arrives for the current selection.
	AppointmentsLoaded bool
	// NoAppointments requests the empty-day placeholder.
	NoAppointments    bool
	BookedDatesError  error
	AppointmentsError error
}

func (vm *ViewModel) Snapshot() View {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	var selected *time.Time
	if vm.selected != nil {
		s := *vm.selected
		selected = &s
	}

	items := make([]appointment.Appointment, len(vm.appointments))
	copy(items, vm.appointments)

	pending := make(map[int64]bool, len(vm.pending))
	for id := range vm.pending {
		pending[id] = true
	}

	return View{
		State:              vm.stateLocked(),
		Month:              vm.month,
		Grid:               BuildGrid(vm.month, vm.booked, selected, utils.Today(vm.clock)),
		Selected:           selected,
		Appointments:       items,
		Pending:            pending,
		AppointmentsLoaded: vm.appointmentsLoaded,
		NoAppointments:     vm.appointmentsLoaded && len(items) == 0,
		BookedDatesError:   vm.bookedErr,
		AppointmentsError:  vm.appointmentsErr,
	}
}
