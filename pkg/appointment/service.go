package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

var ErrInvalidAppointmentId = errors.New("invalid appointment id")

type Service interface {
	// ListAppointments returns the appointments booked on date, ordered by time slot.
	ListAppointments(ctx context.Context, date time.Time) ([]Appointment, error)
	// ListAllAppointments returns every appointment ordered by date and time slot.
	ListAllAppointments(ctx context.Context) ([]Appointment, error)
	ListBookedDates(ctx context.Context, month YearMonth) ([]time.Time, error)
	CancelAppointment(ctx context.Context, id int64) error
}

type ServiceImpl struct {
	repo             Repository
	includeCancelled bool
}

// NewService creates the appointment service. includeCancelled decides whether
// cancelled appointments still mark their day as booked.
func NewService(repo Repository, includeCancelled bool) *ServiceImpl {
	return &ServiceImpl{repo: repo, includeCancelled: includeCancelled}
}

func (s *ServiceImpl) ListAppointments(ctx context.Context, date time.Time) ([]Appointment, error) {
	appointments, err := s.repo.ListAppointments(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (s *ServiceImpl) ListAllAppointments(ctx context.Context) ([]Appointment, error) {
	appointments, err := s.repo.ListAllAppointments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (s *ServiceImpl) ListBookedDates(ctx context.Context, month YearMonth) ([]time.Time, error) {
	dates, err := s.repo.ListBookedDates(ctx, month, s.includeCancelled)
	if err != nil {
		return nil, fmt.Errorf("failed to list booked dates: %w", err)
	}
	return dates, nil
}

func (s *ServiceImpl) CancelAppointment(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidAppointmentId
	}
	if err := s.repo.CancelAppointment(ctx, id); err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			log.Debugf("cancel requested for unknown appointment %d", id)
			return err
		}
		return fmt.Errorf("failed to cancel appointment: %w", err)
	}
	log.Infof("Appointment %d cancelled", id)
	return nil
}
