package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	log "github.com/sirupsen/logrus"
)

var ErrAppointmentNotFound = errors.New("appointment not found")

type Repository interface {
	ListAppointments(ctx context.Context, date time.Time) ([]Appointment, error)
	ListAllAppointments(ctx context.Context) ([]Appointment, error)
	ListBookedDates(ctx context.Context, month YearMonth, includeCancelled bool) ([]time.Time, error)
	CancelAppointment(ctx context.Context, id int64) error
}

// DB is the subset of pgx shared by *pgx.Conn and *pgxpool.Pool.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type RepositoryImpl struct {
	db DB
}

func NewRepository(db DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const appointmentColumns = `id, user_id, user_name, service_id, appointment_date, time_slot, price, status, created_at`

func (r *RepositoryImpl) ListAppointments(ctx context.Context, date time.Time) ([]Appointment, error) {
	query := `SELECT ` + appointmentColumns + `
			  FROM appointments
			  WHERE appointment_date = $1
			  ORDER BY time_slot, id`

	rows, err := r.db.Query(ctx, query, DateOf(date))
	if err != nil {
		err := fmt.Errorf("could not query appointments for %s: %w", FormatDate(date), err)
		log.Error(err)
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *RepositoryImpl) ListAllAppointments(ctx context.Context) ([]Appointment, error) {
	query := `SELECT ` + appointmentColumns + `
			  FROM appointments
			  ORDER BY appointment_date, time_slot, id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not query appointments: %w", err)
		log.Error(err)
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *RepositoryImpl) ListBookedDates(ctx context.Context, month YearMonth, includeCancelled bool) ([]time.Time, error) {
	query := `SELECT DISTINCT appointment_date
			  FROM appointments
			  WHERE appointment_date >= $1
			    AND appointment_date < $2
			    AND ($3 OR status <> 'cancelled')
			  ORDER BY appointment_date`

	rows, err := r.db.Query(ctx, query, month.FirstDay(), month.Next().FirstDay(), includeCancelled)
	if err != nil {
		err := fmt.Errorf("could not query booked dates for %s: %w", month, err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	dates := make([]time.Time, 0, 31)
	for rows.Next() {
		var date time.Time
		if err := rows.Scan(&date); err != nil {
			err := fmt.Errorf("could not scan booked date: %w", err)
			log.Error(err)
			return nil, err
		}
		dates = append(dates, DateOf(date))
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over booked dates: %w", err)
		log.Error(err)
		return nil, err
	}
	return dates, nil
}

// CancelAppointment sets the status to cancelled. Cancelling an already cancelled
// appointment matches the row again and succeeds the same way.
func (r *RepositoryImpl) CancelAppointment(ctx context.Context, id int64) error {
	query := `UPDATE appointments SET status = $1 WHERE id = $2`

	tag, err := r.db.Exec(ctx, query, string(StatusCancelled), id)
	if err != nil {
		err := fmt.Errorf("could not cancel appointment %d: %w", id, err)
		log.Error(err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func collectAppointments(rows pgx.Rows) ([]Appointment, error) {
	defer rows.Close()

	appointments := make([]Appointment, 0, 10)
	for rows.Next() {
		var a Appointment
		var status string
		err := rows.Scan(
			&a.Id,
			&a.UserId,
			&a.UserName,
			&a.ServiceId,
			&a.Date,
			&a.TimeSlot,
			&a.Price,
			&status,
			&a.CreatedAt,
		)
		if err != nil {
			err := fmt.Errorf("could not scan appointment: %w", err)
			log.Error(err)
			return nil, err
		}
		a.Date = DateOf(a.Date)
		a.Status = ParseStatus(status)
		appointments = append(appointments, a)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over appointments: %w", err)
		log.Error(err)
		return nil, err
	}
	return appointments, nil
}
