package appointment

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/salonbook/admin-panel/internal/rest"
	log "github.com/sirupsen/logrus"
)

type AppointmentDTO struct {
	Id        int64     `json:"id"`
	Date      string    `json:"date"`
	TimeSlot  string    `json:"time_slot"`
	ServiceId string    `json:"service_id"`
	UserName  string    `json:"user_name"`
	UserId    *int64    `json:"user_id,omitempty"`
	Price     float64   `json:"price"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

// ListAllAppointments godoc
// @Summary List all appointments
// @Description Get every appointment ordered by date and time slot
// @Tags Appointment
// @Produce json
// @Success 200 {array} AppointmentDTO
// @Failure 500 {object} rest.ErrorResponse
// @Router /api/appointments [get]
func (h *Handler) ListAllAppointments(w http.ResponseWriter, r *http.Request) {
	log.Debug("Listing all appointments")
	appointments, err := h.service.ListAllAppointments(r.Context())
	if err != nil {
		rest.WriteError(w, http.StatusInternalServerError, "Failed to load appointments", "")
		return
	}
	rest.WriteJSON(w, http.StatusOK, appointmentsToDTO(appointments))
}

// ListAppointments godoc
// @Summary List appointments for a date
// @Description Get the appointments booked on the given date ordered by time slot
// @Tags Appointment
// @Produce json
// @Param date path string true "Date in YYYY-MM-DD format"
// @Success 200 {array} AppointmentDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 500 {object} rest.ErrorResponse
// @Router /api/appointments/{date} [get]
func (h *Handler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	dateString := mux.Vars(r)["date"]
	date, err := ParseDate(dateString)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid date format", "'date' must be in YYYY-MM-DD format")
		return
	}
	log.Debugf("Listing appointments for %s", dateString)

	appointments, err := h.service.ListAppointments(r.Context(), date)
	if err != nil {
		rest.WriteError(w, http.StatusInternalServerError, "Failed to load appointments", "")
		return
	}
	rest.WriteJSON(w, http.StatusOK, appointmentsToDTO(appointments))
}

// ListBookedDates godoc
// @Summary List booked dates of a month
// @Description Get the distinct dates within the month that have at least one appointment
// @Tags Appointment
// @Produce json
// @Param yearMonth path string true "Month in YYYY-MM format"
// @Success 200 {array} string
// @Failure 400 {object} rest.ErrorResponse
// @Failure 500 {object} rest.ErrorResponse
// @Router /api/appointments/dates/{yearMonth} [get]
func (h *Handler) ListBookedDates(w http.ResponseWriter, r *http.Request) {
	month, err := ParseYearMonth(mux.Vars(r)["yearMonth"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid month format", "'yearMonth' must be in YYYY-MM format")
		return
	}

	dates, err := h.service.ListBookedDates(r.Context(), month)
	if err != nil {
		rest.WriteError(w, http.StatusInternalServerError, "Failed to load booked dates", "")
		return
	}

	result := make([]string, 0, len(dates))
	for _, d := range dates {
		result = append(result, FormatDate(d))
	}
	rest.WriteJSON(w, http.StatusOK, result)
}

// CancelAppointment godoc
// @Summary Cancel an appointment
// @Description Set the appointment status to cancelled
// @Tags Appointment
// @Produce json
// @Param id path int true "Appointment ID"
// @Success 200 {object} rest.MessageResponse
// @Failure 400 {object} rest.ErrorResponse
// @Failure 404 {object} rest.ErrorResponse
// @Failure 500 {object} rest.ErrorResponse
// @Router /api/appointments/cancel/{id} [post]
func (h *Handler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		rest.WriteError(w, http.StatusBadRequest, "Invalid appointment id", "'id' must be a positive integer")
		return
	}

	err = h.service.CancelAppointment(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrAppointmentNotFound):
			rest.WriteError(w, http.StatusNotFound, "Appointment not found", "")
		case errors.Is(err, ErrInvalidAppointmentId):
			rest.WriteError(w, http.StatusBadRequest, "Invalid appointment id", "")
		default:
			rest.WriteError(w, http.StatusInternalServerError, "Failed to cancel appointment", "")
		}
		return
	}
	rest.WriteJSON(w, http.StatusOK, rest.MessageResponse{Message: "Appointment cancelled successfully"})
}

func appointmentToDTO(a Appointment) AppointmentDTO {
	return AppointmentDTO{
		Id:        a.Id,
		Date:      FormatDate(a.Date),
		TimeSlot:  a.TimeSlot,
		ServiceId: a.ServiceId,
		UserName:  a.UserName,
		UserId:    a.UserId,
		Price:     a.Price,
		Status:    string(a.Status),
		CreatedAt: a.CreatedAt,
	}
}

func appointmentsToDTO(appointments []Appointment) []AppointmentDTO {
	dtos := make([]AppointmentDTO, 0, len(appointments))
	for _, a := range appointments {
		dtos = append(dtos, appointmentToDTO(a))
	}
	return dtos
}
