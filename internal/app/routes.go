package app

import (
	"github.com/gorilla/mux"
	"github.com/salonbook/admin-panel/internal/config"
	"github.com/salonbook/admin-panel/pkg/calendar"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Appointments
	r.HandleFunc("/api/appointments", deps.AppointmentHandler.ListAllAppointments).Methods("GET")
	r.HandleFunc("/api/appointments/", deps.AppointmentHandler.ListAllAppointments).Methods("GET")
	r.HandleFunc("/api/appointments/dates/{yearMonth}", deps.AppointmentHandler.ListBookedDates).Methods("GET")
	r.HandleFunc("/api/appointments/cancel/{id}", deps.AppointmentHandler.CancelAppointment).Methods("POST")
	r.HandleFunc("/api/appointments/{date}", deps.AppointmentHandler.ListAppointments).Methods("GET")

	// Health
	r.HandleFunc("/healthz", deps.HealthHandler.Live).Methods("GET")
	r.HandleFunc("/readyz", deps.HealthHandler.Ready).Methods("GET")

	// Frontend
	if cfg.Frontend.Enabled {
		r.PathPrefix("/static/").Handler(calendar.StaticHandler()).Methods("GET")
		r.Handle("/", deps.PageHandler).Methods("GET")
		r.HandleFunc("/cancel", deps.PageHandler.Cancel).Methods("POST")
	}
}
