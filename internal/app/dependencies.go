package app

import (
	"github.com/salonbook/admin-panel/internal/config"
	"github.com/salonbook/admin-panel/internal/utils"
	"github.com/salonbook/admin-panel/pkg/appointment"
	"github.com/salonbook/admin-panel/pkg/calendar"
	"github.com/salonbook/admin-panel/pkg/catalog"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	AppointmentRepo    appointment.Repository
	AppointmentService *appointment.ServiceImpl
	AppointmentHandler *appointment.Handler

	Catalog     *catalog.Catalog
	PageHandler *calendar.PageHandler

	HealthHandler *HealthHandler

	Clock utils.Clock
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db appointment.DB, cfg config.Application, checks ...ReadyCheck) *Dependencies {
	deps := &Dependencies{}

	deps.Clock = utils.SystemClock{}

	deps.AppointmentRepo = appointment.NewRepository(db)
	deps.AppointmentService = appointment.NewService(deps.AppointmentRepo, cfg.Calendar.IncludeCancelled)
	deps.AppointmentHandler = appointment.NewHandler(deps.AppointmentService)

	deps.Catalog = catalog.New(catalogOverrides(cfg.Services)...)
	deps.PageHandler = calendar.NewPageHandler(deps.AppointmentService, deps.Catalog, cfg.Frontend.Currency, deps.Clock)

	deps.HealthHandler = NewHealthHandler(checks...)

	return deps
}

func catalogOverrides(services map[string]config.SalonService) []catalog.Item {
	items := make([]catalog.Item, 0, len(services))
	for id, s := range services {
		items = append(items, catalog.Item{Id: id, Name: s.Name, Price: s.Price, Emoji: s.Emoji})
	}
	return items
}
