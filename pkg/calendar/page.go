package calendar

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"github.com/salonbook/admin-panel/internal/utils"
	"github.com/salonbook/admin-panel/pkg/appointment"
	"github.com/salonbook/admin-panel/pkg/catalog"
	log "github.com/sirupsen/logrus"
)

//go:embed web
var webFS embed.FS

var pageTemplate = template.Must(template.ParseFS(webFS, "web/index.html.tmpl"))

type PageHandler struct {
	source   Source
	catalog  *catalog.Catalog
	currency string
	clock    utils.Clock
}

func NewPageHandler(source Source, services *catalog.Catalog, currency string, clock utils.Clock) *PageHandler {
	return &PageHandler{
		source:   source,
		catalog:  services,
		currency: currency,
		clock:    clock,
	}
}

// StaticHandler serves the embedded script and stylesheet. Mount it under /static/.
func StaticHandler() http.Handler {
	static, err := fs.Sub(webFS, "web/static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(static)))
}

type cardView struct {
	Id        int64
	TimeSlot  string
	Date      string
	Service   string
	UserName  string
	Price     string
	Status    string
	Cancelled bool
	Pending   bool
}

type pageView struct {
	MonthLabel        string
	Month             string
	Headers           []string
	Weeks             [][]Cell
	SelectedDate      string
	SelectedLabel     string
	State             string
	Cards             []cardView
	NoAppointments    bool
	BookedDatesError  bool
	AppointmentsError bool
	Notice            string
	NoticeError       bool
}

// ServeHTTP renders the calendar page.
// @Summary Calendar page
// @Description Month grid with booked-day indicators and the appointments of the selected day
// @Tags Calendar
// @Produce html
// @Param month query string false "Visible month (YYYY-MM)"
// @Param nav query string false "Step from month: prev or next"
// @Param date query string false "Selected date (YYYY-MM-DD)"
// @Success 200 {string} string "HTML page"
// @Failure 400 {string} string "Invalid month or date"
// @Router / [get]
func (h *PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	vm, invalid := h.load(r)
	if invalid != "" {
		http.Error(w, invalid, http.StatusBadRequest)
		return
	}
	h.write(w, http.StatusOK, vm.Snapshot(), notice{})
}

// Cancel is the form fallback used when the page script is not running. It
// cancels through the view-model and re-renders the same view with a notice.
// @Summary Cancel an appointment from the calendar page
// @Tags Calendar
// @Accept x-www-form-urlencoded
// @Produce html
// @Param id formData int true "Appointment ID"
// @Param month formData string false "Visible month (YYYY-MM)"
// @Param date formData string false "Selected date (YYYY-MM-DD)"
// @Success 200 {string} string "HTML page"
// @Failure 400 {string} string "Invalid id, month or date"
// @Failure 404 {string} string "HTML page with a not-found notice"
// @Failure 500 {string} string "HTML page with a failure notice"
// @Router /cancel [post]
func (h *PageHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.FormValue("id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "Invalid appointment id", http.StatusBadRequest)
		return
	}
	vm, invalid := h.load(r)
	if invalid != "" {
		http.Error(w, invalid, http.StatusBadRequest)
		return
	}

	status := http.StatusOK
	n := notice{Text: "Appointment cancelled successfully"}
	if err := vm.Cancel(r.Context(), id); err != nil {
		n.Error = true
		switch {
		case errors.Is(err, appointment.ErrAppointmentNotFound):
			n.Text = "Appointment not found"
			status = http.StatusNotFound
		case errors.Is(err, ErrCancelInProgress):
			n.Text = "Cancellation already in progress"
			status = http.StatusConflict
		default:
			log.Errorf("could not cancel appointment %d: %v", id, err)
			n.Text = "Failed to cancel appointment"
			status = http.StatusInternalServerError
		}
	}
	h.write(w, status, vm.Snapshot(), n)
}

// load builds the view-model for the request's month, nav and date values.
// A non-empty message means the input was invalid.
func (h *PageHandler) load(r *http.Request) (*ViewModel, string) {
	ctx := r.Context()
	vm := NewViewModel(h.source, h.clock)

	month := vm.Month()
	monthValue := r.FormValue("month")
	if monthValue != "" {
		parsed, err := appointment.ParseYearMonth(monthValue)
		if err != nil {
			return nil, "Invalid month format"
		}
		month = parsed
	}

	var selected *time.Time
	if d := r.FormValue("date"); d != "" {
		parsed, err := appointment.ParseDate(d)
		if err != nil {
			return nil, "Invalid date format"
		}
		selected = &parsed
		if monthValue == "" {
			month = appointment.YearMonthOf(parsed)
		}
	}

	// Load errors are carried in the view and rendered in place.
	switch r.FormValue("nav") {
	case "":
		_ = vm.ShowMonth(ctx, month)
	case "next":
		vm.startAt(month)
		_ = vm.NextMonth(ctx)
		selected = nil
	case "prev":
		vm.startAt(month)
		_ = vm.PreviousMonth(ctx)
		selected = nil
	default:
		return nil, "Invalid navigation"
	}

	// SelectDate moves the visible month when the date lies outside it.
	if selected != nil {
		_ = vm.SelectDate(ctx, *selected)
	} else {
		_ = vm.ShowAll(ctx)
	}
	return vm, ""
}

type notice struct {
	Text  string
	Error bool
}

func (h *PageHandler) write(w http.ResponseWriter, status int, v View, n notice) {
	page := h.render(v)
	page.Notice = n.Text
	page.NoticeError = n.Error

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, page); err != nil {
		log.Errorf("could not render calendar page: %v", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Debugf("could not write calendar page: %v", err)
	}
}

func (h *PageHandler) render(v View) pageView {
	page := pageView{
		MonthLabel:        v.Month.FirstDay().Format("January 2006"),
		Month:             v.Month.String(),
		Headers:           v.Grid.Headers,
		Weeks:             v.Grid.Weeks(),
		State:             v.State.String(),
		NoAppointments:    v.NoAppointments,
		BookedDatesError:  v.BookedDatesError != nil,
		AppointmentsError: v.AppointmentsError != nil,
		Cards:             make([]cardView, 0, len(v.Appointments)),
	}
	if v.Selected != nil {
		page.SelectedDate = appointment.FormatDate(*v.Selected)
		page.SelectedLabel = v.Selected.Format("Monday, 2 January 2006")
	}
	for _, a := range v.Appointments {
		page.Cards = append(page.Cards, cardView{
			Id:        a.Id,
			TimeSlot:  a.TimeSlot,
			Date:      appointment.FormatDate(a.Date),
			Service:   h.catalog.DisplayName(a.ServiceId),
			UserName:  a.UserName,
			Price:     catalog.FormatPrice(h.currency, a.Price),
			Status:    string(a.Status),
			Cancelled: a.IsCancelled(),
			Pending:   v.Pending[a.Id],
		})
	}
	return page
}
