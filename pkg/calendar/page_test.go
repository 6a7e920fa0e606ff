package calendar

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/salonbook/admin-panel/internal/utils"
	"github.com/salonbook/admin-panel/pkg/appointment"
	"github.com/salonbook/admin-panel/pkg/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPageTest(t *testing.T) (*PageHandler, *appointment.RepositoryStub) {
	t.Helper()
	repo := appointment.NewRepositoryStub()
	service := appointment.NewService(repo, true)
	clock := &utils.MockClock{FixedNow: now}
	return NewPageHandler(service, catalog.New(), "₹", clock), repo
}

func getPage(t *testing.T, handler http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestPageHandler_CurrentMonthWithAllAppointments(t *testing.T) {
	// given
	handler, repo := setupPageTest(t)
	repo.Add(appointment.Appointment{UserName: "Asha", ServiceId: "coloring", Date: ymd(2024, 3, 20), TimeSlot: "10:00", Price: 500})

	// when
	rr := getPage(t, handler, "/")

	// then
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	body := rr.Body.String()
	assert.Contains(t, body, "March 2024")
	assert.Contains(t, body, "All appointments")
	assert.Contains(t, body, "Coloring 🎨")
	assert.Contains(t, body, "₹500")
	assert.Contains(t, body, `data-cancel-id="1"`)
	assert.Contains(t, body, "calendar-day booked")
	assert.Contains(t, body, `href="/?month=2024-03&amp;nav=prev"`)
	assert.Contains(t, body, `href="/?month=2024-03&amp;nav=next"`)
	assert.Contains(t, body, `action="/cancel"`)
}

func TestPageHandler_SelectedDate(t *testing.T) {
	handler, repo := setupPageTest(t)
	repo.Add(appointment.Appointment{UserName: "Ravi", ServiceId: "beard", Date: ymd(2024, 5, 2), TimeSlot: "16:00", Price: 100})
	cancelled := repo.Add(appointment.Appointment{UserName: "Meera", ServiceId: "haircut", Date: ymd(2024, 5, 2), TimeSlot: "12:00", Price: 100})
	require.NoError(t, repo.CancelAppointment(t.Context(), cancelled.Id))

	rr := getPage(t, handler, "/?date=2024-05-02")

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "May 2024")
	assert.Contains(t, body, "Thursday, 2 May 2024")
	assert.Contains(t, body, "Beard Trim 🧔")
	assert.Contains(t, body, "appointment-card cancelled")
	assert.NotContains(t, body, `data-cancel-id="2"`)
	assert.Contains(t, body, `data-cancel-id="1"`)
	assert.Less(t, strings.Index(body, "Meera"), strings.Index(body, "Ravi"))
}

func TestPageHandler_EmptyDay(t *testing.T) {
	handler, _ := setupPageTest(t)

	rr := getPage(t, handler, "/?month=2024-03&date=2024-03-03")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "No appointments for this date")
}

func TestPageHandler_StoreFailureRendersInPlace(t *testing.T) {
	handler, repo := setupPageTest(t)
	repo.Err = errors.New("connection refused")

	rr := getPage(t, handler, "/?date=2024-03-03")

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Error loading appointments")
	assert.Contains(t, body, "Booked days could not be loaded")
	assert.NotContains(t, body, "calendar-day booked")
	assert.NotContains(t, body, "connection refused")
}

func TestPageHandler_InvalidParams(t *testing.T) {
	handler, _ := setupPageTest(t)

	for _, target := range []string{"/?month=2024-13", "/?month=March", "/?date=2024-02-30", "/?date=yesterday", "/?month=2024-03&nav=sideways"} {
		t.Run(target, func(t *testing.T) {
			rr := getPage(t, handler, target)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestStaticHandler(t *testing.T) {
	handler := StaticHandler()

	rr := getPage(t, handler, "/static/app.js")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "/api/appointments/cancel/")

	rr = getPage(t, handler, "/static/style.css")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = getPage(t, handler, "/static/missing.js")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPageHandler_TodayMarked(t *testing.T) {
	handler, _ := setupPageTest(t)
	handler.clock = &utils.MockClock{FixedNow: time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC)}

	rr := getPage(t, handler, "/")

	assert.Contains(t, rr.Body.String(), "today")
	assert.Contains(t, rr.Body.String(), "date=2024-03-09")
}

func TestPageHandler_Navigation(t *testing.T) {
	handler, repo := setupPageTest(t)
	repo.Add(appointment.Appointment{UserName: "Asha", ServiceId: "haircut", Date: ymd(2025, 1, 6), TimeSlot: "10:00", Price: 100})

	t.Run("next crosses the year", func(t *testing.T) {
		rr := getPage(t, handler, "/?month=2024-12&nav=next")

		require.Equal(t, http.StatusOK, rr.Code)
		body := rr.Body.String()
		assert.Contains(t, body, "January 2025")
		assert.Contains(t, body, "calendar-day booked")
		assert.Contains(t, body, `href="/?month=2025-01&amp;nav=prev"`)
	})

	t.Run("prev crosses the year", func(t *testing.T) {
		rr := getPage(t, handler, "/?month=2024-01&nav=prev")

		require.Equal(t, http.StatusOK, rr.Code)
		body := rr.Body.String()
		assert.Contains(t, body, "December 2023")
		assert.NotContains(t, body, "calendar-day booked")
	})

	t.Run("navigation drops the selection", func(t *testing.T) {
		rr := getPage(t, handler, "/?month=2024-12&nav=next&date=2024-12-05")

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "All appointments")
	})
}

func TestPageHandler_DateOutsideMonthMovesMonth(t *testing.T) {
	// given
	handler, repo := setupPageTest(t)
	repo.Add(appointment.Appointment{UserName: "Kiran", ServiceId: "smoothening", Date: ymd(2024, 4, 2), TimeSlot: "11:00", Price: 350})

	// when
	rr := getPage(t, handler, "/?month=2024-03&date=2024-04-02")

	// then
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "April 2024")
	assert.Contains(t, body, "Tuesday, 2 April 2024")
	assert.Contains(t, body, "Kiran")
	assert.NotContains(t, body, "All appointments")
}

func postCancel(t *testing.T, handler *PageHandler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/cancel", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	handler.Cancel(rr, req)
	return rr
}

func TestPageHandler_CancelForm(t *testing.T) {
	t.Run("success patches the card", func(t *testing.T) {
		// given
		handler, repo := setupPageTest(t)
		a := repo.Add(appointment.Appointment{UserName: "Asha", ServiceId: "haircut", Date: ymd(2024, 3, 20), TimeSlot: "10:00", Price: 100})
		other := repo.Add(appointment.Appointment{UserName: "Ravi", ServiceId: "beard", Date: ymd(2024, 3, 20), TimeSlot: "11:00", Price: 100})

		// when
		rr := postCancel(t, handler, url.Values{"id": {"1"}, "month": {"2024-03"}, "date": {"2024-03-20"}})

		// then
		require.Equal(t, http.StatusOK, rr.Code)
		body := rr.Body.String()
		assert.Contains(t, body, "Appointment cancelled successfully")
		assert.Contains(t, body, "appointment-card cancelled")
		assert.NotContains(t, body, `data-cancel-id="1"`)
		assert.Contains(t, body, `data-cancel-id="2"`)
		assert.Contains(t, body, "Wednesday, 20 March 2024")

		stored, _ := repo.Get(a.Id)
		assert.True(t, stored.IsCancelled())
		stored, _ = repo.Get(other.Id)
		assert.False(t, stored.IsCancelled())
	})

	t.Run("unknown id keeps the view", func(t *testing.T) {
		handler, repo := setupPageTest(t)
		repo.Add(appointment.Appointment{UserName: "Asha", ServiceId: "haircut", Date: ymd(2024, 3, 20), TimeSlot: "10:00", Price: 100})

		rr := postCancel(t, handler, url.Values{"id": {"99"}, "date": {"2024-03-20"}})

		assert.Equal(t, http.StatusNotFound, rr.Code)
		body := rr.Body.String()
		assert.Contains(t, body, "flash error")
		assert.Contains(t, body, "Appointment not found")
		assert.Contains(t, body, `data-cancel-id="1">Cancel`)
	})

	t.Run("store failure re-enables the control", func(t *testing.T) {
		// given
		repo := appointment.NewRepositoryStub()
		a := repo.Add(appointment.Appointment{UserName: "Asha", ServiceId: "haircut", Date: ymd(2024, 3, 20), TimeSlot: "10:00", Price: 100})
		source := &fakeSource{
			Service: appointment.NewService(repo, true),
			cancelHook: func(ctx context.Context, id int64) error {
				return errors.New("database is down")
			},
		}
		handler := NewPageHandler(source, catalog.New(), "₹", &utils.MockClock{FixedNow: now})

		// when
		rr := postCancel(t, handler, url.Values{"id": {"1"}, "date": {"2024-03-20"}})

		// then
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		body := rr.Body.String()
		assert.Contains(t, body, "Failed to cancel appointment")
		assert.NotContains(t, body, "database is down")
		assert.Contains(t, body, `data-cancel-id="1">Cancel`)
		stored, _ := repo.Get(a.Id)
		assert.False(t, stored.IsCancelled())
	})

	t.Run("invalid input", func(t *testing.T) {
		handler, _ := setupPageTest(t)

		for _, form := range []url.Values{
			{"id": {"abc"}},
			{"id": {"0"}},
			{},
			{"id": {"1"}, "date": {"2024-02-30"}},
		} {
			rr := postCancel(t, handler, form)
			assert.Equal(t, http.StatusBadRequest, rr.Code, form.Encode())
		}
	})
}
