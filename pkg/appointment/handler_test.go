package appointment

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHandlerTest(t *testing.T) (*RepositoryStub, *mux.Router) {
	repo := NewRepositoryStub()
	handler := NewHandler(NewService(repo, true))

	r := mux.NewRouter()
	r.HandleFunc("/api/appointments", handler.ListAllAppointments).Methods("GET")
	r.HandleFunc("/api/appointments/dates/{yearMonth}", handler.ListBookedDates).Methods("GET")
	r.HandleFunc("/api/appointments/cancel/{id}", handler.CancelAppointment).Methods("POST")
	r.HandleFunc("/api/appointments/{date}", handler.ListAppointments).Methods("GET")
	return repo, r
}

func serve(r http.Handler, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

func TestListAppointments_Success(t *testing.T) {
	// given
	repo, router := setupHandlerTest(t)
	userId := int64(77)
	repo.Add(Appointment{UserName: "Ravi", ServiceId: "haircut", Date: ymd(2024, 3, 5), TimeSlot: "14:00", Price: 100, Status: StatusCancelled, UserId: &userId})
	repo.Add(Appointment{UserName: "Asha", ServiceId: "coloring", Date: ymd(2024, 3, 5), TimeSlot: "10:00", Price: 500})
	repo.Add(Appointment{UserName: "Nope", ServiceId: "beard", Date: ymd(2024, 3, 6), TimeSlot: "10:00", Price: 100})

	// when
	w := serve(router, http.MethodGet, "/api/appointments/2024-03-05")

	// then
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var dtos []AppointmentDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&dtos))
	require.Len(t, dtos, 2)
	assert.Equal(t, "10:00", dtos[0].TimeSlot)
	assert.Equal(t, "Asha", dtos[0].UserName)
	assert.Equal(t, "coloring", dtos[0].ServiceId)
	assert.Equal(t, 500.0, dtos[0].Price)
	assert.Equal(t, "active", dtos[0].Status)
	assert.Equal(t, "2024-03-05", dtos[0].Date)
	assert.Nil(t, dtos[0].UserId)
	assert.Equal(t, "14:00", dtos[1].TimeSlot)
	assert.Equal(t, "cancelled", dtos[1].Status)
	require.NotNil(t, dtos[1].UserId)
	assert.Equal(t, userId, *dtos[1].UserId)
}

func TestListAppointments_EmptyResultIsArray(t *testing.T) {
	_, router := setupHandlerTest(t)

	w := serve(router, http.MethodGet, "/api/appointments/2024-03-05")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestListAppointments_InvalidDate(t *testing.T) {
	_, router := setupHandlerTest(t)

	w := serve(router, http.MethodGet, "/api/appointments/05-03-2024")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body errorBody
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Contains(t, body.Error, "Invalid date format")
	assert.Contains(t, body.Details, "YYYY-MM-DD")
}

func TestListAppointments_StoreError(t *testing.T) {
	repo, router := setupHandlerTest(t)
	repo.Err = errors.New("database is down")

	w := serve(router, http.MethodGet, "/api/appointments/2024-03-05")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body errorBody
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "Failed to load appointments", body.Error)
	assert.NotContains(t, w.Body.String(), "database is down")
}

func TestListAllAppointments(t *testing.T) {
	repo, router := setupHandlerTest(t)
	repo.Add(Appointment{UserName: "Later", Date: ymd(2024, 4, 1), TimeSlot: "09:00"})
	repo.Add(Appointment{UserName: "Sooner", Date: ymd(2024, 3, 5), TimeSlot: "17:00"})

	w := serve(router, http.MethodGet, "/api/appointments")

	assert.Equal(t, http.StatusOK, w.Code)
	var dtos []AppointmentDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&dtos))
	require.Len(t, dtos, 2)
	assert.Equal(t, "Sooner", dtos[0].UserName)
	assert.Equal(t, "Later", dtos[1].UserName)
}

func TestListBookedDates(t *testing.T) {
	repo, router := setupHandlerTest(t)
	repo.Add(Appointment{Date: ymd(2024, 3, 5), TimeSlot: "10:00"})
	repo.Add(Appointment{Date: ymd(2024, 3, 5), TimeSlot: "14:00", Status: StatusCancelled})
	repo.Add(Appointment{Date: ymd(2024, 3, 20), TimeSlot: "14:00"})
	repo.Add(Appointment{Date: ymd(2024, 2, 20), TimeSlot: "14:00"})

	for _, month := range []string{"2024-03", "2024-3"} {
		t.Run(month, func(t *testing.T) {
			w := serve(router, http.MethodGet, "/api/appointments/dates/"+month)

			assert.Equal(t, http.StatusOK, w.Code)
			var dates []string
			require.NoError(t, json.NewDecoder(w.Body).Decode(&dates))
			assert.Equal(t, []string{"2024-03-05", "2024-03-20"}, dates)
		})
	}
}

func TestListBookedDates_InvalidMonth(t *testing.T) {
	_, router := setupHandlerTest(t)

	w := serve(router, http.MethodGet, "/api/appointments/dates/2024-13")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body errorBody
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Contains(t, body.Error, "Invalid month format")
}

func TestCancelAppointment(t *testing.T) {
	repo, router := setupHandlerTest(t)
	stored := repo.Add(Appointment{UserName: "Asha", Date: ymd(2024, 3, 5), TimeSlot: "10:00"})

	w := serve(router, http.MethodPost, "/api/appointments/cancel/1")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Appointment cancelled successfully"}`, w.Body.String())
	got, _ := repo.Get(stored.Id)
	assert.Equal(t, StatusCancelled, got.Status)

	// repeated cancellation answers the same way
	again := serve(router, http.MethodPost, "/api/appointments/cancel/1")
	assert.Equal(t, http.StatusOK, again.Code)
	assert.Equal(t, w.Body.String(), again.Body.String())
}

func TestCancelAppointment_NotFound(t *testing.T) {
	repo, router := setupHandlerTest(t)
	stored := repo.Add(Appointment{Date: ymd(2024, 3, 5), TimeSlot: "10:00"})

	w := serve(router, http.MethodPost, "/api/appointments/cancel/42")

	assert.Equal(t, http.StatusNotFound, w.Code)
	var body errorBody
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "Appointment not found", body.Error)
	got, _ := repo.Get(stored.Id)
	assert.Equal(t, StatusActive, got.Status)
}

func TestCancelAppointment_InvalidId(t *testing.T) {
	_, router := setupHandlerTest(t)

	for _, id := range []string{"abc", "0", "-3"} {
		t.Run(id, func(t *testing.T) {
			w := serve(router, http.MethodPost, "/api/appointments/cancel/"+id)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestCancelAppointment_StoreError(t *testing.T) {
	repo, _ := setupHandlerTest(t)
	repo.Err = errors.New("connection reset")
	handler := NewHandler(NewService(repo, true))

	req := mux.SetURLVars(httptest.NewRequest(http.MethodPost, "/api/appointments/cancel/1", nil), map[string]string{
		"id": "1",
	})
	w := httptest.NewRecorder()
	handler.CancelAppointment(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body errorBody
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "Failed to cancel appointment", body.Error)
}
