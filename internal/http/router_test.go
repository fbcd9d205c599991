package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fumotion/internal/auth"
	intconfig "fumotion/internal/config"
	intdb "fumotion/internal/db"
	"fumotion/internal/db/dbtest"
	"fumotion/internal/http/handlers"
	"fumotion/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	t      *testing.T
	router *gin.Engine
	h      *handlers.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := dbtest.Open(t)
	tokens := auth.NewIssuer("router-test-secret", time.Hour)
	h := handlers.New(services.Base{DB: db, Dialect: intdb.DialectSQLite}, tokens, 2*time.Hour, false)
	r := NewRouter(Deps{Env: intconfig.Env{}, Handler: h, Tokens: tokens})
	return &testServer{t: t, router: r, h: h}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type session struct {
	Token string `json:"token"`
	User  struct {
		ID int64 `json:"id"`
	} `json:"user"`
}

func (s *testServer) register(name string) session {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     name,
		"email":    strings.ToLower(name) + "@example.com",
		"password": "secret123",
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[session](s.t, w)
}

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

func assertError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	body := decode[errorBody](t, w)
	assert.Equal(t, code, body.Code)
	assert.NotEmpty(t, body.RequestID)
}

func TestBookingFlowOverHTTP(t *testing.T) {
	s := newTestServer(t)
	driver, p1, p2 := s.register("Driver"), s.register("Alice"), s.register("Bob")

	w := s.do(http.MethodPost, "/api/vehicles", driver.Token, gin.H{
		"make": "Toyota", "model": "Avanza", "plateNumber": "ab 1234 cd", "seats": 6,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	vehicle := decode[struct {
		ID          int64  `json:"id"`
		PlateNumber string `json:"plateNumber"`
	}](t, w)
	assert.Equal(t, "AB 1234 CD", vehicle.PlateNumber)

	departure := time.Now().UTC().Add(48 * time.Hour).Format(time.RFC3339)
	w = s.do(http.MethodPost, "/api/trips", driver.Token, gin.H{
		"vehicleId":         vehicle.ID,
		"departureLocation": "Yogyakarta",
		"arrivalLocation":   "Semarang",
		"departureTime":     departure,
		"availableSeats":    3,
		"pricePerSeat":      "12.50",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	trip := decode[struct {
		ID             int64 `json:"id"`
		RemainingSeats int   `json:"remainingSeats"`
	}](t, w)
	assert.Equal(t, 3, trip.RemainingSeats)

	bookPath := fmt.Sprintf("/api/trips/%d/book", trip.ID)
	availPath := fmt.Sprintf("/api/trips/%d/availability", trip.ID)

	assertError(t, s.do(http.MethodPost, bookPath, "", gin.H{"seatsBooked": 1}), http.StatusUnauthorized, "unauthorized")

	w = s.do(http.MethodPost, bookPath, p1.Token, gin.H{"seatsBooked": 2})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	booking := decode[struct {
		ID         int64  `json:"id"`
		TotalPrice string `json:"totalPrice"`
		Status     string `json:"status"`
	}](t, w)
	assert.Equal(t, "25", booking.TotalPrice)
	assert.Equal(t, "confirmed", booking.Status)

	avail := decode[struct {
		AvailableSeats int `json:"availableSeats"`
		BookedSeats    int `json:"bookedSeats"`
		RemainingSeats int `json:"remainingSeats"`
	}](t, s.do(http.MethodGet, availPath, "", nil))
	assert.Equal(t, 3, avail.AvailableSeats)
	assert.Equal(t, 2, avail.BookedSeats)
	assert.Equal(t, 1, avail.RemainingSeats)

	assertError(t, s.do(http.MethodPost, bookPath, p2.Token, gin.H{"seatsBooked": 2}), http.StatusBadRequest, "capacity_exceeded")
	assertError(t, s.do(http.MethodPost, bookPath, driver.Token, gin.H{"seatsBooked": 1}), http.StatusBadRequest, "invalid_operation")
	assertError(t, s.do(http.MethodPost, bookPath, p1.Token, gin.H{"seatsBooked": 1}), http.StatusBadRequest, "conflict")
	assertError(t, s.do(http.MethodPost, bookPath, p2.Token, gin.H{"seatsBooked": 0}), http.StatusBadRequest, "validation_error")
	assertError(t, s.do(http.MethodPost, "/api/trips/9999/book", p2.Token, gin.H{"seatsBooked": 1}), http.StatusNotFound, "not_found")

	w = s.do(http.MethodPost, bookPath, p2.Token, gin.H{"seatsBooked": 1})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	avail = decode[struct {
		AvailableSeats int `json:"availableSeats"`
		BookedSeats    int `json:"bookedSeats"`
		RemainingSeats int `json:"remainingSeats"`
	}](t, s.do(http.MethodGet, availPath, "", nil))
	assert.Equal(t, 0, avail.RemainingSeats)

	bookingPath := fmt.Sprintf("/api/bookings/%d", booking.ID)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, bookingPath, p1.Token, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, bookingPath, driver.Token, nil).Code)
	assertError(t, s.do(http.MethodGet, bookingPath, p2.Token, nil), http.StatusForbidden, "forbidden")

	w = s.do(http.MethodGet, bookingPath+"/ticket", p1.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "ETICKET_")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	list := decode[struct {
		Items []struct {
			ID int64 `json:"id"`
		} `json:"items"`
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}](t, s.do(http.MethodGet, "/api/bookings?type=upcoming", p1.Token, nil))
	require.Len(t, list.Items, 1)
	assert.Equal(t, booking.ID, list.Items[0].ID)
	assertError(t, s.do(http.MethodGet, "/api/bookings?type=someday", p1.Token, nil), http.StatusBadRequest, "validation_error")

	w = s.do(http.MethodPut, bookingPath+"/cancel", p1.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assertError(t, s.do(http.MethodPut, bookingPath+"/cancel", p1.Token, nil), http.StatusBadRequest, "invalid_operation")

	avail = decode[struct {
		AvailableSeats int `json:"availableSeats"`
		BookedSeats    int `json:"bookedSeats"`
		RemainingSeats int `json:"remainingSeats"`
	}](t, s.do(http.MethodGet, availPath, "", nil))
	assert.Equal(t, 2, avail.RemainingSeats)

	assertError(t, s.do(http.MethodPost, bookPath, p1.Token, gin.H{"seatsBooked": 1}), http.StatusBadRequest, "conflict")
}

func TestTripSearchOverHTTP(t *testing.T) {
	s := newTestServer(t)
	driver := s.register("Driver")
	for i, to := range []string{"Semarang", "Solo"} {
		w := s.do(http.MethodPost, "/api/trips", driver.Token, gin.H{
			"departureLocation": "Yogyakarta",
			"arrivalLocation":   to,
			"departureTime":     time.Now().UTC().Add(time.Duration(24*(i+1)) * time.Hour).Format(time.RFC3339),
			"availableSeats":    2,
			"pricePerSeat":      10 + 5*i,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	type page struct {
		Items []struct {
			ArrivalLocation string `json:"arrivalLocation"`
		} `json:"items"`
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}

	all := decode[page](t, s.do(http.MethodGet, "/api/trips?from=yogya", "", nil))
	require.Len(t, all.Items, 2)
	assert.Equal(t, "Semarang", all.Items[0].ArrivalLocation, "sorted by departure")

	cheap := decode[page](t, s.do(http.MethodGet, "/api/trips?max_price=12", "", nil))
	require.Len(t, cheap.Items, 1)
	assert.Equal(t, "Semarang", cheap.Items[0].ArrivalLocation)

	paged := decode[page](t, s.do(http.MethodGet, "/api/trips?limit=1&page=2", "", nil))
	require.Len(t, paged.Items, 1)
	assert.Equal(t, 2, paged.Pagination.Total)
	assert.Equal(t, "Solo", paged.Items[0].ArrivalLocation)

	assertError(t, s.do(http.MethodGet, "/api/trips?date=tomorrow", "", nil), http.StatusBadRequest, "validation_error")
	assertError(t, s.do(http.MethodGet, "/api/trips?seats=many", "", nil), http.StatusBadRequest, "validation_error")

	mine := decode[page](t, s.do(http.MethodGet, "/api/trips/mine", driver.Token, nil))
	assert.Len(t, mine.Items, 2)
}

func TestAuthAndAdminRoutes(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("Alice")

	w := s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ALICE@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assertError(t, s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "alice@example.com", "password": "nope"}), http.StatusUnauthorized, "unauthorized")
	assertError(t, s.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Again", "email": "alice@example.com", "password": "secret123",
	}), http.StatusBadRequest, "conflict")

	me := decode[struct {
		Email string `json:"email"`
	}](t, s.do(http.MethodGet, "/api/auth/me", alice.Token, nil))
	assert.Equal(t, "alice@example.com", me.Email)

	assertError(t, s.do(http.MethodGet, "/api/admin/stats", alice.Token, nil), http.StatusForbidden, "forbidden")

	_, err := s.h.DB.Exec("UPDATE users SET role = 'admin' WHERE id = ?", alice.User.ID)
	require.NoError(t, err)
	w = s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "alice@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code)
	admin := decode[session](t, w)

	stats := decode[struct {
		Users int `json:"users"`
	}](t, s.do(http.MethodGet, "/api/admin/stats", admin.Token, nil))
	assert.Equal(t, 1, stats.Users)
}

func TestSystemRoutes(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/health", "", nil).Code)
	w := s.do(http.MethodGet, "/api/db-check", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"users_in_db":0`)

	w = s.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fumotion_http_requests_total")

	assertError(t, s.do(http.MethodGet, "/api/nope", "", nil), http.StatusNotFound, "not_found")
}
