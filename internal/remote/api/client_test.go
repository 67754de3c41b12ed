package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viera97/calendar-appointments/internal/models"
)

func bogota(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Bogota")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	return loc
}

func appointment() models.Appointment {
	return models.Appointment{
		ID:          "apt_1741600000000_abc123def",
		ClientName:  "Ana Gómez",
		ClientPhone: "+573001234567",
		ServiceID:   "3",
		ServiceName: "Facial Hidratante",
		Date:        "2025-03-10",
		Time:        "10:00",
		Status:      models.StatusScheduled,
		CreatedAt:   "2025-03-09T15:00:00Z",
	}
}

func newClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := New(Config{BaseURL: url + "/", Token: "tok", Location: bogota(t)})
	require.NoError(t, err)
	return c
}

func TestNewRequest(t *testing.T) {
	c := newClient(t, "http://example.test")
	facial := &models.Service{ID: "3", Name: "Facial Hidratante", DurationMin: 90}

	req, err := c.NewRequest(appointment(), facial)
	require.NoError(t, err)
	assert.Equal(t, "Ana Gómez", req.ClientName)
	assert.Equal(t, "+573001234567", req.PhoneNumber)
	assert.Equal(t, "Facial Hidratante", req.ServiceType)
	assert.Equal(t, "2025-03-10T15:00:00Z", req.StartTime)
	assert.Equal(t, "2025-03-10T16:30:00Z", req.EndTime)
	assert.Equal(t, "America/Bogota", req.Timezone)
	assert.Contains(t, req.AdditionalNotes, "Cita ID: apt_1741600000000_abc123def")

	req, err = c.NewRequest(appointment(), nil)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10T16:00:00Z", req.EndTime)

	bad := appointment()
	bad.Time = "25:00"
	_, err = c.NewRequest(bad, nil)
	assert.Error(t, err)
}

func TestCreate(t *testing.T) {
	var got AppointmentRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/appointments", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"evt_42","message":"ok"}`))
	}))
	defer server.Close()

	id, err := newClient(t, server.URL).Create(context.Background(), appointment(), nil)
	require.NoError(t, err)
	assert.Equal(t, "evt_42", id)
	assert.Equal(t, "Ana Gómez", got.ClientName)
}

func TestCreateFallsBackToLocalID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	id, err := newClient(t, server.URL).Create(context.Background(), appointment(), nil)
	require.NoError(t, err)
	assert.Equal(t, appointment().ID, id)
}

func TestCreateStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "calendar quota exceeded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newClient(t, server.URL).Create(context.Background(), appointment(), nil)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.Status)
	assert.Equal(t, "calendar quota exceeded", statusErr.Body)
	assert.Contains(t, err.Error(), "POST returned status 503")
}

func TestCreateTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newClient(t, url).Create(context.Background(), appointment(), nil)
	assert.Error(t, err)
}

func TestUpdateAndDeleteIgnoreMissingEndpoints(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := newClient(t, server.URL)
	assert.NoError(t, c.Update(context.Background(), "evt_42", appointment(), nil))
	assert.NoError(t, c.Delete(context.Background(), "evt_42"))
	assert.Equal(t, []string{"PUT /appointments/evt_42", "DELETE /appointments/evt_42"}, paths)
}

func TestDeleteTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	assert.Error(t, newClient(t, url).Delete(context.Background(), "evt_42"))
}

func TestHealth(t *testing.T) {
	healthy := true
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		if !healthy {
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	c := newClient(t, server.URL)
	assert.True(t, c.Health(context.Background()))
	healthy = false
	assert.False(t, c.Health(context.Background()))

	server.Close()
	assert.False(t, c.Health(context.Background()))
}

func TestNewValidatesURL(t *testing.T) {
	_, err := New(Config{BaseURL: "not a url"})
	assert.Error(t, err)

	c, err := New(Config{})
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8000", c.BaseURL())
	assert.Equal(t, "api", c.Name())
}
