// Package api mirrors appointments to the business backend over REST.
package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/viera97/calendar-appointments/internal/constants"
	"github.com/viera97/calendar-appointments/internal/logger"
	"github.com/viera97/calendar-appointments/internal/models"
)

// AppointmentRequest is the body of POST and PUT /appointments.
type AppointmentRequest struct {
	ClientName      string `json:"client_name"`
	PhoneNumber     string `json:"phone_number"`
	ServiceType     string `json:"service_type"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	AdditionalNotes string `json:"additional_notes"`
	Timezone        string `json:"timezone"`
}

// AppointmentResponse is what the backend answers to POST /appointments.
type AppointmentResponse struct {
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}

// StatusError is returned when the backend answers a non-2xx status.
type StatusError struct {
	Method string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned status %d", e.Method, e.Status)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Method, e.Status, e.Body)
}

type Config struct {
	BaseURL string
	// Token is sent as a bearer token when set.
	Token    string
	Location *time.Location
	Timeout  time.Duration
}

type Client struct {
	baseURL string
	token   string
	loc     *time.Location
	http    *http.Client
}

func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = constants.DefaultAPIURL
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API URL %q", cfg.BaseURL)
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = constants.DefaultRemoteTimeout
	}
	return &Client{
		baseURL: base,
		token:   strings.TrimSpace(cfg.Token),
		loc:     cfg.Location,
		http:    &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (c *Client) Name() string {
	return constants.ProviderAPI
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// NewRequest builds the backend payload. The end time is start plus the
// service duration, or FallbackDurationMin when svc is nil.
func (c *Client) NewRequest(appt models.Appointment, svc *models.Service) (AppointmentRequest, error) {
	start, err := appt.Start(c.loc)
	if err != nil {
		return AppointmentRequest{}, fmt.Errorf("invalid appointment date/time: %w", err)
	}
	duration := constants.FallbackDurationMin
	serviceType := appt.ServiceName
	if svc != nil {
		if svc.DurationMin > 0 {
			duration = svc.DurationMin
		}
		if serviceType == "" {
			serviceType = svc.Name
		}
	}
	end := start.Add(time.Duration(duration) * time.Minute)

	notes := fmt.Sprintf("Cita ID: %s\nEstado: %s\nCreada: %s", appt.ID, appt.Status, appt.CreatedAt)
	if appt.Notes != "" {
		notes += "\n" + appt.Notes
	}

	return AppointmentRequest{
		ClientName:      appt.ClientName,
		PhoneNumber:     appt.ClientPhone,
		ServiceType:     serviceType,
		StartTime:       start.UTC().Format(time.RFC3339),
		EndTime:         end.UTC().Format(time.RFC3339),
		AdditionalNotes: notes,
		Timezone:        c.loc.String(),
	}, nil
}

// Create posts the appointment. Non-2xx answers are errors. The returned id is
// the backend's, or the local id when the backend does not send one.
func (c *Client) Create(ctx context.Context, appt models.Appointment, svc *models.Service) (string, error) {
	body, err := c.NewRequest(appt, svc)
	if err != nil {
		return "", err
	}
	res, err := c.do(ctx, http.MethodPost, "/appointments", body)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if err := checkStatus(res); err != nil {
		return "", err
	}

	var out AppointmentResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil && !errors.Is(err, io.EOF) {
		logger.Debug("unreadable create response", "error", err)
	}
	logger.Info("appointment sent to backend", "id", appt.ID, "remote_id", out.ID)
	if out.ID == "" {
		return appt.ID, nil
	}
	return out.ID, nil
}

// Update puts the new appointment data. A non-2xx answer means the backend
// has no update endpoint and is logged, not returned.
func (c *Client) Update(ctx context.Context, remoteID string, appt models.Appointment, svc *models.Service) error {
	body, err := c.NewRequest(appt, svc)
	if err != nil {
		return err
	}
	res, err := c.do(ctx, http.MethodPut, "/appointments/"+url.PathEscape(remoteID), body)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if err := checkStatus(res); err != nil {
		logger.Warn("update endpoint not available", "id", remoteID, "error", err)
	}
	return nil
}

// Delete removes the appointment. Like Update, non-2xx answers are only logged.
func (c *Client) Delete(ctx context.Context, remoteID string) error {
	res, err := c.do(ctx, http.MethodDelete, "/appointments/"+url.PathEscape(remoteID), nil)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if err := checkStatus(res); err != nil {
		logger.Warn("delete endpoint not available", "id", remoteID, "error", err)
	}
	return nil
}

// Health reports whether GET /health answers 2xx.
func (c *Client) Health(ctx context.Context) bool {
	res, err := c.do(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		logger.Debug("backend not reachable", "url", c.baseURL, "error", err)
		return false
	}
	defer res.Body.Close()
	return res.StatusCode >= 200 && res.StatusCode < 300
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return res, nil
}

func checkStatus(res *http.Response) error {
	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(res.Body, 2048))
	return &StatusError{
		Method: res.Request.Method,
		Status: res.StatusCode,
		Body:   strings.TrimSpace(string(msg)),
	}
}
