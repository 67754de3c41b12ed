// Package gcal mirrors appointments to a Google Calendar.
package gcal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/viera97/calendar-appointments/internal/constants"
	"github.com/viera97/calendar-appointments/internal/logger"
	"github.com/viera97/calendar-appointments/internal/models"
)

// appointmentIDKey tags events with the local appointment id.
const appointmentIDKey = "citas_appointment_id"

type Calendar struct {
	svc        *calendar.Service
	calendarID string
	loc        *time.Location
}

// Event is the summary of a calendar event shown by "calendar events".
type Event struct {
	ID            string
	Summary       string
	Start         time.Time
	End           time.Time
	AppointmentID string
	Link          string
}

// New builds a calendar client. Callers pass option.WithTokenSource with an
// Authenticator's token source; tests point it at a fake server instead.
func New(ctx context.Context, calendarID string, loc *time.Location, opts ...option.ClientOption) (*Calendar, error) {
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	if calendarID == "" {
		calendarID = constants.DefaultGoogleCalendarID
	}
	if loc == nil {
		loc = time.Local
	}
	return &Calendar{svc: svc, calendarID: calendarID, loc: loc}, nil
}

func (c *Calendar) Name() string {
	return constants.ProviderGoogle
}

func (c *Calendar) CalendarID() string {
	return c.calendarID
}

// NewEvent converts an appointment to a calendar event. The event lasts the
// service duration, or FallbackDurationMin when svc is nil.
func (c *Calendar) NewEvent(appt models.Appointment, svc *models.Service) (*calendar.Event, error) {
	start, err := appt.Start(c.loc)
	if err != nil {
		return nil, fmt.Errorf("invalid appointment date/time: %w", err)
	}
	duration := constants.FallbackDurationMin
	if svc != nil && svc.DurationMin > 0 {
		duration = svc.DurationMin
	}
	end := start.Add(time.Duration(duration) * time.Minute)

	serviceName := appt.ServiceName
	if serviceName == "" && svc != nil {
		serviceName = svc.Name
	}

	var desc strings.Builder
	fmt.Fprintf(&desc, "Cliente: %s\nTeléfono: %s\n", appt.ClientName, appt.ClientPhone)
	if appt.IsNewClient {
		desc.WriteString("Cliente nuevo\n")
	}
	if appt.Notes != "" {
		desc.WriteString(appt.Notes + "\n")
	}
	fmt.Fprintf(&desc, "Cita ID: %s", appt.ID)

	return &calendar.Event{
		Summary:     fmt.Sprintf("%s - %s", serviceName, appt.ClientName),
		Description: desc.String(),
		Start: &calendar.EventDateTime{
			DateTime: start.Format(time.RFC3339),
			TimeZone: c.loc.String(),
		},
		End: &calendar.EventDateTime{
			DateTime: end.Format(time.RFC3339),
			TimeZone: c.loc.String(),
		},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{appointmentIDKey: appt.ID},
		},
	}, nil
}

func (c *Calendar) Create(ctx context.Context, appt models.Appointment, svc *models.Service) (string, error) {
	event, err := c.NewEvent(appt, svc)
	if err != nil {
		return "", err
	}
	created, err := c.svc.Events.Insert(c.calendarID, event).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to insert event: %w", err)
	}
	logger.Info("calendar event created", "id", appt.ID, "event", created.Id)
	return created.Id, nil
}

func (c *Calendar) Update(ctx context.Context, eventID string, appt models.Appointment, svc *models.Service) error {
	event, err := c.NewEvent(appt, svc)
	if err != nil {
		return err
	}
	if _, err := c.svc.Events.Update(c.calendarID, eventID, event).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to update event %s: %w", eventID, err)
	}
	return nil
}

// Delete removes an event. An event that is already gone counts as deleted.
func (c *Calendar) Delete(ctx context.Context, eventID string) error {
	err := c.svc.Events.Delete(c.calendarID, eventID).Context(ctx).Do()
	if isGone(err) {
		logger.Debug("calendar event already removed", "event", eventID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete event %s: %w", eventID, err)
	}
	return nil
}

// Upcoming lists up to max events starting after from, earliest first.
func (c *Calendar) Upcoming(ctx context.Context, from time.Time, max int64) ([]Event, error) {
	if max <= 0 {
		max = 10
	}
	res, err := c.svc.Events.List(c.calendarID).
		Context(ctx).
		TimeMin(from.Format(time.RFC3339)).
		ShowDeleted(false).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(max).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	events := make([]Event, 0, len(res.Items))
	for _, item := range res.Items {
		e := Event{ID: item.Id, Summary: item.Summary, Link: item.HtmlLink}
		e.Start = parseEventTime(item.Start, c.loc)
		e.End = parseEventTime(item.End, c.loc)
		if item.ExtendedProperties != nil {
			e.AppointmentID = item.ExtendedProperties.Private[appointmentIDKey]
		}
		events = append(events, e)
	}
	return events, nil
}

func parseEventTime(dt *calendar.EventDateTime, loc *time.Location) time.Time {
	if dt == nil {
		return time.Time{}
	}
	if dt.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, dt.DateTime); err == nil {
			return t.In(loc)
		}
	}
	if dt.Date != "" {
		if t, err := time.ParseInLocation(constants.DateFormat, dt.Date, loc); err == nil {
			return t
		}
	}
	return time.Time{}
}

func isGone(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone
	}
	return false
}
