package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// Valid reports whether s is one of the known appointment statuses.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type Appointment struct {
	ID          string            `json:"id"`
	ClientName  string            `json:"clientName"`
	ClientPhone string            `json:"clientPhone"`
	ServiceID   string            `json:"serviceId"`
	ServiceName string            `json:"serviceName"`
	Date        string            `json:"date"` // YYYY-MM-DD format
	Time        string            `json:"time"` // HH:MM format
	Status      AppointmentStatus `json:"status"`
	IsNewClient bool              `json:"isNewClient,omitempty"`
	Notes       string            `json:"notes,omitempty"`
	CreatedAt   string            `json:"createdAt"` // RFC3339 timestamp
}

// AppointmentPatch carries the fields of a partial update. Nil fields are left untouched.
type AppointmentPatch struct {
	ClientName  *string
	ClientPhone *string
	Date        *string
	Time        *string
	Status      *AppointmentStatus
	Notes       *string
}

// Apply returns a copy of appt with the non-nil patch fields set.
func (p AppointmentPatch) Apply(appt Appointment) Appointment {
	if p.ClientName != nil {
		appt.ClientName = *p.ClientName
	}
	if p.ClientPhone != nil {
		appt.ClientPhone = *p.ClientPhone
	}
	if p.Date != nil {
		appt.Date = *p.Date
	}
	if p.Time != nil {
		appt.Time = *p.Time
	}
	if p.Status != nil {
		appt.Status = *p.Status
	}
	if p.Notes != nil {
		appt.Notes = *p.Notes
	}
	return appt
}

// IsEmpty reports whether the patch changes nothing.
func (p AppointmentPatch) IsEmpty() bool {
	return p.ClientName == nil && p.ClientPhone == nil && p.Date == nil &&
		p.Time == nil && p.Status == nil && p.Notes == nil
}

// StatusPatch builds a patch that only changes the status.
func StatusPatch(status AppointmentStatus) AppointmentPatch {
	return AppointmentPatch{Status: &status}
}

// NewAppointmentID returns an id of the form apt_<unix-ms>_<9 char suffix>.
func NewAppointmentID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("apt_%d_%s", now.UnixMilli(), suffix)
}

// Start returns the appointment start in loc.
func (a Appointment) Start(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation("2006-01-02 15:04", a.Date+" "+a.Time, loc)
}

// AppointmentDraft holds the in-progress selections of one booking session.
type AppointmentDraft struct {
	CanGoToAddress *bool
	IsNewClient    *bool
	ClientName     string
	ClientPhone    string
	Date           string
	Time           string
}
