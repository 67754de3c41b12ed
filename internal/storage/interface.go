package storage

import (
	"errors"

	"github.com/viera97/calendar-appointments/internal/models"
)

var (
	// ErrNotFound is returned when an appointment id does not exist.
	ErrNotFound = errors.New("appointment not found")
	// ErrNotInitialized is returned by Load when the store was never initialized.
	ErrNotInitialized = errors.New("storage not initialized, run 'citas init' first")
)

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Services
	GetServices() ([]models.Service, error)
	SaveService(models.Service) error

	// Appointments
	GetAppointments() ([]models.Appointment, error)
	GetAppointment(id string) (models.Appointment, error)
	SaveAppointment(models.Appointment) error
	// UpdateAppointment applies patch to an existing appointment. It returns
	// ErrNotFound when no appointment has the given id.
	UpdateAppointment(id string, patch models.AppointmentPatch) error
	CancelAppointment(id string) error
	DeleteAppointment(id string) error
	// ClearHistory removes every appointment that is no longer scheduled.
	ClearHistory() error
	ClearAll() error

	// Remote sync metadata
	SaveSyncRecord(models.SyncRecord) error
	GetSyncRecords(appointmentID string) ([]models.SyncRecord, error)

	// Utils
	GetConfigPath() string
}
