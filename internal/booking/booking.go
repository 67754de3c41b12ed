// Package booking commits appointments to the local record store and then
// mirrors them, best effort, to the configured remote calendars.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/viera97/calendar-appointments/internal/catalog"
	"github.com/viera97/calendar-appointments/internal/logger"
	"github.com/viera97/calendar-appointments/internal/models"
)

var (
	// ErrLocalPersistence wraps any failure to write the local record store.
	ErrLocalPersistence = errors.New("failed to save appointment locally")
	// ErrNotScheduled is returned when cancelling, rescheduling or completing
	// an appointment that is no longer scheduled.
	ErrNotScheduled = errors.New("appointment is not scheduled")
)

// Calendar is a remote calendar that mirrors local appointments.
type Calendar interface {
	Name() string
	// Create pushes a new appointment and returns the id the remote assigned.
	Create(ctx context.Context, appt models.Appointment, svc *models.Service) (string, error)
	Update(ctx context.Context, remoteID string, appt models.Appointment, svc *models.Service) error
	Delete(ctx context.Context, remoteID string) error
}

// Store is the part of the record store booking needs.
type Store interface {
	GetAppointments() ([]models.Appointment, error)
	GetAppointment(id string) (models.Appointment, error)
	SaveAppointment(models.Appointment) error
	UpdateAppointment(id string, patch models.AppointmentPatch) error
	CancelAppointment(id string) error
	ClearHistory() error
	SaveSyncRecord(models.SyncRecord) error
	GetSyncRecords(appointmentID string) ([]models.SyncRecord, error)
}

type Outcome int

const (
	// OutcomeSuccess: saved locally and on every remote.
	OutcomeSuccess Outcome = iota
	// OutcomePartial: saved locally, at least one remote failed.
	OutcomePartial
	// OutcomeFailure: nothing changed locally.
	OutcomeFailure
	// OutcomeAborted: the user declined the confirmation.
	OutcomeAborted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomePartial:
		return "partial"
	case OutcomeFailure:
		return "failure"
	case OutcomeAborted:
		return "aborted"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// RemoteError is a failed call to one remote calendar.
type RemoteError struct {
	Provider string
	Err      error
}

func (e RemoteError) Error() string {
	return e.Provider + ": " + e.Err.Error()
}

// Receipt reports what an operation did.
type Receipt struct {
	Appointment  models.Appointment
	Outcome      Outcome
	RemoteErrors []RemoteError
}

func (r *Receipt) remoteFailed(provider string, err error) {
	r.RemoteErrors = append(r.RemoteErrors, RemoteError{Provider: provider, Err: err})
	r.Outcome = OutcomePartial
}

// ConfirmFunc asks the user to confirm an action on appt.
type ConfirmFunc func(appt models.Appointment) bool

type Service struct {
	store     Store
	services  catalog.Catalog
	calendars []Calendar
	now       func() time.Time
}

type Option func(*Service)

// WithCalendars sets the remote calendars, called in order.
func WithCalendars(calendars ...Calendar) Option {
	return func(s *Service) {
		for _, c := range calendars {
			if c != nil {
				s.calendars = append(s.calendars, c)
			}
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(store Store, services catalog.Catalog, opts ...Option) *Service {
	s := &Service{store: store, services: services, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Calendars returns the provider names of the configured remotes.
func (s *Service) Calendars() []string {
	names := make([]string, len(s.calendars))
	for i, c := range s.calendars {
		names[i] = c.Name()
	}
	return names
}

// Submit saves appt locally, then creates it on every remote calendar.
// A local failure returns OutcomeFailure with ErrLocalPersistence and no remote
// is contacted. Remote failures only downgrade the outcome to partial.
func (s *Service) Submit(ctx context.Context, appt models.Appointment) (Receipt, error) {
	now := s.now()
	if appt.ID == "" {
		appt.ID = models.NewAppointmentID(now)
	}
	if appt.Status == "" {
		appt.Status = models.StatusScheduled
	}
	if appt.CreatedAt == "" {
		appt.CreatedAt = now.UTC().Format(time.RFC3339)
	}

	receipt := Receipt{Appointment: appt, Outcome: OutcomeFailure}
	if err := s.store.SaveAppointment(appt); err != nil {
		logger.Error("local save failed", "id", appt.ID, "error", err)
		return receipt, fmt.Errorf("%w: %v", ErrLocalPersistence, err)
	}
	receipt.Outcome = OutcomeSuccess
	logger.Info("appointment saved", "id", appt.ID, "date", appt.Date, "time", appt.Time)

	svc := s.lookupService(ctx, appt.ServiceID)
	for _, cal := range s.calendars {
		s.create(ctx, cal, appt, svc, &receipt)
	}
	return receipt, nil
}

func (s *Service) create(ctx context.Context, cal Calendar, appt models.Appointment, svc *models.Service, receipt *Receipt) {
	var remoteID string
	err := guard(func() error {
		var err error
		remoteID, err = cal.Create(ctx, appt, svc)
		return err
	})
	if err != nil {
		logger.Warn("remote create failed", "provider", cal.Name(), "id", appt.ID, "error", err)
		receipt.remoteFailed(cal.Name(), err)
		s.recordSync(appt.ID, cal.Name(), "", models.SyncFailed, err)
		return
	}
	s.recordSync(appt.ID, cal.Name(), remoteID, models.SyncSynced, nil)
}

// Cancel marks a scheduled appointment cancelled after confirm agrees, then
// removes it from every remote it was synced to. A nil confirm is treated as yes.
func (s *Service) Cancel(ctx context.Context, id string, confirm ConfirmFunc) (Receipt, error) {
	appt, err := s.store.GetAppointment(id)
	if err != nil {
		return Receipt{Outcome: OutcomeFailure}, fmt.Errorf("failed to load appointment %s: %w", id, err)
	}
	receipt := Receipt{Appointment: appt, Outcome: OutcomeFailure}
	if appt.Status != models.StatusScheduled {
		return receipt, fmt.Errorf("%w: %s is %s", ErrNotScheduled, id, appt.Status)
	}
	if confirm != nil && !confirm(appt) {
		receipt.Outcome = OutcomeAborted
		return receipt, nil
	}

	if err := s.store.CancelAppointment(id); err != nil {
		return receipt, fmt.Errorf("%w: %v", ErrLocalPersistence, err)
	}
	receipt.Appointment.Status = models.StatusCancelled
	receipt.Outcome = OutcomeSuccess
	logger.Info("appointment cancelled", "id", id)

	records, err := s.store.GetSyncRecords(id)
	if err != nil {
		logger.Warn("failed to read sync records", "id", id, "error", err)
		return receipt, nil
	}
	for _, rec := range records {
		if rec.RemoteID == "" || rec.Status == models.SyncRemoved {
			continue
		}
		cal := s.calendar(rec.Provider)
		if cal == nil {
			logger.Warn("calendar not configured, remote event left in place", "provider", rec.Provider, "id", id)
			continue
		}
		err := guard(func() error { return cal.Delete(ctx, rec.RemoteID) })
		if err != nil {
			logger.Warn("remote delete failed", "provider", rec.Provider, "id", id, "error", err)
			receipt.remoteFailed(rec.Provider, err)
			continue
		}
		s.recordSync(id, rec.Provider, rec.RemoteID, models.SyncRemoved, nil)
	}
	return receipt, nil
}

// Reschedule moves a scheduled appointment locally, then updates each remote.
// Remotes that never received the appointment get it created instead.
func (s *Service) Reschedule(ctx context.Context, id, date, tm string) (Receipt, error) {
	appt, err := s.store.GetAppointment(id)
	if err != nil {
		return Receipt{Outcome: OutcomeFailure}, fmt.Errorf("failed to load appointment %s: %w", id, err)
	}
	receipt := Receipt{Appointment: appt, Outcome: OutcomeFailure}
	if appt.Status != models.StatusScheduled {
		return receipt, fmt.Errorf("%w: %s is %s", ErrNotScheduled, id, appt.Status)
	}

	patch := models.AppointmentPatch{Date: &date, Time: &tm}
	if err := s.store.UpdateAppointment(id, patch); err != nil {
		return receipt, fmt.Errorf("%w: %v", ErrLocalPersistence, err)
	}
	appt = patch.Apply(appt)
	receipt.Appointment = appt
	receipt.Outcome = OutcomeSuccess
	logger.Info("appointment rescheduled", "id", id, "date", date, "time", tm)

	records, err := s.store.GetSyncRecords(id)
	if err != nil {
		logger.Warn("failed to read sync records", "id", id, "error", err)
	}
	remoteIDs := make(map[string]string, len(records))
	for _, rec := range records {
		if rec.Status != models.SyncRemoved {
			remoteIDs[rec.Provider] = rec.RemoteID
		}
	}

	svc := s.lookupService(ctx, appt.ServiceID)
	for _, cal := range s.calendars {
		remoteID := remoteIDs[cal.Name()]
		if remoteID == "" {
			s.create(ctx, cal, appt, svc, &receipt)
			continue
		}
		err := guard(func() error { return cal.Update(ctx, remoteID, appt, svc) })
		if err != nil {
			logger.Warn("remote update failed", "provider", cal.Name(), "id", id, "error", err)
			receipt.remoteFailed(cal.Name(), err)
			s.recordSync(id, cal.Name(), remoteID, models.SyncFailed, err)
			continue
		}
		s.recordSync(id, cal.Name(), remoteID, models.SyncSynced, nil)
	}
	return receipt, nil
}

// Complete marks a scheduled appointment completed. Remotes are not touched.
func (s *Service) Complete(id string) (models.Appointment, error) {
	appt, err := s.store.GetAppointment(id)
	if err != nil {
		return models.Appointment{}, fmt.Errorf("failed to load appointment %s: %w", id, err)
	}
	if appt.Status != models.StatusScheduled {
		return appt, fmt.Errorf("%w: %s is %s", ErrNotScheduled, id, appt.Status)
	}
	if err := s.store.UpdateAppointment(id, models.StatusPatch(models.StatusCompleted)); err != nil {
		return appt, fmt.Errorf("%w: %v", ErrLocalPersistence, err)
	}
	appt.Status = models.StatusCompleted
	return appt, nil
}

// ClearHistory drops every appointment that is not scheduled.
func (s *Service) ClearHistory() error {
	if err := s.store.ClearHistory(); err != nil {
		return fmt.Errorf("%w: %v", ErrLocalPersistence, err)
	}
	return nil
}

func (s *Service) calendar(name string) Calendar {
	for _, c := range s.calendars {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

func (s *Service) lookupService(ctx context.Context, id string) *models.Service {
	if s.services == nil {
		return nil
	}
	svc, err := s.services.Service(ctx, id)
	if err != nil {
		logger.Debug("service lookup failed, using fallback duration", "service", id, "error", err)
		return nil
	}
	return &svc
}

func (s *Service) recordSync(id, provider, remoteID string, status models.SyncStatus, cause error) {
	rec := models.SyncRecord{
		AppointmentID: id,
		Provider:      provider,
		RemoteID:      remoteID,
		Status:        status,
		UpdatedAt:     s.now().UTC().Format(time.RFC3339),
	}
	if cause != nil {
		rec.Error = cause.Error()
	}
	if err := s.store.SaveSyncRecord(rec); err != nil {
		logger.Warn("failed to save sync record", "id", id, "provider", provider, "error", err)
	}
}

// guard runs fn, turning a panic into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
