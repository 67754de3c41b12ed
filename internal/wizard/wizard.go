// Package wizard drives one booking session through its steps:
// address, newClient, contact, date, time and confirm.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/viera97/calendar-appointments/internal/booking"
	"github.com/viera97/calendar-appointments/internal/constants"
	"github.com/viera97/calendar-appointments/internal/logger"
	"github.com/viera97/calendar-appointments/internal/models"
	"github.com/viera97/calendar-appointments/internal/slots"
	"github.com/viera97/calendar-appointments/internal/validation"
)

type Step int

const (
	StepAddress Step = iota
	StepNewClient
	StepContact
	StepDate
	StepTime
	StepConfirm
)

var stepNames = [...]string{"address", "newClient", "contact", "date", "time", "confirm"}

func (s Step) String() string {
	if s < StepAddress || s > StepConfirm {
		return fmt.Sprintf("Step(%d)", int(s))
	}
	return stepNames[s]
}

// TotalSteps is the number of steps of a session.
const TotalSteps = int(StepConfirm) + 1

var (
	// ErrWrongStep is returned when an action does not belong to the current step.
	ErrWrongStep = errors.New("action not allowed in the current step")
	// ErrNoPreviousStep is returned by Back on the first step.
	ErrNoPreviousStep = errors.New("already at the first step")
	// ErrInFlight is returned while a submission is running.
	ErrInFlight = errors.New("a submission is already in progress")
	// ErrIncomplete is returned by Confirm when the draft is missing data.
	ErrIncomplete = errors.New("appointment draft is incomplete")
)

// SlotSource computes the slots of a service on a date.
type SlotSource interface {
	Slots(ctx context.Context, serviceID, date string) ([]models.TimeSlot, error)
}

// Submitter persists a finished appointment.
type Submitter interface {
	Submit(ctx context.Context, appt models.Appointment) (booking.Receipt, error)
}

type Config struct {
	Service   models.Service
	Slots     SlotSource
	Submitter Submitter
	Now       func() time.Time
	Location  *time.Location
}

type Controller struct {
	mu       sync.Mutex
	cfg      Config
	step     Step
	draft    models.AppointmentDraft
	slots    []models.TimeSlot
	inFlight atomic.Bool
}

func New(cfg Config) *Controller {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Controller{cfg: cfg}
}

func (c *Controller) Step() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// Progress returns the 1-based index of the current step and the step count.
func (c *Controller) Progress() (int, int) {
	return int(c.Step()) + 1, TotalSteps
}

func (c *Controller) Draft() models.AppointmentDraft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Slots returns the slots loaded for the selected date.
func (c *Controller) Slots() []models.TimeSlot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.TimeSlot(nil), c.slots...)
}

func (c *Controller) Service() models.Service {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg.Service
}

// Submitting reports whether Confirm is running.
func (c *Controller) Submitting() bool {
	return c.inFlight.Load()
}

// SetService switches the booked service and restarts the session.
func (c *Controller) SetService(svc models.Service) error {
	if c.inFlight.Load() {
		return ErrInFlight
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.Service = svc
	c.reset()
	return nil
}

// enter locks the controller for a step action.
func (c *Controller) enter(step Step) error {
	if c.inFlight.Load() {
		return ErrInFlight
	}
	c.mu.Lock()
	if c.step != step {
		current := c.step
		c.mu.Unlock()
		return fmt.Errorf("%w: %s expected, at %s", ErrWrongStep, step, current)
	}
	return nil
}

func (c *Controller) AnswerAddress(canGo bool) error {
	if err := c.enter(StepAddress); err != nil {
		return err
	}
	defer c.mu.Unlock()
	c.draft.CanGoToAddress = &canGo
	c.step = StepNewClient
	return nil
}

func (c *Controller) AnswerClientType(isNew bool) error {
	if err := c.enter(StepNewClient); err != nil {
		return err
	}
	defer c.mu.Unlock()
	c.draft.IsNewClient = &isNew
	c.step = StepContact
	return nil
}

// SubmitContact validates both fields and advances only when both pass.
// Field problems come back in ContactErrors, never as the error.
func (c *Controller) SubmitContact(name, phone string) (validation.ContactErrors, error) {
	if err := c.enter(StepContact); err != nil {
		return validation.ContactErrors{}, err
	}
	defer c.mu.Unlock()

	c.draft.ClientName = name
	c.draft.ClientPhone = phone
	problems := validation.ValidateContact(validation.Contact{Name: name, Phone: phone})
	if !problems.Valid() {
		return problems, nil
	}
	c.draft.ClientName = strings.TrimSpace(name)
	c.draft.ClientPhone = strings.TrimSpace(phone)
	c.step = StepDate
	return problems, nil
}

// SelectDate loads the slots of date and clears any chosen time. The session
// advances to the time step when at least one slot is available. Malformed
// or past dates return a *validation.FieldError.
func (c *Controller) SelectDate(ctx context.Context, date string) ([]models.TimeSlot, error) {
	if err := c.enter(StepDate); err != nil {
		return nil, err
	}
	defer c.mu.Unlock()

	day, err := time.ParseInLocation(constants.DateFormat, date, c.cfg.Location)
	if err != nil {
		return nil, &validation.FieldError{Field: "date", Code: validation.CodeDateInvalid}
	}
	today := c.cfg.Now().In(c.cfg.Location).Format(constants.DateFormat)
	if day.Format(constants.DateFormat) < today {
		return nil, &validation.FieldError{Field: "date", Code: validation.CodeDatePast}
	}

	found, err := c.cfg.Slots.Slots(ctx, c.cfg.Service.ID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load slots for %s: %w", date, err)
	}

	c.draft.Date = date
	c.draft.Time = ""
	c.slots = found
	if len(slots.Available(found)) > 0 {
		c.step = StepTime
	}
	return append([]models.TimeSlot(nil), found...), nil
}

// SelectTime picks one of the available slots of the selected date.
func (c *Controller) SelectTime(t string) error {
	if err := c.enter(StepTime); err != nil {
		return err
	}
	defer c.mu.Unlock()

	slot, ok := slots.Find(c.slots, t)
	if !ok || !slot.Available {
		return &validation.FieldError{Field: "time", Code: validation.CodeTimeUnavailable}
	}
	c.draft.Time = slot.Time
	c.step = StepConfirm
	return nil
}

// Back returns to the previous step. Selections are kept so they can be edited.
func (c *Controller) Back() error {
	if c.inFlight.Load() {
		return ErrInFlight
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step == StepAddress {
		return ErrNoPreviousStep
	}
	c.step--
	return nil
}

// Reset clears the draft and returns to the first step.
func (c *Controller) Reset() error {
	if c.inFlight.Load() {
		return ErrInFlight
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
	return nil
}

func (c *Controller) reset() {
	c.step = StepAddress
	c.draft = models.AppointmentDraft{}
	c.slots = nil
}

// Appointment assembles the appointment the current draft describes.
func (c *Controller) Appointment() (models.Appointment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.appointment()
}

func (c *Controller) appointment() (models.Appointment, error) {
	d := c.draft
	if d.Date == "" || d.Time == "" {
		return models.Appointment{}, fmt.Errorf("%w: date and time are required", ErrIncomplete)
	}
	if !validation.ValidateContact(validation.Contact{Name: d.ClientName, Phone: d.ClientPhone}).Valid() {
		return models.Appointment{}, fmt.Errorf("%w: contact information is invalid", ErrIncomplete)
	}
	now := c.cfg.Now()
	return models.Appointment{
		ID:          models.NewAppointmentID(now),
		ClientName:  d.ClientName,
		ClientPhone: d.ClientPhone,
		ServiceID:   c.cfg.Service.ID,
		ServiceName: c.cfg.Service.Name,
		Date:        d.Date,
		Time:        d.Time,
		Status:      models.StatusScheduled,
		IsNewClient: d.IsNewClient != nil && *d.IsNewClient,
		CreatedAt:   now.UTC().Format(time.RFC3339),
	}, nil
}

// Confirm submits the draft. On success, full or partial, the session resets.
// When the local save fails the session stays on confirm so it can be retried.
func (c *Controller) Confirm(ctx context.Context) (receipt booking.Receipt, err error) {
	if err := c.enter(StepConfirm); err != nil {
		return booking.Receipt{Outcome: booking.OutcomeFailure}, err
	}
	appt, err := c.appointment()
	c.mu.Unlock()
	if err != nil {
		return booking.Receipt{Outcome: booking.OutcomeFailure}, err
	}

	if !c.inFlight.CompareAndSwap(false, true) {
		return booking.Receipt{Outcome: booking.OutcomeFailure}, ErrInFlight
	}
	defer c.inFlight.Store(false)

	receipt, err = c.submit(ctx, appt)
	if err != nil {
		return receipt, err
	}

	c.mu.Lock()
	c.reset()
	c.mu.Unlock()
	return receipt, nil
}

func (c *Controller) submit(ctx context.Context, appt models.Appointment) (receipt booking.Receipt, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("submission panicked", "id", appt.ID, "panic", r)
			receipt = booking.Receipt{Appointment: appt, Outcome: booking.OutcomeFailure}
			err = fmt.Errorf("unexpected submission failure: %v", r)
		}
	}()
	return c.cfg.Submitter.Submit(ctx, appt)
}
