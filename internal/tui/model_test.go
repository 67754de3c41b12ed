package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viera97/calendar-appointments/internal/booking"
	"github.com/viera97/calendar-appointments/internal/cli"
	"github.com/viera97/calendar-appointments/internal/constants"
	"github.com/viera97/calendar-appointments/internal/models"
	"github.com/viera97/calendar-appointments/internal/storage/jsonfile"
	"github.com/viera97/calendar-appointments/internal/tui/components/appointments"
	"github.com/viera97/calendar-appointments/internal/tui/components/services"
	"github.com/viera97/calendar-appointments/internal/wizard"
)

// 08:00 in America/Bogota.
var fixedNow = time.Date(2025, 3, 10, 13, 0, 0, 0, time.UTC)

func newTestModel(t *testing.T) (Model, *cli.Context) {
	t.Helper()
	store := jsonfile.NewStore(filepath.Join(t.TempDir(), "citas.json"))
	require.NoError(t, store.Init())

	app := &cli.Context{
		Store:     store,
		Now:       func() time.Time { return fixedNow },
		Calendars: []booking.Calendar{},
		Notify:    func(context.Context, string, string) error { return nil },
	}
	sess, err := app.Open()
	require.NoError(t, err)
	t.Cleanup(func() { sess.Close() })

	m, err := NewModel(context.Background(), app, sess)
	require.NoError(t, err)
	return m, app
}

func scheduled(id, date, tm string) models.Appointment {
	return models.Appointment{
		ID:          id,
		ClientName:  "Ana Gómez",
		ClientPhone: "+573001234567",
		ServiceID:   "1",
		ServiceName: "Corte de Cabello",
		Date:        date,
		Time:        tm,
		Status:      models.StatusScheduled,
	}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func TestNewModelStartsOnServicePicker(t *testing.T) {
	m, _ := newTestModel(t)

	assert.Equal(t, constants.StateBook, m.state)
	assert.Nil(t, m.wizard)
	assert.Len(t, m.services, 5)
	assert.Contains(t, m.View(), "Agendar")
}

func TestWizardBooksAppointment(t *testing.T) {
	m, app := newTestModel(t)
	msgs := m.sess.Messages

	m.inputs.ServiceID = "1"
	m, _ = m.advance()
	require.NotNil(t, m.wizard)
	assert.Equal(t, wizard.StepAddress, m.wizard.Step())

	m.inputs.CanGo = true
	m, _ = m.advance()
	assert.Equal(t, wizard.StepNewClient, m.wizard.Step())

	m.inputs.IsNew = true
	m, _ = m.advance()
	assert.Equal(t, wizard.StepContact, m.wizard.Step())

	m, _ = m.advance()
	assert.Equal(t, wizard.StepContact, m.wizard.Step())
	assert.Contains(t, m.formError, msgs.NameRequired)
	assert.Contains(t, m.formError, msgs.PhoneRequired)

	m.inputs.Name = "Ana Gómez"
	m.inputs.Phone = "+57 300 123 4567"
	m, _ = m.advance()
	assert.Empty(t, m.formError)
	assert.Equal(t, wizard.StepDate, m.wizard.Step())

	m.inputs.Date = "2025-03-11"
	m, _ = m.advance()
	assert.Equal(t, wizard.StepTime, m.wizard.Step())

	m.inputs.Time = "09:00"
	m, _ = m.advance()
	assert.Equal(t, wizard.StepConfirm, m.wizard.Step())
	assert.Contains(t, m.View(), "Ana Gómez")

	m.inputs.Confirm = true
	m, cmd := m.advance()
	require.NotNil(t, cmd)
	assert.True(t, m.submitting)
	assert.Equal(t, msgs.Submitting, m.notice)

	result := cmd()
	require.IsType(t, submitResultMsg{}, result)
	m, _ = update(t, m, result)

	assert.False(t, m.submitting)
	assert.Equal(t, noticeSuccess, m.noticeLevel)
	assert.Contains(t, m.notice, msgs.BookedTitle)
	assert.Equal(t, wizard.StepAddress, m.wizard.Step())
	assert.Equal(t, "1", m.inputs.ServiceID)
	assert.Empty(t, m.inputs.Name)
	assert.Equal(t, 1, m.appointmentsModel.Len())

	appts, err := app.Store.GetAppointments()
	require.NoError(t, err)
	require.Len(t, appts, 1)
	assert.Equal(t, "2025-03-11", appts[0].Date)
	assert.Equal(t, "09:00", appts[0].Time)
	assert.Equal(t, "Ana Gómez", appts[0].ClientName)
	assert.True(t, appts[0].IsNewClient)
}

func TestPastDateStaysOnDateStep(t *testing.T) {
	m, _ := newTestModel(t)

	m.inputs.ServiceID = "1"
	m, _ = m.advance()
	require.NoError(t, m.wizard.AnswerAddress(true))
	require.NoError(t, m.wizard.AnswerClientType(false))
	_, err := m.wizard.SubmitContact("Ana", "+573001234567")
	require.NoError(t, err)

	m.inputs.Date = "2025-03-09"
	m, _ = m.advance()
	assert.Equal(t, wizard.StepDate, m.wizard.Step())
	assert.Equal(t, m.sess.Messages.DatePast, m.formError)
}

func TestBackFromAddressReturnsToServicePicker(t *testing.T) {
	m, _ := newTestModel(t)

	m.inputs.ServiceID = "2"
	m, _ = m.advance()
	require.NotNil(t, m.wizard)

	m.inputs.CanGo = false
	m, _ = m.advance()
	assert.Equal(t, wizard.StepNewClient, m.wizard.Step())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, m.wizard)
	assert.Equal(t, wizard.StepAddress, m.wizard.Step())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, m.wizard)
	assert.Equal(t, "2", m.inputs.ServiceID)
}

func TestSubmitLocalFailureStaysOnConfirm(t *testing.T) {
	m, _ := newTestModel(t)
	m.submitting = true

	m, _ = update(t, m, submitResultMsg{err: fmt.Errorf("%w: disk full", booking.ErrLocalPersistence)})

	assert.False(t, m.submitting)
	assert.Equal(t, noticeError, m.noticeLevel)
	assert.Equal(t, m.sess.Messages.FailureNotice, m.notice)
}

func TestPartialSubmitShowsWarning(t *testing.T) {
	m, _ := newTestModel(t)
	receipt := booking.Receipt{
		Appointment:  scheduled("a1", "2025-03-11", "09:00"),
		Outcome:      booking.OutcomePartial,
		RemoteErrors: []booking.RemoteError{{Provider: "api", Err: errors.New("503")}},
	}

	m, _ = update(t, m, submitResultMsg{receipt: receipt})

	assert.Equal(t, noticeWarning, m.noticeLevel)
	assert.Contains(t, m.notice, "api")
}

func TestCancelFlow(t *testing.T) {
	m, app := newTestModel(t)
	appt := scheduled("a1", "2025-03-11", "10:00")
	require.NoError(t, app.Store.SaveAppointment(appt))
	m.refreshAppointments()
	m.state = constants.StateAppointments

	m, _ = update(t, m, appointments.CancelMsg{Appointment: appt})
	assert.Equal(t, constants.StateConfirmCancel, m.state)
	assert.Contains(t, m.View(), "Corte de Cabello")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	require.NotNil(t, cmd)
	assert.Equal(t, constants.StateAppointments, m.state)

	result := cmd()
	require.IsType(t, cancelResultMsg{}, result)
	m, _ = update(t, m, result)
	assert.Equal(t, noticeSuccess, m.noticeLevel)
	assert.Equal(t, m.sess.Messages.Cancelled, m.notice)

	got, err := app.Store.GetAppointment("a1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, got.Status)
}

func TestCancelDeclined(t *testing.T) {
	m, app := newTestModel(t)
	appt := scheduled("a1", "2025-03-11", "10:00")
	require.NoError(t, app.Store.SaveAppointment(appt))

	m, _ = update(t, m, appointments.CancelMsg{Appointment: appt})
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})

	assert.Nil(t, cmd)
	assert.Nil(t, m.pendingCancel)
	assert.Equal(t, constants.StateAppointments, m.state)

	got, err := app.Store.GetAppointment("a1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, got.Status)
}

func TestCompleteAndClearHistory(t *testing.T) {
	m, app := newTestModel(t)
	appt := scheduled("a1", "2025-03-11", "10:00")
	require.NoError(t, app.Store.SaveAppointment(appt))
	m.state = constants.StateAppointments

	_, cmd := update(t, m, appointments.CompleteMsg{Appointment: appt})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Equal(t, noticeSuccess, m.noticeLevel)
	assert.Contains(t, m.notice, "Completada")

	m, _ = update(t, m, appointments.ClearHistoryMsg{})
	assert.Equal(t, constants.StateConfirmClearHistory, m.state)

	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Equal(t, m.sess.Messages.HistoryCleared, m.notice)

	appts, err := app.Store.GetAppointments()
	require.NoError(t, err)
	assert.Empty(t, appts)
	assert.Equal(t, 0, m.appointmentsModel.Len())
}

func TestSelectServiceStartsBooking(t *testing.T) {
	m, _ := newTestModel(t)
	m.state = constants.StateServices

	m, _ = update(t, m, services.SelectMsg{Service: m.services[2]})

	assert.Equal(t, constants.StateBook, m.state)
	require.NotNil(t, m.wizard)
	assert.Equal(t, "3", m.wizard.Service().ID)
	assert.Equal(t, wizard.StepAddress, m.wizard.Step())
}

func TestTabCycling(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, constants.StateAppointments, m.state)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, constants.StateServices, m.state)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, constants.StateBook, m.state)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, constants.StateServices, m.state)
}

func TestGuardedRecoversPanic(t *testing.T) {
	cmd := guarded(func() tea.Msg { panic("boom") })

	msg := cmd()
	result, ok := msg.(actionResultMsg)
	require.True(t, ok)
	assert.ErrorContains(t, result.err, "boom")
}

func TestActionResultKeepsBookingInProgress(t *testing.T) {
	m, _ := newTestModel(t)
	m.inputs.ServiceID = "1"
	m, _ = m.advance()
	require.NotNil(t, m.wizard)
	m.inputs.Name = "Ana"
	form := m.form
	m.submitting = true

	m, cmd := update(t, m, actionResultMsg{notice: "Completada"})

	assert.Nil(t, cmd)
	assert.True(t, m.submitting)
	assert.Same(t, form, m.form)
	assert.Equal(t, "Ana", m.inputs.Name)
	assert.Equal(t, noticeSuccess, m.noticeLevel)
}
