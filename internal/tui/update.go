package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/viera97/calendar-appointments/internal/booking"
	"github.com/viera97/calendar-appointments/internal/constants"
	"github.com/viera97/calendar-appointments/internal/i18n"
	"github.com/viera97/calendar-appointments/internal/logger"
	"github.com/viera97/calendar-appointments/internal/models"
	"github.com/viera97/calendar-appointments/internal/slots"
	"github.com/viera97/calendar-appointments/internal/tui/components/appointments"
	"github.com/viera97/calendar-appointments/internal/tui/components/services"
	"github.com/viera97/calendar-appointments/internal/validation"
	"github.com/viera97/calendar-appointments/internal/wizard"
)

type noticeLevel int

const (
	noticeInfo noticeLevel = iota
	noticeSuccess
	noticeWarning
	noticeError
)

type submitResultMsg struct {
	receipt booking.Receipt
	err     error
}

type cancelResultMsg struct {
	receipt booking.Receipt
	err     error
}

// actionResultMsg reports the end of a store action started from the TUI.
type actionResultMsg struct {
	notice string
	err    error
}

const mainTabs = 3

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		h, v := docStyle.GetFrameSize()
		listHeight := msg.Height - v - 4
		m.appointmentsModel.SetSize(msg.Width-h, listHeight)
		m.servicesModel.SetSize(msg.Width-h, listHeight)
		return m, nil

	case submitResultMsg:
		return m.handleSubmitResult(msg)

	case cancelResultMsg:
		return m.handleCancelResult(msg)

	case actionResultMsg:
		if msg.err != nil {
			logger.Error("tui action failed", "error", msg.err)
			m.setNotice(noticeError, m.failureText(msg.err))
		} else {
			m.setNotice(noticeSuccess, msg.notice)
		}
		m.refreshAppointments()
		return m, nil

	case appointments.CancelMsg:
		appt := msg.Appointment
		m.pendingCancel = &appt
		m.state = constants.StateConfirmCancel
		return m, nil

	case appointments.CompleteMsg:
		return m, m.completeCmd(msg.Appointment)

	case appointments.ClearHistoryMsg:
		m.state = constants.StateConfirmClearHistory
		return m, nil

	case services.SelectMsg:
		if m.busy() {
			return m, nil
		}
		if err := m.startBooking(msg.Service); err != nil {
			m.setNotice(noticeError, m.failureText(err))
			return m, nil
		}
		m.state = constants.StateBook
		m.formError = ""
		return m.resetForm()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.forward(msg)
}

// forward passes a message to the component of the current tab.
func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.state {
	case constants.StateBook:
		if m.busy() {
			return m, nil
		}
		return m.updateForm(msg)
	case constants.StateAppointments:
		m.appointmentsModel, cmd = m.appointmentsModel.Update(msg)
	case constants.StateServices:
		m.servicesModel, cmd = m.servicesModel.Update(msg)
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.state {
	case constants.StateConfirmCancel:
		return m.handleConfirmCancel(msg)
	case constants.StateConfirmClearHistory:
		return m.handleConfirmClearHistory(msg)
	}

	switch msg.String() {
	case "tab":
		m.state = (m.state + 1) % mainTabs
		return m, nil
	case "shift+tab":
		m.state = (m.state + mainTabs - 1) % mainTabs
		return m, nil
	}

	if m.state == constants.StateBook {
		if msg.Type == tea.KeyEsc {
			return m.back()
		}
		return m.forward(msg)
	}

	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "?":
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	return m.forward(msg)
}

func (m Model) handleConfirmCancel(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		appt := m.pendingCancel
		m.pendingCancel = nil
		m.state = constants.StateAppointments
		if appt == nil {
			return m, nil
		}
		return m, m.cancelCmd(appt.ID)
	case "n", "N", "esc", "q":
		m.pendingCancel = nil
		m.state = constants.StateAppointments
	}
	return m, nil
}

func (m Model) handleConfirmClearHistory(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.state = constants.StateAppointments
		return m, m.clearHistoryCmd()
	case "n", "N", "esc", "q":
		m.state = constants.StateAppointments
	}
	return m, nil
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		next, nextCmd := m.advance()
		return next, tea.Batch(cmd, nextCmd)
	case huh.StateAborted:
		return m.resetForm()
	}
	return m, cmd
}

// advance hands the completed form to the wizard and moves to the next form.
func (m Model) advance() (Model, tea.Cmd) {
	msgs := m.sess.Messages
	in := m.inputs
	m.formError = ""
	m.notice = ""

	if m.wizard == nil {
		svc, ok := m.findService(in.ServiceID)
		if !ok {
			m.formError = fmt.Sprintf("%v: %s", errUnknownService, in.ServiceID)
			return m.resetForm()
		}
		if err := m.startBooking(svc); err != nil {
			m.formError = m.failureText(err)
		}
		return m.resetForm()
	}

	var err error
	switch m.wizard.Step() {
	case wizard.StepAddress:
		err = m.wizard.AnswerAddress(in.CanGo)
	case wizard.StepNewClient:
		err = m.wizard.AnswerClientType(in.IsNew)
	case wizard.StepContact:
		var problems validation.ContactErrors
		problems, err = m.wizard.SubmitContact(in.Name, in.Phone)
		if err == nil && !problems.Valid() {
			m.formError = contactProblems(msgs, problems)
		}
	case wizard.StepDate:
		var found []models.TimeSlot
		found, err = m.wizard.SelectDate(context.Background(), in.Date)
		in.Time = ""
		if err == nil && len(slots.Available(found)) == 0 {
			m.formError = msgs.NoSlots
		}
	case wizard.StepTime:
		err = m.wizard.SelectTime(in.Time)
	case wizard.StepConfirm:
		if !in.Confirm {
			err = m.wizard.Back()
			break
		}
		m.submitting = true
		m.setNotice(noticeInfo, msgs.Submitting)
		return m, m.submitCmd()
	}

	if err != nil {
		logger.Debug("wizard step rejected", "step", m.wizard.Step(), "error", err)
		m.formError = localize(msgs, err)
	}
	return m.resetForm()
}

// back moves the wizard one step back. From the first step it returns to
// the service picker.
func (m Model) back() (tea.Model, tea.Cmd) {
	if m.busy() {
		return m, nil
	}
	m.formError = ""
	if m.wizard == nil {
		return m, nil
	}
	err := m.wizard.Back()
	if errors.Is(err, wizard.ErrNoPreviousStep) {
		m.wizard = nil
	} else if err != nil {
		m.formError = localize(m.sess.Messages, err)
	}
	return m.resetForm()
}

// busy reports whether a booking submission is running.
func (m Model) busy() bool {
	return m.submitting || (m.wizard != nil && m.wizard.Submitting())
}

func (m Model) resetForm() (Model, tea.Cmd) {
	m.form = m.buildForm()
	return m, m.form.Init()
}

func (m Model) handleSubmitResult(msg submitResultMsg) (tea.Model, tea.Cmd) {
	m.submitting = false
	msgs := m.sess.Messages

	if msg.err != nil {
		logger.Error("booking failed", "error", msg.err)
		m.setNotice(noticeError, m.failureText(msg.err))
		return m.resetForm()
	}

	text := m.sess.BookedNotice(msg.receipt)
	if msg.receipt.Outcome == booking.OutcomePartial {
		m.setNotice(noticeWarning, text)
	} else {
		m.setNotice(noticeSuccess, msgs.BookedTitle+" "+text)
	}
	*m.inputs = bookingInputs{ServiceID: m.inputs.ServiceID, CanGo: true}
	m.refreshAppointments()

	next, cmd := m.resetForm()
	return next, tea.Batch(cmd, m.noticeCmd(msgs.BookedTitle, text))
}

func (m Model) handleCancelResult(msg cancelResultMsg) (tea.Model, tea.Cmd) {
	msgs := m.sess.Messages
	if msg.err != nil {
		logger.Error("cancellation failed", "error", msg.err)
		m.setNotice(noticeError, msgs.CancelFailure)
		m.refreshAppointments()
		return m, nil
	}

	text := m.sess.CancelNotice(msg.receipt)
	switch msg.receipt.Outcome {
	case booking.OutcomeSuccess:
		m.setNotice(noticeSuccess, text)
	case booking.OutcomePartial:
		m.setNotice(noticeWarning, text)
	default:
		m.setNotice(noticeError, text)
	}
	m.refreshAppointments()
	return m, m.noticeCmd(msgs.CancelTitle, text)
}

func (m Model) submitCmd() tea.Cmd {
	w := m.wizard
	return guarded(func() tea.Msg {
		receipt, err := w.Confirm(context.Background())
		return submitResultMsg{receipt: receipt, err: err}
	})
}

func (m Model) cancelCmd(id string) tea.Cmd {
	svc := m.booking
	return guarded(func() tea.Msg {
		receipt, err := svc.Cancel(context.Background(), id, nil)
		return cancelResultMsg{receipt: receipt, err: err}
	})
}

func (m Model) completeCmd(appt models.Appointment) tea.Cmd {
	svc := m.booking
	msgs := m.sess.Messages
	return guarded(func() tea.Msg {
		done, err := svc.Complete(appt.ID)
		if err != nil {
			return actionResultMsg{err: err}
		}
		return actionResultMsg{notice: done.ServiceName + ": " + msgs.Status(string(done.Status))}
	})
}

func (m Model) clearHistoryCmd() tea.Cmd {
	svc := m.booking
	msgs := m.sess.Messages
	return guarded(func() tea.Msg {
		if err := svc.ClearHistory(); err != nil {
			return actionResultMsg{err: err}
		}
		return actionResultMsg{notice: msgs.HistoryCleared}
	})
}

// noticeCmd forwards a notice to the tray app without blocking the UI.
func (m Model) noticeCmd(title, text string) tea.Cmd {
	app := m.app
	return func() tea.Msg {
		app.SendNotice(context.Background(), title, text)
		return nil
	}
}

// guarded turns a panic inside cmd into a failed action.
func guarded(cmd func() tea.Msg) tea.Cmd {
	return func() (msg tea.Msg) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("tui action panicked", "panic", r)
				msg = actionResultMsg{err: fmt.Errorf("unexpected failure: %v", r)}
			}
		}()
		return cmd()
	}
}

func (m *Model) setNotice(level noticeLevel, text string) {
	m.notice = text
	m.noticeLevel = level
}

func (m Model) failureText(err error) string {
	if errors.Is(err, booking.ErrLocalPersistence) {
		return m.sess.Messages.FailureNotice
	}
	return m.sess.Messages.GenericFailure
}

// localize renders field errors in the session language.
func localize(msgs *i18n.Messages, err error) string {
	var fe *validation.FieldError
	if errors.As(err, &fe) {
		return msgs.Problem(string(fe.Code))
	}
	return err.Error()
}

func contactProblems(msgs *i18n.Messages, problems validation.ContactErrors) string {
	var out []string
	if problems.Name != "" {
		out = append(out, msgs.Problem(string(problems.Name)))
	}
	if problems.Phone != "" {
		out = append(out, msgs.Problem(string(problems.Phone)))
	}
	return strings.Join(out, "; ")
}
