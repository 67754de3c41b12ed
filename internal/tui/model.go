package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/viera97/calendar-appointments/internal/booking"
	"github.com/viera97/calendar-appointments/internal/cli"
	"github.com/viera97/calendar-appointments/internal/constants"
	"github.com/viera97/calendar-appointments/internal/logger"
	"github.com/viera97/calendar-appointments/internal/models"
	"github.com/viera97/calendar-appointments/internal/tui/components/appointments"
	"github.com/viera97/calendar-appointments/internal/tui/components/services"
	"github.com/viera97/calendar-appointments/internal/wizard"
)

// Submitter persists a finished booking and cancels appointments.
type Submitter interface {
	wizard.Submitter
	Cancel(ctx context.Context, id string, confirm booking.ConfirmFunc) (booking.Receipt, error)
	Complete(id string) (models.Appointment, error)
	ClearHistory() error
}

// bookingInputs holds the values bound to the wizard forms.
type bookingInputs struct {
	ServiceID string
	CanGo     bool
	IsNew     bool
	Name      string
	Phone     string
	Date      string
	Time      string
	Confirm   bool
}

type Model struct {
	app     *cli.Context
	sess    *cli.Session
	booking Submitter
	slots   wizard.SlotSource

	services []models.Service
	wizard   *wizard.Controller
	inputs   *bookingInputs
	form     *huh.Form

	state             constants.SessionState
	keys              KeyMap
	help              help.Model
	appointmentsModel appointments.Model
	servicesModel     services.Model

	notice        string
	noticeLevel   noticeLevel
	formError     string
	submitting    bool
	pendingCancel *models.Appointment
	quitting      bool
	width         int
	height        int
}

// NewModel builds the TUI for an open session.
func NewModel(ctx context.Context, app *cli.Context, sess *cli.Session) (Model, error) {
	gen, err := sess.Generator("")
	if err != nil {
		return Model{}, err
	}
	return newModel(ctx, app, sess, sess.Booking(ctx), gen)
}

func newModel(ctx context.Context, app *cli.Context, sess *cli.Session, submitter Submitter, source wizard.SlotSource) (Model, error) {
	svcs, err := sess.Catalog.Services(ctx)
	if err != nil {
		return Model{}, err
	}

	m := Model{
		app:               app,
		sess:              sess,
		booking:           submitter,
		slots:             source,
		services:          svcs,
		inputs:            &bookingInputs{},
		state:             constants.StateBook,
		keys:              DefaultKeyMap(),
		help:              help.New(),
		appointmentsModel: appointments.New(sess.Messages, sess.Lang, 0, 0),
		servicesModel:     services.New(svcs, sess.Messages, 0, 0),
	}
	m.refreshAppointments()
	m.form = m.buildForm()
	return m, nil
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.state {
	case constants.StateBook:
		keys = append(keys, m.keys.Back)
	case constants.StateAppointments:
		keys = append(keys, m.keys.Cancel, m.keys.Complete, m.keys.ClearHistory)
	case constants.StateServices:
		keys = append(keys, m.keys.Enter)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}
	navigation := []key.Binding{m.keys.Up, m.keys.Down, m.keys.Enter, m.keys.Back}

	var actions []key.Binding
	if m.state == constants.StateAppointments {
		actions = []key.Binding{m.keys.Cancel, m.keys.Complete, m.keys.ClearHistory}
	}
	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// refreshAppointments reloads both appointment lists from the store.
func (m *Model) refreshAppointments() {
	appts, err := m.app.Store.GetAppointments()
	if err != nil {
		logger.Warn("failed to load appointments", "error", err)
		return
	}
	now := m.sess.Now()
	m.appointmentsModel.SetAppointments(
		booking.Upcoming(appts, now, m.sess.Location),
		booking.History(appts, now, m.sess.Location))
}

// startBooking points the wizard at svc and restarts it.
func (m *Model) startBooking(svc models.Service) error {
	if m.wizard == nil {
		m.wizard = wizard.New(wizard.Config{
			Service:   svc,
			Slots:     m.slots,
			Submitter: m.booking,
			Now:       m.sess.Now,
			Location:  m.sess.Location,
		})
	} else if err := m.wizard.SetService(svc); err != nil {
		return err
	}
	*m.inputs = bookingInputs{ServiceID: svc.ID, CanGo: true}
	return nil
}

func (m Model) findService(id string) (models.Service, bool) {
	for _, s := range m.services {
		if s.ID == id {
			return s, true
		}
	}
	return models.Service{}, false
}

var errUnknownService = errors.New("unknown service")
