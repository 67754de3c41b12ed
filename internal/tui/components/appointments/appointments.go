package appointments

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/viera97/calendar-appointments/internal/i18n"
	"github.com/viera97/calendar-appointments/internal/models"
)

type CancelMsg struct {
	Appointment models.Appointment
}

type CompleteMsg struct {
	Appointment models.Appointment
}

type ClearHistoryMsg struct{}

type Item struct {
	Appointment models.Appointment
	Section     string
	messages    *i18n.Messages
	lang        i18n.Lang
}

func (i Item) Title() string {
	a := i.Appointment
	return i18n.ShortDate(a.Date, i.lang) + " " + i18n.Time12h(a.Time) + "  " + a.ServiceName
}

func (i Item) Description() string {
	a := i.Appointment
	parts := []string{i.Section, a.ClientName, a.ClientPhone, i.messages.Status(string(a.Status))}
	return strings.Join(parts, " · ")
}

func (i Item) FilterValue() string {
	return i.Appointment.ClientName + " " + i.Appointment.ServiceName
}

type KeyMap struct {
	Cancel       key.Binding
	Complete     key.Binding
	ClearHistory key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Cancel: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "cancel"),
		),
		Complete: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "complete"),
		),
		ClearHistory: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "clear history"),
		),
	}
}

type Model struct {
	list       list.Model
	keys       KeyMap
	messages   *i18n.Messages
	lang       i18n.Lang
	hasHistory bool
}

func New(messages *i18n.Messages, lang i18n.Lang, width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = messages.TabAppointments
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Cancel, keys.Complete, keys.ClearHistory}
	}
	l.AdditionalFullHelpKeys = l.AdditionalShortHelpKeys

	return Model{list: l, keys: keys, messages: messages, lang: lang}
}

// SetAppointments shows upcoming appointments first, then the history.
func (m *Model) SetAppointments(upcoming, history []models.Appointment) {
	items := make([]list.Item, 0, len(upcoming)+len(history))
	for _, a := range upcoming {
		items = append(items, Item{Appointment: a, Section: m.messages.Upcoming, messages: m.messages, lang: m.lang})
	}
	for _, a := range history {
		items = append(items, Item{Appointment: a, Section: m.messages.History, messages: m.messages, lang: m.lang})
	}
	m.hasHistory = len(history) > 0
	m.list.SetItems(items)
}

// Len returns the number of listed appointments.
func (m Model) Len() int {
	return len(m.list.Items())
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.Cancel):
			if i, ok := m.list.SelectedItem().(Item); ok && i.Appointment.Status == models.StatusScheduled {
				return m, func() tea.Msg { return CancelMsg{Appointment: i.Appointment} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Complete):
			if i, ok := m.list.SelectedItem().(Item); ok && i.Appointment.Status == models.StatusScheduled {
				return m, func() tea.Msg { return CompleteMsg{Appointment: i.Appointment} }
			}
			return m, nil
		case key.Matches(msg, m.keys.ClearHistory):
			if m.hasHistory {
				return m, func() tea.Msg { return ClearHistoryMsg{} }
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  " + m.messages.NoAppointments
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
