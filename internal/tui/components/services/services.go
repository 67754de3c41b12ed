package services

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/viera97/calendar-appointments/internal/i18n"
	"github.com/viera97/calendar-appointments/internal/models"
)

// SelectMsg starts a booking for the chosen service.
type SelectMsg struct {
	Service models.Service
}

type Item struct {
	Service models.Service
	minutes string
}

func (i Item) Title() string { return i.Service.Name }

func (i Item) Description() string {
	desc := fmt.Sprintf("%d %s | %s", i.Service.DurationMin, i.minutes, i18n.Price(i.Service.Price))
	if i.Service.Description != "" {
		desc += " | " + i.Service.Description
	}
	return desc
}

func (i Item) FilterValue() string { return i.Service.Name }

type Model struct {
	list   list.Model
	choose key.Binding
}

func New(services []models.Service, messages *i18n.Messages, width, height int) Model {
	items := make([]list.Item, len(services))
	for i, s := range services {
		items[i] = Item{Service: s, minutes: messages.Minutes}
	}

	l := list.New(items, list.NewDefaultDelegate(), width, height)
	l.Title = messages.TabServices
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	choose := key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "book"),
	)
	l.AdditionalShortHelpKeys = func() []key.Binding { return []key.Binding{choose} }

	return Model{list: l, choose: choose}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		if key.Matches(msg, m.choose) {
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return SelectMsg{Service: i.Service} }
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return "\n  No services configured."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
