package appointments

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viera97/calendar-appointments/internal/i18n"
	"github.com/viera97/calendar-appointments/internal/models"
)

func appt(id string, status models.AppointmentStatus) models.Appointment {
	return models.Appointment{
		ID:          id,
		ClientName:  "Ana Gómez",
		ClientPhone: "+573001234567",
		ServiceName: "Corte de Cabello",
		Date:        "2025-03-11",
		Time:        "14:30",
		Status:      status,
	}
}

func keyPress(r string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(r)}
}

func TestItemRendering(t *testing.T) {
	m := New(i18n.For(i18n.English), i18n.English, 80, 20)
	m.SetAppointments([]models.Appointment{appt("a1", models.StatusScheduled)}, nil)

	require.Equal(t, 1, m.Len())
	item := m.list.Items()[0].(Item)
	assert.Contains(t, item.Title(), "2:30 PM")
	assert.Contains(t, item.Title(), "Corte de Cabello")
	assert.Contains(t, item.Description(), "Upcoming")
	assert.Contains(t, item.Description(), "Scheduled")
	assert.Contains(t, item.FilterValue(), "Ana Gómez")
}

func TestCancelEmitsMessageForScheduled(t *testing.T) {
	m := New(i18n.For(i18n.Spanish), i18n.Spanish, 80, 20)
	m.SetAppointments([]models.Appointment{appt("a1", models.StatusScheduled)}, nil)

	_, cmd := m.Update(keyPress("c"))
	require.NotNil(t, cmd)
	msg, ok := cmd().(CancelMsg)
	require.True(t, ok)
	assert.Equal(t, "a1", msg.Appointment.ID)
}

func TestCancelIgnoredForHistory(t *testing.T) {
	m := New(i18n.For(i18n.Spanish), i18n.Spanish, 80, 20)
	m.SetAppointments(nil, []models.Appointment{appt("a1", models.StatusCompleted)})

	_, cmd := m.Update(keyPress("c"))
	assert.Nil(t, cmd)
	_, cmd = m.Update(keyPress("x"))
	assert.Nil(t, cmd)
}

func TestClearHistoryNeedsHistory(t *testing.T) {
	m := New(i18n.For(i18n.Spanish), i18n.Spanish, 80, 20)
	m.SetAppointments([]models.Appointment{appt("a1", models.StatusScheduled)}, nil)

	_, cmd := m.Update(keyPress("D"))
	assert.Nil(t, cmd)

	m.SetAppointments(nil, []models.Appointment{appt("a2", models.StatusCancelled)})
	_, cmd = m.Update(keyPress("D"))
	require.NotNil(t, cmd)
	assert.IsType(t, ClearHistoryMsg{}, cmd())
}

func TestEmptyView(t *testing.T) {
	m := New(i18n.For(i18n.English), i18n.English, 80, 20)
	assert.Contains(t, m.View(), "You have no appointments")
}
