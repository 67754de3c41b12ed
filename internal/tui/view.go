package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/viera97/calendar-appointments/internal/constants"
	"github.com/viera97/calendar-appointments/internal/i18n"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StateBook:
		content = m.viewBook()
	case constants.StateAppointments:
		content = docStyle.Render(m.appointmentsModel.View())
	case constants.StateServices:
		content = docStyle.Render(m.servicesModel.View())
	case constants.StateConfirmCancel:
		content = m.viewConfirmCancel()
	case constants.StateConfirmClearHistory:
		content = m.viewConfirmClearHistory()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		m.viewNotice(),
		content,
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	msgs := m.sess.Messages
	active := m.state
	if active == constants.StateConfirmCancel || active == constants.StateConfirmClearHistory {
		active = constants.StateAppointments
	}

	var tabs []string
	for i, title := range []string{msgs.TabBook, msgs.TabAppointments, msgs.TabServices} {
		if active == constants.SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewNotice() string {
	if m.notice == "" {
		return ""
	}
	switch m.noticeLevel {
	case noticeSuccess:
		return successStyle.Render("✓ " + m.notice)
	case noticeWarning:
		return warningStyle.Render("⚠ " + m.notice)
	case noticeError:
		return dangerStyle.Render("✗ " + m.notice)
	}
	return progressStyle.Render(m.notice)
}

func (m Model) viewBook() string {
	if m.busy() {
		return docStyle.Render(m.sess.Messages.Submitting)
	}

	header := m.sess.Messages.Title
	if m.wizard != nil {
		step, total := m.wizard.Progress()
		svc := m.wizard.Service()
		header = fmt.Sprintf("%s · %s  %s", svc.Name, i18n.Price(svc.Price),
			progressStyle.Render(fmt.Sprintf("%d/%d", step, total)))
	}

	parts := []string{header, "", m.form.View()}
	if m.formError != "" {
		parts = append(parts, dangerStyle.Render(m.formError))
	}
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) viewConfirmCancel() string {
	question := m.sess.Messages.CancelTitle
	if m.pendingCancel != nil {
		question = i18n.Fill(m.sess.Messages.CancelQuestion, "service", m.pendingCancel.ServiceName)
	}
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(question),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}

func (m Model) viewConfirmClearHistory() string {
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			warningStyle.Render(m.sess.Messages.ClearHistoryQuestion),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
