package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/viera97/calendar-appointments/internal/i18n"
	"github.com/viera97/calendar-appointments/internal/models"
	"github.com/viera97/calendar-appointments/internal/slots"
	"github.com/viera97/calendar-appointments/internal/utils"
	"github.com/viera97/calendar-appointments/internal/validation"
	"github.com/viera97/calendar-appointments/internal/wizard"
)

// buildForm returns the form of the current wizard step, or the service
// picker when no booking is in progress.
func (m Model) buildForm() *huh.Form {
	msgs := m.sess.Messages
	in := m.inputs

	if m.wizard == nil {
		opts := make([]huh.Option[string], len(m.services))
		for i, s := range m.services {
			label := fmt.Sprintf("%s (%d %s, %s)", s.Name, s.DurationMin, msgs.Minutes, i18n.Price(s.Price))
			opts[i] = huh.NewOption(label, s.ID)
		}
		return newForm(huh.NewSelect[string]().
			Title(msgs.Title).
			Options(opts...).
			Value(&in.ServiceID))
	}

	step := m.wizard.Step()
	desc := msgs.Step(step.String())

	switch step {
	case wizard.StepAddress:
		title := msgs.AddressQuestion
		if addr := m.sess.Settings.BusinessAddress; addr != "" {
			title += " " + addr + "?"
		}
		if phone := m.sess.Settings.BusinessPhone; phone != "" {
			desc += "\nWhatsApp: " + i18n.WhatsAppLink(phone)
		}
		return newForm(huh.NewSelect[bool]().
			Title(title).
			Description(desc).
			Options(huh.NewOption(msgs.CanGo, true), huh.NewOption(msgs.CantGo, false)).
			Value(&in.CanGo))

	case wizard.StepNewClient:
		return newForm(huh.NewSelect[bool]().
			Title(msgs.ClientQuestion).
			Description(desc).
			Options(huh.NewOption(msgs.NewClient, true), huh.NewOption(msgs.ExistingClient, false)).
			Value(&in.IsNew))

	case wizard.StepContact:
		return newForm(
			huh.NewInput().
				Title(msgs.NameLabel).
				Description(desc).
				Placeholder(msgs.NamePlaceholder).
				Value(&in.Name).
				Validate(m.localized(validation.ValidateName)),
			huh.NewInput().
				Title(msgs.PhoneLabel).
				Placeholder(msgs.PhonePlaceholder).
				Value(&in.Phone).
				Validate(m.localized(validation.ValidatePhone)),
		)

	case wizard.StepDate:
		dates := utils.UpcomingDates(m.sess.Now(), m.sess.Settings.BookingHorizonDays)
		opts := make([]huh.Option[string], len(dates))
		for i, d := range dates {
			opts[i] = huh.NewOption(i18n.LongDate(d, m.sess.Lang), d)
		}
		return newForm(huh.NewSelect[string]().
			Title(msgs.DateTitle).
			Description(desc).
			Options(opts...).
			Value(&in.Date))

	case wizard.StepTime:
		available := slots.Available(m.wizard.Slots())
		opts := make([]huh.Option[string], len(available))
		for i, s := range available {
			opts[i] = huh.NewOption(i18n.Time12h(s.Time), s.Time)
		}
		return newForm(huh.NewSelect[string]().
			Title(msgs.TimeTitle).
			Description(i18n.LongDate(in.Date, m.sess.Lang)).
			Options(opts...).
			Value(&in.Time))
	}

	svc := m.wizard.Service()
	appt, err := m.wizard.Appointment()
	if err != nil {
		d := m.wizard.Draft()
		appt = models.Appointment{ServiceName: svc.Name, Date: d.Date, Time: d.Time, ClientName: d.ClientName, ClientPhone: d.ClientPhone}
	}
	summary := fmt.Sprintf("%s · %s\n%s %s\n%s · %s",
		appt.ServiceName, i18n.Price(svc.Price),
		i18n.LongDate(appt.Date, m.sess.Lang), i18n.Time12h(appt.Time),
		appt.ClientName, appt.ClientPhone)
	in.Confirm = true
	return newForm(huh.NewConfirm().
		Title(desc).
		Description(summary).
		Affirmative(msgs.Confirm).
		Negative("←").
		Value(&in.Confirm))
}

func newForm(fields ...huh.Field) *huh.Form {
	return huh.NewForm(huh.NewGroup(fields...)).WithShowHelp(false)
}

// localized maps field validation codes to the session language.
func (m Model) localized(fn func(string) error) func(string) error {
	msgs := m.sess.Messages
	return func(s string) error {
		if err := fn(s); err != nil {
			return errors.New(localize(msgs, err))
		}
		return nil
	}
}
