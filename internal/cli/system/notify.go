package system

import (
	"context"
	"fmt"
	"time"

	"github.com/viera97/calendar-appointments/internal/booking"
	"github.com/viera97/calendar-appointments/internal/cli"
	"github.com/viera97/calendar-appointments/internal/constants"
	"github.com/viera97/calendar-appointments/internal/i18n"
	"github.com/viera97/calendar-appointments/internal/models"
)

// RemindCmd is meant to run once a minute from cron or a systemd timer. It
// notifies about appointments that start exactly Offset minutes from now.
type RemindCmd struct {
	Offset int  `help:"Minutes before the appointment to send the reminder." default:"30"`
	DryRun bool `help:"Print reminders to stdout instead of sending them."`
}

func (c *RemindCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Open()
	if err != nil {
		return err
	}
	defer sess.Close()

	appts, err := ctx.Store.GetAppointments()
	if err != nil {
		return fmt.Errorf("failed to load appointments: %w", err)
	}

	now := sess.Now()
	due := dueReminders(booking.Upcoming(appts, now, sess.Location), now, sess.Location, c.Offset)
	if len(due) == 0 {
		if c.DryRun {
			fmt.Println("No reminders due.")
		}
		return nil
	}

	for _, appt := range due {
		msg := i18n.Fill(sess.Messages.Reminder,
			"service", appt.ServiceName,
			"client", appt.ClientName,
			"time", i18n.Time12h(appt.Time))
		if c.DryRun {
			fmt.Println("[DryRun] " + msg)
			continue
		}
		ctx.SendNotice(context.Background(), constants.AppName, msg)
	}
	return nil
}

// dueReminders returns the appointments whose start is offset whole minutes after now.
func dueReminders(appts []models.Appointment, now time.Time, loc *time.Location, offset int) []models.Appointment {
	var due []models.Appointment
	for _, appt := range appts {
		start, err := appt.Start(loc)
		if err != nil {
			continue
		}
		until := start.Sub(now)
		if until < 0 {
			continue
		}
		if int(until/time.Minute) == offset {
			due = append(due, appt)
		}
	}
	return due
}
