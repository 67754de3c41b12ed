package appointments

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/viera97/calendar-appointments/internal/booking"
	"github.com/viera97/calendar-appointments/internal/cli"
	"github.com/viera97/calendar-appointments/internal/i18n"
	"github.com/viera97/calendar-appointments/internal/models"
)

type ListCmd struct {
	Upcoming bool `help:"Only show upcoming appointments." xor:"view"`
	History  bool `help:"Only show past, completed and cancelled appointments." xor:"view"`
	JSON     bool `help:"Print the appointments as JSON."`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
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
	upcoming := booking.Upcoming(appts, now, sess.Location)
	history := booking.History(appts, now, sess.Location)

	if c.JSON {
		var out any = map[string][]models.Appointment{"upcoming": upcoming, "history": history}
		if c.Upcoming {
			out = upcoming
		} else if c.History {
			out = history
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	m := sess.Messages
	if !c.History {
		printSection(m.Upcoming, upcoming, sess)
	}
	if !c.Upcoming {
		if !c.History {
			fmt.Println()
		}
		printSection(m.History, history, sess)
	}
	return nil
}

func printSection(title string, appts []models.Appointment, sess *cli.Session) {
	fmt.Printf("%s (%d)\n", title, len(appts))
	if len(appts) == 0 {
		fmt.Println("  " + sess.Messages.NoAppointments)
		return
	}
	for _, a := range appts {
		fmt.Printf("  %s  %s %s  %-20s %s  [%s]\n",
			a.ID,
			i18n.ShortDate(a.Date, sess.Lang),
			i18n.Time12h(a.Time),
			a.ServiceName,
			a.ClientName,
			sess.Messages.Status(string(a.Status)))
	}
}
