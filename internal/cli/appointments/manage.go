package appointments

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/viera97/calendar-appointments/internal/booking"
	"github.com/viera97/calendar-appointments/internal/cli"
	"github.com/viera97/calendar-appointments/internal/i18n"
	"github.com/viera97/calendar-appointments/internal/models"
	"github.com/viera97/calendar-appointments/internal/slots"
	"github.com/viera97/calendar-appointments/internal/storage"
	"github.com/viera97/calendar-appointments/internal/utils"
)

// confirmPrompt asks a yes/no question on the terminal.
var confirmPrompt = func(title string) bool {
	var ok bool
	err := huh.NewConfirm().Title(title).Value(&ok).Run()
	return err == nil && ok
}

type CancelCmd struct {
	ID  string `arg:"" help:"Appointment id."`
	Yes bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *CancelCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	sess, err := ctx.Open()
	if err != nil {
		return err
	}
	defer sess.Close()

	m := sess.Messages
	confirm := func(appt models.Appointment) bool {
		if c.Yes {
			return true
		}
		return confirmPrompt(i18n.Fill(m.CancelQuestion, "service", appt.ServiceName))
	}

	receipt, err := sess.Booking(bg).Cancel(bg, c.ID, confirm)
	if err != nil {
		return notFound(c.ID, err)
	}
	if receipt.Outcome == booking.OutcomeAborted {
		fmt.Println("Cancellation aborted.")
		return nil
	}

	notice := sess.CancelNotice(receipt)
	fmt.Println("✓ " + notice)
	ctx.SendNotice(bg, m.CancelTitle, notice)
	return nil
}

type RescheduleCmd struct {
	ID   string `arg:"" help:"Appointment id."`
	Date string `arg:"" help:"New date (YYYY-MM-DD)."`
	Time string `arg:"" help:"New start time (HH:MM)."`
}

func (c *RescheduleCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	sess, err := ctx.Open()
	if err != nil {
		return err
	}
	defer sess.Close()

	if !utils.ValidateDateFormat(c.Date) {
		return errors.New(sess.Messages.DateInvalid)
	}
	if c.Date < sess.Today() {
		return errors.New(sess.Messages.DatePast)
	}

	appt, err := ctx.Store.GetAppointment(c.ID)
	if err != nil {
		return notFound(c.ID, err)
	}

	// The appointment's own slot must not block the move.
	gen, err := sess.Generator(appt.ID)
	if err != nil {
		return err
	}
	found, err := gen.Slots(bg, appt.ServiceID, c.Date)
	if err != nil {
		return err
	}
	if slot, ok := slots.Find(found, c.Time); !ok || !slot.Available {
		return errors.New(sess.Messages.TimeTaken)
	}

	receipt, err := sess.Booking(bg).Reschedule(bg, c.ID, c.Date, c.Time)
	if err != nil {
		return err
	}

	fmt.Printf("✓ %s → %s %s\n", c.ID, i18n.LongDate(c.Date, sess.Lang), i18n.Time12h(c.Time))
	if receipt.Outcome == booking.OutcomePartial {
		fmt.Println(i18n.Fill(sess.Messages.PartialNotice, "providers", cli.ProviderList(receipt.RemoteErrors)))
	}
	return nil
}

type CompleteCmd struct {
	ID string `arg:"" help:"Appointment id."`
}

func (c *CompleteCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Open()
	if err != nil {
		return err
	}
	defer sess.Close()

	appt, err := sess.Booking(context.Background()).Complete(c.ID)
	if err != nil {
		return notFound(c.ID, err)
	}
	fmt.Printf("✓ %s: %s\n", appt.ID, sess.Messages.Status(string(appt.Status)))
	return nil
}

type ClearHistoryCmd struct {
	Yes bool `short:"y" help:"Do not ask for confirmation."`
}

func (c *ClearHistoryCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Open()
	if err != nil {
		return err
	}
	defer sess.Close()

	if !c.Yes && !confirmPrompt(sess.Messages.ClearHistoryQuestion) {
		fmt.Println("Aborted.")
		return nil
	}
	if err := sess.Booking(context.Background()).ClearHistory(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	fmt.Println("✓ " + sess.Messages.HistoryCleared)
	return nil
}

func notFound(id string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("no appointment found with id: %s", id)
	}
	return err
}
