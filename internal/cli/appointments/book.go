package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/viera97/calendar-appointments/internal/booking"
	"github.com/viera97/calendar-appointments/internal/catalog"
	"github.com/viera97/calendar-appointments/internal/cli"
	"github.com/viera97/calendar-appointments/internal/i18n"
	"github.com/viera97/calendar-appointments/internal/slots"
	"github.com/viera97/calendar-appointments/internal/validation"
	"github.com/viera97/calendar-appointments/internal/wizard"
)

// BookCmd runs the booking session non-interactively from flags.
type BookCmd struct {
	Service   string `help:"Service id (see 'citas services')." required:""`
	Name      string `help:"Client full name." required:""`
	Phone     string `help:"Client phone number." required:""`
	Date      string `help:"Appointment date (YYYY-MM-DD)." required:""`
	Time      string `help:"Start time (HH:MM)." required:""`
	NewClient bool   `help:"The client is visiting for the first time."`
}

func (c *BookCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	sess, err := ctx.Open()
	if err != nil {
		return err
	}
	defer sess.Close()

	svc, err := sess.Catalog.Service(bg, c.Service)
	if err != nil {
		if errors.Is(err, catalog.ErrUnknownService) {
			return fmt.Errorf("unknown service %q, run 'citas services' to list them", c.Service)
		}
		return err
	}

	gen, err := sess.Generator("")
	if err != nil {
		return err
	}

	bookings := sess.Booking(bg)
	w := wizard.New(wizard.Config{
		Service:   svc,
		Slots:     gen,
		Submitter: bookings,
		Now:       sess.Now,
		Location:  sess.Location,
	})

	if err := w.AnswerAddress(true); err != nil {
		return err
	}
	if err := w.AnswerClientType(c.NewClient); err != nil {
		return err
	}
	problems, err := w.SubmitContact(c.Name, c.Phone)
	if err != nil {
		return err
	}
	if !problems.Valid() {
		return contactError(sess.Messages, problems)
	}

	found, err := w.SelectDate(bg, c.Date)
	if err != nil {
		return fieldError(sess.Messages, err)
	}
	if len(slots.Available(found)) == 0 {
		return errors.New(sess.Messages.NoSlots)
	}
	if err := w.SelectTime(c.Time); err != nil {
		return fieldError(sess.Messages, err)
	}

	receipt, err := w.Confirm(bg)
	if err != nil {
		if errors.Is(err, booking.ErrLocalPersistence) {
			return fmt.Errorf("%s: %w", sess.Messages.FailureNotice, err)
		}
		return err
	}

	notice := sess.BookedNotice(receipt)
	fmt.Printf("✓ %s\n", sess.Messages.BookedTitle)
	fmt.Println(notice)
	fmt.Printf("  ID: %s\n", receipt.Appointment.ID)
	if names := bookings.Calendars(); len(names) > 0 && receipt.Outcome == booking.OutcomeSuccess {
		fmt.Printf("  Synced to: %s\n", strings.Join(names, ", "))
	}
	ctx.SendNotice(bg, sess.Messages.BookedTitle, notice)
	return nil
}

func contactError(m *i18n.Messages, problems validation.ContactErrors) error {
	var msgs []string
	if problems.Name != "" {
		msgs = append(msgs, m.Problem(string(problems.Name)))
	}
	if problems.Phone != "" {
		msgs = append(msgs, m.Problem(string(problems.Phone)))
	}
	return errors.New(strings.Join(msgs, "; "))
}

// fieldError localizes a *validation.FieldError, other errors pass through.
func fieldError(m *i18n.Messages, err error) error {
	var fe *validation.FieldError
	if errors.As(err, &fe) {
		return errors.New(m.Problem(string(fe.Code)))
	}
	return err
}
