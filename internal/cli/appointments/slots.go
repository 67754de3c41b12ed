package appointments

import (
	"context"
	"fmt"

	"github.com/viera97/calendar-appointments/internal/cli"
	"github.com/viera97/calendar-appointments/internal/i18n"
	"github.com/viera97/calendar-appointments/internal/utils"
)

type SlotsCmd struct {
	Service string `arg:"" help:"Service id."`
	Date    string `arg:"" optional:"" help:"Date (YYYY-MM-DD), defaults to today."`
	All     bool   `help:"Also show taken slots."`
}

func (c *SlotsCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Open()
	if err != nil {
		return err
	}
	defer sess.Close()

	date := c.Date
	if date == "" {
		date = sess.Today()
	}
	if !utils.ValidateDateFormat(date) {
		return fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", date)
	}

	gen, err := sess.Generator("")
	if err != nil {
		return err
	}
	found, err := gen.Slots(context.Background(), c.Service, date)
	if err != nil {
		return err
	}

	fmt.Printf("%s - %s\n", sess.Messages.TimeTitle, i18n.LongDate(date, sess.Lang))
	shown := 0
	for _, s := range found {
		if !s.Available && !c.All {
			continue
		}
		marker := "✓"
		if !s.Available {
			marker = "✗"
		}
		fmt.Printf("  %s %s (%s)\n", marker, s.Time, i18n.Time12h(s.Time))
		shown++
	}
	if shown == 0 {
		fmt.Println("  " + sess.Messages.NoSlots)
	}
	return nil
}

type ServicesCmd struct{}

func (c *ServicesCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Open()
	if err != nil {
		return err
	}
	defer sess.Close()

	services, err := sess.Catalog.Services(context.Background())
	if err != nil {
		return fmt.Errorf("failed to load services: %w", err)
	}

	fmt.Println(sess.Messages.TabServices + ":")
	for _, svc := range services {
		fmt.Printf("  [%s] %s  %d %s  %s\n", svc.ID, svc.Name, svc.DurationMin, sess.Messages.Minutes, i18n.Price(svc.Price))
		if svc.Description != "" {
			fmt.Printf("      %s\n", svc.Description)
		}
	}
	return nil
}
