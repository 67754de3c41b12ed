// Package remote holds the commands that manage the backend API and the
// Google Calendar connection.
package remote

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/viera97/calendar-appointments/internal/cli"
	"github.com/viera97/calendar-appointments/internal/remote/gcal"
)

type CalendarAuthCmd struct {
	Code    string        `help:"Authorization code to exchange instead of running the browser flow."`
	Timeout time.Duration `help:"How long to wait for the browser redirect." default:"5m"`
}

func (c *CalendarAuthCmd) Run(ctx *cli.Context) error {
	auth, err := ctx.Authenticator()
	if err != nil {
		if errors.Is(err, gcal.ErrMissingClient) {
			return fmt.Errorf("%w: set --google-client-id and --google-client-secret (or GOOGLE_CLIENT_ID / GOOGLE_CLIENT_SECRET)", err)
		}
		return err
	}

	bg, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if c.Code != "" {
		if err := auth.Exchange(bg, c.Code); err != nil {
			return err
		}
		fmt.Println("✓ Google Calendar authorized")
		return nil
	}

	waitCtx, cancel := context.WithTimeout(bg, c.Timeout)
	defer cancel()
	err = auth.Authorize(waitCtx, func(authURL string) error {
		fmt.Println("Open this URL in your browser to authorize citas:")
		fmt.Println()
		fmt.Println("  " + authURL)
		fmt.Println()
		fmt.Println("Waiting for the redirect...")
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Println("✓ Google Calendar authorized")
	return nil
}

type CalendarStatusCmd struct{}

func (c *CalendarStatusCmd) Run(ctx *cli.Context) error {
	if ctx.Remote.NoAPI {
		fmt.Println("ℹ Backend API: disabled")
	} else if client, err := ctx.APIClient(time.Local); err != nil {
		fmt.Printf("❌ Backend API: %v\n", err)
	} else {
		fmt.Printf("✓ Backend API: %s\n", client.BaseURL())
	}

	auth, err := ctx.Authenticator()
	switch {
	case errors.Is(err, gcal.ErrMissingClient):
		fmt.Println("ℹ Google Calendar: not configured")
	case err != nil:
		fmt.Printf("❌ Google Calendar: %v\n", err)
	case auth.Authorized():
		calendarID := ctx.Remote.GoogleCalendarID
		if calendarID == "" {
			calendarID = "primary"
		}
		fmt.Printf("✓ Google Calendar: authorized (calendar %s)\n", calendarID)
	default:
		fmt.Println("ℹ Google Calendar: not authorized, run 'citas calendar auth'")
	}
	return nil
}

type CalendarEventsCmd struct {
	Max int64 `help:"Maximum number of events to show." default:"10"`
}

func (c *CalendarEventsCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Open()
	if err != nil {
		return err
	}
	defer sess.Close()

	bg := context.Background()
	cal, err := ctx.GoogleCalendar(bg, sess.Location)
	if err != nil {
		return err
	}
	events, err := cal.Upcoming(bg, sess.Now(), c.Max)
	if err != nil {
		return err
	}

	if len(events) == 0 {
		fmt.Println("No upcoming events found.")
		return nil
	}
	fmt.Printf("Upcoming events on %s:\n", cal.CalendarID())
	for _, e := range events {
		line := fmt.Sprintf("  %s  %s", e.Start.Format("2006-01-02 15:04"), e.Summary)
		if e.AppointmentID != "" {
			line += "  [" + e.AppointmentID + "]"
		}
		fmt.Println(line)
	}
	return nil
}

type CalendarLogoutCmd struct{}

func (c *CalendarLogoutCmd) Run(ctx *cli.Context) error {
	var err error
	if auth, authErr := ctx.Authenticator(); authErr == nil {
		err = auth.Logout()
	} else {
		// Without a client config the token can still be dropped.
		err = gcal.KeyringTokenStore{}.Delete()
	}
	if err != nil {
		return fmt.Errorf("failed to remove google token: %w", err)
	}
	fmt.Println("✓ Google Calendar token removed")
	return nil
}

type APIHealthCmd struct {
	Timeout time.Duration `help:"Request timeout." default:"5s"`
}

func (c *APIHealthCmd) Run(ctx *cli.Context) error {
	client, err := ctx.APIClient(time.Local)
	if err != nil {
		return err
	}
	if client == nil {
		return errors.New("backend API is disabled")
	}

	reqCtx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()
	if !client.Health(reqCtx) {
		return fmt.Errorf("%s is not reachable", client.BaseURL())
	}
	fmt.Printf("✓ %s is healthy\n", client.BaseURL())
	return nil
}
