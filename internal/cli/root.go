package cli

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"

	"google.golang.org/api/option"

	"github.com/viera97/calendar-appointments/internal/backup"
	"github.com/viera97/calendar-appointments/internal/booking"
	"github.com/viera97/calendar-appointments/internal/catalog"
	"github.com/viera97/calendar-appointments/internal/i18n"
	"github.com/viera97/calendar-appointments/internal/keyring"
	"github.com/viera97/calendar-appointments/internal/logger"
	"github.com/viera97/calendar-appointments/internal/models"
	"github.com/viera97/calendar-appointments/internal/notifier"
	"github.com/viera97/calendar-appointments/internal/remote/api"
	"github.com/viera97/calendar-appointments/internal/remote/gcal"
	"github.com/viera97/calendar-appointments/internal/slots"
	"github.com/viera97/calendar-appointments/internal/storage"
	"github.com/viera97/calendar-appointments/internal/storage/postgres"
	"github.com/viera97/calendar-appointments/internal/utils"
)

// RemoteConfig describes the remote calendars appointments are mirrored to.
type RemoteConfig struct {
	APIURL   string
	APIToken string
	NoAPI    bool

	GoogleClientID     string
	GoogleClientSecret string
	GoogleCalendarID   string
	GoogleRedirectURL  string
}

type Context struct {
	Store  storage.Provider
	Remote RemoteConfig
	// Lang overrides the language stored in the settings.
	Lang string
	// CatalogConn reads services from an external PostgreSQL services table
	// instead of the local store.
	CatalogConn string
	Now         func() time.Time
	// Calendars replaces the remotes built from Remote. Tests use it.
	Calendars []booking.Calendar
	// Notify is called after bookings and cancellations. Defaults to the tray notifier.
	Notify func(ctx context.Context, title, text string) error
}

func (c *Context) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Session is everything a command needs once the store is loaded.
type Session struct {
	ctx      *Context
	Settings models.Settings
	Location *time.Location
	Catalog  catalog.Catalog
	Lang     i18n.Lang
	Messages *i18n.Messages
	closers  []func() error
}

// Open reads the settings and resolves timezone, language and catalog.
func (c *Context) Open() (*Session, error) {
	settings, err := c.Store.GetSettings()
	if err != nil {
		return nil, err
	}
	models.ApplyDefaultSettings(&settings)

	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		return nil, err
	}

	langName := settings.Language
	if c.Lang != "" {
		langName = c.Lang
	}
	lang, err := i18n.ParseLang(langName)
	if err != nil {
		return nil, err
	}

	s := &Session{
		ctx:      c,
		Settings: settings,
		Location: loc,
		Lang:     lang,
		Messages: i18n.For(lang),
	}

	if c.CatalogConn != "" {
		pg, err := catalog.OpenPostgres(c.CatalogConn)
		if err != nil {
			return nil, err
		}
		s.Catalog = pg
		s.closers = append(s.closers, pg.Close)
	} else {
		s.Catalog = catalog.FromStore(c.Store)
	}
	return s, nil
}

// Close releases the external catalog connection, if any.
func (s *Session) Close() error {
	var errs []error
	for _, fn := range s.closers {
		errs = append(errs, fn())
	}
	return errors.Join(errs...)
}

// Today returns the current date in the business timezone.
func (s *Session) Today() string {
	return utils.TodayIn(s.ctx.now(), s.Location)
}

// Now returns the current time in the business timezone.
func (s *Session) Now() time.Time {
	return s.ctx.now().In(s.Location)
}

// Generator builds the slot generator for the configured availability policy.
// excludeID leaves one appointment out of the ledger.
func (s *Session) Generator(excludeID string) (*slots.Generator, error) {
	source, err := slots.SourceFromSettings(s.Settings, s.ctx.Store, s.Catalog, rand.New(rand.NewSource(s.ctx.now().UnixNano())))
	if err != nil {
		return nil, err
	}
	if ledger, ok := source.(slots.LedgerSource); ok {
		ledger.ExcludeID = excludeID
		source = ledger
	}
	return slots.NewGenerator(s.Catalog, s.Settings.Hours(), s.Settings.SlotGranularityMin, source,
		slots.WithClock(s.ctx.now), slots.WithLocation(s.Location)), nil
}

// Booking builds the booking service with every configured remote calendar.
func (s *Session) Booking(ctx context.Context) *booking.Service {
	return booking.New(s.ctx.Store, s.Catalog,
		booking.WithCalendars(s.ctx.BuildCalendars(ctx, s.Location)...),
		booking.WithClock(s.ctx.now))
}

// BuildCalendars returns the remotes that are configured and usable. A remote
// that cannot be built is skipped with a warning.
func (c *Context) BuildCalendars(ctx context.Context, loc *time.Location) []booking.Calendar {
	if c.Calendars != nil {
		return c.Calendars
	}

	var calendars []booking.Calendar
	if client, err := c.APIClient(loc); err != nil {
		logger.Warn("backend API disabled", "error", err)
	} else if client != nil {
		calendars = append(calendars, client)
	}

	if c.Remote.GoogleClientID != "" {
		cal, err := c.GoogleCalendar(ctx, loc)
		switch {
		case errors.Is(err, gcal.ErrNotAuthorized):
			logger.Debug("google calendar not authorized, skipping")
		case err != nil:
			logger.Warn("google calendar disabled", "error", err)
		default:
			calendars = append(calendars, cal)
		}
	}
	return calendars
}

// APIClient returns the backend client, or nil when the API is turned off.
func (c *Context) APIClient(loc *time.Location) (*api.Client, error) {
	if c.Remote.NoAPI {
		return nil, nil
	}
	token := c.Remote.APIToken
	if token == "" {
		if t, err := keyring.Get(keyring.APIToken); err == nil {
			token = t
		} else if !errors.Is(err, keyring.ErrNotFound) {
			logger.Debug("api token not read from keyring", "error", err)
		}
	}
	return api.New(api.Config{BaseURL: c.Remote.APIURL, Token: token, Location: loc})
}

// Authenticator returns the Google OAuth helper for the configured client.
func (c *Context) Authenticator() (*gcal.Authenticator, error) {
	return gcal.NewAuthenticator(gcal.AuthConfig{
		ClientID:     c.Remote.GoogleClientID,
		ClientSecret: c.Remote.GoogleClientSecret,
		RedirectURL:  c.Remote.GoogleRedirectURL,
	}, gcal.KeyringTokenStore{})
}

// GoogleCalendar returns an authorized Google Calendar client.
func (c *Context) GoogleCalendar(ctx context.Context, loc *time.Location) (*gcal.Calendar, error) {
	auth, err := c.Authenticator()
	if err != nil {
		return nil, err
	}
	ts, err := auth.TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	return gcal.New(ctx, c.Remote.GoogleCalendarID, loc, option.WithTokenSource(ts))
}

// PerformAutomaticBackup creates a backup and only logs failures. PostgreSQL
// stores are backed up by the database server, not here.
func (c *Context) PerformAutomaticBackup() {
	if _, ok := c.Store.(*postgres.Store); ok {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.Create(); err != nil {
		logger.Warn("automatic backup failed", "error", err)
	}
}

// SendNotice forwards a notice to the tray app. A missing tray is not an error.
func (c *Context) SendNotice(ctx context.Context, title, text string) {
	notify := c.Notify
	if notify == nil {
		notify = notifier.New().Notify
	}
	if err := notify(ctx, title, text); err != nil {
		if errors.Is(err, notifier.ErrTrayNotRunning) {
			logger.Debug("tray not running, notice dropped", "title", title)
			return
		}
		logger.Warn("failed to send notice", "error", err)
	}
}

// ProviderList joins the provider names of failed remotes.
func ProviderList(errs []booking.RemoteError) string {
	names := make([]string, 0, len(errs))
	seen := map[string]bool{}
	for _, e := range errs {
		if !seen[e.Provider] {
			seen[e.Provider] = true
			names = append(names, e.Provider)
		}
	}
	return strings.Join(names, ", ")
}

// BookedNotice renders the message shown after a submission.
func (s *Session) BookedNotice(receipt booking.Receipt) string {
	m := s.Messages
	switch receipt.Outcome {
	case booking.OutcomeSuccess:
		return i18n.Fill(m.BookedDescription,
			"date", i18n.LongDate(receipt.Appointment.Date, s.Lang),
			"time", i18n.Time12h(receipt.Appointment.Time))
	case booking.OutcomePartial:
		return i18n.Fill(m.PartialNotice, "providers", ProviderList(receipt.RemoteErrors))
	}
	return m.FailureNotice
}

// CancelNotice renders the message shown after a cancellation.
func (s *Session) CancelNotice(receipt booking.Receipt) string {
	m := s.Messages
	switch receipt.Outcome {
	case booking.OutcomeSuccess:
		return m.Cancelled
	case booking.OutcomePartial:
		return i18n.Fill(m.CancelPartial, "providers", ProviderList(receipt.RemoteErrors))
	}
	return m.CancelFailure
}
