package settings

import (
	"fmt"
	"strings"

	"github.com/viera97/calendar-appointments/internal/cli"
	"github.com/viera97/calendar-appointments/internal/constants"
	"github.com/viera97/calendar-appointments/internal/i18n"
	"github.com/viera97/calendar-appointments/internal/models"
	"github.com/viera97/calendar-appointments/internal/utils"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	BusinessName    *string  `help:"Business name shown on the address step."`
	BusinessPhone   *string  `help:"Business contact phone."`
	BusinessAddress *string  `help:"Address clients have to go to."`
	OpenHour        *int     `help:"Opening hour (0-23)."`
	CloseHour       *int     `help:"Closing hour (1-24)."`
	SlotMin         *int     `help:"Minutes between candidate start times."`
	Timezone        *string  `help:"IANA timezone, or Local."`
	Language        *string  `help:"Language of messages (es or en)."`
	BookingDays     *int     `help:"How many days ahead can be booked."`
	Policy          *string  `help:"Availability policy (ledger, deny-list, random, open)."`
	DenyList        *string  `help:"Comma-separated occupied start times for the deny-list policy."`
	RandomRate      *float64 `help:"Share of available slots for the random policy (0-1)."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	models.ApplyDefaultSettings(&settings)

	if c.List {
		printSettings(settings)
		return nil
	}

	updated, err := c.apply(&settings)
	if err != nil {
		return err
	}
	if !updated {
		fmt.Println("No changes specified. Use --list to view settings or flags to update them.")
		return nil
	}

	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Println("Settings updated successfully.")
	return nil
}

func (c *SettingsCmd) apply(s *models.Settings) (bool, error) {
	updated := false
	setString := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
			updated = true
		}
	}
	setInt := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
			updated = true
		}
	}

	setString(&s.BusinessName, c.BusinessName)
	setString(&s.BusinessPhone, c.BusinessPhone)
	setString(&s.BusinessAddress, c.BusinessAddress)
	setInt(&s.OpenHour, c.OpenHour)
	setInt(&s.CloseHour, c.CloseHour)
	setInt(&s.SlotGranularityMin, c.SlotMin)
	setInt(&s.BookingHorizonDays, c.BookingDays)

	if c.Timezone != nil {
		if !utils.ValidateTimezone(*c.Timezone) {
			return false, fmt.Errorf("unknown timezone %q", *c.Timezone)
		}
		s.Timezone = *c.Timezone
		updated = true
	}
	if c.Language != nil {
		lang, err := i18n.ParseLang(*c.Language)
		if err != nil {
			return false, err
		}
		s.Language = string(lang)
		updated = true
	}
	if c.Policy != nil {
		switch *c.Policy {
		case constants.PolicyLedger, constants.PolicyDenyList, constants.PolicyRandom, constants.PolicyOpen:
			s.AvailabilityPolicy = *c.Policy
		default:
			return false, fmt.Errorf("unknown availability policy %q", *c.Policy)
		}
		updated = true
	}
	if c.DenyList != nil {
		times := models.SplitList(*c.DenyList)
		for _, t := range times {
			if !utils.ValidateTimeFormat(t) {
				return false, fmt.Errorf("invalid time %q in deny list (expected HH:MM)", t)
			}
		}
		s.DenyList = times
		updated = true
	}
	if c.RandomRate != nil {
		if *c.RandomRate < 0 || *c.RandomRate > 1 {
			return false, fmt.Errorf("random rate must be between 0 and 1, got %v", *c.RandomRate)
		}
		s.RandomAvailability = *c.RandomRate
		updated = true
	}

	if err := s.Hours().Validate(); err != nil {
		return false, err
	}
	if s.SlotGranularityMin <= 0 {
		return false, fmt.Errorf("slot granularity must be positive, got %d", s.SlotGranularityMin)
	}
	if s.BookingHorizonDays <= 0 {
		return false, fmt.Errorf("booking horizon must be positive, got %d", s.BookingHorizonDays)
	}
	return updated, nil
}

func printSettings(s models.Settings) {
	fmt.Println("Business:")
	fmt.Printf("  Name:                  %s\n", s.BusinessName)
	fmt.Printf("  Phone:                 %s\n", s.BusinessPhone)
	fmt.Printf("  Address:               %s\n", s.BusinessAddress)
	fmt.Printf("  Hours:                 %02d:00 - %02d:00\n", s.OpenHour, s.CloseHour)
	fmt.Printf("  Timezone:              %s\n", s.Timezone)
	fmt.Printf("  Language:              %s\n", s.Language)
	fmt.Println("\nBooking:")
	fmt.Printf("  Slot Granularity:      %d min\n", s.SlotGranularityMin)
	fmt.Printf("  Booking Horizon:       %d days\n", s.BookingHorizonDays)
	fmt.Printf("  Availability Policy:   %s\n", s.AvailabilityPolicy)
	fmt.Printf("  Deny List:             %s\n", strings.Join(s.DenyList, ","))
	fmt.Printf("  Random Availability:   %.2f\n", s.RandomAvailability)
}
