package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/viera97/calendar-appointments/internal/constants"
)

// MapToSettings converts a map of key-value pairs to a Settings struct.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := Settings{}

	for key, value := range data {
		switch key {
		case constants.SettingBusinessName:
			settings.BusinessName = value
		case constants.SettingBusinessPhone:
			settings.BusinessPhone = value
		case constants.SettingBusinessAddress:
			settings.BusinessAddress = value
		case constants.SettingOpenHour:
			if _, err := fmt.Sscanf(value, "%d", &settings.OpenHour); err != nil {
				return Settings{}, fmt.Errorf("parsing open_hour: %w", err)
			}
		case constants.SettingCloseHour:
			if _, err := fmt.Sscanf(value, "%d", &settings.CloseHour); err != nil {
				return Settings{}, fmt.Errorf("parsing close_hour: %w", err)
			}
		case constants.SettingSlotMin:
			if _, err := fmt.Sscanf(value, "%d", &settings.SlotGranularityMin); err != nil {
				return Settings{}, fmt.Errorf("parsing slot_granularity_min: %w", err)
			}
		case constants.SettingTimezone:
			settings.Timezone = value
		case constants.SettingLanguage:
			settings.Language = value
		case constants.SettingBookingDays:
			if _, err := fmt.Sscanf(value, "%d", &settings.BookingHorizonDays); err != nil {
				return Settings{}, fmt.Errorf("parsing booking_horizon_days: %w", err)
			}
		case constants.SettingAvailabilityPolicy:
			settings.AvailabilityPolicy = value
		case constants.SettingDenyList:
			settings.DenyList = SplitList(value)
		case constants.SettingRandomRate:
			rate, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return Settings{}, fmt.Errorf("parsing random_availability: %w", err)
			}
			settings.RandomAvailability = rate
		}
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingBusinessName:       settings.BusinessName,
		constants.SettingBusinessPhone:      settings.BusinessPhone,
		constants.SettingBusinessAddress:    settings.BusinessAddress,
		constants.SettingOpenHour:           strconv.Itoa(settings.OpenHour),
		constants.SettingCloseHour:          strconv.Itoa(settings.CloseHour),
		constants.SettingSlotMin:            strconv.Itoa(settings.SlotGranularityMin),
		constants.SettingTimezone:           settings.Timezone,
		constants.SettingLanguage:           settings.Language,
		constants.SettingBookingDays:        strconv.Itoa(settings.BookingHorizonDays),
		constants.SettingAvailabilityPolicy: settings.AvailabilityPolicy,
		constants.SettingDenyList:           strings.Join(settings.DenyList, ","),
		constants.SettingRandomRate:         strconv.FormatFloat(settings.RandomAvailability, 'f', -1, 64),
	}
}

// DefaultSettings returns the settings a fresh store starts with.
func DefaultSettings() Settings {
	s := Settings{}
	ApplyDefaultSettings(&s)
	return s
}

// ApplyDefaultSettings applies default values to missing settings.
func ApplyDefaultSettings(settings *Settings) {
	if settings.BusinessName == "" {
		settings.BusinessName = constants.DefaultBusinessName
	}
	if settings.BusinessPhone == "" {
		settings.BusinessPhone = constants.DefaultBusinessPhone
	}
	if settings.BusinessAddress == "" {
		settings.BusinessAddress = constants.DefaultBusinessAddress
	}
	if settings.OpenHour == 0 && settings.CloseHour == 0 {
		settings.OpenHour = constants.DefaultOpenHour
		settings.CloseHour = constants.DefaultCloseHour
	}
	if settings.SlotGranularityMin <= 0 {
		settings.SlotGranularityMin = constants.DefaultSlotMin
	}
	if settings.Timezone == "" {
		settings.Timezone = constants.DefaultTimezone
	}
	if settings.Language == "" {
		settings.Language = constants.DefaultLanguage
	}
	if settings.BookingHorizonDays <= 0 {
		settings.BookingHorizonDays = constants.DefaultBookingDays
	}
	if settings.AvailabilityPolicy == "" {
		settings.AvailabilityPolicy = constants.DefaultAvailabilityPolicy
	}
	if settings.DenyList == nil {
		settings.DenyList = SplitList(constants.DefaultDenyList)
	}
	if settings.RandomAvailability <= 0 || settings.RandomAvailability > 1 {
		settings.RandomAvailability = constants.DefaultRandomRate
	}
}

// SplitList splits a comma separated setting value, dropping blanks.
func SplitList(value string) []string {
	out := []string{}
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
