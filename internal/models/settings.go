package models

// Settings represents business-wide settings
type Settings struct {
	BusinessName       string   `json:"business_name"`        // shown on the address step
	BusinessPhone      string   `json:"business_phone"`       // contact phone, also used for WhatsApp links
	BusinessAddress    string   `json:"business_address"`     // where the client has to go
	OpenHour           int      `json:"open_hour"`            // e.g. 9 for 09:00
	CloseHour          int      `json:"close_hour"`           // e.g. 18 for 18:00
	SlotGranularityMin int      `json:"slot_granularity_min"` // step between candidate start times
	Timezone           string   `json:"timezone"`             // IANA timezone name (e.g. "America/Bogota", or "Local" for system timezone)
	Language           string   `json:"language"`             // "es" or "en"
	BookingHorizonDays int      `json:"booking_horizon_days"` // how many days ahead can be booked
	AvailabilityPolicy string   `json:"availability_policy"`  // ledger, deny-list, random or open
	DenyList           []string `json:"deny_list"`            // occupied start times for the deny-list policy
	RandomAvailability float64  `json:"random_availability"`  // share of available slots for the random policy
}

// Hours returns the business hours described by the settings.
func (s Settings) Hours() BusinessHours {
	return BusinessHours{StartHour: s.OpenHour, EndHour: s.CloseHour}
}

// Business returns the business description held in the settings.
func (s Settings) Business() Business {
	return Business{
		Name:    s.BusinessName,
		Phone:   s.BusinessPhone,
		Address: s.BusinessAddress,
		Hours:   s.Hours(),
	}
}
