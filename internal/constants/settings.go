package constants

const (
	// Business Settings
	SettingBusinessName    = "business_name"
	SettingBusinessPhone   = "business_phone"
	SettingBusinessAddress = "business_address"
	SettingOpenHour        = "open_hour"
	SettingCloseHour       = "close_hour"
	SettingSlotMin         = "slot_granularity_min"
	SettingTimezone        = "timezone"
	SettingLanguage        = "language"
	SettingBookingDays     = "booking_horizon_days"

	// Availability Settings
	SettingAvailabilityPolicy = "availability_policy"
	SettingDenyList           = "deny_list"
	SettingRandomRate         = "random_availability"

	// Availability policies
	PolicyLedger   = "ledger"
	PolicyDenyList = "deny-list"
	PolicyRandom   = "random"
	PolicyOpen     = "open"

	// Default Settings Values
	DefaultBusinessName       = "Belleza & Bienestar Spa"
	DefaultBusinessPhone      = "+57 300 123 4567"
	DefaultBusinessAddress    = "Calle Principal 123, Bogotá"
	DefaultOpenHour           = 9
	DefaultCloseHour          = 18
	DefaultSlotMin            = 30
	DefaultTimezone           = "America/Bogota"
	DefaultLanguage           = "es"
	DefaultBookingDays        = 14
	DefaultAvailabilityPolicy = PolicyLedger
	DefaultDenyList           = "10:30,13:00,15:30,17:00"
	DefaultRandomRate         = 0.7
)
