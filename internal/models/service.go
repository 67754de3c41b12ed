package models

type Service struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	DurationMin int     `json:"duration"` // minutes
	Price       float64 `json:"price"`
}

type TimeSlot struct {
	ID        string `json:"id"` // <serviceId>-<date>-<time>
	Time      string `json:"time"`
	Available bool   `json:"available"`
	ServiceID string `json:"serviceId"`
	Date      string `json:"date"`
}
