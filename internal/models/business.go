package models

import "fmt"

// BusinessHours are whole opening and closing hours of a business day.
type BusinessHours struct {
	StartHour int `json:"start_hour"`
	EndHour   int `json:"end_hour"`
}

func (h BusinessHours) Validate() error {
	if h.StartHour < 0 || h.EndHour > 24 || h.StartHour >= h.EndHour {
		return fmt.Errorf("invalid business hours %02d:00-%02d:00", h.StartHour, h.EndHour)
	}
	return nil
}

// OpenMinutes returns the opening time in minutes from midnight.
func (h BusinessHours) OpenMinutes() int { return h.StartHour * 60 }

// CloseMinutes returns the closing time in minutes from midnight.
func (h BusinessHours) CloseMinutes() int { return h.EndHour * 60 }

type Business struct {
	Name    string        `json:"name"`
	Phone   string        `json:"phone"`
	Address string        `json:"address"`
	Hours   BusinessHours `json:"working_hours"`
}
