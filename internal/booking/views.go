package booking

import (
	"sort"
	"time"

	"github.com/viera97/calendar-appointments/internal/constants"
	"github.com/viera97/calendar-appointments/internal/models"
)

// Upcoming returns scheduled appointments dated today or later in loc,
// earliest first.
func Upcoming(appts []models.Appointment, now time.Time, loc *time.Location) []models.Appointment {
	today := now.In(orLocal(loc)).Format(constants.DateFormat)
	out := []models.Appointment{}
	for _, a := range appts {
		if a.Status == models.StatusScheduled && a.Date >= today {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return sortKey(out[i]) < sortKey(out[j])
	})
	return out
}

// History returns everything Upcoming leaves out, most recent first.
func History(appts []models.Appointment, now time.Time, loc *time.Location) []models.Appointment {
	today := now.In(orLocal(loc)).Format(constants.DateFormat)
	out := []models.Appointment{}
	for _, a := range appts {
		if a.Status != models.StatusScheduled || a.Date < today {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return sortKey(out[i]) > sortKey(out[j])
	})
	return out
}

func sortKey(a models.Appointment) string {
	return a.Date + " " + a.Time
}

func orLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
