package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/viera97/calendar-appointments/internal/constants"
	"github.com/viera97/calendar-appointments/internal/models"
	"github.com/viera97/calendar-appointments/internal/utils"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictOverlappingAppointments ConflictType = "overlapping_appointments"
	ConflictExceedsClosingTime      ConflictType = "exceeds_closing_time"
	ConflictOutsideBusinessHours    ConflictType = "outside_business_hours"
	ConflictMissingService          ConflictType = "missing_service"
	ConflictDuplicateAppointmentID  ConflictType = "duplicate_appointment_id"
	ConflictInvalidDateTime         ConflictType = "invalid_datetime"
	ConflictInvalidStatus           ConflictType = "invalid_status"
)

// Conflict represents a detected problem in the appointment ledger
type Conflict struct {
	Type           ConflictType
	Description    string
	Date           string   // YYYY-MM-DD format (if applicable)
	Items          []string // Client names involved
	TimeRange      string   // Human-readable time range (if applicable)
	AppointmentIDs []string
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", conflict.Description)
	}
	return b.String()
}

// Validator checks stored appointments against each other and the business hours
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

type booked struct {
	appt  models.Appointment
	start int
	end   int
}

// ValidateAppointments checks the ledger for conflicts. Only scheduled appointments
// take part in the overlap and business hours checks.
func (v *Validator) ValidateAppointments(appts []models.Appointment, services []models.Service, hours models.BusinessHours) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	serviceMap := make(map[string]models.Service, len(services))
	for _, svc := range services {
		serviceMap[svc.ID] = svc
	}

	// Check for duplicate ids
	idCount := make(map[string]int)
	for _, appt := range appts {
		idCount[appt.ID]++
	}
	var dupIDs []string
	for id, n := range idCount {
		if n > 1 {
			dupIDs = append(dupIDs, id)
		}
	}
	sort.Strings(dupIDs)
	for _, id := range dupIDs {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:           ConflictDuplicateAppointmentID,
			Description:    fmt.Sprintf("Duplicate appointment id: %s (%d records)", id, idCount[id]),
			AppointmentIDs: []string{id},
		})
	}

	byDate := make(map[string][]booked)
	for _, appt := range appts {
		if !appt.Status.Valid() {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:           ConflictInvalidStatus,
				Description:    fmt.Sprintf("Appointment %s has unknown status %q", appt.ID, appt.Status),
				AppointmentIDs: []string{appt.ID},
			})
			continue
		}

		if !utils.ValidateDateFormat(appt.Date) || !utils.ValidateTimeFormat(appt.Time) {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:           ConflictInvalidDateTime,
				Description:    fmt.Sprintf("Appointment %s has invalid date/time: %q %q", appt.ID, appt.Date, appt.Time),
				Date:           appt.Date,
				Items:          []string{appt.ClientName},
				AppointmentIDs: []string{appt.ID},
			})
			continue
		}

		duration := constants.FallbackDurationMin
		svc, ok := serviceMap[appt.ServiceID]
		if !ok {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:           ConflictMissingService,
				Description:    fmt.Sprintf("Appointment %s references unknown service %q (%s)", appt.ID, appt.ServiceID, appt.ServiceName),
				Date:           appt.Date,
				Items:          []string{appt.ClientName},
				AppointmentIDs: []string{appt.ID},
			})
		} else {
			duration = svc.DurationMin
		}

		if appt.Status != models.StatusScheduled {
			continue
		}

		start, _ := utils.ParseTimeToMinutes(appt.Time)
		end := start + duration
		timeRange := fmt.Sprintf("%s-%s", appt.Time, utils.FormatMinutes(end))

		if start < hours.OpenMinutes() || start >= hours.CloseMinutes() {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:           ConflictOutsideBusinessHours,
				Description:    fmt.Sprintf("%s: \"%s\" starts at %s outside business hours", appt.Date, appt.ClientName, appt.Time),
				Date:           appt.Date,
				Items:          []string{appt.ClientName},
				TimeRange:      timeRange,
				AppointmentIDs: []string{appt.ID},
			})
		} else if end > hours.CloseMinutes() {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type: ConflictExceedsClosingTime,
				Description: fmt.Sprintf("%s: \"%s\" (%s) runs past closing at %02d:00",
					appt.Date, appt.ClientName, timeRange, hours.EndHour),
				Date:           appt.Date,
				Items:          []string{appt.ClientName},
				TimeRange:      timeRange,
				AppointmentIDs: []string{appt.ID},
			})
		}

		byDate[appt.Date] = append(byDate[appt.Date], booked{appt: appt, start: start, end: end})
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	// O(n²) per day, a day only holds a handful of bookings.
	for _, date := range dates {
		day := byDate[date]
		sort.Slice(day, func(i, j int) bool { return day[i].start < day[j].start })
		for i := 0; i < len(day); i++ {
			for j := i + 1; j < len(day); j++ {
				a, b := day[i], day[j]
				if a.start < b.end && b.start < a.end {
					result.Conflicts = append(result.Conflicts, Conflict{
						Type: ConflictOverlappingAppointments,
						Description: fmt.Sprintf("%s: \"%s\" (%s-%s) overlaps \"%s\" (%s-%s)",
							date, a.appt.ClientName, a.appt.Time, utils.FormatMinutes(a.end),
							b.appt.ClientName, b.appt.Time, utils.FormatMinutes(b.end)),
						Date:           date,
						Items:          []string{a.appt.ClientName, b.appt.ClientName},
						TimeRange:      fmt.Sprintf("%s-%s", a.appt.Time, utils.FormatMinutes(a.end)),
						AppointmentIDs: []string{a.appt.ID, b.appt.ID},
					})
				}
			}
		}
	}

	return result
}
