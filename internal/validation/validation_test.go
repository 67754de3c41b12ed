package validation

import (
	"strings"
	"testing"

	"github.com/viera97/calendar-appointments/internal/models"
)

var (
	hours    = models.BusinessHours{StartHour: 9, EndHour: 18}
	services = []models.Service{
		{ID: "1", Name: "Corte de Cabello", DurationMin: 60},
		{ID: "3", Name: "Facial Hidratante", DurationMin: 90},
	}
)

func hasConflict(result ValidationResult, typ ConflictType) bool {
	for _, c := range result.Conflicts {
		if c.Type == typ {
			return true
		}
	}
	return false
}

func TestValidateAppointments_Clean(t *testing.T) {
	appts := []models.Appointment{
		{ID: "a", ClientName: "Ana", ServiceID: "1", Date: "2025-07-01", Time: "09:00", Status: models.StatusScheduled},
		{ID: "b", ClientName: "Luis", ServiceID: "3", Date: "2025-07-01", Time: "10:00", Status: models.StatusScheduled},
		{ID: "c", ClientName: "Eva", ServiceID: "1", Date: "2025-07-01", Time: "10:30", Status: models.StatusCancelled},
	}

	result := New().ValidateAppointments(appts, services, hours)
	if result.HasConflicts() {
		t.Errorf("unexpected conflicts:\n%s", result.FormatReport())
	}
	if result.FormatReport() != "No conflicts detected." {
		t.Errorf("unexpected report %q", result.FormatReport())
	}
}

func TestValidateAppointments_Overlap(t *testing.T) {
	appts := []models.Appointment{
		{ID: "a", ClientName: "Ana", ServiceID: "3", Date: "2025-07-01", Time: "09:00", Status: models.StatusScheduled},
		{ID: "b", ClientName: "Luis", ServiceID: "1", Date: "2025-07-01", Time: "10:00", Status: models.StatusScheduled},
	}

	result := New().ValidateAppointments(appts, services, hours)
	if !hasConflict(result, ConflictOverlappingAppointments) {
		t.Fatal("expected overlap conflict")
	}
	if !strings.Contains(result.FormatReport(), "\"Ana\" (09:00-10:30) overlaps \"Luis\"") {
		t.Errorf("unexpected report:\n%s", result.FormatReport())
	}
}

func TestValidateAppointments_ClosingAndHours(t *testing.T) {
	appts := []models.Appointment{
		{ID: "a", ClientName: "Ana", ServiceID: "3", Date: "2025-07-01", Time: "17:00", Status: models.StatusScheduled},
		{ID: "b", ClientName: "Luis", ServiceID: "1", Date: "2025-07-02", Time: "07:00", Status: models.StatusScheduled},
	}

	result := New().ValidateAppointments(appts, services, hours)
	if !hasConflict(result, ConflictExceedsClosingTime) {
		t.Error("expected closing time conflict")
	}
	if !hasConflict(result, ConflictOutsideBusinessHours) {
		t.Error("expected business hours conflict")
	}
}

func TestValidateAppointments_DataProblems(t *testing.T) {
	appts := []models.Appointment{
		{ID: "dup", ClientName: "Ana", ServiceID: "1", Date: "2025-07-01", Time: "09:00", Status: models.StatusScheduled},
		{ID: "dup", ClientName: "Ana", ServiceID: "1", Date: "2025-07-03", Time: "09:00", Status: models.StatusCompleted},
		{ID: "t", ClientName: "Luis", ServiceID: "1", Date: "2025-07-01", Time: "25:00", Status: models.StatusScheduled},
		{ID: "s", ClientName: "Eva", ServiceID: "404", Date: "2025-07-02", Time: "11:00", Status: models.StatusScheduled},
		{ID: "x", ClientName: "Iván", ServiceID: "1", Date: "2025-07-02", Time: "12:00", Status: "archived"},
	}

	result := New().ValidateAppointments(appts, services, hours)
	for _, typ := range []ConflictType{
		ConflictDuplicateAppointmentID,
		ConflictInvalidDateTime,
		ConflictMissingService,
		ConflictInvalidStatus,
	} {
		if !hasConflict(result, typ) {
			t.Errorf("expected %s conflict", typ)
		}
	}
}
