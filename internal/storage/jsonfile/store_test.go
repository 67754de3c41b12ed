package jsonfile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/viera97/calendar-appointments/internal/models"
	"github.com/viera97/calendar-appointments/internal/storage"
	"github.com/viera97/calendar-appointments/internal/storage/storagetest"
)

func newTestStore(t *testing.T) storage.Provider {
	t.Helper()
	s := NewStore(filepath.Join(t.TempDir(), "citas.json"))
	if err := s.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return s
}

func TestStoreContract(t *testing.T) {
	storagetest.Run(t, newTestStore)
}

func TestDocumentLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "citas.json")
	s := NewStore(path)
	if err := s.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := s.SaveAppointment(models.Appointment{ID: "apt_1", Status: models.StatusScheduled}); err != nil {
		t.Fatalf("SaveAppointment failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	for _, key := range []string{`"calendar_appointments"`, `"clientName"`, `"apt_1"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("document is missing %s", key)
		}
	}

	reopened := NewStore(path)
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := reopened.GetAppointment("apt_1"); err != nil {
		t.Errorf("appointment lost after reload: %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	if err := NewStore(filepath.Join(dir, "none.json")).Load(); !errors.Is(err, storage.ErrNotInitialized) {
		t.Errorf("missing file: %v", err)
	}

	corrupt := filepath.Join(dir, "corrupt.json")
	os.WriteFile(corrupt, []byte("{not json"), 0600)
	if err := NewStore(corrupt).Load(); err == nil {
		t.Error("expected parse error")
	}

	future := filepath.Join(dir, "future.json")
	os.WriteFile(future, []byte(`{"version": 99}`), 0600)
	if err := NewStore(future).Load(); err == nil {
		t.Error("expected version error")
	}
}

func TestFailedWriteLeavesDocumentUnchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "citas.json")
	s := NewStore(path)
	if err := s.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	for _, appt := range []models.Appointment{
		{ID: "apt_kept", Date: "2025-03-11", Time: "10:00", Status: models.StatusScheduled},
		{ID: "apt_old", Date: "2025-03-01", Time: "09:00", Status: models.StatusCancelled},
	} {
		if err := s.SaveAppointment(appt); err != nil {
			t.Fatalf("SaveAppointment failed: %v", err)
		}
	}

	// A directory in place of the temp file makes every write fail.
	tmp := path + ".tmp"
	if err := os.Mkdir(tmp, 0700); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}

	if err := s.SaveAppointment(models.Appointment{ID: "apt_rejected", Date: "2025-03-11", Time: "11:00", Status: models.StatusScheduled}); err == nil {
		t.Fatal("expected SaveAppointment to fail")
	}
	if err := s.ClearHistory(); err == nil {
		t.Fatal("expected ClearHistory to fail")
	}
	if err := s.CancelAppointment("apt_kept"); err == nil {
		t.Fatal("expected CancelAppointment to fail")
	}
	if err := s.SaveSyncRecord(models.SyncRecord{AppointmentID: "apt_kept", Provider: "api"}); err == nil {
		t.Fatal("expected SaveSyncRecord to fail")
	}

	appts, err := s.GetAppointments()
	if err != nil {
		t.Fatalf("GetAppointments failed: %v", err)
	}
	if len(appts) != 2 {
		t.Fatalf("expected 2 appointments after failed writes, got %d", len(appts))
	}
	kept, _ := s.GetAppointment("apt_kept")
	if kept.Status != models.StatusScheduled {
		t.Errorf("status changed by a failed write: %s", kept.Status)
	}
	if records, _ := s.GetSyncRecords("apt_kept"); len(records) != 0 {
		t.Errorf("sync record kept by a failed write: %v", records)
	}

	if err := os.Remove(tmp); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	settings, _ := s.GetSettings()
	settings.BusinessName = "Barbería Central"
	if err := s.SaveSettings(settings); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	reopened := NewStore(path)
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := reopened.GetAppointment("apt_rejected"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("rejected appointment reached disk: %v", err)
	}
	if appts, _ := reopened.GetAppointments(); len(appts) != 2 {
		t.Errorf("expected 2 appointments on disk, got %d", len(appts))
	}
}
