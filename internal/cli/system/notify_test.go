package system

import (
	"context"
	"testing"
	"time"

	"github.com/viera97/calendar-appointments/internal/models"
)

func TestDueReminders(t *testing.T) {
	loc, err := time.LoadLocation("America/Bogota")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}
	now := time.Date(2025, 3, 11, 9, 30, 0, 0, loc)

	appts := []models.Appointment{
		testAppointment("due", "2025-03-11", "10:00"),
		testAppointment("later", "2025-03-11", "10:30"),
		testAppointment("past", "2025-03-11", "09:00"),
		testAppointment("tomorrow", "2025-03-12", "10:00"),
		testAppointment("broken", "2025-03-11", "ten"),
	}

	due := dueReminders(appts, now, loc, 30)
	if len(due) != 1 || due[0].ID != "due" {
		t.Fatalf("expected only the 10:00 appointment, got %+v", due)
	}

	due = dueReminders(appts, now.Add(30*time.Second), loc, 29)
	if len(due) != 1 || due[0].ID != "due" {
		t.Errorf("partial minutes should round down, got %+v", due)
	}
}

func TestRemindCmdSendsNotices(t *testing.T) {
	ctx, store, _ := setupTestDB(t)

	// fixedNow is 08:00 in Bogota.
	if err := store.SaveAppointment(testAppointment("a1", "2025-03-10", "08:30")); err != nil {
		t.Fatalf("failed to save appointment: %v", err)
	}
	if err := store.SaveAppointment(testAppointment("a2", "2025-03-10", "09:00")); err != nil {
		t.Fatalf("failed to save appointment: %v", err)
	}

	var sent []string
	ctx.Notify = func(_ context.Context, title, text string) error {
		sent = append(sent, text)
		return nil
	}

	if err := (&RemindCmd{Offset: 30}).Run(ctx); err != nil {
		t.Fatalf("RemindCmd.Run() error = %v", err)
	}
	if len(sent) != 1 {
		t.Fatalf("expected 1 reminder, got %d: %v", len(sent), sent)
	}
	want := "Recordatorio: Corte de Cabello de Ana Gómez a las 8:30 AM"
	if sent[0] != want {
		t.Errorf("reminder = %q, want %q", sent[0], want)
	}

	sent = nil
	if err := (&RemindCmd{Offset: 30, DryRun: true}).Run(ctx); err != nil {
		t.Fatalf("dry run failed: %v", err)
	}
	if len(sent) != 0 {
		t.Errorf("dry run should not send notices, sent %v", sent)
	}
}
