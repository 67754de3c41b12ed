package system

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/viera97/calendar-appointments/internal/booking"
	"github.com/viera97/calendar-appointments/internal/cli"
	"github.com/viera97/calendar-appointments/internal/models"
	"github.com/viera97/calendar-appointments/internal/storage/sqlite"
)

// 08:00 in America/Bogota.
var fixedNow = time.Date(2025, 3, 10, 13, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) (*cli.Context, *sqlite.Store, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx := &cli.Context{
		Store:     store,
		Now:       func() time.Time { return fixedNow },
		Calendars: []booking.Calendar{},
		Notify:    func(context.Context, string, string) error { return nil },
	}
	return ctx, store, dbPath
}

func testAppointment(id, date, tm string) models.Appointment {
	return models.Appointment{
		ID:          id,
		ClientName:  "Ana Gómez",
		ClientPhone: "+573001234567",
		ServiceID:   "1",
		ServiceName: "Corte de Cabello",
		Date:        date,
		Time:        tm,
		Status:      models.StatusScheduled,
		CreatedAt:   fixedNow.Format(time.RFC3339),
	}
}
