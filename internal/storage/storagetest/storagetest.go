// Package storagetest holds the behavior every storage.Provider must share.
package storagetest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viera97/calendar-appointments/internal/constants"
	"github.com/viera97/calendar-appointments/internal/models"
	"github.com/viera97/calendar-appointments/internal/storage"
)

func appointment(id, date, t string, status models.AppointmentStatus) models.Appointment {
	return models.Appointment{
		ID:          id,
		ClientName:  "Ana Gómez",
		ClientPhone: "+57 300 123 4567",
		ServiceID:   "1",
		ServiceName: "Corte de Cabello",
		Date:        date,
		Time:        t,
		Status:      status,
		CreatedAt:   "2025-06-01T10:00:00Z",
	}
}

// Run exercises an initialized, loaded provider returned by newStore.
func Run(t *testing.T, newStore func(t *testing.T) storage.Provider) {
	t.Run("DefaultSettings", func(t *testing.T) {
		s := newStore(t)
		settings, err := s.GetSettings()
		require.NoError(t, err)
		assert.Equal(t, constants.DefaultOpenHour, settings.OpenHour)
		assert.Equal(t, constants.DefaultCloseHour, settings.CloseHour)
		assert.Equal(t, constants.DefaultSlotMin, settings.SlotGranularityMin)
		assert.Equal(t, constants.DefaultAvailabilityPolicy, settings.AvailabilityPolicy)

		settings.OpenHour = 8
		settings.AvailabilityPolicy = constants.PolicyDenyList
		settings.DenyList = []string{"08:30"}
		require.NoError(t, s.SaveSettings(settings))

		updated, err := s.GetSettings()
		require.NoError(t, err)
		assert.Equal(t, 8, updated.OpenHour)
		assert.Equal(t, constants.PolicyDenyList, updated.AvailabilityPolicy)
		assert.Equal(t, []string{"08:30"}, updated.DenyList)
	})

	t.Run("SeededServices", func(t *testing.T) {
		s := newStore(t)
		services, err := s.GetServices()
		require.NoError(t, err)
		assert.Len(t, services, 5)

		require.NoError(t, s.SaveService(models.Service{ID: "1", Name: "Corte Premium", DurationMin: 75, Price: 30000}))
		services, err = s.GetServices()
		require.NoError(t, err)
		assert.Len(t, services, 5)

		var found bool
		for _, svc := range services {
			if svc.ID == "1" {
				found = true
				assert.Equal(t, "Corte Premium", svc.Name)
				assert.Equal(t, 75, svc.DurationMin)
			}
		}
		assert.True(t, found)
	})

	t.Run("SaveAndGet", func(t *testing.T) {
		s := newStore(t)
		appt := appointment("apt_1", "2025-07-01", "10:00", models.StatusScheduled)
		appt.IsNewClient = true
		appt.Notes = "primera visita"
		require.NoError(t, s.SaveAppointment(appt))

		got, err := s.GetAppointment("apt_1")
		require.NoError(t, err)
		assert.Equal(t, appt, got)

		assert.Error(t, s.SaveAppointment(appt), "duplicate ids must be rejected")

		_, err = s.GetAppointment("missing")
		assert.True(t, errors.Is(err, storage.ErrNotFound))
	})

	t.Run("OrderedByDateAndTime", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.SaveAppointment(appointment("c", "2025-07-02", "09:00", models.StatusScheduled)))
		require.NoError(t, s.SaveAppointment(appointment("b", "2025-07-01", "15:00", models.StatusScheduled)))
		require.NoError(t, s.SaveAppointment(appointment("a", "2025-07-01", "09:30", models.StatusScheduled)))

		appts, err := s.GetAppointments()
		require.NoError(t, err)
		require.Len(t, appts, 3)
		assert.Equal(t, []string{"a", "b", "c"}, []string{appts[0].ID, appts[1].ID, appts[2].ID})
	})

	t.Run("UpdateFailsWhenAbsent", func(t *testing.T) {
		s := newStore(t)
		date := "2025-08-01"
		err := s.UpdateAppointment("ghost", models.AppointmentPatch{Date: &date})
		assert.True(t, errors.Is(err, storage.ErrNotFound))

		err = s.UpdateAppointment("ghost", models.AppointmentPatch{})
		assert.True(t, errors.Is(err, storage.ErrNotFound))

		assert.True(t, errors.Is(s.CancelAppointment("ghost"), storage.ErrNotFound))
		assert.True(t, errors.Is(s.DeleteAppointment("ghost"), storage.ErrNotFound))
	})

	t.Run("UpdatePatchesFields", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.SaveAppointment(appointment("apt_1", "2025-07-01", "10:00", models.StatusScheduled)))

		date, tm := "2025-07-03", "11:30"
		require.NoError(t, s.UpdateAppointment("apt_1", models.AppointmentPatch{Date: &date, Time: &tm}))

		got, err := s.GetAppointment("apt_1")
		require.NoError(t, err)
		assert.Equal(t, date, got.Date)
		assert.Equal(t, tm, got.Time)
		assert.Equal(t, "Ana Gómez", got.ClientName)
		assert.Equal(t, models.StatusScheduled, got.Status)
	})

	t.Run("CancelOnlyTouchesTarget", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.SaveAppointment(appointment("keep", "2025-07-01", "09:00", models.StatusScheduled)))
		require.NoError(t, s.SaveAppointment(appointment("drop", "2025-07-01", "10:00", models.StatusScheduled)))

		require.NoError(t, s.CancelAppointment("drop"))

		dropped, err := s.GetAppointment("drop")
		require.NoError(t, err)
		assert.Equal(t, models.StatusCancelled, dropped.Status)

		kept, err := s.GetAppointment("keep")
		require.NoError(t, err)
		assert.Equal(t, models.StatusScheduled, kept.Status)
	})

	t.Run("ClearHistoryKeepsScheduled", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.SaveAppointment(appointment("s", "2025-07-01", "09:00", models.StatusScheduled)))
		require.NoError(t, s.SaveAppointment(appointment("c", "2025-07-01", "10:00", models.StatusCancelled)))
		require.NoError(t, s.SaveAppointment(appointment("d", "2025-07-01", "11:00", models.StatusCompleted)))
		require.NoError(t, s.SaveSyncRecord(models.SyncRecord{AppointmentID: "c", Provider: "api", Status: models.SyncRemoved, UpdatedAt: "2025-07-01T00:00:00Z"}))

		require.NoError(t, s.ClearHistory())

		appts, err := s.GetAppointments()
		require.NoError(t, err)
		require.Len(t, appts, 1)
		assert.Equal(t, "s", appts[0].ID)

		records, err := s.GetSyncRecords("c")
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("ClearAllAndDelete", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.SaveAppointment(appointment("a", "2025-07-01", "09:00", models.StatusScheduled)))
		require.NoError(t, s.SaveAppointment(appointment("b", "2025-07-01", "10:00", models.StatusScheduled)))

		require.NoError(t, s.DeleteAppointment("a"))
		appts, err := s.GetAppointments()
		require.NoError(t, err)
		assert.Len(t, appts, 1)

		require.NoError(t, s.ClearAll())
		appts, err = s.GetAppointments()
		require.NoError(t, err)
		assert.Empty(t, appts)
	})

	t.Run("SyncRecordsUpsert", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.SaveAppointment(appointment("apt_1", "2025-07-01", "09:00", models.StatusScheduled)))

		require.NoError(t, s.SaveSyncRecord(models.SyncRecord{
			AppointmentID: "apt_1", Provider: "google", Status: models.SyncFailed, Error: "token expired", UpdatedAt: "2025-07-01T00:00:00Z",
		}))
		require.NoError(t, s.SaveSyncRecord(models.SyncRecord{
			AppointmentID: "apt_1", Provider: "api", RemoteID: "42", Status: models.SyncSynced, UpdatedAt: "2025-07-01T00:00:00Z",
		}))
		require.NoError(t, s.SaveSyncRecord(models.SyncRecord{
			AppointmentID: "apt_1", Provider: "google", RemoteID: "evt_9", Status: models.SyncSynced, UpdatedAt: "2025-07-01T00:01:00Z",
		}))

		records, err := s.GetSyncRecords("apt_1")
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "api", records[0].Provider)
		assert.Equal(t, "google", records[1].Provider)
		assert.Equal(t, "evt_9", records[1].RemoteID)
		assert.Equal(t, models.SyncSynced, records[1].Status)
		assert.Empty(t, records[1].Error)
	})
}
