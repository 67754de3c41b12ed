package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viera97/calendar-appointments/internal/models"
	"github.com/viera97/calendar-appointments/internal/storage/jsonfile"
	"github.com/viera97/calendar-appointments/internal/storage/sqlite"
)

func sampleAppointment(id string) models.Appointment {
	return models.Appointment{
		ID:          id,
		ClientName:  "Ana Gómez",
		ClientPhone: "+573001234567",
		ServiceID:   "1",
		ServiceName: "Corte de Cabello",
		Date:        "2025-03-10",
		Time:        "10:00",
		Status:      models.StatusScheduled,
		CreatedAt:   "2025-03-01T09:00:00Z",
	}
}

func newSQLiteStore(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "citas.db")
	store := sqlite.NewStore(path)
	require.NoError(t, store.Init())
	require.NoError(t, store.SaveAppointment(sampleAppointment("apt_1")))
	require.NoError(t, store.Close())
	return path
}

func fixedClock(start time.Time) func() time.Time {
	now := start
	return func() time.Time {
		t := now
		now = now.Add(time.Hour)
		return t
	}
}

func TestCreateSQLiteBackup(t *testing.T) {
	path := newSQLiteStore(t)
	m := NewManager(path)

	backupPath, err := m.Create()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "backups"), m.Dir())
	assert.Equal(t, ".db", filepath.Ext(backupPath))

	store := sqlite.NewStore(backupPath)
	require.NoError(t, store.Load())
	defer store.Close()
	appt, err := store.GetAppointment("apt_1")
	require.NoError(t, err)
	assert.Equal(t, "Ana Gómez", appt.ClientName)
}

func TestCreateWithoutStore(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "missing.db"))
	_, err := m.Create()
	assert.ErrorIs(t, err, ErrNoStore)
}

func TestRotationKeepsNewest(t *testing.T) {
	path := newSQLiteStore(t)
	m := NewManager(path)
	m.keep = 3
	m.now = fixedClock(time.Date(2025, 3, 1, 8, 0, 0, 0, time.Local))

	var created []string
	for i := 0; i < 5; i++ {
		p, err := m.Create()
		require.NoError(t, err)
		created = append(created, p)
	}

	backups, err := m.List()
	require.NoError(t, err)
	require.Len(t, backups, 3)
	assert.Equal(t, created[4], backups[0].Path)
	assert.Equal(t, created[2], backups[2].Path)
	_, err = os.Stat(created[0])
	assert.True(t, os.IsNotExist(err))
}

func TestUniqueNamesWithinOneSecond(t *testing.T) {
	path := newSQLiteStore(t)
	m := NewManager(path)
	stamp := time.Date(2025, 3, 1, 8, 0, 0, 0, time.Local)
	m.now = func() time.Time { return stamp }

	first, err := m.Create()
	require.NoError(t, err)
	second, err := m.Create()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.Equal(t, "citas-20250301-080000-1.db", filepath.Base(second))

	backups, err := m.List()
	require.NoError(t, err)
	require.Len(t, backups, 2)
	assert.True(t, backups[0].Timestamp.Equal(stamp))
}

func TestListIgnoresForeignFiles(t *testing.T) {
	path := newSQLiteStore(t)
	m := NewManager(path)
	require.NoError(t, os.MkdirAll(m.Dir(), 0700))
	for _, name := range []string{"notes.txt", "citas-garbage.db", "citas-20250301-080000-x.db", "other-20250301-080000.db"} {
		require.NoError(t, os.WriteFile(filepath.Join(m.Dir(), name), []byte("x"), 0600))
	}

	backups, err := m.List()
	require.NoError(t, err)
	assert.Empty(t, backups)
}

func TestRestoreSQLite(t *testing.T) {
	path := newSQLiteStore(t)
	m := NewManager(path)
	m.now = fixedClock(time.Date(2025, 3, 1, 8, 0, 0, 0, time.Local))

	backupPath, err := m.Create()
	require.NoError(t, err)

	store := sqlite.NewStore(path)
	require.NoError(t, store.Load())
	require.NoError(t, store.SaveAppointment(sampleAppointment("apt_2")))
	require.NoError(t, store.Close())

	previous, err := m.Restore(backupPath)
	require.NoError(t, err)
	assert.NotEmpty(t, previous)

	store = sqlite.NewStore(path)
	require.NoError(t, store.Load())
	defer store.Close()
	appts, err := store.GetAppointments()
	require.NoError(t, err)
	require.Len(t, appts, 1)
	assert.Equal(t, "apt_1", appts[0].ID)

	_, err = os.Stat(previous)
	assert.NoError(t, err)
}

func TestRestoreRejectsCorruptBackup(t *testing.T) {
	path := newSQLiteStore(t)
	m := NewManager(path)
	bad := filepath.Join(t.TempDir(), "citas-20250301-080000.db")
	require.NoError(t, os.WriteFile(bad, []byte("not a database"), 0600))

	_, err := m.Restore(bad)
	assert.Error(t, err)

	_, err = m.Restore(filepath.Join(t.TempDir(), "missing.db"))
	assert.Error(t, err)
}

func TestJSONBackupAndRestore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "citas.json")
	store := jsonfile.NewStore(path)
	require.NoError(t, store.Init())
	require.NoError(t, store.SaveAppointment(sampleAppointment("apt_1")))

	m := NewManager(path)
	m.now = fixedClock(time.Date(2025, 3, 1, 8, 0, 0, 0, time.Local))
	backupPath, err := m.Create()
	require.NoError(t, err)
	assert.Equal(t, ".json", filepath.Ext(backupPath))

	require.NoError(t, store.ClearAll())
	_, err = m.Restore(backupPath)
	require.NoError(t, err)

	reloaded := jsonfile.NewStore(path)
	require.NoError(t, reloaded.Load())
	appts, err := reloaded.GetAppointments()
	require.NoError(t, err)
	require.Len(t, appts, 1)

	backups, err := m.List()
	require.NoError(t, err)
	assert.Len(t, backups, 2)
}

func TestJSONRestoreRejectsNonDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "citas.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":1}`), 0600))
	bad := filepath.Join(t.TempDir(), "citas-20250301-080000.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[1,2,3]`), 0600))

	_, err := NewManager(path).Restore(bad)
	assert.Error(t, err)
}
