// Package jsonfile keeps the record store in a single JSON document, using the
// same "calendar_appointments" key layout as the browser widget's local storage.
package jsonfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/goccy/go-json"

	"github.com/viera97/calendar-appointments/internal/catalog"
	"github.com/viera97/calendar-appointments/internal/models"
	"github.com/viera97/calendar-appointments/internal/storage"
)

const currentVersion = 1

type document struct {
	Version      int                  `json:"version"`
	Settings     models.Settings      `json:"settings"`
	Services     []models.Service     `json:"services"`
	Appointments []models.Appointment `json:"calendar_appointments"`
	Sync         []models.SyncRecord  `json:"appointment_sync"`
}

type Store struct {
	path string
	doc  *document
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Init() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		// Re-running init keeps existing data and fills missing defaults.
		if err := s.read(); err != nil {
			return err
		}
	} else {
		s.doc = &document{Version: currentVersion}
	}

	models.ApplyDefaultSettings(&s.doc.Settings)
	if len(s.doc.Services) == 0 {
		s.doc.Services = catalog.DefaultServices()
	}
	return s.save()
}

func (s *Store) Load() error {
	if s.doc != nil {
		return nil
	}
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return storage.ErrNotInitialized
	}
	return s.read()
}

func (s *Store) read() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read storage: %w", err)
	}

	doc := &document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}
	if doc.Version > currentVersion {
		return fmt.Errorf("storage version (%d) is newer than supported version (%d) - please upgrade citas", doc.Version, currentVersion)
	}
	doc.Version = currentVersion
	s.doc = doc
	return nil
}

// clone copies the document so a mutation can be discarded when the write fails.
func (d *document) clone() *document {
	c := *d
	c.Services = append([]models.Service(nil), d.Services...)
	c.Appointments = append([]models.Appointment(nil), d.Appointments...)
	c.Sync = append([]models.SyncRecord(nil), d.Sync...)
	return &c
}

// update applies fn to a copy of the document and keeps the copy only once it is on disk.
func (s *Store) update(fn func(d *document) error) error {
	if err := s.loaded(); err != nil {
		return err
	}
	next := s.doc.clone()
	if err := fn(next); err != nil {
		return err
	}
	if err := write(s.path, next); err != nil {
		return err
	}
	s.doc = next
	return nil
}

func (s *Store) save() error {
	return write(s.path, s.doc)
}

// write goes through a temporary file so a crash never leaves a truncated document.
func write(path string, doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write storage: %w", err)
	}
	return nil
}

func (s *Store) loaded() error {
	if s.doc == nil {
		return fmt.Errorf("storage not loaded")
	}
	return nil
}

func (s *Store) Close() error {
	s.doc = nil
	return nil
}

func (s *Store) GetConfigPath() string {
	return s.path
}

func (s *Store) GetSettings() (models.Settings, error) {
	if err := s.loaded(); err != nil {
		return models.Settings{}, err
	}
	settings := s.doc.Settings
	models.ApplyDefaultSettings(&settings)
	return settings, nil
}

func (s *Store) SaveSettings(settings models.Settings) error {
	return s.update(func(d *document) error {
		d.Settings = settings
		return nil
	})
}

func (s *Store) GetServices() ([]models.Service, error) {
	if err := s.loaded(); err != nil {
		return nil, err
	}
	services := append([]models.Service(nil), s.doc.Services...)
	sort.SliceStable(services, func(i, j int) bool { return services[i].Name < services[j].Name })
	return services, nil
}

func (s *Store) SaveService(svc models.Service) error {
	return s.update(func(d *document) error {
		for i := range d.Services {
			if d.Services[i].ID == svc.ID {
				d.Services[i] = svc
				return nil
			}
		}
		d.Services = append(d.Services, svc)
		return nil
	})
}

func (s *Store) GetAppointments() ([]models.Appointment, error) {
	if err := s.loaded(); err != nil {
		return nil, err
	}
	appts := append([]models.Appointment{}, s.doc.Appointments...)
	sort.SliceStable(appts, func(i, j int) bool {
		if appts[i].Date != appts[j].Date {
			return appts[i].Date < appts[j].Date
		}
		if appts[i].Time != appts[j].Time {
			return appts[i].Time < appts[j].Time
		}
		return appts[i].CreatedAt < appts[j].CreatedAt
	})
	return appts, nil
}

func (s *Store) index(id string) int {
	return s.doc.index(id)
}

func (d *document) index(id string) int {
	for i, a := range d.Appointments {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) GetAppointment(id string) (models.Appointment, error) {
	if err := s.loaded(); err != nil {
		return models.Appointment{}, err
	}
	i := s.index(id)
	if i < 0 {
		return models.Appointment{}, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	return s.doc.Appointments[i], nil
}

func (s *Store) SaveAppointment(appt models.Appointment) error {
	return s.update(func(d *document) error {
		if d.index(appt.ID) >= 0 {
			return fmt.Errorf("failed to save appointment %s: id already exists", appt.ID)
		}
		d.Appointments = append(d.Appointments, appt)
		return nil
	})
}

func (s *Store) UpdateAppointment(id string, patch models.AppointmentPatch) error {
	if err := s.loaded(); err != nil {
		return err
	}
	if s.index(id) < 0 {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	if patch.IsEmpty() {
		return nil
	}
	return s.update(func(d *document) error {
		i := d.index(id)
		d.Appointments[i] = patch.Apply(d.Appointments[i])
		return nil
	})
}

func (s *Store) CancelAppointment(id string) error {
	return s.UpdateAppointment(id, models.StatusPatch(models.StatusCancelled))
}

func (s *Store) DeleteAppointment(id string) error {
	return s.update(func(d *document) error {
		i := d.index(id)
		if i < 0 {
			return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
		}
		d.Appointments = append(d.Appointments[:i], d.Appointments[i+1:]...)
		d.dropSync(func(rec models.SyncRecord) bool { return rec.AppointmentID == id })
		return nil
	})
}

func (s *Store) ClearHistory() error {
	return s.update(func(d *document) error {
		kept := d.Appointments[:0]
		removed := map[string]bool{}
		for _, a := range d.Appointments {
			if a.Status == models.StatusScheduled {
				kept = append(kept, a)
			} else {
				removed[a.ID] = true
			}
		}
		d.Appointments = kept
		d.dropSync(func(rec models.SyncRecord) bool { return removed[rec.AppointmentID] })
		return nil
	})
}

func (s *Store) ClearAll() error {
	return s.update(func(d *document) error {
		d.Appointments = nil
		d.Sync = nil
		return nil
	})
}

func (d *document) dropSync(match func(models.SyncRecord) bool) {
	kept := d.Sync[:0]
	for _, rec := range d.Sync {
		if !match(rec) {
			kept = append(kept, rec)
		}
	}
	d.Sync = kept
}

func (s *Store) SaveSyncRecord(rec models.SyncRecord) error {
	return s.update(func(d *document) error {
		for i, existing := range d.Sync {
			if existing.AppointmentID == rec.AppointmentID && existing.Provider == rec.Provider {
				d.Sync[i] = rec
				return nil
			}
		}
		d.Sync = append(d.Sync, rec)
		return nil
	})
}

func (s *Store) GetSyncRecords(appointmentID string) ([]models.SyncRecord, error) {
	if err := s.loaded(); err != nil {
		return nil, err
	}
	records := []models.SyncRecord{}
	for _, rec := range s.doc.Sync {
		if rec.AppointmentID == appointmentID {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Provider < records[j].Provider })
	return records, nil
}
