// Package sqlstore implements the record store on top of database/sql.
// Queries are written with ? placeholders and rebound per dialect.
package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/viera97/calendar-appointments/internal/migration"
	"github.com/viera97/calendar-appointments/internal/models"
	"github.com/viera97/calendar-appointments/internal/storage"
)

type Base struct {
	DB      *sql.DB
	Dialect migration.Dialect
}

func (b *Base) q(query string) string {
	return b.Dialect.Rebind(query)
}

func (b *Base) ready() error {
	if b.DB == nil {
		return fmt.Errorf("storage not loaded")
	}
	return nil
}

// Ping checks that the database answers a trivial query.
func (b *Base) Ping() error {
	if err := b.ready(); err != nil {
		return err
	}
	var one int
	if err := b.DB.QueryRow("SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}
	return nil
}

func (b *Base) GetSettings() (models.Settings, error) {
	if err := b.ready(); err != nil {
		return models.Settings{}, err
	}

	rows, err := b.DB.Query("SELECT key, value FROM settings")
	if err != nil {
		return models.Settings{}, err
	}
	defer rows.Close()

	data := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return models.Settings{}, err
		}
		data[key] = value
	}
	if err := rows.Err(); err != nil {
		return models.Settings{}, err
	}
	if len(data) == 0 {
		return models.Settings{}, fmt.Errorf("settings not found")
	}

	settings, err := models.MapToSettings(data)
	if err != nil {
		return models.Settings{}, err
	}
	models.ApplyDefaultSettings(&settings)
	return settings, nil
}

func (b *Base) SaveSettings(settings models.Settings) error {
	if err := b.ready(); err != nil {
		return err
	}

	tx, err := b.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(b.q("INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT (key) DO UPDATE SET value = excluded.value"))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for key, value := range models.SettingsToMap(settings) {
		if _, err := stmt.Exec(key, value); err != nil {
			return fmt.Errorf("saving setting %s: %w", key, err)
		}
	}

	return tx.Commit()
}

func (b *Base) GetServices() ([]models.Service, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}

	rows, err := b.DB.Query("SELECT id, name, description, duration_min, price FROM services ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	services := []models.Service{}
	for rows.Next() {
		var svc models.Service
		if err := rows.Scan(&svc.ID, &svc.Name, &svc.Description, &svc.DurationMin, &svc.Price); err != nil {
			return nil, err
		}
		services = append(services, svc)
	}
	return services, rows.Err()
}

func (b *Base) SaveService(svc models.Service) error {
	if err := b.ready(); err != nil {
		return err
	}

	_, err := b.DB.Exec(b.q(`
		INSERT INTO services (id, name, description, duration_min, price)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			duration_min = excluded.duration_min,
			price = excluded.price`),
		svc.ID, svc.Name, svc.Description, svc.DurationMin, svc.Price)
	return err
}

const appointmentColumns = "id, client_name, client_phone, service_id, service_name, date, time, status, is_new_client, notes, created_at"

type scanner interface {
	Scan(dest ...any) error
}

func scanAppointment(row scanner) (models.Appointment, error) {
	var appt models.Appointment
	var status string
	err := row.Scan(&appt.ID, &appt.ClientName, &appt.ClientPhone, &appt.ServiceID, &appt.ServiceName,
		&appt.Date, &appt.Time, &status, &appt.IsNewClient, &appt.Notes, &appt.CreatedAt)
	appt.Status = models.AppointmentStatus(status)
	return appt, err
}

func (b *Base) GetAppointments() ([]models.Appointment, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}

	rows, err := b.DB.Query("SELECT " + appointmentColumns + " FROM appointments ORDER BY date, time, created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	appts := []models.Appointment{}
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, appt)
	}
	return appts, rows.Err()
}

func (b *Base) GetAppointment(id string) (models.Appointment, error) {
	if err := b.ready(); err != nil {
		return models.Appointment{}, err
	}

	appt, err := scanAppointment(b.DB.QueryRow(b.q("SELECT "+appointmentColumns+" FROM appointments WHERE id = ?"), id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Appointment{}, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	return appt, err
}

func (b *Base) SaveAppointment(appt models.Appointment) error {
	if err := b.ready(); err != nil {
		return err
	}

	_, err := b.DB.Exec(b.q("INSERT INTO appointments ("+appointmentColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"),
		appt.ID, appt.ClientName, appt.ClientPhone, appt.ServiceID, appt.ServiceName,
		appt.Date, appt.Time, string(appt.Status), appt.IsNewClient, appt.Notes, appt.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save appointment %s: %w", appt.ID, err)
	}
	return nil
}

func (b *Base) UpdateAppointment(id string, patch models.AppointmentPatch) error {
	if err := b.ready(); err != nil {
		return err
	}

	var sets []string
	var args []any
	add := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}
	if patch.ClientName != nil {
		add("client_name", *patch.ClientName)
	}
	if patch.ClientPhone != nil {
		add("client_phone", *patch.ClientPhone)
	}
	if patch.Date != nil {
		add("date", *patch.Date)
	}
	if patch.Time != nil {
		add("time", *patch.Time)
	}
	if patch.Status != nil {
		add("status", string(*patch.Status))
	}
	if patch.Notes != nil {
		add("notes", *patch.Notes)
	}

	if len(sets) == 0 {
		// Nothing to change, but the id must still exist.
		_, err := b.GetAppointment(id)
		return err
	}

	args = append(args, id)
	res, err := b.DB.Exec(b.q("UPDATE appointments SET "+strings.Join(sets, ", ")+" WHERE id = ?"), args...)
	if err != nil {
		return fmt.Errorf("failed to update appointment %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	return nil
}

func (b *Base) CancelAppointment(id string) error {
	return b.UpdateAppointment(id, models.StatusPatch(models.StatusCancelled))
}

func (b *Base) DeleteAppointment(id string) error {
	if err := b.ready(); err != nil {
		return err
	}

	tx, err := b.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(b.q("DELETE FROM appointment_sync WHERE appointment_id = ?"), id); err != nil {
		return err
	}
	res, err := tx.Exec(b.q("DELETE FROM appointments WHERE id = ?"), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	return tx.Commit()
}

func (b *Base) ClearHistory() error {
	if err := b.ready(); err != nil {
		return err
	}

	tx, err := b.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	scheduled := string(models.StatusScheduled)
	if _, err := tx.Exec(b.q("DELETE FROM appointment_sync WHERE appointment_id IN (SELECT id FROM appointments WHERE status <> ?)"), scheduled); err != nil {
		return err
	}
	if _, err := tx.Exec(b.q("DELETE FROM appointments WHERE status <> ?"), scheduled); err != nil {
		return err
	}
	return tx.Commit()
}

func (b *Base) ClearAll() error {
	if err := b.ready(); err != nil {
		return err
	}

	tx, err := b.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM appointment_sync"); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM appointments"); err != nil {
		return err
	}
	return tx.Commit()
}

func (b *Base) SaveSyncRecord(rec models.SyncRecord) error {
	if err := b.ready(); err != nil {
		return err
	}

	_, err := b.DB.Exec(b.q(`
		INSERT INTO appointment_sync (appointment_id, provider, remote_id, status, error, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (appointment_id, provider) DO UPDATE SET
			remote_id = excluded.remote_id,
			status = excluded.status,
			error = excluded.error,
			updated_at = excluded.updated_at`),
		rec.AppointmentID, rec.Provider, rec.RemoteID, string(rec.Status), rec.Error, rec.UpdatedAt)
	return err
}

func (b *Base) GetSyncRecords(appointmentID string) ([]models.SyncRecord, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}

	rows, err := b.DB.Query(b.q(`
		SELECT appointment_id, provider, remote_id, status, error, updated_at
		FROM appointment_sync WHERE appointment_id = ? ORDER BY provider`), appointmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []models.SyncRecord{}
	for rows.Next() {
		var rec models.SyncRecord
		var status string
		if err := rows.Scan(&rec.AppointmentID, &rec.Provider, &rec.RemoteID, &status, &rec.Error, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		rec.Status = models.SyncStatus(status)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SeedDefaults writes default settings and services into an empty database.
func (b *Base) SeedDefaults(services []models.Service) error {
	settings, err := b.GetSettings()
	if err != nil {
		settings = models.DefaultSettings()
	}
	if err := b.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save default settings: %w", err)
	}

	existing, err := b.GetServices()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, svc := range services {
		if err := b.SaveService(svc); err != nil {
			return fmt.Errorf("failed to seed service %s: %w", svc.ID, err)
		}
	}
	return nil
}
