package models

type SyncStatus string

const (
	SyncSynced  SyncStatus = "synced"
	SyncFailed  SyncStatus = "failed"
	SyncRemoved SyncStatus = "removed"
)

// SyncRecord is the outcome of pushing an appointment to one remote calendar.
type SyncRecord struct {
	AppointmentID string     `json:"appointment_id"`
	Provider      string     `json:"provider"`
	RemoteID      string     `json:"remote_id,omitempty"`
	Status        SyncStatus `json:"status"`
	Error         string     `json:"error,omitempty"`
	UpdatedAt     string     `json:"updated_at"` // RFC3339 timestamp
}
