package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"sync"

	"github.com/lib/pq"

	"github.com/viera97/calendar-appointments/internal/constants"
	"github.com/viera97/calendar-appointments/internal/logger"
	"github.com/viera97/calendar-appointments/internal/models"
)

const servicesQuery = "SELECT id, name, description, duration_minutes, price FROM services ORDER BY name"

// Postgres reads the services table of a hosted PostgreSQL database.
// Rows are loaded once and cached for the session.
type Postgres struct {
	db *sql.DB

	mu       sync.Mutex
	services []models.Service
}

// OpenPostgres connects to the catalog database described by connStr.
func OpenPostgres(connStr string) (*Postgres, error) {
	connector, err := pq.NewConnector(connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog connection string: %w", err)
	}
	return NewPostgres(sql.OpenDB(connector)), nil
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Services(ctx context.Context) ([]models.Service, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.services != nil {
		return append([]models.Service(nil), p.services...), nil
	}

	rows, err := p.db.QueryContext(ctx, servicesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query services: %w", err)
	}
	defer rows.Close()

	services := []models.Service{}
	for rows.Next() {
		var (
			id          int64
			name        string
			description sql.NullString
			duration    sql.NullInt64
			price       sql.NullFloat64
		)
		if err := rows.Scan(&id, &name, &description, &duration, &price); err != nil {
			return nil, fmt.Errorf("failed to scan service: %w", err)
		}
		services = append(services, serviceFromRow(id, name, description, duration, price))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read services: %w", err)
	}

	logger.Debug("Loaded services catalog", "count", len(services))
	p.services = services
	return append([]models.Service(nil), services...), nil
}

func (p *Postgres) Service(ctx context.Context, id string) (models.Service, error) {
	services, err := p.Services(ctx)
	if err != nil {
		return models.Service{}, err
	}
	return find(services, id)
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

// serviceFromRow applies the defaults for nullable columns.
func serviceFromRow(id int64, name string, description sql.NullString, duration sql.NullInt64, price sql.NullFloat64) models.Service {
	svc := models.Service{
		ID:          strconv.FormatInt(id, 10),
		Name:        name,
		DurationMin: constants.FallbackDurationMin,
	}
	if description.Valid {
		svc.Description = description.String
	}
	if duration.Valid && duration.Int64 > 0 {
		svc.DurationMin = int(duration.Int64)
	}
	if price.Valid {
		svc.Price = price.Float64
	}
	return svc
}
