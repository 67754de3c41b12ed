// Package catalog provides the services that can be booked.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/viera97/calendar-appointments/internal/models"
)

var ErrUnknownService = errors.New("unknown service")

// Catalog is a read-only source of bookable services.
type Catalog interface {
	Services(ctx context.Context) ([]models.Service, error)
	Service(ctx context.Context, id string) (models.Service, error)
}

// find looks id up in services, returning ErrUnknownService when absent.
func find(services []models.Service, id string) (models.Service, error) {
	for _, svc := range services {
		if svc.ID == id {
			return svc, nil
		}
	}
	return models.Service{}, fmt.Errorf("%w: %s", ErrUnknownService, id)
}

// Static is an in-memory catalog.
type Static struct {
	services []models.Service
}

func NewStatic(services []models.Service) *Static {
	return &Static{services: append([]models.Service(nil), services...)}
}

// Default returns the catalog a new business starts with.
func Default() *Static {
	return NewStatic(DefaultServices())
}

// DefaultServices lists the services seeded into a fresh store.
func DefaultServices() []models.Service {
	return []models.Service{
		{ID: "1", Name: "Corte de Cabello", Description: "Corte profesional con lavado y secado", DurationMin: 60, Price: 25000},
		{ID: "2", Name: "Manicure Completa", Description: "Manicure con esmaltado y decoración", DurationMin: 45, Price: 18000},
		{ID: "3", Name: "Facial Hidratante", Description: "Tratamiento facial completo con masaje", DurationMin: 90, Price: 35000},
		{ID: "4", Name: "Masaje Relajante", Description: "Masaje corporal de 60 minutos", DurationMin: 60, Price: 40000},
		{ID: "5", Name: "Depilación Cejas", Description: "Perfilado y depilación de cejas", DurationMin: 30, Price: 12000},
	}
}

func (s *Static) Services(context.Context) ([]models.Service, error) {
	return append([]models.Service(nil), s.services...), nil
}

func (s *Static) Service(_ context.Context, id string) (models.Service, error) {
	return find(s.services, id)
}

// ServiceStore is implemented by the local record stores.
type ServiceStore interface {
	GetServices() ([]models.Service, error)
}

// Store serves the services table of the local store.
type Store struct {
	store ServiceStore
}

func FromStore(store ServiceStore) *Store {
	return &Store{store: store}
}

func (s *Store) Services(context.Context) ([]models.Service, error) {
	return s.store.GetServices()
}

func (s *Store) Service(ctx context.Context, id string) (models.Service, error) {
	services, err := s.Services(ctx)
	if err != nil {
		return models.Service{}, err
	}
	return find(services, id)
}
