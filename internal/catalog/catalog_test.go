package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viera97/calendar-appointments/internal/models"
)

type fakeServiceStore struct {
	services []models.Service
	err      error
}

func (f fakeServiceStore) GetServices() ([]models.Service, error) {
	return f.services, f.err
}

func TestStaticDefault(t *testing.T) {
	c := Default()

	services, err := c.Services(context.Background())
	require.NoError(t, err)
	assert.Len(t, services, 5)

	facial, err := c.Service(context.Background(), "3")
	require.NoError(t, err)
	assert.Equal(t, "Facial Hidratante", facial.Name)
	assert.Equal(t, 90, facial.DurationMin)

	_, err = c.Service(context.Background(), "99")
	assert.True(t, errors.Is(err, ErrUnknownService))
}

func TestStaticReturnsCopies(t *testing.T) {
	c := Default()
	services, _ := c.Services(context.Background())
	services[0].Name = "changed"

	again, _ := c.Services(context.Background())
	assert.Equal(t, "Corte de Cabello", again[0].Name)
}

func TestStoreCatalog(t *testing.T) {
	c := FromStore(fakeServiceStore{services: []models.Service{{ID: "7", Name: "Pedicure", DurationMin: 50}}})

	svc, err := c.Service(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, "Pedicure", svc.Name)

	failing := FromStore(fakeServiceStore{err: errors.New("disk error")})
	_, err = failing.Service(context.Background(), "7")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnknownService))
}
