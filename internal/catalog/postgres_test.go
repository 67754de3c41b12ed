package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresServicesAppliesDefaults(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "name", "description", "duration_minutes", "price"}).
		AddRow(2, "Manicure Completa", "Manicure con esmaltado", 45, 18000.0).
		AddRow(9, "Consulta", nil, nil, nil)
	mock.ExpectQuery("SELECT id, name, description, duration_minutes, price FROM services ORDER BY name").
		WillReturnRows(rows)

	c := NewPostgres(db)
	services, err := c.Services(context.Background())
	require.NoError(t, err)
	require.Len(t, services, 2)

	assert.Equal(t, "2", services[0].ID)
	assert.Equal(t, 45, services[0].DurationMin)
	assert.Equal(t, 18000.0, services[0].Price)

	assert.Equal(t, "9", services[1].ID)
	assert.Equal(t, "", services[1].Description)
	assert.Equal(t, 60, services[1].DurationMin)
	assert.Equal(t, 0.0, services[1].Price)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresServicesLoadedOnce(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id, name, description, duration_minutes, price FROM services").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "duration_minutes", "price"}).
			AddRow(1, "Corte de Cabello", "", 60, 25000.0))

	c := NewPostgres(db)
	_, err = c.Services(context.Background())
	require.NoError(t, err)

	svc, err := c.Service(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Corte de Cabello", svc.Name)

	_, err = c.Service(context.Background(), "2")
	assert.True(t, errors.Is(err, ErrUnknownService))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresServicesQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id, name").WillReturnError(errors.New("connection reset"))

	_, err = NewPostgres(db).Services(context.Background())
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenPostgresRejectsBadConnectionString(t *testing.T) {
	_, err := OpenPostgres("postgres://host:notaport/db")
	assert.Error(t, err)
}
