package migration

import (
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockMigrator struct {
	mock.Mock
}

func (m *MockMigrator) Up() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockMigrator) Close() (error, error) {
	args := m.Called()
	return args.Error(0), args.Error(1)
}

func TestMigration_Up_Success(t *testing.T) {
	mockM := new(MockMigrator)
	mockM.On("Up").Return(nil)
	mockM.On("Close").Return(nil, nil)

	engine := func(databaseURL string) (Migrator, error) {
		assert.Equal(t, "sqlite3:///tmp/local.db", databaseURL)
		return mockM, nil
	}

	mg := New("/tmp/local.db", engine)
	err := mg.Up()

	assert.NoError(t, err)
	mockM.AssertExpectations(t)
}

func TestMigration_Up_NoChange(t *testing.T) {
	mockM := new(MockMigrator)

	// ErrNoChange must not be treated as a failure.
	mockM.On("Up").Return(migrate.ErrNoChange)
	mockM.On("Close").Return(nil, nil)

	engine := func(databaseURL string) (Migrator, error) {
		return mockM, nil
	}

	mg := New("/tmp/local.db", engine)
	err := mg.Up()

	assert.NoError(t, err)
}

func TestMigration_Up_EngineError(t *testing.T) {
	engineErr := errors.New("cannot open database")
	engine := func(databaseURL string) (Migrator, error) {
		return nil, engineErr
	}

	mg := New("/tmp/local.db", engine)
	err := mg.Up()

	assert.ErrorIs(t, err, engineErr)
}

func TestMigration_Up_CloseError(t *testing.T) {
	mockM := new(MockMigrator)
	closeErr := errors.New("source close failed")

	mockM.On("Up").Return(nil)
	mockM.On("Close").Return(closeErr, nil)

	engine := func(databaseURL string) (Migrator, error) {
		return mockM, nil
	}

	mg := New("/tmp/local.db", engine)
	err := mg.Up()

	assert.ErrorIs(t, err, closeErr)
}

func TestDefaultEngineEmbeddedSource(t *testing.T) {
	// The embedded migrations must be readable as an iofs source.
	entries, err := migrationsFS.ReadDir("migrations")
	assert.NoError(t, err)
	assert.NotEmpty(t, entries)
}
