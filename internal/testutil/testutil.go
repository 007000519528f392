// Package testutil holds helpers shared by package tests.
package testutil

import (
	"fmt"
	"io"
	"testing"

	"github.com/amaumene/gowatchlist/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

// NewLogger returns a logger that discards its output
func NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// NewDatabase opens a migrated in-memory SQLite database private to the test
func NewDatabase(t *testing.T) *models.Database {
	t.Helper()

	// A named shared-cache database keeps every pooled connection on the same data
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := models.Open(sqlite.Open(dsn), NewLogger())
	require.NoError(t, err)
	require.NoError(t, db.Migrate())

	t.Cleanup(func() {
		db.Close()
	})
	return db
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}
