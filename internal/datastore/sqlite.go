package datastore

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tphakala/fox-report/internal/conf"
	"github.com/tphakala/fox-report/internal/errors"
)

// SQLiteStore implements Store against a Frigate SQLite database.
type SQLiteStore struct {
	DataStore
	Settings *conf.Settings
}

// validateSQLiteConfig checks that the configured database file exists before
// a connection is attempted. SQLite would otherwise create an empty database
// and every query would silently return nothing.
func validateSQLiteConfig(path string) error {
	if path == "" {
		return errors.Newf("database path is empty").
			Component("datastore").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return errors.Newf("database file not found: %s", path).
				Component("datastore").
				Category(errors.CategoryDatabase).
				Context("path", path).
				Build()
		}
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryFileIO).
			Context("operation", "stat_database").
			Context("path", path).
			Build()
	}

	return nil
}

// Open connects to the Frigate database in read-only mode. Frigate owns the
// schema, so no migration is performed.
func (store *SQLiteStore) Open() error {
	dbPath := store.Settings.Database.Path
	if err := validateSQLiteConfig(dbPath); err != nil {
		return err
	}

	absolutePath, err := filepath.Abs(dbPath)
	if err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryFileIO).
			Context("operation", "resolve_database_path").
			Context("path", dbPath).
			Build()
	}

	busyTimeout := store.Settings.Database.BusyTimeoutMs
	if busyTimeout <= 0 {
		busyTimeout = 5000
	}
	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=%d", absolutePath, busyTimeout)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: createGormLogger()})
	if err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "open_database").
			Context("path", absolutePath).
			Build()
	}

	store.DB = db

	getLogger().Info("Opened Frigate database",
		"path", absolutePath,
		"busy_timeout_ms", busyTimeout,
		"timeline_table", store.HasTimelineTable())

	return nil
}

// Close closes the database connection.
func (store *SQLiteStore) Close() error {
	return store.DataStore.Close()
}
