// Package datastore provides read-only access to a Frigate NVR SQLite database.
package datastore

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tphakala/fox-report/internal/conf"
	"github.com/tphakala/fox-report/internal/errors"
)

// Store defines the database operations the report pipeline depends on.
type Store interface {
	Open() error
	Close() error
	DetectionsInWindow(label string, start, end time.Time, cameras []string) ([]Event, error)
	TimelineForEvent(event *Event) ([]TimelineEntry, error)
	CountDetections(label string) (int64, error)
	HasTimelineTable() bool
}

// DataStore implements the query half of Store on top of GORM. The concrete
// store types supply Open and Close.
type DataStore struct {
	DB *gorm.DB
}

// New creates a store for the database configured in settings. Frigate keeps
// its events in SQLite, so that is the only dialect.
func New(settings *conf.Settings) Store {
	return &SQLiteStore{
		Settings: settings,
	}
}

// DefaultSlowQueryThreshold is the duration above which queries are logged as slow
const DefaultSlowQueryThreshold = 500 * time.Millisecond

// createGormLogger creates a GORM logger that writes to the datastore log file
func createGormLogger() gormlogger.Interface {
	return NewGormLogger(DefaultSlowQueryThreshold, gormlogger.Warn)
}

// DetectionsInWindow retrieves events of the given label whose start time falls
// inside [start, end], newest first. An empty cameras slice matches all cameras.
func (ds *DataStore) DetectionsInWindow(label string, start, end time.Time, cameras []string) ([]Event, error) {
	if ds.DB == nil {
		return nil, errors.Newf("database not open").
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}

	query := ds.DB.Where("label = ? AND start_time BETWEEN ? AND ?",
		label, epochSeconds(start), epochSeconds(end))
	if len(cameras) > 0 {
		query = query.Where("camera IN ?", cameras)
	}

	var events []Event
	if err := query.Order("start_time DESC").Find(&events).Error; err != nil {
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "detections_in_window").
			Context("label", label).
			Build()
	}

	getLogger().Debug("Queried detections",
		"label", label,
		"start", start.Format(time.RFC3339),
		"end", end.Format(time.RFC3339),
		"cameras", len(cameras),
		"events", len(events))

	return events, nil
}

// TimelineForEvent retrieves timeline entries recorded on the event's camera
// during the event's lifetime, oldest first. In-progress events use their
// start time as the upper bound.
func (ds *DataStore) TimelineForEvent(event *Event) ([]TimelineEntry, error) {
	if ds.DB == nil {
		return nil, errors.Newf("database not open").
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	if event == nil {
		return nil, errors.Newf("event is nil").
			Component("datastore").
			Category(errors.CategoryValidation).
			Build()
	}

	endTime := event.StartTime
	if event.EndTime != nil {
		endTime = *event.EndTime
	}

	var entries []TimelineEntry
	err := ds.DB.Where("camera = ? AND timestamp BETWEEN ? AND ?",
		event.Camera, event.StartTime, endTime).
		Order("timestamp").
		Find(&entries).Error
	if err != nil {
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "timeline_for_event").
			Context("event_id", event.ID).
			Build()
	}

	return entries, nil
}

// CountDetections returns the total number of events with the given label.
// Used as a cheap connectivity and schema check.
func (ds *DataStore) CountDetections(label string) (int64, error) {
	if ds.DB == nil {
		return 0, errors.Newf("database not open").
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}

	var count int64
	if err := ds.DB.Model(&Event{}).Where("label = ?", label).Count(&count).Error; err != nil {
		return 0, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "count_detections").
			Context("label", label).
			Build()
	}

	return count, nil
}

// HasTimelineTable reports whether the Frigate database carries a timeline
// table. Older Frigate versions do not.
func (ds *DataStore) HasTimelineTable() bool {
	if ds.DB == nil {
		return false
	}
	return ds.DB.Migrator().HasTable(&TimelineEntry{})
}

// Close closes the underlying database connection.
func (ds *DataStore) Close() error {
	if ds.DB == nil {
		return nil
	}

	sqlDB, err := ds.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to access underlying database: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	ds.DB = nil
	return nil
}
