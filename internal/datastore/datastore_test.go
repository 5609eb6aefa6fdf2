package datastore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tphakala/fox-report/internal/conf"
	"github.com/tphakala/fox-report/internal/errors"
)

// TestMain routes the package file logger into a temporary directory so test
// runs do not leave a logs/ directory behind.
func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "datastore-test-logs")
	if err == nil {
		_ = InitializeLogger(filepath.Join(dir, "datastore.log"))
	}

	code := m.Run()

	_ = CloseLogger()
	if dir != "" {
		_ = os.RemoveAll(dir)
	}
	os.Exit(code)
}

// Schema mirrors the tables Frigate creates. The store never migrates, so the
// fixture has to build them itself.
const createEventTableSQL = `
CREATE TABLE event (
	id TEXT NOT NULL PRIMARY KEY,
	label TEXT NOT NULL,
	sub_label TEXT,
	camera TEXT NOT NULL,
	start_time REAL NOT NULL,
	end_time REAL,
	thumbnail TEXT,
	has_clip INTEGER,
	has_snapshot INTEGER,
	zones TEXT,
	area REAL,
	box TEXT,
	data TEXT
)`

const createTimelineTableSQL = `
CREATE TABLE timeline (
	timestamp REAL NOT NULL,
	camera TEXT NOT NULL,
	source TEXT,
	source_id TEXT,
	class_type TEXT,
	data TEXT
)`

var (
	windowStart = time.Date(2025, 1, 10, 22, 0, 0, 0, time.UTC)
	windowEnd   = time.Date(2025, 1, 11, 6, 0, 0, 0, time.UTC)
)

func ptr[T any](v T) *T { return &v }

// fixtureEvents covers the query axes: two cameras, an in-progress event, an
// out-of-window event, a non-fox label and a malformed data blob.
func fixtureEvents() []Event {
	return []Event{
		{
			ID:        "fox-backyard-1",
			Label:     "fox",
			Camera:    "backyard",
			StartTime: epochSeconds(windowStart.Add(1 * time.Hour)),
			EndTime:   ptr(epochSeconds(windowStart.Add(1*time.Hour + 150*time.Second))),
			Thumbnail: "dGh1bWI=",
			HasClip:   true,
			Zones:     `["garden"]`,
			Area:      ptr(1520.0),
			Data:      `{"score":0.92,"top_score":0.95}`,
		},
		{
			ID:        "fox-backyard-2",
			Label:     "fox",
			Camera:    "backyard",
			StartTime: epochSeconds(windowStart.Add(3*time.Hour + 30*time.Minute)),
			EndTime:   nil, // still in progress
			Data:      `{"score":0.81}`,
		},
		{
			ID:        "fox-driveway-1",
			Label:     "fox",
			Camera:    "driveway",
			StartTime: epochSeconds(windowStart.Add(5 * time.Hour)),
			EndTime:   ptr(epochSeconds(windowStart.Add(5*time.Hour + 60*time.Second))),
			HasClip:   true,
			Data:      `{"top_score":0.77}`,
		},
		{
			ID:        "fox-driveway-badjson",
			Label:     "fox",
			Camera:    "driveway",
			StartTime: epochSeconds(windowStart.Add(2*time.Hour + 15*time.Minute)),
			EndTime:   ptr(epochSeconds(windowStart.Add(2*time.Hour + 16*time.Minute))),
			Data:      `not json`,
		},
		{
			ID:        "fox-backyard-daytime",
			Label:     "fox",
			Camera:    "backyard",
			StartTime: epochSeconds(windowEnd.Add(6 * time.Hour)),
			EndTime:   ptr(epochSeconds(windowEnd.Add(6*time.Hour + 30*time.Second))),
			Data:      `{"score":0.66}`,
		},
		{
			ID:        "cat-backyard-1",
			Label:     "cat",
			Camera:    "backyard",
			StartTime: epochSeconds(windowStart.Add(2 * time.Hour)),
			EndTime:   ptr(epochSeconds(windowStart.Add(2*time.Hour + 45*time.Second))),
			Data:      `{"score":0.88}`,
		},
	}
}

func fixtureTimeline() []TimelineEntry {
	eventStart := windowStart.Add(1 * time.Hour)
	return []TimelineEntry{
		{Timestamp: epochSeconds(eventStart.Add(10 * time.Second)), Camera: "backyard", SourceID: "fox-backyard-1", ClassType: "visible"},
		{Timestamp: epochSeconds(eventStart.Add(60 * time.Second)), Camera: "backyard", SourceID: "fox-backyard-1", ClassType: "entered_zone", Data: `{"zone":"garden"}`},
		{Timestamp: epochSeconds(eventStart.Add(140 * time.Second)), Camera: "backyard", SourceID: "fox-backyard-1", ClassType: "gone"},
		// After the event ended, must not be returned for it
		{Timestamp: epochSeconds(eventStart.Add(5 * time.Minute)), Camera: "backyard", SourceID: "other", ClassType: "visible"},
		// Same time span but wrong camera
		{Timestamp: epochSeconds(eventStart.Add(60 * time.Second)), Camera: "driveway", SourceID: "other", ClassType: "visible"},
		// Exactly at the in-progress event's start time
		{Timestamp: epochSeconds(windowStart.Add(3*time.Hour + 30*time.Minute)), Camera: "backyard", SourceID: "fox-backyard-2", ClassType: "visible"},
	}
}

// createFixtureDatabase writes a Frigate-shaped database and returns its path.
func createFixtureDatabase(t *testing.T, withTimeline bool) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "frigate.db")

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err, "Failed to create fixture database")

	require.NoError(t, db.Exec(createEventTableSQL).Error)
	if withTimeline {
		require.NoError(t, db.Exec(createTimelineTableSQL).Error)
	}

	for i := range fixtureEvents() {
		event := fixtureEvents()[i]
		require.NoError(t, db.Create(&event).Error)
	}
	if withTimeline {
		for i := range fixtureTimeline() {
			entry := fixtureTimeline()[i]
			require.NoError(t, db.Create(&entry).Error)
		}
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	return dbPath
}

// openFixtureStore opens a populated fixture database through the read-only store.
func openFixtureStore(t *testing.T, withTimeline bool) *SQLiteStore {
	t.Helper()
	dbPath := createFixtureDatabase(t, withTimeline)

	settings := &conf.Settings{}
	settings.Database.Path = dbPath
	settings.Database.BusyTimeoutMs = 1000

	store, ok := New(settings).(*SQLiteStore)
	require.True(t, ok, "New should return a SQLite store")
	require.NoError(t, store.Open(), "Failed to open fixture database")
	t.Cleanup(func() {
		assert.NoError(t, store.Close(), "Failed to close datastore")
	})

	return store
}

func TestOpenMissingDatabaseFile(t *testing.T) {
	settings := &conf.Settings{}
	settings.Database.Path = filepath.Join(t.TempDir(), "does-not-exist.db")

	err := New(settings).Open()
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryDatabase), "expected a database error, got: %v", err)
	assert.Contains(t, err.Error(), "not found")
}

func TestOpenEmptyDatabasePath(t *testing.T) {
	settings := &conf.Settings{}

	err := New(settings).Open()
	require.Error(t, err)
	assert.True(t, errors.IsConfigurationError(err), "expected a configuration error, got: %v", err)
}

func TestOpenIsReadOnly(t *testing.T) {
	store := openFixtureStore(t, true)

	err := store.DB.Exec(`INSERT INTO event (id, label, camera, start_time) VALUES ('w', 'fox', 'backyard', 1.0)`).Error
	require.Error(t, err, "write against a read-only connection should fail")
	assert.Contains(t, err.Error(), "readonly")
}

func TestDetectionsInWindow(t *testing.T) {
	store := openFixtureStore(t, true)

	events, err := store.DetectionsInWindow("fox", windowStart, windowEnd, nil)
	require.NoError(t, err)
	require.Len(t, events, 4)

	// Newest first
	assert.Equal(t, "fox-driveway-1", events[0].ID)
	assert.Equal(t, "fox-backyard-2", events[1].ID)
	assert.Equal(t, "fox-driveway-badjson", events[2].ID)
	assert.Equal(t, "fox-backyard-1", events[3].ID)
}

func TestDetectionsInWindowCameraFilter(t *testing.T) {
	store := openFixtureStore(t, true)

	tests := []struct {
		name    string
		cameras []string
		wantIDs []string
	}{
		{
			name:    "single camera",
			cameras: []string{"backyard"},
			wantIDs: []string{"fox-backyard-2", "fox-backyard-1"},
		},
		{
			name:    "multiple cameras",
			cameras: []string{"backyard", "driveway"},
			wantIDs: []string{"fox-driveway-1", "fox-backyard-2", "fox-driveway-badjson", "fox-backyard-1"},
		},
		{
			name:    "unknown camera",
			cameras: []string{"garage"},
			wantIDs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := store.DetectionsInWindow("fox", windowStart, windowEnd, tt.cameras)
			require.NoError(t, err)

			gotIDs := make([]string, 0, len(events))
			for i := range events {
				gotIDs = append(gotIDs, events[i].ID)
			}
			assert.Equal(t, tt.wantIDs, gotIDs)
		})
	}
}

func TestDetectionsInWindowBoundsAreInclusive(t *testing.T) {
	store := openFixtureStore(t, true)

	firstStart := windowStart.Add(1 * time.Hour)
	events, err := store.DetectionsInWindow("fox", firstStart, firstStart, nil)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "fox-backyard-1", events[0].ID)
}

func TestDetectionsInWindowExcludesOtherLabels(t *testing.T) {
	store := openFixtureStore(t, true)

	events, err := store.DetectionsInWindow("fox", windowStart, windowEnd, nil)
	require.NoError(t, err)
	for i := range events {
		assert.Equal(t, "fox", events[i].Label)
	}

	events, err = store.DetectionsInWindow("wolf", windowStart, windowEnd, nil)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestDetectionsInWindowNotOpen(t *testing.T) {
	var ds DataStore

	_, err := ds.DetectionsInWindow("fox", windowStart, windowEnd, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryDatabase))
}

func TestTimelineForEvent(t *testing.T) {
	store := openFixtureStore(t, true)

	events, err := store.DetectionsInWindow("fox", windowStart, windowEnd, []string{"backyard"})
	require.NoError(t, err)
	require.Len(t, events, 2)

	// events[1] is fox-backyard-1, the completed event with timeline coverage
	entries, err := store.TimelineForEvent(&events[1])
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "visible", entries[0].ClassType)
	assert.Equal(t, "entered_zone", entries[1].ClassType)
	assert.Equal(t, "gone", entries[2].ClassType)

	// Oldest first
	for i := 1; i < len(entries); i++ {
		assert.LessOrEqual(t, entries[i-1].Timestamp, entries[i].Timestamp)
	}
}

func TestTimelineForEventInProgress(t *testing.T) {
	store := openFixtureStore(t, true)

	events, err := store.DetectionsInWindow("fox", windowStart, windowEnd, []string{"backyard"})
	require.NoError(t, err)
	require.Len(t, events, 2)

	inProgress := &events[0]
	require.Nil(t, inProgress.EndTime)

	// Bounds collapse to the start time, matching only the entry recorded there
	entries, err := store.TimelineForEvent(inProgress)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "fox-backyard-2", entries[0].SourceID)
}

func TestTimelineForEventNilEvent(t *testing.T) {
	store := openFixtureStore(t, true)

	_, err := store.TimelineForEvent(nil)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}

func TestCountDetections(t *testing.T) {
	store := openFixtureStore(t, true)

	tests := []struct {
		label string
		want  int64
	}{
		{"fox", 5},
		{"cat", 1},
		{"wolf", 0},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			count, err := store.CountDetections(tt.label)
			require.NoError(t, err)
			assert.Equal(t, tt.want, count)
		})
	}
}

func TestHasTimelineTable(t *testing.T) {
	withTimeline := openFixtureStore(t, true)
	assert.True(t, withTimeline.HasTimelineTable())

	withoutTimeline := openFixtureStore(t, false)
	assert.False(t, withoutTimeline.HasTimelineTable())
}

func TestCloseIsIdempotent(t *testing.T) {
	store := openFixtureStore(t, true)

	require.NoError(t, store.Close())
	// Second close through the deferred cleanup must not fail either
	assert.NoError(t, store.Close())
	assert.Nil(t, store.DB)
}
