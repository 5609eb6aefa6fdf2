package datastore

import (
	"encoding/json"
	"time"
)

// Event mirrors one row of Frigate's event table. Frigate owns the schema;
// this store never migrates or writes it.
type Event struct {
	ID          string   `gorm:"column:id;primaryKey"`
	Camera      string   `gorm:"column:camera"`
	Label       string   `gorm:"column:label"`
	SubLabel    *string  `gorm:"column:sub_label"`
	StartTime   float64  `gorm:"column:start_time"` // Unix epoch seconds
	EndTime     *float64 `gorm:"column:end_time"`   // nil while the event is still in progress
	Thumbnail   string   `gorm:"column:thumbnail"`  // base64 encoded JPEG
	HasClip     bool     `gorm:"column:has_clip"`
	HasSnapshot bool     `gorm:"column:has_snapshot"`
	Zones       string   `gorm:"column:zones"` // JSON array of zone names
	Area        *float64 `gorm:"column:area"`
	Box         string   `gorm:"column:box"`  // JSON bounding box
	Data        string   `gorm:"column:data"` // JSON blob, holds the detection score
}

// TableName maps the model to Frigate's singular table name
func (Event) TableName() string {
	return "event"
}

// eventData is the subset of the event data JSON blob this application reads
type eventData struct {
	Score    float64 `json:"score"`
	TopScore float64 `json:"top_score"`
}

// Confidence returns the detection score from the event's data blob.
// Malformed or missing data yields 0.
func (e *Event) Confidence() float64 {
	if e.Data == "" {
		return 0
	}
	var data eventData
	if err := json.Unmarshal([]byte(e.Data), &data); err != nil {
		return 0
	}
	if data.Score > 0 {
		return data.Score
	}
	return data.TopScore
}

// Duration returns the event length in seconds, 0 for in-progress events.
func (e *Event) Duration() float64 {
	if e.EndTime == nil {
		return 0
	}
	return *e.EndTime - e.StartTime
}

// StartAt returns the event start as a time in the given location.
func (e *Event) StartAt(loc *time.Location) time.Time {
	return epochToTime(e.StartTime, loc)
}

// EndAt returns the event end as a time in the given location. In-progress
// events report their start time.
func (e *Event) EndAt(loc *time.Location) time.Time {
	if e.EndTime == nil {
		return e.StartAt(loc)
	}
	return epochToTime(*e.EndTime, loc)
}

// ZoneNames parses the zones JSON array. Malformed data yields an empty slice.
func (e *Event) ZoneNames() []string {
	if e.Zones == "" {
		return nil
	}
	var zones []string
	if err := json.Unmarshal([]byte(e.Zones), &zones); err != nil {
		return nil
	}
	return zones
}

// TimelineEntry mirrors one row of Frigate's timeline table.
type TimelineEntry struct {
	Timestamp float64 `gorm:"column:timestamp"` // Unix epoch seconds
	Camera    string  `gorm:"column:camera"`
	SourceID  string  `gorm:"column:source_id"` // event id the entry belongs to
	ClassType string  `gorm:"column:class_type"`
	Data      string  `gorm:"column:data"` // JSON blob
}

// TableName maps the model to Frigate's singular table name
func (TimelineEntry) TableName() string {
	return "timeline"
}

// At returns the entry timestamp as a time in the given location.
func (t *TimelineEntry) At(loc *time.Location) time.Time {
	return epochToTime(t.Timestamp, loc)
}

// epochToTime converts fractional Unix epoch seconds to a localized time
func epochToTime(epoch float64, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	sec := int64(epoch)
	nsec := int64((epoch - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).In(loc)
}

// epochSeconds converts a time to fractional Unix epoch seconds
func epochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}
