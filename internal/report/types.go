// Package report assembles fox detection events into a structured report and
// renders it as Markdown, HTML, and a JSON artifact.
package report

import (
	"html/template"
	"slices"
	"time"
)

// Data is the structured report. Field names mirror the JSON artifact layout;
// render-only fields are tagged out of it.
type Data struct {
	Metadata       Metadata                 `json:"metadata"`
	EventsByCamera map[string]*CameraReport `json:"events_by_camera"`
	Totals         Totals                   `json:"totals"`
}

// Metadata describes the report run and the analyzed night windows.
type Metadata struct {
	ReportID       string      `json:"report_id"`
	GeneratedAt    time.Time   `json:"generated_at"`
	NightsAnalyzed []int       `json:"nights_analyzed"`
	TotalNights    int         `json:"total_nights"`
	DateRanges     []DateRange `json:"date_ranges"`
}

// GeneratedDisplay formats the generation time for report headers.
func (m *Metadata) GeneratedDisplay() string {
	return m.GeneratedAt.Format("2006-01-02 15:04:05 MST")
}

// DateRange is one analyzed night window. Night 1 is the most recent night.
type DateRange struct {
	Night int       `json:"night"`
	Dusk  time.Time `json:"dusk"`
	Dawn  time.Time `json:"dawn"`

	// Render-only fields, excluded from the JSON artifact
	DuskDisplay     string `json:"-"`
	DawnDisplay     string `json:"-"`
	DurationDisplay string `json:"-"`
	EventCount      int    `json:"-"`
}

// CameraReport groups one camera's events with its aggregate stats.
type CameraReport struct {
	Events []EventRecord `json:"events"`
	Stats  CameraStats   `json:"stats"`
}

// CameraStats aggregates one camera's detections.
type CameraStats struct {
	EventCount           int     `json:"event_count"`
	AverageConfidence    float64 `json:"average_confidence"`
	TotalDurationSeconds float64 `json:"total_duration_seconds"`
}

// Totals aggregates the whole report.
type Totals struct {
	TotalEvents           int     `json:"total_events"`
	CamerasWithDetections int     `json:"cameras_with_detections"`
	AverageConfidence     float64 `json:"average_confidence"`
	TotalDurationSeconds  float64 `json:"total_duration_seconds"`
}

// EventRecord is one detection as exported to the report.
type EventRecord struct {
	EventID          string            `json:"event_id"`
	Confidence       float64           `json:"confidence"`
	Camera           string            `json:"camera"`
	StartTime        string            `json:"start_time"`
	EndTime          *string           `json:"end_time"`
	DurationSeconds  float64           `json:"duration_seconds"`
	Thumbnail        string            `json:"thumbnail,omitempty"`
	Clip             bool              `json:"clip"`
	Zones            string            `json:"zones"`
	SubLabel         *string           `json:"sub_label"`
	Area             *float64          `json:"area"`
	Box              string            `json:"box"`
	StartTimestamp   float64           `json:"start_timestamp"`
	EndTimestamp     float64           `json:"end_timestamp"`
	NightIndex       int               `json:"night_index"`
	TimelineSegments []TimelineSegment `json:"timeline_segments,omitempty"`

	// Render-only fields, excluded from the JSON artifact
	StartDisplay    string `json:"-"`
	ConfidencePct   string `json:"-"`
	DurationDisplay string `json:"-"`
	EventURL        string `json:"-"`
	TimelineURL     string `json:"-"`
}

// ThumbnailDataURI returns the thumbnail as an inline image source. The
// template.URL type keeps html/template from rejecting the data scheme; the
// content is base64 written by Frigate itself.
func (e *EventRecord) ThumbnailDataURI() template.URL {
	if e.Thumbnail == "" {
		return ""
	}
	return template.URL("data:image/jpeg;base64," + e.Thumbnail)
}

// TimelineSegment is one timeline row attached to an event.
type TimelineSegment struct {
	Timestamp float64 `json:"timestamp"`
	Camera    string  `json:"camera"`
	SourceID  string  `json:"source_id"`
	ClassType string  `json:"class_type"`
	Data      string  `json:"data"`
}

// HasEvents reports whether any camera recorded a detection.
func (d *Data) HasEvents() bool {
	return len(d.EventsByCamera) > 0
}

// CameraNames returns the camera names in stable alphabetical order for
// deterministic rendering.
func (d *Data) CameraNames() []string {
	names := make([]string, 0, len(d.EventsByCamera))
	for name := range d.EventsByCamera {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// WithoutThumbnails returns a deep copy with every thumbnail cleared. The JSON
// artifact drops them to keep the file size reasonable.
func (d *Data) WithoutThumbnails() *Data {
	clone := *d
	clone.Metadata.NightsAnalyzed = slices.Clone(d.Metadata.NightsAnalyzed)
	clone.Metadata.DateRanges = slices.Clone(d.Metadata.DateRanges)
	clone.EventsByCamera = make(map[string]*CameraReport, len(d.EventsByCamera))

	for camera, cameraReport := range d.EventsByCamera {
		events := slices.Clone(cameraReport.Events)
		for i := range events {
			events[i].Thumbnail = ""
			events[i].TimelineSegments = slices.Clone(events[i].TimelineSegments)
		}
		clone.EventsByCamera[camera] = &CameraReport{
			Events: events,
			Stats:  cameraReport.Stats,
		}
	}

	return &clone
}
