package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tphakala/fox-report/internal/conf"
	"github.com/tphakala/fox-report/internal/datastore"
	"github.com/tphakala/fox-report/internal/frigate"
	"github.com/tphakala/fox-report/internal/logging"
	"github.com/tphakala/fox-report/internal/nightwindow"
)

// ClipVerifier checks whether an event's clip is actually downloadable.
// *frigate.Client satisfies it.
type ClipVerifier interface {
	VerifyClip(ctx context.Context, eventID string) bool
}

// Builder assembles report Data from resolved night windows and the event
// database.
type Builder struct {
	store    datastore.Store
	settings *conf.Settings
	verifier ClipVerifier
	loc      *time.Location
	logger   *slog.Logger
}

// NewBuilder creates a report builder. verifier may be nil to skip clip
// verification; a nil location falls back to UTC.
func NewBuilder(store datastore.Store, settings *conf.Settings, verifier ClipVerifier, loc *time.Location) *Builder {
	if loc == nil {
		loc = time.UTC
	}
	logger := logging.ForService("report")
	if logger == nil {
		logger = slog.Default().With("service", "report")
	}
	return &Builder{
		store:    store,
		settings: settings,
		verifier: verifier,
		loc:      loc,
		logger:   logger,
	}
}

// Build queries detections for every resolved night window and assembles the
// structured report. Night 1 is the most recent night, matching the order
// nightwindow.ResolveMany returns.
func (b *Builder) Build(ctx context.Context, ranges []nightwindow.NightRange) (*Data, error) {
	label := b.settings.Frigate.Label
	cameras := b.settings.Frigate.Cameras

	b.logger.Info("Generating detection report",
		"label", label,
		"nights", len(ranges),
		"cameras", len(cameras))

	attachTimeline := false
	if b.settings.Frigate.Timeline {
		attachTimeline = b.store.HasTimelineTable()
		if !attachTimeline {
			b.logger.Warn("Timeline table not found in database")
		}
	}

	data := &Data{
		Metadata: Metadata{
			ReportID:       uuid.NewString(),
			GeneratedAt:    clock.Now().In(b.loc),
			NightsAnalyzed: make([]int, 0, len(ranges)),
			TotalNights:    len(ranges),
			DateRanges:     make([]DateRange, 0, len(ranges)),
		},
		EventsByCamera: make(map[string]*CameraReport),
	}

	var totalConfidence, totalDuration float64
	totalEvents := 0

	for i := range ranges {
		night := i + 1
		window := &ranges[i]

		events, err := b.store.DetectionsInWindow(label, window.Start, window.End, cameras)
		if err != nil {
			return nil, fmt.Errorf("failed to query night %d of %d: %w", night, len(ranges), err)
		}

		b.logger.Debug("Queried night window",
			"night", night,
			"start", window.Start.Format(time.RFC3339),
			"end", window.End.Format(time.RFC3339),
			"method", window.Method,
			"events", len(events))

		for j := range events {
			record := b.buildRecord(ctx, &events[j], night, attachTimeline)

			cameraReport, ok := data.EventsByCamera[record.Camera]
			if !ok {
				cameraReport = &CameraReport{}
				data.EventsByCamera[record.Camera] = cameraReport
			}
			cameraReport.Events = append(cameraReport.Events, record)

			totalConfidence += record.Confidence
			totalDuration += record.DurationSeconds
		}
		totalEvents += len(events)

		data.Metadata.NightsAnalyzed = append(data.Metadata.NightsAnalyzed, night)
		data.Metadata.DateRanges = append(data.Metadata.DateRanges, DateRange{
			Night:           night,
			Dusk:            window.Start,
			Dawn:            window.End,
			DuskDisplay:     window.Start.In(b.loc).Format("01/02 15:04"),
			DawnDisplay:     window.End.In(b.loc).Format("15:04"),
			DurationDisplay: formatNightDuration(window.Duration()),
			EventCount:      len(events),
		})
	}

	for _, cameraReport := range data.EventsByCamera {
		stats := &cameraReport.Stats
		stats.EventCount = len(cameraReport.Events)

		var confidence, duration float64
		for i := range cameraReport.Events {
			confidence += cameraReport.Events[i].Confidence
			duration += cameraReport.Events[i].DurationSeconds
		}
		if stats.EventCount > 0 {
			stats.AverageConfidence = confidence / float64(stats.EventCount)
		}
		stats.TotalDurationSeconds = duration
	}

	data.Totals.TotalEvents = totalEvents
	data.Totals.CamerasWithDetections = len(data.EventsByCamera)
	if totalEvents > 0 {
		data.Totals.AverageConfidence = totalConfidence / float64(totalEvents)
	}
	data.Totals.TotalDurationSeconds = totalDuration

	b.logger.Info("Report assembled",
		"report_id", data.Metadata.ReportID,
		"total_events", totalEvents,
		"cameras", len(data.EventsByCamera))

	return data, nil
}

func (b *Builder) buildRecord(ctx context.Context, event *datastore.Event, night int, attachTimeline bool) EventRecord {
	confidence := event.Confidence()
	duration := event.Duration()

	record := EventRecord{
		EventID:         event.ID,
		Confidence:      confidence,
		Camera:          event.Camera,
		StartTime:       formatEpochUTC(event.StartTime),
		DurationSeconds: duration,
		Thumbnail:       event.Thumbnail,
		Clip:            event.HasClip,
		Zones:           event.Zones,
		SubLabel:        event.SubLabel,
		Area:            event.Area,
		Box:             event.Box,
		StartTimestamp:  event.StartTime,
		NightIndex:      night,

		StartDisplay:    event.StartAt(b.loc).Format("01/02 15:04"),
		ConfidencePct:   fmt.Sprintf("%.0f", confidence*100),
		DurationDisplay: formatEventDuration(duration),
	}

	if event.EndTime != nil {
		endTime := formatEpochUTC(*event.EndTime)
		record.EndTime = &endTime
		record.EndTimestamp = *event.EndTime
	}

	if host := b.settings.Frigate.Host; host != "" {
		record.EventURL = frigate.ClipURL(host, event.ID)
		record.TimelineURL = frigate.TimelineURL(host, event.Camera,
			record.StartTimestamp, record.EndTimestamp, frigate.DefaultTimelinePadding)
	}

	if b.verifier != nil && record.Clip {
		if !b.verifier.VerifyClip(ctx, event.ID) {
			b.logger.Warn("Clip not available, dropping link", "event_id", event.ID)
			record.Clip = false
			record.EventURL = ""
		}
	}

	if attachTimeline {
		entries, err := b.store.TimelineForEvent(event)
		if err != nil {
			b.logger.Warn("Failed to load timeline segments",
				"event_id", event.ID,
				"error", err)
		} else {
			segments := make([]TimelineSegment, 0, len(entries))
			for i := range entries {
				segments = append(segments, TimelineSegment{
					Timestamp: entries[i].Timestamp,
					Camera:    entries[i].Camera,
					SourceID:  entries[i].SourceID,
					ClassType: entries[i].ClassType,
					Data:      entries[i].Data,
				})
			}
			record.TimelineSegments = segments
		}
	}

	return record
}

// formatEpochUTC renders an epoch the way SQLite's datetime(x, 'unixepoch')
// does: UTC at second precision.
func formatEpochUTC(epoch float64) string {
	return time.Unix(int64(epoch), 0).UTC().Format("2006-01-02 15:04:05")
}

func formatEventDuration(seconds float64) string {
	if seconds > 0 {
		return fmt.Sprintf("%.1fs", seconds)
	}
	return "N/A"
}

func formatNightDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) - hours*60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
