package notify

import (
	"encoding/json"
	"time"

	"github.com/tphakala/fox-report/internal/errors"
	"github.com/tphakala/fox-report/internal/report"
)

// Summary is the data transfer object published over MQTT after a report
// run. Field names are part of the published contract; home-automation
// consumers key off them.
type Summary struct {
	GeneratedAt       string          `json:"generated_at"`
	Nights            int             `json:"nights"`
	TotalEvents       int             `json:"total_events"`
	Cameras           map[string]int  `json:"cameras"`
	AverageConfidence float64         `json:"average_confidence"`
	Windows           []SummaryWindow `json:"windows"`
}

// SummaryWindow is one analyzed night in the summary payload.
type SummaryWindow struct {
	Night  int    `json:"night"`
	Dusk   string `json:"dusk"`
	Dawn   string `json:"dawn"`
	Events int    `json:"events"`
}

// NewSummary condenses a report into the MQTT payload.
func NewSummary(data *report.Data) *Summary {
	s := &Summary{
		GeneratedAt:       data.Metadata.GeneratedAt.Format(time.RFC3339),
		Nights:            data.Metadata.TotalNights,
		TotalEvents:       data.Totals.TotalEvents,
		Cameras:           make(map[string]int, len(data.EventsByCamera)),
		AverageConfidence: data.Totals.AverageConfidence,
		Windows:           make([]SummaryWindow, 0, len(data.Metadata.DateRanges)),
	}

	for camera, cameraReport := range data.EventsByCamera {
		s.Cameras[camera] = cameraReport.Stats.EventCount
	}

	for _, dateRange := range data.Metadata.DateRanges {
		s.Windows = append(s.Windows, SummaryWindow{
			Night:  dateRange.Night,
			Dusk:   dateRange.Dusk.Format(time.RFC3339),
			Dawn:   dateRange.Dawn.Format(time.RFC3339),
			Events: dateRange.EventCount,
		})
	}

	return s
}

// JSON renders the summary as the published payload.
func (s *Summary) JSON() (string, error) {
	payload, err := json.Marshal(s)
	if err != nil {
		return "", errors.New(err).
			Component("notify").
			Category(errors.CategoryReport).
			Context("operation", "marshal_summary").
			Build()
	}
	return string(payload), nil
}
