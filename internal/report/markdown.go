package report

import (
	"strings"
	"text/template"

	"github.com/tphakala/fox-report/internal/errors"
)

// DefaultTopEvents caps the per-camera event list in the Markdown body.
const DefaultTopEvents = 5

// templateFuncs are shared by the Markdown and HTML renderers.
var templateFuncs = map[string]any{
	"take":     takeEvents,
	"overflow": overflowCount,
}

// takeEvents returns at most n leading events; n <= 0 means no limit.
func takeEvents(events []EventRecord, n int) []EventRecord {
	if n <= 0 || n >= len(events) {
		return events
	}
	return events[:n]
}

// overflowCount returns how many events the n-limit hides.
func overflowCount(events []EventRecord, n int) int {
	if n > 0 && len(events) > n {
		return len(events) - n
	}
	return 0
}

type markdownContext struct {
	Data      *Data
	TopEvents int
}

const markdownTemplate = `**Generated:** {{.Data.Metadata.GeneratedDisplay}}
**Nights Analyzed:** {{.Data.Metadata.TotalNights}} nights
**Total Events:** {{.Data.Totals.TotalEvents}}
**Cameras with Detections:** {{.Data.Totals.CamerasWithDetections}}
**Average Confidence:** {{printf "%.2f" .Data.Totals.AverageConfidence}}
**Total Duration:** {{printf "%.1f" .Data.Totals.TotalDurationSeconds}} seconds
## 📅 Analysis Time Ranges
{{- range .Data.Metadata.DateRanges}}
- **Night {{.Night}}:** {{.DuskDisplay}} - {{.DawnDisplay}} ({{.DurationDisplay}}, {{.EventCount}} events)
{{- end}}

{{if .Data.HasEvents -}}
## 📹 Events by Camera
{{- range $camera := .Data.CameraNames}}
{{- $report := index $.Data.EventsByCamera $camera}}
### {{$camera}}
- **Events:** {{$report.Stats.EventCount}}
- **Average Confidence:** {{printf "%.2f" $report.Stats.AverageConfidence}}
- **Total Duration:** {{printf "%.1f" $report.Stats.TotalDurationSeconds}} seconds

**Recent Events:**
{{- range take $report.Events $.TopEvents}}
- {{.StartDisplay}} | Confidence: {{.ConfidencePct}}% | Duration: {{.DurationDisplay}}{{if .EventURL}} | [Event]({{.EventURL}}){{end}}{{if .TimelineURL}} | [Timeline]({{.TimelineURL}}){{end}}
{{- end}}
{{- with overflow $report.Events $.TopEvents}}
- ... and {{.}} more events
{{- end}}
{{- end}}
{{else -}}
## 📹 Events by Camera

No fox detections found in the analyzed time period.
{{end}}`

var markdownTmpl = template.Must(template.New("markdown").Funcs(templateFuncs).Parse(markdownTemplate))

// RenderMarkdown renders the report as a Markdown email body. topEvents caps
// the per-camera event list; values <= 0 list everything.
func RenderMarkdown(data *Data, topEvents int) (string, error) {
	var buf strings.Builder
	if err := markdownTmpl.Execute(&buf, &markdownContext{Data: data, TopEvents: topEvents}); err != nil {
		return "", errors.New(err).
			Component("report").
			Category(errors.CategoryReport).
			Context("operation", "render_markdown").
			Build()
	}
	return buf.String(), nil
}
