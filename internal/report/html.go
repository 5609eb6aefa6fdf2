package report

import (
	"html/template"
	"strings"

	"github.com/tphakala/fox-report/internal/errors"
)

// DefaultHTMLEvents caps the per-camera event cards in the HTML body.
const DefaultHTMLEvents = 10

type htmlContext struct {
	Data         *Data
	MaxEvents    int
	ArtifactPath string
}

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Fox Detection Report</title>
<style>
body {
    font-family: Arial, sans-serif;
    margin: 20px;
    background-color: #f5f5f5;
}
.container {
    max-width: 900px;
    margin: 0 auto;
    background-color: white;
    padding: 20px;
    border-radius: 8px;
    box-shadow: 0 2px 4px rgba(0,0,0,0.1);
}
h1 { color: #333; border-bottom: 2px solid #ff6b35; padding-bottom: 10px; }
h2 { color: #555; margin-top: 24px; }
h3 { color: #666; margin: 4px 0 2px; }
.summary {
    background-color: #f8f9fa;
    padding: 15px;
    border-radius: 5px;
    margin: 12px 0;
}
.camera-section {
    margin: 6px 0;
    padding: 10px;
    background-color: #fafafa;
    border-radius: 5px;
}
.event {
    display: flex;
    align-items: center;
    margin: 6px 0;
    padding: 8px;
    background-color: white;
    border: 1px solid #e0e0e0;
    border-radius: 5px;
}
.thumbnail {
    width: 120px;
    height: 120px;
    margin-right: 15px;
    border-radius: 5px;
    object-fit: cover;
    box-shadow: 0 2px 4px rgba(0,0,0,0.1);
    cursor: pointer;
    transition: transform 0.2s, box-shadow 0.2s;
}
.thumbnail:hover {
    transform: scale(1.05);
    box-shadow: 0 4px 8px rgba(0,0,0,0.2);
}
.event-details {
    flex-grow: 1;
}
.event-time {
    font-weight: bold;
    color: #333;
    margin-bottom: 5px;
}
.event-info {
    color: #666;
    margin: 3px 0;
    font-size: 13px;
}
.event-links {
    margin-top: 8px;
}
.event-links a {
    margin-right: 10px;
    padding: 4px 8px;
    background-color: #007bff;
    color: white;
    text-decoration: none;
    border-radius: 3px;
    font-size: 14px;
}
.event-links a:hover {
    background-color: #0056b3;
}
.footer {
    margin-top: 30px;
    padding-top: 20px;
    border-top: 1px solid #e0e0e0;
    font-size: 0.9em;
    color: #666;
    text-align: center;
}
.no-events {
    text-align: center;
    padding: 40px;
    color: #999;
}
.camera-section:last-child { margin-bottom: 6px; }
.event:last-child { margin-bottom: 4px; }
</style>
</head>
<body>
<div class="container">
{{if .Data.HasEvents -}}
<h2>📹 Events by Camera</h2>
{{- range $camera := .Data.CameraNames}}
{{- $report := index $.Data.EventsByCamera $camera}}
<div class="camera-section">
<h3>{{$camera}}</h3>
<div class="event-info">
<strong>Events:</strong> {{$report.Stats.EventCount}} |
<strong>Average Confidence:</strong> {{printf "%.2f" $report.Stats.AverageConfidence}} |
<strong>Total Duration:</strong> {{printf "%.1f" $report.Stats.TotalDurationSeconds}} seconds
</div>
{{- range take $report.Events $.MaxEvents}}
<div class="event">
{{- if .ThumbnailDataURI}}
{{- if .EventURL}}
<a href="{{.EventURL}}" title="Click to view event video"><img src="{{.ThumbnailDataURI}}" class="thumbnail" alt="Fox detection thumbnail"></a>
{{- else}}
<img src="{{.ThumbnailDataURI}}" class="thumbnail" alt="Fox detection thumbnail">
{{- end}}
{{- end}}
<div class="event-details">
<div class="event-time">{{.StartDisplay}}</div>
<div class="event-info">Confidence: {{.ConfidencePct}}%</div>
<div class="event-info">Duration: {{.DurationDisplay}}</div>
<div class="event-links">
{{- if .EventURL}}
<a href="{{.EventURL}}">Event</a>
{{- end}}
{{- if .TimelineURL}}
<a href="{{.TimelineURL}}">Timeline</a>
{{- end}}
</div>
</div>
</div>
{{- end}}
{{- with overflow $report.Events $.MaxEvents}}
<p style="text-align: center; color: #999;">... and {{.}} more events</p>
{{- end}}
</div>
{{- end}}
{{else -}}
<div class="no-events">
<h2>No Fox Detections</h2>
<p>No fox detections were found in the analyzed time period.</p>
</div>
{{end -}}
<div class="summary">
<strong>Generated:</strong> {{.Data.Metadata.GeneratedDisplay}}<br>
<strong>Nights Analyzed:</strong> {{.Data.Metadata.TotalNights}}<br>
<strong>Total Events:</strong> {{.Data.Totals.TotalEvents}}<br>
<strong>Cameras with Detections:</strong> {{.Data.Totals.CamerasWithDetections}}<br>
<strong>Average Confidence:</strong> {{printf "%.2f" .Data.Totals.AverageConfidence}}<br>
<strong>Total Duration:</strong> {{printf "%.1f" .Data.Totals.TotalDurationSeconds}} seconds
</div>
<h2>📅 Analysis Time Ranges</h2>
<ul>
{{- range .Data.Metadata.DateRanges}}
<li><strong>Night {{.Night}}:</strong> {{.DuskDisplay}} - {{.DawnDisplay}} ({{.DurationDisplay}}, {{.EventCount}} events)</li>
{{- end}}
</ul>
<div class="footer">
<p>This report was automatically generated by the Frigate Fox Detection System.</p>
{{- if .ArtifactPath}}
<p>Full report data is available at {{.ArtifactPath}}.</p>
{{- end}}
</div>
</div>
</body>
</html>
`

var htmlTmpl = template.Must(template.New("html").Funcs(templateFuncs).Parse(htmlTemplate))

// RenderHTML renders the report as a styled HTML email body with inline
// thumbnails. maxEvents caps the per-camera event cards; values <= 0 show
// everything. artifactPath, when set, is referenced in the footer.
func RenderHTML(data *Data, maxEvents int, artifactPath string) (string, error) {
	var buf strings.Builder
	ctx := htmlContext{Data: data, MaxEvents: maxEvents, ArtifactPath: artifactPath}
	if err := htmlTmpl.Execute(&buf, &ctx); err != nil {
		return "", errors.New(err).
			Component("report").
			Category(errors.CategoryReport).
			Context("operation", "render_html").
			Build()
	}
	return buf.String(), nil
}
