package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifactPath(t *testing.T) {
	generated := time.Date(2025, 1, 11, 7, 0, 0, 0, time.UTC)

	assert.Equal(t, filepath.Join("/tmp", "fox_report_20250111.json"), ArtifactPath("/tmp", generated))
	assert.Equal(t, filepath.Join("out", "reports", "fox_report_20250111.json"), ArtifactPath("out/reports", generated))
}

func TestWriteJSONStripsThumbnails(t *testing.T) {
	data := renderData()
	path := filepath.Join(t.TempDir(), "report.json")

	require.NoError(t, WriteJSON(data, path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"thumbnail"`, "artifact should not embed thumbnail payloads")

	// The in-memory report keeps its thumbnails for HTML rendering
	assert.Equal(t, "dGh1bWJuYWls", data.EventsByCamera["backyard"].Events[0].Thumbnail)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Contains(t, decoded, "metadata")
	require.Contains(t, decoded, "events_by_camera")
	require.Contains(t, decoded, "totals")
}

func TestWriteJSONStructure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, WriteJSON(renderData(), path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(raw), "{\n  \"metadata\""), "artifact should be indented with two spaces")

	var decoded struct {
		Metadata struct {
			ReportID   string                       `json:"report_id"`
			DateRanges []map[string]json.RawMessage `json:"date_ranges"`
		} `json:"metadata"`
		EventsByCamera map[string]struct {
			Events []map[string]json.RawMessage `json:"events"`
		} `json:"events_by_camera"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "render-test", decoded.Metadata.ReportID)

	// Display-only fields stay out of the artifact
	require.Len(t, decoded.Metadata.DateRanges, 2)
	assert.Len(t, decoded.Metadata.DateRanges[0], 3)
	assert.Contains(t, decoded.Metadata.DateRanges[0], "night")
	assert.Contains(t, decoded.Metadata.DateRanges[0], "dusk")
	assert.Contains(t, decoded.Metadata.DateRanges[0], "dawn")

	backyard, ok := decoded.EventsByCamera["backyard"]
	require.True(t, ok)
	require.Len(t, backyard.Events, 2)
	assert.Contains(t, backyard.Events[0], "event_id")
	assert.Contains(t, backyard.Events[0], "night_index")
	assert.NotContains(t, backyard.Events[0], "start_display")
	assert.NotContains(t, backyard.Events[0], "event_url")

	// In-progress events serialize a null end_time
	assert.Equal(t, "null", string(backyard.Events[1]["end_time"]))
}

func TestWriteJSONCreatesOutputDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "reports", "report.json")

	require.NoError(t, WriteJSON(renderData(), path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestWithoutThumbnailsIsDeepCopy(t *testing.T) {
	data := renderData()
	stripped := data.WithoutThumbnails()

	assert.Empty(t, stripped.EventsByCamera["backyard"].Events[0].Thumbnail)
	assert.Equal(t, "dGh1bWJuYWls", data.EventsByCamera["backyard"].Events[0].Thumbnail)

	stripped.Metadata.NightsAnalyzed[0] = 99
	stripped.EventsByCamera["backyard"].Events[0].EventID = "mutated"
	assert.Equal(t, 1, data.Metadata.NightsAnalyzed[0])
	assert.Equal(t, "e1", data.EventsByCamera["backyard"].Events[0].EventID)
}
