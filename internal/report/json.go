package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tphakala/fox-report/internal/errors"
)

// ArtifactPath returns the JSON artifact location for a report generated at
// the given time: <outputDir>/fox_report_YYYYMMDD.json.
func ArtifactPath(outputDir string, generatedAt time.Time) string {
	return filepath.Join(outputDir, fmt.Sprintf("fox_report_%s.json", generatedAt.Format("20060102")))
}

// WriteJSON writes the report to path with thumbnails stripped and the JSON
// indented for human inspection.
func WriteJSON(data *Data, path string) error {
	stripped := data.WithoutThumbnails()

	payload, err := json.MarshalIndent(stripped, "", "  ")
	if err != nil {
		return errors.New(err).
			Component("report").
			Category(errors.CategoryReport).
			Context("operation", "marshal_report").
			Build()
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.New(err).
				Component("report").
				Category(errors.CategoryFileIO).
				Context("operation", "create_output_dir").
				Context("path", dir).
				Build()
		}
	}

	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return errors.New(err).
			Component("report").
			Category(errors.CategoryFileIO).
			Context("operation", "write_report").
			Context("path", path).
			Build()
	}

	return nil
}
