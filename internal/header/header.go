// Package header renders normalization parameters as a C header for the
// firmware build, so the device applies the same z-score transform that was
// used to prepare its training set.
package header

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/banshee-data/wifiprep/internal/features"
	"github.com/banshee-data/wifiprep/internal/fsutil"
	"github.com/banshee-data/wifiprep/internal/normalize"
)

// TimestampLayout matches an ISO-8601 local time with microseconds.
const TimestampLayout = "2006-01-02T15:04:05.000000"

const headerTemplate = `// Auto-generated normalization parameters for the WiFi classifier
// Generated: {{.Generated}}
#pragma once

#define FEATURE_VECTOR_SIZE {{.Size}}

// Feature normalization parameters (z-score)
const float FEATURE_MEANS[FEATURE_VECTOR_SIZE] = {
    {{.Means}}
};

const float FEATURE_STDS[FEATURE_VECTOR_SIZE] = {
    {{.Stds}}
};
`

var tmpl = template.Must(template.New("header").Parse(headerTemplate))

type headerData struct {
	Generated string
	Size      int
	Means     string
	Stds      string
}

// FormatArray renders values as single-precision literals with six decimals.
func FormatArray(values [features.Size]float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%.6ff", v)
	}
	return strings.Join(parts, ", ")
}

// Render produces the header text. Output is byte-identical for identical
// params and generation time.
func Render(p normalize.Params, generated time.Time) ([]byte, error) {
	var buf bytes.Buffer
	err := tmpl.Execute(&buf, headerData{
		Generated: generated.Format(TimestampLayout),
		Size:      features.Size,
		Means:     FormatArray(p.Means),
		Stds:      FormatArray(p.Stds),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render header: %w", err)
	}
	return buf.Bytes(), nil
}

// Exporter turns a saved normalization artifact into a header file.
type Exporter struct {
	FS  fsutil.FileSystem
	Now func() time.Time
}

// NewExporter returns an Exporter on the OS filesystem using the wall clock.
func NewExporter() *Exporter {
	return &Exporter{FS: fsutil.OSFileSystem{}, Now: time.Now}
}

// Export reads the artifact at paramsPath and writes the header to outPath.
// Artifacts with missing or mis-sized arrays are rejected.
func (x *Exporter) Export(paramsPath, outPath string) error {
	p, err := normalize.Load(x.FS, paramsPath)
	if err != nil {
		return err
	}

	now := time.Now
	if x.Now != nil {
		now = x.Now
	}
	data, err := Render(p, now())
	if err != nil {
		return err
	}
	if err := x.FS.WriteFile(outPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	return nil
}
