// Package testutil provides shared test helpers and capture fixtures.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// SampleCaptureLines is a small mixed-format capture: object records, one
// unlabeled record, a comment and a CSV line.
var SampleCaptureLines = []string{
	`# bench capture`,
	`{"bssid":"aa:bb:cc:00:00:01","ssid":"Home","rssi":-60,"channel":1,"label":"normal","timestamp":"2026-01-01T00:00:00Z"}`,
	`{"bssid":"aa:bb:cc:00:00:02","ssid":"Home","rssi":-80,"channel":11,"label":"evil_twin"}`,
	`{"bssid":"aa:bb:cc:00:00:03","ssid":"Cafe","rssi":-70,"channel":6}`,
	`aa:bb:cc:00:00:04,Shop,-65,6,1,2,3,4,5,6`,
}

// SampleCapture returns SampleCaptureLines joined into file contents.
func SampleCapture() string {
	return strings.Join(SampleCaptureLines, "\n") + "\n"
}

// WriteTempFile writes content to name inside a fresh temp dir and returns
// the path.
func WriteTempFile(t testing.TB, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
