package capture

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// MinCSVFields is the narrowest positional line that is accepted. Shorter
// lines are dropped as data-quality skips.
const MinCSVFields = 10

// maxLineBytes bounds a single record line.
const maxLineBytes = 1 << 20

// ErrDecode marks a line that is well-formed JSON but not a valid record
// (wrong value types, or not an object at all).
var ErrDecode = errors.New("capture record decode failed")

// Load reads the capture file at path. A missing or unreadable file is an
// error; malformed positional lines are dropped silently.
func Load(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture file: %w", err)
	}
	defer f.Close()

	entries, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read capture file %s: %w", path, err)
	}
	return entries, nil
}

// Read parses capture records from r in source order.
func Read(r io.Reader) ([]Entry, error) {
	scan := bufio.NewScanner(r)
	scan.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var entries []Entry
	lineNo := 0
	for scan.Scan() {
		lineNo++
		line := bytes.TrimSpace(scan.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		entry, ok, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if ok {
			entries = append(entries, entry)
		}
	}
	if err := scan.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// parseLine decodes one trimmed, non-comment line. It returns ok=false for
// lines that are dropped.
func parseLine(line []byte) (Entry, bool, error) {
	var e Entry
	err := json.Unmarshal(line, &e)

	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &syntaxErr):
		// not JSON at all: fall back to the positional format
		e, ok := parseCSV(string(line))
		return e, ok, nil
	case err != nil:
		return Entry{}, false, fmt.Errorf("%w: %v", ErrDecode, err)
	case line[0] != '{':
		return Entry{}, false, fmt.Errorf("%w: record is not a JSON object", ErrDecode)
	}
	return e, true, nil
}

// parseCSV decodes the positional fallback format. Fields are split on bare
// commas; SSIDs containing commas therefore shift the layout, as they do on
// the device exporter.
func parseCSV(line string) (Entry, bool) {
	parts := strings.Split(line, ",")
	if len(parts) < MinCSVFields {
		return Entry{}, false
	}

	rssi, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		return Entry{}, false
	}
	channel, err := strconv.Atoi(strings.TrimSpace(parts[3]))
	if err != nil {
		return Entry{}, false
	}

	feats := make([]float64, 0, len(parts)-4)
	for _, p := range parts[4:] {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Entry{}, false
		}
		feats = append(feats, v)
	}

	return Entry{
		BSSID:    parts[0],
		SSID:     parts[1],
		RSSI:     &rssi,
		Channel:  &channel,
		Features: feats,
	}, true
}
