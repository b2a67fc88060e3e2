// Package capture loads wireless-scan capture files into ordered entries.
//
// A capture file is UTF-8 text with one record per line. Each record is either
// a JSON object or a positional comma-separated line laid out as
//
//	bssid, ssid, rssi, channel, feature_0, feature_1, ...
//
// Blank lines and lines starting with '#' are ignored.
package capture

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Entry is one observed access point record. Optional numeric fields are
// pointers so that absent values can be defaulted by the feature extractor.
type Entry struct {
	BSSID     string    `json:"bssid,omitempty"`
	SSID      string    `json:"ssid,omitempty"`
	RSSI      *int      `json:"rssi,omitempty"`
	Channel   *int      `json:"channel,omitempty"`
	Features  []float64 `json:"features,omitempty"`
	Label     *string   `json:"label,omitempty"`
	Timestamp Timestamp `json:"timestamp,omitempty"`
}

// rawEntry mirrors Entry with numeric fields widened to float, so
// -70.0 decodes, and with the label kept raw so an
// explicit null can be told apart from a missing key.
type rawEntry struct {
	BSSID     string          `json:"bssid"`
	SSID      string          `json:"ssid"`
	RSSI      *float64        `json:"rssi"`
	Channel   *float64        `json:"channel"`
	Features  []float64       `json:"features"`
	Label     json.RawMessage `json:"label"`
	Timestamp Timestamp       `json:"timestamp"`
}

// UnmarshalJSON decodes one capture object. Numeric rssi and channel values
// are rounded to the nearest integer. A label of null counts as present with
// an empty value, which label resolution later coerces to the default class.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw rawEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	rssi, err := roundField("rssi", raw.RSSI)
	if err != nil {
		return err
	}
	channel, err := roundField("channel", raw.Channel)
	if err != nil {
		return err
	}
	var label *string
	if len(raw.Label) > 0 {
		if bytes.Equal(bytes.TrimSpace(raw.Label), []byte("null")) {
			label = StringPtr("")
		} else {
			var s string
			if err := json.Unmarshal(raw.Label, &s); err != nil {
				return fmt.Errorf("label: %w", err)
			}
			label = &s
		}
	}
	*e = Entry{
		BSSID:     raw.BSSID,
		SSID:      raw.SSID,
		RSSI:      rssi,
		Channel:   channel,
		Features:  raw.Features,
		Label:     label,
		Timestamp: raw.Timestamp,
	}
	return nil
}

func roundField(name string, v *float64) (*int, error) {
	if v == nil {
		return nil, nil
	}
	r := math.Round(*v)
	if r > math.MaxInt32 || r < math.MinInt32 {
		return nil, fmt.Errorf("%s: value %v out of range", name, *v)
	}
	return IntPtr(int(r)), nil
}

// HasLabel reports whether the record carried a label field.
func (e Entry) HasLabel() bool {
	return e.Label != nil
}

// LabelOr returns the record's label, or fallback when it has none.
func (e Entry) LabelOr(fallback string) string {
	if e.Label == nil {
		return fallback
	}
	return *e.Label
}

// Timestamp is a capture timestamp kept as text. Device exports write either a
// string or a bare number; numbers are kept verbatim.
type Timestamp string

// UnmarshalJSON accepts a JSON string, number or null.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Timestamp(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*t = Timestamp(n.String())
	return nil
}

// IntPtr returns a pointer to v. Handy for building entries in code.
func IntPtr(v int) *int { return &v }

// StringPtr returns a pointer to v.
func StringPtr(v string) *string { return &v }
