package dataset

import (
	"fmt"

	"github.com/banshee-data/wifiprep/internal/capture"
	"github.com/banshee-data/wifiprep/internal/features"
)

// Sample is one exported training example.
type Sample struct {
	Values   features.Vector `json:"values"`
	Label    string          `json:"label"`
	Metadata Metadata        `json:"metadata"`
}

// Metadata is carried through for traceability only; it never feeds
// normalization or training.
type Metadata struct {
	BSSID     string `json:"bssid"`
	SSID      string `json:"ssid"`
	Timestamp string `json:"timestamp"`
}

// MetadataFor copies the traceability fields of e.
func MetadataFor(e capture.Entry) Metadata {
	return Metadata{
		BSSID:     e.BSSID,
		SSID:      e.SSID,
		Timestamp: string(e.Timestamp),
	}
}

// SampleFileName names the sample at index in the input sequence.
func SampleFileName(label string, index int) string {
	return fmt.Sprintf("%s_%05d.json", label, index)
}
