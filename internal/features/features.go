// Package features defines the fixed 32-wide feature layout shared by the
// training-set preparation and the embedded inference engine.
package features

import "github.com/banshee-data/wifiprep/internal/capture"

const (
	// Size is the length of every feature vector.
	Size = 32
	// NamedCount is the number of positions with a defined meaning. Positions
	// NamedCount..Size-1 are reserved and always zero.
	NamedCount = 23
)

// Defaults applied when a record carries no explicit feature sequence.
const (
	DefaultRSSI    = -80
	NoiseFloorDBm  = -95
	DefaultChannel = 1
)

// Canonical feature positions.
const (
	IdxRSSI = iota
	IdxNoise
	IdxSNR
	IdxChannel
	IdxSecondaryChannel
	IdxBeaconInterval
	IdxCapabilityLow
	IdxCapabilityHigh
	IdxHasWPS
	IdxHasWPA
	IdxHasWPA2
	IdxHasWPA3
	IdxIsHidden
	IdxResponseTime
	IdxBeaconCount
	IdxBeaconJitter
	IdxRespondsToProbe
	IdxProbeResponseTime
	IdxVendorIECount
	IdxSupportedRates
	IdxHTCapabilities
	IdxVHTCapabilities
	IdxAnomalyScore
)

var names = [NamedCount]string{
	"rssi", "noise", "snr", "channel", "secondary_channel",
	"beacon_interval", "capability_low", "capability_high",
	"has_wps", "has_wpa", "has_wpa2", "has_wpa3", "is_hidden",
	"response_time", "beacon_count", "beacon_jitter",
	"responds_to_probe", "probe_response_time",
	"vendor_ie_count", "supported_rates", "ht_capabilities", "vht_capabilities",
	"anomaly_score",
}

// Names returns the canonical feature names in vector order.
func Names() []string {
	out := make([]string, NamedCount)
	copy(out, names[:])
	return out
}

// Vector is one encoded observation. The array type pins the length.
type Vector [Size]float32

// Extract maps a capture entry onto the fixed layout. Entries carrying at
// least NamedCount explicit features are copied verbatim; anything else gets
// a minimal vector synthesised from rssi and channel.
func Extract(e capture.Entry) Vector {
	var v Vector

	if len(e.Features) >= NamedCount {
		for i := 0; i < NamedCount; i++ {
			v[i] = float32(e.Features[i])
		}
		return v
	}

	rssi := DefaultRSSI
	if e.RSSI != nil {
		rssi = *e.RSSI
	}
	channel := DefaultChannel
	if e.Channel != nil {
		channel = *e.Channel
	}

	v[IdxRSSI] = float32(rssi)
	v[IdxNoise] = NoiseFloorDBm
	v[IdxSNR] = v[IdxRSSI] - v[IdxNoise]
	v[IdxChannel] = float32(channel)
	return v
}

// ExtractAll extracts every entry, preserving order.
func ExtractAll(entries []capture.Entry) []Vector {
	out := make([]Vector, len(entries))
	for i, e := range entries {
		out[i] = Extract(e)
	}
	return out
}
