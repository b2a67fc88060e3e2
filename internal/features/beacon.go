package features

// BeaconFeatures are the per-access-point measurements decoded from 802.11
// management frames. Field order mirrors the canonical vector layout.
type BeaconFeatures struct {
	// Signal
	RSSI  int8
	Noise int8
	SNR   float32

	// Channel
	Channel          uint8
	SecondaryChannel uint8 // 0 none, 1 above, 2 below

	// Beacon body
	BeaconInterval uint16
	Capability     uint16
	HasWPS         bool
	HasWPA         bool
	HasWPA2        bool
	HasWPA3        bool
	IsHidden       bool

	// Timing
	ResponseTime uint32
	BeaconCount  uint16
	BeaconJitter float32 // ms

	// Probe responses
	RespondsToProbe   bool
	ProbeResponseTime uint16 // ms

	// Information elements
	VendorIECount   uint8
	SupportedRates  uint8
	HTCapabilities  uint8
	VHTCapabilities uint8

	AnomalyScore float32
}

func boolf(b bool) float32 {
	if b {
		return 1
	}
	return 0
}

// ToVector fills the named positions; the reserved tail stays zero.
// The order matches Names().
func (f BeaconFeatures) ToVector() Vector {
	return Vector{
		float32(f.RSSI),
		float32(f.Noise),
		f.SNR,
		float32(f.Channel),
		float32(f.SecondaryChannel),
		float32(f.BeaconInterval),
		float32(f.Capability & 0xFF),
		float32((f.Capability >> 8) & 0xFF),
		boolf(f.HasWPS),
		boolf(f.HasWPA),
		boolf(f.HasWPA2),
		boolf(f.HasWPA3),
		boolf(f.IsHidden),
		float32(f.ResponseTime),
		float32(f.BeaconCount),
		f.BeaconJitter,
		boolf(f.RespondsToProbe),
		float32(f.ProbeResponseTime),
		float32(f.VendorIECount),
		float32(f.SupportedRates),
		float32(f.HTCapabilities),
		float32(f.VHTCapabilities),
		f.AnomalyScore,
	}
}

// Slice returns the named values as the explicit feature sequence carried by
// a capture entry.
func (f BeaconFeatures) Slice() []float64 {
	v := f.ToVector()
	out := make([]float64, NamedCount)
	for i := range out {
		out[i] = float64(v[i])
	}
	return out
}
