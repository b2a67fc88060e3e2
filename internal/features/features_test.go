package features

import (
	"testing"

	"github.com/banshee-data/wifiprep/internal/capture"
)

func TestNames_CanonicalOrder(t *testing.T) {
	got := Names()
	if len(got) != NamedCount {
		t.Fatalf("len(Names()) = %d, want %d", len(got), NamedCount)
	}
	if got[IdxRSSI] != "rssi" || got[IdxChannel] != "channel" || got[IdxAnomalyScore] != "anomaly_score" {
		t.Errorf("unexpected names: %v", got)
	}

	// callers must not be able to mutate the package copy
	got[0] = "mutated"
	if Names()[0] != "rssi" {
		t.Error("Names() returned shared storage")
	}
}

func TestExtract_ExplicitFeatures(t *testing.T) {
	feats := make([]float64, 30)
	for i := range feats {
		feats[i] = float64(i + 1)
	}
	v := Extract(capture.Entry{Features: feats, RSSI: capture.IntPtr(-10)})

	for i := 0; i < NamedCount; i++ {
		if v[i] != float32(i+1) {
			t.Errorf("v[%d] = %v, want %v", i, v[i], i+1)
		}
	}
	// values beyond the 23 named positions are never copied
	for i := NamedCount; i < Size; i++ {
		if v[i] != 0 {
			t.Errorf("reserved v[%d] = %v, want 0", i, v[i])
		}
	}
}

func TestExtract_ShortFeaturesFallBack(t *testing.T) {
	// six CSV features are not enough, so rssi/channel synthesis applies
	e := capture.Entry{
		RSSI:     capture.IntPtr(-65),
		Channel:  capture.IntPtr(6),
		Features: []float64{9, 9, 9, 9, 9, 9},
	}
	v := Extract(e)

	want := Vector{-65, -95, 30, 6}
	if v != want {
		t.Errorf("Extract = %v, want %v", v, want)
	}
}

func TestExtract_Defaults(t *testing.T) {
	v := Extract(capture.Entry{})
	if v[IdxRSSI] != -80 {
		t.Errorf("rssi = %v, want -80", v[IdxRSSI])
	}
	if v[IdxNoise] != -95 {
		t.Errorf("noise = %v, want -95", v[IdxNoise])
	}
	if v[IdxSNR] != 15 {
		t.Errorf("snr = %v, want 15", v[IdxSNR])
	}
	if v[IdxChannel] != 1 {
		t.Errorf("channel = %v, want 1", v[IdxChannel])
	}
	for i := IdxSecondaryChannel; i < Size; i++ {
		if v[i] != 0 {
			t.Errorf("v[%d] = %v, want 0", i, v[i])
		}
	}
}

func TestExtractAll_PreservesOrder(t *testing.T) {
	entries := []capture.Entry{
		{RSSI: capture.IntPtr(-40)},
		{RSSI: capture.IntPtr(-50)},
		{RSSI: capture.IntPtr(-60)},
	}
	vs := ExtractAll(entries)
	if len(vs) != 3 {
		t.Fatalf("len = %d, want 3", len(vs))
	}
	for i, want := range []float32{-40, -50, -60} {
		if vs[i][IdxRSSI] != want {
			t.Errorf("vs[%d] rssi = %v, want %v", i, vs[i][IdxRSSI], want)
		}
	}
}

func TestBeaconFeatures_ToVector(t *testing.T) {
	f := BeaconFeatures{
		RSSI:             -42,
		Noise:            -92,
		SNR:              50,
		Channel:          36,
		SecondaryChannel: 1,
		BeaconInterval:   100,
		Capability:       0x1431,
		HasWPS:           true,
		HasWPA2:          true,
		BeaconCount:      12,
		BeaconJitter:     1.5,
		RespondsToProbe:  true,
		VendorIECount:    3,
		SupportedRates:   8,
		HTCapabilities:   1,
	}
	v := f.ToVector()

	checks := map[int]float32{
		IdxRSSI:             -42,
		IdxNoise:            -92,
		IdxSNR:              50,
		IdxChannel:          36,
		IdxSecondaryChannel: 1,
		IdxBeaconInterval:   100,
		IdxCapabilityLow:    0x31,
		IdxCapabilityHigh:   0x14,
		IdxHasWPS:           1,
		IdxHasWPA:           0,
		IdxHasWPA2:          1,
		IdxBeaconCount:      12,
		IdxBeaconJitter:     1.5,
		IdxRespondsToProbe:  1,
		IdxVendorIECount:    3,
		IdxSupportedRates:   8,
		IdxHTCapabilities:   1,
		IdxVHTCapabilities:  0,
	}
	for idx, want := range checks {
		if v[idx] != want {
			t.Errorf("v[%s] = %v, want %v", Names()[idx], v[idx], want)
		}
	}
	for i := NamedCount; i < Size; i++ {
		if v[i] != 0 {
			t.Errorf("reserved v[%d] = %v, want 0", i, v[i])
		}
	}

	s := f.Slice()
	if len(s) != NamedCount {
		t.Fatalf("len(Slice()) = %d, want %d", len(s), NamedCount)
	}
	// a beacon-derived entry round-trips through Extract unchanged
	if got := Extract(capture.Entry{Features: s}); got != v {
		t.Errorf("Extract(Slice()) = %v, want %v", got, v)
	}
}
