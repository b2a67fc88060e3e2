package dataset

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/wifiprep/internal/capture"
	"github.com/banshee-data/wifiprep/internal/features"
	"github.com/banshee-data/wifiprep/internal/fsutil"
	"github.com/banshee-data/wifiprep/internal/normalize"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readSample(t *testing.T, mfs *fsutil.MemoryFileSystem, path string) Sample {
	t.Helper()
	data, err := mfs.ReadFile(path)
	require.NoError(t, err)
	var s Sample
	require.NoError(t, json.Unmarshal(data, &s))
	return s
}

func TestResolveLabel(t *testing.T) {
	t.Parallel()
	for _, l := range Labels {
		got, coerced := ResolveLabel(l)
		assert.Equal(t, l, got)
		assert.False(t, coerced)
	}
	for _, l := range []string{"unknown_thing", "", "Normal", "unlabeled"} {
		got, coerced := ResolveLabel(l)
		assert.Equal(t, "normal", got, "label %q", l)
		assert.True(t, coerced)
	}
}

func TestApplyDefaultLabel(t *testing.T) {
	t.Parallel()
	in := []capture.Entry{
		{BSSID: "a"},
		{BSSID: "b", Label: capture.StringPtr("evil_twin")},
		{BSSID: "c", Label: capture.StringPtr("unknown_thing")},
	}
	out := ApplyDefaultLabel(in, "vulnerable")

	assert.Equal(t, "vulnerable", *out[0].Label)
	assert.Equal(t, "evil_twin", *out[1].Label)
	assert.Equal(t, "unknown_thing", *out[2].Label)
	assert.False(t, in[0].HasLabel(), "input entries are not modified")
}

func TestSampleFileName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "rogue_ap_00003.json", SampleFileName("rogue_ap", 3))
	assert.Equal(t, "normal_12345.json", SampleFileName("normal", 12345))
}

func TestPrepare_SingleObjectRecord(t *testing.T) {
	t.Parallel()
	entries, err := capture.Read(strings.NewReader(`{"bssid":"AA:BB:CC:DD:EE:FF","rssi":-70,"channel":11}`))
	require.NoError(t, err)
	entries = ApplyDefaultLabel(entries, "normal")

	mfs := fsutil.NewMemoryFileSystem()
	res, err := (&Exporter{FS: mfs}).Prepare(entries, "/out")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Samples)
	assert.Equal(t, 0, res.Coerced)

	for _, l := range Labels {
		assert.True(t, mfs.Exists(filepath.Join("/out", l)), "label dir %s", l)
	}

	s := readSample(t, mfs, "/out/normal/normal_00000.json")
	assert.Equal(t, "normal", s.Label)
	// single sample: every column equals its mean, every std is forced to 1
	assert.Equal(t, features.Vector{}, s.Values)
	assert.Equal(t, -70.0, res.Params.Means[features.IdxRSSI])
	assert.Equal(t, 11.0, res.Params.Means[features.IdxChannel])
	assert.Equal(t, Metadata{BSSID: "AA:BB:CC:DD:EE:FF"}, s.Metadata)
}

func TestPrepare_NormalizesAgainstWholeDataset(t *testing.T) {
	t.Parallel()
	entries := []capture.Entry{
		{RSSI: capture.IntPtr(-60), Channel: capture.IntPtr(1), Label: capture.StringPtr("normal")},
		{RSSI: capture.IntPtr(-80), Channel: capture.IntPtr(11), Label: capture.StringPtr("rogue_ap")},
	}
	mfs := fsutil.NewMemoryFileSystem()
	res, err := (&Exporter{FS: mfs}).Prepare(entries, "/out")
	require.NoError(t, err)

	a := readSample(t, mfs, "/out/normal/normal_00000.json")
	b := readSample(t, mfs, "/out/rogue_ap/rogue_ap_00001.json")

	// mean -70, population std 10 for rssi; mean 6, std 5 for channel
	assert.Equal(t, float32(1), a.Values[features.IdxRSSI])
	assert.Equal(t, float32(-1), b.Values[features.IdxRSSI])
	assert.Equal(t, float32(-1), a.Values[features.IdxChannel])
	assert.Equal(t, float32(1), b.Values[features.IdxChannel])
	// noise is constant across the dataset
	assert.Equal(t, float32(0), a.Values[features.IdxNoise])

	saved, err := normalize.Load(mfs, res.ParamsPath)
	require.NoError(t, err)
	assert.Equal(t, res.Params, saved)
}

func TestPrepare_CoercesUnknownLabel(t *testing.T) {
	t.Parallel()
	entries := []capture.Entry{
		{BSSID: "AA", SSID: "x", Timestamp: "t0", Label: capture.StringPtr("unknown_thing")},
	}
	mfs := fsutil.NewMemoryFileSystem()
	res, err := (&Exporter{FS: mfs}).Prepare(entries, "/out")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Coerced)

	s := readSample(t, mfs, "/out/normal/normal_00000.json")
	assert.Equal(t, "normal", s.Label)
	if diff := cmp.Diff(Metadata{BSSID: "AA", SSID: "x", Timestamp: "t0"}, s.Metadata); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, mfs.Files("/out/unknown_thing"))
}

func TestPrepare_NullLabelIsNotDefaulted(t *testing.T) {
	t.Parallel()
	entries, err := capture.Read(strings.NewReader(`{"bssid":"AA","label":null}` + "\n" + `{"bssid":"BB"}`))
	require.NoError(t, err)
	entries = ApplyDefaultLabel(entries, "vulnerable")

	mfs := fsutil.NewMemoryFileSystem()
	res, err := (&Exporter{FS: mfs}).Prepare(entries, "/out")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Coerced)
	assert.Equal(t, "normal", readSample(t, mfs, "/out/normal/normal_00000.json").Label)
	assert.Equal(t, "vulnerable", readSample(t, mfs, "/out/vulnerable/vulnerable_00001.json").Label)
}

func TestPrepare_OneFilePerEntry(t *testing.T) {
	t.Parallel()
	labels := []string{"normal", "rogue_ap", "evil_twin", "deauth_target", "vulnerable", "bogus", "normal"}
	entries := make([]capture.Entry, len(labels))
	for i, l := range labels {
		entries[i] = capture.Entry{RSSI: capture.IntPtr(-40 - i), Label: capture.StringPtr(l)}
	}

	mfs := fsutil.NewMemoryFileSystem()
	res, err := (&Exporter{FS: mfs}).Prepare(entries, "/out")
	require.NoError(t, err)
	require.Len(t, res.Files, len(entries))

	var samples []string
	for _, f := range mfs.Files("/out") {
		if filepath.Base(f) != normalize.FileName {
			samples = append(samples, f)
		}
	}
	assert.Len(t, samples, len(entries))

	want := []string{
		"/out/normal/normal_00000.json",
		"/out/rogue_ap/rogue_ap_00001.json",
		"/out/evil_twin/evil_twin_00002.json",
		"/out/deauth_target/deauth_target_00003.json",
		"/out/vulnerable/vulnerable_00004.json",
		"/out/normal/normal_00005.json",
		"/out/normal/normal_00006.json",
	}
	got := make([]string, len(res.Files))
	for i, f := range res.Files {
		got[i] = f.Path
		assert.Equal(t, i, f.Index)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("sample paths mismatch (-want +got):\n%s", diff)
	}
}

func TestPrepare_Idempotent(t *testing.T) {
	t.Parallel()
	entries := []capture.Entry{
		{RSSI: capture.IntPtr(-61), Channel: capture.IntPtr(3), Label: capture.StringPtr("normal")},
		{RSSI: capture.IntPtr(-47), Channel: capture.IntPtr(9), Label: capture.StringPtr("evil_twin")},
		{Features: make([]float64, 23), Label: capture.StringPtr("vulnerable")},
	}

	run := func() *fsutil.MemoryFileSystem {
		mfs := fsutil.NewMemoryFileSystem()
		_, err := (&Exporter{FS: mfs}).Prepare(entries, "/out")
		require.NoError(t, err)
		return mfs
	}
	first, second := run(), run()

	names := first.Files("/out")
	require.Equal(t, names, second.Files("/out"))
	for _, n := range names {
		a, _ := first.ReadFile(n)
		b, _ := second.ReadFile(n)
		assert.Equal(t, string(a), string(b), n)
	}
}

func TestPrepare_EmptyInput(t *testing.T) {
	t.Parallel()
	mfs := fsutil.NewMemoryFileSystem()
	res, err := (&Exporter{FS: mfs}).Prepare(nil, "/out")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Samples)
	assert.True(t, mfs.Exists("/out/"+normalize.FileName))
	assert.Equal(t, normalize.Identity(), res.Params)
}

func TestPrepare_OutputIsAFile(t *testing.T) {
	t.Parallel()
	mfs := fsutil.NewMemoryFileSystem()
	require.NoError(t, mfs.WriteFile("/out", []byte("x"), 0644))
	_, err := (&Exporter{FS: mfs}).Prepare([]capture.Entry{{}}, "/out")
	assert.Error(t, err)
}

func TestPrepare_CustomParamsFile(t *testing.T) {
	t.Parallel()
	mfs := fsutil.NewMemoryFileSystem()
	x := &Exporter{FS: mfs, ParamsFile: "norm_v2.json"}
	res, err := x.Prepare([]capture.Entry{{RSSI: capture.IntPtr(-60)}}, "/out")
	require.NoError(t, err)
	assert.Equal(t, "/out/norm_v2.json", res.ParamsPath)
	assert.True(t, mfs.Exists("/out/norm_v2.json"))
	assert.False(t, mfs.Exists("/out/"+normalize.FileName))
}
