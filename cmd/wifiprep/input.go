package main

import (
	"github.com/banshee-data/wifiprep/internal/beacon"
	"github.com/banshee-data/wifiprep/internal/capture"
	"github.com/banshee-data/wifiprep/internal/config"
	"github.com/banshee-data/wifiprep/internal/monitoring"
)

// loadEntries reads a capture as line records or as a beacon pcap.
func loadEntries(path, format string) ([]capture.Entry, string, error) {
	resolved := config.ResolveFormat(format, path)
	var (
		entries []capture.Entry
		err     error
	)
	switch resolved {
	case config.FormatPcap:
		entries, err = beacon.Load(path)
	default:
		entries, err = capture.Load(path)
	}
	if err != nil {
		return nil, resolved, err
	}
	monitoring.Debugf("loaded %d entries from %s (%s)", len(entries), path, resolved)
	return entries, resolved, nil
}
