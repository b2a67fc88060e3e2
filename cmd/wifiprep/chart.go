package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/banshee-data/wifiprep/internal/features"
	"github.com/banshee-data/wifiprep/internal/report"
)

// chartPageName is the HTML page written into the chart directory.
const chartPageName = "analysis.html"

func runChart(args []string, stdout, stderr io.Writer) int {
	_, c := newFlagSet("chart", stderr)
	if code, ok := c.parse(args); !ok {
		return code
	}
	if c.input == "" || c.output == "" {
		fmt.Fprintln(stderr, "Error: --input and --output required for chart")
		return 1
	}
	if code, ok := c.loadConfig(stderr); !ok {
		return code
	}

	entries, _, err := loadEntries(c.input, c.format)
	if err != nil {
		return fail(stderr, err)
	}
	if err := os.MkdirAll(c.output, 0755); err != nil {
		return fail(stderr, fmt.Errorf("failed to create chart directory: %w", err))
	}

	page := filepath.Join(c.output, chartPageName)
	f, err := os.Create(page)
	if err != nil {
		return fail(stderr, err)
	}
	err = report.WriteLabelChart(f, report.Summarize(entries))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fail(stderr, err)
	}
	fmt.Fprintf(stdout, "Chart written to %s\n", page)

	if len(entries) == 0 {
		return 0
	}
	paths, err := report.WriteHistograms(c.output, features.ExtractAll(entries))
	if err != nil {
		return fail(stderr, err)
	}
	fmt.Fprintf(stdout, "%d histograms written to %s\n", len(paths), c.output)
	return 0
}
