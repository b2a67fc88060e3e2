package main

import (
	"fmt"
	"io"

	"github.com/banshee-data/wifiprep/internal/report"
)

func runAnalyze(args []string, stdout, stderr io.Writer) int {
	_, c := newFlagSet("analyze", stderr)
	if code, ok := c.parse(args); !ok {
		return code
	}
	if c.input == "" {
		fmt.Fprintln(stderr, "Error: --input required for analyze")
		return 1
	}
	if code, ok := c.loadConfig(stderr); !ok {
		return code
	}

	entries, _, err := loadEntries(c.input, c.format)
	if err != nil {
		return fail(stderr, err)
	}
	if err := report.Summarize(entries).Print(stdout); err != nil {
		return fail(stderr, err)
	}
	return 0
}
