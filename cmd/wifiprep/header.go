package main

import (
	"fmt"
	"io"

	"github.com/banshee-data/wifiprep/internal/header"
)

func runExportHeader(args []string, stdout, stderr io.Writer) int {
	_, c := newFlagSet("export-header", stderr)
	if code, ok := c.parse(args); !ok {
		return code
	}
	if c.input == "" || c.output == "" {
		fmt.Fprintln(stderr, "Error: --input and --output required for export-header")
		return 1
	}
	if code, ok := c.loadConfig(stderr); !ok {
		return code
	}

	if err := header.NewExporter().Export(c.input, c.output); err != nil {
		return fail(stderr, err)
	}
	fmt.Fprintf(stdout, "C header exported to %s\n", c.output)
	return 0
}
