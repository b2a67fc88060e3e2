package main

import (
	"fmt"
	"io"

	"github.com/banshee-data/wifiprep/internal/catalog"
	"github.com/banshee-data/wifiprep/internal/dataset"
	"github.com/banshee-data/wifiprep/internal/fsutil"
	"github.com/banshee-data/wifiprep/internal/version"
)

func runPrepare(args []string, stdout, stderr io.Writer) int {
	fs, c := newFlagSet("prepare", stderr)
	catalogPath := fs.String("catalog", "", "Record the run in this sqlite catalog")
	if code, ok := c.parse(args); !ok {
		return code
	}
	if c.input == "" || c.output == "" {
		fmt.Fprintln(stderr, "Error: --input and --output required for prepare")
		return 1
	}
	if code, ok := c.loadConfig(stderr); !ok {
		return code
	}
	if *catalogPath == "" {
		*catalogPath = c.cfg.GetCatalogPath()
	}

	entries, format, err := loadEntries(c.input, c.format)
	if err != nil {
		return fail(stderr, err)
	}
	entries = dataset.ApplyDefaultLabel(entries, c.label)

	x := &dataset.Exporter{FS: fsutil.OSFileSystem{}, ParamsFile: c.cfg.GetNormalizationFile()}
	res, err := x.Prepare(entries, c.output)
	if err != nil {
		return fail(stderr, err)
	}

	fmt.Fprintf(stdout, "Prepared %d samples in Edge Impulse format\n", res.Samples)
	fmt.Fprintf(stdout, "Normalization params saved to %s\n", res.ParamsPath)

	if *catalogPath != "" {
		id, err := recordRun(*catalogPath, c.input, format, c.output, res)
		if err != nil {
			return fail(stderr, err)
		}
		fmt.Fprintf(stdout, "Run %s recorded in %s\n", id, *catalogPath)
	}
	return 0
}

func recordRun(path, input, format, outDir string, res *dataset.Result) (string, error) {
	cat, err := catalog.Open(path)
	if err != nil {
		return "", err
	}
	defer cat.Close()

	samples := make([]catalog.SampleRecord, 0, len(res.Files))
	for _, f := range res.Files {
		samples = append(samples, catalog.SampleRecord{
			Index:     f.Index,
			Label:     f.Label,
			Path:      f.Path,
			BSSID:     f.Metadata.BSSID,
			SSID:      f.Metadata.SSID,
			Timestamp: f.Metadata.Timestamp,
		})
	}
	run, err := cat.RecordRun(catalog.Run{
		InputPath:  input,
		Format:     format,
		OutputDir:  outDir,
		ParamsPath: res.ParamsPath,
		Samples:    res.Samples,
		Coerced:    res.Coerced,

		ToolVersion: version.Version,
	}, samples)
	if err != nil {
		return "", err
	}
	return run.ID, nil
}
