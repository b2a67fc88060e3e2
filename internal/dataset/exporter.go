package dataset

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/banshee-data/wifiprep/internal/capture"
	"github.com/banshee-data/wifiprep/internal/features"
	"github.com/banshee-data/wifiprep/internal/fsutil"
	"github.com/banshee-data/wifiprep/internal/monitoring"
	"github.com/banshee-data/wifiprep/internal/normalize"
)

// FileRecord describes one written sample file.
type FileRecord struct {
	Index    int
	Path     string
	Label    string
	Metadata Metadata
}

// Result summarises a Prepare run.
type Result struct {
	Samples    int
	Coerced    int
	Params     normalize.Params
	ParamsPath string
	Files      []FileRecord
}

// Exporter writes prepared datasets through FS.
type Exporter struct {
	FS fsutil.FileSystem
	// ParamsFile names the artifact inside the output directory.
	// Empty means normalize.FileName.
	ParamsFile string
}

// NewExporter returns an Exporter on the OS filesystem.
func NewExporter() *Exporter {
	return &Exporter{FS: fsutil.OSFileSystem{}}
}

// Prepare normalizes every entry against parameters computed once over the
// whole input and writes one sample file per entry under outDir/<label>/.
// Every label directory is created even when it stays empty. A failure part
// way through leaves the files written so far in place.
func (x *Exporter) Prepare(entries []capture.Entry, outDir string) (*Result, error) {
	if err := x.FS.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	for _, label := range Labels {
		if err := x.FS.MkdirAll(filepath.Join(outDir, label), 0755); err != nil {
			return nil, fmt.Errorf("failed to create label directory %s: %w", label, err)
		}
	}

	vectors := features.ExtractAll(entries)
	params := normalize.Compute(vectors)

	paramsFile := x.ParamsFile
	if paramsFile == "" {
		paramsFile = normalize.FileName
	}
	paramsPath := filepath.Join(outDir, paramsFile)
	if err := normalize.Save(x.FS, paramsPath, params); err != nil {
		return nil, err
	}

	res := &Result{
		Params:     params,
		ParamsPath: paramsPath,
		Files:      make([]FileRecord, 0, len(entries)),
	}
	for i, e := range entries {
		label, coerced := ResolveLabel(e.LabelOr(DefaultLabel))
		if coerced {
			res.Coerced++
		}

		sample := Sample{
			Values:   normalize.Apply(vectors[i], params),
			Label:    label,
			Metadata: MetadataFor(e),
		}
		data, err := json.Marshal(sample)
		if err != nil {
			return res, fmt.Errorf("failed to encode sample %d: %w", i, err)
		}

		path := filepath.Join(outDir, label, SampleFileName(label, i))
		if err := x.FS.WriteFile(path, data, 0644); err != nil {
			return res, fmt.Errorf("failed to write sample %d: %w", i, err)
		}
		res.Files = append(res.Files, FileRecord{Index: i, Path: path, Label: label, Metadata: sample.Metadata})
		res.Samples++
	}

	if res.Coerced > 0 {
		monitoring.Debugf("coerced %d unrecognised labels to %q", res.Coerced, DefaultLabel)
	}
	return res, nil
}
