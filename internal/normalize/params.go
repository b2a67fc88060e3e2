// Package normalize computes dataset-wide z-score parameters and applies them
// to feature vectors.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/banshee-data/wifiprep/internal/features"
	"github.com/banshee-data/wifiprep/internal/fsutil"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// MinStd is the smallest standard deviation used as a divisor. Columns with
// less spread are scaled by 1 instead.
const MinStd = 0.001

// FileName is the conventional name of the persisted artifact.
const FileName = "normalization.json"

// ErrSchema is returned when a persisted artifact is missing fields or has
// the wrong layout.
var ErrSchema = errors.New("invalid normalization artifact")

// Params is the normalization reference for one prepared dataset.
type Params struct {
	Means        [features.Size]float64
	Stds         [features.Size]float64
	FeatureNames []string
}

// Identity returns parameters that leave vectors unchanged.
func Identity() Params {
	p := Params{FeatureNames: features.Names()}
	for i := range p.Stds {
		p.Stds[i] = 1
	}
	return p
}

// Compute returns the per-position population mean and standard deviation
// over every vector. An empty dataset yields the identity transform.
func Compute(vectors []features.Vector) Params {
	if len(vectors) == 0 {
		return Identity()
	}

	data := make([]float64, 0, len(vectors)*features.Size)
	for _, v := range vectors {
		for _, x := range v {
			data = append(data, float64(x))
		}
	}
	m := mat.NewDense(len(vectors), features.Size, data)

	p := Params{FeatureNames: features.Names()}
	col := make([]float64, len(vectors))
	for j := 0; j < features.Size; j++ {
		mat.Col(col, j, m)
		mean, variance := stat.PopMeanVariance(col, nil)
		std := math.Sqrt(variance)
		if std < MinStd {
			std = 1
		}
		p.Means[j] = mean
		p.Stds[j] = std
	}
	return p
}

// Apply z-scores v against p.
func Apply(v features.Vector, p Params) features.Vector {
	var out features.Vector
	for i := range v {
		out[i] = float32((float64(v[i]) - p.Means[i]) / p.Stds[i])
	}
	return out
}

// ApplyAll z-scores every vector against the same parameters.
func ApplyAll(vectors []features.Vector, p Params) []features.Vector {
	out := make([]features.Vector, len(vectors))
	for i, v := range vectors {
		out[i] = Apply(v, p)
	}
	return out
}

type paramsJSON struct {
	Means        []float64 `json:"means"`
	Stds         []float64 `json:"stds"`
	FeatureNames []string  `json:"feature_names"`
}

// MarshalJSON writes the artifact layout: means, stds, feature_names.
func (p Params) MarshalJSON() ([]byte, error) {
	names := p.FeatureNames
	if names == nil {
		names = []string{}
	}
	return json.Marshal(paramsJSON{
		Means:        p.Means[:],
		Stds:         p.Stds[:],
		FeatureNames: names,
	})
}

// UnmarshalJSON rejects artifacts whose means or stds are absent or not
// exactly features.Size wide. Missing values are never padded.
func (p *Params) UnmarshalJSON(data []byte) error {
	var raw paramsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}
	if raw.Means == nil {
		return fmt.Errorf("%w: missing means", ErrSchema)
	}
	if raw.Stds == nil {
		return fmt.Errorf("%w: missing stds", ErrSchema)
	}
	if len(raw.Means) != features.Size {
		return fmt.Errorf("%w: means has %d values, want %d", ErrSchema, len(raw.Means), features.Size)
	}
	if len(raw.Stds) != features.Size {
		return fmt.Errorf("%w: stds has %d values, want %d", ErrSchema, len(raw.Stds), features.Size)
	}

	copy(p.Means[:], raw.Means)
	copy(p.Stds[:], raw.Stds)
	p.FeatureNames = raw.FeatureNames
	return nil
}

// Save writes p as indented JSON.
func Save(fsys fsutil.FileSystem, path string, p Params) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode normalization params: %w", err)
	}
	if err := fsys.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write normalization params: %w", err)
	}
	return nil
}

// Load reads a previously saved artifact.
func Load(fsys fsutil.FileSystem, path string) (Params, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return Params{}, fmt.Errorf("failed to read normalization params: %w", err)
	}
	var p Params
	if err := json.Unmarshal(data, &p); err != nil {
		return Params{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}
