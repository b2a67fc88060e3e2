// Package report summarizes capture data for a human reader: label balance
// and a statistical glance at the leading features.
package report

import (
	"fmt"
	"io"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/wifiprep/internal/capture"
	"github.com/banshee-data/wifiprep/internal/features"
)

// UnlabeledBucket collects entries that carry no label or an empty one.
const UnlabeledBucket = "unlabeled"

// ReportedFeatures is how many leading named features get statistics.
const ReportedFeatures = 10

// LabelCount is one row of the label distribution.
type LabelCount struct {
	Label string
	Count int
}

// FeatureStat holds population statistics for one feature position.
type FeatureStat struct {
	Name string
	Mean float64
	Std  float64
}

// Summary is the analysis of a capture, independent of how it is shown.
type Summary struct {
	Total    int
	Labels   []LabelCount
	Features []FeatureStat
}

// Summarize counts labels and computes mean/std of the reported features.
// Std is the population deviation with no floor applied.
func Summarize(entries []capture.Entry) Summary {
	s := Summary{Total: len(entries)}

	counts := make(map[string]int)
	for _, e := range entries {
		label := e.LabelOr(UnlabeledBucket)
		if label == "" {
			label = UnlabeledBucket
		}
		counts[label]++
	}
	for label, n := range counts {
		s.Labels = append(s.Labels, LabelCount{Label: label, Count: n})
	}
	sort.Slice(s.Labels, func(i, j int) bool { return s.Labels[i].Label < s.Labels[j].Label })

	if len(entries) == 0 {
		return s
	}

	vectors := features.ExtractAll(entries)
	names := features.Names()
	col := make([]float64, len(vectors))
	for i := 0; i < ReportedFeatures; i++ {
		for r, v := range vectors {
			col[r] = float64(v[i])
		}
		mean, variance := stat.PopMeanVariance(col, nil)
		s.Features = append(s.Features, FeatureStat{
			Name: names[i],
			Mean: mean,
			Std:  sqrt(variance),
		})
	}
	return s
}

// Print writes the plain-text report.
func (s Summary) Print(w io.Writer) error {
	ew := &errWriter{w: w}
	ew.printf("\n=== Data Analysis ===\n")
	ew.printf("Total samples: %d\n", s.Total)
	ew.printf("\nLabel distribution:\n")
	for _, lc := range s.Labels {
		ew.printf("  %s: %d\n", lc.Label, lc.Count)
	}
	if len(s.Features) > 0 {
		ew.printf("\nFeature statistics:\n")
		for _, fs := range s.Features {
			ew.printf("  %s: mean=%.2f, std=%.2f\n", fs.Name, fs.Mean, fs.Std)
		}
	}
	return ew.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

// sqrt clamps tiny negative variances from rounding to zero.
func sqrt(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return math.Sqrt(v)
}
