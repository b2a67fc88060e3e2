package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/wifiprep/internal/features"
)

const echartsAssetsPrefix = "https://go-echarts.github.io/go-echarts-assets/assets/"

// HistogramBins is the bin count used for feature histograms.
const HistogramBins = 16

// ErrNoSamples is returned when there is nothing to plot.
var ErrNoSamples = errors.New("no samples to plot")

// WriteLabelChart renders an HTML page with the label distribution and the
// means of the reported features.
func WriteLabelChart(w io.Writer, s Summary) error {
	labels := make([]string, 0, len(s.Labels))
	counts := make([]opts.BarData, 0, len(s.Labels))
	for _, lc := range s.Labels {
		labels = append(labels, lc.Label)
		counts = append(counts, opts.BarData{Value: lc.Count})
	}

	labelBar := charts.NewBar()
	labelBar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "WiFi Capture Analysis", Width: "100%", Height: "480px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: "Label distribution", Subtitle: fmt.Sprintf("samples=%d", s.Total)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	labelBar.SetXAxis(labels).
		AddSeries("samples", counts,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)

	page := components.NewPage()
	page.SetAssetsHost(echartsAssetsPrefix)
	page.AddCharts(labelBar)

	if len(s.Features) > 0 {
		names := make([]string, 0, len(s.Features))
		means := make([]opts.BarData, 0, len(s.Features))
		stds := make([]opts.BarData, 0, len(s.Features))
		for _, fs := range s.Features {
			names = append(names, fs.Name)
			means = append(means, opts.BarData{Value: fs.Mean})
			stds = append(stds, opts.BarData{Value: fs.Std})
		}

		featureBar := charts.NewBar()
		featureBar.SetGlobalOptions(
			charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "480px", AssetsHost: echartsAssetsPrefix}),
			charts.WithTitleOpts(opts.Title{Title: "Feature statistics"}),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
			charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		)
		featureBar.SetXAxis(names).
			AddSeries("mean", means).
			AddSeries("std", stds)
		page.AddCharts(featureBar)
	}

	if err := page.Render(w); err != nil {
		return fmt.Errorf("render error: %w", err)
	}
	return nil
}

// HistogramFileName names the PNG for feature position i.
func HistogramFileName(i int) string {
	return fmt.Sprintf("feature_%02d_%s.png", i, features.Names()[i])
}

// WriteHistograms saves one PNG histogram per reported feature into dir and
// returns the written paths in feature order.
func WriteHistograms(dir string, vectors []features.Vector) ([]string, error) {
	if len(vectors) == 0 {
		return nil, ErrNoSamples
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create chart directory: %w", err)
	}

	names := features.Names()
	paths := make([]string, 0, ReportedFeatures)
	for i := 0; i < ReportedFeatures; i++ {
		values := make(plotter.Values, len(vectors))
		for r, v := range vectors {
			values[r] = float64(v[i])
		}

		p := plot.New()
		p.Title.Text = fmt.Sprintf("%s (n=%d)", names[i], len(vectors))
		p.X.Label.Text = strings.ReplaceAll(names[i], "_", " ")
		p.Y.Label.Text = "Samples"

		h, err := plotter.NewHist(values, HistogramBins)
		if err != nil {
			return paths, fmt.Errorf("failed to build histogram for %s: %w", names[i], err)
		}
		p.Add(h)

		path := filepath.Join(dir, HistogramFileName(i))
		if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
			return paths, fmt.Errorf("failed to save %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
