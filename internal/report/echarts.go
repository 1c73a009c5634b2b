// Package report renders comparison artifacts from batch evaluation runs:
// an HTML chart comparing per-algorithm quality scores and a PNG trace of a
// single trial with detected and ground-truth steps overlaid.
package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/gaitlab/stride.report/internal/storage/sqlite"
)

// WriteComparisonChart renders an HTML bar chart of mean precision, recall
// and F1 per algorithm for one run.
func WriteComparisonChart(w io.Writer, runID string, aggs []sqlite.AlgorithmAggregate) error {
	if len(aggs) == 0 {
		return fmt.Errorf("no aggregates to chart for run %s", runID)
	}

	names := make([]string, len(aggs))
	precision := make([]opts.BarData, len(aggs))
	recall := make([]opts.BarData, len(aggs))
	f1 := make([]opts.BarData, len(aggs))
	for i, a := range aggs {
		names[i] = a.Algorithm
		precision[i] = opts.BarData{Value: round3(a.MeanPrecision)}
		recall[i] = opts.BarData{Value: round3(a.MeanRecall)}
		f1[i] = opts.BarData{Value: round3(a.MeanF1)}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Step Detection Comparison",
			Width:     "1000px",
			Height:    "550px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Step detection quality by algorithm",
			Subtitle: fmt.Sprintf("run=%s trials=%d", runID, aggs[0].Results),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 1, Name: "score"}),
	)
	bar.SetXAxis(names).
		AddSeries("precision", precision).
		AddSeries("recall", recall).
		AddSeries("f1", f1)

	return bar.Render(w)
}

func round3(v float64) float64 {
	return float64(int(v*1000+0.5)) / 1000
}
