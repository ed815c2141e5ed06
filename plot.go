package edm

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/empdyn/go-edm/crossmap"
	"github.com/empdyn/go-edm/projection"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// LineProjection generates an echart line chart for a projection result
// plotting the observed values along with the projected ones over the
// prediction indices.
func LineProjection(title string, res *projection.Result) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
	)

	lineDataObserved := make([]opts.LineData, 0, len(res.Index))
	lineDataPredicted := make([]opts.LineData, 0, len(res.Index))
	for i := range res.Index {
		obs := res.Observed[i]
		if math.IsNaN(obs) {
			lineDataObserved = append(lineDataObserved, opts.LineData{Value: nil})
		} else {
			lineDataObserved = append(lineDataObserved, opts.LineData{Value: obs})
		}
		lineDataPredicted = append(lineDataPredicted, opts.LineData{Value: res.Predicted[i]})
	}

	line.SetXAxis(res.Index).
		AddSeries("Observed", lineDataObserved).
		AddSeries("Predicted", lineDataPredicted)
	return line
}

// LineSkillCurve generates an echart line chart for an arbitrary skill curve
// keyed by a numeric parameter such as the embedding dimension or theta.
func LineSkillCurve(title, seriesName string, x []float64, scores []float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
	)

	lineData := make([]opts.LineData, 0, len(scores))
	for _, s := range scores {
		lineData = append(lineData, opts.LineData{Value: s})
	}

	line.SetXAxis(x).AddSeries(seriesName, lineData)
	return line
}

// LineCrossMap generates an echart line chart for a cross map skill curve
// plotting the mean score with its lower and upper bounds by library size.
func LineCrossMap(res *crossmap.Result) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: "Cross Map Convergence",
			},
		),
	)

	lineDataScore := make([]opts.LineData, 0, len(res.LibSizes))
	lineDataLower := make([]opts.LineData, 0, len(res.LibSizes))
	lineDataUpper := make([]opts.LineData, 0, len(res.LibSizes))
	for i := range res.LibSizes {
		lineDataScore = append(lineDataScore, opts.LineData{Value: res.Scores[i]})
		lineDataLower = append(lineDataLower, opts.LineData{Value: res.Lower[i]})
		lineDataUpper = append(lineDataUpper, opts.LineData{Value: res.Upper[i]})
	}

	line.SetXAxis(res.LibSizes).
		AddSeries("Score", lineDataScore).
		AddSeries("Lower", lineDataLower).
		AddSeries("Upper", lineDataUpper)
	return line
}

// PlotResults uses the Apache Echarts library to generate an html file
// showing the sweeps run so far. SimplexSweep must have run at least once.
func (ex *Explorer) PlotResults(path string) error {
	if ex.sweepE == nil {
		return ErrNoSweep
	}

	page := components.NewPage()

	embeddings := make([]float64, len(ex.sweepE.Embeddings))
	for i, e := range ex.sweepE.Embeddings {
		embeddings[i] = float64(e)
	}
	page.AddCharts(
		LineProjection(
			fmt.Sprintf("Simplex Projection E=%d", ex.sweepE.BestE),
			ex.sweepE.Best,
		),
		LineSkillCurve("Skill By Embedding Dimension", "Pearson", embeddings, ex.sweepE.Scores),
	)

	if ex.sweepTheta != nil {
		page.AddCharts(
			LineSkillCurve("Skill By Theta", "Pearson", ex.sweepTheta.Thetas, ex.sweepTheta.Scores),
		)
	}
	if ex.comparison != nil {
		page.AddCharts(
			LineProjection(
				fmt.Sprintf("Autoregressive Baseline AR(%d)", ex.comparison.LinearLag),
				ex.comparison.Linear,
			),
		)
	}
	if ex.crossMap != nil {
		page.AddCharts(LineCrossMap(ex.crossMap))
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	return page.Render(io.MultiWriter(file))
}
