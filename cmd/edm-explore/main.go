// Command edm-explore runs an empirical dynamics exploration over a csv
// series: an embedding dimension sweep, a state dependence profile, an
// autoregressive comparison, and optionally a cross map against a candidate
// causal driver. Results land in an html report and a json model summary.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/empdyn/go-edm"
	"github.com/empdyn/go-edm/dataset"
	"github.com/empdyn/go-edm/projection"
	"github.com/goccy/go-json"
	"github.com/pkg/profile"
)

func main() {
	input := flag.String("input", "", "path to the input csv file")
	dateCol := flag.String("date-col", "date", "name of the date column")
	dateLayout := flag.String("date-layout", "2006-01-02", "go time layout of the date column")
	targetCol := flag.String("target-col", "", "name of the series column to model")
	causeCol := flag.String("cause-col", "", "optional column to cross map the target against")
	trainFrac := flag.Float64("train-frac", 0.7, "fraction of rows used as the library")
	workdays := flag.Bool("workdays", false, "keep only united states workdays")
	maskOutliers := flag.Bool("mask-outliers", false, "mask tukey fence outliers in the target before modeling")
	reportPath := flag.String("report", "edm_report.html", "path of the html report")
	modelPath := flag.String("model", "edm_model.json", "path of the json model summary")
	profilePath := flag.String("profile", "", "write a cpu profile to the given directory")
	flag.Parse()

	if *input == "" || *targetCol == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *profilePath != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(*profilePath)).Stop()
	}

	if err := run(*input, *dateCol, *dateLayout, *targetCol, *causeCol, *trainFrac, *workdays, *maskOutliers, *reportPath, *modelPath); err != nil {
		slog.Error("exploration failed", "error", err.Error())
		os.Exit(1)
	}
}

func run(input, dateCol, dateLayout, targetCol, causeCol string, trainFrac float64, workdays, maskOutliers bool, reportPath, modelPath string) error {
	file, err := os.Open(input)
	if err != nil {
		return err
	}
	defer file.Close()

	tb, err := dataset.ReadCSV(file, dateCol, dateLayout)
	if err != nil {
		return fmt.Errorf("unable to read %s, %w", input, err)
	}
	if workdays {
		before := tb.Len()
		tb = tb.FilterWorkdays(dataset.USBusinessCalendar())
		slog.Info("filtered to workdays", "before", before, "after", tb.Len())
	}
	if maskOutliers {
		masked, err := tb.MaskOutliers(targetCol, 0.25, 0.75, 1.5)
		if err != nil {
			return err
		}
		slog.Info("masked outliers", "column", targetCol, "count", masked)
	}

	y, err := tb.Column(targetCol)
	if err != nil {
		return err
	}

	split := int(float64(len(y)) * trainFrac)
	if split < 1 || split >= len(y) {
		return fmt.Errorf("train fraction %f leaves no library or prediction rows, %w", trainFrac, projection.ErrInvalidParameter)
	}
	lib := projection.Range{Start: 0, End: split}
	pred := projection.Range{Start: split, End: len(y)}

	ex, err := edm.New(nil)
	if err != nil {
		return err
	}

	sweepE, err := ex.SimplexSweep(y, lib, pred)
	if err != nil {
		return err
	}
	slog.Info("simplex sweep complete",
		"best_e", sweepE.BestE,
		"pearson", sweepE.Best.Scores.Pearson,
	)

	sweepTheta, err := ex.ThetaSweep(y, sweepE.BestE, lib, pred)
	if err != nil {
		return err
	}
	slog.Info("theta sweep complete",
		"best_theta", sweepTheta.BestTheta,
		"nonlinear_delta", sweepTheta.NonlinearDelta,
	)

	cmp, err := ex.CompareBaseline(y, lib, pred)
	if err != nil {
		return err
	}
	slog.Info("baseline comparison complete",
		"linear_lag", cmp.LinearLag,
		"skill_gain", cmp.SkillGain,
	)

	if causeCol != "" {
		cause, err := tb.Column(causeCol)
		if err != nil {
			return err
		}
		libSizes := defaultLibSizes(len(y), sweepE.BestE)
		cm, err := ex.CrossMap(y, cause, libSizes, sweepE.BestE)
		if err != nil {
			return err
		}
		slog.Info("cross map complete",
			"cause", causeCol,
			"convergent", cm.Convergent(0.1),
			"final_score", cm.Scores[len(cm.Scores)-1],
		)
	}

	m, err := ex.Model()
	if err != nil {
		return err
	}
	if err := m.TablePrint(os.Stdout, "", "  "); err != nil {
		return err
	}

	bytes, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(modelPath, bytes, 0o644); err != nil {
		return err
	}
	return ex.PlotResults(reportPath)
}

// defaultLibSizes doubles from just above the neighbor count, staying clear
// of the embedded point count so subsampling always has room.
func defaultLibSizes(n, e int) []int {
	var sizes []int
	for size := e + 2; size <= n*3/4; size *= 2 {
		sizes = append(sizes, size)
	}
	return sizes
}
