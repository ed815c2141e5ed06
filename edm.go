// Package edm explores the empirical dynamics of scalar time series. An
// Explorer sweeps embedding dimensions with simplex projection, profiles
// state dependence with locally weighted linear maps, checks directional
// coupling with convergent cross mapping, and compares everything against a
// plain autoregressive baseline.
package edm

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/empdyn/go-edm/baseline"
	"github.com/empdyn/go-edm/crossmap"
	"github.com/empdyn/go-edm/projection"
)

var (
	ErrNoSweep      = errors.New("no sweep has been run yet")
	ErrNoCandidates = errors.New("no sweep candidate produced a result")
)

// Explorer runs the analysis sweeps and accumulates their results so a
// summary model and report can be produced at the end.
type Explorer struct {
	opt *Options

	sweepE     *EmbeddingSweepResult
	sweepTheta *ThetaSweepResult
	comparison *BaselineComparison
	crossMap   *crossmap.Result
}

// New creates a new instance of an Explorer using the provided options. If no
// options are provided a default is used.
func New(opt *Options) (*Explorer, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &Explorer{opt: opt}, nil
}

// SimplexSweep runs simplex projection across the configured embedding
// dimensions and keeps the dimension with the highest Pearson score. Equal
// scores resolve to the smaller dimension. Candidates that cannot produce a
// well posed projection are logged and skipped.
func (ex *Explorer) SimplexSweep(y []float64, lib, pred projection.Range) (*EmbeddingSweepResult, error) {
	embeddings := make([]int, len(ex.opt.Embeddings))
	copy(embeddings, ex.opt.Embeddings)
	sort.Ints(embeddings)

	results := make([]*projection.Result, len(embeddings))

	par := ex.opt.Parallelization
	if par <= 0 || par > len(embeddings) {
		par = len(embeddings)
	}
	sem := make(chan struct{}, par)
	var wg sync.WaitGroup
	for i, e := range embeddings {
		sem <- struct{}{}
		wg.Add(1)

		go func(i, e int) {
			defer func() {
				wg.Done()
				<-sem
			}()

			res, err := projection.Simplex(y, e, lib, pred, ex.opt.projectionOptions())
			if err != nil {
				slog.Warn("unable to run simplex projection",
					"embedding_dimension", e,
					"error", err.Error(),
				)
				return
			}
			results[i] = res
		}(i, e)
	}
	wg.Wait()

	// ascending scan with strict improvement keeps the smallest dimension
	// on a tie
	sweep := &EmbeddingSweepResult{}
	for i, res := range results {
		if res == nil {
			continue
		}
		sweep.Embeddings = append(sweep.Embeddings, embeddings[i])
		sweep.Scores = append(sweep.Scores, res.Scores.Pearson)
		sweep.Results = append(sweep.Results, res)
		if sweep.Best == nil || res.Scores.Pearson > sweep.Best.Scores.Pearson {
			sweep.Best = res
			sweep.BestE = res.E
		}
	}
	if sweep.Best == nil {
		return nil, fmt.Errorf("simplex sweep over %d dimensions, %w", len(embeddings), ErrNoCandidates)
	}

	ex.sweepE = sweep
	return sweep, nil
}

// ThetaSweep runs the locally weighted linear map across the configured theta
// ladder at a fixed embedding dimension. The linear score is the skill at
// theta 0 and the nonlinear delta is the gain of the best theta over it.
func (ex *Explorer) ThetaSweep(y []float64, e int, lib, pred projection.Range) (*ThetaSweepResult, error) {
	results := make([]*projection.Result, len(ex.opt.Thetas))

	par := ex.opt.Parallelization
	if par <= 0 || par > len(ex.opt.Thetas) {
		par = len(ex.opt.Thetas)
	}
	sem := make(chan struct{}, par)
	var wg sync.WaitGroup
	for i, theta := range ex.opt.Thetas {
		sem <- struct{}{}
		wg.Add(1)

		go func(i int, theta float64) {
			defer func() {
				wg.Done()
				<-sem
			}()

			res, err := projection.SMap(y, e, theta, lib, pred, ex.opt.projectionOptions())
			if err != nil {
				slog.Warn("unable to run smap projection",
					"embedding_dimension", e,
					"theta", theta,
					"error", err.Error(),
				)
				return
			}
			results[i] = res
		}(i, theta)
	}
	wg.Wait()

	sweep := &ThetaSweepResult{E: e}
	haveLinear := false
	for i, res := range results {
		if res == nil {
			continue
		}
		sweep.Thetas = append(sweep.Thetas, ex.opt.Thetas[i])
		sweep.Scores = append(sweep.Scores, res.Scores.Pearson)
		sweep.Results = append(sweep.Results, res)
		if sweep.Best == nil || res.Scores.Pearson > sweep.Best.Scores.Pearson {
			sweep.Best = res
			sweep.BestTheta = res.Theta
		}
		if res.Theta == 0 {
			sweep.LinearScore = res.Scores.Pearson
			haveLinear = true
		}
	}
	if sweep.Best == nil {
		return nil, fmt.Errorf("theta sweep over %d values, %w", len(ex.opt.Thetas), ErrNoCandidates)
	}

	if !haveLinear {
		res, err := projection.SMap(y, e, 0.0, lib, pred, ex.opt.projectionOptions())
		if err != nil {
			return nil, fmt.Errorf("unable to run linear reference projection, %w", err)
		}
		sweep.LinearScore = res.Scores.Pearson
	}
	sweep.NonlinearDelta = sweep.Best.Scores.Pearson - sweep.LinearScore

	ex.sweepTheta = sweep
	return sweep, nil
}

// CrossMap tests whether the source series' reconstruction recovers the
// target series, sweeping the given library sizes.
func (ex *Explorer) CrossMap(source, target []float64, libSizes []int, e int) (*crossmap.Result, error) {
	res, err := crossmap.CrossMap(source, target, libSizes, &crossmap.Options{
		E:               e,
		Tau:             ex.opt.Tau,
		Draws:           ex.opt.Draws,
		ExclusionRadius: ex.opt.ExclusionRadius,
		Seed:            ex.opt.Seed,
		Parallelization: ex.opt.Parallelization,
	})
	if err != nil {
		return nil, err
	}
	ex.crossMap = res
	return res, nil
}

// CompareBaseline fits an autoregressive model over the library range and
// forecasts the prediction range, pairing it with the best simplex result.
// SimplexSweep must run first.
func (ex *Explorer) CompareBaseline(y []float64, lib, pred projection.Range) (*BaselineComparison, error) {
	if ex.sweepE == nil {
		return nil, ErrNoSweep
	}

	ar, err := baseline.New(nil)
	if err != nil {
		return nil, err
	}
	if err := ar.Fit(y, lib); err != nil {
		return nil, fmt.Errorf("unable to fit autoregressive baseline, %w", err)
	}
	linear, err := ar.Forecast(y, pred)
	if err != nil {
		return nil, fmt.Errorf("unable to forecast autoregressive baseline, %w", err)
	}

	cmp := &BaselineComparison{
		Simplex:   ex.sweepE.Best,
		Linear:    linear,
		LinearLag: ar.Order(),
		SkillGain: ex.sweepE.Best.Scores.Pearson - linear.Scores.Pearson,
	}
	ex.comparison = cmp
	return cmp, nil
}

// EmbeddingSweep returns the last simplex sweep result.
func (ex *Explorer) EmbeddingSweep() *EmbeddingSweepResult {
	return ex.sweepE
}

// ThetaProfile returns the last theta sweep result.
func (ex *Explorer) ThetaProfile() *ThetaSweepResult {
	return ex.sweepTheta
}

// CrossMapResult returns the last cross map result.
func (ex *Explorer) CrossMapResult() *crossmap.Result {
	return ex.crossMap
}

// BaselineResult returns the last baseline comparison.
func (ex *Explorer) BaselineResult() *BaselineComparison {
	return ex.comparison
}
