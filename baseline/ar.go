// Package baseline provides a linear autoregressive forecaster used as the
// comparison point for the state-space projections. It fits AR(p) by ordinary
// least squares on a lagged design matrix and picks the order with the lowest
// corrected Akaike information criterion.
package baseline

import (
	"errors"
	"fmt"
	"math"

	"github.com/empdyn/go-edm/embedding"
	"github.com/empdyn/go-edm/models"
	"github.com/empdyn/go-edm/projection"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrUntrainedModel = errors.New("autoregression has not been fit yet")
	ErrNoCandidates   = errors.New("no autoregressive order could be fit")
)

const DefaultMaxOrder = 8

// Options control the autoregressive baseline fit.
type Options struct {
	// MaxOrder bounds the lag order search, inclusive.
	MaxOrder int
}

func NewDefaultOptions() *Options {
	return &Options{
		MaxOrder: DefaultMaxOrder,
	}
}

// Validate runs basic validation on autoregression options
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		o = NewDefaultOptions()
	}
	if o.MaxOrder < 1 {
		return nil, fmt.Errorf("got max order %d, %w", o.MaxOrder, projection.ErrInvalidParameter)
	}
	return o, nil
}

// AutoRegression is a fitted AR(p) model.
type AutoRegression struct {
	opt *Options

	order     int
	intercept float64
	coef      []float64
	aicc      float64
	trained   bool
}

func New(opt *Options) (*AutoRegression, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &AutoRegression{opt: opt}, nil
}

// Fit searches orders 1..MaxOrder over the library range and keeps the order
// minimizing AICc. Orders that cannot produce a well-posed design are skipped.
func (ar *AutoRegression) Fit(y []float64, lib projection.Range) error {
	if err := lib.Validate(); err != nil {
		return fmt.Errorf("library, %w", err)
	}

	bestAICc := math.Inf(1)
	found := false
	for p := 1; p <= ar.opt.MaxOrder; p++ {
		intercept, coef, aicc, err := fitOrder(y, p, lib)
		if err != nil {
			continue
		}
		if aicc < bestAICc {
			bestAICc = aicc
			ar.order = p
			ar.intercept = intercept
			ar.coef = coef
			ar.aicc = aicc
			found = true
		}
	}
	if !found {
		return ErrNoCandidates
	}
	ar.trained = true
	return nil
}

func fitOrder(y []float64, p int, lib projection.Range) (float64, []float64, float64, error) {
	em, err := embedding.New(y, p, 1)
	if err != nil {
		return 0, nil, 0, err
	}

	var rows [][]float64
	var targets []float64
	vec := make([]float64, p)
	for t := lib.Start; t < lib.End && t < em.Len(); t++ {
		if !em.Vector(vec, t) {
			continue
		}
		target, ok := em.Target(t, 1)
		if !ok {
			continue
		}
		row := make([]float64, p)
		copy(row, vec)
		rows = append(rows, row)
		targets = append(targets, target)
	}

	n := len(rows)
	k := p + 1 // coefficients plus intercept
	if n <= k+1 {
		return 0, nil, 0, fmt.Errorf("order %d has %d usable rows, %w", p, n, projection.ErrUnderdeterminedFit)
	}

	x := mat.NewDense(n, p, nil)
	yv := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		x.SetRow(i, rows[i])
		yv.Set(i, 0, targets[i])
	}

	ols, err := models.NewOLSRegression(nil)
	if err != nil {
		return 0, nil, 0, err
	}
	if err := ols.Fit(x, yv); err != nil {
		return 0, nil, 0, err
	}

	predicted, err := ols.Predict(x)
	if err != nil {
		return 0, nil, 0, err
	}
	rss := 0.0
	for i := 0; i < n; i++ {
		diff := targets[i] - predicted[i]
		rss += diff * diff
	}
	if rss <= 0 {
		rss = math.SmallestNonzeroFloat64
	}

	aic := float64(n)*math.Log(rss/float64(n)) + 2.0*float64(k)
	aicc := aic + 2.0*float64(k)*float64(k+1)/float64(n-k-1)
	return ols.Intercept(), ols.Coef(), aicc, nil
}

// Order returns the selected lag order.
func (ar *AutoRegression) Order() int {
	return ar.order
}

// AICc returns the information criterion of the selected order.
func (ar *AutoRegression) AICc() float64 {
	return ar.aicc
}

// Coef returns the fitted lag coefficients ordered most recent lag first.
func (ar *AutoRegression) Coef() []float64 {
	c := make([]float64, len(ar.coef))
	copy(c, ar.coef)
	return c
}

// Intercept returns the fitted intercept.
func (ar *AutoRegression) Intercept() float64 {
	return ar.intercept
}

// Forecast produces one-step-ahead predictions over the prediction range
// using the fitted coefficients, returning the same result shape as the
// state-space projections. Indices without enough history are skipped.
func (ar *AutoRegression) Forecast(y []float64, pred projection.Range) (*projection.Result, error) {
	if !ar.trained {
		return nil, ErrUntrainedModel
	}
	if err := pred.Validate(); err != nil {
		return nil, fmt.Errorf("prediction, %w", err)
	}

	em, err := embedding.New(y, ar.order, 1)
	if err != nil {
		return nil, err
	}

	res := &projection.Result{E: ar.order}
	vec := make([]float64, ar.order)

	end := pred.End
	if end > em.Len() {
		end = em.Len()
	}
	for t := pred.Start; t < end; t++ {
		if !em.Vector(vec, t) {
			res.Skipped = append(res.Skipped, t)
			continue
		}
		yhat := ar.intercept
		for i := 0; i < ar.order; i++ {
			yhat += ar.coef[i] * vec[i]
		}
		res.Index = append(res.Index, t)
		res.Predicted = append(res.Predicted, yhat)
		if obs, ok := em.Target(t, 1); ok {
			res.Observed = append(res.Observed, obs)
		} else {
			res.Observed = append(res.Observed, math.NaN())
		}
	}

	if len(res.Index) == 0 {
		return nil, fmt.Errorf("prediction range [%d, %d) has no forecastable indices, %w", pred.Start, pred.End, projection.ErrEmptyRange)
	}

	scores, err := projection.NewScores(res.Predicted, res.Observed)
	if err != nil {
		return nil, err
	}
	res.Scores = scores
	return res, nil
}
