package models

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

type WLSOptions struct {
	// FitIntercept adds a constant 1.0 feature as the first column if set to true
	FitIntercept bool
}

// Validate runs basic validation on WLS options
func (w *WLSOptions) Validate() (*WLSOptions, error) {
	if w == nil {
		w = NewDefaultWLSOptions()
	}
	return w, nil
}

// NewDefaultWLSOptions returns a default set of weighted least squares options
func NewDefaultWLSOptions() *WLSOptions {
	return &WLSOptions{
		FitIntercept: true,
	}
}

// WLSRegression computes weighted least squares using QR factorization of the
// row-scaled design matrix. Each observation row and its target are scaled by
// the square root of the observation weight before solving.
type WLSRegression struct {
	opt       *WLSOptions
	coef      []float64
	intercept float64
}

func NewWLSRegression(opt *WLSOptions) (*WLSRegression, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &WLSRegression{
		opt: opt,
	}, nil
}

// FitWeighted fits the model using the provided non-negative observation
// weights. A nil weights slice is treated as unit weights, making the fit
// equivalent to ordinary least squares.
func (w *WLSRegression) FitWeighted(x, y mat.Matrix, weights []float64) error {
	if w.opt == nil {
		return ErrNoOptions
	}
	if x == nil {
		return ErrNoTrainingMatrix
	}
	if y == nil {
		return ErrNoTargetMatrix
	}
	m, n := x.Dims()

	ym, _ := y.Dims()
	if ym != m {
		return fmt.Errorf("training data has %d rows and target has %d rows, %w", m, ym, ErrTargetLenMismatch)
	}
	if weights != nil && len(weights) != m {
		return fmt.Errorf("got %d weights for %d observations, %w", len(weights), m, ErrWeightLenMismatch)
	}

	cols := n
	if w.opt.FitIntercept {
		cols = n + 1
	}

	xw := mat.NewDense(m, cols, nil)
	yw := mat.NewDense(m, 1, nil)
	for i := 0; i < m; i++ {
		scale := 1.0
		if weights != nil {
			if weights[i] < 0 {
				return fmt.Errorf("weight at row %d is %f, %w", i, weights[i], ErrNegativeWeight)
			}
			scale = math.Sqrt(weights[i])
		}
		col := 0
		if w.opt.FitIntercept {
			xw.Set(i, 0, scale)
			col = 1
		}
		for j := 0; j < n; j++ {
			xw.Set(i, col+j, scale*x.At(i, j))
		}
		yw.Set(i, 0, scale*y.At(i, 0))
	}

	qr := new(mat.QR)
	qr.Factorize(xw)

	var sol mat.Dense
	if err := qr.SolveTo(&sol, false, yw); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return fmt.Errorf("unable to solve weighted least squares system, %w", ErrSingularFit)
		}
	}

	c := mat.Col(nil, 0, &sol)
	for _, v := range c {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrSingularFit
		}
	}

	if w.opt.FitIntercept {
		w.intercept = c[0]
		w.coef = c[1:]
	} else {
		w.coef = c
	}
	return nil
}

// Fit fits the model with unit weights, satisfying the Model interface.
func (w *WLSRegression) Fit(x, y mat.Matrix) error {
	return w.FitWeighted(x, y, nil)
}

// Predict computes yhat = intercept + x*coef for every row of x.
func (w *WLSRegression) Predict(x mat.Matrix) ([]float64, error) {
	if w.opt == nil {
		return nil, ErrNoOptions
	}
	if x == nil {
		return nil, ErrNoDesignMatrix
	}

	m, n := x.Dims()
	if n != len(w.coef) {
		return nil, fmt.Errorf("got %d features in design matrix, but expected %d, %w", n, len(w.coef), ErrFeatureLenMismatch)
	}

	res := make([]float64, m)
	row := make([]float64, n)
	for i := 0; i < m; i++ {
		mat.Row(row, i, x)
		val := w.intercept
		for j := 0; j < n; j++ {
			val += w.coef[j] * row[j]
		}
		res[i] = val
	}
	return res, nil
}

// Score computes the coefficient of determination of the prediction
func (w *WLSRegression) Score(x, y mat.Matrix) (float64, error) {
	if w.opt == nil {
		return 0.0, ErrNoOptions
	}
	if x == nil {
		return 0.0, ErrNoDesignMatrix
	}
	if y == nil {
		return 0.0, ErrNoTargetMatrix
	}

	m, _ := x.Dims()
	ym, _ := y.Dims()
	if m != ym {
		return 0.0, fmt.Errorf("design matrix has %d rows and target has %d rows, %w", m, ym, ErrTargetLenMismatch)
	}

	res, err := w.Predict(x)
	if err != nil {
		return 0.0, err
	}

	ySlice := mat.Col(nil, 0, y)
	score := stat.RSquaredFrom(res, ySlice, nil)
	if math.IsNaN(score) {
		score = 1.0
	}
	return score, nil
}

// Intercept returns the computed intercept if FitIntercept is set to true. Defaults to 0.0 if not set.
func (w *WLSRegression) Intercept() float64 {
	return w.intercept
}

// Coef returns a slice of the trained coefficients in the same order of the training feature Matrix by column.
func (w *WLSRegression) Coef() []float64 {
	c := make([]float64, len(w.coef))
	copy(c, w.coef)
	return c
}
