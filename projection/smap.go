package projection

import (
	"fmt"
	"math"

	"github.com/empdyn/go-edm/embedding"
	"github.com/empdyn/go-edm/models"
	"gonum.org/v1/gonum/mat"
)

// SMap runs the sequential locally weighted global linear map at embedding
// dimension e and nonlinearity θ. Every library point contributes to each
// local fit with weight exp(-θ·d_i/d̄), where d̄ is the mean distance from
// the query to the library. At θ=0 the weights are uniform and the forecast
// reduces exactly to a global linear autoregression over the library.
func SMap(y []float64, e int, theta float64, lib, pred Range, opt *Options) (*Result, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	if theta < 0 || math.IsNaN(theta) {
		return nil, fmt.Errorf("got theta %f, %w", theta, ErrInvalidParameter)
	}
	if err := lib.Validate(); err != nil {
		return nil, fmt.Errorf("library, %w", err)
	}
	if err := pred.Validate(); err != nil {
		return nil, fmt.Errorf("prediction, %w", err)
	}

	em, err := embedding.New(y, e, opt.Tau)
	if err != nil {
		return nil, err
	}

	libPts := buildLibrary(em, lib, opt.Tp)
	if len(libPts) == 0 {
		return nil, fmt.Errorf("library range [%d, %d) has no usable points, %w", lib.Start, lib.End, ErrEmptyRange)
	}
	if len(libPts) < e+2 {
		return nil, fmt.Errorf("library has %d usable points but the local fit needs at least %d, %w", len(libPts), e+2, ErrUnderdeterminedFit)
	}

	res := &Result{E: e, Theta: theta}
	query := make([]float64, e)

	end := pred.End
	if end > em.Len() {
		end = em.Len()
	}
	for t := pred.Start; t < end; t++ {
		if !em.Vector(query, t) {
			res.Skipped = append(res.Skipped, t)
			continue
		}

		nbrs := candidates(libPts, query, t, opt.ExclusionRadius)
		if len(nbrs) < e+2 {
			res.Skipped = append(res.Skipped, t)
			continue
		}

		yhat, err := smapSolve(nbrs, query, theta)
		if err != nil {
			res.Skipped = append(res.Skipped, t)
			continue
		}

		res.Index = append(res.Index, t)
		res.Predicted = append(res.Predicted, yhat)
		if obs, ok := em.Target(t, opt.Tp); ok {
			res.Observed = append(res.Observed, obs)
		} else {
			res.Observed = append(res.Observed, math.NaN())
		}
	}

	if len(res.Index) == 0 {
		return nil, fmt.Errorf("prediction range [%d, %d) has no forecastable indices, %w", pred.Start, pred.End, ErrEmptyRange)
	}

	scores, err := NewScores(res.Predicted, res.Observed)
	if err != nil {
		return nil, err
	}
	res.Scores = scores
	return res, nil
}

// smapSolve fits the weighted local linear map over the candidate pool and
// applies it to the query vector.
func smapSolve(nbrs []neighbor, query []float64, theta float64) (float64, error) {
	m := len(nbrs)
	e := len(query)

	dbar := 0.0
	for _, nbr := range nbrs {
		dbar += nbr.dist
	}
	dbar /= float64(m)

	x := mat.NewDense(m, e, nil)
	yv := mat.NewDense(m, 1, nil)
	weights := make([]float64, m)
	for i, nbr := range nbrs {
		x.SetRow(i, nbr.pt.vec)
		yv.Set(i, 0, nbr.pt.target)
		if theta == 0 || dbar == 0 {
			weights[i] = 1.0
		} else {
			weights[i] = math.Exp(-theta * nbr.dist / dbar)
		}
	}

	wls, err := models.NewWLSRegression(nil)
	if err != nil {
		return 0, err
	}
	if err := wls.FitWeighted(x, yv, weights); err != nil {
		return 0, fmt.Errorf("unable to fit local linear map, %w", err)
	}

	yhat := wls.Intercept()
	coef := wls.Coef()
	for i := 0; i < e; i++ {
		yhat += coef[i] * query[i]
	}
	if math.IsNaN(yhat) || math.IsInf(yhat, 0) {
		return 0, models.ErrSingularFit
	}
	return yhat, nil
}
