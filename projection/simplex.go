package projection

import (
	"fmt"
	"math"

	"github.com/empdyn/go-edm/embedding"
)

// Simplex runs simplex projection at embedding dimension e: each prediction
// index is forecast as the weighted average of the next-step targets of its
// E+1 nearest library neighbors, weighted by exp(-d_i/d̄) with d̄ the mean
// distance over the selected neighbors.
func Simplex(y []float64, e int, lib, pred Range, opt *Options) (*Result, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
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
	k := e + 1
	if len(libPts) <= k {
		return nil, fmt.Errorf("library has %d usable points but needs more than %d, %w", len(libPts), k, ErrUnderdeterminedFit)
	}

	res := &Result{E: e}
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

		nbrs := nearest(candidates(libPts, query, t, opt.ExclusionRadius), k)
		if len(nbrs) < k {
			res.Skipped = append(res.Skipped, t)
			continue
		}

		res.Index = append(res.Index, t)
		res.Predicted = append(res.Predicted, simplexAverage(nbrs))
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

// simplexAverage combines the neighbor targets with exponentially decaying
// distance weights. Identical neighbors (zero mean distance) degenerate to a
// uniform average.
func simplexAverage(nbrs []neighbor) float64 {
	dbar := 0.0
	for _, nbr := range nbrs {
		dbar += nbr.dist
	}
	dbar /= float64(len(nbrs))

	wsum := 0.0
	val := 0.0
	for _, nbr := range nbrs {
		w := 1.0
		if dbar > 0 {
			w = math.Exp(-nbr.dist / dbar)
		}
		wsum += w
		val += w * nbr.pt.target
	}
	return val / wsum
}
