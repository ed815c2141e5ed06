// Package projection implements state-space nearest neighbor forecasting:
// simplex projection and the s-map family of locally weighted linear maps.
// Every call is a pure function of its inputs.
package projection

import (
	"errors"
	"fmt"
	"sort"

	"github.com/empdyn/go-edm/embedding"
	"gonum.org/v1/gonum/floats"
)

var (
	ErrEmptyRange         = errors.New("no valid indices in library or prediction range")
	ErrUnderdeterminedFit = errors.New("library does not support a well-posed fit")
	ErrInvalidParameter   = errors.New("invalid projection parameter")
)

// Range is a half-open index interval [Start, End) over the series.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (r Range) Validate() error {
	if r.Start < 0 || r.End <= r.Start {
		return fmt.Errorf("range [%d, %d) is malformed, %w", r.Start, r.End, ErrInvalidParameter)
	}
	return nil
}

// Options control the shared projection behavior.
type Options struct {
	// Tau is the index spacing between embedding vector components.
	Tau int

	// Tp is the forecast horizon in index steps ahead of the query index.
	Tp int

	// ExclusionRadius excludes library points within the given index
	// distance of the query from the neighbor pool. The default of 0
	// excludes only the query index itself.
	ExclusionRadius int
}

func NewDefaultOptions() *Options {
	return &Options{
		Tau:             1,
		Tp:              1,
		ExclusionRadius: 0,
	}
}

// Validate runs basic validation on projection options
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		o = NewDefaultOptions()
	}
	if o.Tau < 1 {
		return nil, fmt.Errorf("got lag %d, %w", o.Tau, ErrInvalidParameter)
	}
	if o.Tp < 0 {
		return nil, fmt.Errorf("got horizon %d, %w", o.Tp, ErrInvalidParameter)
	}
	if o.ExclusionRadius < 0 {
		return nil, fmt.Errorf("got exclusion radius %d, %w", o.ExclusionRadius, ErrInvalidParameter)
	}
	return o, nil
}

// libPoint is a library-set member: an embedded index with a known target
// value tp steps ahead.
type libPoint struct {
	idx    int
	vec    []float64
	target float64
}

// buildLibrary collects every index in lib with a defined embedding vector
// and an observed target.
func buildLibrary(em *embedding.Embedding, lib Range, tp int) []libPoint {
	var pts []libPoint
	vec := make([]float64, em.E)
	for t := lib.Start; t < lib.End && t < em.Len(); t++ {
		if !em.Vector(vec, t) {
			continue
		}
		target, ok := em.Target(t, tp)
		if !ok {
			continue
		}
		ptVec := make([]float64, em.E)
		copy(ptVec, vec)
		pts = append(pts, libPoint{idx: t, vec: ptVec, target: target})
	}
	return pts
}

type neighbor struct {
	pt   *libPoint
	dist float64
}

// candidates returns the library points usable for the query at index t,
// honoring the exclusion radius, with their euclidean distances to the query
// vector.
func candidates(lib []libPoint, query []float64, t, exclusionRadius int) []neighbor {
	nbrs := make([]neighbor, 0, len(lib))
	for i := range lib {
		d := lib[i].idx - t
		if d < 0 {
			d = -d
		}
		if d <= exclusionRadius {
			continue
		}
		nbrs = append(nbrs, neighbor{
			pt:   &lib[i],
			dist: floats.Distance(lib[i].vec, query, 2),
		})
	}
	return nbrs
}

// nearest sorts the candidate pool by distance and returns the k closest.
// Ties break on the earlier library index for determinism.
func nearest(nbrs []neighbor, k int) []neighbor {
	sort.Slice(nbrs, func(i, j int) bool {
		if nbrs[i].dist == nbrs[j].dist {
			return nbrs[i].pt.idx < nbrs[j].pt.idx
		}
		return nbrs[i].dist < nbrs[j].dist
	})
	if len(nbrs) > k {
		nbrs = nbrs[:k]
	}
	return nbrs
}
