package edm

import (
	"fmt"

	"github.com/empdyn/go-edm/crossmap"
	"github.com/empdyn/go-edm/projection"
)

const (
	DefaultMaxEmbedding = 12
	DefaultDraws        = crossmap.DefaultDraws
)

// DefaultThetas is the local weighting ladder swept when profiling state
// dependence. It starts at the global linear fit.
var DefaultThetas = []float64{0.0, 0.1, 0.3, 0.5, 0.75, 1.0, 1.5, 2.0, 3.0, 4.0, 6.0, 8.0}

// Options configure an Explorer sweep.
type Options struct {
	// Embeddings lists the embedding dimensions tried by SimplexSweep.
	Embeddings []int `json:"embeddings"`

	// Thetas lists the local weighting values tried by ThetaSweep.
	Thetas []float64 `json:"thetas"`

	// Tau is the index spacing between embedding vector components.
	Tau int `json:"tau"`

	// Tp is the forecast horizon in index steps.
	Tp int `json:"tp"`

	// ExclusionRadius widens the self match exclusion window around each
	// query index. 0 excludes only the query itself.
	ExclusionRadius int `json:"exclusion_radius"`

	// Draws is the number of random library subsamples per cross map
	// library size.
	Draws int `json:"draws"`

	// Seed fixes cross map subsampling for reproducible curves.
	Seed uint64 `json:"seed"`

	// Parallelization bounds concurrent sweep evaluations. Defaults to the
	// number of candidates.
	Parallelization int `json:"parallelization"`
}

func NewDefaultOptions() *Options {
	embeddings := make([]int, 0, DefaultMaxEmbedding)
	for e := 1; e <= DefaultMaxEmbedding; e++ {
		embeddings = append(embeddings, e)
	}
	thetas := make([]float64, len(DefaultThetas))
	copy(thetas, DefaultThetas)
	return &Options{
		Embeddings:      embeddings,
		Thetas:          thetas,
		Tau:             1,
		Tp:              1,
		ExclusionRadius: 0,
		Draws:           DefaultDraws,
	}
}

// Validate runs basic validation on explorer options
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		o = NewDefaultOptions()
	}
	if len(o.Embeddings) == 0 {
		return nil, fmt.Errorf("no embedding dimensions, %w", projection.ErrInvalidParameter)
	}
	for _, e := range o.Embeddings {
		if e < 1 {
			return nil, fmt.Errorf("got embedding dimension %d, %w", e, projection.ErrInvalidParameter)
		}
	}
	if len(o.Thetas) == 0 {
		return nil, fmt.Errorf("no theta values, %w", projection.ErrInvalidParameter)
	}
	for _, theta := range o.Thetas {
		if theta < 0 {
			return nil, fmt.Errorf("got theta %f, %w", theta, projection.ErrInvalidParameter)
		}
	}
	if o.Tau < 1 {
		return nil, fmt.Errorf("got lag %d, %w", o.Tau, projection.ErrInvalidParameter)
	}
	if o.Tp < 0 {
		return nil, fmt.Errorf("got horizon %d, %w", o.Tp, projection.ErrInvalidParameter)
	}
	if o.ExclusionRadius < 0 {
		return nil, fmt.Errorf("got exclusion radius %d, %w", o.ExclusionRadius, projection.ErrInvalidParameter)
	}
	if o.Draws < 1 {
		return nil, fmt.Errorf("got %d draws, %w", o.Draws, projection.ErrInvalidParameter)
	}
	return o, nil
}

func (o *Options) projectionOptions() *projection.Options {
	return &projection.Options{
		Tau:             o.Tau,
		Tp:              o.Tp,
		ExclusionRadius: o.ExclusionRadius,
	}
}
