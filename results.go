package edm

import (
	"github.com/empdyn/go-edm/projection"
)

// EmbeddingSweepResult holds the per dimension projection results of a
// simplex sweep, ordered by ascending embedding dimension.
type EmbeddingSweepResult struct {
	Embeddings []int                `json:"embeddings"`
	Scores     []float64            `json:"scores"`
	Results    []*projection.Result `json:"-"`
	BestE      int                  `json:"best_e"`
	Best       *projection.Result   `json:"best"`
}

// ThetaSweepResult holds the per theta projection results of a local
// weighting sweep at a fixed embedding dimension.
type ThetaSweepResult struct {
	E         int                  `json:"embedding_dimension"`
	Thetas    []float64            `json:"thetas"`
	Scores    []float64            `json:"scores"`
	Results   []*projection.Result `json:"-"`
	BestTheta float64              `json:"best_theta"`
	Best      *projection.Result   `json:"best"`

	// LinearScore is the skill of the global linear fit at theta 0.
	LinearScore float64 `json:"linear_score"`

	// NonlinearDelta is the skill gain of the best theta over the linear
	// fit. A clearly positive delta indicates state dependent dynamics.
	NonlinearDelta float64 `json:"nonlinear_delta"`
}

// BaselineComparison pairs the best simplex projection with a linear
// autoregressive forecast over the same prediction range.
type BaselineComparison struct {
	Simplex   *projection.Result `json:"simplex"`
	Linear    *projection.Result `json:"linear"`
	LinearLag int                `json:"linear_lag"`

	// SkillGain is the simplex Pearson score minus the autoregressive one.
	SkillGain float64 `json:"skill_gain"`
}
