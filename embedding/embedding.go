// Package embedding reconstructs lagged state-space vectors from a scalar
// time series. The lag unit is index position; calendar spacing is handled
// upstream by the ingestion layer.
package embedding

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInsufficientHistory = errors.New("series too short to embed")
	ErrInvalidDimension    = errors.New("embedding dimension must be at least 1")
	ErrInvalidLag          = errors.New("lag must be at least 1")
)

// Embedding provides lagged coordinate vectors over a series. A vector at
// time t is (x[t], x[t-τ], …, x[t-(E-1)τ]) and is only defined when all of
// its lags exist and none are missing.
type Embedding struct {
	E   int
	Tau int

	series []float64
}

// New constructs an embedding over the input series. The series must be long
// enough to support at least one vector at dimension 1, otherwise
// ErrInsufficientHistory is returned. Individual indices without enough
// history are simply unembeddable, not errors.
func New(y []float64, e, tau int) (*Embedding, error) {
	if e < 1 {
		return nil, fmt.Errorf("got embedding dimension %d, %w", e, ErrInvalidDimension)
	}
	if tau < 1 {
		return nil, fmt.Errorf("got lag %d, %w", tau, ErrInvalidLag)
	}
	if len(y) < 2 {
		return nil, fmt.Errorf("series has %d points, %w", len(y), ErrInsufficientHistory)
	}

	series := make([]float64, len(y))
	copy(series, y)
	return &Embedding{
		E:      e,
		Tau:    tau,
		series: series,
	}, nil
}

// Len returns the length of the underlying series.
func (em *Embedding) Len() int {
	return len(em.series)
}

// At returns the series value at index t.
func (em *Embedding) At(t int) float64 {
	return em.series[t]
}

// Vector writes the embedding vector at time t into dst and reports whether
// the vector is defined. dst must have length E. The vector is undefined when
// t lacks (E-1)·τ prior observations or any lag is missing.
func (em *Embedding) Vector(dst []float64, t int) bool {
	if t < (em.E-1)*em.Tau || t >= len(em.series) {
		return false
	}
	for i := 0; i < em.E; i++ {
		v := em.series[t-i*em.Tau]
		if math.IsNaN(v) {
			return false
		}
		dst[i] = v
	}
	return true
}

// Embeddable reports whether the vector at time t is defined.
func (em *Embedding) Embeddable(t int) bool {
	tmp := make([]float64, em.E)
	return em.Vector(tmp, t)
}

// Indices returns every time index in [start, end) with a defined embedding
// vector. Negative start is clamped to 0 and end is clamped to the series
// length.
func (em *Embedding) Indices(start, end int) []int {
	if start < 0 {
		start = 0
	}
	if end > len(em.series) {
		end = len(em.series)
	}

	var idxs []int
	tmp := make([]float64, em.E)
	for t := start; t < end; t++ {
		if em.Vector(tmp, t) {
			idxs = append(idxs, t)
		}
	}
	return idxs
}

// Target returns the value tp steps ahead of t and whether it exists and is
// observed.
func (em *Embedding) Target(t, tp int) (float64, bool) {
	ti := t + tp
	if ti < 0 || ti >= len(em.series) {
		return 0, false
	}
	v := em.series[ti]
	if math.IsNaN(v) {
		return 0, false
	}
	return v, true
}
