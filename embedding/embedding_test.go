package embedding

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	testData := map[string]struct {
		y   []float64
		e   int
		tau int
		err error
	}{
		"valid":            {[]float64{1, 2, 3, 4}, 2, 1, nil},
		"dimension one":    {[]float64{1, 2}, 1, 1, nil},
		"zero dimension":   {[]float64{1, 2, 3}, 0, 1, ErrInvalidDimension},
		"zero lag":         {[]float64{1, 2, 3}, 2, 0, ErrInvalidLag},
		"too short":        {[]float64{1}, 1, 1, ErrInsufficientHistory},
		"empty":            {nil, 1, 1, ErrInsufficientHistory},
		"larger than data": {[]float64{1, 2, 3}, 10, 1, nil},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			em, err := New(td.y, td.e, td.tau)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			require.NotNil(t, em)
		})
	}
}

func TestIndicesCount(t *testing.T) {
	// a NaN-free series of length L yields exactly L-(E-1)τ vectors
	testData := map[string]struct {
		l   int
		e   int
		tau int
	}{
		"e1":        {20, 1, 1},
		"e2":        {20, 2, 1},
		"e5":        {20, 5, 1},
		"e3 tau2":   {20, 3, 2},
		"minimal":   {4, 3, 1},
		"full span": {10, 10, 1},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			y := make([]float64, td.l)
			for i := range y {
				y[i] = float64(i)
			}
			em, err := New(y, td.e, td.tau)
			require.Nil(t, err)

			idxs := em.Indices(0, td.l)
			assert.Len(t, idxs, td.l-(td.e-1)*td.tau)
		})
	}
}

func TestVector(t *testing.T) {
	y := []float64{10, 11, 12, 13, 14, 15}
	em, err := New(y, 3, 1)
	require.Nil(t, err)

	dst := make([]float64, 3)

	// lagged values ordered most recent first
	require.True(t, em.Vector(dst, 4))
	assert.Equal(t, []float64{14, 13, 12}, dst)

	// insufficient history
	assert.False(t, em.Vector(dst, 1))
	assert.False(t, em.Vector(dst, 0))
	assert.True(t, em.Vector(dst, 2))

	// out of range
	assert.False(t, em.Vector(dst, 6))
}

func TestVectorWithLag(t *testing.T) {
	y := []float64{0, 1, 2, 3, 4, 5, 6}
	em, err := New(y, 3, 2)
	require.Nil(t, err)

	dst := make([]float64, 3)
	require.True(t, em.Vector(dst, 6))
	assert.Equal(t, []float64{6, 4, 2}, dst)

	assert.False(t, em.Vector(dst, 3))
	assert.True(t, em.Vector(dst, 4))
}

func TestVectorMissing(t *testing.T) {
	y := []float64{1, 2, math.NaN(), 4, 5, 6}
	em, err := New(y, 2, 1)
	require.Nil(t, err)

	dst := make([]float64, 2)

	// any NaN lag makes the vector undefined
	assert.False(t, em.Vector(dst, 2))
	assert.False(t, em.Vector(dst, 3))
	assert.True(t, em.Vector(dst, 4))

	idxs := em.Indices(0, len(y))
	assert.Equal(t, []int{1, 4, 5}, idxs)
}

func TestTarget(t *testing.T) {
	y := []float64{1, 2, 3, math.NaN()}
	em, err := New(y, 1, 1)
	require.Nil(t, err)

	v, ok := em.Target(1, 1)
	require.True(t, ok)
	assert.Equal(t, 3.0, v)

	_, ok = em.Target(2, 1)
	assert.False(t, ok)

	_, ok = em.Target(3, 1)
	assert.False(t, ok)

	_, ok = em.Target(0, 10)
	assert.False(t, ok)

	v, ok = em.Target(2, 0)
	require.True(t, ok)
	assert.Equal(t, 3.0, v)
}
