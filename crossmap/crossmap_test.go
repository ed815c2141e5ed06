package crossmap

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/empdyn/go-edm/projection"
	"github.com/empdyn/go-edm/timedataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsValidate(t *testing.T) {
	testData := map[string]struct {
		opt *Options
		err error
	}{
		"nil uses defaults": {nil, nil},
		"zero dimension":    {&Options{E: 0, Tau: 1, Draws: 10}, projection.ErrInvalidParameter},
		"zero lag":          {&Options{E: 2, Tau: 0, Draws: 10}, projection.ErrInvalidParameter},
		"zero draws":        {&Options{E: 2, Tau: 1, Draws: 0}, projection.ErrInvalidParameter},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			opt, err := td.opt.Validate()
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, DefaultE, opt.E)
			assert.Equal(t, DefaultDraws, opt.Draws)
			assert.NotZero(t, opt.Seed)
		})
	}
}

func TestCrossMapValidation(t *testing.T) {
	x, y := timedataset.GenerateCoupledLogistic(100, nil)
	opt := &Options{E: 2, Tau: 1, Draws: 5, Seed: 1}

	testData := map[string]struct {
		source   []float64
		target   []float64
		libSizes []int
		err      error
	}{
		"length mismatch": {x, y[:50], []int{20}, ErrSeriesLenMismatch},
		"no lib sizes":    {x, y, nil, ErrNoLibSizes},
		"lib too large":   {x, y, []int{500}, ErrLibSizeTooLarge},
		"lib too small":   {x, y, []int{3}, ErrLibSizeTooSmall},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			optCopy := *opt
			_, err := CrossMap(td.source, td.target, td.libSizes, &optCopy)
			assert.ErrorIs(t, err, td.err)
		})
	}
}

func TestCrossMapCoupledLogistic(t *testing.T) {
	// y is forced by x, so the reconstruction of y recovers x and the
	// skill converges upward with library size.
	x, y := timedataset.GenerateCoupledLogistic(400, nil)

	libSizes := []int{20, 40, 80, 160, 320}
	res, err := CrossMap(y, x, libSizes, &Options{
		E:     2,
		Tau:   1,
		Draws: 50,
		Seed:  42,
	})
	require.Nil(t, err)
	require.Len(t, res.Scores, len(libSizes))

	// strong skill at the largest library
	last := res.Scores[len(res.Scores)-1]
	assert.Greater(t, last, 0.7)

	// non-decreasing trend within sampling tolerance
	for i := 1; i < len(res.Scores); i++ {
		assert.Greater(t, res.Scores[i], res.Scores[i-1]-0.05)
	}
	assert.True(t, res.Convergent(0.1))

	// bounds bracket the mean
	for i := range res.Scores {
		assert.LessOrEqual(t, res.Lower[i], res.Scores[i])
		assert.GreaterOrEqual(t, res.Upper[i], res.Scores[i])
	}
}

func TestCrossMapWhiteNoise(t *testing.T) {
	// independent noise shows neither skill nor convergence
	rnd := rand.New(rand.NewPCG(3, 5))
	n := 400
	a := timedataset.GenerateNoiseY(n, 1.0, rnd)
	b := timedataset.GenerateNoiseY(n, 1.0, rnd)

	libSizes := []int{20, 80, 160, 320}
	res, err := CrossMap(a, b, libSizes, &Options{
		E:     3,
		Tau:   1,
		Draws: 50,
		Seed:  42,
	})
	require.Nil(t, err)

	for i := range res.Scores {
		assert.Less(t, math.Abs(res.Scores[i]), 0.25)
	}
	assert.False(t, res.Convergent(0.2))
}

func TestCrossMapReproducible(t *testing.T) {
	x, y := timedataset.GenerateCoupledLogistic(200, nil)

	opt1 := &Options{E: 2, Tau: 1, Draws: 10, Seed: 99}
	opt2 := &Options{E: 2, Tau: 1, Draws: 10, Seed: 99}

	res1, err := CrossMap(y, x, []int{50, 100}, opt1)
	require.Nil(t, err)
	res2, err := CrossMap(y, x, []int{50, 100}, opt2)
	require.Nil(t, err)

	assert.Equal(t, res1.Scores, res2.Scores)
	assert.Equal(t, res1.StdDevs, res2.StdDevs)
}
