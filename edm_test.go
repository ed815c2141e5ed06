package edm

import (
	"bytes"
	"os"
	"path/filepath"
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
		"no embeddings":     {&Options{Thetas: []float64{0}, Tau: 1, Tp: 1, Draws: 1}, projection.ErrInvalidParameter},
		"bad embedding":     {&Options{Embeddings: []int{0}, Thetas: []float64{0}, Tau: 1, Tp: 1, Draws: 1}, projection.ErrInvalidParameter},
		"no thetas":         {&Options{Embeddings: []int{2}, Tau: 1, Tp: 1, Draws: 1}, projection.ErrInvalidParameter},
		"negative theta":    {&Options{Embeddings: []int{2}, Thetas: []float64{-1}, Tau: 1, Tp: 1, Draws: 1}, projection.ErrInvalidParameter},
		"bad lag":           {&Options{Embeddings: []int{2}, Thetas: []float64{0}, Tau: 0, Tp: 1, Draws: 1}, projection.ErrInvalidParameter},
		"bad horizon":       {&Options{Embeddings: []int{2}, Thetas: []float64{0}, Tau: 1, Tp: -1, Draws: 1}, projection.ErrInvalidParameter},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			opt, err := td.opt.Validate()
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Len(t, opt.Embeddings, DefaultMaxEmbedding)
			assert.Equal(t, DefaultThetas, opt.Thetas)
		})
	}
}

func TestExplorerSimplexSweepSine(t *testing.T) {
	y := timedataset.GenerateSineY(500, 1.0, 10.0, 0.0)
	lib := projection.Range{Start: 0, End: 400}
	pred := projection.Range{Start: 400, End: 500}

	ex, err := New(nil)
	require.Nil(t, err)

	sweep, err := ex.SimplexSweep(y, lib, pred)
	require.Nil(t, err)
	require.Len(t, sweep.Scores, len(sweep.Embeddings))

	// one dimension cannot separate the two phases of a sinusoid
	assert.GreaterOrEqual(t, sweep.BestE, 2)
	assert.Greater(t, sweep.Best.Scores.Pearson, 0.99)

	for i, e := range sweep.Embeddings {
		if e == 2 {
			assert.Greater(t, sweep.Scores[i], 0.99)
		}
	}
}

func TestExplorerSimplexSweepTieBreak(t *testing.T) {
	// a period four cycle embeds exactly at any dimension of two or more.
	// every neighbor match is at distance zero with an identical target, so
	// the candidate dimensions score identically and the tie must resolve
	// to the smaller one even when the caller lists them descending.
	cycle := []float64{0, 1, 0, -1}
	y := make([]float64, 200)
	for i := range y {
		y[i] = cycle[i%len(cycle)]
	}
	lib := projection.Range{Start: 0, End: 100}
	pred := projection.Range{Start: 100, End: 200}

	ex, err := New(&Options{
		Embeddings: []int{3, 2},
		Thetas:     []float64{0},
		Tau:        1,
		Tp:         1,
		Draws:      1,
	})
	require.Nil(t, err)

	sweep, err := ex.SimplexSweep(y, lib, pred)
	require.Nil(t, err)

	assert.Equal(t, []int{2, 3}, sweep.Embeddings)
	assert.Equal(t, sweep.Scores[0], sweep.Scores[1])
	assert.Equal(t, 2, sweep.BestE)
}

func TestExplorerThetaSweepLogistic(t *testing.T) {
	x, _ := timedataset.GenerateCoupledLogistic(500, &timedataset.CoupledLogisticOptions{
		Rx: 3.8, Ry: 3.5, Bxy: 0.0, Byx: 0.0, X0: 0.4, Y0: 0.2, Burn: 100,
	})
	lib := projection.Range{Start: 0, End: 350}
	pred := projection.Range{Start: 350, End: 500}

	ex, err := New(nil)
	require.Nil(t, err)

	sweep, err := ex.ThetaSweep(x, 2, lib, pred)
	require.Nil(t, err)
	require.Len(t, sweep.Scores, len(sweep.Thetas))

	// chaotic dynamics are state dependent. local weighting must win.
	assert.Greater(t, sweep.BestTheta, 0.0)
	assert.Greater(t, sweep.NonlinearDelta, 0.05)
	assert.Equal(t, sweep.LinearScore, sweep.Scores[0])
	assert.InDelta(t, sweep.Best.Scores.Pearson, sweep.LinearScore+sweep.NonlinearDelta, 1e-12)
}

func TestExplorerCompareBaseline(t *testing.T) {
	x, _ := timedataset.GenerateCoupledLogistic(500, nil)
	lib := projection.Range{Start: 0, End: 350}
	pred := projection.Range{Start: 350, End: 500}

	ex, err := New(nil)
	require.Nil(t, err)

	_, err = ex.CompareBaseline(x, lib, pred)
	assert.ErrorIs(t, err, ErrNoSweep)

	_, err = ex.SimplexSweep(x, lib, pred)
	require.Nil(t, err)

	cmp, err := ex.CompareBaseline(x, lib, pred)
	require.Nil(t, err)

	// the logistic map has almost no linear structure
	assert.Greater(t, cmp.SkillGain, 0.1)
	assert.Greater(t, cmp.Simplex.Scores.Pearson, 0.95)
	assert.GreaterOrEqual(t, cmp.LinearLag, 1)
}

func TestExplorerCrossMap(t *testing.T) {
	x, y := timedataset.GenerateCoupledLogistic(400, nil)

	ex, err := New(&Options{
		Embeddings: []int{2},
		Thetas:     []float64{0},
		Tau:        1,
		Tp:         1,
		Draws:      20,
		Seed:       42,
	})
	require.Nil(t, err)

	res, err := ex.CrossMap(y, x, []int{20, 40, 80, 160, 320}, 2)
	require.Nil(t, err)
	assert.True(t, res.Convergent(0.1))
	assert.Same(t, res, ex.CrossMapResult())
}

func TestExplorerModel(t *testing.T) {
	y := timedataset.GenerateSineY(400, 1.0, 10.0, 0.0)
	lib := projection.Range{Start: 0, End: 300}
	pred := projection.Range{Start: 300, End: 400}

	ex, err := New(nil)
	require.Nil(t, err)

	_, err = ex.Model()
	assert.ErrorIs(t, err, ErrNoSweep)

	sweepE, err := ex.SimplexSweep(y, lib, pred)
	require.Nil(t, err)
	sweepTheta, err := ex.ThetaSweep(y, sweepE.BestE, lib, pred)
	require.Nil(t, err)

	m, err := ex.Model()
	require.Nil(t, err)
	assert.Equal(t, sweepE.BestE, m.BestE)
	assert.Equal(t, sweepTheta.BestTheta, m.BestTheta)

	var buf bytes.Buffer
	require.Nil(t, m.TablePrint(&buf, "", "  "))
	assert.Contains(t, buf.String(), "Best Embedding Dimension")
	assert.Contains(t, buf.String(), "Best Theta")
}

func TestExplorerPlotResults(t *testing.T) {
	y := timedataset.GenerateSineY(300, 1.0, 10.0, 0.0)
	lib := projection.Range{Start: 0, End: 200}
	pred := projection.Range{Start: 200, End: 300}

	ex, err := New(nil)
	require.Nil(t, err)

	assert.ErrorIs(t, ex.PlotResults("unused.html"), ErrNoSweep)

	_, err = ex.SimplexSweep(y, lib, pred)
	require.Nil(t, err)

	path := filepath.Join(t.TempDir(), "report.html")
	require.Nil(t, ex.PlotResults(path))

	info, err := os.Stat(path)
	require.Nil(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
