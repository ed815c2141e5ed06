// Package crossmap implements convergent cross mapping: testing whether the
// state-space reconstruction of one series can recover the contemporaneous
// values of another, and how that skill responds to library size. The package
// produces the skill curve only; directional interpretation belongs to the
// consumer.
package crossmap

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/empdyn/go-edm/embedding"
	"github.com/empdyn/go-edm/projection"
	"github.com/empdyn/go-edm/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrSeriesLenMismatch = errors.New("series have different lengths")
	ErrNoLibSizes        = errors.New("no library sizes provided")
	ErrLibSizeTooLarge   = errors.New("library size exceeds available embedded points")
	ErrLibSizeTooSmall   = errors.New("library size does not support a neighbor search")
	ErrNoDraws           = errors.New("no successful cross map draws")
)

const (
	DefaultDraws = 100
	DefaultE     = 2
)

// Options control the cross mapping run.
type Options struct {
	// E is the embedding dimension applied to the source series.
	E int

	// Tau is the index spacing between embedding vector components.
	Tau int

	// Draws is the number of random library subsamples evaluated per
	// library size.
	Draws int

	// ExclusionRadius excludes library points within the given index
	// distance of the query. 0 excludes only the query itself.
	ExclusionRadius int

	// Seed fixes the subsampling sequence for reproducible curves. A zero
	// seed draws a fresh one from the shared source.
	Seed uint64

	// Parallelization bounds how many draws run concurrently. Defaults to
	// the number of draws.
	Parallelization int
}

func NewDefaultOptions() *Options {
	return &Options{
		E:               DefaultE,
		Tau:             1,
		Draws:           DefaultDraws,
		ExclusionRadius: 0,
	}
}

// Validate runs basic validation on cross map options
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		o = NewDefaultOptions()
	}
	if o.E < 1 {
		return nil, fmt.Errorf("got embedding dimension %d, %w", o.E, projection.ErrInvalidParameter)
	}
	if o.Tau < 1 {
		return nil, fmt.Errorf("got lag %d, %w", o.Tau, projection.ErrInvalidParameter)
	}
	if o.Draws < 1 {
		return nil, fmt.Errorf("got %d draws, %w", o.Draws, projection.ErrInvalidParameter)
	}
	if o.ExclusionRadius < 0 {
		return nil, fmt.Errorf("got exclusion radius %d, %w", o.ExclusionRadius, projection.ErrInvalidParameter)
	}
	if o.Seed == 0 {
		o.Seed = rand.Uint64()
	}
	if o.Parallelization <= 0 || o.Parallelization > o.Draws {
		o.Parallelization = o.Draws
	}
	return o, nil
}

// Result is the cross map skill curve: per library size, the mean Pearson
// score across draws with its dispersion and ±1.96σ bounds.
type Result struct {
	E        int       `json:"embedding_dimension"`
	LibSizes []int     `json:"lib_sizes"`
	Scores   []float64 `json:"scores"`
	StdDevs  []float64 `json:"std_devs"`
	Lower    []float64 `json:"lower"`
	Upper    []float64 `json:"upper"`
}

// Convergent reports whether the curve shows the convergence signature: the
// final mean score improves on the first by more than the given margin.
func (r *Result) Convergent(margin float64) bool {
	if len(r.Scores) < 2 {
		return false
	}
	return r.Scores[len(r.Scores)-1]-r.Scores[0] > margin
}

// CrossMap embeds the source series and, for each library size, repeatedly
// samples that many embedded points, locates the E+1 nearest neighbors of
// every embedded query among the sample, and maps the neighbor weights onto
// the target series' contemporaneous values. The per-size score is the mean
// Pearson correlation between mapped and actual target values across draws.
func CrossMap(source, target []float64, libSizes []int, opt *Options) (*Result, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	if len(source) != len(target) {
		return nil, fmt.Errorf("source has %d points and target has %d, %w", len(source), len(target), ErrSeriesLenMismatch)
	}
	if len(libSizes) == 0 {
		return nil, ErrNoLibSizes
	}

	em, err := embedding.New(source, opt.E, opt.Tau)
	if err != nil {
		return nil, err
	}

	// embedded indices with an observed contemporaneous target value
	pool := make([]int, 0, len(source))
	vec := make([]float64, opt.E)
	for t := 0; t < len(source); t++ {
		if !em.Vector(vec, t) {
			continue
		}
		if math.IsNaN(target[t]) {
			continue
		}
		pool = append(pool, t)
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("no embeddable points with observed targets, %w", projection.ErrEmptyRange)
	}

	sizes := make([]int, len(libSizes))
	copy(sizes, libSizes)
	sort.Ints(sizes)
	for _, size := range sizes {
		if size <= opt.E+1 {
			return nil, fmt.Errorf("library size %d with embedding dimension %d, %w", size, opt.E, ErrLibSizeTooSmall)
		}
		if size > len(pool) {
			return nil, fmt.Errorf("library size %d with %d available points, %w", size, len(pool), ErrLibSizeTooLarge)
		}
	}

	res := &Result{
		E:        opt.E,
		LibSizes: sizes,
		Scores:   make([]float64, len(sizes)),
		StdDevs:  make([]float64, len(sizes)),
		Lower:    make([]float64, len(sizes)),
		Upper:    make([]float64, len(sizes)),
	}

	for i, size := range sizes {
		mean, stddev, err := crossMapSize(em, target, pool, size, i, opt)
		if err != nil {
			return nil, fmt.Errorf("library size %d, %w", size, err)
		}
		res.Scores[i] = mean
		res.StdDevs[i] = stddev
		res.Lower[i] = mean - 1.96*stddev
		res.Upper[i] = mean + 1.96*stddev
	}
	return res, nil
}

// crossMapSize runs all draws for one library size. Draws are independent and
// write to private slots so no locking is needed.
func crossMapSize(em *embedding.Embedding, target []float64, pool []int, size, sizeOrd int, opt *Options) (float64, float64, error) {
	scores := make([]float64, opt.Draws)
	valid := make([]bool, opt.Draws)

	sem := make(chan struct{}, opt.Parallelization)
	var wg sync.WaitGroup
	for draw := 0; draw < opt.Draws; draw++ {
		sem <- struct{}{}
		wg.Add(1)

		go func(draw int) {
			defer func() {
				wg.Done()
				<-sem
			}()

			rnd := rand.New(rand.NewPCG(opt.Seed, uint64(sizeOrd)<<32|uint64(draw)))
			score, err := crossMapDraw(em, target, pool, size, rnd, opt)
			if err != nil {
				slog.Error("unable to run cross map draw",
					"lib_size", size,
					"draw", draw,
					"error", err.Error(),
				)
				return
			}
			scores[draw] = score
			valid[draw] = true
		}(draw)
	}
	wg.Wait()

	kept := make([]float64, 0, opt.Draws)
	for i, ok := range valid {
		if ok {
			kept = append(kept, scores[i])
		}
	}
	if len(kept) == 0 {
		return 0, 0, ErrNoDraws
	}
	mean, stddev := stat.MeanStdDev(kept, nil)
	if math.IsNaN(stddev) {
		stddev = 0
	}
	return mean, stddev, nil
}

// crossMapDraw samples a library subset and maps every pooled query onto the
// target series through its neighbors in the sample.
func crossMapDraw(em *embedding.Embedding, target []float64, pool []int, size int, rnd *rand.Rand, opt *Options) (float64, error) {
	perm := rnd.Perm(len(pool))
	libIdx := make([]int, size)
	for i := 0; i < size; i++ {
		libIdx[i] = pool[perm[i]]
	}
	sort.Ints(libIdx)

	libVecs := make([][]float64, size)
	vec := make([]float64, opt.E)
	for i, idx := range libIdx {
		v := make([]float64, opt.E)
		em.Vector(v, idx)
		libVecs[i] = v
	}

	k := opt.E + 1
	predicted := make([]float64, 0, len(pool))
	observed := make([]float64, 0, len(pool))

	type neighbor struct {
		ord  int
		dist float64
	}
	nbrs := make([]neighbor, 0, size)

	for _, t := range pool {
		if !em.Vector(vec, t) {
			continue
		}

		nbrs = nbrs[:0]
		for i, idx := range libIdx {
			d := idx - t
			if d < 0 {
				d = -d
			}
			if d <= opt.ExclusionRadius {
				continue
			}
			nbrs = append(nbrs, neighbor{ord: i, dist: floats.Distance(libVecs[i], vec, 2)})
		}
		if len(nbrs) < k {
			continue
		}
		sort.Slice(nbrs, func(i, j int) bool {
			if nbrs[i].dist == nbrs[j].dist {
				return nbrs[i].ord < nbrs[j].ord
			}
			return nbrs[i].dist < nbrs[j].dist
		})
		nbrs = nbrs[:k]

		dbar := 0.0
		for _, nbr := range nbrs {
			dbar += nbr.dist
		}
		dbar /= float64(k)

		wsum := 0.0
		val := 0.0
		for _, nbr := range nbrs {
			w := 1.0
			if dbar > 0 {
				w = math.Exp(-nbr.dist / dbar)
			}
			wsum += w
			val += w * target[libIdx[nbr.ord]]
		}

		predicted = append(predicted, val/wsum)
		observed = append(observed, target[t])
	}

	if len(predicted) < 2 {
		return 0, fmt.Errorf("only %d mappable queries, %w", len(predicted), projection.ErrEmptyRange)
	}
	return stats.Pearson(predicted, observed)
}
