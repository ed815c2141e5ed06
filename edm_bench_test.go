package edm

import (
	"os"
	"testing"

	"github.com/empdyn/go-edm/projection"
	"github.com/empdyn/go-edm/timedataset"
	"github.com/goccy/go-json"
	"github.com/pkg/profile"
)

var benchSweepRes *EmbeddingSweepResult

func BenchmarkSimplexSweepToModel(b *testing.B) {
	y := timedataset.GenerateSineY(1000, 1.0, 10.0, 0.0)
	lib := projection.Range{Start: 0, End: 800}
	pred := projection.Range{Start: 800, End: 1000}

	var ex *Explorer
	var err error

	b.ResetTimer()
	for b.Loop() {
		ex, err = New(nil)
		if err != nil {
			panic(err)
		}

		benchSweepRes, err = ex.SimplexSweep(y, lib, pred)
		if err != nil {
			panic(err)
		}
	}

	m, err := ex.Model()
	if err != nil {
		panic(err)
	}

	bytes, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		panic(err)
	}

	if err := os.WriteFile("benchmark_model.json", bytes, 0o644); err != nil {
		panic(err)
	}
}

func BenchmarkCrossMap(b *testing.B) {
	x, y := timedataset.GenerateCoupledLogistic(1000, nil)
	libSizes := []int{50, 100, 200, 400, 800}

	ex, err := New(&Options{
		Embeddings: []int{2},
		Thetas:     []float64{0},
		Tau:        1,
		Tp:         1,
		Draws:      50,
		Seed:       42,
	})
	if err != nil {
		panic(err)
	}

	b.ResetTimer()
	defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	for b.Loop() {
		if _, err := ex.CrossMap(y, x, libSizes, 2); err != nil {
			panic(err)
		}
	}
}
