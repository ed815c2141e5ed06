package timedataset

import (
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/floats"
)

// GenerateT creates n time points spaced by interval ending at the time
// returned by nowFunc, truncated to the minute.
func GenerateT(n int, interval time.Duration, nowFunc func() time.Time) []time.Time {
	t := make([]time.Time, 0, n)
	ct := time.Unix(nowFunc().Unix()/60*60, 0).Add(-time.Duration(n) * interval)
	for i := 0; i < n; i++ {
		t = append(t, ct.Add(interval*time.Duration(i)))
	}
	return t
}

type Series []float64

func (s Series) Add(src Series) Series {
	floats.Add(s, src)
	return s
}

// Scale multiplies every value by the input factor.
func (s Series) Scale(factor float64) Series {
	floats.Scale(factor, s)
	return s
}

// AddConst shifts every value by the input offset.
func (s Series) AddConst(offset float64) Series {
	floats.AddConst(offset, s)
	return s
}

// MaskIndex marks the given index positions as missing.
func (s Series) MaskIndex(idxs ...int) Series {
	for _, idx := range idxs {
		if idx >= 0 && idx < len(s) {
			s[idx] = math.NaN()
		}
	}
	return s
}

func GenerateConstY(n int, val float64) Series {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, val)
	}
	return Series(y)
}

// GenerateSineY produces amp*sin(i/period + phase) over n integer steps.
func GenerateSineY(n int, amp, period, phase float64) Series {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, amp*math.Sin(float64(i)/period+phase))
	}
	return Series(y)
}

// GenerateNoiseY produces gaussian noise with the given scale from the
// supplied source. A nil source falls back to the shared global source.
func GenerateNoiseY(n int, scale float64, rnd *rand.Rand) Series {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if rnd != nil {
			y = append(y, rnd.NormFloat64()*scale)
		} else {
			y = append(y, rand.NormFloat64()*scale)
		}
	}
	return Series(y)
}

// CoupledLogisticOptions parameterizes a pair of coupled logistic maps,
//
//	x[t+1] = x[t] * (Rx - Rx*x[t] - Bxy*y[t])
//	y[t+1] = y[t] * (Ry - Ry*y[t] - Byx*x[t])
//
// where Byx is the forcing strength of x onto y and Bxy the reverse. The
// pair is the standard synthetic benchmark for cross-map convergence.
type CoupledLogisticOptions struct {
	Rx, Ry   float64
	Bxy, Byx float64
	X0, Y0   float64
	Burn     int
}

func NewDefaultCoupledLogisticOptions() *CoupledLogisticOptions {
	return &CoupledLogisticOptions{
		Rx:   3.8,
		Ry:   3.5,
		Bxy:  0.02,
		Byx:  0.1,
		X0:   0.4,
		Y0:   0.2,
		Burn: 100,
	}
}

// GenerateCoupledLogistic iterates the coupled pair for n steps after the
// burn-in period and returns both series.
func GenerateCoupledLogistic(n int, opt *CoupledLogisticOptions) (Series, Series) {
	if opt == nil {
		opt = NewDefaultCoupledLogisticOptions()
	}

	x := make([]float64, 0, n)
	y := make([]float64, 0, n)

	xc, yc := opt.X0, opt.Y0
	for i := 0; i < opt.Burn+n; i++ {
		if i >= opt.Burn {
			x = append(x, xc)
			y = append(y, yc)
		}
		xn := xc * (opt.Rx - opt.Rx*xc - opt.Bxy*yc)
		yn := yc * (opt.Ry - opt.Ry*yc - opt.Byx*xc)
		xc, yc = xn, yn
	}
	return Series(x), Series(y)
}
