// Package stats provides the NaN-aware accuracy metrics and outlier
// detection shared by the projection, crossmap, and dataset packages.
package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

var ErrResLenMismatch = errors.New("predicted and actual have different lengths")

// Pearson computes the Pearson correlation coefficient between the predicted
// and actual values. Pairs where either side is NaN are skipped. Returns 0
// when fewer than two valid pairs remain or when either side has zero
// variance.
func Pearson(predicted, actual []float64) (float64, error) {
	predictedCopy, actualCopy, err := dropNaNPairs(predicted, actual)
	if err != nil {
		return 0, err
	}
	if len(predictedCopy) < 2 {
		return 0, nil
	}
	r := stat.Correlation(predictedCopy, actualCopy, nil)
	if math.IsNaN(r) {
		return 0, nil
	}
	return r, nil
}

// RMSE computes the root mean squared error between the predicted and actual
// values skipping pairs where either side is NaN. A score of 0 means a
// perfect match with no errors.
func RMSE(predicted, actual []float64) (float64, error) {
	predictedCopy, actualCopy, err := dropNaNPairs(predicted, actual)
	if err != nil {
		return 0, err
	}
	if len(predictedCopy) == 0 {
		return 0, nil
	}

	mse := 0.0
	for i := 0; i < len(actualCopy); i++ {
		mse += math.Pow(actualCopy[i]-predictedCopy[i], 2.0)
	}
	mse /= float64(len(actualCopy))
	return math.Sqrt(mse), nil
}

// MAE computes the mean absolute error between the predicted and actual
// values skipping pairs where either side is NaN.
func MAE(predicted, actual []float64) (float64, error) {
	predictedCopy, actualCopy, err := dropNaNPairs(predicted, actual)
	if err != nil {
		return 0, err
	}
	if len(predictedCopy) == 0 {
		return 0, nil
	}

	mae := 0.0
	for i := 0; i < len(actualCopy); i++ {
		mae += math.Abs(actualCopy[i] - predictedCopy[i])
	}
	mae /= float64(len(actualCopy))
	return mae, nil
}

func dropNaNPairs(predicted, actual []float64) ([]float64, []float64, error) {
	if len(predicted) != len(actual) {
		return nil, nil, fmt.Errorf("expected %d, but got %d, %w", len(actual), len(predicted), ErrResLenMismatch)
	}
	predictedCopy := make([]float64, 0, len(predicted))
	actualCopy := make([]float64, 0, len(actual))
	for i := 0; i < len(predicted); i++ {
		if math.IsNaN(actual[i]) || math.IsNaN(predicted[i]) {
			continue
		}
		predictedCopy = append(predictedCopy, predicted[i])
		actualCopy = append(actualCopy, actual[i])
	}
	return predictedCopy, actualCopy, nil
}

// DetectOutliers locates values outside the Tukey fences derived from the
// input percentile window. NaN values are never flagged.
func DetectOutliers(y []float64, lowerPerc, upperPerc, tukeyFactor float64) []int {
	lowerPerc = math.Max(lowerPerc, 0.0)
	upperPerc = math.Min(upperPerc, 1.0)
	tukeyFactor = math.Max(tukeyFactor, 0.0)

	yCopy := make([]float64, 0, len(y))
	for _, val := range y {
		if math.IsNaN(val) {
			continue
		}
		yCopy = append(yCopy, val)
	}
	if len(yCopy) == 0 {
		return nil
	}
	sort.Float64s(yCopy)
	lowerIdx := int(math.Floor(float64(len(yCopy)) * lowerPerc))
	upperIdx := int(math.Ceil(float64(len(yCopy)) * upperPerc))
	if upperIdx >= len(yCopy) {
		upperIdx = len(yCopy) - 1
	}

	lower := yCopy[lowerIdx]
	upper := yCopy[upperIdx]
	innerRange := upper - lower
	lower -= innerRange * tukeyFactor
	upper += innerRange * tukeyFactor

	var outlierIdx []int
	for i := 0; i < len(y); i++ {
		if math.IsNaN(y[i]) {
			continue
		}
		if y[i] >= upper || y[i] <= lower {
			outlierIdx = append(outlierIdx, i)
		}
	}
	return outlierIdx
}
