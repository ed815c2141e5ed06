package projection

import (
	"fmt"

	"github.com/empdyn/go-edm/stats"
)

// Scores tracks the forecast accuracy over the prediction set. Pearson is
// the primary forecast skill measure; RMSE and MAE are the supporting error
// magnitudes. Prediction indices without an observed value are excluded.
type Scores struct {
	Pearson float64 `json:"pearson"`
	RMSE    float64 `json:"rmse"`
	MAE     float64 `json:"mae"`
}

// NewScores calculates the accuracy scores given the predicted and observed
// input slice values
func NewScores(predicted, observed []float64) (*Scores, error) {
	pearson, err := stats.Pearson(predicted, observed)
	if err != nil {
		return nil, fmt.Errorf("unable to compute pearson correlation, %w", err)
	}
	rmse, err := stats.RMSE(predicted, observed)
	if err != nil {
		return nil, fmt.Errorf("unable to compute root mean squared error, %w", err)
	}
	mae, err := stats.MAE(predicted, observed)
	if err != nil {
		return nil, fmt.Errorf("unable to compute mean absolute error, %w", err)
	}

	return &Scores{
		Pearson: pearson,
		RMSE:    rmse,
		MAE:     mae,
	}, nil
}

// Result is the output of a single projection run. Index holds the query
// indices that produced a forecast; Predicted and Observed are aligned with
// Index, with Observed NaN where the target is unknown. Skipped lists the
// prediction indices excluded for lack of history or an underdetermined
// local fit.
type Result struct {
	E     int     `json:"embedding_dimension"`
	Theta float64 `json:"theta"`

	Index     []int     `json:"index"`
	Predicted []float64 `json:"predicted"`
	Observed  []float64 `json:"observed"`
	Skipped   []int     `json:"skipped,omitempty"`

	Scores *Scores `json:"scores"`
}
