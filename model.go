package edm

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/empdyn/go-edm/crossmap"
	"github.com/empdyn/go-edm/projection"
)

// Model represents a serializeable summary of an exploration storing the
// options, the selected embedding and weighting, and the resulting scores
type Model struct {
	Options *Options `json:"options"`

	BestE  int                `json:"best_e"`
	Scores *projection.Scores `json:"scores"`

	BestTheta      float64 `json:"best_theta"`
	NonlinearDelta float64 `json:"nonlinear_delta"`

	Baseline  *projection.Scores `json:"baseline,omitempty"`
	SkillGain float64            `json:"skill_gain,omitempty"`

	CrossMap *crossmap.Result `json:"cross_map,omitempty"`
}

// Model summarizes the sweeps run so far. SimplexSweep must have run at
// least once.
func (ex *Explorer) Model() (Model, error) {
	if ex.sweepE == nil {
		return Model{}, ErrNoSweep
	}

	m := Model{
		Options:  ex.opt,
		BestE:    ex.sweepE.BestE,
		Scores:   ex.sweepE.Best.Scores,
		CrossMap: ex.crossMap,
	}
	if ex.sweepTheta != nil {
		m.BestTheta = ex.sweepTheta.BestTheta
		m.NonlinearDelta = ex.sweepTheta.NonlinearDelta
	}
	if ex.comparison != nil {
		m.Baseline = ex.comparison.Linear.Scores
		m.SkillGain = ex.comparison.SkillGain
	}
	return m, nil
}

func indentExpand(indent string, growth int) string {
	return strings.Repeat(indent, growth+1)
}

func (m Model) TablePrint(w io.Writer, prefix, indent string) error {
	if _, err := fmt.Fprintf(w, "%sExploration:\n", prefix); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "%s%sBest Embedding Dimension: %d\n", prefix, indentExpand(indent, 0), m.BestE); err != nil {
		return err
	}
	if m.Scores != nil {
		if _, err := fmt.Fprintf(w, "%s%sPearson: %.3f    RMSE: %.3f    MAE: %.3f\n",
			prefix, indentExpand(indent, 0),
			m.Scores.Pearson,
			m.Scores.RMSE,
			m.Scores.MAE,
		); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "%s%sBest Theta: %.3f    Nonlinear Delta: %.3f\n",
		prefix, indentExpand(indent, 0), m.BestTheta, m.NonlinearDelta); err != nil {
		return err
	}

	if m.Baseline != nil {
		if _, err := fmt.Fprintf(w, "%s%sBaseline Pearson: %.3f    Skill Gain: %.3f\n",
			prefix, indentExpand(indent, 0), m.Baseline.Pearson, m.SkillGain); err != nil {
			return err
		}
	}

	if m.CrossMap == nil {
		return nil
	}

	if _, err := fmt.Fprintf(w, "%s%sCross Map:\n", prefix, indentExpand(indent, 0)); err != nil {
		return err
	}
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintf(tbl, "%s%sLibSize\tScore\tStdDev\t\n", prefix, indentExpand(indent, 1)); err != nil {
		return err
	}
	for i, size := range m.CrossMap.LibSizes {
		if _, err := fmt.Fprintf(tbl, "%s%s%d\t%.3f\t%.3f\t\n",
			prefix, indentExpand(indent, 1),
			size, m.CrossMap.Scores[i], m.CrossMap.StdDevs[i]); err != nil {
			return err
		}
	}
	return tbl.Flush()
}
