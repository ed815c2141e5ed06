// Package dataset loads and prepares observational tables before analysis.
// A table holds one date column and any number of float columns where NaN
// marks a missing observation.
package dataset

import (
	"errors"
	"fmt"
	"time"

	"github.com/empdyn/go-edm/stats"
	"github.com/empdyn/go-edm/timedataset"
	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

var (
	ErrUnknownColumn  = errors.New("unknown column")
	ErrDuplicateDate  = errors.New("duplicate date")
	ErrNonMonotonic   = errors.New("dates are not in increasing order")
	ErrColLenMismatch = errors.New("column length does not match dates")
)

// Table is a set of named series sharing one date axis.
type Table struct {
	dates []time.Time
	names []string
	cols  map[string][]float64
}

// New builds a table from a date axis. Dates must be strictly increasing.
func New(dates []time.Time) (*Table, error) {
	for i := 1; i < len(dates); i++ {
		if dates[i].Equal(dates[i-1]) {
			return nil, fmt.Errorf("%s at row %d, %w", dates[i].Format(time.RFC3339), i, ErrDuplicateDate)
		}
		if dates[i].Before(dates[i-1]) {
			return nil, fmt.Errorf("%s at row %d, %w", dates[i].Format(time.RFC3339), i, ErrNonMonotonic)
		}
	}
	d := make([]time.Time, len(dates))
	copy(d, dates)
	return &Table{
		dates: d,
		cols:  make(map[string][]float64),
	}, nil
}

// AddColumn attaches a series to the table, replacing any column with the
// same name. The values slice is copied.
func (tb *Table) AddColumn(name string, values []float64) error {
	if len(values) != len(tb.dates) {
		return fmt.Errorf("column %q has %d values for %d dates, %w", name, len(values), len(tb.dates), ErrColLenMismatch)
	}
	if _, ok := tb.cols[name]; !ok {
		tb.names = append(tb.names, name)
	}
	col := make([]float64, len(values))
	copy(col, values)
	tb.cols[name] = col
	return nil
}

// Len returns the number of rows.
func (tb *Table) Len() int {
	return len(tb.dates)
}

// Names returns the column names in insertion order.
func (tb *Table) Names() []string {
	names := make([]string, len(tb.names))
	copy(names, tb.names)
	return names
}

// Dates returns a copy of the date axis.
func (tb *Table) Dates() []time.Time {
	d := make([]time.Time, len(tb.dates))
	copy(d, tb.dates)
	return d
}

// Column returns a copy of the named series.
func (tb *Table) Column(name string) ([]float64, error) {
	col, ok := tb.cols[name]
	if !ok {
		return nil, fmt.Errorf("%q, %w", name, ErrUnknownColumn)
	}
	out := make([]float64, len(col))
	copy(out, col)
	return out, nil
}

// Series pairs the named column with the date axis.
func (tb *Table) Series(name string) (*timedataset.TimeDataset, error) {
	col, err := tb.Column(name)
	if err != nil {
		return nil, err
	}
	return timedataset.NewUnivariateDataset(tb.dates, col)
}

// MaskOutliers replaces Tukey fence outliers in the named column with NaN
// and returns how many points were masked.
func (tb *Table) MaskOutliers(name string, lowerPerc, upperPerc, tukeyFactor float64) (int, error) {
	col, ok := tb.cols[name]
	if !ok {
		return 0, fmt.Errorf("%q, %w", name, ErrUnknownColumn)
	}
	outliers := stats.DetectOutliers(col, lowerPerc, upperPerc, tukeyFactor)
	timedataset.Series(col).MaskIndex(outliers...)
	return len(outliers), nil
}

// USBusinessCalendar returns a workday calendar observing United States
// federal holidays.
func USBusinessCalendar() *cal.BusinessCalendar {
	c := cal.NewBusinessCalendar()
	c.AddHoliday(us.Holidays...)
	return c
}

// FilterWorkdays returns a new table keeping only rows whose date falls on a
// workday of the given calendar.
func (tb *Table) FilterWorkdays(c *cal.BusinessCalendar) *Table {
	keep := make([]int, 0, len(tb.dates))
	for i, d := range tb.dates {
		if c.IsWorkday(d) {
			keep = append(keep, i)
		}
	}

	out := &Table{
		dates: make([]time.Time, len(keep)),
		names: make([]string, len(tb.names)),
		cols:  make(map[string][]float64, len(tb.cols)),
	}
	copy(out.names, tb.names)
	for i, idx := range keep {
		out.dates[i] = tb.dates[idx]
	}
	for name, col := range tb.cols {
		filtered := make([]float64, len(keep))
		for i, idx := range keep {
			filtered[i] = col[idx]
		}
		out.cols[name] = filtered
	}
	return out
}
