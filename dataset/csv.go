package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	ErrNoHeader          = errors.New("csv input has no header row")
	ErrMissingDateColumn = errors.New("date column not found in header")
	ErrNoRows            = errors.New("csv input has no data rows")
)

// ReadCSV parses a headered csv stream into a table. The named date column is
// parsed with the given layout and every other column is read as float64.
// Empty cells and the tokens NA, NaN and null become missing values.
func ReadCSV(r io.Reader, dateCol, layout string) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read csv header, %w", err)
	}

	dateIdx := -1
	for i, name := range header {
		if name == dateCol {
			dateIdx = i
			break
		}
	}
	if dateIdx == -1 {
		return nil, fmt.Errorf("%q, %w", dateCol, ErrMissingDateColumn)
	}

	var dates []time.Time
	values := make([][]float64, len(header))

	row := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("unable to read csv row %d, %w", row, err)
		}
		row++

		d, err := time.Parse(layout, rec[dateIdx])
		if err != nil {
			return nil, fmt.Errorf("row %d, %w", row, err)
		}
		dates = append(dates, d)

		for i, cell := range rec {
			if i == dateIdx {
				continue
			}
			values[i] = append(values[i], parseCell(cell))
		}
	}
	if len(dates) == 0 {
		return nil, ErrNoRows
	}

	tb, err := New(dates)
	if err != nil {
		return nil, err
	}
	for i, name := range header {
		if i == dateIdx {
			continue
		}
		if err := tb.AddColumn(name, values[i]); err != nil {
			return nil, err
		}
	}
	return tb, nil
}

func parseCell(cell string) float64 {
	cell = strings.TrimSpace(cell)
	switch strings.ToLower(cell) {
	case "", "na", "nan", "null":
		return math.NaN()
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
