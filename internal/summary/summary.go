package summary

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"TigerChart/internal/calculator"
	"TigerChart/internal/model"
)

var (
	// ErrInsufficientData is returned when fewer than two rows are available.
	ErrInsufficientData = errors.New("insufficient data: need at least 2 rows for a snapshot")
	// ErrDivisionByZero is returned when the previous close is exactly zero.
	ErrDivisionByZero = errors.New("division by zero: previous close is 0")
)

var hundred = decimal.NewFromInt(100)

// Summarize builds the latest-bar snapshot from a trimmed table.
func Summarize(table *model.EnrichedTable) (*model.Snapshot, error) {
	n := table.Len()
	if n < 2 {
		return nil, fmt.Errorf("%w (got %d)", ErrInsufficientData, n)
	}
	last := table.Bars[n-1]
	prev := table.Bars[n-2]

	latest := decimal.NewFromFloat(last.Close)
	previous := decimal.NewFromFloat(prev.Close)
	if previous.IsZero() {
		return nil, fmt.Errorf("%w on %s", ErrDivisionByZero, prev.Date.Format("2006-01-02"))
	}
	change := latest.Sub(previous)

	high, low, err := calculator.PeriodRange(table.Bars)
	if err != nil {
		return nil, fmt.Errorf("period range: %w", err)
	}

	indicators := make(map[string]*float64, len(table.Order))
	for _, name := range table.Order {
		indicators[name] = table.Value(name, n-1)
	}

	return &model.Snapshot{
		Date:          last.Date,
		LatestClose:   latest,
		PreviousClose: previous,
		ChangeAbs:     change,
		ChangePct:     change.Div(previous).Mul(hundred),
		Indicators:    indicators,
		PeriodHigh:    high,
		PeriodLow:     low,
	}, nil
}
