package model

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Indicator column names.
const (
	ColumnMA  = "ma"
	ColumnRSI = "rsi"
	ColumnRMI = "rmi"
)

// EnrichedTable joins a price series with indicator columns over the same date index.
// A NaN column value means the indicator is undefined at that row.
type EnrichedTable struct {
	Symbol  string
	Bars    []Bar
	Columns map[string][]float64
	Order   []string
}

// NewEnrichedTable creates a table with no indicator columns.
func NewEnrichedTable(series PriceSeries) *EnrichedTable {
	return &EnrichedTable{
		Symbol:  series.Symbol,
		Bars:    series.Bars,
		Columns: make(map[string][]float64),
	}
}

// Len returns the number of rows.
func (t *EnrichedTable) Len() int { return len(t.Bars) }

// AddColumn attaches an indicator column. It must have one value per bar.
func (t *EnrichedTable) AddColumn(name string, values []float64) error {
	if len(values) != len(t.Bars) {
		return fmt.Errorf("column %q has %d values, table has %d rows", name, len(values), len(t.Bars))
	}
	if _, ok := t.Columns[name]; !ok {
		t.Order = append(t.Order, name)
	}
	t.Columns[name] = values
	return nil
}

// SliceFrom returns a table holding rows [n:], sliced identically across all columns.
func (t *EnrichedTable) SliceFrom(n int) *EnrichedTable {
	if n < 0 {
		n = 0
	}
	if n > len(t.Bars) {
		n = len(t.Bars)
	}
	out := &EnrichedTable{
		Symbol:  t.Symbol,
		Bars:    t.Bars[n:],
		Columns: make(map[string][]float64, len(t.Columns)),
		Order:   append([]string(nil), t.Order...),
	}
	for name, values := range t.Columns {
		out.Columns[name] = values[n:]
	}
	return out
}

// Value returns the named column value at row i, or nil when undefined or missing.
func (t *EnrichedTable) Value(name string, i int) *float64 {
	values, ok := t.Columns[name]
	if !ok || i < 0 || i >= len(values) {
		return nil
	}
	return optional(values[i])
}

// Row is a JSON-friendly view of one table row.
type Row struct {
	Bar
	Indicators map[string]*float64 `json:"indicators"`
}

// Rows materializes the table as rows.
func (t *EnrichedTable) Rows() []Row {
	rows := make([]Row, len(t.Bars))
	for i, b := range t.Bars {
		ind := make(map[string]*float64, len(t.Order))
		for _, name := range t.Order {
			ind[name] = t.Value(name, i)
		}
		rows[i] = Row{Bar: b, Indicators: ind}
	}
	return rows
}

func optional(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Snapshot is the latest-bar summary shown next to the chart.
type Snapshot struct {
	Date          time.Time           `json:"date"`
	LatestClose   decimal.Decimal     `json:"latest_close"`
	PreviousClose decimal.Decimal     `json:"previous_close"`
	ChangeAbs     decimal.Decimal     `json:"change_abs"`
	ChangePct     decimal.Decimal     `json:"change_pct"`
	Indicators    map[string]*float64 `json:"indicators"`
	PeriodHigh    float64             `json:"period_high"`
	PeriodLow     float64             `json:"period_low"`
}
