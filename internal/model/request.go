package model

import (
	"fmt"
	"strings"
	"time"
)

// DefaultPeriod is used when a request does not name one.
const DefaultPeriod = "3mo"

// periodDays maps the selectable chart periods to calendar days.
var periodDays = map[string]int{
	"1mo": 30,
	"3mo": 90,
	"6mo": 180,
	"1y":  365,
}

// PeriodDays returns the calendar-day span of a period label.
func PeriodDays(period string) (int, error) {
	if period == "" {
		period = DefaultPeriod
	}
	days, ok := periodDays[strings.ToLower(period)]
	if !ok {
		return 0, fmt.Errorf("unknown period %q (want 1mo, 3mo, 6mo or 1y)", period)
	}
	return days, nil
}

// ChartRequest identifies the user-visible window of one chart.
type ChartRequest struct {
	Symbol string
	Start  time.Time
	End    time.Time
}

// NewChartRequest builds a request ending at now and spanning the given period.
func NewChartRequest(symbol, period string, now time.Time) (ChartRequest, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return ChartRequest{}, fmt.Errorf("symbol is required")
	}
	days, err := PeriodDays(period)
	if err != nil {
		return ChartRequest{}, err
	}
	return ChartRequest{
		Symbol: symbol,
		Start:  now.AddDate(0, 0, -days),
		End:    now,
	}, nil
}

// ChartResult is the output handed to the presentation layer.
type ChartResult struct {
	RequestID string         `json:"request_id"`
	Symbol    string         `json:"symbol"`
	Rows      []Row          `json:"rows"`
	Snapshot  *Snapshot      `json:"snapshot"`
	Table     *EnrichedTable `json:"-"`
}
