package collector

import (
	"context"
	"errors"
	"time"

	"TigerChart/internal/model"
)

var (
	// ErrDataUnavailable means the data source does not know the instrument.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrEmptyRange means the instrument exists but has no bars in the range.
	ErrEmptyRange = errors.New("no bars in range")
)

// Fetcher defines the interface for fetching daily price history.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) (model.PriceSeries, error)
	Name() string
}

// InstrumentLister supplies the selectable instrument list.
type InstrumentLister interface {
	ListInstruments(ctx context.Context) ([]model.Instrument, error)
}

// StaticLister serves a fixed instrument list, typically from configuration.
type StaticLister []model.Instrument

func (s StaticLister) ListInstruments(_ context.Context) ([]model.Instrument, error) {
	out := make([]model.Instrument, len(s))
	copy(out, s)
	return out, nil
}

// clip keeps the bars dated within [start, end].
func clip(bars []model.Bar, start, end time.Time) []model.Bar {
	out := bars[:0:0]
	for _, b := range bars {
		if b.Date.Before(start) || b.Date.After(end) {
			continue
		}
		out = append(out, b)
	}
	return out
}
