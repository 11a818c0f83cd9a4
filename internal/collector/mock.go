package collector

import (
	"context"
	"fmt"
	"time"

	"TigerChart/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price       float64
	Bars        []model.Bar
	Err         error
	Instruments []model.Instrument
	Calls       int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, symbol string, start, end time.Time) (model.PriceSeries, error) {
	m.Calls++
	if m.Err != nil {
		return model.PriceSeries{}, m.Err
	}
	bars := m.Bars
	if bars == nil {
		bars = generateMockBars(m.Price, start, end)
	} else {
		bars = clip(bars, dayOf(start), end)
	}
	if len(bars) == 0 {
		return model.PriceSeries{}, fmt.Errorf("mock %s: %w", symbol, ErrEmptyRange)
	}
	return model.PriceSeries{Symbol: symbol, Bars: bars}, nil
}

func (m *MockFetcher) ListInstruments(_ context.Context) ([]model.Instrument, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return StaticLister(m.Instruments).ListInstruments(context.Background())
}

// generateMockBars produces one gently trending bar per weekday in [start, end].
func generateMockBars(basePrice float64, start, end time.Time) []model.Bar {
	var bars []model.Bar
	for d := dayOf(start); !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		i := len(bars)
		p := basePrice * (1 + float64(i%9-4)*0.002 + float64(i)*0.0005)
		bars = append(bars, model.Bar{
			Date:   d,
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		})
	}
	return bars
}
