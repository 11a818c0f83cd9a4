package aligner

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TigerChart/internal/calculator"
	"TigerChart/internal/model"
)

func randomSeries(n int, seed int64) model.PriceSeries {
	rng := rand.New(rand.NewSource(seed))
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]model.Bar, n)
	price := 15000.0
	for i := range bars {
		price *= 1 + (rng.Float64()-0.5)*0.03
		bars[i] = model.Bar{
			Date:   start.AddDate(0, 0, i),
			Open:   price * 0.998,
			High:   price * 1.01,
			Low:    price * 0.99,
			Close:  price,
			Volume: int64(100000 + rng.Intn(5000)),
		}
	}
	return model.PriceSeries{Symbol: "133690", Bars: bars}
}

func TestNew_Defaults(t *testing.T) {
	a := New(0, -1)
	assert.Equal(t, DefaultBufferDays, a.BufferDays)
	assert.Equal(t, DefaultTrimRows, a.TrimRows)

	a = New(70, 0)
	assert.Equal(t, 70, a.BufferDays)
	assert.Equal(t, 0, a.TrimRows)
}

func TestExtendStart(t *testing.T) {
	a := New(50, 30)
	start := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 2, 9, 0, 0, 0, 0, time.UTC), a.ExtendStart(start))
}

func TestCheck(t *testing.T) {
	a := New(50, 30)

	tests := []struct {
		name    string
		rows    int
		wantErr bool
	}{
		{"empty", 0, true},
		{"exactly trim rows", 30, true},
		{"one visible row", 31, false},
		{"plenty", 120, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := a.Check(tt.rows)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInsufficientHistory))
			var ih *InsufficientHistoryError
			require.True(t, errors.As(err, &ih))
			assert.Equal(t, tt.rows, ih.Rows)
			assert.Equal(t, 31, ih.Required)
		})
	}
}

func TestTrim_DropsPrefixAcrossColumns(t *testing.T) {
	series := randomSeries(80, 1)
	table, err := calculator.Enrich(series, calculator.DefaultParams())
	require.NoError(t, err)

	a := New(50, 30)
	trimmed, err := a.Trim(table)
	require.NoError(t, err)

	assert.Equal(t, 50, trimmed.Len())
	assert.Equal(t, series.Bars[30].Date, trimmed.Bars[0].Date)
	for _, name := range trimmed.Order {
		assert.Len(t, trimmed.Columns[name], trimmed.Len(), name)
		assert.Equal(t, table.Columns[name][30], trimmed.Columns[name][0], name)
	}
}

func TestTrim_InsufficientHistory(t *testing.T) {
	table, err := calculator.Enrich(randomSeries(30, 2), calculator.DefaultParams())
	require.NoError(t, err)

	_, err = New(50, 30).Trim(table)
	assert.ErrorIs(t, err, ErrInsufficientHistory)
}

func TestTrim_NoUndefinedValuesWhenTrimCoversWarmup(t *testing.T) {
	configs := []calculator.Params{
		calculator.DefaultParams(),
		{MAWindow: 5, RSIPeriod: 3, RMILag: 2, RMISmoothing: 4},
		{MAWindow: 31, RSIPeriod: 14, RMILag: 5, RMISmoothing: 10},
		{MAWindow: 1, RSIPeriod: 1, RMILag: 12, RMISmoothing: 1},
	}
	for i, p := range configs {
		trim := RequiredWarmup(p.MAWindow, p.RMILag)
		series := randomSeries(trim+25, int64(10+i))
		table, err := calculator.Enrich(series, p)
		require.NoError(t, err)

		trimmed, err := New(50, trim).Trim(table)
		require.NoError(t, err)

		for r, row := range trimmed.Rows() {
			for name, v := range row.Indicators {
				assert.NotNil(t, v, "config %d row %d column %s", i, r, name)
			}
		}
	}
}

func TestRequiredWarmup(t *testing.T) {
	assert.Equal(t, 19, RequiredWarmup(20, 5))
	assert.Equal(t, 12, RequiredWarmup(5, 12))
	assert.Equal(t, 1, RequiredWarmup(1, 1))
}
