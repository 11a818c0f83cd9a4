package summary

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TigerChart/internal/model"
)

func tableOf(closes ...float64) *model.EnrichedTable {
	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]model.Bar, len(closes))
	for i, c := range closes {
		bars[i] = model.Bar{Date: start.AddDate(0, 0, i), Open: c, High: c + 2, Low: c - 2, Close: c, Volume: 500}
	}
	return model.NewEnrichedTable(model.PriceSeries{Symbol: "TEST", Bars: bars})
}

func TestSummarize_ChangePercent(t *testing.T) {
	snap, err := Summarize(tableOf(100, 105))
	require.NoError(t, err)

	assert.True(t, snap.ChangeAbs.Equal(decimal.NewFromInt(5)), "change_abs=%s", snap.ChangeAbs)
	assert.True(t, snap.ChangePct.Equal(decimal.NewFromInt(5)), "change_pct=%s", snap.ChangePct)
	assert.Equal(t, "5.00", snap.ChangePct.StringFixed(2))
	assert.True(t, snap.LatestClose.Equal(decimal.NewFromInt(105)))
	assert.True(t, snap.PreviousClose.Equal(decimal.NewFromInt(100)))
}

func TestSummarize_NegativeChange(t *testing.T) {
	snap, err := Summarize(tableOf(120, 118, 117.5))
	require.NoError(t, err)

	assert.Equal(t, "-0.50", snap.ChangeAbs.StringFixed(2))
	assert.Equal(t, "-0.42", snap.ChangePct.StringFixed(2))
	assert.Equal(t, 122.0, snap.PeriodHigh)
	assert.Equal(t, 115.5, snap.PeriodLow)
	assert.Equal(t, time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC), snap.Date)
}

func TestSummarize_InsufficientData(t *testing.T) {
	for _, table := range []*model.EnrichedTable{tableOf(), tableOf(100)} {
		_, err := Summarize(table)
		assert.ErrorIs(t, err, ErrInsufficientData)
	}
}

func TestSummarize_DivisionByZero(t *testing.T) {
	_, err := Summarize(tableOf(0, 10))
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestSummarize_IndicatorValues(t *testing.T) {
	table := tableOf(100, 101, 102)
	require.NoError(t, table.AddColumn(model.ColumnMA, []float64{math.NaN(), 100.5, 101.5}))
	require.NoError(t, table.AddColumn(model.ColumnRSI, []float64{math.NaN(), 100, math.NaN()}))

	snap, err := Summarize(table)
	require.NoError(t, err)

	require.NotNil(t, snap.Indicators[model.ColumnMA])
	assert.Equal(t, 101.5, *snap.Indicators[model.ColumnMA])
	assert.Contains(t, snap.Indicators, model.ColumnRSI)
	assert.Nil(t, snap.Indicators[model.ColumnRSI], "undefined reading should surface as no data")
}
