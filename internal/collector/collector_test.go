package collector

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"TigerChart/internal/aligner"
	"TigerChart/internal/calculator"
	"TigerChart/internal/metrics"
	"TigerChart/internal/model"
)

var now = time.Date(2025, 9, 30, 15, 30, 0, 0, time.UTC)

func newTestCollector(f Fetcher) (*Collector, *metrics.Metrics) {
	m := metrics.NewMetrics()
	return NewCollector(f, aligner.New(aligner.DefaultBufferDays, aligner.DefaultTrimRows), calculator.DefaultParams(), m, zap.NewNop()), m
}

func request(t *testing.T, period string) model.ChartRequest {
	t.Helper()
	req, err := model.NewChartRequest("133690", period, now)
	require.NoError(t, err)
	return req
}

func TestCollect_TrimmedAndSummarized(t *testing.T) {
	f := &MockFetcher{Price: 120000}
	c, m := newTestCollector(f)

	res, err := c.Collect(context.Background(), request(t, "3mo"))
	require.NoError(t, err)

	assert.NotEmpty(t, res.RequestID)
	assert.Equal(t, "133690", res.Symbol)
	require.NotNil(t, res.Snapshot)
	assert.Len(t, res.Rows, res.Table.Len())

	full, err := f.FetchDailyBars(context.Background(), "133690", now.AddDate(0, 0, -140), now)
	require.NoError(t, err)
	assert.Equal(t, full.Len()-aligner.DefaultTrimRows, res.Table.Len())
	assert.Equal(t, full.Bars[aligner.DefaultTrimRows].Date, res.Table.Bars[0].Date)

	for i, row := range res.Rows {
		for name, v := range row.Indicators {
			assert.NotNil(t, v, "row %d column %s", i, name)
		}
	}
	last := res.Table.Bars[res.Table.Len()-1]
	assert.Equal(t, last.Date, res.Snapshot.Date)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChartRequests.WithLabelValues("ok")))
}

func TestCollect_ConstantPrice(t *testing.T) {
	var bars []model.Bar
	for d := dayOf(now).AddDate(0, 0, -200); !d.After(now); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		bars = append(bars, model.Bar{Date: d, Open: 100, High: 100, Low: 100, Close: 100, Volume: 10})
	}
	c, _ := newTestCollector(&MockFetcher{Bars: bars})

	res, err := c.Collect(context.Background(), request(t, "3mo"))
	require.NoError(t, err)

	for i := 0; i < res.Table.Len(); i++ {
		assert.Equal(t, 100.0, *res.Table.Value(model.ColumnMA, i))
		assert.Equal(t, 50.0, *res.Table.Value(model.ColumnRSI, i))
		assert.Equal(t, 50.0, *res.Table.Value(model.ColumnRMI, i))
	}
	assert.True(t, res.Snapshot.ChangePct.IsZero())
	assert.Equal(t, 100.0, res.Snapshot.PeriodHigh)
	assert.Equal(t, 100.0, res.Snapshot.PeriodLow)
}

func TestCollect_WidensFetchWindow(t *testing.T) {
	rec := &recordingFetcher{inner: &MockFetcher{Price: 10000}}
	c, _ := newTestCollector(rec)

	req := request(t, "1mo")
	_, err := c.Collect(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, req.Start.AddDate(0, 0, -aligner.DefaultBufferDays), rec.start)
	assert.Equal(t, req.End, rec.end)
}

func TestCollect_PropagatesAdapterErrors(t *testing.T) {
	for _, sentinel := range []error{ErrDataUnavailable, ErrEmptyRange} {
		f := &MockFetcher{Err: fmt.Errorf("upstream: %w", sentinel)}
		c, m := newTestCollector(f)

		_, err := c.Collect(context.Background(), request(t, "3mo"))
		assert.ErrorIs(t, err, sentinel)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.ChartRequests.WithLabelValues("error")))
	}
}

func TestCollect_InsufficientHistory(t *testing.T) {
	bars := make([]model.Bar, 20)
	first := dayOf(now).AddDate(0, 0, -len(bars))
	for i := range bars {
		bars[i] = model.Bar{Date: first.AddDate(0, 0, i), Open: 10, High: 11, Low: 9, Close: 10, Volume: 1}
	}
	c, _ := newTestCollector(&MockFetcher{Bars: bars})

	_, err := c.Collect(context.Background(), request(t, "1mo"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, aligner.ErrInsufficientHistory))

	var ih *aligner.InsufficientHistoryError
	require.ErrorAs(t, err, &ih)
	assert.Equal(t, 20, ih.Rows)
	assert.Equal(t, aligner.DefaultTrimRows+1, ih.Required)
}

func TestCollect_RejectsUnorderedSeries(t *testing.T) {
	d := dayOf(now).AddDate(0, 0, -5)
	bars := []model.Bar{
		{Date: d, Close: 10},
		{Date: d, Close: 11},
	}
	c, _ := newTestCollector(&MockFetcher{Bars: bars})

	_, err := c.Collect(context.Background(), request(t, "1mo"))
	assert.Error(t, err)
}

func TestCollect_InvalidParams(t *testing.T) {
	c, _ := newTestCollector(&MockFetcher{Price: 100})
	c.Params.MAWindow = 0

	_, err := c.Collect(context.Background(), request(t, "3mo"))
	assert.ErrorIs(t, err, calculator.ErrInvalidParameter)
}

func TestCollect_ReusesRequestID(t *testing.T) {
	c, _ := newTestCollector(&MockFetcher{Price: 100})
	ctx := WithRequestID(context.Background(), "req-1")

	res, err := c.Collect(ctx, request(t, "3mo"))
	require.NoError(t, err)
	assert.Equal(t, "req-1", res.RequestID)
}

type recordingFetcher struct {
	inner      Fetcher
	start, end time.Time
}

func (r *recordingFetcher) Name() string { return "recording" }

func (r *recordingFetcher) FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) (model.PriceSeries, error) {
	r.start, r.end = start, end
	return r.inner.FetchDailyBars(ctx, symbol, start, end)
}

func TestMockFetcher_ListInstruments(t *testing.T) {
	f := &MockFetcher{Instruments: []model.Instrument{{Name: "TIGER 200", Symbol: "102110"}}}
	got, err := f.ListInstruments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, f.Instruments, got)

	f.Err = ErrDataUnavailable
	_, err = f.ListInstruments(context.Background())
	assert.ErrorIs(t, err, ErrDataUnavailable)
}
