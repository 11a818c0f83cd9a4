package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"TigerChart/internal/aligner"
	"TigerChart/internal/calculator"
	"TigerChart/internal/logger"
	"TigerChart/internal/metrics"
	"TigerChart/internal/model"
	"TigerChart/internal/summary"
)

// Collector orchestrates one chart request: widened fetch, indicator computation,
// warm-up trim and snapshot.
type Collector struct {
	Fetcher Fetcher
	Aligner *aligner.Aligner
	Params  calculator.Params
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// NewCollector creates a new Collector. m may be nil.
func NewCollector(fetcher Fetcher, al *aligner.Aligner, params calculator.Params, m *metrics.Metrics, log *zap.Logger) *Collector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Collector{
		Fetcher: fetcher,
		Aligner: al,
		Params:  params,
		Metrics: m,
		Logger:  log,
	}
}

type requestIDKey struct{}

// WithRequestID attaches a request ID that Collect reuses instead of generating one.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request ID attached to ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Collect fetches the widened series and computes the trimmed, summarized chart.
// Every failure is returned to the caller; nothing is replaced with a default.
func (c *Collector) Collect(ctx context.Context, req model.ChartRequest) (*model.ChartResult, error) {
	requestID := RequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	log := logger.ForRequest(c.Logger, requestID,
		zap.String("symbol", req.Symbol),
		zap.String("source", c.Fetcher.Name()),
	)

	res, err := c.collect(ctx, req, log)
	if err != nil {
		c.count("error")
		log.Warn("chart request failed", zap.Error(err))
		return nil, err
	}
	res.RequestID = requestID
	c.count("ok")
	log.Info("chart computed",
		zap.Int("rows", res.Table.Len()),
		zap.Time("first", res.Table.Bars[0].Date),
		zap.Time("last", res.Snapshot.Date),
	)
	return res, nil
}

func (c *Collector) collect(ctx context.Context, req model.ChartRequest, log *zap.Logger) (*model.ChartResult, error) {
	fetchStart := c.Aligner.ExtendStart(req.Start)
	log.Debug("fetching daily bars",
		zap.Time("requested_start", req.Start),
		zap.Time("fetch_start", fetchStart),
		zap.Time("end", req.End),
	)

	began := time.Now()
	series, err := c.Fetcher.FetchDailyBars(ctx, req.Symbol, fetchStart, req.End)
	c.observe(func(m *metrics.Metrics) { m.FetchDur.Observe(time.Since(began).Seconds()) })
	if err != nil {
		return nil, fmt.Errorf("fetch daily bars: %w", err)
	}
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("validate %s: %w", req.Symbol, err)
	}
	c.observe(func(m *metrics.Metrics) { m.BarsFetched.Observe(float64(series.Len())) })

	if err := c.Aligner.Check(series.Len()); err != nil {
		return nil, fmt.Errorf("%s from %s: %w", req.Symbol, fetchStart.Format("2006-01-02"), err)
	}

	began = time.Now()
	defer c.observe(func(m *metrics.Metrics) { m.IndicatorDur.Observe(time.Since(began).Seconds()) })

	table, err := calculator.Enrich(series, c.Params)
	if err != nil {
		return nil, fmt.Errorf("compute indicators: %w", err)
	}
	trimmed, err := c.Aligner.Trim(table)
	if err != nil {
		return nil, err
	}
	snap, err := summary.Summarize(trimmed)
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}

	return &model.ChartResult{
		Symbol:   req.Symbol,
		Rows:     trimmed.Rows(),
		Snapshot: snap,
		Table:    trimmed,
	}, nil
}

func (c *Collector) count(result string) {
	c.observe(func(m *metrics.Metrics) { m.ChartRequests.WithLabelValues(result).Inc() })
}

func (c *Collector) observe(fn func(m *metrics.Metrics)) {
	if c.Metrics != nil {
		fn(c.Metrics)
	}
}
