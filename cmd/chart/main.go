package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"TigerChart/internal/aligner"
	"TigerChart/internal/api"
	"TigerChart/internal/collector"
	"TigerChart/internal/config"
	"TigerChart/internal/instruments"
	"TigerChart/internal/logger"
	"TigerChart/internal/metrics"
	"TigerChart/internal/model"
	"TigerChart/internal/notifier"
	"TigerChart/internal/report"
	"TigerChart/internal/scheduler"
)

func main() {
	symbol := flag.String("symbol", "", "instrument code to chart, e.g. 133690")
	period := flag.String("period", model.DefaultPeriod, "chart period: 1mo, 3mo, 6mo or 1y")
	rows := flag.Int("rows", report.DefaultRows, "number of recent rows in the text report")
	notify := flag.Bool("notify", false, "also send the report to Telegram")
	serve := flag.Bool("serve", false, "run the HTTP API and the scheduled instrument refresh")
	flag.Parse()

	if *symbol == "" && !*serve {
		flag.Usage()
		os.Exit(2)
	}

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	lg, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("[FATAL] init logger: %v", err)
	}
	defer lg.Sync()
	lg.Info("TigerChart starting", zap.Bool("serve", *serve))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fetcher, lister := newDataSource(cfg)
	lg.Info("data source", zap.String("name", fetcher.Name()))

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, lg)

	if *serve {
		if err := runServer(ctx, cfg, lg, fetcher, lister, tn, *rows); err != nil {
			lg.Fatal("server stopped", zap.Error(err))
		}
		return
	}

	if err := runOnce(ctx, cfg, lg, fetcher, tn, *symbol, *period, *rows, *notify); err != nil {
		lg.Sync()
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// newDataSource picks the REST source when a base URL is configured and Yahoo otherwise.
func newDataSource(cfg *config.Config) (collector.Fetcher, collector.InstrumentLister) {
	if cfg.DataSource.BaseURL != "" {
		f := collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
		return f, f
	}
	return collector.NewYahooFetcher(cfg.DataSource.SymbolSuffix, cfg.Proxy), collector.StaticLister(cfg.Instruments)
}

func newCollector(cfg *config.Config, fetcher collector.Fetcher, m *metrics.Metrics, lg *zap.Logger) (*collector.Collector, error) {
	params, err := cfg.Indicators.Params()
	if err != nil {
		return nil, err
	}
	al := aligner.New(cfg.Indicators.WarmupBufferDays, cfg.Indicators.TrimRows())
	return collector.NewCollector(fetcher, al, params, m, lg), nil
}

func chartReport(col *collector.Collector, rows int) notifier.ChartFunc {
	return func(ctx context.Context, symbol, period string) (string, error) {
		req, err := model.NewChartRequest(symbol, period, time.Now())
		if err != nil {
			return "", err
		}
		res, err := col.Collect(ctx, req)
		if err != nil {
			return "", err
		}
		return report.Format(res, rows), nil
	}
}

func runOnce(ctx context.Context, cfg *config.Config, lg *zap.Logger, fetcher collector.Fetcher,
	tn *notifier.TelegramNotifier, symbol, period string, rows int, notify bool) error {
	if notify && !tn.Enabled() {
		return errors.New("-notify needs telegram.bot_token and telegram.chat_id")
	}
	col, err := newCollector(cfg, fetcher, nil, lg)
	if err != nil {
		return err
	}

	text, err := chartReport(col, rows)(ctx, symbol, period)
	if err != nil {
		return err
	}
	fmt.Print(text)

	if notify {
		if err := tn.SendWithRetry(ctx, text, 3); err != nil {
			return fmt.Errorf("send report: %w", err)
		}
		lg.Info("report sent to telegram", zap.String("symbol", symbol))
	}
	return nil
}

func runServer(ctx context.Context, cfg *config.Config, lg *zap.Logger, fetcher collector.Fetcher,
	lister collector.InstrumentLister, tn *notifier.TelegramNotifier, rows int) error {
	m := metrics.NewMetrics()
	col, err := newCollector(cfg, fetcher, m, lg)
	if err != nil {
		return err
	}

	// Init instrument cache store
	var store instruments.Store
	if cfg.Cache.SQLitePath != "" {
		ss, err := instruments.NewSQLiteStore(cfg.Cache.SQLitePath, lg)
		if err != nil {
			lg.Warn("init sqlite store failed, using memory", zap.Error(err))
			store = instruments.NewMemoryStore()
		} else {
			store = ss
		}
	} else {
		store = instruments.NewMemoryStore()
	}
	cache := instruments.NewCache(lister, store, cfg.Cache.TTL, m, lg)
	defer cache.Close()

	sched := scheduler.NewScheduler(ctx, cache, lg)
	if err := sched.RegisterAll(cfg.Schedule.InstrumentRefreshCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if os.Getenv("RUN_ON_START") == "true" {
		lg.Info("RUN_ON_START enabled, refreshing instruments now")
		go sched.RunRefreshNow()
	}

	if tn.Enabled() {
		go tn.StartPolling(ctx, notifier.NewCommandHandler(chartReport(col, rows), cache.Instruments))
		lg.Info("telegram polling started")
	}

	gin.SetMode(gin.ReleaseMode)
	srv := api.NewAPIHandler(col, cache, m.Handler(), lg).NewServer(cfg.HTTP.Addr)
	errCh := make(chan error, 1)
	go func() {
		lg.Info("http server listening", zap.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		lg.Info("shutdown signal received, stopping...")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	lg.Info("TigerChart stopped")
	return nil
}
