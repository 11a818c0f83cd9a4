package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"TigerChart/internal/aligner"
	"TigerChart/internal/calculator"
	"TigerChart/internal/model"
)

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		BaseURL      string `yaml:"base_url"`
		APIKey       string `yaml:"api_key"`
		SymbolSuffix string `yaml:"symbol_suffix"`
	} `yaml:"data_source"`
	Instruments []model.Instrument `yaml:"instruments"`
	Indicators  IndicatorConfig    `yaml:"indicators"`
	Cache       struct {
		TTL        time.Duration `yaml:"ttl"`
		SQLitePath string        `yaml:"sqlite_path"`
	} `yaml:"cache"`
	Schedule struct {
		InstrumentRefreshCron string `yaml:"instrument_refresh_cron"`
	} `yaml:"schedule"`
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Log   LogConfig `yaml:"log"`
	Proxy string    `yaml:"proxy"`
}

// IndicatorConfig holds the indicator and warm-up settings.
type IndicatorConfig struct {
	MAWindow         int    `yaml:"ma_window"`
	RSIPeriod        int    `yaml:"rsi_period"`
	RMILag           int    `yaml:"rmi_lag"`
	RMISmoothing     int    `yaml:"rmi_smoothing"`
	WarmupBufferDays int    `yaml:"warmup_buffer_days"`
	WarmupTrimRows   *int   `yaml:"warmup_trim_rows"`
	FlatPolicy       string `yaml:"flat_policy"`
}

// LogConfig defines the logger options.
type LogConfig struct {
	Level       string `yaml:"level"`       // "debug", "info", "warn", "error"
	Format      string `yaml:"format"`      // "json" or "console"
	OutputFile  string `yaml:"output_file"` // optional rotating log file
	Environment string `yaml:"environment"` // "dev" or "prod"
}

// TrimRows returns the configured warm-up trim, or the default when unset.
func (ic IndicatorConfig) TrimRows() int {
	if ic.WarmupTrimRows == nil {
		return aligner.DefaultTrimRows
	}
	return *ic.WarmupTrimRows
}

// Params converts the indicator settings into calculator parameters.
func (ic IndicatorConfig) Params() (calculator.Params, error) {
	policy, err := calculator.ParseFlatPolicy(ic.FlatPolicy)
	if err != nil {
		return calculator.Params{}, err
	}
	return calculator.Params{
		MAWindow:     ic.MAWindow,
		RSIPeriod:    ic.RSIPeriod,
		RMILag:       ic.RMILag,
		RMISmoothing: ic.RMISmoothing,
		Flat:         policy,
	}, nil
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("DATA_SOURCE_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_SOURCE_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Cache.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("FLAT_POLICY"); v != "" {
		cfg.Indicators.FlatPolicy = v
	}
	if err := intEnv("MA_WINDOW", &cfg.Indicators.MAWindow); err != nil {
		return nil, err
	}
	if err := intEnv("RSI_PERIOD", &cfg.Indicators.RSIPeriod); err != nil {
		return nil, err
	}
	if err := intEnv("RMI_LAG", &cfg.Indicators.RMILag); err != nil {
		return nil, err
	}
	if err := intEnv("RMI_SMOOTHING", &cfg.Indicators.RMISmoothing); err != nil {
		return nil, err
	}
	if err := intEnv("WARMUP_BUFFER_DAYS", &cfg.Indicators.WarmupBufferDays); err != nil {
		return nil, err
	}
	if v := os.Getenv("WARMUP_TRIM_ROWS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("WARMUP_TRIM_ROWS: %w", err)
		}
		cfg.Indicators.WarmupTrimRows = &n
	}

	// Defaults
	if cfg.DataSource.SymbolSuffix == "" {
		cfg.DataSource.SymbolSuffix = ".KS"
	}
	if len(cfg.Instruments) == 0 {
		cfg.Instruments = []model.Instrument{
			{Name: "TIGER 200", Symbol: "102110"},
			{Name: "TIGER 미국S&P500", Symbol: "360750"},
			{Name: "TIGER 미국나스닥100", Symbol: "133690"},
		}
	}
	if cfg.Indicators.MAWindow == 0 {
		cfg.Indicators.MAWindow = calculator.DefaultMAWindow
	}
	if cfg.Indicators.RSIPeriod == 0 {
		cfg.Indicators.RSIPeriod = calculator.DefaultRSIPeriod
	}
	if cfg.Indicators.RMILag == 0 {
		cfg.Indicators.RMILag = calculator.DefaultRMILag
	}
	if cfg.Indicators.RMISmoothing == 0 {
		cfg.Indicators.RMISmoothing = calculator.DefaultRMISmoothing
	}
	if cfg.Indicators.WarmupBufferDays == 0 {
		cfg.Indicators.WarmupBufferDays = aligner.DefaultBufferDays
	}
	if cfg.Indicators.FlatPolicy == "" {
		cfg.Indicators.FlatPolicy = calculator.FlatNeutral.String()
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 24 * time.Hour
	}
	if cfg.Schedule.InstrumentRefreshCron == "" {
		cfg.Schedule.InstrumentRefreshCron = "0 0 7 * * 1-5"
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return cfg, nil
}

func intEnv(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

// Validate checks indicator parameters and that the warm-up trim covers every indicator.
func (c *Config) Validate() error {
	ic := c.Indicators
	if ic.MAWindow < 1 {
		return fmt.Errorf("indicators.ma_window must be positive")
	}
	if ic.RSIPeriod < 1 {
		return fmt.Errorf("indicators.rsi_period must be positive")
	}
	if ic.RMILag < 1 {
		return fmt.Errorf("indicators.rmi_lag must be positive")
	}
	if ic.RMISmoothing < 1 {
		return fmt.Errorf("indicators.rmi_smoothing must be positive")
	}
	if ic.WarmupBufferDays < 1 {
		return fmt.Errorf("indicators.warmup_buffer_days must be positive")
	}
	if _, err := calculator.ParseFlatPolicy(ic.FlatPolicy); err != nil {
		return fmt.Errorf("indicators.flat_policy: %w", err)
	}
	if need := aligner.RequiredWarmup(ic.MAWindow, ic.RMILag); ic.TrimRows() < need {
		return fmt.Errorf("indicators.warmup_trim_rows is %d, indicators need at least %d", ic.TrimRows(), need)
	}
	// The buffer is in calendar days; weekends alone leave about 5 sessions per 7 days.
	if sessions := ic.WarmupBufferDays * 5 / 7; ic.TrimRows() > sessions {
		return fmt.Errorf("indicators.warmup_buffer_days %d yields about %d sessions, fewer than warmup_trim_rows %d",
			ic.WarmupBufferDays, sessions, ic.TrimRows())
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}
