package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TigerChart/internal/calculator"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Indicators.MAWindow)
	assert.Equal(t, 14, cfg.Indicators.RSIPeriod)
	assert.Equal(t, 5, cfg.Indicators.RMILag)
	assert.Equal(t, 10, cfg.Indicators.RMISmoothing)
	assert.Equal(t, 50, cfg.Indicators.WarmupBufferDays)
	assert.Equal(t, 30, cfg.Indicators.TrimRows())
	assert.Equal(t, "neutral", cfg.Indicators.FlatPolicy)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, ".KS", cfg.DataSource.SymbolSuffix)
	assert.NotEmpty(t, cfg.Instruments)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAMLAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
data_source:
  base_url: http://bars.local
indicators:
  ma_window: 10
  rsi_period: 9
  warmup_trim_rows: 12
  flat_policy: undefined
cache:
  ttl: 2h
instruments:
  - name: TIGER 2차전지테마
    symbol: "305540"
`)
	t.Setenv("RSI_PERIOD", "21")
	t.Setenv("DATA_SOURCE_API_KEY", "secret")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://bars.local", cfg.DataSource.BaseURL)
	assert.Equal(t, "secret", cfg.DataSource.APIKey)
	assert.Equal(t, 10, cfg.Indicators.MAWindow)
	assert.Equal(t, 21, cfg.Indicators.RSIPeriod)
	assert.Equal(t, 12, cfg.Indicators.TrimRows())
	assert.Equal(t, 2*time.Hour, cfg.Cache.TTL)
	require.Len(t, cfg.Instruments, 1)
	assert.Equal(t, "305540", cfg.Instruments[0].Symbol)

	p, err := cfg.Indicators.Params()
	require.NoError(t, err)
	assert.Equal(t, calculator.FlatUndefined, p.Flat)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_ExplicitZeroTrim(t *testing.T) {
	path := writeConfig(t, "indicators:\n  ma_window: 1\n  rmi_lag: 1\n  warmup_trim_rows: 0\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Indicators.TrimRows())
	assert.Error(t, cfg.Validate(), "RSI always needs one warm-up row")
}

func TestLoad_BadInputs(t *testing.T) {
	_, err := Load(writeConfig(t, "indicators: [unclosed"))
	assert.Error(t, err)

	t.Setenv("MA_WINDOW", "twenty")
	_, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"non-positive ma window", func(c *Config) { c.Indicators.MAWindow = -1 }},
		{"non-positive rsi period", func(c *Config) { c.Indicators.RSIPeriod = -2 }},
		{"non-positive rmi smoothing", func(c *Config) { c.Indicators.RMISmoothing = -1 }},
		{"unknown flat policy", func(c *Config) { c.Indicators.FlatPolicy = "zero" }},
		{"trim shorter than ma warm-up", func(c *Config) {
			c.Indicators.MAWindow = 60
		}},
		{"trim longer than buffer sessions", func(c *Config) {
			c.Indicators.WarmupBufferDays = 50
			trim := 40
			c.Indicators.WarmupTrimRows = &trim
		}},
		{"telegram half configured", func(c *Config) { c.Telegram.BotToken = "token" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_IndicatorEnvOverrides(t *testing.T) {
	t.Setenv("RMI_LAG", "3")
	t.Setenv("RMI_SMOOTHING", "7")
	t.Setenv("FLAT_POLICY", "undefined")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Indicators.RMILag)
	assert.Equal(t, 7, cfg.Indicators.RMISmoothing)

	p, err := cfg.Indicators.Params()
	require.NoError(t, err)
	assert.Equal(t, calculator.FlatUndefined, p.Flat)
	assert.NoError(t, cfg.Validate())

	t.Setenv("RMI_LAG", "five")
	_, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate_BufferCoversTrim(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	cfg.Indicators.WarmupBufferDays = 42 // 30 sessions
	assert.NoError(t, cfg.Validate())

	cfg.Indicators.WarmupBufferDays = 41
	assert.ErrorContains(t, cfg.Validate(), "warmup_buffer_days")
}
