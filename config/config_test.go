package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, "config.yaml", `source:
  path: "data/log.csv"
http:
  addr: ":9000"
  allowed_origins: ["https://dash.example"]
metrics:
  prometheus_enabled: true
  prometheus_port: ":9100"
mqtt:
  broker: "tcp://broker:1883"
  client_id: "cli"
  topic: "lot"
  qos: 1
  retain: true
replay:
  interval_ms: 250
  loop: true
sentry:
  dsn: "https://key@sentry.example/4"
  traces_sample_rate: 0.2
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"source.path", cfg.Source.Path, "data/log.csv"},
		{"source.table", cfg.Source.Table, "observations"},
		{"http.addr", cfg.HTTP.Addr, ":9000"},
		{"metrics.prometheus_enabled", cfg.Metrics.PrometheusEnabled, true},
		{"metrics.prometheus_port", cfg.Metrics.PrometheusPort, ":9100"},
		{"mqtt.broker", cfg.MQTT.Broker, "tcp://broker:1883"},
		{"mqtt.client_id", cfg.MQTT.ClientID, "cli"},
		{"mqtt.qos", cfg.MQTT.QoS, byte(1)},
		{"mqtt.retain", cfg.MQTT.Retain, true},
		{"mqtt.frame_topic", cfg.MQTT.FrameTopic(), "lot/frame"},
		{"replay.interval_ms", cfg.Replay.IntervalMS, 250},
		{"replay.loop", cfg.Replay.Loop, true},
		{"sentry.dsn", cfg.Sentry.DSN, "https://key@sentry.example/4"},
		{"sentry.environment", cfg.Sentry.Environment, "production"},
		{"sentry.traces_sample_rate", cfg.Sentry.TracesSampleRate, 0.2},
	}
	for _, c := range checks {
		assert.Equal(t, c.want, c.got, c.name)
	}
	assert.Equal(t, []string{"https://dash.example"}, cfg.HTTP.AllowedOrigins)
}

func TestLoad_JSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{"source": {"path": "log.db", "table": "rows"}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "rows", cfg.Source.Table)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "assets/ride_hailing.xlsx", cfg.Source.Path)
	assert.Equal(t, ":8000", cfg.HTTP.Addr)
	assert.Equal(t, []string{DefaultAllowedOrigin}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, ":2112", cfg.Metrics.PrometheusPort)
	assert.Equal(t, "rideslots/frame", cfg.MQTT.FrameTopic())
	assert.Equal(t, 1000, cfg.Replay.IntervalMS)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "config.yaml", "http:\n  addr: \":9000\"\n")
	t.Setenv("K_HTTP__ADDR", ":7000")
	t.Setenv("K_SOURCE__PATH", "other.csv")
	t.Setenv(AllowedOriginsEnv, "http://a.example, http://b.example,")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.HTTP.Addr)
	assert.Equal(t, "other.csv", cfg.Source.Path)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.HTTP.AllowedOrigins)
}

func TestLoad_EnvOverridesWithoutFile(t *testing.T) {
	t.Setenv("K_HTTP__ADDR", ":7000")
	t.Setenv("K_REPLAY__INTERVAL_MS", "42")
	t.Setenv("K_METRICS__PROMETHEUS_ENABLED", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.HTTP.Addr)
	assert.Equal(t, 42, cfg.Replay.IntervalMS)
	assert.True(t, cfg.Metrics.PrometheusEnabled)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(writeConfig(t, "config.toml", ""))
	assert.ErrorContains(t, err, "unsupported config format")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "config.yaml", "source:\n  path: data.parquet\n"))
	assert.ErrorContains(t, err, "source:")

	_, err = Load(writeConfig(t, "config.yaml", "metrics:\n  influx_enabled: true\n"))
	assert.ErrorContains(t, err, "influx_url")

	_, err = Load(writeConfig(t, "config.yaml", "http:\n  addr: nonsense\n"))
	assert.ErrorContains(t, err, "invalid addr")

	_, err = Load(writeConfig(t, "config.yaml", "replay:\n  interval_ms: -5\n"))
	assert.ErrorContains(t, err, "interval_ms")

	_, err = Load(writeConfig(t, "config.yaml", "sentry:\n  traces_sample_rate: 2\n"))
	assert.ErrorContains(t, err, "sentry:")
}
