package observability

import (
	"testing"

	"github.com/smallbiznis/taxbridge/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaultsFromAppConfig(t *testing.T) {
	cfg := LoadConfig(config.Config{
		AppName:      "taxbridge-api",
		AppVersion:   "1.2.3",
		Environment:  "staging",
		OTLPEndpoint: "collector:4317",
	})

	assert.Equal(t, "taxbridge-api", cfg.ServiceName)
	assert.Equal(t, "1.2.3", cfg.Version)
	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "collector:4317", cfg.OtelExporterEndpoint)
	assert.Equal(t, "grpc", cfg.OtelExporterProtocol)
	assert.Equal(t, defaultSamplingRatio, cfg.OtelSamplingRatio)
	assert.True(t, cfg.OtelEnabled)
	assert.False(t, cfg.Debug())
}

func TestLoadConfigPrefersProjectKeys(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("TAXBRIDGE_LOG_LEVEL", "DEBUG")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")
	t.Setenv("TAXBRIDGE_OTEL_PROTOCOL", "HTTP")

	cfg := LoadConfig(config.Config{Environment: "production"})

	assert.Equal(t, "taxbridge", cfg.ServiceName)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "http", cfg.OtelExporterProtocol)
	assert.Equal(t, defaultProductionSamplingRatio, cfg.OtelSamplingRatio)
	assert.True(t, cfg.Debug())
}

func TestLoadConfigDisablesTelemetry(t *testing.T) {
	t.Setenv("OTEL_SDK_DISABLED", "true")

	cfg := LoadConfig(config.Config{Environment: "development"})

	assert.False(t, cfg.OtelEnabled)
	assert.True(t, cfg.Debug())
}
