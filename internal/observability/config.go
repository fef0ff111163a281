package observability

import (
	"os"
	"strconv"
	"strings"

	"github.com/smallbiznis/taxbridge/internal/config"
)

const (
	defaultSamplingRatio           = 1.0
	defaultProductionSamplingRatio = 0.1
)

// Config holds logging and telemetry settings. Each value is read from its
// TAXBRIDGE_ key first, then the conventional key, then the app config.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64
}

func LoadConfig(cfg config.Config) Config {
	environment := lookup(cfg.Environment, "TAXBRIDGE_ENV", "DEPLOYMENT_ENV")

	protocol := lookup("grpc", "TAXBRIDGE_OTEL_PROTOCOL", "OTEL_EXPORTER_OTLP_TRACES_PROTOCOL", "OTEL_EXPORTER_OTLP_PROTOCOL")

	sampling := defaultSamplingRatio
	if strings.EqualFold(environment, "production") {
		sampling = defaultProductionSamplingRatio
	}
	if raw := lookup("", "TAXBRIDGE_TRACE_SAMPLING", "OTEL_SAMPLING_RATIO"); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
			sampling = parsed
		}
	}

	enabled := true
	if raw := lookup("", "TAXBRIDGE_OTEL_ENABLED", "OTEL_ENABLED"); raw != "" {
		enabled = parseBool(raw, enabled)
	}
	if parseBool(lookup("", "OTEL_SDK_DISABLED"), false) {
		enabled = false
	}

	return Config{
		ServiceName:          lookup(defaultString(cfg.AppName, "taxbridge"), "TAXBRIDGE_SERVICE_NAME", "OTEL_SERVICE_NAME"),
		Environment:          environment,
		Version:              lookup(cfg.AppVersion, "TAXBRIDGE_VERSION", "SERVICE_VERSION"),
		LogLevel:             strings.ToLower(lookup("info", "TAXBRIDGE_LOG_LEVEL", "LOG_LEVEL")),
		LogFormat:            strings.ToLower(lookup("json", "TAXBRIDGE_LOG_FORMAT", "LOG_FORMAT")),
		OtelEnabled:          enabled,
		OtelExporterEndpoint: lookup(cfg.OTLPEndpoint, "TAXBRIDGE_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT"),
		OtelExporterProtocol: strings.ToLower(protocol),
		OtelSamplingRatio:    sampling,
	}
}

// Debug turns on verbose request logging and gin debug mode.
func (c Config) Debug() bool {
	if c.LogLevel == "debug" {
		return true
	}
	switch strings.ToLower(c.Environment) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

// lookup returns the first non-blank env value among keys, or def.
func lookup(def string, keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			return value
		}
	}
	return strings.TrimSpace(def)
}

func defaultString(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}

func parseBool(raw string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}
