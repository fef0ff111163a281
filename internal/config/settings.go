package config

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// TaxJar setting keys. Values come from taxjar.yml or TAXBRIDGE_TAXJAR_* env vars.
const (
	KeyTaxJarSandboxMode     = "taxjar.sandbox_mode"
	KeyTaxJarSandboxAPIToken = "taxjar.sandbox_api_token"
	KeyTaxJarLiveAPIToken    = "taxjar.live_api_token"
)

// Settings is a hot-reloadable key/value snapshot. Every Get reads the
// current snapshot, so a reload or Set is visible to the next caller.
type Settings struct {
	mu      sync.Mutex
	current atomic.Value // holds map[string]any
}

// NewTaxJarSettings loads the TaxJar settings and watches the file for changes.
func NewTaxJarSettings(cfg Config, log *zap.Logger) (*Settings, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("config.taxjar")

	v := viper.New()
	if cfg.TaxJarConfigPath != "" {
		v.SetConfigFile(cfg.TaxJarConfigPath)
	} else {
		v.SetConfigName("taxjar")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/taxbridge")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("TAXBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyTaxJarSandboxMode, false)
	v.SetDefault(KeyTaxJarSandboxAPIToken, "")
	v.SetDefault(KeyTaxJarLiveAPIToken, "")

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfg.TaxJarConfigPath != "" || !errors.As(err, &notFound) {
			return nil, err
		}
		fileLoaded = false
	}

	settings := &Settings{}
	settings.current.Store(snapshot(v))

	if fileLoaded {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			settings.replace(snapshot(v))
			log.Info("taxjar settings reloaded", zap.String("file", e.Name))
		})
	}

	return settings, nil
}

// NewSettings builds a static settings snapshot.
func NewSettings(values map[string]any) *Settings {
	settings := &Settings{}
	copied := make(map[string]any, len(values))
	for key, value := range values {
		copied[strings.ToLower(key)] = value
	}
	settings.current.Store(copied)
	return settings
}

// GetBool returns the boolean value of key, false when unset or unparsable.
func (s *Settings) GetBool(key string) bool {
	return cast.ToBool(s.load()[strings.ToLower(key)])
}

// GetString returns the string value of key, empty when unset.
func (s *Settings) GetString(key string) string {
	return strings.TrimSpace(cast.ToString(s.load()[strings.ToLower(key)]))
}

// Set overrides a single key in the live snapshot.
func (s *Settings) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.load()
	next := make(map[string]any, len(current)+1)
	for k, v := range current {
		next[k] = v
	}
	next[strings.ToLower(key)] = value
	s.current.Store(next)
}

func (s *Settings) replace(values map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Store(values)
}

func (s *Settings) load() map[string]any {
	if s == nil {
		return map[string]any{}
	}
	values, _ := s.current.Load().(map[string]any)
	if values == nil {
		return map[string]any{}
	}
	return values
}

func snapshot(v *viper.Viper) map[string]any {
	keys := v.AllKeys()
	values := make(map[string]any, len(keys))
	for _, key := range keys {
		values[key] = v.Get(key)
	}
	return values
}
