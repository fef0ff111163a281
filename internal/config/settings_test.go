package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewTaxJarSettingsReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taxjar.yml")
	content := []byte("taxjar:\n  sandbox_mode: true\n  sandbox_api_token: sb_token\n  live_api_token: live_token\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	settings, err := NewTaxJarSettings(Config{TaxJarConfigPath: path}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.True(t, settings.GetBool(KeyTaxJarSandboxMode))
	assert.Equal(t, "sb_token", settings.GetString(KeyTaxJarSandboxAPIToken))
	assert.Equal(t, "live_token", settings.GetString(KeyTaxJarLiveAPIToken))
}

func TestNewTaxJarSettingsMissingExplicitFile(t *testing.T) {
	_, err := NewTaxJarSettings(Config{TaxJarConfigPath: filepath.Join(t.TempDir(), "missing.yml")}, nil)
	assert.Error(t, err)
}

func TestNewTaxJarSettingsEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TAXBRIDGE_TAXJAR_SANDBOX_MODE", "true")
	t.Setenv("TAXBRIDGE_TAXJAR_LIVE_API_TOKEN", "env_live")

	settings, err := NewTaxJarSettings(Config{}, nil)
	require.NoError(t, err)

	assert.True(t, settings.GetBool(KeyTaxJarSandboxMode))
	assert.Equal(t, "env_live", settings.GetString(KeyTaxJarLiveAPIToken))
	assert.Equal(t, "", settings.GetString(KeyTaxJarSandboxAPIToken))
}

func TestSettingsSetIsVisibleToNextRead(t *testing.T) {
	settings := NewSettings(map[string]any{
		"TaxJar.Sandbox_Mode": "false",
	})
	assert.False(t, settings.GetBool(KeyTaxJarSandboxMode))

	settings.Set(KeyTaxJarSandboxMode, true)
	assert.True(t, settings.GetBool(KeyTaxJarSandboxMode))

	settings.Set(KeyTaxJarLiveAPIToken, "  padded  ")
	assert.Equal(t, "padded", settings.GetString(KeyTaxJarLiveAPIToken))
}
