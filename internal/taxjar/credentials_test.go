package taxjar

import (
	"testing"

	"github.com/smallbiznis/taxbridge/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestResolverSelectsEnvironment(t *testing.T) {
	cases := []struct {
		name    string
		sandbox bool
		want    Environment
	}{
		{
			name:    "live",
			sandbox: false,
			want:    Environment{BaseURL: LiveBaseURL, APIToken: "live_token"},
		},
		{
			name:    "sandbox",
			sandbox: true,
			want:    Environment{BaseURL: SandboxBaseURL, APIToken: "sb_token", Sandbox: true},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			settings := config.NewSettings(map[string]any{
				KeySandboxMode:     tc.sandbox,
				KeySandboxAPIToken: "sb_token",
				KeyLiveAPIToken:    "live_token",
			})
			assert.Equal(t, tc.want, NewResolver(settings).Resolve())
		})
	}
}

func TestResolverReadsFlagOnEveryCall(t *testing.T) {
	settings := config.NewSettings(map[string]any{
		KeySandboxMode:     "false",
		KeySandboxAPIToken: "sb_token",
		KeyLiveAPIToken:    "live_token",
	})
	resolver := NewResolver(settings)

	assert.Equal(t, LiveBaseURL, resolver.Resolve().BaseURL)

	settings.Set(KeySandboxMode, "true")
	env := resolver.Resolve()
	assert.Equal(t, SandboxBaseURL, env.BaseURL)
	assert.Equal(t, "sb_token", env.APIToken)
}

func TestResolverMissingTokenIsEmpty(t *testing.T) {
	resolver := NewResolver(config.NewSettings(map[string]any{KeySandboxMode: true}))

	env := resolver.Resolve()
	assert.Equal(t, SandboxBaseURL, env.BaseURL)
	assert.Empty(t, env.APIToken)
}
