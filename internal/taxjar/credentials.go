package taxjar

import "github.com/smallbiznis/taxbridge/internal/config"

const (
	LiveBaseURL    = "https://api.taxjar.com/v2"
	SandboxBaseURL = "https://api.sandbox.taxjar.com/v2"
)

const (
	KeySandboxMode     = config.KeyTaxJarSandboxMode
	KeySandboxAPIToken = config.KeyTaxJarSandboxAPIToken
	KeyLiveAPIToken    = config.KeyTaxJarLiveAPIToken
)

// ConfigProvider is the narrow view of settings the resolver needs.
type ConfigProvider interface {
	GetBool(key string) bool
	GetString(key string) string
}

// Environment is the credential pair active for one request.
type Environment struct {
	BaseURL  string
	APIToken string
	Sandbox  bool
}

// EnvironmentResolver picks the environment for the next request.
type EnvironmentResolver interface {
	Resolve() Environment
}

type Resolver struct {
	cfg ConfigProvider
}

func NewResolver(cfg ConfigProvider) *Resolver {
	return &Resolver{cfg: cfg}
}

// Resolve reads the sandbox flag on every call. A missing token is returned
// as-is and surfaces as an authentication failure from the API.
func (r *Resolver) Resolve() Environment {
	if r == nil || r.cfg == nil {
		return Environment{BaseURL: LiveBaseURL}
	}
	if r.cfg.GetBool(KeySandboxMode) {
		return Environment{
			BaseURL:  SandboxBaseURL,
			APIToken: r.cfg.GetString(KeySandboxAPIToken),
			Sandbox:  true,
		}
	}
	return Environment{
		BaseURL:  LiveBaseURL,
		APIToken: r.cfg.GetString(KeyLiveAPIToken),
	}
}
