package core

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	DefaultRequestTokenURL = "https://www.tumblr.com/oauth/request_token"
	DefaultAuthorizeURL    = "https://www.tumblr.com/oauth/authorize"
	DefaultAccessTokenURL  = "https://www.tumblr.com/oauth/access_token"
	DefaultProfileURL      = "https://api.tumblr.com/v2/user/info"

	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

type EndpointsConfig struct {
	RequestToken string `koanf:"request_token" mapstructure:"request_token"`
	Authorize    string `koanf:"authorize" mapstructure:"authorize"`
	AccessToken  string `koanf:"access_token" mapstructure:"access_token"`
	Profile      string `koanf:"profile" mapstructure:"profile"`
}

type OAuthConfig struct {
	// Callback is sent as oauth_callback on the request-token step when set.
	Callback string `koanf:"callback" mapstructure:"callback"`
}

type DatabaseConfig struct {
	Driver string `koanf:"driver" mapstructure:"driver"`
	DSN    string `koanf:"dsn" mapstructure:"dsn"`
	Debug  bool   `koanf:"debug" mapstructure:"debug"`
}

type HTTPConfig struct {
	TimeoutSeconds   int   `koanf:"timeout_seconds" mapstructure:"timeout_seconds"`
	MaxResponseBytes int64 `koanf:"max_response_bytes" mapstructure:"max_response_bytes"`
}

type Config struct {
	ServiceName string          `koanf:"service_name" mapstructure:"service_name"`
	Endpoints   EndpointsConfig `koanf:"endpoints" mapstructure:"endpoints"`
	OAuth       OAuthConfig     `koanf:"oauth" mapstructure:"oauth"`
	Database    DatabaseConfig  `koanf:"database" mapstructure:"database"`
	HTTP        HTTPConfig      `koanf:"http" mapstructure:"http"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "oauth1",
		Endpoints: EndpointsConfig{
			RequestToken: DefaultRequestTokenURL,
			Authorize:    DefaultAuthorizeURL,
			AccessToken:  DefaultAccessTokenURL,
			Profile:      DefaultProfileURL,
		},
		Database: DatabaseConfig{
			Driver: DriverSQLite,
		},
		HTTP: HTTPConfig{
			TimeoutSeconds:   30,
			MaxResponseBytes: 1 << 20,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	endpoints := map[string]string{
		"endpoints.request_token": c.Endpoints.RequestToken,
		"endpoints.authorize":     c.Endpoints.Authorize,
		"endpoints.access_token":  c.Endpoints.AccessToken,
		"endpoints.profile":       c.Endpoints.Profile,
	}
	for name, value := range endpoints {
		if err := validateEndpoint(name, value); err != nil {
			return err
		}
	}
	switch strings.TrimSpace(c.Database.Driver) {
	case "", DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("core: invalid database.driver %q", c.Database.Driver)
	}
	if c.HTTP.TimeoutSeconds < 0 {
		return fmt.Errorf("core: invalid http.timeout_seconds %d", c.HTTP.TimeoutSeconds)
	}
	return nil
}

func validateEndpoint(name string, value string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fmt.Errorf("core: %s is required", name)
	}
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("core: %s must be an absolute url, got %q", name, value)
	}
	return nil
}
