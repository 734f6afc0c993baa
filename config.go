package portalclient

import (
	"errors"
	"net/url"
	"time"
)

// Config carries the immutable settings of a [Client]. Instances are cloned
// by [Builder.Build]; mutating a Config after Build has no effect.
type Config struct {
	// BaseURL is the portal backend root, e.g. "https://api.facturahub.io".
	BaseURL string
	// UserAgent is sent on every outbound request.
	UserAgent string
	// EntryRoute is the unauthenticated entry point handed to the redirect
	// handler on session teardown.
	EntryRoute string
	// Scheme is the Authorization scheme prefix. Defaults to "Bearer".
	Scheme string

	Endpoints EndpointConfig
	Refresh   RefreshConfig
	Metrics   MetricsConfig
}

/*
====================================
ENDPOINT CONFIG
====================================
*/

// EndpointConfig holds the identity endpoint paths, relative to BaseURL.
type EndpointConfig struct {
	Login   string
	Refresh string
	Logout  string
}

/*
====================================
REFRESH CONFIG
====================================
*/

// RefreshConfig tunes the refresh coordinator.
type RefreshConfig struct {
	// Timeout bounds the single network-side refresh call. The refresh runs
	// detached from any caller's context, so one caller timing out never
	// fails the others.
	Timeout time.Duration
	// Ahead, when positive, refreshes before sending if the access
	// credential is a readable token expiring within the window. Opaque
	// credentials skip the hint; expiry detection still works through the
	// session-expired response path.
	Ahead time.Duration
}

// MetricsConfig enables the in-process counters. When Enabled is false all
// metric operations are no-ops.
type MetricsConfig struct {
	Enabled bool
}

func defaultConfig() Config {
	return Config{
		UserAgent:  "portalclient/1",
		EntryRoute: "/login",
		Scheme:     "Bearer",
		Endpoints: EndpointConfig{
			Login:   "/v1/auth/login",
			Refresh: "/v1/auth/refresh",
			Logout:  "/v1/auth/logout",
		},
		Refresh: RefreshConfig{
			Timeout: 10 * time.Second,
		},
	}
}

func cloneConfig(cfg Config) Config {
	// Value copy is a deep copy: Config holds no reference types.
	return cfg
}

// Validate checks the configuration for values Build cannot default away.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("BaseURL required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("BaseURL must be an absolute URL")
	}
	if c.Endpoints.Login == "" || c.Endpoints.Refresh == "" || c.Endpoints.Logout == "" {
		return errors.New("identity endpoint paths required")
	}
	if c.Refresh.Timeout <= 0 {
		return errors.New("Refresh.Timeout must be positive")
	}
	if c.Refresh.Ahead < 0 {
		return errors.New("Refresh.Ahead must not be negative")
	}
	return nil
}
