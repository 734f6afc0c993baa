package portalclient

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/facturahub/portalclient/credstore"
)

// Builder assembles a [Client]. Configure it during initialization and call
// Build exactly once; the zero dependencies default to an in-memory store,
// a plain http.Client, and slog.Default().
type Builder struct {
	config     Config
	httpClient *http.Client
	store      credstore.Store
	logger     *slog.Logger
	redirect   func(entry string)

	built bool
}

// New returns a Builder loaded with the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration. Defaults for fields left
// zero are not re-applied; start from New()'s config when in doubt.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithBaseURL sets the portal backend root.
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.config.BaseURL = baseURL
	return b
}

// WithHTTPClient sets the transport used for every call, including login
// and refresh. Tests inject httptest clients here.
func (b *Builder) WithHTTPClient(hc *http.Client) *Builder {
	b.httpClient = hc
	return b
}

// WithStore sets the credential store. The store is the only place
// credentials are read or written.
func (b *Builder) WithStore(store credstore.Store) *Builder {
	b.store = store
	return b
}

// WithLogger sets the structured logger.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithRedirectHandler sets the hook invoked with [Config.EntryRoute] when a
// session is torn down. It is called at most once per teardown, on the
// refresh leader's goroutine or the Logout caller's.
func (b *Builder) WithRedirectHandler(fn func(entry string)) *Builder {
	b.redirect = fn
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and returns a ready Client.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	store := b.store
	if store == nil {
		store = credstore.NewMemory()
	}

	hc := b.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		config:   cfg,
		base:     base,
		http:     hc,
		store:    store,
		logger:   logger,
		metrics:  NewMetrics(cfg.Metrics),
		redirect: b.redirect,
	}
	c.refresher = &refreshCoordinator{
		timeout:   cfg.Refresh.Timeout,
		run:       c.refreshSession,
		onFailure: c.teardown,
		logger:    logger,
		metrics:   c.metrics,
	}

	b.built = true

	return c, nil
}
