package merchstudio

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	baseURL string
	appID   string
	apiKey  string

	timeout     time.Duration
	hitsPerPage int
	httpClient  *http.Client

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithEngine sets the search engine endpoint and credentials. Required.
func WithEngine(baseURL, appID, apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.baseURL = baseURL
		c.appID = appID
		c.apiKey = apiKey
	})
}

// WithTimeout sets the per-request engine timeout. Default: 10s.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithHitsPerPage sets how many base results a session loads. Default: 50.
func WithHitsPerPage(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.hitsPerPage = n
	})
}

// WithHTTPClient replaces the HTTP client used for engine calls.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
