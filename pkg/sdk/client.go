package merchstudio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/merchstudio/internal/domain/merch/editor"
	"github.com/kailas-cloud/merchstudio/internal/domain/merch/rule"
	domsession "github.com/kailas-cloud/merchstudio/internal/domain/merch/session"
	"github.com/kailas-cloud/merchstudio/internal/transport/flapjack"
	healthuc "github.com/kailas-cloud/merchstudio/internal/usecase/health"
	studiouc "github.com/kailas-cloud/merchstudio/internal/usecase/studio"
)

// Internal interface for substitution in tests.
type studioUseCase interface {
	Open(ctx context.Context, index, query string) (domsession.Session, error)
	Get(ctx context.Context, id string) (domsession.Session, error)
	ChangeQuery(ctx context.Context, id, query string, revision int) (domsession.Session, error)
	Refresh(ctx context.Context, id string, revision int) (domsession.Session, error)
	Apply(ctx context.Context, id string, action editor.Action, revision int) (domsession.Session, error)
	Save(ctx context.Context, id string, revision int) (rule.Rule, domsession.Session, error)
	DeleteRule(ctx context.Context, id string) (domsession.Session, error)
	Close(ctx context.Context, id string) error
}

// Client is the merchstudio SDK entry point.
type Client struct {
	sessions  *memSessions
	studioSvc studioUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client for the configured engine.
// The provided context is used for the initial engine health check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.baseURL == "" {
		return nil, errors.New("merchstudio: engine address required (use WithEngine)")
	}

	engine, err := flapjack.New(flapjack.Config{
		BaseURL:     cfg.baseURL,
		AppID:       cfg.appID,
		APIKey:      cfg.apiKey,
		Timeout:     cfg.timeout,
		HitsPerPage: cfg.hitsPerPage,
		HTTPClient:  cfg.httpClient,
		Logger:      zap.NewNop(),
	})
	if err != nil {
		return nil, fmt.Errorf("merchstudio: create engine client: %w", err)
	}
	if err := engine.HealthCheck(ctx); err != nil {
		return nil, fmt.Errorf("merchstudio: engine not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	sessions := newMemSessions()
	return &Client{
		sessions:  sessions,
		studioSvc: studiouc.New(sessions, nil, engine, engine),
		healthSvc: healthuc.New(sessions, engine),
		obs:       obs,
	}, nil
}

// Close drops every open session.
func (c *Client) Close() {
	if c.sessions != nil {
		c.sessions.clear()
	}
}

// Studio returns the editor for one engine index.
func (c *Client) Studio(index string) *StudioService {
	return &StudioService{index: index, svc: c.studioSvc, obs: c.obs}
}

// observed runs fn and records it under op.
func observed[T any](obs *observer, op string, fn func() (T, error)) (T, error) {
	start := time.Now()
	v, err := fn()
	obs.observe(op, start, err)
	return v, err
}
