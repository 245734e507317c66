package studio

import (
	"context"

	domhistory "github.com/kailas-cloud/merchstudio/internal/domain/merch/history"
	"github.com/kailas-cloud/merchstudio/internal/domain/merch/result"
	"github.com/kailas-cloud/merchstudio/internal/domain/merch/rule"
	domsession "github.com/kailas-cloud/merchstudio/internal/domain/merch/session"
)

// SessionRepository defines the storage contract for editing sessions.
type SessionRepository interface {
	Save(ctx context.Context, s domsession.Session) error
	Get(ctx context.Context, id string) (domsession.Session, error)
	Delete(ctx context.Context, id string) error
}

// HistoryRepository defines the storage contract for the rule audit trail.
type HistoryRepository interface {
	Append(ctx context.Context, index, ruleID string, e domhistory.Entry) error
	List(ctx context.Context, index, ruleID string, limit int) ([]domhistory.Entry, error)
}

// Searcher executes queries against the engine with rules disabled.
type Searcher interface {
	Search(ctx context.Context, index, query string) (result.Set, error)
}

// RuleStore persists rules in the engine.
type RuleStore interface {
	PutRule(ctx context.Context, index string, r rule.Rule) error
	GetRule(ctx context.Context, index, id string) (rule.Rule, error)
	DeleteRule(ctx context.Context, index, id string) error
	SearchRules(ctx context.Context, index, query string, page, hitsPerPage int) (rule.Page, error)
}
