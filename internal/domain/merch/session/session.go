// Package session models one operator editing session: an index, the active query, the result
// set fetched for it and the overrides applied on top.
package session

import (
	"fmt"
	"regexp"
	"time"

	"github.com/kailas-cloud/merchstudio/internal/domain/merch/editor"
	"github.com/kailas-cloud/merchstudio/internal/domain/merch/override"
	"github.com/kailas-cloud/merchstudio/internal/domain/merch/ranking"
	"github.com/kailas-cloud/merchstudio/internal/domain/merch/result"
	"github.com/kailas-cloud/merchstudio/internal/domain/merch/rule"
)

var indexRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// ValidateIndex checks an index name.
func ValidateIndex(index string) error {
	if index == "" {
		return fmt.Errorf("index name is required")
	}
	if len(index) > 256 {
		return fmt.Errorf("index name too long (max 256)")
	}
	if !indexRegex.MatchString(index) {
		return fmt.Errorf("index name must be alphanumeric with dots, underscores and hyphens")
	}
	return nil
}

// Session is an editing session (immutable value object).
type Session struct {
	id        string
	index     string
	results   result.Set
	overrides override.Store
	revision  int
	createdAt int64
	updatedAt int64
}

// New validates and creates a session at revision 1.
func New(id, index string, results result.Set, overrides override.Store) (Session, error) {
	if id == "" {
		return Session{}, fmt.Errorf("session id is required")
	}
	if err := ValidateIndex(index); err != nil {
		return Session{}, err
	}
	now := time.Now().UnixMilli()
	return Session{
		id:        id,
		index:     index,
		results:   results,
		overrides: overrides,
		revision:  1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct creates a session without validation (storage hydration).
func Reconstruct(
	id, index string, results result.Set, overrides override.Store,
	revision int, createdAt, updatedAt int64,
) Session {
	return Session{
		id:        id,
		index:     index,
		results:   results,
		overrides: overrides,
		revision:  revision,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// ID returns the session identifier.
func (s Session) ID() string { return s.id }

// Index returns the index being merchandised.
func (s Session) Index() string { return s.index }

// Query returns the active query string.
func (s Session) Query() string { return s.results.Query() }

// Results returns the base result set for the active query.
func (s Session) Results() result.Set { return s.results }

// Overrides returns the current override store.
func (s Session) Overrides() override.Store { return s.overrides }

// Revision returns the optimistic concurrency version.
func (s Session) Revision() int { return s.revision }

// CreatedAt returns the creation timestamp (unix millis).
func (s Session) CreatedAt() int64 { return s.createdAt }

// UpdatedAt returns the last change timestamp (unix millis).
func (s Session) UpdatedAt() int64 { return s.updatedAt }

// RuleID returns the identifier the active query compiles to.
func (s Session) RuleID() string { return rule.ID(s.Query()) }

// Display reconciles the result set with the overrides.
func (s Session) Display() []ranking.Entry {
	return ranking.Reconcile(s.results, s.overrides)
}

// Editor returns a position editor bound to the current results.
func (s Session) Editor() editor.Editor {
	return editor.New(s.results)
}

// WithResults swaps in a re-fetched result set for the same query. Overrides are kept.
func (s Session) WithResults(results result.Set) Session {
	s.results = results
	return s.bump()
}

// WithQuery switches to a new query. The overrides are replaced wholesale.
func (s Session) WithQuery(results result.Set, overrides override.Store) Session {
	s.results = results
	s.overrides = overrides
	return s.bump()
}

// WithOverrides applies an edited override store. A store whose version did not move is a
// no-op and leaves the revision alone.
func (s Session) WithOverrides(overrides override.Store) Session {
	if overrides.Version() == s.overrides.Version() {
		return s
	}
	s.overrides = overrides
	return s.bump()
}

func (s Session) bump() Session {
	s.revision++
	s.updatedAt = time.Now().UnixMilli()
	return s
}
