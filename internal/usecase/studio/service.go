package studio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/merchstudio/internal/domain"
	"github.com/kailas-cloud/merchstudio/internal/domain/merch/editor"
	domhistory "github.com/kailas-cloud/merchstudio/internal/domain/merch/history"
	"github.com/kailas-cloud/merchstudio/internal/domain/merch/override"
	"github.com/kailas-cloud/merchstudio/internal/domain/merch/ranking"
	"github.com/kailas-cloud/merchstudio/internal/domain/merch/result"
	"github.com/kailas-cloud/merchstudio/internal/domain/merch/rule"
	domsession "github.com/kailas-cloud/merchstudio/internal/domain/merch/session"
	"github.com/kailas-cloud/merchstudio/internal/logger"
	"github.com/kailas-cloud/merchstudio/internal/metrics"
)

// Service runs merchandising sessions: search, edit, save as rule.
type Service struct {
	sessions SessionRepository
	history  HistoryRepository
	searcher Searcher
	rules    RuleStore
	newID    func() string
	now      func() time.Time
	locks    sessionLocks
}

// New creates a studio service. history can be nil.
func New(sessions SessionRepository, history HistoryRepository, searcher Searcher, rules RuleStore) *Service {
	return &Service{
		sessions: sessions,
		history:  history,
		searcher: searcher,
		rules:    rules,
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// WithClock overrides the clock used for history timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithIDGenerator overrides session id generation.
func (s *Service) WithIDGenerator(fn func() string) *Service {
	s.newID = fn
	return s
}

// Now returns the service clock reading.
func (s *Service) Now() time.Time { return s.now() }

// Open starts a session for query on index. An existing rule for the query is loaded into the
// override store.
func (s *Service) Open(ctx context.Context, index, query string) (domsession.Session, error) {
	if err := domsession.ValidateIndex(index); err != nil {
		return domsession.Session{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	set, err := s.search(ctx, index, query)
	if err != nil {
		return domsession.Session{}, err
	}
	overrides, err := s.loadOverrides(ctx, index, query)
	if err != nil {
		return domsession.Session{}, err
	}

	sess, err := domsession.New(s.newID(), index, set, overrides)
	if err != nil {
		return domsession.Session{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return domsession.Session{}, fmt.Errorf("save session: %w", err)
	}

	logger.FromContext(ctx).Debug("Session opened",
		zap.String("session_id", sess.ID()),
		zap.String("index", index),
		zap.Int("hits", set.Len()),
		zap.Int("pins", overrides.Len()),
	)
	return sess, nil
}

// Get returns a session.
func (s *Service) Get(ctx context.Context, id string) (domsession.Session, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return domsession.Session{}, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

// ChangeQuery switches the session to a new query. Overrides are replaced wholesale by the
// saved rule for the new query, or emptied.
func (s *Service) ChangeQuery(ctx context.Context, id, query string, revision int) (domsession.Session, error) {
	defer s.locks.lock(id)()

	sess, err := s.load(ctx, id, revision)
	if err != nil {
		return domsession.Session{}, err
	}

	set, err := s.search(ctx, sess.Index(), query)
	if err != nil {
		return domsession.Session{}, err
	}
	overrides, err := s.loadOverrides(ctx, sess.Index(), query)
	if err != nil {
		return domsession.Session{}, err
	}

	return s.store(ctx, sess.WithQuery(set, overrides))
}

// Refresh re-runs the active query. Overrides are kept; pins whose items left the results stay
// in the store and are skipped by the reconciler.
func (s *Service) Refresh(ctx context.Context, id string, revision int) (domsession.Session, error) {
	defer s.locks.lock(id)()

	sess, err := s.load(ctx, id, revision)
	if err != nil {
		return domsession.Session{}, err
	}

	set, err := s.search(ctx, sess.Index(), sess.Query())
	if err != nil {
		return domsession.Session{}, err
	}
	return s.store(ctx, sess.WithResults(set))
}

// Apply runs one position editor action.
func (s *Service) Apply(ctx context.Context, id string, action editor.Action, revision int) (domsession.Session, error) {
	defer s.locks.lock(id)()

	sess, err := s.load(ctx, id, revision)
	if err != nil {
		return domsession.Session{}, err
	}

	overrides, err := sess.Editor().Apply(sess.Overrides(), action)
	if err != nil {
		return domsession.Session{}, fmt.Errorf("apply %s: %w", action.Kind, err)
	}

	updated := sess.WithOverrides(overrides)
	if updated.Revision() == sess.Revision() {
		return sess, nil
	}
	metrics.StudioEditsTotal.WithLabelValues(string(action.Kind)).Inc()
	return s.store(ctx, updated)
}

// Save compiles the overrides into a rule and persists it. On failure the session keeps its
// overrides so the operator can retry.
func (s *Service) Save(ctx context.Context, id string, revision int) (rule.Rule, domsession.Session, error) {
	defer s.locks.lock(id)()

	sess, err := s.load(ctx, id, revision)
	if err != nil {
		return rule.Rule{}, domsession.Session{}, err
	}
	if sess.Overrides().IsEmpty() {
		metrics.RuleSavesTotal.WithLabelValues("empty").Inc()
		return rule.Rule{}, sess, domain.ErrNothingToSave
	}

	r := rule.Compile(sess.Query(), sess.Overrides())
	if err := s.rules.PutRule(ctx, sess.Index(), r); err != nil {
		metrics.RuleSavesTotal.WithLabelValues("error").Inc()
		logger.FromContext(ctx).Error("Rule save failed",
			zap.String("session_id", id),
			zap.String("rule_id", r.ObjectID),
			zap.Error(err),
		)
		return rule.Rule{}, sess, fmt.Errorf("%w: put rule %s: %w", domain.ErrPersistence, r.ObjectID, err)
	}
	metrics.RuleSavesTotal.WithLabelValues("success").Inc()

	s.record(ctx, sess.Index(), r.ObjectID, domhistory.Saved(r, s.now()))
	return r, sess, nil
}

// DeleteRule removes the saved rule for the active query. The overrides stay in the session.
func (s *Service) DeleteRule(ctx context.Context, id string) (domsession.Session, error) {
	defer s.locks.lock(id)()

	sess, err := s.load(ctx, id, 0)
	if err != nil {
		return domsession.Session{}, err
	}

	ruleID := sess.RuleID()
	if err := s.rules.DeleteRule(ctx, sess.Index(), ruleID); err != nil {
		if errors.Is(err, domain.ErrRuleNotFound) {
			return domsession.Session{}, fmt.Errorf("delete rule %s: %w", ruleID, err)
		}
		return domsession.Session{}, fmt.Errorf("%w: delete rule %s: %w", domain.ErrPersistence, ruleID, err)
	}

	s.record(ctx, sess.Index(), ruleID, domhistory.Deleted(s.now()))
	return sess, nil
}

// Close drops a session.
func (s *Service) Close(ctx context.Context, id string) error {
	defer s.locks.lock(id)()

	if err := s.sessions.Delete(ctx, id); err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	return nil
}

// ListRules pages through the rules of index. With merchOnly, rules outside the studio
// namespace are dropped from the page.
func (s *Service) ListRules(
	ctx context.Context, index, query string, page, hitsPerPage int, merchOnly bool,
) (rule.Page, error) {
	if err := domsession.ValidateIndex(index); err != nil {
		return rule.Page{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	out, err := s.rules.SearchRules(ctx, index, query, page, hitsPerPage)
	if err != nil {
		return rule.Page{}, fmt.Errorf("search rules: %w", err)
	}
	if merchOnly {
		kept := make([]rule.Rule, 0, len(out.Hits))
		for _, r := range out.Hits {
			if r.IsMerchandising() {
				kept = append(kept, r)
			}
		}
		out.Hits = kept
	}
	return out, nil
}

// History returns the recorded saves and deletes of a rule, newest first.
func (s *Service) History(ctx context.Context, index, ruleID string, limit int) ([]domhistory.Entry, error) {
	if s.history == nil {
		return []domhistory.Entry{}, nil
	}
	entries, err := s.history.List(ctx, index, ruleID, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return entries, nil
}

// Preview applies r to set the way the engine does at query time. fired reports whether the
// rule matched the set's query; when it did not, the base order is returned.
func Preview(r rule.Rule, set result.Set, now time.Time) (items []result.Item, fired bool) {
	if !r.Matches(set.Query(), now) {
		return set.Items(), false
	}
	return ranking.Preview(set, rule.Effects(r), rule.HiddenIDs(r)), true
}

// load fetches a session and checks the caller's revision (0 skips the check). Callers hold
// the session lock until the matching store.
func (s *Service) load(ctx context.Context, id string, revision int) (domsession.Session, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return domsession.Session{}, fmt.Errorf("get session: %w", err)
	}
	if revision > 0 && revision != sess.Revision() {
		return domsession.Session{}, domain.NewRevisionConflict(sess.Revision())
	}
	return sess, nil
}

func (s *Service) store(ctx context.Context, sess domsession.Session) (domsession.Session, error) {
	if err := s.sessions.Save(ctx, sess); err != nil {
		return domsession.Session{}, fmt.Errorf("save session: %w", err)
	}
	return sess, nil
}

// search runs query and discards responses answering a different query.
func (s *Service) search(ctx context.Context, index, query string) (result.Set, error) {
	set, err := s.searcher.Search(ctx, index, query)
	if err != nil {
		return result.Set{}, fmt.Errorf("search %q: %w", query, err)
	}
	if set.Query() != query {
		metrics.StaleResponsesTotal.Inc()
		logger.FromContext(ctx).Warn("Discarding stale search response",
			zap.String("index", index),
			zap.String("query", query),
			zap.String("answered", set.Query()),
		)
		return result.Set{}, fmt.Errorf("search %q answered %q: %w", query, set.Query(), domain.ErrStaleResponse)
	}
	return set, nil
}

// loadOverrides decompiles the saved rule for query, if any.
func (s *Service) loadOverrides(ctx context.Context, index, query string) (override.Store, error) {
	id := rule.ID(query)
	r, err := s.rules.GetRule(ctx, index, id)
	if err != nil {
		if errors.Is(err, domain.ErrRuleNotFound) {
			return override.New(), nil
		}
		return override.Store{}, fmt.Errorf("get rule %s: %w", id, err)
	}

	_, overrides, err := rule.Decompile(r)
	if err != nil {
		logger.FromContext(ctx).Warn("Ignoring unreadable saved rule",
			zap.String("rule_id", id),
			zap.Error(err),
		)
		return override.New(), nil
	}
	return overrides, nil
}

// record appends to the audit trail. The rule operation already succeeded, so failures are
// logged, not returned.
func (s *Service) record(ctx context.Context, index, ruleID string, e domhistory.Entry) {
	if s.history == nil {
		return
	}
	if err := s.history.Append(ctx, index, ruleID, e); err != nil {
		logger.FromContext(ctx).Warn("History append failed",
			zap.String("rule_id", ruleID),
			zap.String("op", string(e.Op)),
			zap.Error(err),
		)
	}
}
