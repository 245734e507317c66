package studio

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/kailas-cloud/merchstudio/internal/domain"
	domhistory "github.com/kailas-cloud/merchstudio/internal/domain/merch/history"
	"github.com/kailas-cloud/merchstudio/internal/domain/merch/result"
	"github.com/kailas-cloud/merchstudio/internal/domain/merch/rule"
	domsession "github.com/kailas-cloud/merchstudio/internal/domain/merch/session"
)

var testNow = time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)

// --- Mocks ---

type mockSessions struct {
	data     map[string]domsession.Session
	saveErr  error
	saves    int
	getDelay time.Duration
}

func (m *mockSessions) Save(_ context.Context, s domsession.Session) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.data[s.ID()] = s
	return nil
}

func (m *mockSessions) Get(_ context.Context, id string) (domsession.Session, error) {
	time.Sleep(m.getDelay)
	s, ok := m.data[id]
	if !ok {
		return domsession.Session{}, domain.ErrSessionNotFound
	}
	return s, nil
}

func (m *mockSessions) Delete(_ context.Context, id string) error {
	if _, ok := m.data[id]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(m.data, id)
	return nil
}

type historyCall struct {
	index, ruleID string
	entry         domhistory.Entry
}

type mockHistory struct {
	calls     []historyCall
	appendErr error
}

func (m *mockHistory) Append(_ context.Context, index, ruleID string, e domhistory.Entry) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.calls = append(m.calls, historyCall{index: index, ruleID: ruleID, entry: e})
	return nil
}

func (m *mockHistory) List(_ context.Context, index, ruleID string, limit int) ([]domhistory.Entry, error) {
	var out []domhistory.Entry
	for i := len(m.calls) - 1; i >= 0; i-- {
		c := m.calls[i]
		if c.index == index && c.ruleID == ruleID {
			out = append(out, c.entry)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// mockEngine is an in-memory search engine and rule store.
type mockEngine struct {
	hits     map[string][]string // query -> ids in relevance order
	answered map[string]string   // query -> query echoed back (stale simulation)
	rules    map[string]rule.Rule
	pages    rule.Page

	searchErr error
	putErr    error
	getErr    error
	deleteErr error
	puts      int
}

func newMockEngine() *mockEngine {
	return &mockEngine{
		hits: map[string][]string{
			"laptop": {"A", "B", "C", "D"},
			"phone":  {"P1", "P2", "P3"},
		},
		answered: map[string]string{},
		rules:    map[string]rule.Rule{},
	}
}

func (m *mockEngine) Search(_ context.Context, _, query string) (result.Set, error) {
	if m.searchErr != nil {
		return result.Set{}, m.searchErr
	}
	ids := m.hits[query]
	hits := make([]result.Hit, len(ids))
	for i, id := range ids {
		hits[i] = result.Hit{ID: id, Fields: map[string]any{"name": "item " + id}}
	}
	q := query
	if a, ok := m.answered[query]; ok {
		q = a
	}
	return result.NewSet(q, hits), nil
}

func (m *mockEngine) PutRule(_ context.Context, _ string, r rule.Rule) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.puts++
	m.rules[r.ObjectID] = r
	return nil
}

func (m *mockEngine) GetRule(_ context.Context, _, id string) (rule.Rule, error) {
	if m.getErr != nil {
		return rule.Rule{}, m.getErr
	}
	r, ok := m.rules[id]
	if !ok {
		return rule.Rule{}, fmt.Errorf("get_rule: %w", domain.ErrRuleNotFound)
	}
	return r, nil
}

func (m *mockEngine) DeleteRule(_ context.Context, _, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.rules[id]; !ok {
		return fmt.Errorf("delete_rule: %w", domain.ErrRuleNotFound)
	}
	delete(m.rules, id)
	return nil
}

func (m *mockEngine) SearchRules(context.Context, string, string, int, int) (rule.Page, error) {
	return m.pages, nil
}

type fixture struct {
	svc      *Service
	sessions *mockSessions
	history  *mockHistory
	engine   *mockEngine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		sessions: &mockSessions{data: map[string]domsession.Session{}},
		history:  &mockHistory{},
		engine:   newMockEngine(),
	}
	n := 0
	f.svc = New(f.sessions, f.history, f.engine, f.engine).
		WithClock(func() time.Time { return testNow }).
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("sess-%d", n)
		})
	return f
}
