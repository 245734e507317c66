package chi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/merchstudio/internal/domain"
	domhistory "github.com/kailas-cloud/merchstudio/internal/domain/merch/history"
	"github.com/kailas-cloud/merchstudio/internal/domain/merch/result"
	"github.com/kailas-cloud/merchstudio/internal/domain/merch/rule"
	domsession "github.com/kailas-cloud/merchstudio/internal/domain/merch/session"
	healthuc "github.com/kailas-cloud/merchstudio/internal/usecase/health"
	studiouc "github.com/kailas-cloud/merchstudio/internal/usecase/studio"
)

// --- Fakes ---

type memSessions struct {
	mu   sync.Mutex
	data map[string]domsession.Session
}

func (m *memSessions) Save(_ context.Context, s domsession.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[s.ID()] = s
	return nil
}

func (m *memSessions) Get(_ context.Context, id string) (domsession.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.data[id]
	if !ok {
		return domsession.Session{}, domain.ErrSessionNotFound
	}
	return s, nil
}

func (m *memSessions) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[id]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(m.data, id)
	return nil
}

type memHistory struct {
	entries map[string][]domhistory.Entry
}

func (m *memHistory) Append(_ context.Context, index, ruleID string, e domhistory.Entry) error {
	k := index + "/" + ruleID
	m.entries[k] = append([]domhistory.Entry{e}, m.entries[k]...)
	return nil
}

func (m *memHistory) List(_ context.Context, index, ruleID string, limit int) ([]domhistory.Entry, error) {
	out := m.entries[index+"/"+ruleID]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeEngine struct {
	hits    map[string][]string
	rules   map[string]rule.Rule
	down    bool
	lastHPP int
}

func (f *fakeEngine) Search(_ context.Context, index, query string) (result.Set, error) {
	if f.down {
		return result.Set{}, domain.ErrEngineUnavailable
	}
	if index == "missing" {
		return result.Set{}, fmt.Errorf("search: %w", domain.ErrNotFound)
	}
	ids := f.hits[query]
	hits := make([]result.Hit, len(ids))
	for i, id := range ids {
		hits[i] = result.Hit{ID: id, Fields: map[string]any{"title": "Item " + id}}
	}
	return result.NewSet(query, hits), nil
}

func (f *fakeEngine) PutRule(_ context.Context, _ string, r rule.Rule) error {
	if f.down {
		return domain.ErrEngineUnavailable
	}
	f.rules[r.ObjectID] = r
	return nil
}

func (f *fakeEngine) GetRule(_ context.Context, _, id string) (rule.Rule, error) {
	r, ok := f.rules[id]
	if !ok {
		return rule.Rule{}, domain.ErrRuleNotFound
	}
	return r, nil
}

func (f *fakeEngine) DeleteRule(_ context.Context, _, id string) error {
	if _, ok := f.rules[id]; !ok {
		return domain.ErrRuleNotFound
	}
	delete(f.rules, id)
	return nil
}

func (f *fakeEngine) SearchRules(_ context.Context, _, _ string, page, hitsPerPage int) (rule.Page, error) {
	f.lastHPP = hitsPerPage
	hits := make([]rule.Rule, 0, len(f.rules))
	for _, r := range f.rules {
		hits = append(hits, r)
	}
	return rule.Page{Hits: hits, NbHits: len(hits), Page: page, NbPages: 1}, nil
}

func (f *fakeEngine) HealthCheck(context.Context) error {
	if f.down {
		return domain.ErrEngineUnavailable
	}
	return nil
}

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

// --- Harness ---

type harness struct {
	t      *testing.T
	srv    *httptest.Server
	engine *fakeEngine
}

func newHarness(t *testing.T, apiKeys ...string) *harness {
	t.Helper()
	engine := &fakeEngine{
		hits:  map[string][]string{"laptop": {"A", "B", "C", "D"}, "phone": {"P1", "P2"}},
		rules: map[string]rule.Rule{},
	}
	n := 0
	studio := studiouc.New(
		&memSessions{data: map[string]domsession.Session{}},
		&memHistory{entries: map[string][]domhistory.Entry{}},
		engine, engine,
	).
		WithClock(func() time.Time { return time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC) }).
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("s%d", n)
		})
	health := healthuc.New(okPinger{}, engine)

	srv := httptest.NewServer(NewServer(studio, health, zap.NewNop()).Router(apiKeys))
	t.Cleanup(srv.Close)
	return &harness{t: t, srv: srv, engine: engine}
}

func (h *harness) do(method, path, body string, headers ...string) *http.Response {
	h.t.Helper()
	var req *http.Request
	var err error
	if body == "" {
		req, err = http.NewRequest(method, h.srv.URL+path, http.NoBody)
	} else {
		req, err = http.NewRequest(method, h.srv.URL+path, strings.NewReader(body))
	}
	if err != nil {
		h.t.Fatalf("new request: %v", err)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := h.srv.Client().Do(req)
	if err != nil {
		h.t.Fatalf("%s %s: %v", method, path, err)
	}
	h.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}
