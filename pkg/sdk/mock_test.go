package merchstudio

import (
	"context"

	"github.com/kailas-cloud/merchstudio/internal/domain/merch/editor"
	"github.com/kailas-cloud/merchstudio/internal/domain/merch/rule"
	domsession "github.com/kailas-cloud/merchstudio/internal/domain/merch/session"
	healthuc "github.com/kailas-cloud/merchstudio/internal/usecase/health"
)

// --- studioUseCase mock ---

type mockStudioUC struct {
	openFn   func(ctx context.Context, index, query string) (domsession.Session, error)
	getFn    func(ctx context.Context, id string) (domsession.Session, error)
	applyFn  func(ctx context.Context, id string, a editor.Action, revision int) (domsession.Session, error)
	saveFn   func(ctx context.Context, id string, revision int) (rule.Rule, domsession.Session, error)
	deleteFn func(ctx context.Context, id string) (domsession.Session, error)
	closeFn  func(ctx context.Context, id string) error
}

func (m *mockStudioUC) Open(ctx context.Context, index, query string) (domsession.Session, error) {
	return m.openFn(ctx, index, query)
}

func (m *mockStudioUC) Get(ctx context.Context, id string) (domsession.Session, error) {
	return m.getFn(ctx, id)
}

func (m *mockStudioUC) ChangeQuery(ctx context.Context, id, _ string, _ int) (domsession.Session, error) {
	return m.getFn(ctx, id)
}

func (m *mockStudioUC) Refresh(ctx context.Context, id string, _ int) (domsession.Session, error) {
	return m.getFn(ctx, id)
}

func (m *mockStudioUC) Apply(
	ctx context.Context, id string, a editor.Action, revision int,
) (domsession.Session, error) {
	return m.applyFn(ctx, id, a, revision)
}

func (m *mockStudioUC) Save(ctx context.Context, id string, revision int) (rule.Rule, domsession.Session, error) {
	return m.saveFn(ctx, id, revision)
}

func (m *mockStudioUC) DeleteRule(ctx context.Context, id string) (domsession.Session, error) {
	return m.deleteFn(ctx, id)
}

func (m *mockStudioUC) Close(ctx context.Context, id string) error {
	return m.closeFn(ctx, id)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }

// --- helpers ---

func testClient(svc studioUseCase, obs *observer) *Client {
	return &Client{studioSvc: svc, obs: obs}
}
