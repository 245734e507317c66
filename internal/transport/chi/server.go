package chi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/merchstudio/internal/domain/merch/result"
	"github.com/kailas-cloud/merchstudio/internal/metrics"
	healthuc "github.com/kailas-cloud/merchstudio/internal/usecase/health"
	studiouc "github.com/kailas-cloud/merchstudio/internal/usecase/studio"
)

const (
	defaultRulesPerPage = 20
	maxRulesPerPage     = 1000
	defaultHistoryLimit = 20

	namespaceMerch = "merch"
	namespaceAll   = "all"
)

// Server is the HTTP API of the merchandising studio.
type Server struct {
	studio        *studiouc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(studio *studiouc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	return &Server{
		studio:        studio,
		health:        health,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// Router builds the chi router with the full middleware chain.
func (s *Server) Router(apiKeys []string) http.Handler {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeBadRequest, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.OpenSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.CloseSession)
			r.Put("/query", s.ChangeQuery)
			r.Post("/refresh", s.Refresh)
			r.Post("/actions", s.ApplyAction)
			r.Post("/save", s.SaveRule)
			r.Delete("/rule", s.DeleteRule)
		})
	})
	r.Get("/indexes/{index}/rules", s.ListRules)
	r.Get("/indexes/{index}/rules/{ruleID}/history", s.RuleHistory)
	r.Post("/preview", s.Preview)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	return r
}

// OpenSession handles POST /sessions.
func (s *Server) OpenSession(w http.ResponseWriter, r *http.Request) {
	var req OpenSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Index == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "index is required")
		return
	}

	sess, err := s.studio.Open(r.Context(), req.Index, req.Query)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("ETag", etag(sess.Revision()))
	w.Header().Set("Location", "/sessions/"+sess.ID())
	writeJSON(w, http.StatusCreated, viewToResponse(sess))
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.studio.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("ETag", etag(sess.Revision()))
	writeJSON(w, http.StatusOK, viewToResponse(sess))
}

// CloseSession handles DELETE /sessions/{id}.
func (s *Server) CloseSession(w http.ResponseWriter, r *http.Request) {
	if err := s.studio.Close(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChangeQuery handles PUT /sessions/{id}/query.
func (s *Server) ChangeQuery(w http.ResponseWriter, r *http.Request) {
	rev, ok := s.revision(w, r)
	if !ok {
		return
	}
	var req ChangeQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Query == nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "query is required")
		return
	}

	sess, err := s.studio.ChangeQuery(r.Context(), chi.URLParam(r, "id"), *req.Query, rev)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("ETag", etag(sess.Revision()))
	writeJSON(w, http.StatusOK, viewToResponse(sess))
}

// Refresh handles POST /sessions/{id}/refresh.
func (s *Server) Refresh(w http.ResponseWriter, r *http.Request) {
	rev, ok := s.revision(w, r)
	if !ok {
		return
	}

	sess, err := s.studio.Refresh(r.Context(), chi.URLParam(r, "id"), rev)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("ETag", etag(sess.Revision()))
	writeJSON(w, http.StatusOK, viewToResponse(sess))
}

// ApplyAction handles POST /sessions/{id}/actions.
func (s *Server) ApplyAction(w http.ResponseWriter, r *http.Request) {
	rev, ok := s.revision(w, r)
	if !ok {
		return
	}
	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	action := actionFromRequest(req)
	if err := action.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidAction, err.Error())
		return
	}

	sess, err := s.studio.Apply(r.Context(), chi.URLParam(r, "id"), action, rev)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("ETag", etag(sess.Revision()))
	writeJSON(w, http.StatusOK, viewToResponse(sess))
}

// SaveRule handles POST /sessions/{id}/save.
func (s *Server) SaveRule(w http.ResponseWriter, r *http.Request) {
	rev, ok := s.revision(w, r)
	if !ok {
		return
	}

	saved, sess, err := s.studio.Save(r.Context(), chi.URLParam(r, "id"), rev)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("ETag", etag(sess.Revision()))
	writeJSON(w, http.StatusOK, SaveResponse{Rule: saved, View: viewToResponse(sess)})
}

// DeleteRule handles DELETE /sessions/{id}/rule.
func (s *Server) DeleteRule(w http.ResponseWriter, r *http.Request) {
	sess, err := s.studio.DeleteRule(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.Header().Set("ETag", etag(sess.Revision()))
	writeJSON(w, http.StatusOK, viewToResponse(sess))
}

// ListRules handles GET /indexes/{index}/rules.
func (s *Server) ListRules(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		query       *string
		page        *int
		hitsPerPage *int
		namespace   *string
	)
	for _, p := range []struct {
		name string
		dest any
	}{
		{"query", &query},
		{"page", &page},
		{"hitsPerPage", &hitsPerPage},
		{"namespace", &namespace},
	} {
		if err := runtime.BindQueryParameter("form", true, false, p.name, q, p.dest); err != nil {
			writeError(w, http.StatusBadRequest, CodeValidationFailed, "Invalid parameter "+p.name)
			return
		}
	}

	hpp := derefInt(hitsPerPage, defaultRulesPerPage)
	if hpp < 1 || hpp > maxRulesPerPage {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "hitsPerPage must be between 1 and 1000")
		return
	}
	pg := derefInt(page, 0)
	if pg < 0 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "page must not be negative")
		return
	}
	merchOnly := false
	switch derefString(namespace) {
	case "", namespaceAll:
	case namespaceMerch:
		merchOnly = true
	default:
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "namespace must be merch or all")
		return
	}

	out, err := s.studio.ListRules(r.Context(), chi.URLParam(r, "index"), derefString(query), pg, hpp, merchOnly)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// RuleHistory handles GET /indexes/{index}/rules/{ruleID}/history.
func (s *Server) RuleHistory(w http.ResponseWriter, r *http.Request) {
	var limit *int
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "Invalid parameter limit")
		return
	}
	n := derefInt(limit, defaultHistoryLimit)
	if n < 1 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "limit must be positive")
		return
	}

	entries, err := s.studio.History(r.Context(), chi.URLParam(r, "index"), chi.URLParam(r, "ruleID"), n)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, historyToResponse(entries))
}

// Preview handles POST /preview.
func (s *Server) Preview(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	hits, err := hitsFromRequest(req.Hits)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	items, fired := studiouc.Preview(req.Rule, result.NewSet(req.Query, hits), s.studio.Now())
	writeJSON(w, http.StatusOK, previewToResponse(items, fired))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// revision reads If-Match; on a malformed header it writes a 412 and returns false.
func (s *Server) revision(w http.ResponseWriter, r *http.Request) (int, bool) {
	rev, err := ifMatch(r)
	if err != nil {
		writeError(w, http.StatusPreconditionFailed, CodePreconditionFailed, err.Error())
		return 0, false
	}
	return rev, true
}

func derefInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
