package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/kailas-cloud/merchstudio/internal/domain"
	"github.com/kailas-cloud/merchstudio/internal/logger"
)

// ErrorCode is the machine-readable code of an error response.
type ErrorCode string

// Error codes returned by the API.
const (
	CodeBadRequest         ErrorCode = "bad_request"
	CodeUnauthorized       ErrorCode = "unauthorized"
	CodeValidationFailed   ErrorCode = "validation_failed"
	CodeSessionNotFound    ErrorCode = "session_not_found"
	CodeRuleNotFound       ErrorCode = "rule_not_found"
	CodeIndexNotFound      ErrorCode = "index_not_found"
	CodeInvalidAction      ErrorCode = "invalid_action"
	CodeInvalidRule        ErrorCode = "invalid_rule"
	CodeNothingToSave      ErrorCode = "nothing_to_save"
	CodeStaleResponse      ErrorCode = "stale_response"
	CodeRevisionConflict   ErrorCode = "revision_conflict"
	CodePersistenceFailed  ErrorCode = "persistence_failed"
	CodeEngineUnavailable  ErrorCode = "engine_unavailable"
	CodeInternalError      ErrorCode = "internal_error"
	CodePreconditionFailed ErrorCode = "precondition_failed"
)

// ErrorResponse is the JSON body of every error.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		revisionConflictHandler,
		sentinelHandler(domain.ErrSessionNotFound, http.StatusNotFound, CodeSessionNotFound),
		sentinelHandler(domain.ErrRuleNotFound, http.StatusNotFound, CodeRuleNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeIndexNotFound),
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidAction, http.StatusBadRequest, CodeInvalidAction),
		sentinelHandler(domain.ErrInvalidRule, http.StatusUnprocessableEntity, CodeInvalidRule),
		sentinelHandler(domain.ErrNothingToSave, http.StatusUnprocessableEntity, CodeNothingToSave),
		sentinelHandler(domain.ErrStaleResponse, http.StatusConflict, CodeStaleResponse),
		sentinelHandler(domain.ErrPersistence, http.StatusBadGateway, CodePersistenceFailed),
		sentinelHandler(domain.ErrEngineUnavailable, http.StatusBadGateway, CodeEngineUnavailable),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
// ErrPersistence is checked before the engine sentinel so a failed save reads as such.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrRevisionConflict,
		domain.ErrSessionNotFound,
		domain.ErrRuleNotFound,
		domain.ErrNotFound,
		domain.ErrInvalidInput,
		domain.ErrInvalidAction,
		domain.ErrInvalidRule,
		domain.ErrNothingToSave,
		domain.ErrStaleResponse,
		domain.ErrPersistence,
		domain.ErrEngineUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// revisionConflictHandler handles ErrRevisionConflict with ETag header and extra fields.
func revisionConflictHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrRevisionConflict) {
		return false
	}
	var rce *domain.RevisionConflictError
	if errors.As(err, &rce) {
		w.Header().Set("ETag", etag(rce.CurrentRevision))
		writeJSON(w, http.StatusConflict, map[string]any{
			"code":             CodeRevisionConflict,
			"message":          msg,
			"current_revision": rce.CurrentRevision,
		})
		return true
	}
	writeError(w, http.StatusConflict, CodeRevisionConflict, msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

func etag(revision int) string {
	return strconv.Quote(strconv.Itoa(revision))
}

// ifMatch parses the If-Match header into a revision. A missing header yields 0.
func ifMatch(r *http.Request) (int, error) {
	h := r.Header.Get("If-Match")
	if h == "" || h == "*" {
		return 0, nil
	}
	if unq, err := strconv.Unquote(h); err == nil {
		h = unq
	}
	rev, err := strconv.Atoi(h)
	if err != nil || rev < 0 {
		return 0, errors.New("If-Match must carry a session revision")
	}
	return rev, nil
}
