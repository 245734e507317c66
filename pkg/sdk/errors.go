package merchstudio

import "github.com/kailas-cloud/merchstudio/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound          = domain.ErrNotFound
	ErrSessionNotFound   = domain.ErrSessionNotFound
	ErrRuleNotFound      = domain.ErrRuleNotFound
	ErrInvalidInput      = domain.ErrInvalidInput
	ErrInvalidAction     = domain.ErrInvalidAction
	ErrInvalidRule       = domain.ErrInvalidRule
	ErrNothingToSave     = domain.ErrNothingToSave
	ErrStaleResponse     = domain.ErrStaleResponse
	ErrPersistence       = domain.ErrPersistence
	ErrEngineUnavailable = domain.ErrEngineUnavailable
	ErrRevisionConflict  = domain.ErrRevisionConflict
)
