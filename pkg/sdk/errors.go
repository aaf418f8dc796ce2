package schemematch

import "github.com/kailas-cloud/schemematch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrRetrieval            = domain.ErrRetrieval
	ErrEmbeddingUnavailable = domain.ErrEmbeddingUnavailable
	ErrProfileNotFound      = domain.ErrProfileNotFound
	ErrSchemeNotFound       = domain.ErrSchemeNotFound
	ErrInvalidRequest       = domain.ErrInvalidRequest
)
