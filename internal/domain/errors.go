package domain

import (
	"errors"
)

var (
	// ErrRetrieval signals that the scheme corpus could not be queried.
	// It is the only fatal search error: without the corpus there are no candidates.
	ErrRetrieval = errors.New("search unavailable")
	// ErrEmbeddingUnavailable signals an embedding provider failure (quota, timeout, transport).
	// Callers recover from it by falling back to lexical-only ranking.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")
	// ErrProfileNotFound signals a missing user profile.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrSchemeNotFound signals a missing scheme.
	ErrSchemeNotFound = errors.New("scheme not found")
	// ErrInvalidRequest signals malformed caller input.
	ErrInvalidRequest = errors.New("invalid request")
)
