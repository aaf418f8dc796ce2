package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/schemematch/internal/domain/profile"
	"github.com/kailas-cloud/schemematch/internal/domain/search/filter"
	"github.com/kailas-cloud/schemematch/internal/domain/search/mode"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed query length in bytes.
	MaxQueryLength = 1024
	DefaultLimit   = 20
	MaxLimit       = 100
	MaxOffset      = 1000
)

// SmartSearchQuery is a validated orchestrated search.
type SmartSearchQuery struct {
	rawText    string
	searchMode mode.Mode
	filter     filter.Filter
	limit      int
	offset     int
	profile    *profile.UserProfile
	userID     string
}

// New validates and normalizes search parameters.
// Defaults: mode=hybrid, limit=20. Limit is clamped to MaxLimit.
func New(rawText string, m mode.Mode, f filter.Filter, limit, offset int) (SmartSearchQuery, error) {
	rawText = strings.TrimSpace(rawText)
	if rawText == "" {
		return SmartSearchQuery{}, fmt.Errorf("query is required")
	}
	if len(rawText) > MaxQueryLength {
		return SmartSearchQuery{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if m == "" {
		m = mode.Hybrid
	}
	if !m.IsValid() {
		return SmartSearchQuery{}, fmt.Errorf("invalid search mode: %q", m)
	}
	if err := f.Validate(); err != nil {
		return SmartSearchQuery{}, err
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		return SmartSearchQuery{}, fmt.Errorf("offset must not be negative")
	}
	if offset > MaxOffset {
		return SmartSearchQuery{}, fmt.Errorf("offset too large (max %d)", MaxOffset)
	}

	return SmartSearchQuery{
		rawText:    rawText,
		searchMode: m,
		filter:     f,
		limit:      limit,
		offset:     offset,
	}, nil
}

// WithProfile attaches an explicit profile. It wins over any stored profile.
func (q SmartSearchQuery) WithProfile(p *profile.UserProfile) SmartSearchQuery {
	q.profile = p
	return q
}

// WithUserID names the user whose stored profile should be used.
func (q SmartSearchQuery) WithUserID(userID string) SmartSearchQuery {
	q.userID = strings.TrimSpace(userID)
	return q
}

// RawText returns the trimmed query text.
func (q *SmartSearchQuery) RawText() string { return q.rawText }

// Mode returns the retrieval strategy.
func (q *SmartSearchQuery) Mode() mode.Mode { return q.searchMode }

// Filter returns the explicit filter.
func (q *SmartSearchQuery) Filter() filter.Filter { return q.filter }

// Limit returns the page size.
func (q *SmartSearchQuery) Limit() int { return q.limit }

// Offset returns the page start.
func (q *SmartSearchQuery) Offset() int { return q.offset }

// Profile returns the explicit profile, or nil.
func (q *SmartSearchQuery) Profile() *profile.UserProfile { return q.profile }

// UserID returns the user whose stored profile applies, or empty.
func (q *SmartSearchQuery) UserID() string { return q.userID }

// CandidateLimit is the number of candidates to retrieve so that eligibility
// re-ranking does not lose results that belong on the requested page.
func (q *SmartSearchQuery) CandidateLimit(overfetch int) int {
	if overfetch < 1 {
		overfetch = 1
	}
	return (q.offset + q.limit) * overfetch
}
