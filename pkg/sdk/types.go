package schemematch

import (
	"github.com/kailas-cloud/schemematch/internal/domain/eligibility"
	"github.com/kailas-cloud/schemematch/internal/domain/profile"
	"github.com/kailas-cloud/schemematch/internal/domain/scheme"
	"github.com/kailas-cloud/schemematch/internal/domain/search/filter"
	"github.com/kailas-cloud/schemematch/internal/domain/search/mode"
	"github.com/kailas-cloud/schemematch/internal/domain/search/result"
	"github.com/kailas-cloud/schemematch/internal/usecase/orchestrator"
)

// Public names for the domain types exchanged with the client.
type (
	Scheme            = scheme.Scheme
	Profile           = profile.UserProfile
	Filter            = filter.Filter
	EligibilityResult = eligibility.Result
	EligibilityStatus = eligibility.Status
	RankedScheme      = result.SchemeWithScore
	SearchResult      = orchestrator.SearchResult
)

// SearchMode controls the ranking algorithm.
type SearchMode = mode.Mode

// Search mode constants.
const (
	ModeHybrid   = mode.Hybrid
	ModeSemantic = mode.Semantic
	ModeKeyword  = mode.Keyword
)

// Eligibility status constants.
const (
	StatusEligible         = eligibility.StatusEligible
	StatusPossiblyEligible = eligibility.StatusPossiblyEligible
	StatusNotEligible      = eligibility.StatusNotEligible
	StatusUnknown          = eligibility.StatusUnknown
)

// SearchRequest is a smart search. Query is required; a zero Mode means hybrid
// and a zero Limit means the default page size.
type SearchRequest struct {
	Query   string
	Mode    SearchMode
	Filter  Filter
	UserID  string
	Profile *Profile
	Limit   int
	Offset  int
}
