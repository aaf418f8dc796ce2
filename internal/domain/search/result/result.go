package result

import (
	"github.com/kailas-cloud/schemematch/internal/domain/eligibility"
	"github.com/kailas-cloud/schemematch/internal/domain/scheme"
)

// Hit is a raw retrieval candidate with its backend score.
type Hit struct {
	Scheme scheme.Scheme
	Score  float64
}

// SchemeWithScore is a ranked scheme, annotated with eligibility when a profile was supplied.
type SchemeWithScore struct {
	Scheme      scheme.Scheme       `json:"scheme"`
	Score       float64             `json:"score"`
	Eligibility *eligibility.Result `json:"eligibility,omitempty"`
}

// Status returns the eligibility status, unknown when none is attached.
func (s *SchemeWithScore) Status() eligibility.Status {
	if s.Eligibility == nil {
		return eligibility.StatusUnknown
	}
	return s.Eligibility.Status
}
