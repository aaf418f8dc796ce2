package result

import (
	"testing"

	"github.com/kailas-cloud/schemematch/internal/domain/eligibility"
)

func TestStatus(t *testing.T) {
	s := SchemeWithScore{Score: 0.9}
	if s.Status() != eligibility.StatusUnknown {
		t.Errorf("Status() without eligibility = %q", s.Status())
	}

	s.Eligibility = &eligibility.Result{Status: eligibility.StatusEligible}
	if s.Status() != eligibility.StatusEligible {
		t.Errorf("Status() = %q", s.Status())
	}
}
