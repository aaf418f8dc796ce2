package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveSearch(t *testing.T) {
	before := testutil.ToFloat64(searchTotal.WithLabelValues("hybrid", SearchDegraded))
	ObserveSearch("hybrid", SearchDegraded)
	after := testutil.ToFloat64(searchTotal.WithLabelValues("hybrid", SearchDegraded))
	if after-before != 1 {
		t.Errorf("expected counter to grow by 1, got %f", after-before)
	}
}

func TestObserveEligibility(t *testing.T) {
	before := testutil.ToFloat64(eligibilityTotal.WithLabelValues("eligible"))
	ObserveEligibility("eligible")
	ObserveEligibility("eligible")
	after := testutil.ToFloat64(eligibilityTotal.WithLabelValues("eligible"))
	if after-before != 2 {
		t.Errorf("expected counter to grow by 2, got %f", after-before)
	}
}
