package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search outcomes.
const (
	SearchOK       = "ok"
	SearchDegraded = "degraded"
	SearchError    = "error"
)

var (
	searchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "schemematch",
			Name:      "search_total",
			Help:      "Search requests by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	eligibilityTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "schemematch",
			Name:      "eligibility_evaluations_total",
			Help:      "Eligibility evaluations by resulting status",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(searchTotal)
	prometheus.MustRegister(eligibilityTotal)
}

// ObserveSearch counts one search by mode and outcome.
func ObserveSearch(mode, outcome string) {
	searchTotal.WithLabelValues(mode, outcome).Inc()
}

// ObserveEligibility counts one eligibility evaluation by status.
func ObserveEligibility(status string) {
	eligibilityTotal.WithLabelValues(status).Inc()
}

// EligibilityCounter returns the evaluation counter for status.
func EligibilityCounter(status string) prometheus.Counter {
	return eligibilityTotal.WithLabelValues(status)
}
