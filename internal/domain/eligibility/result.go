package eligibility

// Status is the eligibility verdict for one (profile, scheme) pair.
type Status string

// Eligibility statuses.
const (
	StatusEligible         Status = "eligible"
	StatusPossiblyEligible Status = "possibly_eligible"
	StatusNotEligible      Status = "not_eligible"
	StatusUnknown          Status = "unknown"
)

// Rank orders statuses for result partitioning: lower ranks come first.
func (s Status) Rank() int {
	switch s {
	case StatusEligible:
		return 0
	case StatusPossiblyEligible:
		return 1
	case StatusUnknown:
		return 2
	case StatusNotEligible:
		return 3
	default:
		return 2
	}
}

// Result is the heuristic verdict with the criteria that produced it.
type Result struct {
	Status            Status   `json:"status"`
	Confidence        int      `json:"confidence"` // 0-100
	MatchedCriteria   []string `json:"matched_criteria"`
	UnmatchedCriteria []string `json:"unmatched_criteria"`
}

// Unknown is the verdict when nothing could be evaluated.
func Unknown() Result {
	return Result{
		Status:            StatusUnknown,
		MatchedCriteria:   []string{},
		UnmatchedCriteria: []string{},
	}
}
