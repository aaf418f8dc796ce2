// Package eligibility derives a heuristic eligibility verdict for a user
// profile against a scheme's free-text eligibility description.
//
// The text is cut into clauses, each clause is run through a table of
// detectors, and every detected criterion is compared against the profile.
// A criterion the profile cannot settle is left out of both result lists and
// only lowers confidence. Verdicts are advisory, never authoritative.
package eligibility

import (
	"math"
	"strings"

	"github.com/kailas-cloud/schemematch/internal/domain/profile"
	"github.com/kailas-cloud/schemematch/internal/domain/scheme"
)

// missingFieldPenalty scales confidence once per distinct profile field
// referenced by an undecided criterion.
const missingFieldPenalty = 0.9

// Engine evaluates eligibility with a fixed detector table. Safe for concurrent use.
type Engine struct {
	detectors []Detector
}

// NewEngine creates an engine. With no detectors it uses DefaultDetectors.
func NewEngine(detectors ...Detector) *Engine {
	if len(detectors) == 0 {
		detectors = DefaultDetectors()
	}
	return &Engine{detectors: detectors}
}

var defaultEngine = NewEngine()

// Check evaluates p against s with the default detector table.
func Check(p *profile.UserProfile, s *scheme.Scheme) Result {
	return defaultEngine.Check(p, s)
}

// Check evaluates p against the scheme's eligibility text.
func (e *Engine) Check(p *profile.UserProfile, s *scheme.Scheme) Result {
	if s == nil {
		return Unknown()
	}
	return e.CheckText(p, s.Eligibility)
}

// CheckText evaluates p against raw eligibility prose.
func (e *Engine) CheckText(p *profile.UserProfile, text string) Result {
	if p == nil {
		p = &profile.UserProfile{}
	}

	res := Unknown()
	seen := make(map[string]bool)
	missing := make(map[string]bool)
	detected, hardMismatch := 0, false

	for _, clause := range SplitClauses(text) {
		lower := strings.ToLower(clause)
		for _, d := range e.detectors {
			c, ok := d.Detect(lower)
			if !ok || seen[c.Label] {
				continue
			}
			seen[c.Label] = true
			detected++

			outcome, field := d.Compare(p, c)
			switch outcome {
			case Match:
				res.MatchedCriteria = append(res.MatchedCriteria, c.Label)
			case Mismatch:
				res.UnmatchedCriteria = append(res.UnmatchedCriteria, c.Label)
				hardMismatch = hardMismatch || d.Hard()
			default:
				if field != "" {
					missing[field] = true
				}
			}
		}
	}

	if detected == 0 {
		return res
	}

	evaluated := len(res.MatchedCriteria) + len(res.UnmatchedCriteria)
	res.Confidence = confidence(evaluated, detected, len(missing))

	switch {
	case hardMismatch:
		res.Status = StatusNotEligible
	case len(res.UnmatchedCriteria) > 0:
		res.Status = StatusPossiblyEligible
	case len(res.MatchedCriteria) > 0:
		res.Status = StatusEligible
	default:
		res.Status = StatusUnknown
	}
	return res
}

func confidence(evaluated, detected, missingFields int) int {
	if evaluated == 0 || detected == 0 {
		return 0
	}
	c := 100 * float64(evaluated) / float64(detected)
	c *= math.Pow(missingFieldPenalty, float64(missingFields))
	return int(math.Round(min(c, 100)))
}
