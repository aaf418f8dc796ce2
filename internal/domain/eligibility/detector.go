package eligibility

import (
	"fmt"
	"strconv"

	"github.com/kailas-cloud/schemematch/internal/domain/profile"
)

// Kind names the profile dimension a criterion constrains.
type Kind string

// Criterion kinds.
const (
	KindAge        Kind = "age"
	KindIncome     Kind = "income"
	KindOccupation Kind = "occupation"
	KindCategory   Kind = "category"
	KindLocation   Kind = "location"
	KindGender     Kind = "gender"
	KindWidow      Kind = "widow"
	KindSenior     Kind = "senior_citizen"
	KindDisability Kind = "disability"
	KindMinority   Kind = "minority"
)

// Outcome is the comparison of one criterion against a profile.
type Outcome int

// Comparison outcomes.
const (
	Undecided Outcome = iota
	Match
	Mismatch
)

func (o Outcome) String() string {
	switch o {
	case Match:
		return "match"
	case Mismatch:
		return "mismatch"
	default:
		return "undecided"
	}
}

// Range is a numeric bound on a profile attribute.
type Range struct {
	Min, Max             float64
	HasMin, HasMax       bool
	MinStrict, MaxStrict bool
}

// Contains reports whether v satisfies every bound that is set.
func (r Range) Contains(v float64) bool {
	if r.HasMin && (v < r.Min || (r.MinStrict && v == r.Min)) {
		return false
	}
	if r.HasMax && (v > r.Max || (r.MaxStrict && v == r.Max)) {
		return false
	}
	return true
}

// IsSet reports whether any bound is present.
func (r Range) IsSet() bool { return r.HasMin || r.HasMax }

func (r Range) describe(unit string) string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) + unit }
	switch {
	case r.HasMin && r.HasMax:
		return fmt.Sprintf("between %s and %s", f(r.Min), f(r.Max))
	case r.HasMax && r.MaxStrict:
		return "below " + f(r.Max)
	case r.HasMax:
		return "up to " + f(r.Max)
	case r.HasMin && r.MinStrict:
		return "above " + f(r.Min)
	default:
		return "at least " + f(r.Min)
	}
}

// Criterion is one requirement recognized in a clause.
type Criterion struct {
	Kind   Kind
	Label  string
	Range  Range
	Values []string
}

// Detector recognizes one kind of criterion in a lowercased clause and
// compares it against a profile.
type Detector interface {
	Kind() Kind
	// Hard detectors disqualify on mismatch.
	Hard() bool
	Detect(clause string) (Criterion, bool)
	// Compare returns Undecided together with the missing profile field
	// when the profile cannot settle the criterion.
	Compare(p *profile.UserProfile, c Criterion) (Outcome, string)
}

// Rule is a Detector assembled from a detect function and a comparator.
type Rule struct {
	RuleKind  Kind
	IsHard    bool
	DetectFn  func(clause string) (Criterion, bool)
	CompareFn func(p *profile.UserProfile, c Criterion) (Outcome, string)
}

// Kind implements Detector.
func (r Rule) Kind() Kind { return r.RuleKind }

// Hard implements Detector.
func (r Rule) Hard() bool { return r.IsHard }

// Detect implements Detector.
func (r Rule) Detect(clause string) (Criterion, bool) {
	c, ok := r.DetectFn(clause)
	if !ok {
		return Criterion{}, false
	}
	c.Kind = r.RuleKind
	return c, true
}

// Compare implements Detector.
func (r Rule) Compare(p *profile.UserProfile, c Criterion) (Outcome, string) {
	return r.CompareFn(p, c)
}

// compareFlag maps a tri-state profile flag to an outcome.
func compareFlag(v *bool, field string) (Outcome, string) {
	switch {
	case v == nil:
		return Undecided, field
	case *v:
		return Match, ""
	default:
		return Mismatch, ""
	}
}
