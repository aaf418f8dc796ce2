package profile

import (
	"fmt"
	"math"
	"strings"
)

// IncomeRange is a bucketed annual household income.
type IncomeRange string

// Income buckets (annual, INR).
const (
	IncomeBelow1L IncomeRange = "below_1l"
	Income1To2_5L IncomeRange = "1l_2.5l"
	Income2_5To5L IncomeRange = "2.5l_5l"
	Income5To8L   IncomeRange = "5l_8l"
	IncomeAbove8L IncomeRange = "above_8l"
)

const rupeesPerLakh = 100_000

var incomeBounds = map[IncomeRange][2]float64{
	IncomeBelow1L: {0, 1 * rupeesPerLakh},
	Income1To2_5L: {1 * rupeesPerLakh, 2.5 * rupeesPerLakh},
	Income2_5To5L: {2.5 * rupeesPerLakh, 5 * rupeesPerLakh},
	Income5To8L:   {5 * rupeesPerLakh, 8 * rupeesPerLakh},
	IncomeAbove8L: {8 * rupeesPerLakh, math.Inf(1)},
}

// IsValid reports whether r is a known bucket.
func (r IncomeRange) IsValid() bool {
	_, ok := incomeBounds[r]
	return ok
}

// Bounds returns the bucket's [lower, upper) range in rupees.
func (r IncomeRange) Bounds() (lower, upper float64, ok bool) {
	b, ok := incomeBounds[r]
	return b[0], b[1], ok
}

// Category is a reservation category.
type Category string

// Reservation categories.
const (
	CategoryGeneral Category = "General"
	CategoryOBC     Category = "OBC"
	CategorySC      Category = "SC"
	CategoryST      Category = "ST"
	CategoryEWS     Category = "EWS"
)

// ParseCategory normalizes a case-insensitive category name.
func ParseCategory(s string) (Category, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "GENERAL", "GEN":
		return CategoryGeneral, nil
	case "OBC":
		return CategoryOBC, nil
	case "SC":
		return CategorySC, nil
	case "ST":
		return CategoryST, nil
	case "EWS":
		return CategoryEWS, nil
	default:
		return "", fmt.Errorf("unknown category %q", s)
	}
}

// UserProfile is a partial description of a citizen. Every field is optional:
// nil pointers and empty strings mean "not provided", never "false" or "none".
type UserProfile struct {
	Age         *int        `json:"age,omitempty"`
	Gender      string      `json:"gender,omitempty"`
	State       string      `json:"state,omitempty"`
	District    string      `json:"district,omitempty"`
	Profession  string      `json:"profession,omitempty"`
	IncomeRange IncomeRange `json:"income_range,omitempty"`
	Category    Category    `json:"category,omitempty"`

	IsStudent       *bool `json:"is_student,omitempty"`
	IsFarmer        *bool `json:"is_farmer,omitempty"`
	IsBusinessOwner *bool `json:"is_business_owner,omitempty"`
	IsWorker        *bool `json:"is_worker,omitempty"`
	IsWidow         *bool `json:"is_widow,omitempty"`
	IsSeniorCitizen *bool `json:"is_senior_citizen,omitempty"`
	IsDisabled      *bool `json:"is_disabled,omitempty"`
	IsMinority      *bool `json:"is_minority,omitempty"`
	IsBPL           *bool `json:"is_bpl,omitempty"`
}

// Validate rejects values outside the known enums.
func (p *UserProfile) Validate() error {
	if p.Age != nil && (*p.Age < 0 || *p.Age > 130) {
		return fmt.Errorf("age must be between 0 and 130, got %d", *p.Age)
	}
	if p.IncomeRange != "" && !p.IncomeRange.IsValid() {
		return fmt.Errorf("unknown income range %q", p.IncomeRange)
	}
	if p.Category != "" {
		if _, err := ParseCategory(string(p.Category)); err != nil {
			return err
		}
	}
	switch strings.ToLower(p.Gender) {
	case "", "male", "female", "other", "transgender":
	default:
		return fmt.Errorf("unknown gender %q", p.Gender)
	}
	return nil
}

// IsEmpty reports whether no attribute is present.
func (p *UserProfile) IsEmpty() bool {
	if p == nil {
		return true
	}
	return p.Age == nil && p.Gender == "" && p.State == "" && p.District == "" &&
		p.Profession == "" && p.IncomeRange == "" && p.Category == "" &&
		p.IsStudent == nil && p.IsFarmer == nil && p.IsBusinessOwner == nil &&
		p.IsWorker == nil && p.IsWidow == nil && p.IsSeniorCitizen == nil &&
		p.IsDisabled == nil && p.IsMinority == nil && p.IsBPL == nil
}

// EffectiveSeniorCitizen resolves the senior-citizen flag, falling back to age >= 60.
func (p *UserProfile) EffectiveSeniorCitizen() *bool {
	if p.IsSeniorCitizen != nil {
		return p.IsSeniorCitizen
	}
	if p.Age != nil {
		return Bool(*p.Age >= 60)
	}
	return nil
}

// NormalizedCategory returns the canonical category, or empty when absent or unknown.
func (p *UserProfile) NormalizedCategory() Category {
	c, err := ParseCategory(string(p.Category))
	if err != nil {
		return ""
	}
	return c
}

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }
