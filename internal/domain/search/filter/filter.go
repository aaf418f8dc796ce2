package filter

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/schemematch/internal/domain/scheme"
)

// Indexed tag field names shared by every corpus backend.
const (
	FieldCategory = "category"
	FieldState    = "state"
	FieldLevel    = "level"
)

// NationwideState is the state tag stored for schemes without a state.
const NationwideState = "nationwide"

// MaxCategories bounds the category any-of list.
const MaxCategories = 16

// Filter narrows retrieval by scheme attributes. The zero value matches everything.
//
// Categories is any-of. State selects that state's schemes plus nationwide ones,
// since central schemes apply in every state.
type Filter struct {
	Categories []string     `json:"categories,omitempty"`
	State      string       `json:"state,omitempty"`
	Level      scheme.Level `json:"level,omitempty"`
}

// Validate rejects unknown levels and oversized category lists.
func (f Filter) Validate() error {
	if f.Level != "" && !f.Level.IsValid() {
		return fmt.Errorf("invalid scheme level %q", f.Level)
	}
	if len(f.Categories) > MaxCategories {
		return fmt.Errorf("too many categories (max %d)", MaxCategories)
	}
	for _, c := range f.Categories {
		if strings.TrimSpace(c) == "" {
			return fmt.Errorf("empty category")
		}
	}
	return nil
}

// IsEmpty reports whether the filter places no constraint.
func (f Filter) IsEmpty() bool {
	return len(f.Categories) == 0 && f.State == "" && f.Level == ""
}

// WithCategories returns a copy of f with its categories replaced.
func (f Filter) WithCategories(categories []string) Filter {
	f.Categories = append([]string(nil), categories...)
	return f
}

// Matches reports whether s satisfies every constraint of f.
func (f Filter) Matches(s *scheme.Scheme) bool {
	if f.Level != "" && s.Level != f.Level {
		return false
	}
	if f.State != "" && s.State != "" && !strings.EqualFold(s.State, f.State) {
		return false
	}
	if len(f.Categories) == 0 {
		return true
	}
	for _, c := range f.Categories {
		if s.HasCategory(c) {
			return true
		}
	}
	return false
}

// Expression renders f as tag pre-filter conditions.
func (f Filter) Expression() (Expression, error) {
	var must []Condition
	if f.Level != "" {
		c, err := NewMatch(FieldLevel, string(f.Level))
		if err != nil {
			return Expression{}, err
		}
		must = append(must, c)
	}
	if f.State != "" {
		c, err := NewMatch(FieldState, f.State, NationwideState)
		if err != nil {
			return Expression{}, err
		}
		must = append(must, c)
	}
	if len(f.Categories) > 0 {
		c, err := NewMatch(FieldCategory, f.Categories...)
		if err != nil {
			return Expression{}, err
		}
		must = append(must, c)
	}
	return NewExpression(must, nil, nil)
}
