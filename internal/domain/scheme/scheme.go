package scheme

import (
	"fmt"
	"regexp"
	"strings"
)

var slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Level is the government tier that runs a scheme.
type Level string

// Scheme levels.
const (
	LevelCentral Level = "Central"
	LevelState   Level = "State"
)

// IsValid reports whether l is a known level.
func (l Level) IsValid() bool {
	return l == LevelCentral || l == LevelState
}

// ParseLevel normalizes a case-insensitive level name. Empty input yields an empty level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "central":
		return LevelCentral, nil
	case "state":
		return LevelState, nil
	default:
		return "", fmt.Errorf("unknown scheme level %q", s)
	}
}

// Scheme is a government welfare program record. Read-only to the matching pipeline.
type Scheme struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Level       Level     `json:"level"`
	State       string    `json:"state,omitempty"` // empty for nationwide schemes
	Category    string    `json:"category"`        // comma-joined tags
	Details     string    `json:"details,omitempty"`
	Benefits    string    `json:"benefits,omitempty"`
	Eligibility string    `json:"eligibility,omitempty"`
	Application string    `json:"application,omitempty"`
	Documents   string    `json:"documents,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Embedding   []float32 `json:"-"`
}

// Validate checks the fields the corpus relies on for indexing and filtering.
func (s *Scheme) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("scheme ID is required")
	}
	if s.Name == "" {
		return fmt.Errorf("scheme name is required")
	}
	if s.Slug != "" && !slugRegex.MatchString(s.Slug) {
		return fmt.Errorf("scheme slug %q must be lowercase words joined by hyphens", s.Slug)
	}
	if s.Level != "" && !s.Level.IsValid() {
		return fmt.Errorf("invalid scheme level %q", s.Level)
	}
	return nil
}

// Categories splits the comma-joined category field into trimmed, non-empty tags.
func (s *Scheme) Categories() []string {
	return SplitCategories(s.Category)
}

// HasCategory reports whether the scheme carries the category (case-insensitive).
func (s *Scheme) HasCategory(category string) bool {
	for _, c := range s.Categories() {
		if strings.EqualFold(c, category) {
			return true
		}
	}
	return false
}

// HasEmbedding reports whether the scheme carries a stored vector.
func (s *Scheme) HasEmbedding() bool {
	return len(s.Embedding) > 0
}

// SearchableText is the text indexed for lexical search.
func (s *Scheme) SearchableText() string {
	parts := []string{s.Name, s.Details, s.Benefits, s.Eligibility, strings.Join(s.Tags, " ")}
	return strings.Join(parts, "\n")
}

// SplitCategories splits a comma-joined category string.
func SplitCategories(joined string) []string {
	if joined == "" {
		return nil
	}
	raw := strings.Split(joined, ",")
	out := make([]string, 0, len(raw))
	for _, c := range raw {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}
