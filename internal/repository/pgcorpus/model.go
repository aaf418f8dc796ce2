package pgcorpus

import (
	"strings"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/kailas-cloud/schemematch/internal/domain/scheme"
)

// schemeRow is the relational form of a scheme. State is empty for nationwide schemes;
// Category holds the comma-joined categories as given, filters compare them lowercased.
type schemeRow struct {
	ID          string           `gorm:"primaryKey"`
	Slug        string           `gorm:"index"`
	Name        string           `gorm:"not null"`
	Level       string           `gorm:"index"`
	State       string           `gorm:"index"`
	Category    string           `gorm:"type:text"`
	Details     string           `gorm:"type:text"`
	Benefits    string           `gorm:"type:text"`
	Eligibility string           `gorm:"type:text"`
	Application string           `gorm:"type:text"`
	Documents   string           `gorm:"type:text"`
	Tags        string           `gorm:"type:text"`
	Embedding   *pgvector.Vector `gorm:"type:vector"`
	UpdatedAt   time.Time
}

func (schemeRow) TableName() string {
	return "schemes"
}

// scoredRow is a schemeRow with the computed relevance column.
type scoredRow struct {
	schemeRow `gorm:"embedded"`
	Score     float64
}

// profileRow stores a user profile as a JSONB document.
type profileRow struct {
	UserID    string `gorm:"primaryKey"`
	Profile   []byte `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time
}

func (profileRow) TableName() string {
	return "user_profiles"
}

func toRow(s *scheme.Scheme) schemeRow {
	row := schemeRow{
		ID:          s.ID,
		Slug:        s.Slug,
		Name:        s.Name,
		Level:       string(s.Level),
		State:       s.State,
		Category:    strings.Join(s.Categories(), ","),
		Details:     s.Details,
		Benefits:    s.Benefits,
		Eligibility: s.Eligibility,
		Application: s.Application,
		Documents:   s.Documents,
		Tags:        strings.Join(s.Tags, ","),
	}
	if s.HasEmbedding() {
		v := pgvector.NewVector(s.Embedding)
		row.Embedding = &v
	}
	return row
}

func (r *schemeRow) toScheme() scheme.Scheme {
	s := scheme.Scheme{
		ID:          r.ID,
		Slug:        r.Slug,
		Name:        r.Name,
		Level:       scheme.Level(r.Level),
		State:       r.State,
		Category:    r.Category,
		Details:     r.Details,
		Benefits:    r.Benefits,
		Eligibility: r.Eligibility,
		Application: r.Application,
		Documents:   r.Documents,
		Tags:        scheme.SplitCategories(r.Tags),
	}
	if r.Embedding != nil {
		s.Embedding = r.Embedding.Slice()
	}
	return s
}
