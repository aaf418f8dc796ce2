package scheme

import (
	"encoding/binary"
	"math"
	"strings"

	"github.com/kailas-cloud/schemematch/internal/domain/scheme"
	"github.com/kailas-cloud/schemematch/internal/domain/search/filter"
)

// Hash field names. Tag fields double as filter keys.
const (
	fieldID          = "id"
	fieldSlug        = "slug"
	fieldName        = "name"
	fieldLevel       = filter.FieldLevel
	fieldState       = filter.FieldState
	fieldCategory    = filter.FieldCategory
	fieldDetails     = "details"
	fieldBenefits    = "benefits"
	fieldEligibility = "eligibility"
	fieldApplication = "application"
	fieldDocuments   = "documents"
	fieldKeywords    = "keywords"
	fieldEmbedding   = "embedding"
)

// returnFields lists every stored field except the vector blob.
var returnFields = []string{
	fieldID, fieldSlug, fieldName, fieldLevel, fieldState, fieldCategory,
	fieldDetails, fieldBenefits, fieldEligibility, fieldApplication, fieldDocuments, fieldKeywords,
}

// buildHashFields converts a scheme into a flat map for HSET.
// Nationwide schemes store NationwideState so a state filter can include them.
func buildHashFields(s *scheme.Scheme) map[string]string {
	state := s.State
	if state == "" {
		state = filter.NationwideState
	}
	m := map[string]string{
		fieldID:          s.ID,
		fieldSlug:        s.Slug,
		fieldName:        s.Name,
		fieldLevel:       string(s.Level),
		fieldState:       state,
		fieldCategory:    strings.Join(s.Categories(), ","),
		fieldDetails:     s.Details,
		fieldBenefits:    s.Benefits,
		fieldEligibility: s.Eligibility,
		fieldApplication: s.Application,
		fieldDocuments:   s.Documents,
		fieldKeywords:    strings.Join(s.Tags, ","),
	}
	if s.HasEmbedding() {
		m[fieldEmbedding] = vectorToBytes(s.Embedding)
	}
	return m
}

// parseHashFields converts a flat hash map back into a scheme.
func parseHashFields(id string, m map[string]string) scheme.Scheme {
	s := scheme.Scheme{
		ID:          id,
		Slug:        m[fieldSlug],
		Name:        m[fieldName],
		Level:       scheme.Level(m[fieldLevel]),
		Category:    m[fieldCategory],
		Details:     m[fieldDetails],
		Benefits:    m[fieldBenefits],
		Eligibility: m[fieldEligibility],
		Application: m[fieldApplication],
		Documents:   m[fieldDocuments],
		Tags:        scheme.SplitCategories(m[fieldKeywords]),
	}
	if v := m[fieldID]; v != "" {
		s.ID = v
	}
	if st := m[fieldState]; st != filter.NationwideState {
		s.State = st
	}
	if raw, ok := m[fieldEmbedding]; ok {
		s.Embedding = bytesToVector(raw)
	}
	return s
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// bytesToVector deserializes a binary string back to []float32.
func bytesToVector(s string) []float32 {
	b := []byte(s)
	if len(b) == 0 || len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
