package search

import (
	"errors"
	"math"
	"sort"

	"github.com/kailas-cloud/schemematch/internal/domain/scheme"
	"github.com/kailas-cloud/schemematch/internal/domain/search/result"
)

// Default blend weights.
const (
	DefaultSemanticWeight = 0.65
	DefaultLexicalWeight  = 0.35
)

const weightEpsilon = 1e-9

// Weights control how normalized sub-scores are blended.
type Weights struct {
	Semantic float64 `yaml:"semantic"`
	Lexical  float64 `yaml:"lexical"`
}

// DefaultWeights returns the 0.65 / 0.35 blend.
func DefaultWeights() Weights {
	return Weights{Semantic: DefaultSemanticWeight, Lexical: DefaultLexicalWeight}
}

// Validate requires non-negative weights summing to 1 with semantic not below lexical.
func (w Weights) Validate() error {
	if w.Semantic < 0 || w.Lexical < 0 {
		return errors.New("search weights must not be negative")
	}
	if math.Abs(w.Semantic+w.Lexical-1) > weightEpsilon {
		return errors.New("search weights must sum to 1")
	}
	if w.Semantic < w.Lexical {
		return errors.New("semantic weight must not be below lexical weight")
	}
	return nil
}

// normalize min-max scales hit scores into [0,1], keyed by scheme ID.
// A single hit, or a list where every score is equal, scores 1.0.
func normalize(hits []result.Hit) map[string]float64 {
	out := make(map[string]float64, len(hits))
	if len(hits) == 0 {
		return out
	}
	lo, hi := hits[0].Score, hits[0].Score
	for _, h := range hits[1:] {
		lo = math.Min(lo, h.Score)
		hi = math.Max(hi, h.Score)
	}
	span := hi - lo
	for _, h := range hits {
		if span <= 0 {
			out[h.Scheme.ID] = 1
			continue
		}
		out[h.Scheme.ID] = (h.Score - lo) / span
	}
	return out
}

// blend merges the semantic and lexical lists. A scheme missing from one list
// gets zero for that sub-score. Output is sorted by score desc, then ID asc.
func blend(semantic, lexical []result.Hit, w Weights) []result.SchemeWithScore {
	sNorm := normalize(semantic)
	lNorm := normalize(lexical)

	schemes := make(map[string]scheme.Scheme, len(semantic)+len(lexical))
	for _, h := range semantic {
		schemes[h.Scheme.ID] = h.Scheme
	}
	for _, h := range lexical {
		if _, ok := schemes[h.Scheme.ID]; !ok {
			schemes[h.Scheme.ID] = h.Scheme
		}
	}

	out := make([]result.SchemeWithScore, 0, len(schemes))
	for id, s := range schemes {
		out = append(out, result.SchemeWithScore{
			Scheme: s,
			Score:  w.Semantic*sNorm[id] + w.Lexical*lNorm[id],
		})
	}
	sortRanked(out)
	return out
}

// single ranks one list on its own normalized scores.
func single(hits []result.Hit) []result.SchemeWithScore {
	norm := normalize(hits)
	out := make([]result.SchemeWithScore, 0, len(hits))
	seen := make(map[string]bool, len(hits))
	for _, h := range hits {
		if seen[h.Scheme.ID] {
			continue
		}
		seen[h.Scheme.ID] = true
		out = append(out, result.SchemeWithScore{Scheme: h.Scheme, Score: norm[h.Scheme.ID]})
	}
	sortRanked(out)
	return out
}

func sortRanked(r []result.SchemeWithScore) {
	sort.SliceStable(r, func(i, j int) bool {
		if r[i].Score != r[j].Score {
			return r[i].Score > r[j].Score
		}
		return r[i].Scheme.ID < r[j].Scheme.ID
	})
}
