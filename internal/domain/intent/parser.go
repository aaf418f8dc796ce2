// Package intent turns free-text user queries into structured search intent
// using a fixed lexicon. Parsing is pure and never fails: empty or
// unrecognized input yields an empty (or keyword-only) intent.
package intent

import (
	"sort"
	"strings"
	"unicode"
)

// ParsedIntent is the structured reading of a user query.
type ParsedIntent struct {
	Keywords            []string `json:"keywords"`
	SuggestedCategories []string `json:"suggested_categories"`
	LifeEvents          []string `json:"life_events"`
}

// IsEmpty reports whether the intent carries nothing to search on.
func (p ParsedIntent) IsEmpty() bool {
	return len(p.Keywords) == 0 && len(p.SuggestedCategories) == 0 && len(p.LifeEvents) == 0
}

// Parse reads text into a ParsedIntent.
func Parse(text string) ParsedIntent {
	tokens := contentTokens(text)
	if len(tokens) == 0 {
		return ParsedIntent{Keywords: []string{}, SuggestedCategories: []string{}, LifeEvents: []string{}}
	}

	hits := make(map[string]int)
	var events []string
	seenEvent := make(map[string]bool)
	seenTerm := make(map[string]bool)

	record := func(term string, e entry) {
		if seenTerm[term] {
			return
		}
		seenTerm[term] = true
		for _, c := range e.categories {
			hits[c]++
		}
		for _, ev := range e.events {
			if !seenEvent[ev] {
				seenEvent[ev] = true
				events = append(events, ev)
			}
		}
	}

	for i, tok := range tokens {
		if i+1 < len(tokens) {
			if phrase, e, ok := lookup(tok + " " + tokens[i+1]); ok {
				record(phrase, e)
			}
		}
		if term, e, ok := lookup(tok); ok {
			record(term, e)
		}
	}

	if events == nil {
		events = []string{}
	}
	return ParsedIntent{
		Keywords:            dedupe(tokens),
		SuggestedCategories: rankCategories(hits),
		LifeEvents:          events,
	}
}

// ExtractSearchKeywords returns the deduplicated, stopword-free tokens of text in original order.
func ExtractSearchKeywords(text string) []string {
	return dedupe(contentTokens(text))
}

// SuggestedCategories ranks lexicon categories hit by text.
func SuggestedCategories(text string) []string {
	return Parse(text).SuggestedCategories
}

// contentTokens lowercases, splits on anything that is not a letter or digit, and drops stopwords.
func contentTokens(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) < 2 {
			continue
		}
		if _, stop := stopwords[f]; stop {
			continue
		}
		out = append(out, f)
	}
	return out
}

// lookup resolves a token against the lexicon, trying simple plural forms.
func lookup(tok string) (string, entry, bool) {
	if e, ok := lexicon[tok]; ok {
		return tok, e, true
	}
	for _, suffix := range []string{"es", "s"} {
		if len(tok) > len(suffix)+2 && strings.HasSuffix(tok, suffix) {
			stem := strings.TrimSuffix(tok, suffix)
			if e, ok := lexicon[stem]; ok {
				return stem, e, true
			}
		}
	}
	return "", entry{}, false
}

func dedupe(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

func rankCategories(hits map[string]int) []string {
	out := make([]string, 0, len(hits))
	for _, c := range categoryPriority {
		if hits[c] > 0 {
			out = append(out, c)
		}
	}
	// categoryPriority order is the tie-break, so a stable sort by count suffices.
	sort.SliceStable(out, func(i, j int) bool {
		return hits[out[i]] > hits[out[j]]
	})
	return out
}
