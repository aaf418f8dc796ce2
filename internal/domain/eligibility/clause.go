package eligibility

import (
	"regexp"
	"strings"
)

var (
	// abbreviations whose trailing period must not end a sentence.
	abbrevRe = regexp.MustCompile(`(?i)\b(rs|no|nos|viz|etc|govt|dept|approx|yrs|i\.e|e\.g)\.`)
	// degree names fold to one token so "M.Sc" never reads as the SC category.
	degreeRe = regexp.MustCompile(`(?i)\b([bm])\.\s?(sc|tech|ed|com|pharm|phil)\b|\b(ph)\.\s?(d)\b`)
	bulletRe = regexp.MustCompile(`^\s*(?:[-*•●▪◦➢✓]|\d{1,2}[.)]|\([a-z0-9ivx]{1,4}\)|[a-z][.)])\s+`)
	sentEnd  = regexp.MustCompile(`[.!?;](?:\s+|$)`)
)

// SplitClauses cuts unstructured eligibility prose into candidate criterion
// clauses at line, bullet, and sentence boundaries. Empty clauses are dropped.
func SplitClauses(text string) []string {
	text = strings.ReplaceAll(text, "\r", "\n")
	text = abbrevRe.ReplaceAllStringFunc(text, func(m string) string {
		return strings.ReplaceAll(m, ".", "")
	})
	text = degreeRe.ReplaceAllString(text, "$1$2$3$4")

	var clauses []string
	for _, line := range strings.Split(text, "\n") {
		line = bulletRe.ReplaceAllString(line, "")
		for _, sentence := range sentEnd.Split(line, -1) {
			sentence = strings.TrimSpace(strings.Trim(sentence, " \t:-–"))
			if len([]rune(sentence)) < 3 {
				continue
			}
			clauses = append(clauses, sentence)
		}
	}
	return clauses
}
