package eligibility

import (
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/kailas-cloud/schemematch/internal/domain/profile"
)

// DefaultDetectors returns the built-in detector table. Age, category and
// gender are hard; everything else is soft.
func DefaultDetectors() []Detector {
	return []Detector{
		Rule{RuleKind: KindAge, IsHard: true, DetectFn: detectAge, CompareFn: compareAge},
		Rule{RuleKind: KindIncome, DetectFn: detectIncome, CompareFn: compareIncome},
		Rule{RuleKind: KindIncome, DetectFn: detectBPL, CompareFn: compareBPL},
		Rule{RuleKind: KindOccupation, DetectFn: detectOccupation, CompareFn: compareOccupation},
		Rule{RuleKind: KindCategory, IsHard: true, DetectFn: detectCategory, CompareFn: compareCategory},
		Rule{RuleKind: KindLocation, DetectFn: detectState, CompareFn: compareState},
		Rule{RuleKind: KindLocation, DetectFn: detectDistrict, CompareFn: compareDistrict},
		Rule{RuleKind: KindGender, IsHard: true, DetectFn: detectGender, CompareFn: compareGender},
		flagRule(KindWidow, "widow", `\bwidow(?:s|ed)?\b`, "is_widow",
			func(p *profile.UserProfile) *bool { return p.IsWidow }),
		flagRule(KindSenior, "senior citizen", `\b(?:senior citizens?|elderly|old age|aged persons?)\b`, "is_senior_citizen",
			func(p *profile.UserProfile) *bool { return p.EffectiveSeniorCitizen() }),
		flagRule(KindDisability, "person with disability",
			`\b(?:disabled|disabilit(?:y|ies)|divyang\w*|handicapped|differently[- ]abled|pwds?|blind|deaf)\b`, "is_disabled",
			func(p *profile.UserProfile) *bool { return p.IsDisabled }),
		flagRule(KindMinority, "minority community",
			`\b(?:minorit(?:y|ies)|muslims?|christians?|sikhs?|buddhists?|jains?|parsis?)\b`, "is_minority",
			func(p *profile.UserProfile) *bool { return p.IsMinority }),
	}
}

func flagRule(kind Kind, label, pattern, field string, get func(*profile.UserProfile) *bool) Rule {
	re := regexp.MustCompile(pattern)
	return Rule{
		RuleKind: kind,
		DetectFn: func(clause string) (Criterion, bool) {
			if !re.MatchString(clause) {
				return Criterion{}, false
			}
			return Criterion{Label: label}, true
		},
		CompareFn: func(p *profile.UserProfile, _ Criterion) (Outcome, string) {
			return compareFlag(get(p), field)
		},
	}
}

// precededByNot reports whether the match starting at idx is negated,
// as in "not more than" read from "more than".
func precededByNot(clause string, idx int) bool {
	prefix := strings.TrimRight(clause[:idx], " ")
	return strings.HasSuffix(prefix, "not") || strings.HasSuffix(prefix, "not be")
}

// --- age ---

var (
	ageWordRe    = regexp.MustCompile(`\baged?\b|\byears? old\b`)
	yearsRe      = regexp.MustCompile(`\b(?:years?|yrs)\b`)
	ageExcludeRe = regexp.MustCompile(`\b(?:experience|service|residing|residence|resident|staying|domicile|period|tenure|business|operation|registered|existence|since|duration|course|programme|program|study|studies|semester|repayment|moratorium)\b`)
	moneyRe      = regexp.MustCompile(`\b(?:rs|inr|lakhs?|lacs?|crores?|income|rupees)\b|₹`)

	ageRangeRe   = regexp.MustCompile(`(\d{1,3})\s*(?:-|–|to|and)\s*(\d{1,3})\s*(?:years|yrs|year)\b`)
	agedRangeRe  = regexp.MustCompile(`\baged?\b\D{0,25}?(\d{1,3})\s*(?:-|–|to|and)\s*(\d{1,3})\b`)
	ageAndDirRe  = regexp.MustCompile(`(?:\baged?\s*(?:of\s*)?(\d{1,3})|(\d{1,3})\s*(?:years|yrs)(?:\s*of age)?)\s*(?:and|or|&)\s*(above|older|more|over|below|less|under|younger)\b`)
	ageMaxRe     = regexp.MustCompile(`(below|under|less than|up to|upto|not (?:be )?more than|not exceeding|maximum(?: of)?|max)\s*(?:the\s*)?(?:age\s*(?:limit\s*)?(?:of\s*)?)?(\d{1,3})\b`)
	ageMinRe     = regexp.MustCompile(`(above|over|more than|at least|not (?:be )?less than|minimum(?: of)?|min|completed)\s*(?:the\s*)?(?:age\s*(?:of\s*)?)?(\d{1,3})\b`)
	yearsAfterRe = regexp.MustCompile(`^\s*(?:years|yrs|year)\b`)
)

func detectAge(clause string) (Criterion, bool) {
	if !ageWordRe.MatchString(clause) {
		if !yearsRe.MatchString(clause) || ageExcludeRe.MatchString(clause) || moneyRe.MatchString(clause) {
			return Criterion{}, false
		}
	}

	var r Range
	if m := firstSubmatch(clause, ageRangeRe, agedRangeRe); m != nil {
		lo, hi := atoi(m[1]), atoi(m[2])
		if lo > hi {
			lo, hi = hi, lo
		}
		r = Range{Min: float64(lo), Max: float64(hi), HasMin: true, HasMax: true}
	} else if m := ageAndDirRe.FindStringSubmatch(clause); m != nil {
		n := m[1]
		if n == "" {
			n = m[2]
		}
		switch m[3] {
		case "above", "older", "more", "over":
			r = Range{Min: float64(atoi(n)), HasMin: true}
		default:
			r = Range{Max: float64(atoi(n)), HasMax: true}
		}
	} else {
		if op, n, ok := ageBound(clause, ageMaxRe); ok {
			r.Max, r.HasMax = n, true
			r.MaxStrict = op == "below" || op == "under" || op == "less than"
		}
		if op, n, ok := ageBound(clause, ageMinRe); ok {
			r.Min, r.HasMin = n, true
			r.MinStrict = op == "above" || op == "over" || op == "more than"
		}
	}

	if !r.IsSet() || (r.HasMin && r.Min > 120) || (r.HasMax && (r.Max == 0 || r.Max > 120)) {
		return Criterion{}, false
	}
	if r.HasMin && r.HasMax && r.Min > r.Max {
		return Criterion{}, false
	}
	return Criterion{Label: "age " + r.describe(""), Range: r}, true
}

// ageBound returns the first bound match that plausibly refers to an age:
// the number is followed by "years" or the word "age" appears nearby.
func ageBound(clause string, re *regexp.Regexp) (string, float64, bool) {
	for _, loc := range re.FindAllStringSubmatchIndex(clause, -1) {
		if precededByNot(clause, loc[0]) {
			continue
		}
		near := clause[max(0, loc[0]-20):loc[1]]
		if !yearsAfterRe.MatchString(clause[loc[1]:]) && !ageWordRe.MatchString(near) {
			continue
		}
		return clause[loc[2]:loc[3]], float64(atoi(clause[loc[4]:loc[5]])), true
	}
	return "", 0, false
}

func compareAge(p *profile.UserProfile, c Criterion) (Outcome, string) {
	if p.Age == nil {
		return Undecided, "age"
	}
	if c.Range.Contains(float64(*p.Age)) {
		return Match, ""
	}
	return Mismatch, ""
}

// --- income ---

var (
	incomeWordRe = regexp.MustCompile(`\b(?:income|earnings?|salary|salaried)\b`)
	incomeMaxRe  = regexp.MustCompile(`(below|less than|up to|upto|not exceeding|not (?:be )?more than|does not exceed|should not exceed|not exceed|within|under|maximum(?: of)?|max|ceiling of|limit of)\D{0,20}?(\d[\d,]*(?:\.\d+)?)\s*(lakhs?|lacs?|crores?|cr|thousand|k)?\b`)
	incomeMinRe  = regexp.MustCompile(`(above|more than|exceeding|exceeds|over|at least|minimum(?: of)?)\D{0,20}?(\d[\d,]*(?:\.\d+)?)\s*(lakhs?|lacs?|crores?|cr|thousand|k)?\b`)
	bplRe        = regexp.MustCompile(`\b(?:bpl|below poverty line|antyodaya)\b`)
)

func detectIncome(clause string) (Criterion, bool) {
	if !incomeWordRe.MatchString(clause) {
		return Criterion{}, false
	}
	if v, ok := incomeAmount(clause, incomeMaxRe); ok {
		r := Range{Max: v, HasMax: true}
		return Criterion{Label: "income up to ₹" + lakhs(v), Range: r}, true
	}
	if v, ok := incomeAmount(clause, incomeMinRe); ok {
		r := Range{Min: v, HasMin: true}
		return Criterion{Label: "income above ₹" + lakhs(v), Range: r}, true
	}
	return Criterion{}, false
}

func incomeAmount(clause string, re *regexp.Regexp) (float64, bool) {
	for _, m := range re.FindAllStringSubmatchIndex(clause, -1) {
		if precededByNot(clause, m[0]) {
			continue
		}
		num, err := strconv.ParseFloat(strings.ReplaceAll(clause[m[4]:m[5]], ",", ""), 64)
		if err != nil {
			continue
		}
		unit := ""
		if m[6] >= 0 {
			unit = clause[m[6]:m[7]]
		}
		switch {
		case strings.HasPrefix(unit, "la"):
			num *= 100_000
		case strings.HasPrefix(unit, "cr"):
			num *= 10_000_000
		case unit == "thousand" || unit == "k":
			num *= 1_000
		}
		if num < 1_000 {
			continue
		}
		return num, true
	}
	return 0, false
}

func lakhs(v float64) string {
	return strconv.FormatFloat(v/100_000, 'f', -1, 64) + " lakh"
}

// compareIncome treats a bucket that straddles the limit as a match.
func compareIncome(p *profile.UserProfile, c Criterion) (Outcome, string) {
	lo, hi, ok := p.IncomeRange.Bounds()
	if !ok {
		return Undecided, "income_range"
	}
	r := c.Range
	if r.HasMax {
		if lo >= r.Max {
			return Mismatch, ""
		}
		return Match, ""
	}
	if hi <= r.Min {
		return Mismatch, ""
	}
	return Match, ""
}

func detectBPL(clause string) (Criterion, bool) {
	if !bplRe.MatchString(clause) {
		return Criterion{}, false
	}
	return Criterion{Label: "below poverty line"}, true
}

func compareBPL(p *profile.UserProfile, _ Criterion) (Outcome, string) {
	if p.IsBPL != nil {
		return compareFlag(p.IsBPL, "")
	}
	switch p.IncomeRange {
	case profile.IncomeBelow1L:
		return Match, ""
	case profile.Income2_5To5L, profile.Income5To8L, profile.IncomeAbove8L:
		return Mismatch, ""
	default:
		return Undecided, "is_bpl"
	}
}

// --- occupation ---

type occupation struct {
	name     string
	field    string
	re       *regexp.Regexp
	keywords []string
	flag     func(*profile.UserProfile) *bool
}

var occupations = []occupation{
	{
		name: "farmer", field: "is_farmer",
		re:       regexp.MustCompile(`\b(?:farmers?|farming|cultivators?|kisans?|agriculturists?|landholders?|fisherm[ae]n)\b`),
		keywords: []string{"farm", "kisan", "agricultur", "cultivat", "fisher"},
		flag:     func(p *profile.UserProfile) *bool { return p.IsFarmer },
	},
	{
		name: "student", field: "is_student",
		re:       regexp.MustCompile(`\b(?:students?|studying|pursuing|scholars?|pupils?)\b`),
		keywords: []string{"student"},
		flag:     func(p *profile.UserProfile) *bool { return p.IsStudent },
	},
	{
		name: "worker", field: "is_worker",
		re:       regexp.MustCompile(`\b(?:workers?|labou?rers?|artisans?|unorgani[sz]ed sector|daily wage)\b`),
		keywords: []string{"worker", "labour", "labor", "artisan"},
		flag:     func(p *profile.UserProfile) *bool { return p.IsWorker },
	},
	{
		name: "business owner", field: "is_business_owner",
		re:       regexp.MustCompile(`\b(?:entrepreneurs?|business(?:es)?|enterprises?|msmes?|self[- ]employed|traders?|shopkeepers?|vendors?)\b`),
		keywords: []string{"business", "entrepreneur", "trader", "shop", "vendor", "self employed", "self-employed"},
		flag:     func(p *profile.UserProfile) *bool { return p.IsBusinessOwner },
	},
}

func detectOccupation(clause string) (Criterion, bool) {
	var names []string
	for _, o := range occupations {
		if o.re.MatchString(clause) {
			names = append(names, o.name)
		}
	}
	if len(names) == 0 {
		return Criterion{}, false
	}
	return Criterion{Label: "occupation: " + strings.Join(names, " or "), Values: names}, true
}

// compareOccupation is any-of: one confirmed occupation matches, all
// occupations known to be absent mismatches.
func compareOccupation(p *profile.UserProfile, c Criterion) (Outcome, string) {
	missing := ""
	for _, o := range occupations {
		if !slices.Contains(c.Values, o.name) {
			continue
		}
		v := occupationFlag(p, o)
		switch {
		case v == nil:
			if missing == "" {
				missing = o.field
			}
		case *v:
			return Match, ""
		}
	}
	if missing != "" {
		return Undecided, missing
	}
	return Mismatch, ""
}

// occupationFlag prefers the explicit flag and falls back to the free-text profession.
func occupationFlag(p *profile.UserProfile, o occupation) *bool {
	if v := o.flag(p); v != nil {
		return v
	}
	if p.Profession == "" {
		return nil
	}
	prof := strings.ToLower(p.Profession)
	for _, k := range o.keywords {
		if strings.Contains(prof, k) {
			return profile.Bool(true)
		}
	}
	return profile.Bool(false)
}

// --- category ---

var (
	categoryPatterns = []struct {
		cat profile.Category
		re  *regexp.Regexp
	}{
		{profile.CategorySC, regexp.MustCompile(`(?:^|[^.\w])(?:sc|scs|scheduled castes?)\b`)},
		{profile.CategoryST, regexp.MustCompile(`(?:^|[^.\w])(?:st|sts|scheduled tribes?)\b`)},
		{profile.CategoryOBC, regexp.MustCompile(`\b(?:obcs?|(?:other )?backward class(?:es)?)\b`)},
		{profile.CategoryEWS, regexp.MustCompile(`\b(?:ews|economically weaker sections?)\b`)},
		{profile.CategoryGeneral, regexp.MustCompile(`\b(?:general category|unreserved)\b`)},
	}
	anyCategoryRe = regexp.MustCompile(`\b(?:all categories|any category|all castes|irrespective of (?:caste|category|community))\b`)
)

func detectCategory(clause string) (Criterion, bool) {
	if anyCategoryRe.MatchString(clause) {
		return Criterion{}, false
	}
	var cats []string
	for _, cp := range categoryPatterns {
		if cp.re.MatchString(clause) {
			cats = append(cats, string(cp.cat))
		}
	}
	if len(cats) == 0 {
		return Criterion{}, false
	}
	return Criterion{Label: "category: " + strings.Join(cats, "/"), Values: cats}, true
}

func compareCategory(p *profile.UserProfile, c Criterion) (Outcome, string) {
	cat := p.NormalizedCategory()
	if cat == "" {
		return Undecided, "category"
	}
	if slices.Contains(c.Values, string(cat)) {
		return Match, ""
	}
	return Mismatch, ""
}

// --- location ---

var states = map[string]string{
	"andhra pradesh": "Andhra Pradesh", "arunachal pradesh": "Arunachal Pradesh", "assam": "Assam",
	"bihar": "Bihar", "chhattisgarh": "Chhattisgarh", "goa": "Goa", "gujarat": "Gujarat",
	"haryana": "Haryana", "himachal pradesh": "Himachal Pradesh", "jharkhand": "Jharkhand",
	"karnataka": "Karnataka", "kerala": "Kerala", "madhya pradesh": "Madhya Pradesh",
	"maharashtra": "Maharashtra", "manipur": "Manipur", "meghalaya": "Meghalaya", "mizoram": "Mizoram",
	"nagaland": "Nagaland", "odisha": "Odisha", "orissa": "Odisha", "punjab": "Punjab",
	"rajasthan": "Rajasthan", "sikkim": "Sikkim", "tamil nadu": "Tamil Nadu", "telangana": "Telangana",
	"tripura": "Tripura", "uttar pradesh": "Uttar Pradesh", "uttarakhand": "Uttarakhand",
	"west bengal": "West Bengal", "delhi": "Delhi", "jammu and kashmir": "Jammu and Kashmir",
	"ladakh": "Ladakh", "puducherry": "Puducherry", "pondicherry": "Puducherry", "chandigarh": "Chandigarh",
	"andaman and nicobar islands": "Andaman and Nicobar Islands", "lakshadweep": "Lakshadweep",
	"dadra and nagar haveli and daman and diu": "Dadra and Nagar Haveli and Daman and Diu",
}

var stateRe = buildStateRe()

func buildStateRe() *regexp.Regexp {
	names := make([]string, 0, len(states))
	for n := range states {
		names = append(names, regexp.QuoteMeta(n))
	}
	// longest first so multi-word names win over their prefixes
	sortByLenDesc(names)
	return regexp.MustCompile(`\b(?:` + strings.Join(names, "|") + `)\b`)
}

// CanonicalState maps a state name or alias to its canonical spelling.
func CanonicalState(name string) (string, bool) {
	s, ok := states[strings.ToLower(strings.TrimSpace(name))]
	return s, ok
}

func detectState(clause string) (Criterion, bool) {
	var found []string
	for _, m := range stateRe.FindAllString(clause, -1) {
		if s := states[m]; !slices.Contains(found, s) {
			found = append(found, s)
		}
	}
	if len(found) == 0 {
		return Criterion{}, false
	}
	return Criterion{Label: "resident of " + strings.Join(found, " or "), Values: found}, true
}

func compareState(p *profile.UserProfile, c Criterion) (Outcome, string) {
	if strings.TrimSpace(p.State) == "" {
		return Undecided, "state"
	}
	st, ok := CanonicalState(p.State)
	if !ok {
		st = strings.TrimSpace(p.State)
	}
	for _, v := range c.Values {
		if strings.EqualFold(v, st) {
			return Match, ""
		}
	}
	return Mismatch, ""
}

var (
	districtRe      = regexp.MustCompile(`\b([a-z]+) district\b|\bdistricts? of ([a-z]+)\b`)
	districtNonName = map[string]bool{
		"the": true, "any": true, "each": true, "a": true, "same": true, "every": true, "respective": true,
		"concerned": true, "home": true, "native": true, "their": true, "his": true, "her": true, "that": true,
		"this": true, "such": true, "of": true, "in": true, "rural": true, "urban": true, "backward": true,
		"aspirational": true, "notified": true, "identified": true, "selected": true, "all": true,
	}
)

func detectDistrict(clause string) (Criterion, bool) {
	for _, m := range districtRe.FindAllStringSubmatch(clause, -1) {
		name := m[1]
		if name == "" {
			name = m[2]
		}
		if districtNonName[name] {
			continue
		}
		return Criterion{Label: "district: " + name, Values: []string{name}}, true
	}
	return Criterion{}, false
}

func compareDistrict(p *profile.UserProfile, c Criterion) (Outcome, string) {
	if strings.TrimSpace(p.District) == "" {
		return Undecided, "district"
	}
	if strings.EqualFold(strings.TrimSpace(p.District), c.Values[0]) {
		return Match, ""
	}
	return Mismatch, ""
}

// --- gender ---

var (
	femaleRe      = regexp.MustCompile(`\b(?:women|woman|females?|girls?|mahilas?|widows?|mothers?|pregnant|lactating)\b`)
	maleRe        = regexp.MustCompile(`\b(?:men|males?|boys?)\b`)
	transRe       = regexp.MustCompile(`\b(?:transgenders?|third gender)\b`)
	anyGenderRe   = regexp.MustCompile(`\b(?:irrespective of gender|all genders|any gender)\b`)
	genderOptions = []struct {
		value string
		re    *regexp.Regexp
	}{
		{"female", femaleRe},
		{"male", maleRe},
		{"transgender", transRe},
	}
)

func detectGender(clause string) (Criterion, bool) {
	if anyGenderRe.MatchString(clause) {
		return Criterion{}, false
	}
	var allowed []string
	for _, g := range genderOptions {
		if g.re.MatchString(clause) {
			allowed = append(allowed, g.value)
		}
	}
	// a clause naming both men and women places no gender constraint
	if len(allowed) == 0 || (slices.Contains(allowed, "female") && slices.Contains(allowed, "male")) {
		return Criterion{}, false
	}
	return Criterion{Label: "gender: " + strings.Join(allowed, " or "), Values: allowed}, true
}

func compareGender(p *profile.UserProfile, c Criterion) (Outcome, string) {
	g := strings.ToLower(strings.TrimSpace(p.Gender))
	if g == "" {
		return Undecided, "gender"
	}
	if slices.Contains(c.Values, g) {
		return Match, ""
	}
	return Mismatch, ""
}

// --- helpers ---

func firstSubmatch(s string, res ...*regexp.Regexp) []string {
	for _, re := range res {
		if m := re.FindStringSubmatch(s); m != nil {
			return m
		}
	}
	return nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func sortByLenDesc(names []string) {
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
}
