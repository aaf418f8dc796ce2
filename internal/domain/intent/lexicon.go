package intent

// Scheme categories recognized by the parser, in tie-break priority order.
const (
	CategoryAgriculture    = "Agriculture"
	CategoryEducation      = "Education"
	CategorySocialSecurity = "Social Security"
	CategoryHealth         = "Health"
	CategoryWomenChild     = "Women and Child"
	CategoryBusiness       = "Business"
	CategoryEmployment     = "Employment"
	CategoryHousing        = "Housing"
	CategoryDisability     = "Disability"
)

// categoryPriority breaks ties between categories with equal hit counts.
var categoryPriority = []string{
	CategoryAgriculture,
	CategoryEducation,
	CategorySocialSecurity,
	CategoryHealth,
	CategoryWomenChild,
	CategoryBusiness,
	CategoryEmployment,
	CategoryHousing,
	CategoryDisability,
}

// Life-event tags.
const (
	EventFarmer        = "farmer"
	EventStudent       = "student"
	EventDisability    = "disability"
	EventWidow         = "widow"
	EventSeniorCitizen = "senior_citizen"
	EventMaternity     = "maternity"
	EventUnemployed    = "unemployed"
	EventMarriage      = "marriage"
	EventStartup       = "startup"
	EventHousing       = "housing"
	EventWorker        = "worker"
)

type entry struct {
	categories []string
	events     []string
}

// lexicon maps single terms and two-word phrases to categories and life events.
// Terms are lowercase; plural forms are resolved by the parser.
var lexicon = map[string]entry{
	// agriculture
	"farmer":      {categories: []string{CategoryAgriculture}, events: []string{EventFarmer}},
	"farming":     {categories: []string{CategoryAgriculture}, events: []string{EventFarmer}},
	"kisan":       {categories: []string{CategoryAgriculture}, events: []string{EventFarmer}},
	"krishi":      {categories: []string{CategoryAgriculture}, events: []string{EventFarmer}},
	"crop":        {categories: []string{CategoryAgriculture}},
	"agriculture": {categories: []string{CategoryAgriculture}},
	"irrigation":  {categories: []string{CategoryAgriculture}},
	"seed":        {categories: []string{CategoryAgriculture}},
	"fertilizer":  {categories: []string{CategoryAgriculture}},
	"tractor":     {categories: []string{CategoryAgriculture}},
	"livestock":   {categories: []string{CategoryAgriculture}},
	"dairy":       {categories: []string{CategoryAgriculture}},
	"fisheries":   {categories: []string{CategoryAgriculture}},
	"fisherman":   {categories: []string{CategoryAgriculture}, events: []string{EventFarmer}},

	// education
	"scholarship":  {categories: []string{CategoryEducation}},
	"student":      {categories: []string{CategoryEducation}, events: []string{EventStudent}},
	"college":      {categories: []string{CategoryEducation}, events: []string{EventStudent}},
	"school":       {categories: []string{CategoryEducation}, events: []string{EventStudent}},
	"university":   {categories: []string{CategoryEducation}, events: []string{EventStudent}},
	"education":    {categories: []string{CategoryEducation}},
	"engineering":  {categories: []string{CategoryEducation}},
	"medical":      {categories: []string{CategoryEducation, CategoryHealth}},
	"tuition":      {categories: []string{CategoryEducation}},
	"fellowship":   {categories: []string{CategoryEducation}},
	"hostel":       {categories: []string{CategoryEducation}},
	"higher study": {categories: []string{CategoryEducation}, events: []string{EventStudent}},

	// social security
	"pension":        {categories: []string{CategorySocialSecurity}},
	"widow":          {categories: []string{CategorySocialSecurity, CategoryWomenChild}, events: []string{EventWidow}},
	"old age":        {categories: []string{CategorySocialSecurity}, events: []string{EventSeniorCitizen}},
	"elderly":        {categories: []string{CategorySocialSecurity}, events: []string{EventSeniorCitizen}},
	"senior citizen": {categories: []string{CategorySocialSecurity}, events: []string{EventSeniorCitizen}},
	"insurance":      {categories: []string{CategorySocialSecurity}},
	"bpl":            {categories: []string{CategorySocialSecurity}},
	"ration":         {categories: []string{CategorySocialSecurity}},
	"welfare":        {categories: []string{CategorySocialSecurity}},

	// health
	"health":    {categories: []string{CategoryHealth}},
	"hospital":  {categories: []string{CategoryHealth}},
	"treatment": {categories: []string{CategoryHealth}},
	"ayushman":  {categories: []string{CategoryHealth}},
	"disease":   {categories: []string{CategoryHealth}},
	"surgery":   {categories: []string{CategoryHealth}},

	// women and child
	"women":     {categories: []string{CategoryWomenChild}},
	"woman":     {categories: []string{CategoryWomenChild}},
	"girl":      {categories: []string{CategoryWomenChild}},
	"mahila":    {categories: []string{CategoryWomenChild}},
	"pregnant":  {categories: []string{CategoryWomenChild, CategoryHealth}, events: []string{EventMaternity}},
	"pregnancy": {categories: []string{CategoryWomenChild, CategoryHealth}, events: []string{EventMaternity}},
	"maternity": {categories: []string{CategoryWomenChild, CategoryHealth}, events: []string{EventMaternity}},
	"child":     {categories: []string{CategoryWomenChild}},
	"marriage":  {categories: []string{CategoryWomenChild, CategorySocialSecurity}, events: []string{EventMarriage}},
	"wedding":   {categories: []string{CategoryWomenChild, CategorySocialSecurity}, events: []string{EventMarriage}},

	// business
	"business":      {categories: []string{CategoryBusiness}, events: []string{EventStartup}},
	"startup":       {categories: []string{CategoryBusiness}, events: []string{EventStartup}},
	"entrepreneur":  {categories: []string{CategoryBusiness}, events: []string{EventStartup}},
	"loan":          {categories: []string{CategoryBusiness}},
	"msme":          {categories: []string{CategoryBusiness}},
	"mudra":         {categories: []string{CategoryBusiness}},
	"subsidy":       {categories: []string{CategoryAgriculture, CategoryBusiness}},
	"self employed": {categories: []string{CategoryBusiness, CategoryEmployment}, events: []string{EventStartup}},

	// employment
	"job":        {categories: []string{CategoryEmployment}, events: []string{EventUnemployed}},
	"employment": {categories: []string{CategoryEmployment}},
	"unemployed": {categories: []string{CategoryEmployment}, events: []string{EventUnemployed}},
	"skill":      {categories: []string{CategoryEmployment}},
	"training":   {categories: []string{CategoryEmployment}},
	"worker":     {categories: []string{CategoryEmployment}, events: []string{EventWorker}},
	"labour":     {categories: []string{CategoryEmployment}, events: []string{EventWorker}},
	"labor":      {categories: []string{CategoryEmployment}, events: []string{EventWorker}},
	"artisan":    {categories: []string{CategoryEmployment, CategoryBusiness}, events: []string{EventWorker}},

	// housing
	"house":   {categories: []string{CategoryHousing}, events: []string{EventHousing}},
	"housing": {categories: []string{CategoryHousing}, events: []string{EventHousing}},
	"home":    {categories: []string{CategoryHousing}, events: []string{EventHousing}},
	"awas":    {categories: []string{CategoryHousing}, events: []string{EventHousing}},
	"shelter": {categories: []string{CategoryHousing}, events: []string{EventHousing}},

	// disability
	"disability": {categories: []string{CategoryDisability, CategorySocialSecurity}, events: []string{EventDisability}},
	"disabled":   {categories: []string{CategoryDisability, CategorySocialSecurity}, events: []string{EventDisability}},
	"divyang":    {categories: []string{CategoryDisability, CategorySocialSecurity}, events: []string{EventDisability}},
	"handicap":   {categories: []string{CategoryDisability}, events: []string{EventDisability}},
	"blind":      {categories: []string{CategoryDisability}, events: []string{EventDisability}},
}

// lifeEvents describes how a life-event tag widens into a search.
var lifeEvents = map[string]struct {
	categories []string
	query      string
}{
	EventFarmer:        {[]string{CategoryAgriculture}, "farmer crop support subsidy"},
	EventStudent:       {[]string{CategoryEducation}, "student scholarship education"},
	EventDisability:    {[]string{CategoryDisability, CategorySocialSecurity}, "disability divyang assistance pension"},
	EventWidow:         {[]string{CategorySocialSecurity, CategoryWomenChild}, "widow pension assistance"},
	EventSeniorCitizen: {[]string{CategorySocialSecurity}, "senior citizen old age pension"},
	EventMaternity:     {[]string{CategoryWomenChild, CategoryHealth}, "pregnant women maternity benefit"},
	EventUnemployed:    {[]string{CategoryEmployment}, "unemployed job skill training"},
	EventMarriage:      {[]string{CategoryWomenChild, CategorySocialSecurity}, "marriage assistance"},
	EventStartup:       {[]string{CategoryBusiness}, "business startup loan entrepreneur"},
	EventHousing:       {[]string{CategoryHousing}, "housing house construction"},
	EventWorker:        {[]string{CategoryEmployment}, "worker labour welfare"},
}

// stopwords are dropped from keywords. Includes common Hinglish fillers.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "for": {}, "of": {}, "in": {}, "on": {},
	"to": {}, "from": {}, "with": {}, "by": {}, "at": {}, "as": {}, "is": {}, "are": {}, "was": {},
	"be": {}, "am": {}, "i": {}, "me": {}, "my": {}, "we": {}, "our": {}, "you": {}, "your": {},
	"it": {}, "its": {}, "this": {}, "that": {}, "these": {}, "those": {}, "there": {}, "what": {},
	"which": {}, "who": {}, "how": {}, "can": {}, "could": {}, "should": {}, "would": {}, "will": {},
	"do": {}, "does": {}, "did": {}, "have": {}, "has": {}, "had": {}, "any": {}, "some": {},
	"all": {}, "about": {}, "want": {}, "need": {}, "get": {}, "give": {}, "show": {}, "find": {},
	"looking": {}, "please": {}, "available": {}, "apply": {}, "eligible": {},
	"scheme": {}, "schemes": {}, "yojana": {}, "government": {}, "govt": {}, "sarkari": {},
	"ke": {}, "ki": {}, "ka": {}, "ko": {}, "hai": {}, "hain": {}, "liye": {}, "mein": {}, "aur": {},
}

// LifeEventCategories returns the categories associated with a life-event tag.
func LifeEventCategories(event string) ([]string, bool) {
	le, ok := lifeEvents[event]
	if !ok {
		return nil, false
	}
	return append([]string(nil), le.categories...), true
}

// LifeEventQuery returns the search text synthesized for a life-event tag.
func LifeEventQuery(event string) (string, bool) {
	le, ok := lifeEvents[event]
	return le.query, ok
}

// KnownCategory reports whether c is one of the parser's categories.
func KnownCategory(c string) bool {
	for _, p := range categoryPriority {
		if p == c {
			return true
		}
	}
	return false
}
