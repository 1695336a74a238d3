package detection

import "regexp"

// Candidate extractors, run in order. A pattern with a capture group
// contributes the group; otherwise the whole match.
var codePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b[A-Z0-9]{4,20}\b`),
	regexp.MustCompile(`(?i)\b(?:SAVE|GET|OFF|FREE|DEAL|PROMO)[A-Z0-9]{2,15}\b`),
	regexp.MustCompile(`\b[A-Z]{2,8}[0-9]{2,8}\b`),
	regexp.MustCompile(`(?i)\b(?:CODE|COUPON|PROMO):\s*([A-Z0-9]{3,20})\b`),
}

var (
	promoShape     = regexp.MustCompile(`(?i)^(?:SAVE|GET|OFF|FREE|DEAL|PROMO)[A-Z0-9]+$`)
	couponKeywords = regexp.MustCompile(`(?i)coupon|promo|code|discount`)
)

// Words that look like codes in page chrome but never are.
var stopWords = map[string]struct{}{
	"ABOUT":   {},
	"CONTACT": {},
	"LOGIN":   {},
	"SIGNUP":  {},
	"SEARCH":  {},
}

type storePattern struct {
	name    string
	pattern *regexp.Regexp
}

// First match wins.
var knownStores = []storePattern{
	{"Amazon", regexp.MustCompile(`(?i)amazon\.com|amazon\.ca|amazon\.co\.uk`)},
	{"Walmart", regexp.MustCompile(`(?i)walmart\.com|walmart\.ca`)},
	{"Target", regexp.MustCompile(`(?i)target\.com`)},
	{"Ebay", regexp.MustCompile(`(?i)ebay\.com|ebay\.ca`)},
	{"Bestbuy", regexp.MustCompile(`(?i)bestbuy\.com|bestbuy\.ca`)},
	{"Homedepot", regexp.MustCompile(`(?i)homedepot\.com|homedepot\.ca`)},
}
