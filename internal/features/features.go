// Package features extracts lexical and structural signals from document text.
// Every function here is total: any string, including the empty one, yields a value.
package features

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// numericEntityRe matches decimal-digit/comma runs in any script with an optional decimal part.
// A bare comma matches too; downstream only the match count is used.
var numericEntityRe = regexp.MustCompile(`[\p{Nd},]+(?:\.\p{Nd}+)?`)

// yearRe matches a 4-digit year starting with 19 or 20 that is not adjacent to a letter, digit
// or underscore in any script. RE2's \b is ASCII-only, so the boundary is spelled out.
var yearRe = regexp.MustCompile(`(?:^|[^\p{L}\p{N}_])(?:19|20)[0-9]{2}(?:[^\p{L}\p{N}_]|$)`)

// AssetTerms is the short asset-domain vocabulary used by the weighted profile.
var AssetTerms = []string{
	"asset", "ownership", "valuation", "contract",
	"liability", "revenue", "token", "fraction",
	"rights", "obligation", "lease", "yield", "cashflow",
}

// Keyword is a presence term and the points it contributes when found.
type Keyword struct {
	Term   string `yaml:"term" json:"term"`
	Weight int    `yaml:"weight" json:"weight"`
}

// PresenceKeywords is the richer weighted vocabulary used by the points profile.
var PresenceKeywords = []Keyword{
	{Term: "deed", Weight: 10},
	{Term: "title", Weight: 8},
	{Term: "invoice", Weight: 8},
	{Term: "amount", Weight: 6},
	{Term: "signature", Weight: 6},
	{Term: "owner", Weight: 6},
	{Term: "property", Weight: 8},
	{Term: "asset", Weight: 5},
	{Term: "id", Weight: 3},
	{Term: "date", Weight: 4},
	{Term: "valuation", Weight: 8},
	{Term: "price", Weight: 5},
	{Term: "tax", Weight: 4},
	{Term: "agreement", Weight: 6},
}

// NumericDensity returns the fraction of runes in text that are decimal digits.
func NumericDensity(text string) float64 {
	if text == "" {
		return 0
	}
	digits, total := 0, 0
	for _, r := range text {
		total++
		if unicode.IsDigit(r) {
			digits++
		}
	}
	return float64(digits) / float64(total)
}

// KeywordHits counts how many terms occur as substrings of the lower-cased text.
// Each term counts at most once; "asset" also matches inside "assets".
func KeywordHits(text string, terms []string) int {
	t := strings.ToLower(text)
	hits := 0
	for _, term := range terms {
		if strings.Contains(t, term) {
			hits++
		}
	}
	return hits
}

// KeywordPresence sums the weights of keywords present in text and reports a 0/1 hit per term.
// Matching is case-insensitive on both sides; the map is keyed by the term as configured.
func KeywordPresence(text string, keywords []Keyword) (int, map[string]int) {
	t := strings.ToLower(text)
	score := 0
	found := make(map[string]int, len(keywords))
	for _, k := range keywords {
		hit := 0
		if strings.Contains(t, strings.ToLower(k.Term)) {
			hit = 1
		}
		found[k.Term] = hit
		score += hit * k.Weight
	}
	return score, found
}

// NumericEntities returns every numeric-looking token in text, in order of appearance.
func NumericEntities(text string) []string {
	return numericEntityRe.FindAllString(text, -1)
}

// HasDate reports whether text contains a year between 1900 and 2099 as a whole word.
// Decimal digits from any script count, so "٢٠٢١" is a year just like "2021".
func HasDate(text string) bool {
	return yearRe.MatchString(asciiDigits(text))
}

// asciiDigits rewrites every Unicode decimal digit in text as its ASCII equivalent.
func asciiDigits(text string) string {
	return strings.Map(func(r rune) rune {
		if r <= unicode.MaxASCII || !unicode.IsDigit(r) {
			return r
		}
		return '0' + digitValue(r)
	}, text)
}

// digitValue returns the numeric value of a decimal digit rune. Unicode lays out each Nd range
// as contiguous runs of ten starting at zero, so the offset from the start of the run is the value.
func digitValue(r rune) rune {
	n := rune(0)
	for unicode.IsDigit(r - n - 1) {
		n++
	}
	return n % 10
}

// HasSignatureWord reports whether text mentions "signature" or "signed", case-insensitively.
func HasSignatureWord(text string) bool {
	t := strings.ToLower(text)
	return strings.Contains(t, "signature") || strings.Contains(t, "signed")
}

// Length returns the length of text in runes.
func Length(text string) int {
	return utf8.RuneCountInString(text)
}
