// Package screening scans free-text content (project descriptions, chat
// messages) for terms and patterns associated with off-platform-payment
// fraud. Screening is advisory: it never mutates state, and callers
// decide how to act on the recommendation.
package screening

import (
	"regexp"
	"strings"
)

// RiskLevel classifies screened content.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Recommendation is the suggested caller action.
type Recommendation string

const (
	RecommendApprove Recommendation = "approve"
	RecommendReview  Recommendation = "review"
	RecommendBlock   Recommendation = "block"
)

// Result of screening one piece of content.
type Result struct {
	Clean           bool      `json:"clean"`
	FlaggedTerms    []string  `json:"flagged_terms,omitempty"`
	MatchedPatterns []string  `json:"matched_patterns,omitempty"`
	RiskLevel       RiskLevel `json:"risk_level"`
	Recommendation  Recommendation `json:"recommendation"`
}

// defaultTerms are blocked outright wherever they appear.
var defaultTerms = []string{
	"fraude",
	"scam",
	"golpe",
}

// defaultPatterns match solicitations to move payment off the platform.
var defaultPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)pag(a|ue).*fora.*plataforma`),
	regexp.MustCompile(`(?i)transfer.*direto`),
	regexp.MustCompile(`(?i)whatsapp.*pag`),
	regexp.MustCompile(`(?i)conta.*pessoal`),
}

// Screener checks content against a blocklist and a pattern set.
type Screener struct {
	terms    []string
	patterns []*regexp.Regexp
}

// New returns a Screener with the given blocklist and patterns.
func New(terms []string, patterns []*regexp.Regexp) *Screener {
	return &Screener{terms: terms, patterns: patterns}
}

// Default returns a Screener with the platform's standard blocklist and
// off-platform-payment patterns.
func Default() *Screener {
	return New(defaultTerms, defaultPatterns)
}

// Screen classifies content. Any single match yields medium/review; more
// than two blocked terms or more than one pattern match yields high/block.
func (s *Screener) Screen(content string) Result {
	lower := strings.ToLower(content)

	var flagged []string
	for _, term := range s.terms {
		if strings.Contains(lower, term) {
			flagged = append(flagged, term)
		}
	}

	var matched []string
	for _, p := range s.patterns {
		if p.MatchString(content) {
			matched = append(matched, p.String())
		}
	}

	res := Result{
		Clean:           len(flagged) == 0 && len(matched) == 0,
		FlaggedTerms:    flagged,
		MatchedPatterns: matched,
		RiskLevel:       RiskLow,
		Recommendation:  RecommendApprove,
	}
	if len(flagged) > 0 || len(matched) > 0 {
		res.RiskLevel = RiskMedium
		res.Recommendation = RecommendReview
	}
	if len(flagged) > 2 || len(matched) > 1 {
		res.RiskLevel = RiskHigh
		res.Recommendation = RecommendBlock
	}
	return res
}

var htmlTag = regexp.MustCompile(`<[^>]*>`)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
)

// Sanitize strips HTML tags and escapes the remaining special
// characters so stored content is safe to echo back to a browser.
func Sanitize(input string) string {
	return htmlEscaper.Replace(htmlTag.ReplaceAllString(input, ""))
}
