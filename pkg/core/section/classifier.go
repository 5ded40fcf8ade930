// Package section assigns heuristic regulatory-section labels to spans of
// filing text. The labels drive retrieval filtering, not document parsing:
// classification is stateless per span, so the same heading text always
// yields the same label regardless of where it appears.
package section

import (
	"regexp"
	"strings"
)

// General is the catch-all label for spans with no recognizable heading
// language. Every span classifies to something.
const General = "GENERAL"

// Classifier labels a span of text with a section and optional subsection.
// The pattern table behind the default implementation is swappable without
// touching chunk assembly.
type Classifier interface {
	Classify(span string) (section, subsection string)
}

// pattern pairs a section label with the regexp recognizing its canonical
// heading language. Order matters: the first match wins.
type pattern struct {
	label  string
	isItem bool // item-style headings carry a trailing subsection phrase
	re     *regexp.Regexp
}

// PatternClassifier classifies against a fixed, ordered pattern table
// covering annual-filing items 1-16, quarterly part/item headings, and
// generic financial-statement line labels.
type PatternClassifier struct {
	patterns []pattern
}

var subsectionRe = regexp.MustCompile(`(?i)(?:item\s+\d+[a-z]?\.?)\s*([^.]*)`)

// NewPatternClassifier builds the default classifier for 10-K and 10-Q
// filings.
func NewPatternClassifier() *PatternClassifier {
	items := []struct {
		label, expr string
		isItem      bool
	}{
		// 10-K sections
		{"ITEM 1", `(?i)\bitem\s+1\.?\s*(?:business|description\s+of\s+business)`, true},
		{"ITEM 1A", `(?i)\bitem\s+1a\.?\s*(?:risk\s+factors)`, true},
		{"ITEM 2", `(?i)\bitem\s+2\.?\s*(?:properties)`, true},
		{"ITEM 3", `(?i)\bitem\s+3\.?\s*(?:legal\s+proceedings)`, true},
		{"ITEM 4", `(?i)\bitem\s+4\.?\s*(?:mine\s+safety|controls\s+and\s+procedures)`, true},
		{"ITEM 5", `(?i)\bitem\s+5\.?\s*(?:market\s+for|unregistered\s+sales)`, true},
		{"ITEM 6", `(?i)\bitem\s+6\.?\s*(?:selected\s+financial\s+data)`, true},
		{"ITEM 7", `(?i)\bitem\s+7\.?\s*(?:management.?s\s+discussion|md&a)`, true},
		{"ITEM 7A", `(?i)\bitem\s+7a\.?\s*(?:quantitative\s+and\s+qualitative)`, true},
		{"ITEM 8", `(?i)\bitem\s+8\.?\s*(?:financial\s+statements)`, true},
		{"ITEM 9", `(?i)\bitem\s+9\.?\s*(?:changes\s+in\s+and\s+disagreements)`, true},
		{"ITEM 9A", `(?i)\bitem\s+9a\.?\s*(?:controls\s+and\s+procedures)`, true},
		{"ITEM 10", `(?i)\bitem\s+10\.?\s*(?:directors|executive\s+officers)`, true},
		{"ITEM 11", `(?i)\bitem\s+11\.?\s*(?:executive\s+compensation)`, true},
		{"ITEM 12", `(?i)\bitem\s+12\.?\s*(?:security\s+ownership)`, true},
		{"ITEM 13", `(?i)\bitem\s+13\.?\s*(?:certain\s+relationships)`, true},
		{"ITEM 14", `(?i)\bitem\s+14\.?\s*(?:principal\s+accounting)`, true},
		{"ITEM 15", `(?i)\bitem\s+15\.?\s*(?:exhibits|financial\s+statement)`, true},
		{"ITEM 16", `(?i)\bitem\s+16\.?\s*(?:form\s+10-k\s+summary)`, true},

		// 10-Q sections
		{"PART I", `(?i)\bpart\s+i\b`, false},
		{"PART II", `(?i)\bpart\s+ii\b`, false},
		{"ITEM 1_Q", `(?i)\bitem\s+1\.?\s*(?:financial\s+statements)`, true},
		{"ITEM 2_Q", `(?i)\bitem\s+2\.?\s*(?:management.?s\s+discussion|md&a)`, true},
		{"ITEM 3_Q", `(?i)\bitem\s+3\.?\s*(?:quantitative\s+and\s+qualitative)`, true},
		{"ITEM 4_Q", `(?i)\bitem\s+4\.?\s*(?:controls\s+and\s+procedures)`, true},
		{"ITEM 5_Q", `(?i)\bitem\s+5\.?\s*(?:other\s+information)`, true},
		{"ITEM 6_Q", `(?i)\bitem\s+6\.?\s*(?:exhibits)`, true},

		// Financial statement line labels
		{"REVENUE", `(?i)\b(?:revenue|net\s+sales|total\s+revenue)\b`, false},
		{"COST_OF_REVENUE", `(?i)\b(?:cost\s+of\s+revenue|cost\s+of\s+sales|cost\s+of\s+goods\s+sold)\b`, false},
		{"OPERATING_EXPENSES", `(?i)\b(?:operating\s+expenses|operating\s+costs)\b`, false},
		{"R&D", `(?i)\b(?:research\s+and\s+development|r&d)\b`, false},
		{"OPERATING_INCOME", `(?i)\b(?:operating\s+income|income\s+from\s+operations)\b`, false},
		{"NET_INCOME", `(?i)\b(?:net\s+income|net\s+earnings)\b`, false},
		{"CASH_FLOW", `(?i)\b(?:cash\s+flow|cash\s+flows)\b`, false},
		{"BALANCE_SHEET", `(?i)\b(?:balance\s+sheet|consolidated\s+balance\s+sheet)\b`, false},
	}

	c := &PatternClassifier{patterns: make([]pattern, 0, len(items))}
	for _, it := range items {
		c.patterns = append(c.patterns, pattern{
			label:  it.label,
			isItem: it.isItem,
			re:     regexp.MustCompile(it.expr),
		})
	}
	return c
}

var _ Classifier = (*PatternClassifier)(nil)

// Classify returns the first matching section label and, for item-style
// headings, the descriptive phrase trailing the item number. Spans without a
// recognizable heading classify to General with an empty subsection.
func (c *PatternClassifier) Classify(span string) (string, string) {
	lower := strings.ToLower(span)

	for _, p := range c.patterns {
		if !p.re.MatchString(lower) {
			continue
		}
		subsection := ""
		if p.isItem {
			if m := subsectionRe.FindStringSubmatch(lower); m != nil {
				subsection = strings.TrimSpace(m[1])
			}
		}
		return p.label, subsection
	}

	return General, ""
}
