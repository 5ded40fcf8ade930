package chunker

import (
	"regexp"
	"strings"
)

// noisePatterns recognize page furniture and boilerplate that must never
// enter a chunk: table-of-contents markers, pagination, exhibits lists,
// signature blocks and the standard certification preamble.
var noisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)table\s+of\s+contents`),
	regexp.MustCompile(`(?i)page\s+\d+\s+of\s+\d+`),
	regexp.MustCompile(`(?i)exhibit\s+\d+`),
	regexp.MustCompile(`(?i)signature\s*$`),
	regexp.MustCompile(`(?i)pursuant\s+to\s+the\s+requirements`),
	regexp.MustCompile(`^\s*\d+\s*$`),  // bare page numbers
	regexp.MustCompile(`^\s*-+\s*$`),   // separator lines
}

// noiseMinChars is the floor below which a span is noise regardless of
// content.
const noiseMinChars = 50

// noiseAlphaRatio is the minimum share of alphabetic characters a span must
// carry; anything lower is numeric/symbol debris from table bleed-through.
const noiseAlphaRatio = 0.3

// IsNoise reports whether a span is low-information boilerplate. The chunker
// applies it per sentence during assembly, so filtered sentences never count
// toward chunk content or size.
func IsNoise(span string) bool {
	lower := strings.ToLower(span)

	for _, re := range noisePatterns {
		if re.MatchString(lower) {
			return true
		}
	}

	if len(strings.TrimSpace(span)) < noiseMinChars {
		return true
	}

	alpha := 0
	for _, r := range span {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			alpha++
		}
	}
	return float64(alpha) < float64(len(span))*noiseAlphaRatio
}
