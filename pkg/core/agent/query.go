package agent

import (
	"errors"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrQueryTooShort rejects queries with no searchable content left after
// cleaning.
var ErrQueryTooShort = errors.New("query too short")

// minQueryLength is applied after cleaning.
const minQueryLength = 3

// stopWords are dropped before retrieval; they carry no ranking signal and
// dilute embedding queries.
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "is": true, "are": true,
	"was": true, "were": true, "be": true, "of": true, "in": true,
	"on": true, "at": true, "to": true, "for": true, "and": true,
	"or": true, "it": true, "its": true, "this": true, "that": true,
	"what": true, "how": true, "do": true, "does": true, "did": true,
}

var specialCharsRe = regexp.MustCompile(`[^a-z0-9\s$%.&-]`)
var whitespaceRe = regexp.MustCompile(`\s+`)

// CleanQuery normalizes a user question for retrieval: Unicode NFKD,
// lowercase, special characters stripped, whitespace collapsed, stop words
// removed. Financial symbols ($, %, &) survive because they discriminate.
func CleanQuery(query string) (string, error) {
	q := norm.NFKD.String(query)
	q = strings.ToLower(q)
	q = specialCharsRe.ReplaceAllString(q, " ")
	q = whitespaceRe.ReplaceAllString(q, " ")
	q = strings.TrimSpace(q)

	words := strings.Fields(q)
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if stopWords[w] {
			continue
		}
		kept = append(kept, w)
	}
	q = strings.Join(kept, " ")

	if len(q) < minQueryLength {
		return "", ErrQueryTooShort
	}
	return q, nil
}
