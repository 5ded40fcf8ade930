package ingest

import (
	"fmt"
	"sort"
	"strings"
)

// MAG7 maps the seven covered tickers to their SEC CIK numbers. CIKs are
// stable identifiers, so the map is compiled in rather than resolved through
// the ticker lookup endpoint on every run.
var MAG7 = map[string]string{
	"AAPL":  "320193",
	"MSFT":  "789019",
	"AMZN":  "1018724",
	"GOOGL": "1652044",
	"META":  "1326801",
	"NVDA":  "1045810",
	"TSLA":  "1318605",
}

// Tickers returns the covered tickers in deterministic order.
func Tickers() []string {
	out := make([]string, 0, len(MAG7))
	for t := range MAG7 {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// CIKForTicker resolves a covered ticker to its CIK.
func CIKForTicker(ticker string) (string, error) {
	cik, ok := MAG7[strings.ToUpper(ticker)]
	if !ok {
		return "", fmt.Errorf("ticker %s is not covered", ticker)
	}
	return cik, nil
}
