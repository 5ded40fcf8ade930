package ingest

import (
	"strings"
	"testing"
)

func sampleInfo() *SECCompanyInfo {
	return &SECCompanyInfo{
		CIK:  "320193",
		Name: "Apple Inc.",
		Filings: SECFilings{
			Recent: SECRecentFilings{
				AccessionNumber: []string{
					"0000320193-23-000106",
					"0000320193-23-000077",
					"0000320193-14-000019",
					"0000320193-23-000064",
				},
				FilingDate: []string{
					"2023-10-27",
					"2023-08-04",
					"2014-10-27",
					"2023-06-15",
				},
				ReportDate: []string{
					"2023-09-30",
					"2023-07-01",
					"2014-09-27",
					"",
				},
				Form: []string{
					"10-K",
					"10-Q",
					"10-K",
					"8-K",
				},
				PrimaryDocument: []string{
					"aapl-20230930.htm",
					"aapl-20230701.htm",
					"a10-k20149272014.htm",
					"aapl-8k.htm",
				},
				Size: []int{1000, 800, 900, 100},
			},
		},
	}
}

func TestGetFilingsFormTypeFilter(t *testing.T) {
	c := NewEDGARClient("")

	filings := c.GetFilings("AAPL", sampleInfo(), FilterOptions{FormTypes: []string{"10-K", "10-Q"}})
	if len(filings) != 3 {
		t.Fatalf("got %d filings, want 3 (8-K excluded)", len(filings))
	}
	for _, f := range filings {
		if f.FormType != "10-K" && f.FormType != "10-Q" {
			t.Errorf("unexpected form type %s", f.FormType)
		}
	}
}

func TestGetFilingsDateRange(t *testing.T) {
	c := NewEDGARClient("")

	filings := c.GetFilings("AAPL", sampleInfo(), FilterOptions{
		FormTypes: []string{"10-K", "10-Q"},
		StartDate: "2015-01-01",
		EndDate:   "2025-12-31",
	})
	if len(filings) != 2 {
		t.Fatalf("got %d filings, want 2 (2014 filing excluded)", len(filings))
	}
	for _, f := range filings {
		if f.FilingDate < "2015-01-01" {
			t.Errorf("filing %s outside date range: %s", f.AccessionNumber, f.FilingDate)
		}
	}
}

func TestGetFilingsLimit(t *testing.T) {
	c := NewEDGARClient("")

	filings := c.GetFilings("AAPL", sampleInfo(), FilterOptions{Limit: 1})
	if len(filings) != 1 {
		t.Errorf("got %d filings, want 1", len(filings))
	}
}

func TestGetFilingsURLConstruction(t *testing.T) {
	c := NewEDGARClient("")

	filings := c.GetFilings("AAPL", sampleInfo(), FilterOptions{FormTypes: []string{"10-K"}, Limit: 1})
	if len(filings) != 1 {
		t.Fatal("expected one filing")
	}

	url := filings[0].URL
	if !strings.Contains(url, "000032019323000106") {
		t.Errorf("URL missing dash-free accession: %s", url)
	}
	if !strings.HasSuffix(url, "aapl-20230930.htm") {
		t.Errorf("URL missing primary document: %s", url)
	}
	if strings.Contains(url, "0000320193-23") {
		t.Errorf("URL kept accession dashes: %s", url)
	}
}

func TestFilingFilename(t *testing.T) {
	f := Filing{
		Ticker:          "AAPL",
		FormType:        "10-K",
		FilingDate:      "2023-10-27",
		AccessionNumber: "0000320193-23-000106",
	}
	want := "AAPL10-K2023-10-27_0000320193-23-000106.html"
	if got := f.Filename(); got != want {
		t.Errorf("Filename() = %q, want %q", got, want)
	}
}

func TestCIKForTicker(t *testing.T) {
	tests := []struct {
		ticker string
		cik    string
		ok     bool
	}{
		{"AAPL", "320193", true},
		{"aapl", "320193", true},
		{"NVDA", "1045810", true},
		{"IBM", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.ticker, func(t *testing.T) {
			cik, err := CIKForTicker(tt.ticker)
			if tt.ok && (err != nil || cik != tt.cik) {
				t.Errorf("CIKForTicker(%q) = %q, %v", tt.ticker, cik, err)
			}
			if !tt.ok && err == nil {
				t.Errorf("CIKForTicker(%q) succeeded unexpectedly", tt.ticker)
			}
		})
	}
}

func TestTickersCoversAllSeven(t *testing.T) {
	tickers := Tickers()
	if len(tickers) != 7 {
		t.Fatalf("got %d tickers, want 7", len(tickers))
	}
	// Deterministic order.
	for i := 1; i < len(tickers); i++ {
		if tickers[i-1] >= tickers[i] {
			t.Errorf("tickers not sorted: %v", tickers)
		}
	}
}

func TestCandidateURLs(t *testing.T) {
	c := NewEDGARClient("")
	f := Filing{
		CIK:             "320193",
		AccessionNumber: "0000320193-23-000106",
		URL:             "https://www.sec.gov/Archives/edgar/data/320193/000032019323000106/aapl-20230930.htm",
	}

	urls := c.candidateURLs(f)
	if len(urls) != 2 {
		t.Fatalf("got %d candidates, want 2", len(urls))
	}
	if urls[0] != f.URL {
		t.Errorf("primary URL not first: %s", urls[0])
	}
	if !strings.HasSuffix(urls[1], "0000320193-23-000106.txt") {
		t.Errorf("fallback is not the text rendition: %s", urls[1])
	}
}
