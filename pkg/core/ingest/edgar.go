// Package ingest provides SEC EDGAR API integration for acquiring company
// filings. API Documentation: https://www.sec.gov/developer
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// SEC EDGAR API endpoints
	SECSubmissionsURL = "https://data.sec.gov/submissions/CIK%s.json"
	SECFilingURL      = "https://www.sec.gov/Archives/edgar/data/%s/%s"

	// Required User-Agent per SEC guidelines
	DefaultUserAgent = "MAG7Intel/1.0 (research@example.com)"

	// RequestDelay spaces consecutive SEC requests to stay under the
	// published 10 requests/second fair-access limit.
	RequestDelay = 100 * time.Millisecond
)

// =============================================================================
// SEC EDGAR DATA TYPES
// =============================================================================

// SECCompanyInfo represents the top-level company submission response.
type SECCompanyInfo struct {
	CIK            string     `json:"cik"`
	EntityType     string     `json:"entityType"`
	SIC            string     `json:"sic"`
	SICDescription string     `json:"sicDescription"`
	Name           string     `json:"name"`
	Tickers        []string   `json:"tickers"`
	Exchanges      []string   `json:"exchanges"`
	Filings        SECFilings `json:"filings"`
}

// SECFilings contains recent and older filing lists.
type SECFilings struct {
	Recent SECRecentFilings `json:"recent"`
}

// SECRecentFilings holds arrays of filing attributes (parallel arrays).
type SECRecentFilings struct {
	AccessionNumber []string `json:"accessionNumber"` // e.g., "0000320193-23-000106"
	FilingDate      []string `json:"filingDate"`      // e.g., "2023-10-27"
	ReportDate      []string `json:"reportDate"`      // Fiscal period end
	Form            []string `json:"form"`            // "10-K", "10-Q", "8-K"
	PrimaryDocument []string `json:"primaryDocument"` // filename
	Size            []int    `json:"size"`            // bytes
}

// Filing represents a single SEC filing (denormalized from parallel arrays).
type Filing struct {
	Ticker          string `json:"ticker"`
	CIK             string `json:"cik"`
	AccessionNumber string `json:"accession_number"`
	FilingDate      string `json:"filing_date"`
	ReportDate      string `json:"report_date"`
	FormType        string `json:"form_type"`
	PrimaryDocument string `json:"primary_document"`
	Size            int    `json:"size"`
	URL             string `json:"url"` // Constructed download URL
}

// Filename returns the local filename a filing is stored under:
// TICKER + form type + filing date + "_" + accession number + ".html",
// e.g. AAPL10-K2023-10-27_0000320193-23-000106.html.
func (f Filing) Filename() string {
	return fmt.Sprintf("%s%s%s_%s.html", f.Ticker, f.FormType, f.FilingDate, f.AccessionNumber)
}

// FilterOptions bound which filings GetFilings returns.
type FilterOptions struct {
	FormTypes []string // e.g. {"10-K", "10-Q"}; nil means all
	StartDate string   // inclusive, "2006-01-02" layout; empty means open
	EndDate   string   // inclusive; empty means open
	Limit     int      // 0 = no limit
}

// =============================================================================
// SEC EDGAR CLIENT
// =============================================================================

// EDGARClient handles SEC EDGAR API requests.
type EDGARClient struct {
	httpClient *http.Client
	userAgent  string
}

// NewEDGARClient creates a new SEC EDGAR API client. An empty userAgent falls
// back to the package default.
func NewEDGARClient(userAgent string) *EDGARClient {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &EDGARClient{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		userAgent: userAgent,
	}
}

// FetchCompanyInfo retrieves company submission data from SEC EDGAR.
//
// CIK should be zero-padded to 10 digits (e.g., "0000320193" for Apple).
// If not padded, this function will pad it automatically.
func (c *EDGARClient) FetchCompanyInfo(ctx context.Context, cik string) (*SECCompanyInfo, error) {
	// Zero-pad CIK to 10 digits
	cik = fmt.Sprintf("%010s", strings.TrimLeft(cik, "0"))

	url := fmt.Sprintf(SECSubmissionsURL, cik)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// SEC requires User-Agent header
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("SEC API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("SEC API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var info SECCompanyInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to parse SEC response: %w", err)
	}

	return &info, nil
}

// GetFilings extracts filings matching the filter from a submissions
// response. Rows whose parallel arrays are ragged at index i are skipped
// rather than failing the whole response.
func (c *EDGARClient) GetFilings(ticker string, info *SECCompanyInfo, opts FilterOptions) []Filing {
	recent := info.Filings.Recent
	filings := make([]Filing, 0)

	formTypeSet := make(map[string]bool)
	for _, ft := range opts.FormTypes {
		formTypeSet[ft] = true
	}

	for i := range recent.AccessionNumber {
		if i >= len(recent.Form) || i >= len(recent.FilingDate) || i >= len(recent.PrimaryDocument) {
			continue
		}

		if len(opts.FormTypes) > 0 && !formTypeSet[recent.Form[i]] {
			continue
		}
		if opts.StartDate != "" && recent.FilingDate[i] < opts.StartDate {
			continue
		}
		if opts.EndDate != "" && recent.FilingDate[i] > opts.EndDate {
			continue
		}

		reportDate := ""
		if i < len(recent.ReportDate) {
			reportDate = recent.ReportDate[i]
		}
		size := 0
		if i < len(recent.Size) {
			size = recent.Size[i]
		}

		// Format: https://www.sec.gov/Archives/edgar/data/{cik}/{accession-no-dashes}/{document}
		accessionNoDashes := strings.ReplaceAll(recent.AccessionNumber[i], "-", "")
		downloadURL := fmt.Sprintf(SECFilingURL, info.CIK, accessionNoDashes+"/"+recent.PrimaryDocument[i])

		filings = append(filings, Filing{
			Ticker:          ticker,
			CIK:             info.CIK,
			AccessionNumber: recent.AccessionNumber[i],
			FilingDate:      recent.FilingDate[i],
			ReportDate:      reportDate,
			FormType:        recent.Form[i],
			PrimaryDocument: recent.PrimaryDocument[i],
			Size:            size,
			URL:             downloadURL,
		})

		if opts.Limit > 0 && len(filings) >= opts.Limit {
			break
		}
	}

	return filings
}

// FetchDocument downloads a filing document, trying the primary URL and then
// the legacy fallbacks EDGAR still serves for older accessions.
func (c *EDGARClient) FetchDocument(ctx context.Context, filing Filing) (string, error) {
	var lastErr error
	for _, url := range c.candidateURLs(filing) {
		body, err := c.fetchHTML(ctx, url)
		if err != nil {
			lastErr = err
			continue
		}
		return body, nil
	}
	return "", fmt.Errorf("all download URLs failed for %s: %w", filing.AccessionNumber, lastErr)
}

// candidateURLs lists download locations in preference order: the primary
// document, then the accession-named text rendition.
func (c *EDGARClient) candidateURLs(filing Filing) []string {
	accessionNoDashes := strings.ReplaceAll(filing.AccessionNumber, "-", "")
	urls := []string{}
	if filing.URL != "" {
		urls = append(urls, filing.URL)
	}
	urls = append(urls,
		fmt.Sprintf(SECFilingURL, filing.CIK, accessionNoDashes+"/"+filing.AccessionNumber+".txt"),
	)
	return urls
}

func (c *EDGARClient) fetchHTML(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", err
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("SEC returned status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return string(body), nil
}
