package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// Default acquisition window: ten fiscal years of annual and quarterly
// reports.
const (
	DefaultStartDate = "2015-01-01"
	DefaultEndDate   = "2025-12-31"
)

// DownloadResult records the outcome of one filing download.
type DownloadResult struct {
	Ticker          string `json:"ticker"`
	AccessionNumber string `json:"accession_number"`
	Filename        string `json:"filename"`
	SizeBytes       int    `json:"size_bytes"`
	Error           string `json:"error,omitempty"`
}

// DownloadSummary aggregates a full acquisition run.
type DownloadSummary struct {
	TotalFilings int              `json:"total_filings"`
	Downloaded   int              `json:"downloaded"`
	Failed       int              `json:"failed"`
	Results      []DownloadResult `json:"results"`
	Timestamp    time.Time        `json:"timestamp"`
}

// Downloader acquires filings for the covered companies into a local
// directory, one HTML file per filing, plus JSON manifests describing what
// was found and what was fetched.
type Downloader struct {
	Client    *EDGARClient
	OutputDir string
	Delay     time.Duration // between consecutive SEC requests
	Options   FilterOptions
}

// NewDownloader creates a Downloader with the default form types, date window
// and request spacing.
func NewDownloader(outputDir, userAgent string) *Downloader {
	return &Downloader{
		Client:    NewEDGARClient(userAgent),
		OutputDir: outputDir,
		Delay:     RequestDelay,
		Options: FilterOptions{
			FormTypes: []string{"10-K", "10-Q"},
			StartDate: DefaultStartDate,
			EndDate:   DefaultEndDate,
		},
	}
}

// ListFilings queries the submissions API for every covered ticker and
// returns the matching filings. The manifest is also written to
// filing_metadata.json under OutputDir.
func (d *Downloader) ListFilings(ctx context.Context, tickers []string) ([]Filing, error) {
	if len(tickers) == 0 {
		tickers = Tickers()
	}

	var all []Filing
	for _, ticker := range tickers {
		cik, err := CIKForTicker(ticker)
		if err != nil {
			return nil, err
		}

		info, err := d.Client.FetchCompanyInfo(ctx, cik)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch submissions for %s: %w", ticker, err)
		}

		filings := d.Client.GetFilings(ticker, info, d.Options)
		log.Printf("ingest: %s (%s) has %d matching filings", ticker, info.Name, len(filings))
		all = append(all, filings...)

		d.pause(ctx)
	}

	if err := os.MkdirAll(d.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	if err := d.writeJSON("filing_metadata.json", all); err != nil {
		return nil, err
	}
	return all, nil
}

// DownloadAll lists and downloads every matching filing. Individual download
// failures are recorded in the summary and do not abort the run; the summary
// is written to download_results.json under OutputDir.
func (d *Downloader) DownloadAll(ctx context.Context, tickers []string) (DownloadSummary, error) {
	filings, err := d.ListFilings(ctx, tickers)
	if err != nil {
		return DownloadSummary{}, err
	}

	summary := DownloadSummary{
		TotalFilings: len(filings),
		Timestamp:    time.Now().UTC(),
	}

	for _, filing := range filings {
		res := DownloadResult{
			Ticker:          filing.Ticker,
			AccessionNumber: filing.AccessionNumber,
			Filename:        filing.Filename(),
		}

		path := filepath.Join(d.OutputDir, filing.Filename())
		if info, err := os.Stat(path); err == nil && info.Size() > 0 {
			// Already on disk from an earlier run.
			res.SizeBytes = int(info.Size())
			summary.Downloaded++
			summary.Results = append(summary.Results, res)
			continue
		}

		body, err := d.Client.FetchDocument(ctx, filing)
		if err != nil {
			res.Error = err.Error()
			summary.Failed++
			summary.Results = append(summary.Results, res)
			log.Printf("ingest: download failed for %s %s: %v", filing.Ticker, filing.AccessionNumber, err)
			d.pause(ctx)
			continue
		}

		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			res.Error = err.Error()
			summary.Failed++
			summary.Results = append(summary.Results, res)
			d.pause(ctx)
			continue
		}

		res.SizeBytes = len(body)
		summary.Downloaded++
		summary.Results = append(summary.Results, res)
		log.Printf("ingest: saved %s (%d bytes)", filing.Filename(), len(body))

		d.pause(ctx)
	}

	if err := d.writeJSON("download_results.json", summary); err != nil {
		return summary, err
	}

	log.Printf("ingest: complete, %d downloaded, %d failed", summary.Downloaded, summary.Failed)
	return summary, nil
}

func (d *Downloader) pause(ctx context.Context) {
	if d.Delay <= 0 {
		return
	}
	select {
	case <-time.After(d.Delay):
	case <-ctx.Done():
	}
}

func (d *Downloader) writeJSON(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	path := filepath.Join(d.OutputDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
