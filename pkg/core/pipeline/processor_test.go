package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mag7intel/pkg/core/chunker"
	"mag7intel/pkg/models"
)

func TestParseFilename(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     models.FilingMetadata
	}{
		{
			name:     "standard annual",
			filename: "AAPL10-K2023-10-27_0000320193-23-000106.html",
			want: models.FilingMetadata{
				Company:         "AAPL",
				FormType:        "10-K",
				FilingDate:      "2023-10-27",
				ReportDate:      "2023-10-27",
				AccessionNumber: "0000320193-23-000106",
				SourceFile:      "AAPL10-K2023-10-27_0000320193-23-000106.html",
			},
		},
		{
			name:     "quarterly",
			filename: "MSFT10-Q2024-01-25_0000789019-24-000009.html",
			want: models.FilingMetadata{
				Company:         "MSFT",
				FormType:        "10-Q",
				FilingDate:      "2024-01-25",
				ReportDate:      "2024-01-25",
				AccessionNumber: "0000789019-24-000009",
				SourceFile:      "MSFT10-Q2024-01-25_0000789019-24-000009.html",
			},
		},
		{
			name:     "unparseable",
			filename: "notes.html",
			want: models.FilingMetadata{
				Company:         "Unknown",
				FormType:        "Unknown",
				FilingDate:      "Unknown",
				ReportDate:      "Unknown",
				AccessionNumber: "Unknown",
				SourceFile:      "notes.html",
			},
		},
		{
			name:     "missing accession",
			filename: "TSLA10-K2024-01-29.html",
			want: models.FilingMetadata{
				Company:         "TSLA",
				FormType:        "10-K",
				FilingDate:      "2024-01-29",
				ReportDate:      "2024-01-29",
				AccessionNumber: "Unknown",
				SourceFile:      "TSLA10-K2024-01-29.html",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseFilename(tt.filename)
			if got != tt.want {
				t.Errorf("ParseFilename(%q) = %+v, want %+v", tt.filename, got, tt.want)
			}
		})
	}
}

// filingHTML builds a document long enough to yield multiple chunks.
func filingHTML() string {
	var b strings.Builder
	b.WriteString("<html><body>")
	b.WriteString("<p>Item 7. Management's Discussion and Analysis of Financial Condition.</p>")
	for i := 0; i < 40; i++ {
		b.WriteString("<p>Total net sales increased due to higher unit volumes and favorable product mix across all reportable segments during the fiscal year. ")
		b.WriteString("Operating expenses grew at a slower pace than revenue reflecting disciplined spending across the organization.</p>")
	}
	b.WriteString("</body></html>")
	return b.String()
}

func TestProcessDocument(t *testing.T) {
	p := NewProcessor("", "", chunker.DefaultConfig(), 1)

	doc := models.RawDocument{
		HTML:     filingHTML(),
		Metadata: ParseFilename("AAPL10-K2023-10-27_0000320193-23-000106.html"),
	}

	result := p.ProcessDocument(doc)
	if result.TotalChunks == 0 {
		t.Fatal("expected chunks from a full-length document")
	}
	if result.TotalChunks != len(result.Chunks) {
		t.Errorf("TotalChunks %d != len(Chunks) %d", result.TotalChunks, len(result.Chunks))
	}
	if result.TotalWords == 0 {
		t.Error("expected nonzero word total")
	}
	for i, c := range result.Chunks {
		if c.Company != "AAPL" || c.FormType != "10-K" {
			t.Errorf("chunk %d lost provenance: %+v", i, c)
		}
	}
}

func TestProcessAll(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()

	files := []string{
		"AAPL10-K2023-10-27_0000320193-23-000106.html",
		"MSFT10-Q2024-01-25_0000789019-24-000009.html",
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(inputDir, f), []byte(filingHTML()), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	p := NewProcessor(inputDir, outputDir, chunker.DefaultConfig(), 2)
	summary, docs, err := p.ProcessAll()
	if err != nil {
		t.Fatalf("ProcessAll: %v", err)
	}

	if summary.TotalFiles != 2 || summary.Successful != 2 || summary.Failed != 0 {
		t.Errorf("summary = %+v", summary)
	}
	if len(docs) != summary.Successful {
		t.Fatalf("got %d documents, want %d (one per success)", len(docs), summary.Successful)
	}
	for _, d := range docs {
		if d.TotalChunks == 0 || len(d.Chunks) != d.TotalChunks {
			t.Errorf("document %s returned inconsistent chunks: %d vs %d", d.Filename, len(d.Chunks), d.TotalChunks)
		}
	}
	for _, res := range summary.Results {
		if !res.Succeeded() {
			t.Errorf("%s failed: %s", res.Filename, res.Error)
		}
		if res.TotalChunks == 0 {
			t.Errorf("%s produced no chunks", res.Filename)
		}
	}

	// Per-document and aggregate outputs.
	for _, f := range files {
		stem := strings.TrimSuffix(f, ".html")
		if _, err := os.Stat(filepath.Join(outputDir, stem+"_processed.json")); err != nil {
			t.Errorf("missing per-document output for %s: %v", f, err)
		}
	}
	if _, err := os.Stat(filepath.Join(outputDir, "processing_summary.json")); err != nil {
		t.Errorf("missing processing summary: %v", err)
	}

	chunks, err := LoadAllChunks(outputDir)
	if err != nil {
		t.Fatalf("LoadAllChunks: %v", err)
	}
	if len(chunks) == 0 {
		t.Error("all_chunks.json holds no chunks")
	}

	companies := map[string]bool{}
	for _, c := range chunks {
		companies[c.Company] = true
	}
	if !companies["AAPL"] || !companies["MSFT"] {
		t.Errorf("aggregate chunks missing a company: %v", companies)
	}
}

func TestProcessAllEmptyDir(t *testing.T) {
	p := NewProcessor(t.TempDir(), t.TempDir(), chunker.DefaultConfig(), 1)
	if _, _, err := p.ProcessAll(); err == nil {
		t.Error("expected error for directory without filings")
	}
}
