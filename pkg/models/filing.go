// Package models defines the shared data types for the MAG7 filing
// intelligence pipeline: filing provenance, processed chunks, and run
// reporting structures exchanged between the ingestion, processing and
// upload stages.
package models

import "time"

// =============================================================================
// FILING PROVENANCE
// =============================================================================

// FilingMetadata identifies which company, filing, and document a piece of
// text came from. It is copied verbatim onto every chunk derived from the
// document and never mutated afterwards.
type FilingMetadata struct {
	Company         string `json:"company"`          // Ticker symbol, e.g. "AAPL"
	FormType        string `json:"form_type"`        // "10-K" or "10-Q"
	FilingDate      string `json:"filing_date"`      // "2023-10-27"
	ReportDate      string `json:"report_date"`      // Fiscal period end
	AccessionNumber string `json:"accession_number"` // e.g. "0000320193-23-000106"
	SourceFile      string `json:"source_file"`      // Filename on local storage
}

// RawDocument is an acquired filing: the HTML payload plus its provenance.
// Immutable once acquired; the normalizer consumes it exactly once per run.
type RawDocument struct {
	HTML     string         `json:"-"`
	Metadata FilingMetadata `json:"metadata"`
}

// =============================================================================
// TABLES
// =============================================================================

// TableRecord is a structured table extracted alongside the normalized text.
// It is associated with the source document, not with any individual chunk.
type TableRecord struct {
	TableID int        `json:"table_id"`
	Caption string     `json:"caption,omitempty"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// =============================================================================
// CHUNK
// =============================================================================

// Chunk is the central retrievable unit: a bounded span of filing text with
// full provenance and heuristic section labels. Chunks are immutable after
// creation; reprocessing the same document yields identical ids.
type Chunk struct {
	ChunkID         string `json:"chunk_id"`
	Company         string `json:"company"`
	FormType        string `json:"form_type"`
	FilingDate      string `json:"filing_date"`
	ReportDate      string `json:"report_date"`
	AccessionNumber string `json:"accession_number"`
	Section         string `json:"section"`
	Subsection      string `json:"subsection,omitempty"`
	Text            string `json:"text"`
	WordCount       int    `json:"word_count"`
	CharCount       int    `json:"char_count"`
	ChunkIndex      int    `json:"chunk_index"`
	SourceFile      string `json:"source_file"`
}

// ProcessedDocument is the durable per-document output record. Field-named
// JSON so readers tolerate added fields.
type ProcessedDocument struct {
	Filename            string         `json:"filename"`
	Metadata            FilingMetadata `json:"metadata"`
	Chunks              []Chunk        `json:"chunks"`
	Tables              []TableRecord  `json:"tables,omitempty"`
	TotalChunks         int            `json:"total_chunks"`
	TotalWords          int            `json:"total_words"`
	ProcessingTimestamp time.Time      `json:"processing_timestamp"`
}

// =============================================================================
// RUN REPORTING
// =============================================================================

// DocumentResult records the outcome of processing one source document.
// A failed document never aborts the batch; operators re-run the failed
// subset from this record.
type DocumentResult struct {
	Filename            string    `json:"filename"`
	TotalChunks         int       `json:"total_chunks,omitempty"`
	Error               string    `json:"error,omitempty"`
	ProcessingTimestamp time.Time `json:"processing_timestamp"`
}

// Succeeded reports whether the document processed without error.
func (r DocumentResult) Succeeded() bool { return r.Error == "" }

// RunSummary aggregates a full processing run.
type RunSummary struct {
	TotalFiles          int              `json:"total_files"`
	Successful          int              `json:"successful"`
	Failed              int              `json:"failed"`
	Results             []DocumentResult `json:"results"`
	ProcessingTimestamp time.Time        `json:"processing_timestamp"`
}
