// Package vectorstore defines the retrieval contract between the ingestion
// pipeline and the answering agent, plus the flat record shape uploaded to
// the index. Embedding happens server-side in the index, so records carry
// text, not vectors.
package vectorstore

import (
	"context"
	"encoding/json"
	"time"

	"mag7intel/pkg/models"
)

// UploadRecord is the flat per-chunk record sent to the index. The text field
// is the embedded field; everything else is filterable metadata.
type UploadRecord struct {
	ID              string `json:"_id"`
	ChunkText       string `json:"chunk_text"`
	DocumentID      string `json:"document_id"`
	DocumentTitle   string `json:"document_title"`
	ChunkNumber     int    `json:"chunk_number"`
	DocumentURL     string `json:"document_url"`
	CreatedAt       string `json:"created_at"`
	DocumentType    string `json:"document_type"`
	Company         string `json:"company"`
	FormType        string `json:"form_type"`
	FilingDate      string `json:"filing_date"`
	ReportDate      string `json:"report_date"`
	AccessionNumber string `json:"accession_number"`
	Section         string `json:"section"`
	Subsection      string `json:"subsection"`
	SourceFile      string `json:"source_file"`
}

// SearchResult is one retrieval hit.
type SearchResult struct {
	ID     string
	Score  float64
	Text   string
	Fields map[string]string
}

// Query bounds one retrieval call. Filter keys are metadata field names with
// exact-match values.
type Query struct {
	Text   string
	TopK   int
	Filter map[string]string
}

// Store is the retrieval backend. Upsert is idempotent per record id.
type Store interface {
	Upsert(ctx context.Context, records []UploadRecord) (UpsertStats, error)
	Search(ctx context.Context, q Query) ([]SearchResult, error)
}

// UpsertStats reports what an upload pass actually did.
type UpsertStats struct {
	Uploaded int
	Skipped  int // oversized records left out of the index
	Batches  int
}

// RecordFromChunk converts a pipeline chunk into its upload record.
func RecordFromChunk(c models.Chunk) UploadRecord {
	return UploadRecord{
		ID:              c.ChunkID,
		ChunkText:       c.Text,
		DocumentID:      c.SourceFile,
		DocumentTitle:   c.Company + " " + c.FormType + " " + c.FilingDate,
		ChunkNumber:     c.ChunkIndex,
		CreatedAt:       time.Now().UTC().Format(time.RFC3339),
		DocumentType:    "sec_filing",
		Company:         c.Company,
		FormType:        c.FormType,
		FilingDate:      c.FilingDate,
		ReportDate:      c.ReportDate,
		AccessionNumber: c.AccessionNumber,
		Section:         c.Section,
		Subsection:      c.Subsection,
		SourceFile:      c.SourceFile,
	}
}

// EncodedSize returns the serialized size of a record in bytes, which is what
// index-side per-record limits are measured against.
func EncodedSize(r UploadRecord) int {
	data, err := json.Marshal(r)
	if err != nil {
		return 0
	}
	return len(data)
}
