package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"mag7intel/pkg/models"
)

// ChunkRepo stores processed filing chunks and run summaries.
type ChunkRepo struct {
	pool *pgxpool.Pool
}

// NewChunkRepo creates a repository over a connection pool.
func NewChunkRepo(pool *pgxpool.Pool) *ChunkRepo {
	return &ChunkRepo{pool: pool}
}

// SaveDocument upserts every chunk of a processed document. Chunk ids are
// stable across re-ingestion, so conflicts update in place.
func (r *ChunkRepo) SaveDocument(ctx context.Context, doc models.ProcessedDocument) error {
	if r.pool == nil {
		return fmt.Errorf("database pool not configured")
	}

	query := `
		INSERT INTO filing_chunks (
			chunk_id, company, form_type, filing_date, report_date,
			accession_number, section, subsection, chunk_index,
			chunk_text, word_count, char_count, source_file
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (chunk_id)
		DO UPDATE SET
			section = EXCLUDED.section,
			subsection = EXCLUDED.subsection,
			chunk_text = EXCLUDED.chunk_text,
			word_count = EXCLUDED.word_count,
			char_count = EXCLUDED.char_count,
			updated_at = NOW()
	`

	for _, c := range doc.Chunks {
		_, err := r.pool.Exec(ctx, query,
			c.ChunkID, c.Company, c.FormType, c.FilingDate, c.ReportDate,
			c.AccessionNumber, c.Section, c.Subsection, c.ChunkIndex,
			c.Text, c.WordCount, c.CharCount, c.SourceFile,
		)
		if err != nil {
			return fmt.Errorf("failed to save chunk %s: %w", c.ChunkID, err)
		}
	}
	return nil
}

// SaveRunSummary records one pipeline run.
func (r *ChunkRepo) SaveRunSummary(ctx context.Context, summary models.RunSummary) error {
	if r.pool == nil {
		return fmt.Errorf("database pool not configured")
	}

	resultsJSON, err := json.Marshal(summary.Results)
	if err != nil {
		return fmt.Errorf("failed to marshal run results: %w", err)
	}

	query := `
		INSERT INTO pipeline_runs (total_files, successful, failed, results, ran_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = r.pool.Exec(ctx, query,
		summary.TotalFiles, summary.Successful, summary.Failed,
		resultsJSON, summary.ProcessingTimestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to save run summary: %w", err)
	}
	return nil
}

// SaveDocuments persists multiple documents, continuing past individual
// failures.
func (r *ChunkRepo) SaveDocuments(ctx context.Context, docs []models.ProcessedDocument) {
	for _, doc := range docs {
		if err := r.SaveDocument(ctx, doc); err != nil {
			log.Printf("store: failed to persist %s: %v", doc.Filename, err)
		}
	}
}
