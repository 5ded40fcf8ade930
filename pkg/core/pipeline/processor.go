// Package pipeline drives the per-document processing pass: raw filing HTML
// in, chunked and classified ProcessedDocument out, with durable JSON records
// and a run summary enumerating per-document success and failure.
package pipeline

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"mag7intel/pkg/core/chunker"
	"mag7intel/pkg/core/normalize"
	"mag7intel/pkg/models"
)

// Processor runs the ingestion pipeline over a directory of raw filings.
// Each document flows Normalizer -> Chunker (classification and noise
// filtering happen inside chunk assembly) in a single synchronous pass;
// documents are independent, so they process in parallel across workers.
type Processor struct {
	InputDir  string
	OutputDir string
	Workers   int

	normalizer *normalize.Normalizer
	chunker    *chunker.Chunker
}

// NewProcessor creates a Processor with the given chunk bounds. workers <= 0
// defaults to 4.
func NewProcessor(inputDir, outputDir string, cfg chunker.Config, workers int) *Processor {
	if workers <= 0 {
		workers = 4
	}
	return &Processor{
		InputDir:   inputDir,
		OutputDir:  outputDir,
		Workers:    workers,
		normalizer: normalize.New(),
		chunker:    chunker.New(cfg, nil),
	}
}

// ProcessDocument runs one raw document through the full pipeline. Pure
// transformation over the document's bytes; callers own all I/O around it.
func (p *Processor) ProcessDocument(doc models.RawDocument) models.ProcessedDocument {
	text, tables := p.normalizer.Normalize(doc.HTML)
	chunks := p.chunker.Chunk(text, doc.Metadata)

	totalWords := 0
	for _, c := range chunks {
		totalWords += c.WordCount
	}

	return models.ProcessedDocument{
		Filename:            doc.Metadata.SourceFile,
		Metadata:            doc.Metadata,
		Chunks:              chunks,
		Tables:              tables,
		TotalChunks:         len(chunks),
		TotalWords:          totalWords,
		ProcessingTimestamp: time.Now().UTC(),
	}
}

// ProcessFile reads one filing from disk and processes it.
func (p *Processor) ProcessFile(path string) (models.ProcessedDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.ProcessedDocument{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	meta := ParseFilename(filepath.Base(path))
	doc := models.RawDocument{HTML: string(data), Metadata: meta}
	result := p.ProcessDocument(doc)

	if err := p.writeProcessed(result); err != nil {
		return result, err
	}
	return result, nil
}

// ProcessAll processes every HTML filing under InputDir, collecting a run
// summary and the successfully processed documents in input order. One bad
// document never aborts the run: its error is recorded and processing
// continues with the next file.
func (p *Processor) ProcessAll() (models.RunSummary, []models.ProcessedDocument, error) {
	files, err := p.findFilings()
	if err != nil {
		return models.RunSummary{}, nil, err
	}
	if len(files) == 0 {
		return models.RunSummary{}, nil, fmt.Errorf("no HTML filings found in %s", p.InputDir)
	}

	if err := os.MkdirAll(p.OutputDir, 0o755); err != nil {
		return models.RunSummary{}, nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	log.Printf("pipeline: processing %d filings from %s with %d workers", len(files), p.InputDir, p.Workers)

	type indexed struct {
		pos    int
		result models.DocumentResult
		doc    models.ProcessedDocument
		ok     bool
	}

	paths := make(chan int)
	out := make(chan indexed)

	var wg sync.WaitGroup
	for w := 0; w < p.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range paths {
				path := files[i]
				doc, err := p.ProcessFile(path)
				res := models.DocumentResult{
					Filename:            filepath.Base(path),
					ProcessingTimestamp: time.Now().UTC(),
				}
				if err != nil {
					res.Error = err.Error()
					log.Printf("pipeline: %s failed: %v", filepath.Base(path), err)
					out <- indexed{pos: i, result: res}
					continue
				}
				res.TotalChunks = doc.TotalChunks
				log.Printf("pipeline: %s -> %d chunks", filepath.Base(path), doc.TotalChunks)
				out <- indexed{pos: i, result: res, doc: doc, ok: true}
			}
		}()
	}

	go func() {
		for i := range files {
			paths <- i
		}
		close(paths)
		wg.Wait()
		close(out)
	}()

	results := make([]models.DocumentResult, len(files))
	docs := make([]models.ProcessedDocument, len(files))
	processed := make([]bool, len(files))
	for r := range out {
		results[r.pos] = r.result
		if r.ok {
			docs[r.pos] = r.doc
			processed[r.pos] = true
		}
	}

	summary := models.RunSummary{
		TotalFiles:          len(files),
		Results:             results,
		ProcessingTimestamp: time.Now().UTC(),
	}
	var allChunks []models.Chunk
	var succeeded []models.ProcessedDocument
	for i, res := range results {
		if res.Succeeded() {
			summary.Successful++
			if processed[i] {
				allChunks = append(allChunks, docs[i].Chunks...)
				succeeded = append(succeeded, docs[i])
			}
		} else {
			summary.Failed++
		}
	}

	if err := writeJSON(filepath.Join(p.OutputDir, "all_chunks.json"), allChunks); err != nil {
		return summary, succeeded, err
	}
	if err := writeJSON(filepath.Join(p.OutputDir, "processing_summary.json"), summary); err != nil {
		return summary, succeeded, err
	}

	log.Printf("pipeline: complete, %d successful, %d failed, %d chunks", summary.Successful, summary.Failed, len(allChunks))
	return summary, succeeded, nil
}

var (
	companyRe   = regexp.MustCompile(`^([A-Z]+)`)
	formRe      = regexp.MustCompile(`(10-[KQ])`)
	dateRe      = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`)
	accessionRe = regexp.MustCompile(`_(\d{10}-\d{2}-\d{6})`)
)

// ParseFilename extracts provenance from an acquisition filename of the form
// AAPL10-K2023-10-27_0000320193-23-000106.html. Missing pieces degrade to
// "Unknown" rather than failing the document.
func ParseFilename(filename string) models.FilingMetadata {
	meta := models.FilingMetadata{
		Company:         "Unknown",
		FormType:        "Unknown",
		FilingDate:      "Unknown",
		ReportDate:      "Unknown",
		AccessionNumber: "Unknown",
		SourceFile:      filename,
	}

	if m := companyRe.FindStringSubmatch(filename); m != nil {
		meta.Company = m[1]
	}
	if m := formRe.FindStringSubmatch(filename); m != nil {
		meta.FormType = m[1]
	}
	if m := dateRe.FindStringSubmatch(filename); m != nil {
		meta.FilingDate = m[1]
		meta.ReportDate = m[1]
	}
	if m := accessionRe.FindStringSubmatch(filename); m != nil {
		meta.AccessionNumber = m[1]
	}
	return meta
}

// LoadAllChunks reads back the combined chunk output of a processing run.
func LoadAllChunks(outputDir string) ([]models.Chunk, error) {
	path := filepath.Join(outputDir, "all_chunks.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var chunks []models.Chunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return chunks, nil
}

func (p *Processor) findFilings() ([]string, error) {
	var files []string
	err := filepath.WalkDir(p.InputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext == ".html" || ext == ".htm" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", p.InputDir, err)
	}
	return files, nil
}

func (p *Processor) writeProcessed(doc models.ProcessedDocument) error {
	stem := strings.TrimSuffix(doc.Filename, filepath.Ext(doc.Filename))
	path := filepath.Join(p.OutputDir, stem+"_processed.json")
	if err := os.MkdirAll(p.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	return writeJSON(path, doc)
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
