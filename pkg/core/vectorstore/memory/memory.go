// Package memory is an in-process vector store for development and tests. It
// embeds through a pluggable Embedder and ranks by cosine similarity; with no
// embedder it degrades to token-overlap scoring so tests need no network.
package memory

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"

	"mag7intel/pkg/core/vectorstore"
)

// Embedder turns text into vectors. Query and document embeddings must come
// from the same model for scores to be comparable.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

type entry struct {
	record vectorstore.UploadRecord
	vector []float64
}

// Store holds records and their vectors in memory.
type Store struct {
	mu       sync.RWMutex
	embedder Embedder
	entries  map[string]entry
}

// New creates a Store. embedder may be nil.
func New(embedder Embedder) *Store {
	return &Store{
		embedder: embedder,
		entries:  make(map[string]entry),
	}
}

var _ vectorstore.Store = (*Store)(nil)

// Upsert stores records, replacing any with the same id.
func (s *Store) Upsert(ctx context.Context, records []vectorstore.UploadRecord) (vectorstore.UpsertStats, error) {
	stats := vectorstore.UpsertStats{}

	for _, r := range records {
		var vec []float64
		if s.embedder != nil {
			v, err := s.embedder.Embed(ctx, r.ChunkText)
			if err != nil {
				return stats, err
			}
			vec = v
		}

		s.mu.Lock()
		s.entries[r.ID] = entry{record: r, vector: vec}
		s.mu.Unlock()
		stats.Uploaded++
	}

	stats.Batches = 1
	return stats, nil
}

// Search ranks stored records against the query and returns the top hits.
func (s *Store) Search(ctx context.Context, q vectorstore.Query) ([]vectorstore.SearchResult, error) {
	if q.TopK <= 0 {
		q.TopK = 5
	}

	var queryVec []float64
	if s.embedder != nil {
		v, err := s.embedder.Embed(ctx, q.Text)
		if err != nil {
			return nil, err
		}
		queryVec = v
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []vectorstore.SearchResult
	for _, e := range s.entries {
		if !matchesFilter(e.record, q.Filter) {
			continue
		}

		var score float64
		if queryVec != nil && e.vector != nil {
			score = cosine(queryVec, e.vector)
		} else {
			score = tokenOverlap(q.Text, e.record.ChunkText)
		}
		if score <= 0 {
			continue
		}

		results = append(results, vectorstore.SearchResult{
			ID:    e.record.ID,
			Score: score,
			Text:  e.record.ChunkText,
			Fields: map[string]string{
				"company":     e.record.Company,
				"form_type":   e.record.FormType,
				"filing_date": e.record.FilingDate,
				"section":     e.record.Section,
				"subsection":  e.record.Subsection,
				"source_file": e.record.SourceFile,
			},
		})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > q.TopK {
		results = results[:q.TopK]
	}
	return results, nil
}

// Len reports the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func matchesFilter(r vectorstore.UploadRecord, filter map[string]string) bool {
	for k, want := range filter {
		var got string
		switch k {
		case "company":
			got = r.Company
		case "form_type":
			got = r.FormType
		case "filing_date":
			got = r.FilingDate
		case "section":
			got = r.Section
		case "subsection":
			got = r.Subsection
		case "source_file":
			got = r.SourceFile
		default:
			return false
		}
		if got != want {
			return false
		}
	}
	return true
}

func cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// tokenOverlap scores by the share of query tokens present in the text.
func tokenOverlap(query, text string) float64 {
	qTokens := strings.Fields(strings.ToLower(query))
	if len(qTokens) == 0 {
		return 0
	}
	lower := strings.ToLower(text)
	hits := 0
	for _, t := range qTokens {
		if strings.Contains(lower, t) {
			hits++
		}
	}
	return float64(hits) / float64(len(qTokens))
}
