// Package chunker partitions normalized filing text into bounded,
// overlapping, retrievable chunks. Sentences are the atomic unit: a chunk
// never splits one, noise sentences never enter one, and consecutive chunks
// share a two-sentence overlap window so local context survives the cut.
package chunker

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"mag7intel/pkg/core/section"
	"mag7intel/pkg/models"
)

const (
	// DefaultTargetSize is the chunk size ceiling in characters.
	DefaultTargetSize = 800
	// DefaultMinSize is the floor below which a trailing buffer is dropped.
	DefaultMinSize = 200

	// overlapSentences carried from a sealed chunk into the next buffer.
	overlapSentences = 2

	chunkIDLength = 12
)

// Config bounds chunk assembly.
type Config struct {
	TargetSize int
	MinSize    int
}

// DefaultConfig returns the production chunk bounds.
func DefaultConfig() Config {
	return Config{TargetSize: DefaultTargetSize, MinSize: DefaultMinSize}
}

// Chunker assembles chunks from normalized text. It performs no I/O and is
// deterministic: identical input text and provenance always produce the same
// chunk sequence with the same ids.
type Chunker struct {
	cfg        Config
	classifier section.Classifier
}

// New creates a Chunker. A nil classifier falls back to the default pattern
// table.
func New(cfg Config, classifier section.Classifier) *Chunker {
	if cfg.TargetSize <= 0 {
		cfg.TargetSize = DefaultTargetSize
	}
	if cfg.MinSize <= 0 {
		cfg.MinSize = DefaultMinSize
	}
	if classifier == nil {
		classifier = section.NewPatternClassifier()
	}
	return &Chunker{cfg: cfg, classifier: classifier}
}

var sentenceEndRe = regexp.MustCompile(`[.!?]\s+`)

// SplitSentences breaks text on end-of-sentence punctuation followed by
// whitespace, keeping the punctuation with its sentence.
func SplitSentences(text string) []string {
	var sentences []string
	start := 0
	for _, loc := range sentenceEndRe.FindAllStringIndex(text, -1) {
		// loc[0]+1 is just past the punctuation character.
		s := strings.TrimSpace(text[start : loc[0]+1])
		if s != "" {
			sentences = append(sentences, s)
		}
		start = loc[1]
	}
	if tail := strings.TrimSpace(text[start:]); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

// Chunk partitions text into chunks carrying meta's provenance. Noise
// sentences are skipped entirely. A trailing buffer shorter than the minimum
// size is dropped rather than emitted as a degenerate chunk.
func (c *Chunker) Chunk(text string, meta models.FilingMetadata) []models.Chunk {
	var chunks []models.Chunk
	var buffer []string
	bufferLen := 0
	index := 0

	for _, sentence := range SplitSentences(text) {
		if IsNoise(sentence) {
			continue
		}

		if bufferLen+len(sentence) > c.cfg.TargetSize && len(buffer) > 0 {
			chunks = append(chunks, c.seal(buffer, meta, index))
			index++

			// Seed the next buffer with the sealed chunk's trailing
			// sentences before appending the triggering sentence.
			overlap := buffer
			if len(overlap) > overlapSentences {
				overlap = overlap[len(overlap)-overlapSentences:]
			}
			buffer = append(append([]string(nil), overlap...), sentence)
		} else {
			buffer = append(buffer, sentence)
		}
		bufferLen = joinedLen(buffer)
	}

	if joinedLen(buffer) >= c.cfg.MinSize {
		chunks = append(chunks, c.seal(buffer, meta, index))
	}

	return chunks
}

func (c *Chunker) seal(buffer []string, meta models.FilingMetadata, index int) models.Chunk {
	text := strings.Join(buffer, " ")
	sec, sub := c.classifier.Classify(text)

	return models.Chunk{
		ChunkID:         ChunkID(meta, index),
		Company:         meta.Company,
		FormType:        meta.FormType,
		FilingDate:      meta.FilingDate,
		ReportDate:      meta.ReportDate,
		AccessionNumber: meta.AccessionNumber,
		Section:         sec,
		Subsection:      sub,
		Text:            text,
		WordCount:       len(strings.Fields(text)),
		CharCount:       len(text),
		ChunkIndex:      index,
		SourceFile:      meta.SourceFile,
	}
}

// ChunkID derives a stable identifier from the provenance tuple and chunk
// index: the md5 of "company_filingDate_formType_index" truncated to 12 hex
// characters. Identical inputs always yield the same id, which makes
// re-ingestion overwrite-safe. The truncation carries a negligible collision
// probability at the expected corpus scale.
func ChunkID(meta models.FilingMetadata, index int) string {
	input := fmt.Sprintf("%s_%s_%s_%d", meta.Company, meta.FilingDate, meta.FormType, index)
	sum := md5.Sum([]byte(input))
	return hex.EncodeToString(sum[:])[:chunkIDLength]
}

func joinedLen(sentences []string) int {
	if len(sentences) == 0 {
		return 0
	}
	n := len(sentences) - 1 // separating spaces
	for _, s := range sentences {
		n += len(s)
	}
	return n
}
