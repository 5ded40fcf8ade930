package vectorstore

import (
	"strings"
	"testing"

	"mag7intel/pkg/models"
)

func TestRecordFromChunk(t *testing.T) {
	chunk := models.Chunk{
		ChunkID:         "a1b2c3d4e5f6",
		Company:         "NVDA",
		FormType:        "10-K",
		FilingDate:      "2024-02-21",
		ReportDate:      "2024-01-28",
		AccessionNumber: "0001045810-24-000029",
		Section:         "ITEM 7",
		Subsection:      "management's discussion and analysis",
		Text:            "Data center revenue more than tripled year over year.",
		WordCount:       9,
		CharCount:       53,
		ChunkIndex:      4,
		SourceFile:      "NVDA10-K2024-02-21_0001045810-24-000029.html",
	}

	r := RecordFromChunk(chunk)

	if r.ID != chunk.ChunkID {
		t.Errorf("ID = %q, want chunk id", r.ID)
	}
	if r.ChunkText != chunk.Text {
		t.Errorf("ChunkText = %q", r.ChunkText)
	}
	if r.Company != "NVDA" || r.FormType != "10-K" || r.Section != "ITEM 7" {
		t.Errorf("metadata not carried: %+v", r)
	}
	if r.ChunkNumber != 4 {
		t.Errorf("ChunkNumber = %d, want 4", r.ChunkNumber)
	}
	if r.DocumentID != chunk.SourceFile {
		t.Errorf("DocumentID = %q", r.DocumentID)
	}
	if r.DocumentType != "sec_filing" {
		t.Errorf("DocumentType = %q", r.DocumentType)
	}
	if r.CreatedAt == "" {
		t.Error("CreatedAt not set")
	}
	if !strings.Contains(r.DocumentTitle, "NVDA") || !strings.Contains(r.DocumentTitle, "10-K") {
		t.Errorf("DocumentTitle = %q", r.DocumentTitle)
	}
}

func TestEncodedSize(t *testing.T) {
	small := UploadRecord{ID: "x", ChunkText: "short"}
	large := UploadRecord{ID: "y", ChunkText: strings.Repeat("a", 40000)}

	if EncodedSize(small) == 0 {
		t.Error("small record has zero encoded size")
	}
	if EncodedSize(large) <= 40000 {
		t.Errorf("large record size = %d, want > payload length", EncodedSize(large))
	}
	if EncodedSize(large) <= EncodedSize(small) {
		t.Error("larger payload should encode larger")
	}
}
