package normalize

import (
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"mag7intel/pkg/models"
)

// ExtractTables pulls structured table data out of the document. Extraction
// is best-effort: tables without data rows are dropped, and a failure on one
// table never aborts the rest of the document.
func (n *Normalizer) ExtractTables(doc *goquery.Document) []models.TableRecord {
	var tables []models.TableRecord

	doc.Find("table").Each(func(i int, table *goquery.Selection) {
		record, ok := extractTable(i, table)
		if !ok {
			return
		}
		tables = append(tables, record)
	})

	return tables
}

func extractTable(id int, table *goquery.Selection) (record models.TableRecord, ok bool) {
	defer func() {
		// A single malformed table must not take down the document.
		if r := recover(); r != nil {
			log.Printf("normalize: table %d extraction failed: %v", id, r)
			ok = false
		}
	}()

	record = models.TableRecord{TableID: id}

	if caption := table.Find("caption").First(); caption.Length() > 0 {
		record.Caption = trimmedText(caption)
	}

	table.Find("thead").First().Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		record.Headers = append(record.Headers, trimmedText(cell))
	})

	// Prefer tbody rows; fall back to all rows for tables without one.
	rows := table.Find("tbody tr")
	if rows.Length() == 0 {
		rows = table.Find("tr")
	}
	rows.Each(func(_ int, row *goquery.Selection) {
		var cells []string
		row.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, trimmedText(cell))
		})
		if len(cells) > 0 {
			record.Rows = append(record.Rows, cells)
		}
	})

	if len(record.Rows) == 0 {
		return record, false
	}
	return record, true
}

func trimmedText(sel *goquery.Selection) string {
	return collapseSpace(sel.Text())
}

func collapseSpace(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', '\t':
			return ' '
		}
		return r
	}, s)
	return strings.TrimSpace(hspaceRe.ReplaceAllString(s, " "))
}
