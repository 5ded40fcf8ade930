// Package normalize converts raw SEC EDGAR filing HTML into clean plain text
// plus structured table records. EDGAR documents are noisy: inline-styled
// pseudo-headers, XBRL wrapper tags, spacer images, page-number footers and
// deeply nested layout tables. The normalizer strips all of that before the
// text ever reaches sectioning and chunking.
package normalize

import (
	stdhtml "html"
	"log"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"

	"mag7intel/pkg/models"
)

var (
	blankRunRe  = regexp.MustCompile(`\n\s*\n`)
	hspaceRe    = regexp.MustCompile(`[ \t]+`)
	multiLineRe = regexp.MustCompile(`\n{3,}`)
)

// blockTags force a line break around their content during text extraction,
// preserving paragraph boundaries that a flat Text() call would lose.
var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "tr": true, "li": true,
	"table": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"h5": true, "h6": true, "section": true, "article": true,
}

// Normalizer turns a raw HTML filing into (plain text, tables).
type Normalizer struct{}

// New creates a Normalizer.
func New() *Normalizer {
	return &Normalizer{}
}

// Normalize strips markup noise from htmlContent and returns canonical plain
// text plus any extracted tables. Malformed HTML degrades to empty or partial
// text; it never returns an error, so downstream stages must tolerate empty
// input.
func (n *Normalizer) Normalize(htmlContent string) (string, []models.TableRecord) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		log.Printf("normalize: HTML parse failed, yielding empty text: %v", err)
		return "", nil
	}

	// Non-content elements must not leak into the output, not even as
	// whitespace.
	doc.Find("script, style, head, meta, link, noscript").Remove()
	removeComments(doc)

	// XBRL inline tags carry the visible numbers as text; unwrap them.
	doc.Find("ix\\:nonFraction, ix\\:nonNumeric, ix\\:fraction").Each(func(i int, sel *goquery.Selection) {
		sel.ReplaceWithHtml(sel.Text())
	})

	tables := n.ExtractTables(doc)

	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}

	var sb strings.Builder
	for _, node := range body.Nodes {
		writeText(&sb, node)
	}

	text := stdhtml.UnescapeString(sb.String())
	text = norm.NFKD.String(text)
	text = cleanWhitespace(text)
	return text, tables
}

// cleanWhitespace collapses horizontal whitespace runs to a single space and
// runs of blank lines to at most one blank line.
func cleanWhitespace(text string) string {
	text = hspaceRe.ReplaceAllString(text, " ")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	text = multiLineRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// writeText walks the node tree emitting text content, inserting line breaks
// around block-level elements so paragraph boundaries survive extraction.
func writeText(sb *strings.Builder, n *html.Node) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		return
	}
	if n.Type == html.CommentNode {
		return
	}
	block := n.Type == html.ElementNode && blockTags[n.Data]
	if block {
		sb.WriteString("\n")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(sb, c)
	}
	if block {
		sb.WriteString("\n")
	}
}

// removeComments strips HTML comment nodes in place. goquery has no selector
// for comments, so this walks the raw node tree.
func removeComments(doc *goquery.Document) {
	var strip func(n *html.Node)
	strip = func(n *html.Node) {
		c := n.FirstChild
		for c != nil {
			next := c.NextSibling
			if c.Type == html.CommentNode {
				n.RemoveChild(c)
			} else {
				strip(c)
			}
			c = next
		}
	}
	for _, node := range doc.Nodes {
		strip(node)
	}
}
