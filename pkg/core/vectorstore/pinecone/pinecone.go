// Package pinecone is a minimal REST client for a Pinecone index with
// integrated embeddings. Records are uploaded as text and embedded
// server-side; search requests likewise embed the query text in the index.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"mag7intel/pkg/core/vectorstore"
)

const (
	controlPlaneURL = "https://api.pinecone.io"
	apiVersion      = "2025-01"

	// DefaultIndexName and DefaultNamespace are the production index
	// coordinates.
	DefaultIndexName = "mag7-financial-intelligence-2025"
	DefaultNamespace = "mag7-financial-data"

	// EmbedModel is the hosted model the index embeds records with.
	EmbedModel = "llama-text-embed-v2"

	// BatchSize caps records per upsert request.
	BatchSize = 100
	// MaxRecordBytes is the index-side per-record ceiling; larger records
	// are skipped with a log line rather than failing the batch.
	MaxRecordBytes = 35000
)

// Config holds index coordinates and credentials.
type Config struct {
	APIKey    string
	IndexName string
	Namespace string
	Timeout   time.Duration
}

// Client talks to one Pinecone index over REST.
type Client struct {
	cfg        Config
	httpClient *http.Client
	host       string // data-plane host, resolved lazily from the control plane
}

// New creates a Client. Empty index name and namespace fall back to the
// production defaults.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("pinecone API key is required")
	}
	if cfg.IndexName == "" {
		cfg.IndexName = DefaultIndexName
	}
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultNamespace
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

var _ vectorstore.Store = (*Client)(nil)

// EnsureIndex creates the index with integrated embeddings if it does not
// exist, then resolves the data-plane host. Safe to call repeatedly.
func (c *Client) EnsureIndex(ctx context.Context) error {
	host, err := c.describeIndexHost(ctx)
	if err == nil {
		c.host = host
		return nil
	}

	body := map[string]any{
		"name":   c.cfg.IndexName,
		"cloud":  "aws",
		"region": "us-east-1",
		"embed": map[string]any{
			"model": EmbedModel,
			"field_map": map[string]string{
				"text": "chunk_text",
			},
		},
	}
	if err := c.doJSON(ctx, http.MethodPost, controlPlaneURL+"/indexes/create-for-model", body, nil); err != nil {
		return fmt.Errorf("failed to create index %s: %w", c.cfg.IndexName, err)
	}

	// Index creation is asynchronous; poll until the host appears.
	for i := 0; i < 30; i++ {
		host, err = c.describeIndexHost(ctx)
		if err == nil && host != "" {
			c.host = host
			return nil
		}
		select {
		case <-time.After(2 * time.Second):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("index %s did not become ready", c.cfg.IndexName)
}

// Upsert uploads records in batches. Oversized records are skipped and
// counted; a failed batch aborts the upload with the stats accumulated so
// far, since retrying blind risks partial duplicates going unnoticed.
func (c *Client) Upsert(ctx context.Context, records []vectorstore.UploadRecord) (vectorstore.UpsertStats, error) {
	stats := vectorstore.UpsertStats{}
	if err := c.ensureHost(ctx); err != nil {
		return stats, err
	}

	batch := make([]vectorstore.UploadRecord, 0, BatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := c.upsertBatch(ctx, batch); err != nil {
			return err
		}
		stats.Uploaded += len(batch)
		stats.Batches++
		batch = batch[:0]
		return nil
	}

	for _, r := range records {
		if size := vectorstore.EncodedSize(r); size > MaxRecordBytes {
			log.Printf("pinecone: skipping oversized record %s (%d bytes)", r.ID, size)
			stats.Skipped++
			continue
		}
		batch = append(batch, r)
		if len(batch) >= BatchSize {
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}
	if err := flush(); err != nil {
		return stats, err
	}
	return stats, nil
}

// upsertBatch sends one NDJSON batch to the records endpoint.
func (c *Client) upsertBatch(ctx context.Context, batch []vectorstore.UploadRecord) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range batch {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to encode record %s: %w", r.ID, err)
		}
	}

	url := fmt.Sprintf("https://%s/records/namespaces/%s/upsert", c.host, c.cfg.Namespace)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-ndjson")
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("pinecone upsert failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("pinecone upsert returned %s: %s", resp.Status, string(body))
	}
	return nil
}

// Search embeds the query text in the index and returns the top hits,
// optionally constrained by exact-match metadata filters.
func (c *Client) Search(ctx context.Context, q vectorstore.Query) ([]vectorstore.SearchResult, error) {
	if err := c.ensureHost(ctx); err != nil {
		return nil, err
	}
	if q.TopK <= 0 {
		q.TopK = 5
	}

	query := map[string]any{
		"inputs": map[string]any{"text": q.Text},
		"top_k":  q.TopK,
	}
	if len(q.Filter) > 0 {
		filter := make(map[string]any, len(q.Filter))
		for k, v := range q.Filter {
			filter[k] = map[string]any{"$eq": v}
		}
		query["filter"] = filter
	}
	body := map[string]any{
		"query": query,
		"fields": []string{
			"chunk_text", "company", "form_type", "filing_date",
			"section", "subsection", "source_file",
		},
	}

	var resp struct {
		Result struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Score  float64        `json:"_score"`
				Fields map[string]any `json:"fields"`
			} `json:"hits"`
		} `json:"result"`
	}
	url := fmt.Sprintf("https://%s/records/namespaces/%s/search", c.host, c.cfg.Namespace)
	if err := c.doJSON(ctx, http.MethodPost, url, body, &resp); err != nil {
		return nil, fmt.Errorf("pinecone search failed: %w", err)
	}

	results := make([]vectorstore.SearchResult, 0, len(resp.Result.Hits))
	for _, h := range resp.Result.Hits {
		r := vectorstore.SearchResult{
			ID:     h.ID,
			Score:  h.Score,
			Fields: make(map[string]string, len(h.Fields)),
		}
		for k, v := range h.Fields {
			s, ok := v.(string)
			if !ok {
				continue
			}
			if k == "chunk_text" {
				r.Text = s
				continue
			}
			r.Fields[k] = s
		}
		results = append(results, r)
	}
	return results, nil
}

func (c *Client) ensureHost(ctx context.Context) error {
	if c.host != "" {
		return nil
	}
	return c.EnsureIndex(ctx)
}

func (c *Client) describeIndexHost(ctx context.Context) (string, error) {
	var resp struct {
		Host   string `json:"host"`
		Status struct {
			Ready bool `json:"ready"`
		} `json:"status"`
	}
	url := fmt.Sprintf("%s/indexes/%s", controlPlaneURL, c.cfg.IndexName)
	if err := c.doJSON(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return "", err
	}
	if resp.Host == "" {
		return "", fmt.Errorf("index %s has no host yet", c.cfg.IndexName)
	}
	return resp.Host, nil
}

func (c *Client) doJSON(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("pinecone %s %s returned %s: %s", method, url, resp.Status, string(data))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) setAuth(req *http.Request) {
	req.Header.Set("Api-Key", c.cfg.APIKey)
	req.Header.Set("X-Pinecone-Api-Version", apiVersion)
}
