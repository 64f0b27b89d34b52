// Package embedclient is the HTTP client for the remote embedding service.
// It follows the shape of the teacher's llm/providers package (Name/BuildURL
// raw net/http calls, self-contained request building) but deliberately
// does not carry over that package's retry.go backoff pattern: per SPEC_FULL
// §7/§13, this layer performs no retries — the embedding backend manages its
// own.
package embedclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kogsector/kgfusion/apperr"
)

// Client calls a single embedding-service base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New builds a Client against baseURL, trimming any trailing slash so path
// joining below never produces a double slash.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type embedRequest struct {
	Text string `json:"text"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

type batchEmbedRequest struct {
	Texts []string `json:"texts"`
}

type batchEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed requests a single vector for text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	var resp embedResponse
	if err := c.post(ctx, "/embed", embedRequest{Text: text}, &resp); err != nil {
		return nil, err
	}
	return resp.Embedding, nil
}

// EmbedBatch requests one vector per text in a single round trip. The chunk
// processor uses this for the pending-embedding set of an ingest batch,
// falling back to per-chunk Embed calls only if the whole batch call fails.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var resp batchEmbedResponse
	if err := c.post(ctx, "/batch/embed", batchEmbedRequest{Texts: texts}, &resp); err != nil {
		return nil, err
	}
	return resp.Embeddings, nil
}

// HealthCheck reports whether the embedding service is reachable, used by
// the /health components.embedding field.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("%w: build health request: %w", apperr.ErrBackendUnavailable, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: embedding service unreachable: %w", apperr.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: embedding service health check returned %d", apperr.ErrBackendUnavailable, resp.StatusCode)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: marshal request: %w", apperr.ErrEmbedding, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: build request: %w", apperr.ErrEmbedding, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: call %s: %w", apperr.ErrEmbedding, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: %s returned %d: %s", apperr.ErrEmbedding, path, resp.StatusCode, string(data))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response from %s: %w", apperr.ErrEmbedding, path, err)
	}
	return nil
}
