// Package inference is an HTTP client for a text-embeddings-inference
// compatible runtime, which owns all tokenization and numeric computation.
// The runtime is consumed through a fixed contract: /info for the served
// model, /embed_sparse for sparse vectors, /embed_all for per-token vectors.
package inference

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/embedkit/embedd/internal/embed"
)

// Client talks to one inference runtime instance.
type Client struct {
	baseURL string
	client  *http.Client
}

// New creates an inference client for the runtime at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "http://127.0.0.1:7997"
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Info returns the runtime's served model description.
func (c *Client) Info(ctx context.Context) (ModelInfo, error) {
	var info ModelInfo

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/info", nil)
	if err != nil {
		return info, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return info, fmt.Errorf("inference info request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return info, c.readError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return info, fmt.Errorf("reading info response: %w", err)
	}
	if err := sonic.Unmarshal(body, &info); err != nil {
		return info, fmt.Errorf("decoding info response: %w", err)
	}
	return info, nil
}

// EmbedSparse generates one sparse vector per input text.
func (c *Client) EmbedSparse(ctx context.Context, texts []string) ([]embed.SparseVector, error) {
	var raw [][]sparseTerm
	if err := c.post(ctx, "/embed_sparse", texts, &raw); err != nil {
		return nil, err
	}
	if len(raw) != len(texts) {
		return nil, fmt.Errorf("runtime returned %d embeddings for %d texts", len(raw), len(texts))
	}

	vectors := make([]embed.SparseVector, len(raw))
	for i, terms := range raw {
		v := embed.SparseVector{
			Indices: make([]uint32, len(terms)),
			Values:  make([]float32, len(terms)),
		}
		for j, t := range terms {
			v.Indices[j] = t.Index
			v.Values[j] = t.Value
		}
		vectors[i] = v
	}
	return vectors, nil
}

// EmbedAll generates the full per-token vector matrix for each input text.
func (c *Client) EmbedAll(ctx context.Context, texts []string) ([][][]float32, error) {
	var raw [][][]float32
	if err := c.post(ctx, "/embed_all", texts, &raw); err != nil {
		return nil, err
	}
	if len(raw) != len(texts) {
		return nil, fmt.Errorf("runtime returned %d embeddings for %d texts", len(raw), len(texts))
	}
	return raw, nil
}

func (c *Client) post(ctx context.Context, path string, texts []string, out any) error {
	body, err := sonic.Marshal(embedRequest{Inputs: texts})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("inference request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.readError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading inference response: %w", err)
	}
	if err := sonic.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding inference response: %w", err)
	}
	return nil
}

// readError surfaces the runtime's error body in the returned error.
func (c *Client) readError(resp *http.Response) error {
	data, _ := io.ReadAll(resp.Body)
	var re runtimeError
	if err := sonic.Unmarshal(data, &re); err == nil && re.Error != "" {
		return fmt.Errorf("inference runtime error (status %d): %s", resp.StatusCode, re.Error)
	}
	return fmt.Errorf("inference runtime error (status %d): %s", resp.StatusCode, string(data))
}
