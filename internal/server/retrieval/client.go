// Package retrieval forwards indexing and question-answering requests to
// the remote retrieval service and normalizes its responses. One outbound
// call per operation: no retries, no idempotency keys, transport-default
// timeouts.
package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/avolkov/askpdf/internal/common"
	"github.com/avolkov/askpdf/internal/server/models"
)

// Client talks to the indexing/question-answering service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a retrieval client. When httpClient is nil,
// http.DefaultClient is used.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Index asks the service to ingest the object at bucket/path. The reply's
// "output" field is passed through, defaulting to "indexed" when absent.
// Calling twice re-triggers indexing twice.
func (c *Client) Index(ctx context.Context, bucket, path string) (*models.IndexResult, error) {
	body, err := c.post(ctx, "/index", map[string]string{
		"bucket": bucket,
		"path":   path,
	}, "index request failed")
	if err != nil {
		return nil, err
	}

	output := "indexed"
	var reply struct {
		Output string `json:"output"`
	}
	if err := json.Unmarshal(body, &reply); err == nil && reply.Output != "" {
		output = reply.Output
	}

	return &models.IndexResult{OK: true, Output: output}, nil
}

// Query forwards a question and maps the reply's response/page_content/pages
// fields verbatim. The two arrays are not required to have matching lengths.
func (c *Client) Query(ctx context.Context, question string) (*models.AnswerResult, error) {
	body, err := c.post(ctx, "/query", map[string]string{
		"question": question,
	}, "query request failed")
	if err != nil {
		return nil, err
	}

	var reply struct {
		Response    string   `json:"response"`
		PageContent []string `json:"page_content"`
		Pages       []int    `json:"pages"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUpstream, err)
	}

	return &models.AnswerResult{
		OK:          true,
		Output:      reply.Response,
		PageContent: reply.PageContent,
		Pages:       reply.Pages,
	}, nil
}

// post issues one upstream call. A non-success status surfaces the response
// body text as the error detail, falling back to fallbackMsg when the body
// is empty.
func (c *Client) post(ctx context.Context, path string, payload any, fallbackMsg string) ([]byte, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = fallbackMsg
		}
		return nil, fmt.Errorf("%w: %s", common.ErrUpstream, msg)
	}

	return body, nil
}
