package advisory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// Retriever fetches ranked evidence for a query. Implementations must keep
// the collaborator's ranking order and return at most topK snippets. Zero
// snippets is a valid result, not an error.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]Snippet, error)
}

// VectorClient talks to the vector database service over HTTP:
// POST {base}/query with {"query": ..., "top_k": ...} returns
// {"results": [{"source": ..., "text": ..., "score": ...}]}.
type VectorClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewVectorClient(baseURL, apiKey string, timeout time.Duration) *VectorClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &VectorClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type queryRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type queryResponse struct {
	Results []Snippet `json:"results"`
}

func (c *VectorClient) Retrieve(ctx context.Context, query string, topK int) ([]Snippet, error) {
	body, err := json.Marshal(queryRequest{Query: query, TopK: topK})
	if err != nil {
		return nil, fmt.Errorf("%w: encode query: %v", ErrRetrievalUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/query", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRetrievalUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", ErrRetrievalTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrRetrievalUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %s: %s", ErrRetrievalUnavailable, resp.Status, string(msg))
	}

	var out queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrRetrievalUnavailable, err)
	}

	// Honor the collaborator's ranking as-is; only enforce the topK cap.
	results := out.Results
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
