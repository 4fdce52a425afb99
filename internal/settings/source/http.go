package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrBadStatus indicates a non-200 response from a defaults endpoint.
var ErrBadStatus = errors.New("unexpected response status")

// maxDocumentSize caps how much of a remote defaults document is read.
const maxDocumentSize = 8 << 20

// HTTPSource loads a defaults document from an HTTP endpoint.
type HTTPSource struct {
	url    string
	client *http.Client
}

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithHTTPClient supplies a custom client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(s *HTTPSource) { s.client = client }
}

// WithTimeout sets the request timeout on the default client.
func WithTimeout(d time.Duration) HTTPOption {
	return func(s *HTTPSource) { s.client.Timeout = d }
}

// NewHTTPSource creates a source fetching from the given URL.
func NewHTTPSource(url string, opts ...HTTPOption) *HTTPSource {
	s := &HTTPSource{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches the document. Any content type is accepted; servers
// disagree on how to label JSONC.
func (s *HTTPSource) Load(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch defaults: %w", err)
	}
	req.Header.Set("Accept", "application/json, */*")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch defaults: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch defaults %s: %w: %s", s.url, ErrBadStatus, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("fetch defaults: %w", err)
	}
	return data, nil
}
