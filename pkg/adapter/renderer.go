package adapter

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/m-mizutani/flowgen/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

const defaultRenderBaseURL = "https://kroki.io"

// Renderer converts a mermaid description into SVG markup. The conversion
// itself is an external capability; a description that passed extraction
// can still be rejected here.
type Renderer interface {
	Render(ctx context.Context, description string) ([]byte, error)
}

// RenderClient renders diagrams through a Kroki-compatible HTTP service
type RenderClient struct {
	baseURL    string
	httpClient *http.Client
}

type RenderOption func(*RenderClient)

func WithRenderBaseURL(baseURL string) RenderOption {
	return func(r *RenderClient) {
		r.baseURL = strings.TrimRight(baseURL, "/")
	}
}

func NewRenderer(opts ...RenderOption) *RenderClient {
	r := &RenderClient{
		baseURL: defaultRenderBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *RenderClient) Render(ctx context.Context, description string) ([]byte, error) {
	url := r.baseURL + "/mermaid/svg"

	req, err := http.NewRequestWithContext(ctx, "POST", url, strings.NewReader(description))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create render request",
			goerr.T(model.ErrTagRenderingFailure))
	}

	req.Header.Set("Content-Type", "text/plain")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to call render service",
			goerr.T(model.ErrTagRenderingFailure))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read render response",
			goerr.T(model.ErrTagRenderingFailure))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("render service rejected diagram",
			goerr.T(model.ErrTagRenderingFailure),
			goerr.V("status", resp.StatusCode),
			goerr.V("body", truncate(string(body), 256)))
	}

	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
