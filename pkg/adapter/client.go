package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/m-mizutani/flowgen/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

// HTTPGenerator produces diagram descriptions through a remote flowgen
// server instead of an in-process handler.
type HTTPGenerator struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPGenerator(baseURL string) *HTTPGenerator {
	return &HTTPGenerator{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

type generateResponse struct {
	Mermaid string `json:"mermaid"`
	Error   string `json:"error"`
}

func (g *HTTPGenerator) Generate(ctx context.Context, text string) (string, error) {
	reqBody, err := json.Marshal(model.DiagramRequest{Text: text})
	if err != nil {
		return "", goerr.Wrap(err, "failed to marshal generate request")
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.baseURL+"/generate", bytes.NewReader(reqBody))
	if err != nil {
		return "", goerr.Wrap(err, "failed to create generate request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", goerr.Wrap(err, "failed to call generate endpoint",
			goerr.T(model.ErrTagUpstreamFailure))
	}
	defer resp.Body.Close()

	var body generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", goerr.Wrap(err, "failed to decode generate response",
			goerr.T(model.ErrTagUpstreamFailure),
			goerr.V("status", resp.StatusCode))
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body.Mermaid, nil
	case resp.StatusCode == http.StatusBadRequest:
		return "", goerr.New(body.Error, goerr.T(model.ErrTagInvalidInput))
	case body.Error == model.MsgInvalidCredentials:
		return "", goerr.New(body.Error, goerr.T(model.ErrTagInvalidCredentials))
	default:
		return "", goerr.New(body.Error,
			goerr.T(model.ErrTagUpstreamFailure),
			goerr.V("status", resp.StatusCode))
	}
}
