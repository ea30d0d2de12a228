package generate

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/m-mizutani/flowgen/pkg/adapter"
	"github.com/m-mizutani/flowgen/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

// Handler orchestrates one generation: validate input, compose the fixed
// instruction with the user text, call Gemini, and extract the mermaid
// description from the completion. It holds no mutable state and is safe
// for concurrent use.
type Handler struct {
	gemini adapter.Gemini
}

func New(gemini adapter.Gemini) *Handler {
	return &Handler{gemini: gemini}
}

func (x *Handler) Handle(ctx context.Context, req model.DiagramRequest) (*model.DiagramResult, error) {
	// No model call is made for invalid input
	if err := req.Validate(); err != nil {
		return nil, err
	}

	contents := []*genai.Content{
		genai.NewContentFromText(composeUserPrompt(req.Text), genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, ""),
	}

	resp, err := x.gemini.GenerateContent(ctx, contents, config)
	if err != nil {
		return nil, mapUpstreamError(err)
	}

	description, err := Extract(completionText(resp))
	if err != nil {
		return nil, goerr.Wrap(err, "model did not produce a valid diagram",
			goerr.V("prompt_version", PromptVersion))
	}

	return &model.DiagramResult{Description: description}, nil
}

// Generate adapts Handle to the plain text-in/text-out shape the client
// session consumes
func (x *Handler) Generate(ctx context.Context, text string) (string, error) {
	result, err := x.Handle(ctx, model.DiagramRequest{Text: text})
	if err != nil {
		return "", err
	}
	return result.Description, nil
}

func completionText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String()
}

func mapUpstreamError(err error) error {
	if isCredentialError(err) {
		return goerr.Wrap(err, "model service rejected credentials",
			goerr.T(model.ErrTagInvalidCredentials))
	}
	return goerr.Wrap(err, "model service call failed",
		goerr.T(model.ErrTagUpstreamFailure))
}

func isCredentialError(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden {
			return true
		}
	}
	return strings.Contains(err.Error(), "API key") ||
		strings.Contains(err.Error(), "API_KEY_INVALID")
}
