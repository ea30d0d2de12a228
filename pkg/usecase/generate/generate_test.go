package generate_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/m-mizutani/flowgen/pkg/model"
	"github.com/m-mizutani/flowgen/pkg/usecase/generate"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"google.golang.org/genai"
)

// mockGemini is a mock implementation of adapter.Gemini for testing
type mockGemini struct {
	generateFunc func(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	callCount    int
}

func (m *mockGemini) GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	m.callCount++
	if m.generateFunc != nil {
		return m.generateFunc(ctx, contents, config)
	}
	return nil, errors.New("not implemented")
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Parts: []*genai.Part{{Text: text}},
				},
			},
		},
	}
}

func TestHandleSuccess(t *testing.T) {
	mock := &mockGemini{
		generateFunc: func(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return textResponse("```mermaid\nflowchart TD\n    A(Start) --> B{OK?}\n    B -->|Yes| C(End)\n```"), nil
		},
	}

	handler := generate.New(mock)
	result, err := handler.Handle(context.Background(), model.DiagramRequest{
		Text: "Kullanıcı giriş yapar, başarısızsa hata alır, başarılıysa anasayfaya gider",
	})
	gt.NoError(t, err)
	gt.NotNil(t, result)
	gt.True(t, strings.HasPrefix(result.Description, "flowchart TD"))
	gt.True(t, strings.Contains(result.Description, "-->|"))
	gt.Equal(t, mock.callCount, 1)
}

func TestHandleShortInputSkipsModelCall(t *testing.T) {
	mock := &mockGemini{}
	handler := generate.New(mock)

	tests := []string{"", "ok", "   padded  ", "123456789"}
	for _, text := range tests {
		_, err := handler.Handle(context.Background(), model.DiagramRequest{Text: text})
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, model.ErrTagInvalidInput))
	}

	gt.Equal(t, mock.callCount, 0)
}

func TestHandlePassesInstructionAndUserText(t *testing.T) {
	var gotConfig *genai.GenerateContentConfig
	var gotContents []*genai.Content

	mock := &mockGemini{
		generateFunc: func(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			gotContents = contents
			gotConfig = config
			return textResponse("flowchart TD\n    A --> B"), nil
		},
	}

	handler := generate.New(mock)
	_, err := handler.Handle(context.Background(), model.DiagramRequest{
		Text: "user registers and receives a confirmation mail",
	})
	gt.NoError(t, err)

	gt.NotNil(t, gotConfig)
	gt.NotNil(t, gotConfig.SystemInstruction)
	gt.True(t, strings.Contains(gotConfig.SystemInstruction.Parts[0].Text, "flowchart TD"))

	gt.Equal(t, len(gotContents), 1)
	gt.True(t, strings.Contains(gotContents[0].Parts[0].Text, "user registers and receives a confirmation mail"))
}

func TestHandleNonCompliantCompletion(t *testing.T) {
	mock := &mockGemini{
		generateFunc: func(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return textResponse("I am sorry, I cannot help with that."), nil
		},
	}

	handler := generate.New(mock)
	_, err := handler.Handle(context.Background(), model.DiagramRequest{
		Text: "some long enough process description",
	})
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, model.ErrTagInvalidFormat))
	gt.Equal(t, model.UserMessage(err), model.MsgGenerateFailed)
}

func TestHandleCredentialError(t *testing.T) {
	tests := map[string]error{
		"api error 403": genai.APIError{
			Code:    403,
			Status:  "PERMISSION_DENIED",
			Message: "permission denied",
		},
		"api key message": errors.New("API key not valid. Please pass a valid API key."),
		"api key invalid": genai.APIError{
			Code:    400,
			Status:  "INVALID_ARGUMENT",
			Message: "API_KEY_INVALID",
		},
	}

	for name, upstream := range tests {
		t.Run(name, func(t *testing.T) {
			mock := &mockGemini{
				generateFunc: func(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
					return nil, upstream
				},
			}

			handler := generate.New(mock)
			_, err := handler.Handle(context.Background(), model.DiagramRequest{
				Text: "some long enough process description",
			})
			gt.Error(t, err)
			gt.True(t, goerr.HasTag(err, model.ErrTagInvalidCredentials))
			gt.Equal(t, model.UserMessage(err), model.MsgInvalidCredentials)
		})
	}
}

func TestHandleUpstreamError(t *testing.T) {
	mock := &mockGemini{
		generateFunc: func(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return nil, errors.New("network timeout")
		},
	}

	handler := generate.New(mock)
	_, err := handler.Handle(context.Background(), model.DiagramRequest{
		Text: "some long enough process description",
	})
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, model.ErrTagUpstreamFailure))
	gt.Equal(t, model.UserMessage(err), model.MsgGenerateFailed)
}

func TestHandleEmptyCompletion(t *testing.T) {
	mock := &mockGemini{
		generateFunc: func(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return &genai.GenerateContentResponse{}, nil
		},
	}

	handler := generate.New(mock)
	_, err := handler.Handle(context.Background(), model.DiagramRequest{
		Text: "some long enough process description",
	})
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, model.ErrTagInvalidFormat))
}
