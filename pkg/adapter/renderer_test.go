package adapter_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/flowgen/pkg/adapter"
	"github.com/m-mizutani/flowgen/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

func TestRenderClient(t *testing.T) {
	var gotPath, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Write([]byte(`<svg viewBox="0 0 10 10"></svg>`))
	}))
	defer srv.Close()

	renderer := adapter.NewRenderer(adapter.WithRenderBaseURL(srv.URL))

	markup, err := renderer.Render(context.Background(), "flowchart TD\n    A --> B")
	gt.NoError(t, err)
	gt.Equal(t, string(markup), `<svg viewBox="0 0 10 10"></svg>`)
	gt.Equal(t, gotPath, "/mermaid/svg")
	gt.Equal(t, gotBody, "flowchart TD\n    A --> B")
}

func TestRenderClientRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "syntax error in graph", http.StatusBadRequest)
	}))
	defer srv.Close()

	renderer := adapter.NewRenderer(adapter.WithRenderBaseURL(srv.URL))

	_, err := renderer.Render(context.Background(), "flowchart TD\n    A -x-> B")
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, model.ErrTagRenderingFailure))
}

func TestRenderClientUnreachable(t *testing.T) {
	renderer := adapter.NewRenderer(adapter.WithRenderBaseURL("http://127.0.0.1:1"))

	_, err := renderer.Render(context.Background(), "flowchart TD\n    A --> B")
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, model.ErrTagRenderingFailure))
}
