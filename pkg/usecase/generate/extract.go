package generate

import (
	"regexp"
	"strings"

	"github.com/m-mizutani/flowgen/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

var mermaidFencePtn = regexp.MustCompile("(?i)```mermaid\\s*")

// Extract turns a raw model completion into a clean mermaid description.
// It strips fence markers wherever they appear, trims whitespace, and
// requires a flow/graph declaration keyword to be present. Everything
// between the fences passes through verbatim; whether the content
// actually renders is decided later, at render time.
func Extract(raw string) (string, error) {
	cleaned := mermaidFencePtn.ReplaceAllString(raw, "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	if !strings.Contains(cleaned, "flowchart") && !strings.Contains(cleaned, "graph") {
		return "", goerr.New("model output has no mermaid diagram declaration",
			goerr.T(model.ErrTagInvalidFormat))
	}

	return cleaned, nil
}
