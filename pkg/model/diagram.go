package model

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// MinInputLength is the minimum trimmed length of a process description
const MinInputLength = 10

// DiagramRequest is a user's free-text description of a process
type DiagramRequest struct {
	Text string `json:"prompt"`
}

// Validate checks that the request carries enough text to work with.
// Rejection happens before any model call is made.
func (x DiagramRequest) Validate() error {
	if len([]rune(strings.TrimSpace(x.Text))) < MinInputLength {
		return goerr.New("input text is too short",
			goerr.T(ErrTagInvalidInput),
			goerr.V("min_length", MinInputLength))
	}
	return nil
}

// DiagramResult holds the cleaned mermaid description returned to the caller
type DiagramResult struct {
	Description string `json:"mermaid"`
}
