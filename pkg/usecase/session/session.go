package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/flowgen/pkg/adapter"
	"github.com/m-mizutani/flowgen/pkg/model"
	"github.com/m-mizutani/flowgen/pkg/usecase/history"
	"github.com/m-mizutani/flowgen/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateRendered   State = "rendered"
	StateErrored    State = "errored"
)

// Generator produces a mermaid description from free text. Implemented by
// the in-process generate.Handler and by adapter.HTTPGenerator.
type Generator interface {
	Generate(ctx context.Context, text string) (string, error)
}

// Session drives the render state machine: Idle → Submitting →
// {Rendered, Errored}. One generation is in flight at a time; when a
// newer submission is issued before an older one resolves, the older
// result is discarded so the last submission always wins.
type Session struct {
	mu        sync.Mutex
	generator Generator
	renderer  adapter.Renderer
	sink      adapter.Sink
	history   *history.Store
	now       func() time.Time

	state       State
	input       string
	description string
	markup      []byte
	fallback    bool
	errMessage  string
	seq         uint64
}

// NewInput contains the session's collaborators
type NewInput struct {
	Generator Generator
	Renderer  adapter.Renderer
	Sink      adapter.Sink
	History   *history.Store
	Clock     func() time.Time // optional, defaults to time.Now
}

func New(input NewInput) *Session {
	now := input.Clock
	if now == nil {
		now = time.Now
	}
	return &Session{
		generator: input.Generator,
		renderer:  input.Renderer,
		sink:      input.Sink,
		history:   input.History,
		now:       now,
		state:     StateIdle,
	}
}

// Submit runs one generation and applies the outcome. It returns the
// generation error for display purposes; a stale outcome (superseded by
// a later submission) is discarded and reported as nil.
func (s *Session) Submit(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return goerr.New("input text is empty", goerr.T(model.ErrTagInvalidInput))
	}

	s.mu.Lock()
	if s.state == StateSubmitting {
		s.mu.Unlock()
		return goerr.New("a generation is already in flight",
			goerr.T(model.ErrTagInvalidInput))
	}
	s.seq++
	seq := s.seq
	s.state = StateSubmitting
	s.errMessage = ""
	s.mu.Unlock()

	logger := logging.From(ctx).With("attempt", uuid.New().String())

	description, err := s.generator.Generate(ctx, text)
	if err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		if seq != s.seq {
			logger.Debug("discarding stale generation failure")
			return nil
		}
		// Previously rendered description stays; only the banner changes
		s.state = StateErrored
		s.errMessage = model.UserMessage(err)
		return err
	}

	markup, renderErr := s.renderer.Render(ctx, description)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		logger.Debug("discarding stale generation result")
		return nil
	}

	s.input = text
	s.description = description
	if s.history != nil {
		s.history.Record(text, description)
	}

	if renderErr != nil {
		// The description passed extraction but the renderer rejected it.
		// Terminal for this attempt: show the fallback message, keep state.
		logger.Warn("failed to render diagram", "error", renderErr)
		s.markup = nil
		s.fallback = true
	} else {
		s.markup = markup
		s.fallback = false
	}
	s.state = StateRendered

	return nil
}

// LoadEntry restores a history entry and re-renders it without calling
// the generator. It supersedes any in-flight submission.
func (s *Session) LoadEntry(ctx context.Context, entry *model.HistoryEntry) {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.input = entry.Input
	s.description = entry.Mermaid
	s.errMessage = ""
	s.mu.Unlock()

	markup, err := s.renderer.Render(ctx, entry.Mermaid)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		return
	}

	if err != nil {
		logging.From(ctx).Warn("failed to render history entry", "error", err)
		s.markup = nil
		s.fallback = true
	} else {
		s.markup = markup
		s.fallback = false
	}
	s.state = StateRendered
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Input() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

func (s *Session) Description() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.description
}

// Markup returns the displayable SVG of the last successful render
func (s *Session) Markup() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.markup
}

// RenderFallback reports whether the display shows the fixed fallback
// message instead of a diagram
func (s *Session) RenderFallback() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fallback
}

func (s *Session) ErrorMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMessage
}

func (s *Session) History() *history.Store {
	return s.history
}
