// Package design holds the customer's current design prompt and the image
// generated from it.
package design

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"go-tote-store/errs"
)

const generationFailedMessage = "Failed to generate design. Please try again."

// Snapshot is a point-in-time copy of a Session.
type Snapshot struct {
	Prompt         string  `json:"prompt"`
	ImageReference *string `json:"image_reference"`
	IsGenerating   bool    `json:"is_generating"`
	LastError      *string `json:"last_error"`
}

// Session allows at most one generation in flight at a time.
type Session struct {
	gen     Generator
	timeout time.Duration
	log     *zap.Logger

	mu           sync.Mutex
	prompt       string
	imageRef     string
	hasImage     bool
	isGenerating bool
	lastError    string
}

func NewSession(gen Generator, timeout time.Duration, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{gen: gen, timeout: timeout, log: log}
}

// SetPrompt stores the trimmed prompt. Blank prompts are stored too; only
// Generate rejects them.
func (s *Session) SetPrompt(text string) {
	s.mu.Lock()
	s.prompt = strings.TrimSpace(text)
	s.mu.Unlock()
}

// Generate asks the generator for an image of prompt. A call made while
// another is running fails with GenerationInProgress and never reaches the
// generator. Failures are not retried.
func (s *Session) Generate(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errs.New(errs.EmptyPrompt, "Please describe your design first")
	}

	s.mu.Lock()
	if s.isGenerating {
		s.mu.Unlock()
		return "", errs.New(errs.GenerationInProgress, "A design is already being generated")
	}
	s.isGenerating = true
	s.lastError = ""
	s.prompt = prompt
	s.mu.Unlock()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	ref, err := s.gen.Generate(ctx, prompt)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.isGenerating = false
	if err != nil {
		s.log.Warn("design generation failed", zap.String("prompt", prompt), zap.Error(err))
		s.lastError = generationFailedMessage
		if errors.Is(err, context.DeadlineExceeded) {
			return "", errs.Wrap(errs.GatewayTimeout, "The design service took too long. Please try again.", err)
		}
		return "", errs.Wrap(errs.GenerationFailed, generationFailedMessage, err)
	}
	s.imageRef = ref
	s.hasImage = true
	return ref, nil
}

// ResetError clears the last generation error.
func (s *Session) ResetError() {
	s.mu.Lock()
	s.lastError = ""
	s.mu.Unlock()
}

// ImageReference returns the last generated image, if any.
func (s *Session) ImageReference() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.imageRef, s.hasImage
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{Prompt: s.prompt, IsGenerating: s.isGenerating}
	if s.hasImage {
		ref := s.imageRef
		snap.ImageReference = &ref
	}
	if s.lastError != "" {
		msg := s.lastError
		snap.LastError = &msg
	}
	return snap
}
