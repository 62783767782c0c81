package design

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-tote-store/errs"
)

type fakeGenerator struct {
	calls   atomic.Int32
	release chan struct{}
	err     error
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls.Add(1)
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return "https://img.example/" + prompt, nil
}

func TestGenerateEmptyPrompt(t *testing.T) {
	gen := &fakeGenerator{}
	s := NewSession(gen, time.Second, nil)
	_, err := s.Generate(context.Background(), "owl")
	require.NoError(t, err)

	_, err = s.Generate(context.Background(), "   ")
	assert.True(t, errors.Is(err, errs.New(errs.EmptyPrompt, "")))

	ref, ok := s.ImageReference()
	assert.True(t, ok)
	assert.Equal(t, "https://img.example/owl", ref)
	assert.Equal(t, int32(1), gen.calls.Load())
}

func TestGenerateEmptyPromptOnFreshSession(t *testing.T) {
	s := NewSession(&fakeGenerator{}, time.Second, nil)

	_, err := s.Generate(context.Background(), "")
	assert.Equal(t, errs.EmptyPrompt, errs.CodeOf(err))
	assert.Nil(t, s.Snapshot().ImageReference)
}

func TestGenerateSuccess(t *testing.T) {
	s := NewSession(&fakeGenerator{}, time.Second, nil)

	ref, err := s.Generate(context.Background(), "  mountain sunrise ")
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/mountain sunrise", ref)

	snap := s.Snapshot()
	assert.Equal(t, "mountain sunrise", snap.Prompt)
	assert.False(t, snap.IsGenerating)
	assert.Nil(t, snap.LastError)
	require.NotNil(t, snap.ImageReference)
}

func TestGenerateFailureSetsLastError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("model overloaded")}
	s := NewSession(gen, time.Second, nil)

	_, err := s.Generate(context.Background(), "owl")
	assert.Equal(t, errs.GenerationFailed, errs.CodeOf(err))

	snap := s.Snapshot()
	assert.False(t, snap.IsGenerating)
	require.NotNil(t, snap.LastError)
	assert.Equal(t, "Failed to generate design. Please try again.", *snap.LastError)
	assert.Equal(t, int32(1), gen.calls.Load())

	s.ResetError()
	assert.Nil(t, s.Snapshot().LastError)
}

func TestGenerateTimeout(t *testing.T) {
	gen := &fakeGenerator{release: make(chan struct{})}
	s := NewSession(gen, 10*time.Millisecond, nil)

	_, err := s.Generate(context.Background(), "owl")
	assert.Equal(t, errs.GatewayTimeout, errs.CodeOf(err))
	assert.False(t, s.Snapshot().IsGenerating)
}

func TestGenerateClearsPriorError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("boom")}
	s := NewSession(gen, time.Second, nil)
	_, _ = s.Generate(context.Background(), "owl")

	gen.err = nil
	_, err := s.Generate(context.Background(), "owl")
	require.NoError(t, err)
	assert.Nil(t, s.Snapshot().LastError)
}

func TestGenerateRejectsConcurrentCall(t *testing.T) {
	gen := &fakeGenerator{release: make(chan struct{})}
	s := NewSession(gen, 5*time.Second, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := s.Generate(context.Background(), "first")
		assert.NoError(t, err)
	}()

	require.Eventually(t, func() bool { return s.Snapshot().IsGenerating }, time.Second, time.Millisecond)

	_, err := s.Generate(context.Background(), "second")
	assert.Equal(t, errs.GenerationInProgress, errs.CodeOf(err))

	close(gen.release)
	wg.Wait()

	assert.Equal(t, int32(1), gen.calls.Load())
	ref, _ := s.ImageReference()
	assert.Equal(t, "https://img.example/first", ref)
}

func TestPlaceholderGenerator(t *testing.T) {
	g := NewPlaceholderGenerator(0)

	ref, err := g.Generate(context.Background(), "owl at night")
	require.NoError(t, err)
	assert.Equal(t, "https://picsum.photos/seed/owl%20at%20night/400", ref)
}

func TestPlaceholderGeneratorHonoursContext(t *testing.T) {
	g := NewPlaceholderGenerator(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Generate(ctx, "owl")
	assert.ErrorIs(t, err, context.Canceled)
}
