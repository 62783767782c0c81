package design

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// Generator turns a prompt into an image reference.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// PlaceholderGenerator stands in for an AI image service. It waits Delay and
// returns a seeded placeholder image so the same prompt gives the same image.
type PlaceholderGenerator struct {
	BaseURL string
	Delay   time.Duration
}

func NewPlaceholderGenerator(delay time.Duration) *PlaceholderGenerator {
	return &PlaceholderGenerator{BaseURL: "https://picsum.photos/seed", Delay: delay}
}

func (g *PlaceholderGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.Delay > 0 {
		timer := time.NewTimer(g.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}
	return fmt.Sprintf("%s/%s/400", g.BaseURL, url.PathEscape(prompt)), nil
}
