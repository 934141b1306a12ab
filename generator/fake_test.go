package generator

import (
	"context"
	"errors"
	"sync"
	"time"

	"ghostwriter/scrape"
	"ghostwriter/search"
)

// scriptedInvoker answers per tier and records every call.
type scriptedInvoker struct {
	mu      sync.Mutex
	answers map[Tier]func(Prompt) (string, error)
	calls   []Tier
	prompts []Prompt
}

func (s *scriptedInvoker) Invoke(_ context.Context, tier Tier, p Prompt) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, tier)
	s.prompts = append(s.prompts, p)
	fn := s.answers[tier]
	s.mu.Unlock()
	if fn == nil {
		return "", errors.New("no answer scripted for " + string(tier))
	}
	return fn(p)
}

func (s *scriptedInvoker) count(tier Tier) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c == tier {
			n++
		}
	}
	return n
}

func answer(text string) func(Prompt) (string, error) {
	return func(Prompt) (string, error) { return text, nil }
}

func failWith(err error) func(Prompt) (string, error) {
	return func(Prompt) (string, error) { return "", err }
}

// fakeFetcher serves pages from a map, optionally after a per-URL delay.
type fakeFetcher struct {
	mu     sync.Mutex
	pages  map[string]scrape.Page
	delays map[string]time.Duration
	seen   []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, u string) scrape.Page {
	f.mu.Lock()
	f.seen = append(f.seen, u)
	d := f.delays[u]
	f.mu.Unlock()
	if d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return scrape.Page{URL: u, Err: ctx.Err()}
		}
	}
	if p, ok := f.pages[u]; ok {
		return p
	}
	return scrape.Page{URL: u, Err: errors.New("connection refused")}
}

type failingSearcher struct{ err error }

func (f failingSearcher) Search(context.Context, string) ([]search.Result, error) {
	return nil, f.err
}

// countingClient is an LLMClient that counts calls.
type countingClient struct {
	mu    sync.Mutex
	calls int
	out   string
	err   error
}

func (c *countingClient) Complete(context.Context, Prompt) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.out, c.err
}
