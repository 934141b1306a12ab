// Package search finds candidate source pages for a topic.
package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Result is one ranked hit. URL may be empty when the provider returned an
// item without a link; callers skip those.
type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score,omitempty"`
}

// Searcher is the query service the research stage talks to.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

type Provider string

const (
	TavilyProvider Provider = "tavily"
	SerperProvider Provider = "serper"
)

var (
	ErrUnsupportedProvider = errors.New("unsupported search provider")
	ErrMissingAPIKey       = errors.New("search api key missing")
)

// New returns a Searcher for provider. client may be nil.
func New(provider Provider, apiKey string, maxResults int, client *http.Client) (Searcher, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%s: %w", provider, ErrMissingAPIKey)
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	switch provider {
	case TavilyProvider:
		return &Tavily{APIKey: apiKey, MaxResults: maxResults, Client: client}, nil
	case SerperProvider:
		return &Serper{APIKey: apiKey, MaxResults: maxResults, Client: client}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, provider)
	}
}

// StatusError reports a non-2xx answer from a provider.
type StatusError struct {
	Provider Provider
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s search: unexpected status %d", e.Provider, e.Code)
}
