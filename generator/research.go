package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"ghostwriter/logging"
	"ghostwriter/scrape"
	"ghostwriter/search"
)

const (
	DefaultTopK         = 3
	DefaultSnippetChars = 800
)

// researchTiers is the fallback order for the structured research call.
var researchTiers = []Tier{TierFast, TierLocal}

// PageFetcher retrieves one page. Implementations report failures on the
// returned Page rather than as an error.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) scrape.Page
}

type ResearchOptions struct {
	TopK         int
	SnippetChars int
}

// Researcher gathers sources for a topic and turns them into notes and an
// outline with a single model call.
type Researcher struct {
	search       search.Searcher
	fetch        PageFetcher
	llm          Invoker
	topK         int
	snippetChars int
	logger       *slog.Logger
}

func NewResearcher(s search.Searcher, f PageFetcher, llm Invoker, opts ResearchOptions) (*Researcher, error) {
	if s == nil {
		return nil, errors.New("searcher is required")
	}
	if f == nil {
		return nil, errors.New("page fetcher is required")
	}
	if llm == nil {
		return nil, errors.New("llm invoker is required")
	}
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	if opts.SnippetChars <= 0 {
		opts.SnippetChars = DefaultSnippetChars
	}
	return &Researcher{
		search:       s,
		fetch:        f,
		llm:          llm,
		topK:         opts.TopK,
		snippetChars: opts.SnippetChars,
		logger:       logging.New("researcher"),
	}, nil
}

// Run performs discovery, fetch, reduction, generation and parsing. Only a
// search failure or a failure of every research tier is returned as an error.
func (r *Researcher) Run(ctx context.Context, topic string) (ResearchResult, error) {
	start := time.Now()

	results, err := r.search.Search(ctx, topic)
	if err != nil {
		return ResearchResult{}, fmt.Errorf("search: %w", err)
	}
	urls := SelectURLs(results, r.topK)
	r.logger.Info("sources selected", "results", len(results), "urls", len(urls), "elapsed", time.Since(start))

	t0 := time.Now()
	pages := r.fetchAll(ctx, urls)
	corpus := ReduceCorpus(pages, r.snippetChars)
	r.logger.Info("sources fetched", "pages", len(pages), "corpus_chars", len([]rune(corpus)), "elapsed", time.Since(t0))

	t0 = time.Now()
	text, tier, err := invokeFirst(ctx, r.llm, researchTiers, BuildResearchPrompt(topic, corpus), r.logger)
	if err != nil {
		return ResearchResult{}, err
	}
	res := ParseResearch(text)
	r.logger.Info("notes and outline ready", "tier", tier, "elapsed", time.Since(t0), "total", time.Since(start))
	return res, nil
}

// fetchAll fetches every URL concurrently and waits for all of them. Pages are
// stored by request index so completion order never matters.
func (r *Researcher) fetchAll(ctx context.Context, urls []string) []scrape.Page {
	pages := make([]scrape.Page, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	for i, u := range urls {
		g.Go(func() error {
			pages[i] = r.fetch.Fetch(gctx, u)
			return nil
		})
	}
	_ = g.Wait() // fetches never return errors
	return pages
}

// SelectURLs returns the URLs of the first k results that have one.
func SelectURLs(results []search.Result, k int) []string {
	urls := make([]string, 0, k)
	for _, res := range results {
		if len(urls) == k {
			break
		}
		if res.URL == "" {
			continue
		}
		urls = append(urls, res.URL)
	}
	return urls
}

// ReduceCorpus keeps the first n characters of each page's content and joins
// the non-empty pieces, in page order, with blank lines.
func ReduceCorpus(pages []scrape.Page, n int) string {
	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		c := p.Content()
		if c == "" {
			continue
		}
		if r := []rune(c); len(r) > n {
			c = string(r[:n])
		}
		parts = append(parts, c)
	}
	return strings.Join(parts, "\n\n")
}
