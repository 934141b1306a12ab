// Package scrape fetches a web page and reduces it to bounded visible text.
// Fetch never returns an error to its caller: failures are carried on the
// Page and rendered as placeholder text.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"ghostwriter/logging"
	"ghostwriter/metrics"
)

const (
	DefaultTimeout  = 10 * time.Second
	DefaultMaxChars = 5000

	truncationMarker = "... [TRUNCATED]"
)

var ErrNonHTML = errors.New("non-HTML content")

// binaryExtensions are rejected from the URL alone, before any request.
var binaryExtensions = map[string]bool{
	".pdf": true, ".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".webp": true, ".svg": true, ".zip": true, ".gz": true, ".tar": true,
	".exe": true, ".dmg": true, ".mp3": true, ".mp4": true,
}

// Page is the outcome of one fetch.
type Page struct {
	URL       string
	Text      string
	Skipped   bool
	Truncated bool
	Err       error
}

// Content is the text handed to the research corpus: the extracted text, or
// a placeholder describing why there is none.
func (p Page) Content() string {
	switch {
	case p.Skipped:
		return "Skipped non-HTML content: " + p.URL
	case p.Err != nil:
		return fmt.Sprintf("Error scraping %s: %v", p.URL, p.Err)
	default:
		return p.Text
	}
}

// Transport retrieves the raw HTML of a page.
type Transport interface {
	Get(ctx context.Context, rawURL string) (string, error)
}

// Extractor turns an HTML document into visible text.
type Extractor func(doc string, pageURL *url.URL) (string, error)

type Options struct {
	Timeout   time.Duration
	MaxChars  int
	Transport string // "http" or "chromedp"
	Extractor string // "strip" or "readability"
	Client    *http.Client
	Metrics   *metrics.Metrics
}

type Fetcher struct {
	transport Transport
	extract   Extractor
	timeout   time.Duration
	maxChars  int
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func New(opts Options) (*Fetcher, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxChars <= 0 {
		opts.MaxChars = DefaultMaxChars
	}

	var tr Transport
	switch opts.Transport {
	case "", "http":
		tr = &HTTPTransport{Client: opts.Client}
	case "chromedp":
		tr = &ChromeTransport{}
	default:
		return nil, fmt.Errorf("unsupported fetch transport %q", opts.Transport)
	}

	var ex Extractor
	switch opts.Extractor {
	case "", "strip":
		ex = StripText
	case "readability":
		ex = ReadabilityText
	default:
		return nil, fmt.Errorf("unsupported extractor %q", opts.Extractor)
	}

	return &Fetcher{
		transport: tr,
		extract:   ex,
		timeout:   opts.Timeout,
		maxChars:  opts.MaxChars,
		metrics:   opts.Metrics,
		logger:    logging.New("scrape"),
	}, nil
}

// Fetch retrieves rawURL within the fetcher's timeout. Safe for concurrent use.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) Page {
	page := Page{URL: rawURL}
	u, err := url.Parse(rawURL)
	if err != nil {
		f.logger.Warn("invalid url", "url", rawURL, "error", err)
		page.Err = err
		f.metrics.ObserveFetch(metrics.OutcomeError)
		return page
	}
	if hasBinaryExtension(u) {
		f.logger.Debug("skipping binary url", "url", rawURL)
		page.Skipped = true
		f.metrics.ObserveFetch(metrics.OutcomeSkipped)
		return page
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	start := time.Now()
	doc, err := f.transport.Get(ctx, rawURL)
	if errors.Is(err, ErrNonHTML) {
		f.logger.Debug("skipping non-html content", "url", rawURL, "error", err)
		page.Skipped = true
		f.metrics.ObserveFetch(metrics.OutcomeSkipped)
		return page
	}
	if err != nil {
		f.logger.Warn("fetch failed", "url", rawURL, "error", err, "elapsed", time.Since(start))
		page.Err = err
		f.metrics.ObserveFetch(metrics.OutcomeError)
		return page
	}

	text, err := f.extract(doc, u)
	if err != nil {
		page.Err = fmt.Errorf("extract: %w", err)
		f.metrics.ObserveFetch(metrics.OutcomeError)
		return page
	}
	page.Text, page.Truncated = Cap(CollapseWhitespace(text), f.maxChars)
	if page.Truncated {
		f.logger.Debug("truncated page text", "url", rawURL, "max_chars", f.maxChars)
	}
	f.metrics.ObserveFetch(metrics.OutcomeOK)
	f.logger.Debug("fetched", "url", rawURL, "chars", len([]rune(page.Text)), "elapsed", time.Since(start))
	return page
}

func hasBinaryExtension(u *url.URL) bool {
	return binaryExtensions[strings.ToLower(path.Ext(u.Path))]
}

// CollapseWhitespace trims every line, splits on runs of double spaces and
// joins the non-empty pieces one per line.
func CollapseWhitespace(s string) string {
	var parts []string
	for _, line := range strings.Split(s, "\n") {
		for _, phrase := range strings.Split(strings.TrimSpace(line), "  ") {
			if phrase = strings.TrimSpace(phrase); phrase != "" {
				parts = append(parts, phrase)
			}
		}
	}
	return strings.Join(parts, "\n")
}

// Cap limits s to max characters and appends a truncation marker when it cuts.
func Cap(s string, max int) (string, bool) {
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s, false
	}
	return string(r[:max]) + truncationMarker, true
}
