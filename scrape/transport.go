package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

const (
	userAgent   = "GhostWriter/1.0 (+research fetcher)"
	maxBodySize = 4 << 20
)

// HTTPTransport fetches with a plain HTTP client, following redirects. The
// content type is checked before the body is read.
type HTTPTransport struct {
	Client *http.Client
}

func (t *HTTPTransport) Get(ctx context.Context, rawURL string) (string, error) {
	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := checkHTML(resp.Header.Get("Content-Type")); err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(body), nil
}

// checkHTML returns ErrNonHTML unless the media type is an HTML one.
func checkHTML(contentType string) error {
	ct := strings.ToLower(contentType)
	if strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml+xml") {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrNonHTML, contentType)
}

// ChromeTransport renders the page in headless Chrome, for sites that build
// their content with scripts. Each call starts its own browser. The main
// document's MIME type is checked after navigation and before the DOM is
// read; a document whose type Chrome did not report is treated as HTML.
type ChromeTransport struct{}

func (ChromeTransport) Get(ctx context.Context, rawURL string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.UserAgent(userAgent),
	)
	actx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	bctx, cancelBrowser := chromedp.NewContext(actx)
	defer cancelBrowser()

	var (
		mu   sync.Mutex
		mime string
	)
	chromedp.ListenTarget(bctx, func(ev any) {
		e, ok := ev.(*network.EventResponseReceived)
		if !ok || e.Type != network.ResourceTypeDocument || e.Response == nil {
			return
		}
		mu.Lock()
		if mime == "" {
			mime = e.Response.MimeType
		}
		mu.Unlock()
	})

	if err := chromedp.Run(bctx, chromedp.Navigate(rawURL)); err != nil {
		return "", fmt.Errorf("headless fetch: %w", err)
	}
	mu.Lock()
	docType := mime
	mu.Unlock()
	if docType != "" {
		if err := checkHTML(docType); err != nil {
			return "", err
		}
	}

	var doc string
	err := chromedp.Run(bctx,
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &doc, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("headless fetch: %w", err)
	}
	return doc, nil
}
