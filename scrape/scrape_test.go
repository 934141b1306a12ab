package scrape

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"ghostwriter/metrics"
)

const article = `<!doctype html>
<html><head><title>Sleep</title><style>body{color:red}</style>
<script>var tracking = "do not keep";</script></head>
<body>
<header>Site Header</header>
<nav>Home | About</nav>
<main><h1>Why sleep matters</h1>
<p>Adults need   seven hours.</p>
<p>Teens    need more.</p></main>
<footer>Copyright 2024</footer>
</body></html>`

func newFetcher(t *testing.T, opts Options) *Fetcher {
	t.Helper()
	f, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return f
}

func TestFetchStripsChrome(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(article))
	}))
	defer srv.Close()

	page := newFetcher(t, Options{Client: srv.Client()}).Fetch(context.Background(), srv.URL+"/sleep")
	if page.Err != nil || page.Skipped {
		t.Fatalf("page = %+v", page)
	}
	for _, gone := range []string{"Site Header", "Home | About", "Copyright", "tracking", "color:red"} {
		if strings.Contains(page.Text, gone) {
			t.Errorf("text still contains %q:\n%s", gone, page.Text)
		}
	}
	for _, kept := range []string{"Why sleep matters", "Adults need", "seven hours.", "Teens", "need more."} {
		if !strings.Contains(page.Text, kept) {
			t.Errorf("text missing %q:\n%s", kept, page.Text)
		}
	}
	if strings.Contains(page.Text, "  ") {
		t.Errorf("text has uncollapsed whitespace: %q", page.Text)
	}
	if page.Content() != page.Text {
		t.Errorf("Content() should be the text for a good page")
	}
}

func TestFetchSkipsBinaryExtensionWithoutRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	for _, p := range []string{"/report.PDF", "/photo.jpg?size=large", "/setup.exe"} {
		page := newFetcher(t, Options{Client: srv.Client()}).Fetch(context.Background(), srv.URL+p)
		if !page.Skipped {
			t.Errorf("%s: expected skipped page", p)
		}
		if want := "Skipped non-HTML content: " + srv.URL + p; page.Content() != want {
			t.Errorf("Content() = %q, want %q", page.Content(), want)
		}
	}
	if hits.Load() != 0 {
		t.Errorf("binary urls caused %d requests", hits.Load())
	}
}

func TestFetchSkipsNonHTMLContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"a":1}`))
	}))
	defer srv.Close()

	page := newFetcher(t, Options{Client: srv.Client()}).Fetch(context.Background(), srv.URL+"/api")
	if !page.Skipped {
		t.Fatalf("page = %+v, want skipped", page)
	}
}

func TestFetchErrorsBecomePlaceholders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	url := srv.URL + "/missing"
	page := newFetcher(t, Options{Client: srv.Client()}).Fetch(context.Background(), url)
	if page.Err == nil {
		t.Fatalf("expected error page, got %+v", page)
	}
	if !strings.HasPrefix(page.Content(), "Error scraping "+url+": ") {
		t.Errorf("Content() = %q", page.Content())
	}
}

func TestFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	start := time.Now()
	page := newFetcher(t, Options{Client: srv.Client(), Timeout: 50 * time.Millisecond}).Fetch(context.Background(), srv.URL)
	if page.Err == nil {
		t.Fatalf("expected timeout error, got %+v", page)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("fetch took %v, timeout not applied", elapsed)
	}
}

func TestFetchTruncatesAndCounts(t *testing.T) {
	long := strings.Repeat("word ", 2000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><p>" + long + "</p></body></html>"))
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	page := newFetcher(t, Options{Client: srv.Client(), MaxChars: 100, Metrics: m}).Fetch(context.Background(), srv.URL)
	if !page.Truncated {
		t.Fatal("expected truncated page")
	}
	if !strings.HasSuffix(page.Text, truncationMarker) {
		t.Errorf("missing truncation marker: %q", page.Text)
	}
	if got := len([]rune(page.Text)); got != 100+len(truncationMarker) {
		t.Errorf("text length = %d", got)
	}
	if got := testutil.ToFloat64(m.Fetches.WithLabelValues(metrics.OutcomeOK)); got != 1 {
		t.Errorf("ok fetches = %v, want 1", got)
	}
}

func TestCollapseWhitespace(t *testing.T) {
	in := "  Title  \n\n\tBody text   with  gaps \n   \nEnd"
	want := "Title\nBody text\nwith\ngaps\nEnd"
	if got := CollapseWhitespace(in); got != want {
		t.Errorf("CollapseWhitespace() = %q, want %q", got, want)
	}
}

func TestCapCountsRunes(t *testing.T) {
	got, cut := Cap("héllo wörld", 5)
	if !cut || got != "héllo"+truncationMarker {
		t.Errorf("Cap() = %q, %v", got, cut)
	}
	got, cut = Cap("short", 5)
	if cut || got != "short" {
		t.Errorf("Cap() = %q, %v", got, cut)
	}
}

func TestNewRejectsUnknownOptions(t *testing.T) {
	if _, err := New(Options{Transport: "ftp"}); err == nil {
		t.Error("expected error for unknown transport")
	}
	if _, err := New(Options{Extractor: "regex"}); err == nil {
		t.Error("expected error for unknown extractor")
	}
}

func TestCheckHTML(t *testing.T) {
	tests := []struct {
		contentType string
		wantHTML    bool
	}{
		{"text/html", true},
		{"text/html; charset=utf-8", true},
		{"TEXT/HTML", true},
		{"application/xhtml+xml", true},
		{"application/json", false},
		{"text/plain", false},
		{"application/pdf", false},
		{"", false},
	}
	for _, tt := range tests {
		err := checkHTML(tt.contentType)
		if tt.wantHTML && err != nil {
			t.Errorf("checkHTML(%q) error = %v", tt.contentType, err)
		}
		if !tt.wantHTML && !errors.Is(err, ErrNonHTML) {
			t.Errorf("checkHTML(%q) error = %v, want ErrNonHTML", tt.contentType, err)
		}
	}
}

func TestFetchInvalidURLBecomesPlaceholder(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	raw := "http://example.com/\x7fbad"
	page := newFetcher(t, Options{Metrics: m}).Fetch(context.Background(), raw)
	if page.Err == nil || page.Skipped {
		t.Fatalf("expected parse error page, got %+v", page)
	}
	if !strings.HasPrefix(page.Content(), "Error scraping "+raw+": ") {
		t.Errorf("Content() = %q", page.Content())
	}
	if got := testutil.ToFloat64(m.Fetches.WithLabelValues(metrics.OutcomeError)); got != 1 {
		t.Errorf("error fetches = %v, want 1", got)
	}
}

func TestFetchChecksExtensionOnPathOnly(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<p>report page</p>"))
	}))
	defer srv.Close()

	page := newFetcher(t, Options{Client: srv.Client()}).Fetch(context.Background(), srv.URL+"/report?format=.pdf")
	if page.Skipped || page.Text != "report page" {
		t.Errorf("page = %+v", page)
	}
	if hits.Load() != 1 {
		t.Errorf("server hit %d times, want 1", hits.Load())
	}
}
