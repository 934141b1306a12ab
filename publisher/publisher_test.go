package publisher

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const post = `# Why Sleep Matters

Sleep restores the body
and the mind.

## The science

| hours | effect |
|---|---|
| 8 | rested |
`

func TestRender(t *testing.T) {
	a, err := Render(post, "fallback")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if a.Title != "Why Sleep Matters" {
		t.Errorf("Title = %q", a.Title)
	}
	if a.Digest != "Sleep restores the body and the mind." {
		t.Errorf("Digest = %q", a.Digest)
	}
	for _, want := range []string{"<h1>Why Sleep Matters</h1>", "<h2>The science</h2>", "<table>"} {
		if !strings.Contains(a.HTML, want) {
			t.Errorf("HTML missing %q:\n%s", want, a.HTML)
		}
	}

	a, _ = Render("no heading here", "fallback")
	if a.Title != "fallback" {
		t.Errorf("Title = %q, want fallback", a.Title)
	}
}

func TestDefaultDigestLimit(t *testing.T) {
	got := defaultDigest(strings.Repeat("ü ", 200), DigestLimit)
	if n := len([]rune(got)); n != DigestLimit {
		t.Errorf("digest has %d runes, want %d", n, DigestLimit)
	}
}

func TestWrite(t *testing.T) {
	a, _ := Render(post, "")
	var buf bytes.Buffer
	if err := Write(&buf, a, FormatHTML); err != nil {
		t.Fatalf("Write(html) error = %v", err)
	}
	if !strings.HasPrefix(buf.String(), "<!DOCTYPE html>") || !strings.Contains(buf.String(), "<title>Why Sleep Matters</title>") {
		t.Errorf("html page = %s", buf.String())
	}

	buf.Reset()
	if err := Write(&buf, a, FormatMarkdown); err != nil {
		t.Fatalf("Write(md) error = %v", err)
	}
	if buf.String() != strings.TrimRight(post, "\n")+"\n" {
		t.Errorf("markdown = %q", buf.String())
	}

	if err := Write(&buf, a, Format("pdf")); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Write(pdf) error = %v", err)
	}
}

func TestWriteFile(t *testing.T) {
	a, _ := Render(post, "")
	path := filepath.Join(t.TempDir(), "out", "post.md")
	if err := WriteFile(path, a, FormatMarkdown); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# Why Sleep Matters") {
		t.Errorf("file = %q", data)
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatMarkdown, "MD": FormatMarkdown, "markdown": FormatMarkdown, "html": FormatHTML} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("docx"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("ParseFormat(docx) error = %v", err)
	}
}
