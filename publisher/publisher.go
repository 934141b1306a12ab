// Package publisher renders a finished article as Markdown or as a standalone
// HTML page.
package publisher

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

type Format string

const (
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
)

// DigestLimit caps the digest length in characters.
const DigestLimit = 120

var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat accepts "md", "markdown" and "html".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "md", "markdown":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Article is a rendered post.
type Article struct {
	Title    string `json:"title"`
	Digest   string `json:"digest"`
	Markdown string `json:"markdown"`
	HTML     string `json:"html"`
}

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
)

// Render converts markdown content into an Article. fallbackTitle is used
// when the content has no level-one heading.
func Render(content, fallbackTitle string) (Article, error) {
	body, err := mdToHTML(content)
	if err != nil {
		return Article{}, err
	}
	title := extractTitle(content)
	if title == "" {
		title = fallbackTitle
	}
	return Article{
		Title:    title,
		Digest:   defaultDigest(content, DigestLimit),
		Markdown: content,
		HTML:     body,
	}, nil
}

// Write writes a in the given format. HTML output is a complete document.
func Write(w io.Writer, a Article, f Format) error {
	var err error
	switch f {
	case FormatMarkdown:
		_, err = io.WriteString(w, strings.TrimRight(a.Markdown, "\n")+"\n")
	case FormatHTML:
		_, err = fmt.Fprintf(w, pageTemplate, escape(a.Title), escape(a.Digest), a.HTML)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	return err
}

// WriteFile writes a to path, creating parent directories.
func WriteFile(path string, a Article, f Format) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	var buf bytes.Buffer
	if err := Write(&buf, a, f); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<meta name="description" content="%s">
</head>
<body>
<article>
%s</article>
</body>
</html>
`

func escape(s string) string { return html.EscapeString(strings.ReplaceAll(s, "\n", " ")) }

func mdToHTML(src string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func extractTitle(src string) string {
	for _, line := range strings.Split(src, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return ""
}

// defaultDigest compacts the first paragraph that is not a heading and cuts
// it to limit characters.
func defaultDigest(src string, limit int) string {
	var para []string
	for _, line := range strings.Split(src, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			if len(para) > 0 {
				break
			}
			continue
		}
		para = append(para, line)
	}
	return cut(strings.Join(strings.Fields(strings.Join(para, " ")), " "), limit)
}

func cut(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
