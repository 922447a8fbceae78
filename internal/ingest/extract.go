package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"golang.org/x/net/html"
)

const (
	maxFetchBytes   = 8 << 20 // cap remote page size
	maxExtractRunes = 200000  // cap text handed to the answering backend
)

var fetchClient = &http.Client{Timeout: 20 * time.Second}

// ExtractURL fetches a web page and strips it down to readable text.
func ExtractURL(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "chatAdmin-ingest/1.0")
	resp, err := fetchClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch url: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("fetch url: status %d", resp.StatusCode)
	}
	text, err := htmlToText(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", fmt.Errorf("no readable text at %s", pageURL)
	}
	return clampRunes(text), nil
}

// htmlToText walks the parsed document collecting visible text nodes,
// skipping script, style and other non-content subtrees.
func htmlToText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "template", "iframe", "svg":
				return
			}
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				sb.WriteString(t)
				sb.WriteByte('\n')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.TrimSpace(sb.String()), nil
}

// ExtractPDF pulls plain text out of a PDF document.
func ExtractPDF(r io.ReaderAt, size int64) (string, error) {
	doc, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	var sb strings.Builder
	for i := 1; i <= doc.NumPage(); i++ {
		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteByte('\n')
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("no extractable text in pdf")
	}
	return clampRunes(text), nil
}

// ExtractPlain treats the bytes as UTF-8 text.
func ExtractPlain(data []byte) (string, error) {
	text := strings.TrimSpace(string(bytes.ToValidUTF8(data, nil)))
	if text == "" {
		return "", fmt.Errorf("file contains no text")
	}
	return clampRunes(text), nil
}

func clampRunes(s string) string {
	runes := []rune(s)
	if len(runes) <= maxExtractRunes {
		return s
	}
	return string(runes[:maxExtractRunes])
}
