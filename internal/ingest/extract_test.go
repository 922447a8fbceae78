package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestExtractURLStripsMarkup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head>
			<title>Shipping FAQ</title>
			<style>body { color: red }</style>
			<script>trackEverything();</script>
		</head><body>
			<h1>Shipping</h1>
			<p>We ship worldwide within 5 days.</p>
			<noscript>enable js</noscript>
		</body></html>`))
	}))
	defer srv.Close()

	text, err := ExtractURL(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("extract url: %v", err)
	}
	if !strings.Contains(text, "We ship worldwide within 5 days.") {
		t.Fatalf("body text missing: %q", text)
	}
	if strings.Contains(text, "trackEverything") || strings.Contains(text, "color: red") {
		t.Fatalf("script/style content leaked into text: %q", text)
	}
	if strings.Contains(text, "enable js") {
		t.Fatalf("noscript content leaked into text: %q", text)
	}
}

func TestExtractURLStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	if _, err := ExtractURL(context.Background(), srv.URL); err == nil {
		t.Fatalf("expected error for http 410")
	}
}

func TestExtractPlain(t *testing.T) {
	text, err := ExtractPlain([]byte("  some notes\nline two  "))
	if err != nil {
		t.Fatalf("extract plain: %v", err)
	}
	if text != "some notes\nline two" {
		t.Fatalf("got %q", text)
	}
	if _, err := ExtractPlain([]byte("   \n  ")); err == nil {
		t.Fatalf("expected error for empty content")
	}
}

func TestClampRunes(t *testing.T) {
	long := strings.Repeat("ä", maxExtractRunes+10)
	clamped := clampRunes(long)
	if len([]rune(clamped)) != maxExtractRunes {
		t.Fatalf("clamp length: got %d", len([]rune(clamped)))
	}
}
