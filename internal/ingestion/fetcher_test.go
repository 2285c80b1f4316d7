package ingestion

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vidyagam/vidyagam/internal/models"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Lab Blog</title>
    <link>https://example.com</link>
    <item>
      <title>First &lt;b&gt;release&lt;/b&gt;</title>
      <link>https://example.com/first</link>
      <description>&lt;p&gt;A new model.&lt;/p&gt;</description>
      <pubDate>Fri, 15 Mar 2024 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Undated entry</title>
      <link>https://example.com/undated</link>
      <description>No pubDate on this one.</description>
    </item>
    <item>
      <title>Relative link entry</title>
      <link>/relative/path</link>
      <description>Dropped for lack of an absolute link.</description>
    </item>
    <item>
      <title>Third</title>
      <link>https://example.com/third</link>
      <description>Capped by the per-source limit.</description>
    </item>
  </channel>
</rss>`

func feedServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(body))
	}))
}

func TestFetchParsesFeed(t *testing.T) {
	server := feedServer(t, testFeed)
	defer server.Close()

	fetcher := NewFetcher(DefaultFetcherConfig(), discardLogger())

	entries, err := fetcher.Fetch(context.Background(), models.SourceDefinition{
		Name:    "Lab Blog",
		FeedURL: server.URL,
	})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3 (relative link dropped)", len(entries))
	}

	first := entries[0]
	if first.Title != "First release" {
		t.Errorf("title = %q, want html stripped", first.Title)
	}
	if first.Link != "https://example.com/first" {
		t.Errorf("link = %q", first.Link)
	}
	if first.Summary != "A new model." {
		t.Errorf("summary = %q, want html stripped", first.Summary)
	}
	if first.PublishedAt == nil {
		t.Fatal("expected parsed publish time")
	}
	if first.PublishedAt.UTC().Hour() != 10 {
		t.Errorf("published hour = %d, want 10", first.PublishedAt.UTC().Hour())
	}

	if entries[1].PublishedAt != nil {
		t.Error("entry without pubDate should carry a nil timestamp")
	}
}

func TestFetchHonorsPerSourceLimit(t *testing.T) {
	server := feedServer(t, testFeed)
	defer server.Close()

	cfg := DefaultFetcherConfig()
	cfg.PerSourceLimit = 1
	fetcher := NewFetcher(cfg, discardLogger())

	entries, err := fetcher.Fetch(context.Background(), models.SourceDefinition{
		Name:    "Lab Blog",
		FeedURL: server.URL,
	})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("entries = %d, want 1", len(entries))
	}
}

func TestFetchRejectsInvalidURL(t *testing.T) {
	fetcher := NewFetcher(DefaultFetcherConfig(), discardLogger())

	if _, err := fetcher.Fetch(context.Background(), models.SourceDefinition{
		Name:    "Broken",
		FeedURL: "not a url",
	}); err == nil {
		t.Error("expected error for invalid feed url")
	}
}

func TestFetchReturnsErrorForUnreachableFeed(t *testing.T) {
	server := feedServer(t, testFeed)
	server.Close() // immediately unreachable

	fetcher := NewFetcher(DefaultFetcherConfig(), discardLogger())

	if _, err := fetcher.Fetch(context.Background(), models.SourceDefinition{
		Name:    "Gone",
		FeedURL: server.URL,
	}); err == nil {
		t.Error("expected error for unreachable feed")
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"tags stripped", "<b>bold</b> text", "bold text"},
		{"paragraphs become newlines", "<p>one</p><p>two</p>", "one\n\ntwo"},
		{"whitespace trimmed", "  padded  ", "padded"},
		{"unclosed tag preserved", "before <unclosed", "before <unclosed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanText(tt.in); got != tt.want {
				t.Errorf("cleanText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
