package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/vidyagam/vidyagam/internal/models"
)

// FetcherConfig bounds the work a single feed fetch can do.
type FetcherConfig struct {
	Timeout        time.Duration // per-feed HTTP timeout
	PerSourceLimit int           // max entries returned per feed
	UserAgent      string
}

// DefaultFetcherConfig returns sensible defaults.
func DefaultFetcherConfig() FetcherConfig {
	return FetcherConfig{
		Timeout:        20 * time.Second,
		PerSourceLimit: 10,
		UserAgent:      "vidyagam-scraper/1.0 (+https://vidyagam.com)",
	}
}

// Fetcher retrieves and parses RSS/Atom feeds into raw entries. Parsing is
// delegated to gofeed, which tolerates the date format variants feeds use
// in the wild; entries whose dates it cannot parse come back with a nil
// published timestamp.
type Fetcher struct {
	parser *gofeed.Parser
	config FetcherConfig
	logger *slog.Logger
}

// NewFetcher creates a feed fetcher with a bounded HTTP client.
func NewFetcher(cfg FetcherConfig, logger *slog.Logger) *Fetcher {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: cfg.Timeout}
	parser.UserAgent = cfg.UserAgent

	return &Fetcher{
		parser: parser,
		config: cfg,
		logger: logger,
	}
}

// Fetch retrieves the source's feed and returns its entries in feed order,
// capped at the per-source limit. Errors are returned for the caller to
// log and skip; one slow or broken feed never fails the whole run.
func (f *Fetcher) Fetch(ctx context.Context, source models.SourceDefinition) ([]models.RawEntry, error) {
	if _, err := url.ParseRequestURI(source.FeedURL); err != nil {
		return nil, fmt.Errorf("invalid feed url %q: %w", source.FeedURL, err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	feed, err := f.parser.ParseURLWithContext(source.FeedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed %s: %w", source.Name, err)
	}

	entries := make([]models.RawEntry, 0, f.config.PerSourceLimit)
	for _, item := range feed.Items {
		if len(entries) >= f.config.PerSourceLimit {
			break
		}

		link := strings.TrimSpace(item.Link)
		if link == "" && item.GUID != "" {
			link = strings.TrimSpace(item.GUID)
		}
		if !strings.HasPrefix(link, "http://") && !strings.HasPrefix(link, "https://") {
			f.logger.Warn("skipping entry with invalid link",
				"source", source.Name,
				"link", item.Link,
				"title", item.Title)
			continue
		}

		published := item.PublishedParsed
		if published == nil {
			published = item.UpdatedParsed
		}

		entries = append(entries, models.RawEntry{
			Title:       cleanText(item.Title),
			Link:        link,
			Summary:     cleanText(item.Description),
			PublishedAt: published,
		})
	}

	f.logger.Debug("fetched feed",
		"source", source.Name,
		"items", len(feed.Items),
		"entries", len(entries))

	return entries, nil
}

// cleanText strips HTML tags and collapses whitespace in feed-supplied
// text.
func cleanText(text string) string {
	text = strings.ReplaceAll(text, "<p>", "\n")
	text = strings.ReplaceAll(text, "</p>", "\n")
	text = strings.ReplaceAll(text, "<br>", "\n")
	text = strings.ReplaceAll(text, "<br/>", "\n")
	text = strings.ReplaceAll(text, "<br />", "\n")

	for {
		start := strings.Index(text, "<")
		if start == -1 {
			break
		}
		end := strings.Index(text[start:], ">")
		if end == -1 {
			break
		}
		text = text[:start] + text[start+end+1:]
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	for strings.Contains(text, "\n\n\n") {
		text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	}

	return strings.TrimSpace(text)
}
