// Package rss is the feed adapter: it retrieves and parses one feed URL and
// turns entries into Articles with an assembled free-text body.
package rss

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/deusflow/topicdigest/internal/article"
)

// Fetcher shares one HTTP client across all feed fetches so per-host
// connections stay capped during the concurrent fan-out.
type Fetcher struct {
	client *http.Client
}

func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxConnsPerHost: 2,
			},
		},
	}
}

// Fetch retrieves and parses a single feed. Errors are returned as-is; the
// orchestrator decides that a bad feed never aborts the batch.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*gofeed.Feed, error) {
	parser := gofeed.NewParser()
	parser.Client = f.client
	return parser.ParseURLWithContext(url, ctx)
}

// EntryBody assembles every available descriptive field of a feed entry:
// short summary, then long description, then content blocks, joined with a
// single space and stripped of HTML markup.
func EntryBody(item *gofeed.Item) string {
	var parts []string
	for _, raw := range []string{item.Description, item.Content} {
		if text := stripHTML(raw); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// EntryText is what the relevance classifier inspects: the title plus the
// assembled body, not just the title.
func EntryText(item *gofeed.Item) string {
	body := EntryBody(item)
	if body == "" {
		return item.Title
	}
	return item.Title + " " + body
}

// ToArticle coerces a feed entry into the Article structure. Entries missing
// a title or link are dropped here; publication timestamps stay in their
// source-native string form for the merger to parse.
func ToArticle(sourceURL string, item *gofeed.Item) (article.Article, bool) {
	published := item.Published
	if published == "" {
		published = item.Updated
	}
	a := article.Article{
		Title:       strings.TrimSpace(item.Title),
		Link:        item.Link,
		Source:      sourceURL,
		PublishedAt: published,
		Summary:     EntryBody(item),
	}
	return a, a.Valid()
}

// stripHTML reduces feed markup to plain text. Feed descriptions routinely
// carry embedded HTML which would pollute classifier input.
func stripHTML(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "<") {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
