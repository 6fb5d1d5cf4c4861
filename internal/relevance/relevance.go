// Package relevance decides which feed entries belong to the topic. The
// decision is two-tier: a cheap lexical containment test first, then one
// semantic judgment from the language model only when the lexical test
// misses. The semantic tier fails closed - an error is never a match.
package relevance

import (
	"context"
	"log"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/deusflow/topicdigest/internal/article"
	"github.com/deusflow/topicdigest/internal/metrics"
	"github.com/deusflow/topicdigest/internal/rss"
)

// Judge is the injected semantic capability; gemini in production, a stub in
// tests.
type Judge interface {
	Classify(ctx context.Context, text, topic string) (bool, error)
}

type Classifier struct {
	judge Judge
}

func New(judge Judge) *Classifier {
	return &Classifier{judge: judge}
}

// IsRelevant applies the two-tier decision to one entry text. The lexical
// test uses the raw topic, not the expanded terms.
func (c *Classifier) IsRelevant(ctx context.Context, text, topic string) bool {
	if text == "" || topic == "" {
		return false
	}
	if strings.Contains(strings.ToLower(text), strings.ToLower(topic)) {
		return true
	}

	metrics.Global.IncrementSemanticChecks()
	relevant, err := c.judge.Classify(ctx, text, topic)
	if err != nil {
		log.Printf("semantic relevance check failed, treating as not relevant: %v", err)
		return false
	}
	return relevant
}

// FilterFeed extracts the relevant entries of one parsed feed, at most
// maxItems of them. Scanning stops as soon as the quota fills; the first
// maxItems matches win.
func (c *Classifier) FilterFeed(ctx context.Context, sourceURL string, feed *gofeed.Feed, topic string, maxItems int) []article.Article {
	if feed == nil || maxItems <= 0 {
		return nil
	}

	var matched []article.Article
	for _, item := range feed.Items {
		if len(matched) >= maxItems {
			break
		}
		a, ok := rss.ToArticle(sourceURL, item)
		if !ok {
			continue
		}
		if c.IsRelevant(ctx, rss.EntryText(item), topic) {
			matched = append(matched, a)
		}
	}
	return matched
}
