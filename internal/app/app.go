// Package app wires the pipeline together: expand the topic, query the
// structured source, fan out over the feeds, classify, merge, summarize,
// render and deliver.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/deusflow/topicdigest/internal/article"
	"github.com/deusflow/topicdigest/internal/config"
	"github.com/deusflow/topicdigest/internal/digest"
	"github.com/deusflow/topicdigest/internal/feeds"
	"github.com/deusflow/topicdigest/internal/fetcher"
	"github.com/deusflow/topicdigest/internal/logger"
	"github.com/deusflow/topicdigest/internal/metrics"
	"github.com/deusflow/topicdigest/internal/newsapi"
	"github.com/deusflow/topicdigest/internal/relevance"
)

// ErrNoArticles reports that nothing survived filtering. The caller exits
// non-zero but it is not a crash.
var ErrNoArticles = errors.New("no articles found")

// Intelligence is the injected language-model capability, so the pipeline
// can run against a deterministic stub in tests.
type Intelligence interface {
	ExpandTopic(ctx context.Context, topic string, maxTerms int) ([]string, error)
	Classify(ctx context.Context, text, topic string) (bool, error)
	Summarize(ctx context.Context, topic string, art article.Article) (string, error)
}

// SearchSource is the structured search adapter contract.
type SearchSource interface {
	Fetch(ctx context.Context, query string, maxItems int) ([]article.Article, error)
}

// Sender delivers the rendered digest; nil disables delivery.
type Sender interface {
	Send(ctx context.Context, to, subject, textBody, htmlBody string) error
}

type App struct {
	cfg          *config.Config
	sources      []feeds.Source
	search       SearchSource
	orchestrator *fetcher.Orchestrator
	intel        Intelligence
	sender       Sender
}

func New(cfg *config.Config, sources []feeds.Source, search SearchSource, orchestrator *fetcher.Orchestrator, intel Intelligence, sender Sender) *App {
	return &App{
		cfg:          cfg,
		sources:      sources,
		search:       search,
		orchestrator: orchestrator,
		intel:        intel,
		sender:       sender,
	}
}

const maxExpandTerms = 5

// Run executes one digest run and returns the built digest for display.
// Per-feed and per-article failures are contained; only a failing structured
// source or an empty result abort the run.
func (a *App) Run(ctx context.Context, topic string, apiCount, perFeedCount int) (*digest.Digest, error) {
	start := time.Now()

	terms, err := a.intel.ExpandTopic(ctx, topic, maxExpandTerms)
	if err != nil {
		logger.Warn("topic expansion failed, searching with topic only", "topic", topic, "error", err)
		terms = []string{topic}
	}
	logger.Info("searching for articles", "terms", terms)

	apiArticles, err := a.search.Fetch(ctx, newsapi.BuildQuery(terms), apiCount)
	if err != nil {
		metrics.Global.SetError(err.Error())
		return nil, fmt.Errorf("structured search failed: %w", err)
	}
	metrics.Global.AddArticlesCollected(len(apiArticles))

	feedArticles := a.collectFromFeeds(ctx, topic, perFeedCount)

	merged := digest.Merge(apiArticles, feedArticles)
	if len(merged) == 0 {
		metrics.Global.SetError(ErrNoArticles.Error())
		return nil, fmt.Errorf("%w for topic %q", ErrNoArticles, topic)
	}

	d := digest.New(topic, merged)
	a.summarize(ctx, d)

	if err := a.deliver(ctx, d); err != nil {
		return d, err
	}

	metrics.Global.RecordRun(time.Since(start))
	return d, nil
}

// collectFromFeeds consumes the concurrent fan-out in completion order:
// classification for a finished feed starts immediately, regardless of how
// its siblings are doing. A failed feed is logged and contributes nothing.
func (a *App) collectFromFeeds(ctx context.Context, topic string, perFeedCount int) []article.Article {
	selected := feeds.Select(a.sources, topic)
	logger.Info("fetching feeds", "selected", len(selected), "configured", len(a.sources))

	classifier := relevance.New(a.intel)

	var collected []article.Article
	for res := range a.orchestrator.FetchAll(ctx, selected) {
		if res.Err != nil {
			metrics.Global.IncrementFeedsFailed()
			logger.Warn("feed unavailable, skipping", "url", res.Source.URL, "error", res.Err)
			continue
		}
		metrics.Global.IncrementFeedsFetched()

		matched := classifier.FilterFeed(ctx, res.Source.URL, res.Feed, topic, perFeedCount)
		logger.Debug("feed processed", "url", res.Source.URL, "entries", len(res.Feed.Items), "matched", len(matched))
		collected = append(collected, matched...)
	}
	metrics.Global.AddArticlesCollected(len(collected))
	return collected
}

// summarize runs the per-article summarizer gate. Errors mean "no summary
// for this one" and never abort the digest.
func (a *App) summarize(ctx context.Context, d *digest.Digest) {
	for _, art := range d.Articles {
		summary, err := a.intel.Summarize(ctx, d.Topic, art)
		if err != nil {
			logger.Warn("summarization failed, skipping article", "title", art.Title, "error", err)
			continue
		}
		if summary == "" {
			metrics.Global.IncrementSummariesRejected()
			continue
		}
		metrics.Global.IncrementSummariesGenerated()
		d.Summaries[art.Title] = summary
	}
}

// deliver sends the mail digest when there is something to send and a place
// to send it. No summaries means nothing-to-send, which is not an error.
func (a *App) deliver(ctx context.Context, d *digest.Digest) error {
	if a.sender == nil {
		return nil
	}
	if !d.HasSummaries() {
		logger.Info("no summaries generated, skipping mail delivery")
		return nil
	}

	subject := fmt.Sprintf("News digest: %s", d.Topic)
	if err := a.sender.Send(ctx, a.cfg.MailTo, subject, d.RenderText(), d.RenderHTML()); err != nil {
		metrics.Global.SetError(err.Error())
		return fmt.Errorf("digest delivery failed: %w", err)
	}
	metrics.Global.IncrementDigestsSent()
	logger.Info("digest delivered", "to", a.cfg.MailTo, "summaries", len(d.Summaries))
	return nil
}
