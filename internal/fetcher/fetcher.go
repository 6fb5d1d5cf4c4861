// Package fetcher runs the concurrent feed fan-out and yields results in
// completion order so a slow feed never blocks a fast one.
package fetcher

import (
	"context"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/deusflow/topicdigest/internal/feeds"
	"github.com/deusflow/topicdigest/internal/rss"
)

// Result pairs one feed with its parsed content or its failure. A non-nil
// Err means the feed is excluded from downstream processing, nothing more.
type Result struct {
	Source feeds.Source
	Feed   *gofeed.Feed
	Err    error
}

type Orchestrator struct {
	fetcher *rss.Fetcher
	timeout time.Duration
}

func New(fetcher *rss.Fetcher, timeout time.Duration) *Orchestrator {
	return &Orchestrator{fetcher: fetcher, timeout: timeout}
}

// FetchAll dispatches one fetch per feed, all submitted together, and returns
// a channel of results in the order fetches complete. The channel closes
// after the last feed reports. A timeout cancels only its own feed; no retry
// is performed and no error ever escapes the batch.
func (o *Orchestrator) FetchAll(ctx context.Context, sources []feeds.Source) <-chan Result {
	results := make(chan Result, len(sources))

	var wg sync.WaitGroup
	for _, src := range sources {
		wg.Add(1)
		go func(src feeds.Source) {
			defer wg.Done()

			feedCtx, cancel := context.WithTimeout(ctx, o.timeout)
			defer cancel()

			feed, err := o.fetcher.Fetch(feedCtx, src.URL)
			results <- Result{Source: src, Feed: feed, Err: err}
		}(src)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}
