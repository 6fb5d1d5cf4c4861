package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/deusflow/topicdigest/internal/feeds"
	"github.com/deusflow/topicdigest/internal/rss"
)

func feedHandler(title string, delay time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(delay)
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(`<?xml version="1.0"?>
<rss version="2.0"><channel><title>` + title + `</title>
<item><title>Entry</title><link>https://example.com/e</link></item>
</channel></rss>`))
	}
}

func TestFetchAllToleratesFailingFeed(t *testing.T) {
	good := httptest.NewServer(feedHandler("Good", 0))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "broken", http.StatusInternalServerError)
	}))
	defer bad.Close()

	o := New(rss.NewFetcher(5*time.Second), 5*time.Second)
	sources := []feeds.Source{{URL: good.URL}, {URL: bad.URL}}

	var succeeded, failed int
	for res := range o.FetchAll(context.Background(), sources) {
		if res.Err != nil {
			failed++
			continue
		}
		succeeded++
		if res.Feed == nil || len(res.Feed.Items) != 1 {
			t.Errorf("successful result carries no feed: %+v", res)
		}
	}
	if succeeded != 1 || failed != 1 {
		t.Errorf("got %d succeeded / %d failed, want 1 / 1", succeeded, failed)
	}
}

func TestFetchAllYieldsInCompletionOrder(t *testing.T) {
	slow := httptest.NewServer(feedHandler("Slow", 300*time.Millisecond))
	defer slow.Close()
	fast := httptest.NewServer(feedHandler("Fast", 0))
	defer fast.Close()

	o := New(rss.NewFetcher(5*time.Second), 5*time.Second)
	sources := []feeds.Source{{URL: slow.URL}, {URL: fast.URL}}

	results := o.FetchAll(context.Background(), sources)
	first := <-results
	if first.Err != nil {
		t.Fatalf("first result failed: %v", first.Err)
	}
	if first.Feed.Title != "Fast" {
		t.Errorf("first completed feed = %q, want the fast one", first.Feed.Title)
	}
	for range results {
	}
}

func TestFetchAllTimeoutCancelsOnlyItsFeed(t *testing.T) {
	stuck := httptest.NewServer(feedHandler("Stuck", 2*time.Second))
	defer stuck.Close()
	fast := httptest.NewServer(feedHandler("Fast", 0))
	defer fast.Close()

	o := New(rss.NewFetcher(5*time.Second), 100*time.Millisecond)
	sources := []feeds.Source{{URL: stuck.URL}, {URL: fast.URL}}

	var succeeded, failed int
	for res := range o.FetchAll(context.Background(), sources) {
		if res.Err != nil {
			failed++
		} else {
			succeeded++
		}
	}
	if succeeded != 1 || failed != 1 {
		t.Errorf("got %d succeeded / %d failed, want 1 / 1", succeeded, failed)
	}
}

func TestFetchAllClosesChannel(t *testing.T) {
	o := New(rss.NewFetcher(time.Second), time.Second)

	done := make(chan struct{})
	go func() {
		for range o.FetchAll(context.Background(), nil) {
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("channel never closed for empty source list")
	}
}
