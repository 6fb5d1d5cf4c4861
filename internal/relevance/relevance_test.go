package relevance

import (
	"context"
	"errors"
	"testing"

	"github.com/mmcdole/gofeed"
)

type stubJudge struct {
	verdict bool
	err     error
	calls   int
}

func (s *stubJudge) Classify(ctx context.Context, text, topic string) (bool, error) {
	s.calls++
	return s.verdict, s.err
}

func TestLexicalMatchIsCaseInsensitive(t *testing.T) {
	judge := &stubJudge{}
	c := New(judge)

	if !c.IsRelevant(context.Background(), "Breaking NEWS about Cats", "cats") {
		t.Error("case-insensitive containment should match")
	}
	if judge.calls != 0 {
		t.Errorf("lexical hit must not consult the judge, got %d calls", judge.calls)
	}
}

func TestSemanticTierRunsOnLexicalMiss(t *testing.T) {
	judge := &stubJudge{verdict: true}
	c := New(judge)

	if !c.IsRelevant(context.Background(), "Feline health research update", "cats") {
		t.Error("judge said yes, entry should be relevant")
	}
	if judge.calls != 1 {
		t.Errorf("judge calls = %d, want 1", judge.calls)
	}
}

func TestSemanticFailureIsNotAMatch(t *testing.T) {
	judge := &stubJudge{err: errors.New("model unavailable")}
	c := New(judge)

	if c.IsRelevant(context.Background(), "Feline health research update", "cats") {
		t.Error("a failed semantic check must be treated as not relevant")
	}
}

func TestEmptyInputsAreNotRelevant(t *testing.T) {
	judge := &stubJudge{verdict: true}
	c := New(judge)

	if c.IsRelevant(context.Background(), "", "cats") {
		t.Error("empty text cannot be relevant")
	}
	if c.IsRelevant(context.Background(), "some text", "") {
		t.Error("empty topic cannot match")
	}
	if judge.calls != 0 {
		t.Errorf("judge should not run on empty inputs, got %d calls", judge.calls)
	}
}

func feedWith(titles ...string) *gofeed.Feed {
	feed := &gofeed.Feed{}
	for i, title := range titles {
		feed.Items = append(feed.Items, &gofeed.Item{
			Title: title,
			Link:  "https://example.com/" + string(rune('a'+i)),
		})
	}
	return feed
}

func TestFilterFeedStopsAtQuota(t *testing.T) {
	judge := &stubJudge{}
	c := New(judge)
	feed := feedWith("cats one", "cats two", "cats three", "cats four")

	got := c.FilterFeed(context.Background(), "feed", feed, "cats", 2)
	if len(got) != 2 {
		t.Fatalf("got %d articles, want 2", len(got))
	}
	if got[0].Title != "cats one" || got[1].Title != "cats two" {
		t.Errorf("first matches should win: %+v", got)
	}
	if judge.calls != 0 {
		t.Errorf("scanning past the quota consulted the judge %d times", judge.calls)
	}
}

func TestFilterFeedSkipsIrrelevantAndInvalid(t *testing.T) {
	judge := &stubJudge{verdict: false}
	c := New(judge)
	feed := feedWith("cats story", "dogs story")
	feed.Items = append(feed.Items, &gofeed.Item{Title: "no link"})

	got := c.FilterFeed(context.Background(), "feed", feed, "cats", 5)
	if len(got) != 1 || got[0].Title != "cats story" {
		t.Errorf("got %+v, want only the cats story", got)
	}
}

func TestFilterFeedNilFeed(t *testing.T) {
	c := New(&stubJudge{})
	if got := c.FilterFeed(context.Background(), "feed", nil, "cats", 5); got != nil {
		t.Errorf("nil feed should yield nil, got %+v", got)
	}
}
