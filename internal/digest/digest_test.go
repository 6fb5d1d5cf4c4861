package digest

import (
	"strings"
	"testing"

	"github.com/deusflow/topicdigest/internal/article"
)

func TestMergeOrdersMostRecentFirst(t *testing.T) {
	apiResults := []article.Article{
		{Title: "EV Sales Surge", Link: "https://a/1", PublishedAt: "2024-01-02T10:00:00Z"},
	}
	feedResults := []article.Article{
		{Title: "Charging Network Expands", Link: "https://b/1", PublishedAt: "2024-01-03T08:00:00Z"},
		{Title: "Old Battery Recall", Link: "https://b/2", PublishedAt: "2023-12-20T09:00:00Z"},
	}

	got := Merge(apiResults, feedResults)
	want := []string{"Charging Network Expands", "EV Sales Surge", "Old Battery Recall"}
	for i, title := range want {
		if got[i].Title != title {
			t.Errorf("position %d = %q, want %q", i, got[i].Title, title)
		}
	}
}

func TestMergeUnparseableTimestampsSortLastInInputOrder(t *testing.T) {
	lists := [][]article.Article{
		{
			{Title: "EV Sales Surge", Link: "https://a/1", PublishedAt: "2024-01-02T10:00:00Z"},
			{Title: "New EV Battery", Link: "https://a/2"},
		},
		{
			{Title: "Also Undated", Link: "https://b/1", PublishedAt: "sometime"},
		},
	}

	got := Merge(lists...)
	if got[0].Title != "EV Sales Surge" {
		t.Errorf("dated article should rank first, got %q", got[0].Title)
	}
	if got[1].Title != "New EV Battery" || got[2].Title != "Also Undated" {
		t.Errorf("undated articles should keep input order at the tail: %q, %q", got[1].Title, got[2].Title)
	}
}

func TestMergeMixedTimestampFormats(t *testing.T) {
	got := Merge([]article.Article{
		{Title: "Feed Entry", Link: "https://a", PublishedAt: "Wed, 03 Jan 2024 08:00:00 +0000"},
		{Title: "API Entry", Link: "https://b", PublishedAt: "2024-01-02T10:00:00Z"},
	})
	if got[0].Title != "Feed Entry" {
		t.Errorf("RFC1123Z and RFC3339 timestamps should rank together, got %q first", got[0].Title)
	}
}

func TestMergeEmpty(t *testing.T) {
	if got := Merge(); len(got) != 0 {
		t.Errorf("merging nothing should be empty, got %d", len(got))
	}
	if got := Merge(nil, nil); len(got) != 0 {
		t.Errorf("merging nil lists should be empty, got %d", len(got))
	}
}

func digestFixture() *Digest {
	d := New("electric vehicles", []article.Article{
		{Title: "EV Sales Surge", Link: "https://a/1", Source: "Example Wire", PublishedAt: "2024-01-02T10:00:00Z"},
		{Title: "New EV Battery", Link: "https://a/2", Source: "https://example.com/feed.xml"},
	})
	d.Summaries["EV Sales Surge"] = "Sales grew sharply last quarter."
	return d
}

func TestRenderTextSummarizedSubsetPlusFullList(t *testing.T) {
	out := digestFixture().RenderText()

	if !strings.Contains(out, "Sales grew sharply last quarter.") {
		t.Error("summary missing from text body")
	}
	if strings.Contains(strings.SplitN(out, "All articles:", 2)[0], "New EV Battery") {
		t.Error("unsummarized article leaked into the summary section")
	}
	for _, link := range []string{"https://a/1", "https://a/2"} {
		if !strings.Contains(out, link) {
			t.Errorf("link list missing %s", link)
		}
	}
}

func TestRenderHTMLEscapesContent(t *testing.T) {
	d := New("cats & dogs", []article.Article{
		{Title: "A <b>bold</b> title", Link: "https://a/1", Source: "Wire"},
	})
	d.Summaries["A <b>bold</b> title"] = "Plain summary."

	out := d.RenderHTML()
	if !strings.Contains(out, "cats &amp; dogs") {
		t.Error("topic not escaped")
	}
	if strings.Contains(out, "<b>bold</b>") {
		t.Error("title markup not escaped")
	}
}

func TestRenderConsoleListsEveryArticle(t *testing.T) {
	out := digestFixture().RenderConsole()

	for _, want := range []string{"1. [Example Wire] EV Sales Surge", "2. [https://example.com/feed.xml] New EV Battery", "Summary: Sales grew sharply last quarter."} {
		if !strings.Contains(out, want) {
			t.Errorf("console output missing %q", want)
		}
	}
}

func TestHasSummaries(t *testing.T) {
	d := New("x", nil)
	if d.HasSummaries() {
		t.Error("fresh digest has no summaries")
	}
	d.Summaries["t"] = "s"
	if !d.HasSummaries() {
		t.Error("digest with a summary should report it")
	}
}
