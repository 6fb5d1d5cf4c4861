// Package digest merges adapter outputs into one chronologically ranked
// sequence and renders the result for the console and for mail delivery.
package digest

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/deusflow/topicdigest/internal/article"
)

// Digest is the output aggregate of one run: the ranked articles plus the
// title-to-summary mapping for the subset the summarizer approved. Built
// once, never mutated after rendering.
type Digest struct {
	Topic     string
	Articles  []article.Article
	Summaries map[string]string
}

func New(topic string, articles []article.Article) *Digest {
	return &Digest{
		Topic:     topic,
		Articles:  articles,
		Summaries: make(map[string]string),
	}
}

func (d *Digest) HasSummaries() bool {
	return len(d.Summaries) > 0
}

// Merge combines adapter outputs into one sequence ordered by publication
// time, most recent first. Articles without a parsable timestamp sort last,
// keeping their relative input order; a bad date field never errors.
func Merge(lists ...[]article.Article) []article.Article {
	var merged []article.Article
	for _, list := range lists {
		merged = append(merged, list...)
	}

	keys := make([]time.Time, len(merged))
	for i, a := range merged {
		keys[i], _ = article.ParseTime(a.PublishedAt)
	}

	idx := make([]int, len(merged))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return keys[idx[i]].After(keys[idx[j]])
	})

	out := make([]article.Article, len(merged))
	for i, k := range idx {
		out[i] = merged[k]
	}
	return out
}

// RenderConsole formats the ranked list for terminal output.
func (d *Digest) RenderConsole() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Fetched %d articles for topic '%s':\n\n", len(d.Articles), d.Topic)
	for i, a := range d.Articles {
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, a.Source, a.Title)
		fmt.Fprintf(&b, "   Link: %s\n", a.Link)
		if a.PublishedAt != "" {
			fmt.Fprintf(&b, "   Published: %s\n", a.PublishedAt)
		}
		if s, ok := d.Summaries[a.Title]; ok {
			fmt.Fprintf(&b, "   Summary: %s\n", s)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderText builds the plain-text mail body: summarized articles first,
// then the full link list of everything that made the ranking.
func (d *Digest) RenderText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "News digest: %s\n\n", d.Topic)

	for _, a := range d.Articles {
		s, ok := d.Summaries[a.Title]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s (%s)\n%s\n%s\n\n", a.Title, a.Source, s, a.Link)
	}

	b.WriteString("All articles:\n")
	for _, a := range d.Articles {
		fmt.Fprintf(&b, "- %s: %s\n", a.Title, a.Link)
	}
	return b.String()
}

// RenderHTML is the alternate rich body for the same message.
func (d *Digest) RenderHTML() string {
	var b strings.Builder
	b.WriteString("<html><body>\n")
	fmt.Fprintf(&b, "<h2>News digest: %s</h2>\n", html.EscapeString(d.Topic))

	for _, a := range d.Articles {
		s, ok := d.Summaries[a.Title]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "<h3><a href=%q>%s</a></h3>\n", a.Link, html.EscapeString(a.Title))
		fmt.Fprintf(&b, "<p><i>%s</i></p>\n", html.EscapeString(a.Source))
		fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(s))
	}

	b.WriteString("<h3>All articles</h3>\n<ul>\n")
	for _, a := range d.Articles {
		fmt.Fprintf(&b, "<li><a href=%q>%s</a></li>\n", a.Link, html.EscapeString(a.Title))
	}
	b.WriteString("</ul>\n</body></html>\n")
	return b.String()
}
