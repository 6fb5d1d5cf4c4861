// Package newsapi is the structured search adapter. Unlike the feeds it has
// no sibling to fall back on, so its failures are surfaced, not swallowed.
package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/deusflow/topicdigest/internal/article"
)

// ErrSourceUnavailable marks a failed structured-search call. The run cannot
// continue without this source.
var ErrSourceUnavailable = errors.New("news search source unavailable")

const sourceLabel = "NewsAPI"

type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

func NewClient(endpoint, apiKey string, timeout time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// response mirrors the NewsAPI JSON body; only the fields the pipeline maps
// into Articles are declared.
type response struct {
	Status   string `json:"status"`
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// BuildQuery combines expanded search terms with logical OR, the form the
// search endpoint expects.
func BuildQuery(terms []string) string {
	kept := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			kept = append(kept, t)
		}
	}
	return strings.Join(kept, " OR ")
}

// Fetch issues one search request and maps each result record into an
// Article. Missing fields become empty strings, never null; records without
// a title or URL are dropped at this boundary.
func (c *Client) Fetch(ctx context.Context, query string, maxItems int) ([]article.Article, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("language", "en")
	params.Set("pageSize", strconv.Itoa(maxItems))
	params.Set("sortBy", "publishedAt")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrSourceUnavailable, err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("User-Agent", "topicdigest/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrSourceUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed response
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode body: %v", ErrSourceUnavailable, err)
	}

	articles := make([]article.Article, 0, len(parsed.Articles))
	for _, rec := range parsed.Articles {
		a := article.Article{
			Title:       strings.TrimSpace(rec.Title),
			Link:        rec.URL,
			Source:      rec.Source.Name,
			PublishedAt: rec.PublishedAt,
			Summary:     strings.TrimSpace(rec.Description),
		}
		if a.Source == "" {
			a.Source = sourceLabel
		}
		if !a.Valid() {
			continue
		}
		articles = append(articles, a)
	}
	return articles, nil
}
