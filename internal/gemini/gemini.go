// Package gemini is the language-model capability behind query expansion,
// the semantic relevance fallback and digest summarization. Responses are
// parsed by simple string rules: comma-split for expansion, yes/no prefix
// for classification, a "NOT RELEVANT" prefix for the summarizer gate.
package gemini

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/deusflow/topicdigest/internal/article"
	"github.com/deusflow/topicdigest/internal/cache"
	"github.com/deusflow/topicdigest/internal/ratelimit"
)

// classifier input is truncated to keep prompts bounded
const maxClassifyChars = 1500

type Client struct {
	client   *genai.Client
	model    string
	budget   *ratelimit.Budget
	verdicts *cache.Cache
	ttl      time.Duration
}

func NewClient(ctx context.Context, apiKey, model string, budget *ratelimit.Budget, verdicts *cache.Cache, verdictTTL time.Duration) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		client:   client,
		model:    model,
		budget:   budget,
		verdicts: verdicts,
		ttl:      verdictTTL,
	}, nil
}

func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// ExpandTopic asks for related search terms and returns the topic followed by
// up to maxTerms of them, duplicates and empties removed, order preserved.
func (c *Client) ExpandTopic(ctx context.Context, topic string, maxTerms int) ([]string, error) {
	if !c.budget.Allow("expansion") {
		return nil, fmt.Errorf("expansion skipped: request budget exhausted")
	}

	prompt := fmt.Sprintf(
		"Generate %d synonyms or related terms for the topic '%s'. "+
			"Return them as a comma-separated list with no extra text.",
		maxTerms, topic,
	)
	raw, err := c.generate(ctx, prompt, 0.7, 60)
	if err != nil {
		return nil, fmt.Errorf("expand topic: %w", err)
	}

	terms := parseTerms(raw, topic, maxTerms)
	if len(terms) == 1 {
		return nil, fmt.Errorf("expand topic: no usable terms in response %q", raw)
	}
	return terms, nil
}

// Classify answers whether the text is directly about the topic. Callers
// treat any error as "not relevant" - this path must fail closed.
func (c *Client) Classify(ctx context.Context, text, topic string) (bool, error) {
	key := cache.Key(topic, text)
	if verdict, ok := c.verdicts.Get(key); ok {
		return verdict, nil
	}

	if !c.budget.Allow("classification") {
		return false, nil
	}

	prompt := fmt.Sprintf(
		"Is the following text directly about \"%s\"? Answer strictly yes or no.\n\nTEXT: %s",
		topic, truncate(text, maxClassifyChars),
	)
	raw, err := c.generate(ctx, prompt, 0, 8)
	if err != nil {
		return false, fmt.Errorf("classify: %w", err)
	}

	verdict := isAffirmative(raw)
	c.verdicts.Set(key, verdict, c.ttl)
	return verdict, nil
}

// Summarize produces a short digest-ready summary of the article, or the
// empty string when the model judges it not relevant after all. This is a
// second, independent relevance gate.
func (c *Client) Summarize(ctx context.Context, topic string, art article.Article) (string, error) {
	if !c.budget.Allow("summarization") {
		return "", nil
	}

	prompt := fmt.Sprintf(`You are compiling a news digest about "%s".

ARTICLE
Title: %s
Source: %s
Text: %s

If the article is not directly about "%s", reply with exactly: NOT RELEVANT
Otherwise write a 2-3 sentence summary suitable for the digest. Reply with the summary only, no preamble.`,
		topic, art.Title, art.Source, truncate(art.Summary, 4000), topic,
	)

	raw, err := c.generate(ctx, prompt, 0, 200)
	if err != nil {
		return "", fmt.Errorf("summarize %q: %w", art.Title, err)
	}

	cleaned := sanitizeSummary(raw)
	if cleaned == "" || strings.HasPrefix(strings.ToUpper(cleaned), "NOT RELEVANT") {
		return "", nil
	}
	return cleaned, nil
}

// generate issues one single-turn completion and extracts the text reply.
func (c *Client) generate(ctx context.Context, prompt string, temperature float32, maxTokens int32) (string, error) {
	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(temperature)
	model.SetMaxOutputTokens(maxTokens)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from Gemini")
	}

	return fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]), nil
}

// parseTerms splits a comma-separated completion into clean terms: the topic
// first, then up to maxTerms distinct related terms in response order.
func parseTerms(raw, topic string, maxTerms int) []string {
	terms := []string{topic}
	seen := map[string]bool{strings.ToLower(topic): true}

	for _, t := range strings.Split(raw, ",") {
		t = strings.Trim(strings.TrimSpace(t), `"'`)
		t = strings.TrimSuffix(t, ".")
		if t == "" || seen[strings.ToLower(t)] {
			continue
		}
		seen[strings.ToLower(t)] = true
		terms = append(terms, t)
		if len(terms) > maxTerms {
			break
		}
	}
	return terms
}

// isAffirmative treats any affirmative-prefixed reply as a match and
// everything else as a miss.
func isAffirmative(raw string) bool {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimLeft(s, `"'*`)
	return strings.HasPrefix(s, "yes")
}

var (
	disclaimerLine   = regexp.MustCompile(`(?im)^\s*(note|disclaimer)\s*:.*$`)
	disclaimerParen  = regexp.MustCompile(`(?i)[(\[]\s*(note|disclaimer)\s*:[^)\]]*[)\]]`)
	markdownEmphasis = regexp.MustCompile(`[*_]{1,2}([^*_]+)[*_]{1,2}`)
)

// sanitizeSummary strips the boilerplate models like to attach: disclaimer
// lines, bracketed notes, markdown emphasis, stray fences and quotes.
func sanitizeSummary(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = disclaimerParen.ReplaceAllString(s, "")
	s = disclaimerLine.ReplaceAllString(s, "")
	s = markdownEmphasis.ReplaceAllString(s, "$1")
	s = strings.Trim(strings.TrimSpace(s), `"`)
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, maxChars int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	runes := []rune(s)
	trimmed := string(runes[:maxChars])
	// cut back to a sentence end when one is reasonably close
	if idx := strings.LastIndex(trimmed, ". "); idx > maxChars/2 {
		trimmed = trimmed[:idx+1]
	}
	return trimmed
}
