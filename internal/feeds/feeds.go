package feeds

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Source describes one configured feed: its URL plus optional topic tags used
// to pre-select which feeds participate for a given topic.
type Source struct {
	URL  string   `yaml:"url"`
	Tags []string `yaml:"tags"`
}

// Config is the YAML file structure:
//
// feeds:
//   - url: https://...
//     tags: [technology, ai]
type Config struct {
	Feeds []Source `yaml:"feeds"`
}

// Load reads the feed list from a YAML file. Descriptors are loaded once at
// process start and read-only thereafter.
func Load(path string) ([]Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feeds config: %w", err)
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse feeds config: %w", err)
	}
	if len(cfg.Feeds) == 0 {
		return nil, fmt.Errorf("feeds config %s lists no feeds", path)
	}
	return cfg.Feeds, nil
}

// Defaults is the built-in feed set used when no config file is available.
func Defaults() []Source {
	return []Source{
		{URL: "https://rss.nytimes.com/services/xml/rss/nyt/Technology.xml", Tags: []string{"technology", "science"}},
		{URL: "http://feeds.bbci.co.uk/news/technology/rss.xml", Tags: []string{"technology"}},
		{URL: "https://techcrunch.com/feed/", Tags: []string{"technology", "startups"}},
		{URL: "https://www.theverge.com/rss/index.xml", Tags: []string{"technology"}},
		{URL: "http://www.espn.com/espn/rss/nfl/news", Tags: []string{"sports", "nfl"}},
		{URL: "https://www.billboard.com/feed", Tags: []string{"music", "entertainment"}},
		{URL: "http://rss.cnn.com/rss/cnn_topstories.rss"},
		{URL: "http://rssfeeds.usatoday.com/usatoday-NewsTopStories"},
		{URL: "http://www.npr.org/rss/rss.php?id=1001"},
		{URL: "http://feeds.nature.com/nature/rss/current", Tags: []string{"science"}},
		{URL: "http://feeds.sciencedaily.com/sciencedaily", Tags: []string{"science"}},
		{URL: "http://feeds.wired.com/wired/index", Tags: []string{"technology"}},
		{URL: "https://www.espn.com/espn/rss/nba/news", Tags: []string{"sports", "nba"}},
	}
}

// Select returns the feeds whose tag set intersects the topic, or every feed
// when no tag matches. Untagged feeds always participate in a tag match.
func Select(sources []Source, topic string) []Source {
	topic = strings.ToLower(strings.TrimSpace(topic))
	if topic == "" {
		return sources
	}

	var matched []Source
	anyTagged := false
	for _, s := range sources {
		if len(s.Tags) == 0 {
			continue
		}
		anyTagged = true
		for _, tag := range s.Tags {
			if tagMatches(topic, tag) {
				matched = append(matched, s)
				break
			}
		}
	}
	if !anyTagged || len(matched) == 0 {
		return sources
	}

	// Keep untagged feeds in the fan-out; tags only narrow, never exclude
	// feeds that declared no preference.
	for _, s := range sources {
		if len(s.Tags) == 0 {
			matched = append(matched, s)
		}
	}
	return matched
}

func tagMatches(topic, tag string) bool {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return false
	}
	if strings.Contains(topic, tag) {
		return true
	}
	for _, word := range strings.Fields(topic) {
		if word == tag {
			return true
		}
	}
	return false
}
