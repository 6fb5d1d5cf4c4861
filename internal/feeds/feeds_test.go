package feeds

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadParsesURLsAndTags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feeds.yaml")
	data := `feeds:
  - url: https://example.com/tech.xml
    tags: [technology]
  - url: https://example.com/all.xml
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	sources, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("got %d sources, want 2", len(sources))
	}
	if sources[0].URL != "https://example.com/tech.xml" || len(sources[0].Tags) != 1 {
		t.Errorf("unexpected first source: %+v", sources[0])
	}
	if len(sources[1].Tags) != 0 {
		t.Errorf("second source should be untagged: %+v", sources[1])
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSelectIntersectsTags(t *testing.T) {
	sources := []Source{
		{URL: "a", Tags: []string{"technology"}},
		{URL: "b", Tags: []string{"sports"}},
		{URL: "c"}, // untagged, always participates
	}

	got := Select(sources, "new technology trends")
	urls := map[string]bool{}
	for _, s := range got {
		urls[s.URL] = true
	}
	if !urls["a"] || !urls["c"] || urls["b"] {
		t.Errorf("Select picked %v, want a and c only", urls)
	}
}

func TestSelectFallsBackToAllFeeds(t *testing.T) {
	sources := []Source{
		{URL: "a", Tags: []string{"technology"}},
		{URL: "b", Tags: []string{"sports"}},
	}
	if got := Select(sources, "gardening"); len(got) != len(sources) {
		t.Errorf("got %d feeds, want all %d when no tag matches", len(got), len(sources))
	}
}
