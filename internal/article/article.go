package article

import (
	"strings"
	"time"
)

// Article is the unit flowing through the pipeline. Adapters coerce missing
// source fields to empty strings; nothing downstream mutates a produced
// Article. The generated digest summary lives on the Digest, not here.
type Article struct {
	Title       string
	Link        string
	Source      string
	PublishedAt string // source-native timestamp, may be empty
	Summary     string // description/body excerpt used as classifier input
}

// Valid reports whether the article carries the required display identity.
// Adapters drop entries that fail this check.
func (a Article) Valid() bool {
	return a.Title != "" && a.Link != ""
}

// Timestamp layouts seen across NewsAPI and feed sources.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02 15:04:05",
}

// ParseTime parses a source-native publication timestamp on a best-effort
// basis. A trailing "Z" is UTC. Returns the zero time and false when the
// value is empty or matches no known layout; it never errors.
func ParseTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
