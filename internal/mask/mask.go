// Package mask implements the Regex Pre-filter (component C): it computes
// the union of byte ranges that must be excluded from spell-checking,
// combining always-on built-in patterns with user-supplied ones.
package mask

import (
	"sort"

	"github.com/dlclark/regexp2"
)

// Range is a half-open byte range, matching spec.md's TextRange shape for
// masked spans.
type Range struct {
	Start, End int
}

// defaultPatternSources are ported verbatim from the original Rust
// implementation's regexes.rs (DEFAULT_SKIP_PATTERNS), in the same order.
var defaultPatternSources = []string{
	`https?://[^\s]+`,                                                                  // URLs
	`#[0-9a-fA-F]{3,8}`,                                                                // hex colors
	`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`,                                    // emails
	`/[^\s]*`,                                                                           // unix paths
	`[A-Za-z]:\\[^\s]*`,                                                                 // windows paths
	`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`,       // UUIDs
	`[A-Za-z0-9+/]{20,}={1,2}`,                                                         // base64 with padding
	`\b[0-9a-fA-F]{7,40}\b`,                                                            // git hashes
	`\[([^\]]+)\]\([^\s)]+\)`,                                                          // markdown links
}

var defaultPatterns []*regexp2.Regexp

func init() {
	defaultPatterns = make([]*regexp2.Regexp, 0, len(defaultPatternSources))
	for _, src := range defaultPatternSources {
		re := regexp2.MustCompile(src, regexp2.Multiline)
		defaultPatterns = append(defaultPatterns, re)
	}
}

// Logger receives a message when a user pattern fails to compile, matching
// the BadRegex error taxonomy entry (spec.md §7): logged, pattern skipped,
// everything else still applies.
type Logger interface {
	Warnf(format string, args ...any)
}

// Compile compiles user-supplied patterns in addition to the built-in
// defaults, skipping (and logging) any that fail to compile.
func Compile(userPatterns []string, log Logger) []*regexp2.Regexp {
	out := make([]*regexp2.Regexp, len(defaultPatterns))
	copy(out, defaultPatterns)
	for _, p := range userPatterns {
		re, err := regexp2.Compile(p, regexp2.Multiline)
		if err != nil {
			if log != nil {
				log.Warnf("ignoring invalid ignore pattern %q: %v", p, err)
			}
			continue
		}
		out = append(out, re)
	}
	return out
}

// Find returns the union of matching byte ranges of text under the
// compiled patterns, merging overlapping and adjacent ranges. A nil pattern
// list means the built-in defaults.
func Find(text string, patterns []*regexp2.Regexp) []Range {
	if patterns == nil {
		patterns = defaultPatterns
	}
	var ranges []Range
	for _, re := range patterns {
		m, err := re.FindStringMatch(text)
		for err == nil && m != nil {
			ranges = append(ranges, Range{Start: m.Index, End: m.Index + m.Length})
			m, err = re.FindNextMatch(m)
		}
	}
	return merge(ranges)
}

func merge(ranges []Range) []Range {
	if len(ranges) == 0 {
		return nil
	}
	sort.Slice(ranges, func(i, j int) bool {
		if ranges[i].Start != ranges[j].Start {
			return ranges[i].Start < ranges[j].Start
		}
		return ranges[i].End < ranges[j].End
	})
	out := make([]Range, 0, len(ranges))
	cur := ranges[0]
	for _, r := range ranges[1:] {
		if r.Start <= cur.End {
			if r.End > cur.End {
				cur.End = r.End
			}
			continue
		}
		out = append(out, cur)
		cur = r
	}
	out = append(out, cur)
	return out
}

// Contains reports whether [start, end) lies entirely within any masked
// range, implementing spec.md §4.C's "entirely inside" exclusion rule.
func Contains(ranges []Range, start, end int) bool {
	// ranges is sorted and non-overlapping (post-merge); binary search would
	// be overkill for the small counts involved here, linear scan is fine.
	for _, r := range ranges {
		if start >= r.Start && end <= r.End {
			return true
		}
		if r.Start > end {
			break
		}
	}
	return false
}
