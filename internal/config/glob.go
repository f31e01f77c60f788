package config

import "strings"

// MatchGlob matches path against a glob pattern supporting '*' (any run of
// non-separator characters), '?' (single character), and '**' (any number
// of path segments, including zero). No glob library appears anywhere in
// the example corpus (grep confirmed across every go.mod) — this is a
// deliberate stdlib exception, justified in DESIGN.md.
func MatchGlob(pattern, path string) bool {
	pattern = strings.ReplaceAll(pattern, "\\", "/")
	path = strings.ReplaceAll(path, "\\", "/")
	return matchSegments(splitPath(pattern), splitPath(path))
}

func splitPath(s string) []string {
	s = strings.Trim(s, "/")
	if s == "" {
		return nil
	}
	return strings.Split(s, "/")
}

func matchSegments(pat, name []string) bool {
	if len(pat) == 0 {
		return len(name) == 0
	}
	if pat[0] == "**" {
		if matchSegments(pat[1:], name) {
			return true
		}
		if len(name) == 0 {
			return false
		}
		return matchSegments(pat, name[1:])
	}
	if len(name) == 0 {
		return false
	}
	if !matchSegment(pat[0], name[0]) {
		return false
	}
	return matchSegments(pat[1:], name[1:])
}

// matchSegment matches a single path segment against a glob segment
// containing only '*' and '?' (no '/').
func matchSegment(pat, seg string) bool {
	return matchSegmentRunes([]rune(pat), []rune(seg))
}

func matchSegmentRunes(pat, seg []rune) bool {
	if len(pat) == 0 {
		return len(seg) == 0
	}
	switch pat[0] {
	case '*':
		for i := 0; i <= len(seg); i++ {
			if matchSegmentRunes(pat[1:], seg[i:]) {
				return true
			}
		}
		return false
	case '?':
		if len(seg) == 0 {
			return false
		}
		return matchSegmentRunes(pat[1:], seg[1:])
	default:
		if len(seg) == 0 || pat[0] != seg[0] {
			return false
		}
		return matchSegmentRunes(pat[1:], seg[1:])
	}
}
