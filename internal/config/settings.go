// Package config implements the Config Surface (component G): TOML
// settings loading, merge policy, path-scoped overrides, and an immutable
// EffectiveConfig snapshot, ported from
// original_source/crates/codebook-config/src/settings.rs.
package config

import (
	"sort"
	"strings"
)

const defaultMinWordLength = 3

// OverrideBlock is a path-glob-scoped config fragment. Matching blocks are
// applied in declaration order: Dictionaries/Words/FlagWords/IgnorePatterns
// *replace* the base value when non-empty; the Extra* fields *append*
// (ported from settings.rs's OverrideBlock, supplementing spec.md's Config
// Surface per SPEC_FULL.md §E4.1).
type OverrideBlock struct {
	Paths []string `toml:"paths"`

	Dictionaries   []string `toml:"dictionaries"`
	Words          []string `toml:"words"`
	FlagWords      []string `toml:"flag_words"`
	IgnorePatterns []string `toml:"ignore_patterns"`

	ExtraDictionaries   []string `toml:"extra_dictionaries"`
	ExtraWords          []string `toml:"extra_words"`
	ExtraFlagWords      []string `toml:"extra_flag_words"`
	ExtraIgnorePatterns []string `toml:"extra_ignore_patterns"`
}

// IsValid reports whether the block has at least one path and some effect,
// matching settings.rs's is_valid/has_effect filtering during load.
func (o OverrideBlock) IsValid() bool {
	return len(o.Paths) > 0 && o.HasEffect()
}

// HasEffect reports whether applying the block would change anything.
func (o OverrideBlock) HasEffect() bool {
	return len(o.Dictionaries) > 0 || len(o.Words) > 0 || len(o.FlagWords) > 0 ||
		len(o.IgnorePatterns) > 0 || len(o.ExtraDictionaries) > 0 ||
		len(o.ExtraWords) > 0 || len(o.ExtraFlagWords) > 0 || len(o.ExtraIgnorePatterns) > 0
}

// MatchesPath reports whether path matches any of the block's path globs.
func (o OverrideBlock) MatchesPath(path string) bool {
	for _, p := range o.Paths {
		if MatchGlob(p, path) {
			return true
		}
	}
	return false
}

// Settings is the Config Surface's recognized option set (spec.md §4.G
// table), plus the supplemented Overrides (SPEC_FULL.md §E4.1).
type Settings struct {
	Dictionaries   []string `toml:"dictionaries"`
	Words          []string `toml:"words"`
	FlagWords      []string `toml:"flag_words"`
	IgnorePaths    []string `toml:"ignore_paths"`
	IgnorePatterns []string `toml:"ignore_patterns"`
	MinWordLength  int      `toml:"min_word_length"`
	UseGlobal      bool     `toml:"use_global"`

	Overrides []OverrideBlock `toml:"overrides"`
}

// Default returns the zero-value settings with defaults applied, matching
// settings.rs's Default impl (use_global=true, min_word_length=3).
func Default() Settings {
	return Settings{UseGlobal: true, MinWordLength: defaultMinWordLength}
}

// Normalize lowercases word-list fields and drops invalid overrides,
// matching settings.rs's custom Deserialize behavior.
func (s *Settings) Normalize() {
	lowerAll(s.Words)
	lowerAll(s.FlagWords)
	for i := range s.Overrides {
		lowerAll(s.Overrides[i].Words)
		lowerAll(s.Overrides[i].FlagWords)
		lowerAll(s.Overrides[i].ExtraWords)
		lowerAll(s.Overrides[i].ExtraFlagWords)
	}
	valid := s.Overrides[:0:0]
	for _, o := range s.Overrides {
		if o.IsValid() {
			valid = append(valid, o)
		}
	}
	s.Overrides = valid
	if s.MinWordLength == 0 {
		s.MinWordLength = defaultMinWordLength
	}
	s.SortAndDedup()
}

func lowerAll(words []string) {
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
}

// SortAndDedup sorts and deduplicates every list-valued field in place.
func (s *Settings) SortAndDedup() {
	s.Dictionaries = sortDedup(s.Dictionaries)
	s.Words = sortDedup(s.Words)
	s.FlagWords = sortDedup(s.FlagWords)
	s.IgnorePaths = sortDedup(s.IgnorePaths)
	s.IgnorePatterns = sortDedup(s.IgnorePatterns)
}

func sortDedup(in []string) []string {
	if len(in) == 0 {
		return in
	}
	cp := append([]string(nil), in...)
	sort.Strings(cp)
	out := cp[:1]
	for _, v := range cp[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

// Merge combines project settings (s) with a parent (typically global)
// settings, project taking precedence: extend-all-lists union, project's
// min_word_length wins unless it's the default sentinel, overrides append
// in order (settings.rs's merge).
func (s Settings) Merge(other Settings) Settings {
	if !s.UseGlobal {
		s.SortAndDedup()
		return s
	}

	merged := Settings{
		Dictionaries:   union(s.Dictionaries, other.Dictionaries),
		Words:          union(s.Words, other.Words),
		FlagWords:      union(s.FlagWords, other.FlagWords),
		IgnorePaths:    union(s.IgnorePaths, other.IgnorePaths),
		IgnorePatterns: union(s.IgnorePatterns, other.IgnorePatterns),
		UseGlobal:      s.UseGlobal,
		MinWordLength:  s.MinWordLength,
		Overrides:      append(append([]OverrideBlock(nil), other.Overrides...), s.Overrides...),
	}
	if s.MinWordLength == defaultMinWordLength {
		merged.MinWordLength = other.MinWordLength
	}
	merged.SortAndDedup()
	return merged
}

func union(a, b []string) []string {
	return append(append([]string(nil), a...), b...)
}

// ApplyOverride applies one OverrideBlock on top of base: replace-then-append.
func ApplyOverride(base Settings, o OverrideBlock) Settings {
	out := base
	if len(o.Dictionaries) > 0 {
		out.Dictionaries = append([]string(nil), o.Dictionaries...)
	}
	if len(o.Words) > 0 {
		out.Words = append([]string(nil), o.Words...)
	}
	if len(o.FlagWords) > 0 {
		out.FlagWords = append([]string(nil), o.FlagWords...)
	}
	if len(o.IgnorePatterns) > 0 {
		out.IgnorePatterns = append([]string(nil), o.IgnorePatterns...)
	}
	out.Dictionaries = append(out.Dictionaries, o.ExtraDictionaries...)
	out.Words = append(out.Words, o.ExtraWords...)
	out.FlagWords = append(out.FlagWords, o.ExtraFlagWords...)
	out.IgnorePatterns = append(out.IgnorePatterns, o.ExtraIgnorePatterns...)
	out.SortAndDedup()
	return out
}

// ResolveForPath applies every matching override, in order, on top of base.
func (s Settings) ResolveForPath(path string) Settings {
	out := s
	for _, o := range s.Overrides {
		if o.MatchesPath(path) {
			out = ApplyOverride(out, o)
		}
	}
	return out
}

// DictionaryIDs returns the active dictionary ids, defaulting to ["en_us"]
// when none are configured (helpers.rs's dictionary_ids).
func (s Settings) DictionaryIDs() []string {
	if len(s.Dictionaries) == 0 {
		return []string{"en_us"}
	}
	return s.Dictionaries
}

// IsAllowedWord reports whether word (case-insensitive) is on the allow list.
func (s Settings) IsAllowedWord(word string) bool {
	w := strings.ToLower(word)
	for _, v := range s.Words {
		if v == w {
			return true
		}
	}
	return false
}

// ShouldFlagWord reports whether word (case-insensitive) is on the deny list.
func (s Settings) ShouldFlagWord(word string) bool {
	w := strings.ToLower(word)
	for _, v := range s.FlagWords {
		if v == w {
			return true
		}
	}
	return false
}

// ShouldIgnorePath reports whether path matches any ignore_paths glob.
func (s Settings) ShouldIgnorePath(path string) bool {
	for _, p := range s.IgnorePaths {
		if MatchGlob(p, path) {
			return true
		}
	}
	return false
}

// InsertWord appends word to the allow-list if not already present, sorted
// and deduplicated, returning whether it was newly added (helpers.rs's
// insert_word, supplemented per SPEC_FULL.md §E4.3).
func (s *Settings) InsertWord(word string) bool {
	word = strings.ToLower(word)
	for _, w := range s.Words {
		if w == word {
			return false
		}
	}
	s.Words = append(s.Words, word)
	s.Words = sortDedup(s.Words)
	return true
}

// InsertIgnorePath appends path to ignore_paths if not already present
// (helpers.rs's insert_ignore).
func (s *Settings) InsertIgnorePath(path string) bool {
	for _, p := range s.IgnorePaths {
		if p == path {
			return false
		}
	}
	s.IgnorePaths = append(s.IgnorePaths, path)
	s.IgnorePaths = sortDedup(s.IgnorePaths)
	return true
}

// InsertFlagWord appends word to flag_words (deny-list) if not already
// present, sorted and deduplicated.
func (s *Settings) InsertFlagWord(word string) bool {
	word = strings.ToLower(word)
	for _, w := range s.FlagWords {
		if w == word {
			return false
		}
	}
	s.FlagWords = append(s.FlagWords, word)
	s.FlagWords = sortDedup(s.FlagWords)
	return true
}
