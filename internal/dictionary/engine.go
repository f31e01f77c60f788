package dictionary

import (
	"sort"
	"strings"
	"unicode"

	"codebooklsp/internal/lru"
)

// MaxSuggestions is the fair-merge suggestion cap (spec.md §4.A: N=7,
// superseding the original Rust implementation's N=5 — see DESIGN.md).
const MaxSuggestions = 7

type lruKey struct {
	word        string
	fingerprint string
}

// Engine implements the Dictionary Engine contract (spec.md §4.A): decide
// whether a word is correctly spelled against a set of active dictionaries
// plus allow/deny lists and a minimum length, with a hot-path LRU over
// check results.
type Engine struct {
	cache *lru.Cache[lruKey, bool]
}

// NewEngine builds an Engine with the given LRU capacity.
func NewEngine(cacheSize int) *Engine {
	return &Engine{cache: lru.New[lruKey, bool](cacheSize)}
}

// InvalidateAll clears the LRU, used on config or dictionary-set change
// (spec.md §4.A: "cache invalidated on config change or dictionary
// replacement").
func (e *Engine) InvalidateAll() {
	e.cache.Clear()
}

// CheckInput bundles the policy inputs the spec requires alongside the
// active dictionary set.
type CheckInput struct {
	AllowList     map[string]struct{} // lowercased
	DenyList      map[string]struct{} // lowercased
	MinWordLength int
}

// Fingerprint returns a stable identity for a set of active dictionaries,
// used as part of the LRU cache key (spec.md §4.A).
func Fingerprint(dicts []Dictionary) string {
	ids := make([]string, len(dicts))
	for i, d := range dicts {
		ids[i] = d.ID()
	}
	sort.Strings(ids)
	return strings.Join(ids, "\x00")
}

// Check implements spec.md §4.A's Correct/Misspelled decision, consulting
// the LRU for the common case.
func (e *Engine) Check(word string, dicts []Dictionary, in CheckInput) bool {
	lower := normalizeLookup(word)

	if in.DenyList != nil {
		if _, denied := in.DenyList[lower]; denied {
			return false // misspelled unconditionally: deny-list wins over all
		}
	}
	if in.AllowList != nil {
		if _, allowed := in.AllowList[lower]; allowed {
			return true
		}
	}
	if runeLen(word) < in.MinWordLength {
		return true
	}
	if !hasAlphabetic(word) {
		return true
	}
	if len(dicts) == 0 {
		// fail-open: zero loaded dictionaries means every word is correct
		// (spec.md §4.A Failure semantics); caller is responsible for
		// logging the diagnostic once at config-load time.
		return true
	}

	fp := Fingerprint(dicts)
	key := lruKey{word: lower, fingerprint: fp}
	if v, ok := e.cache.Get(key); ok {
		return v
	}

	correct := false
	for _, d := range dicts {
		if d.Check(lower) {
			correct = true
			break
		}
	}
	e.cache.Set(key, correct)
	return correct
}

// Suggest fairly merges suggestions from every active dictionary
// round-robin, preserving the misspelled word's original casing style, and
// caps the result at MaxSuggestions unique entries (spec.md §4.A).
func (e *Engine) Suggest(word string, dicts []Dictionary) []string {
	lower := normalizeLookup(word)

	perDict := make([][]string, len(dicts))
	for i, d := range dicts {
		perDict[i] = d.Suggest(lower, MaxSuggestions)
	}

	seen := make(map[string]struct{})
	var out []string
	for round := 0; len(out) < MaxSuggestions; round++ {
		progressed := false
		for i := range perDict {
			if round >= len(perDict[i]) {
				continue
			}
			progressed = true
			cand := applyCase(word, perDict[i][round])
			key := strings.ToLower(cand)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, cand)
			if len(out) >= MaxSuggestions {
				break
			}
		}
		if !progressed {
			break
		}
	}
	return out
}

func hasAlphabetic(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func runeLen(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}
