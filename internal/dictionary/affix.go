package dictionary

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// affixRule is one line of a PFX/SFX block: strip the `strip` suffix/prefix
// (if not "0"), append `add`, only when the stem satisfies `condition`
// (a plain suffix/prefix match on the stem, "." meaning always).
type affixRule struct {
	strip     string
	add       string
	condition string
	prefix    bool // true for PFX, false for SFX
}

type affixGroup struct {
	flag        byte
	crossProduct bool
	rules       []affixRule
}

// AffixTable holds the parsed rule groups of a .aff file, keyed by flag
// character, grounded on the Hunspell affix file format referenced
// throughout the original implementation's dictionary-manager code.
type AffixTable struct {
	groups map[byte]*affixGroup
}

// ParseAff parses a Hunspell .aff file's PFX/SFX blocks. Other directives
// (TRY, SET, REP, ICONV, ...) are ignored: the spec only requires word-form
// expansion, not suggestion-algorithm tuning, since suggestions are produced
// downstream by the Levenshtein spellchecker library.
func ParseAff(r io.Reader) (*AffixTable, error) {
	t := &AffixTable{groups: make(map[byte]*affixGroup)}
	scanner := bufio.NewScanner(r)
	var current *affixGroup
	var remaining int

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "PFX", "SFX":
			if len(fields) == 4 {
				// header: PFX <flag> <cross-product> <count>
				if len(fields[1]) == 0 {
					continue
				}
				flag := fields[1][0]
				cross := fields[2] == "Y"
				count, err := strconv.Atoi(fields[3])
				if err != nil {
					return nil, fmt.Errorf("affix header %q: %w", line, err)
				}
				current = &affixGroup{flag: flag, crossProduct: cross}
				t.groups[flag] = current
				remaining = count
			} else if len(fields) >= 5 && current != nil && remaining > 0 {
				// rule: PFX <flag> <strip> <add> <condition>
				strip := fields[2]
				add := fields[3]
				cond := fields[4]
				if idx := strings.Index(add, "/"); idx >= 0 {
					add = add[:idx] // drop continuation flags, not modeled
				}
				if strip == "0" {
					strip = ""
				}
				if add == "0" {
					add = ""
				}
				current.rules = append(current.rules, affixRule{
					strip:     strip,
					add:       add,
					condition: cond,
					prefix:    fields[0] == "PFX",
				})
				remaining--
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

// Expand produces every surface form of stem implied by the flags attached
// to it (as parsed from a .dic entry's "word/FLAGS" column).
func (t *AffixTable) Expand(stem string, flags string) []string {
	out := []string{stem}
	for i := 0; i < len(flags); i++ {
		group, ok := t.groups[flags[i]]
		if !ok {
			continue
		}
		for _, rule := range group.rules {
			if form, ok := applyRule(stem, rule); ok {
				out = append(out, form)
			}
		}
	}
	return out
}

func applyRule(stem string, rule affixRule) (string, bool) {
	if rule.prefix {
		if rule.condition != "." && rule.condition != "" && !strings.HasPrefix(stem, rule.condition) {
			return "", false
		}
		base := stem
		if rule.strip != "" {
			if !strings.HasPrefix(base, rule.strip) {
				return "", false
			}
			base = strings.TrimPrefix(base, rule.strip)
		}
		return rule.add + base, true
	}

	if rule.condition != "." && rule.condition != "" && !strings.HasSuffix(stem, rule.condition) {
		return "", false
	}
	base := stem
	if rule.strip != "" {
		if !strings.HasSuffix(base, rule.strip) {
			return "", false
		}
		base = strings.TrimSuffix(base, rule.strip)
	}
	return base + rule.add, true
}

// DicEntry is one line of a .dic file: a stem plus optional affix flags.
type DicEntry struct {
	Stem  string
	Flags string
}

// ParseDic parses a Hunspell .dic file. The first line (word count) is
// skipped if present and numeric.
func ParseDic(r io.Reader) ([]DicEntry, error) {
	scanner := bufio.NewScanner(r)
	var entries []DicEntry
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			first = false
			if _, err := strconv.Atoi(strings.TrimSpace(line)); err == nil {
				continue
			}
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// strip morphological fields (tab-separated, e.g. "po:noun")
		if idx := strings.IndexByte(line, '\t'); idx >= 0 {
			line = line[:idx]
		}
		stem := line
		flags := ""
		if idx := strings.IndexByte(line, '/'); idx >= 0 {
			stem = line[:idx]
			flags = line[idx+1:]
		}
		if stem == "" {
			continue
		}
		entries = append(entries, DicEntry{Stem: stem, Flags: flags})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// ExpandAll runs Expand across every dic entry, returning the flattened,
// deduplicated surface-form word list ready to feed a Levenshtein
// spellchecker's Add.
func ExpandAll(aff *AffixTable, entries []DicEntry) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(w string) {
		if w == "" {
			return
		}
		if _, ok := seen[w]; ok {
			return
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	for _, e := range entries {
		if e.Flags == "" || aff == nil {
			add(e.Stem)
			continue
		}
		for _, form := range aff.Expand(e.Stem, e.Flags) {
			add(form)
		}
	}
	return out
}
