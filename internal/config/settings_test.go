package config

import "testing"

func TestMergeUnionAndMinWordLength(t *testing.T) {
	global := Settings{Dictionaries: []string{"en_us"}, Words: []string{"foo"}, MinWordLength: 4, UseGlobal: true}
	project := Default()
	project.Dictionaries = []string{"software_terms"}
	project.Words = []string{"bar"}

	merged := project.Merge(global)
	if len(merged.Dictionaries) != 2 {
		t.Fatalf("expected union of dictionaries, got %v", merged.Dictionaries)
	}
	if merged.MinWordLength != 4 {
		t.Fatalf("expected project's default min_word_length to defer to global's 4, got %d", merged.MinWordLength)
	}
}

func TestMergeUseGlobalFalseDropsGlobal(t *testing.T) {
	global := Settings{Dictionaries: []string{"en_us"}}
	project := Settings{Dictionaries: []string{"software_terms"}, UseGlobal: false}

	merged := project.Merge(global)
	if len(merged.Dictionaries) != 1 || merged.Dictionaries[0] != "software_terms" {
		t.Fatalf("expected global to be dropped, got %v", merged.Dictionaries)
	}
}

func TestApplyOverrideReplaceThenAppend(t *testing.T) {
	base := Settings{Dictionaries: []string{"en_us"}, Words: []string{"alpha"}}
	ovr := OverrideBlock{
		Paths:             []string{"**/*.py"},
		Dictionaries:      []string{"python_terms"},
		ExtraWords:        []string{"beta"},
	}
	got := ApplyOverride(base, ovr)
	if len(got.Dictionaries) != 1 || got.Dictionaries[0] != "python_terms" {
		t.Fatalf("expected replace semantics, got %v", got.Dictionaries)
	}
	if len(got.Words) != 2 {
		t.Fatalf("expected append semantics, got %v", got.Words)
	}
}

func TestResolveForPathMatchesGlob(t *testing.T) {
	s := Settings{
		Overrides: []OverrideBlock{
			{Paths: []string{"**/*.py"}, ExtraWords: []string{"datta"}},
		},
	}
	resolved := s.ResolveForPath("src/foo.py")
	if !resolved.IsAllowedWord("datta") {
		t.Fatalf("expected override to apply for matching path")
	}
	resolved = s.ResolveForPath("src/foo.go")
	if resolved.IsAllowedWord("datta") {
		t.Fatalf("expected override to NOT apply for non-matching path")
	}
}

func TestInsertWordIdempotent(t *testing.T) {
	s := Default()
	if !s.InsertWord("Foo") {
		t.Fatalf("expected first insert to report newly added")
	}
	if s.InsertWord("foo") {
		t.Fatalf("expected case-insensitive duplicate to report not newly added")
	}
	if len(s.Words) != 1 {
		t.Fatalf("expected single deduplicated entry, got %v", s.Words)
	}
}

func TestShouldIgnorePath(t *testing.T) {
	s := Settings{IgnorePaths: []string{"**/vendor/**"}}
	if !s.ShouldIgnorePath("a/vendor/b.go") {
		t.Fatalf("expected vendor path to be ignored")
	}
	if s.ShouldIgnorePath("a/src/b.go") {
		t.Fatalf("expected non-vendor path to not be ignored")
	}
}
