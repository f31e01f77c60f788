// Package pipeline implements the Pipeline Orchestrator (component F): it
// composes the Language Registry, Regex Pre-filter, Token Extractor, Word
// Splitter and Dictionary Engine into a single spell_check operation,
// grounded on original_source/crates/codebook/src/parser.rs's
// TextProcessor/find_locations two-pass design, with capture-level fan-out
// ported from oomathias-snav/src/internal/candidate/filter.go's
// worker-count heuristic and chunk-then-merge idiom.
package pipeline

import (
	"context"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/dlclark/regexp2"

	"codebooklsp/internal/config"
	"codebooklsp/internal/dictionary"
	"codebooklsp/internal/extractor"
	"codebooklsp/internal/lang"
	"codebooklsp/internal/mask"
	"codebooklsp/internal/splitter"
)

// parallelThreshold and minChunkSize mirror filterParallelThreshold /
// filterMinChunkSize in the teacher's candidate/filter.go: below this many
// captures, a single goroutine is faster than coordinating a worker pool.
const (
	parallelThreshold = 64
	minChunkSize      = 16
)

// TextRange is the spec's half-open byte range into the source buffer.
type TextRange struct {
	Start, End int
}

// WordLocation groups every occurrence of a misspelled word, keyed
// case-insensitively, with its set of de-duplicated text ranges (spec.md §3).
type WordLocation struct {
	Word      string
	Locations []TextRange
}

// Request bundles everything a single spell_check invocation needs. Path is
// optional: when set it drives ignore_paths, overrides and language
// detection. LanguageID overrides path-based detection when the caller
// already knows it (e.g. from an LSP didOpen languageId).
type Request struct {
	Source       []byte
	Path         string
	LanguageID   lang.ID
	Settings     config.Settings
	MaskPatterns []*regexp2.Regexp // precompiled via mask.Compile; nil means built-ins plus Settings.IgnorePatterns
	Dictionaries []dictionary.Dictionary
}

// Orchestrator owns the shared Token Extractor and Dictionary Engine used
// across every Check call.
type Orchestrator struct {
	extractor *extractor.Extractor
	engine    *dictionary.Engine
}

// New builds an Orchestrator over a shared Extractor and Engine.
func New(ex *extractor.Extractor, engine *dictionary.Engine) *Orchestrator {
	return &Orchestrator{extractor: ex, engine: engine}
}

// Engine exposes the shared Dictionary Engine so callers (e.g. the LSP
// Adapter's codeAction handler) can request suggestions without duplicating
// the cache the orchestrator already maintains.
func (o *Orchestrator) Engine() *dictionary.Engine {
	return o.engine
}

// Check runs the full D→C→E→B→A pipeline described in spec.md §4.F,
// returning a deduplicated, deterministically ordered set of misspelled
// word locations. It honors ctx cancellation between captures and between
// words, so a caller can cancel an in-flight check the moment a newer
// document revision supersedes it (spec.md §5).
func (o *Orchestrator) Check(ctx context.Context, req Request) ([]WordLocation, error) {
	settings := req.Settings
	if req.Path != "" {
		if settings.ShouldIgnorePath(req.Path) {
			return nil, nil
		}
		settings = settings.ResolveForPath(req.Path)
	}

	if len(req.Source) == 0 {
		return nil, nil
	}

	id := req.LanguageID
	if id == "" {
		if req.Path != "" {
			id = lang.Detect(req.Path)
		} else {
			id = lang.Plain
		}
	}

	patterns := req.MaskPatterns
	if patterns == nil {
		patterns = mask.Compile(settings.IgnorePatterns, nil)
	}
	ranges := mask.Find(string(req.Source), patterns)

	captures, err := o.extractor.Extract(ctx, req.Source, id)
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	allow := toSet(settings.Words)
	deny := toSet(settings.FlagWords)
	checkIn := dictionary.CheckInput{AllowList: allow, DenyList: deny, MinWordLength: settings.MinWordLength}

	hits, err := o.scanCaptures(ctx, req.Source, captures, ranges, req.Dictionaries, checkIn)
	if err != nil {
		return nil, err
	}

	return group(hits), nil
}

type hit struct {
	text  string
	start int
	end   int
}

// scanCaptures fans captures out across a worker pool sized the way the
// teacher's filterWorkerCount does: below parallelThreshold captures, or
// with GOMAXPROCS < 2, it runs serially; otherwise it uses
// min(GOMAXPROCS, captures/minChunkSize) workers.
func (o *Orchestrator) scanCaptures(ctx context.Context, source []byte, captures []extractor.Capture, masked []mask.Range, dicts []dictionary.Dictionary, in dictionary.CheckInput) ([]hit, error) {
	n := len(captures)
	workers := workerCount(n)

	if workers <= 1 {
		return o.scanRange(ctx, source, captures, masked, dicts, in)
	}

	parts := make([][]hit, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * n / workers
		end := (w + 1) * n / workers
		wg.Add(1)
		go func(slot, start, end int) {
			defer wg.Done()
			parts[slot], errs[slot] = o.scanRange(ctx, source, captures[start:end], masked, dicts, in)
		}(w, start, end)
	}
	wg.Wait()

	for _, e := range errs {
		if e != nil {
			return nil, e
		}
	}

	var out []hit
	for _, p := range parts {
		out = append(out, p...)
	}
	return out, nil
}

func (o *Orchestrator) scanRange(ctx context.Context, source []byte, captures []extractor.Capture, masked []mask.Range, dicts []dictionary.Dictionary, in dictionary.CheckInput) ([]hit, error) {
	var out []hit
	for _, c := range captures {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}

		text := string(source[c.Start:c.End])
		words := splitter.Tokens(text)

		for _, w := range words {
			select {
			case <-ctx.Done():
				return out, ctx.Err()
			default:
			}

			start := c.Start + w.StartByte
			end := c.Start + w.EndByte
			if mask.Contains(masked, start, end) {
				continue
			}

			if o.engine.Check(w.Text, dicts, in) {
				continue
			}
			out = append(out, hit{text: w.Text, start: start, end: end})
		}
	}
	return out, nil
}

func workerCount(n int) int {
	if n < parallelThreshold {
		return 1
	}
	workers := runtime.GOMAXPROCS(0)
	if workers < 2 {
		return 1
	}
	maxUseful := n / minChunkSize
	if maxUseful < 2 {
		return 1
	}
	if workers > maxUseful {
		workers = maxUseful
	}
	if workers < 2 {
		return 1
	}
	return workers
}

// group collapses hits into WordLocations keyed by lowercase word text,
// de-duplicating ranges and sorting for deterministic output (spec.md §4.F
// step 6 and §8's "identical under any permutation of input order").
func group(hits []hit) []WordLocation {
	if len(hits) == 0 {
		return nil
	}

	type bucket struct {
		display string
		ranges  map[TextRange]struct{}
	}
	buckets := make(map[string]*bucket)
	var order []string

	for _, h := range hits {
		key := strings.ToLower(h.text)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{display: h.text, ranges: make(map[TextRange]struct{})}
			buckets[key] = b
			order = append(order, key)
		}
		b.ranges[TextRange{Start: h.start, End: h.end}] = struct{}{}
	}

	sort.Strings(order)

	out := make([]WordLocation, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		ranges := make([]TextRange, 0, len(b.ranges))
		for r := range b.ranges {
			ranges = append(ranges, r)
		}
		sort.Slice(ranges, func(i, j int) bool {
			if ranges[i].Start != ranges[j].Start {
				return ranges[i].Start < ranges[j].Start
			}
			return ranges[i].End < ranges[j].End
		})
		out = append(out, WordLocation{Word: b.display, Locations: ranges})
	}
	return out
}

func toSet(words []string) map[string]struct{} {
	if len(words) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[strings.ToLower(w)] = struct{}{}
	}
	return out
}
