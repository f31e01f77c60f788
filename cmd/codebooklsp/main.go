// Command codebooklsp is the code-aware spell checker: it serves the
// Language Server over stdio, lints files in batch from a terminal, and
// manages the on-disk dictionary cache, grounded on
// original_source/crates/codebook-lsp/src/main.rs's Cli/Commands shape.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"codebooklsp/internal/cache"
	"codebooklsp/internal/config"
	"codebooklsp/internal/dictionary"
	"codebooklsp/internal/extractor"
	"codebooklsp/internal/lang"
	"codebooklsp/internal/logging"
	"codebooklsp/internal/lsp"
	"codebooklsp/internal/pipeline"
)

func main() {
	root := "."
	cmd := newRootCommand(&root)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(root *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "codebooklsp",
		Short:         "A code-aware spell checker and Language Server",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVarP(root, "root", "r", ".", "root of the workspace/project being checked")

	cmd.AddCommand(newServeCommand(root), newCleanCommand(), newLintCommand(root))
	return cmd
}

func newServeCommand(root *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the Language Server over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(*root)
		},
	}
}

func newCleanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove the dictionary cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := config.DefaultCacheDir()
			fmt.Fprintf(os.Stderr, "cleaning: %s\n", dir)
			return cache.Clean(dir)
		},
	}
}

func newLintCommand(root *string) *cobra.Command {
	var unique bool
	cmd := &cobra.Command{
		Use:   "lint [files...]",
		Short: "Check files for spelling errors",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hadErrors, err := runLint(*root, args, unique)
			if err != nil {
				return err
			}
			if hadErrors {
				os.Exit(1)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&unique, "unique", "u", false, "only report each misspelled word once across all files")
	return cmd
}

func runServe(root string) error {
	log := logging.NewFromEnv()

	loader := config.NewLoader(config.DefaultGlobalConfigPath())
	loader.SetProjectDir(root)

	store := config.NewStore()
	settings, err := loader.Load()
	if err != nil {
		log.Warnf("loading config: %v", err)
		settings = config.Default()
	}
	store.Swap(&config.EffectiveConfig{Merged: settings})

	manager, err := dictionary.NewManager(config.DefaultCacheDir(), dictionary.DefaultRepos(), log)
	if err != nil {
		return fmt.Errorf("building dictionary manager: %w", err)
	}
	engine := dictionary.NewEngine(1024)

	watcher, err := config.NewWatcher(loader, log, func(next *config.EffectiveConfig) {
		log.Infof("configuration reloaded")
	})
	if err != nil {
		log.Warnf("starting config watcher: %v", err)
	} else {
		defer watcher.Close()
		go watcher.Run(store, engine)
	}

	orch := pipeline.New(extractor.New(4), engine)
	provider := &managerDictionaryProvider{manager: manager}

	transport := lsp.NewTransport(os.Stdin, os.Stdout)
	server := lsp.NewServer(transport, orch, provider, store, loader, log)

	log.Infof("starting codebooklsp")
	return server.Serve()
}

// managerDictionaryProvider adapts dictionary.Manager's by-id lookup to the
// LSP Adapter's DictionaryProvider contract.
type managerDictionaryProvider struct {
	manager *dictionary.Manager
}

func (p *managerDictionaryProvider) Resolve(ids []string) []dictionary.Dictionary {
	out := make([]dictionary.Dictionary, 0, len(ids))
	for _, id := range ids {
		if d, ok := p.manager.Get(id, nil); ok {
			out = append(out, d)
		}
	}
	return out
}

func runLint(root string, patterns []string, unique bool) (bool, error) {
	loader := config.NewLoader(config.DefaultGlobalConfigPath())
	loader.SetProjectDir(root)
	settings, err := loader.Load()
	if err != nil {
		return false, fmt.Errorf("loading config: %w", err)
	}
	printConfigSource(loader)

	manager, err := dictionary.NewManager(config.DefaultCacheDir(), dictionary.DefaultRepos(), logging.NewFromEnv())
	if err != nil {
		return false, fmt.Errorf("building dictionary manager: %w", err)
	}
	orch := pipeline.New(extractor.New(1), dictionary.NewEngine(256))

	files := resolvePaths(patterns)
	if len(files) == 0 {
		return false, fmt.Errorf("no files matched the given patterns")
	}

	out := stdStyles(isatty.IsTerminal(os.Stdout.Fd()))

	seenWords := make(map[string]struct{})
	totalErrors := 0
	filesWithErrors := 0

	for _, path := range files {
		resolved := settings.ResolveForPath(path)
		if resolved.ShouldIgnorePath(path) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %s: %v\n", path, err)
			continue
		}

		dicts := lintDictionaries(manager, resolved)
		locations, err := orch.Check(context.Background(), pipeline.Request{
			Source:       data,
			Path:         path,
			LanguageID:   lang.Detect(path),
			Settings:     resolved,
			Dictionaries: dicts,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %s: %v\n", path, err)
			continue
		}
		sort.Slice(locations, func(i, j int) bool {
			return firstStart(locations[i]) < firstStart(locations[j])
		})

		type hit struct {
			line, col int
			word      string
		}
		var hits []hit
		for _, wl := range locations {
			for _, r := range wl.Locations {
				if unique {
					key := strings.ToLower(wl.Word)
					if _, dup := seenWords[key]; dup {
						continue
					}
					seenWords[key] = struct{}{}
				}
				line, col := byteOffsetToLineCol(string(data), r.Start)
				hits = append(hits, hit{line: line, col: col, word: wl.Word})
			}
		}
		if len(hits) == 0 {
			continue
		}

		display := strings.TrimPrefix(path, "./")
		padLen := 0
		for _, h := range hits {
			if n := len(fmt.Sprintf("%d:%d", h.line, h.col)); n > padLen {
				padLen = n
			}
		}

		fmt.Printf("%s%s%s\n", out.bold, display, out.reset)
		for _, h := range hits {
			loc := fmt.Sprintf("%d:%d", h.line, h.col)
			fmt.Printf("  %s%s%s:%s%s%s%s  %s%s%s\n",
				out.dim, display, out.reset,
				out.yellow, loc, out.reset,
				strings.Repeat(" ", padLen-len(loc)),
				out.boldRed, h.word, out.reset)
		}
		fmt.Println()

		totalErrors += len(hits)
		filesWithErrors++
	}

	if totalErrors > 0 {
		uniqueLabel := ""
		if unique {
			uniqueLabel = "unique "
		}
		fmt.Fprintf(os.Stderr, "Found %s%d%s %sspelling error(s) in %s%d%s file(s).\n",
			out.bold, totalErrors, out.reset, uniqueLabel, out.bold, filesWithErrors, out.reset)
	}
	return totalErrors > 0, nil
}

func lintDictionaries(manager *dictionary.Manager, settings config.Settings) []dictionary.Dictionary {
	var dicts []dictionary.Dictionary
	for _, id := range settings.DictionaryIDs() {
		if d, ok := manager.Get(id, nil); ok {
			dicts = append(dicts, d)
		}
	}
	return dicts
}

func firstStart(wl pipeline.WordLocation) int {
	if len(wl.Locations) == 0 {
		return 0
	}
	return wl.Locations[0].Start
}

func byteOffsetToLineCol(text string, offset int) (int, int) {
	if offset > len(text) {
		offset = len(text)
	}
	before := text[:offset]
	line := strings.Count(before, "\n") + 1
	col := offset + 1
	if idx := strings.LastIndexByte(before, '\n'); idx >= 0 {
		col = offset - idx
	}
	return line, col
}

func printConfigSource(loader *config.Loader) {
	fmt.Fprintf(os.Stderr, "using config via %s\n", loader.Describe())
}

func resolvePaths(patterns []string) []string {
	var paths []string
	for _, pattern := range patterns {
		info, err := os.Stat(pattern)
		if err == nil && info.IsDir() {
			collectDir(pattern, &paths)
			continue
		}

		matches, err := filepath.Glob(pattern)
		if err != nil {
			fmt.Fprintf(os.Stderr, "codebooklsp: invalid pattern %q: %v\n", pattern, err)
			continue
		}
		if len(matches) == 0 {
			fmt.Fprintf(os.Stderr, "codebooklsp: no match for %q\n", pattern)
			continue
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil {
				continue
			}
			if info.IsDir() {
				collectDir(m, &paths)
			} else {
				paths = append(paths, m)
			}
		}
	}
	sort.Strings(paths)
	return dedup(paths)
}

func collectDir(dir string, out *[]string) {
	filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		*out = append(*out, path)
		return nil
	})
}

func dedup(paths []string) []string {
	out := paths[:0]
	var prev string
	for i, p := range paths {
		if i > 0 && p == prev {
			continue
		}
		out = append(out, p)
		prev = p
	}
	return out
}

type styles struct {
	bold, dim, yellow, boldRed, reset string
}

func stdStyles(isTerminal bool) styles {
	if isTerminal && os.Getenv("NO_COLOR") == "" {
		return styles{bold: "\x1b[1m", dim: "\x1b[2m", yellow: "\x1b[33m", boldRed: "\x1b[1;31m", reset: "\x1b[0m"}
	}
	return styles{}
}
