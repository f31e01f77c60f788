package config

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Logger is the minimal logging surface the watcher needs.
type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
}

// Watcher layers fsnotify-based eager invalidation over a Loader's
// poll-based WatchedFile fallback (spec.md §6: config files are watched;
// SPEC_FULL.md §E3 supplements this with fsnotify so edits are picked
// up without waiting on the next didSave/poll). The mtime/size check in
// WatchedFile remains the source of truth; fsnotify only prompts an early
// recheck.
type Watcher struct {
	loader   *Loader
	fsw      *fsnotify.Watcher
	log      Logger
	onChange func(*EffectiveConfig)
}

// NewWatcher creates an fsnotify-backed watcher for loader's config files.
// If fsnotify's inotify/kqueue backend is unavailable it returns the error
// and no watcher; no polling is started in its place.
func NewWatcher(loader *Loader, log Logger, onChange func(*EffectiveConfig)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{loader: loader, fsw: fsw, log: log, onChange: onChange}
	w.watchKnownPaths()
	return w, nil
}

// watchKnownPaths adds the parent directories of the global and project
// config paths. fsnotify watches directories rather than files so it keeps
// working across editor save-as-rename patterns.
func (w *Watcher) watchKnownPaths() {
	dirs := map[string]struct{}{}
	if p := w.loader.global.Path(); p != "" {
		dirs[filepath.Dir(p)] = struct{}{}
	}
	if p := w.loader.project.Path(); p != "" {
		dirs[filepath.Dir(p)] = struct{}{}
	}
	for dir := range dirs {
		if err := w.fsw.Add(dir); err != nil && w.log != nil {
			w.log.Warnf("config watcher: cannot watch %s: %v", dir, err)
		}
	}
}

// Rewatch refreshes the watched directory set, used after SetProjectDir
// changes which file is being tracked.
func (w *Watcher) Rewatch() {
	for _, dir := range w.fsw.WatchList() {
		_ = w.fsw.Remove(dir)
	}
	w.watchKnownPaths()
}

// Run processes fsnotify events until the watcher is closed, reloading and
// invoking onChange whenever the effective configuration actually changes.
// Intended to run in its own goroutine.
func (w *Watcher) Run(store *Store, inv Invalidator) {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !w.relevant(event.Name) {
				continue
			}
			settings, changed, err := w.loader.Reload()
			if err != nil && w.log != nil {
				w.log.Warnf("config reload: %v", err)
			}
			if !changed {
				continue
			}
			next := &EffectiveConfig{Merged: settings}
			if store.SwapIfChanged(next, inv) && w.onChange != nil {
				w.onChange(next)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if w.log != nil {
				w.log.Warnf("config watcher error: %v", err)
			}
		}
	}
}

func (w *Watcher) relevant(name string) bool {
	base := filepath.Base(name)
	return base == projectFileName || base == projectFileNameAlt || base == filepath.Base(w.loader.global.Path())
}

// Close stops the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
