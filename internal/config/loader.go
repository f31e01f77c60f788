package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	projectFileName    = "codebook.toml"
	projectFileNameAlt = ".codebook.toml"
)

// ParseTOML decodes TOML bytes into Settings, normalizing the result.
// ConfigParse errors are the caller's responsibility to log and recover
// from (spec.md §7).
func ParseTOML(data []byte) (Settings, error) {
	s := Default()
	if err := toml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parsing config: %w", err)
	}
	s.Normalize()
	return s, nil
}

// SerializeTOML round-trips Settings back to TOML bytes (spec.md §8's
// config round-trip property).
func SerializeTOML(s Settings) ([]byte, error) {
	return toml.Marshal(s)
}

func loadFile(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, err
	}
	return ParseTOML(data)
}

// FindProjectConfig walks up from startDir looking for codebook.toml or
// .codebook.toml, matching spec.md §6's "nearest ancestor of the open
// file".
func FindProjectConfig(startDir string) string {
	dir := startDir
	for {
		for _, name := range []string{projectFileName, projectFileNameAlt} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// DefaultGlobalConfigPath resolves the platform-specific XDG/AppData global
// config location, ported from helpers.rs's default_cache_dir dispatch
// (applied here to the config file rather than the cache dir).
func DefaultGlobalConfigPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "codebook", "codebook.toml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "codebook", "codebook.toml")
}

// DefaultCacheDir resolves the dictionary download cache directory.
func DefaultCacheDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "codebook", "cache")
	}
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "codebook")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "codebook")
}

// ExpandTilde expands a leading "~" to the user's home directory, ported
// from helpers.rs's expand_tilde.
func ExpandTilde(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, strings.TrimPrefix(path, "~/"))
	}
	return path
}

// Loader owns the global and (per-directory) project WatchedFile[Settings]
// instances and produces merged Settings.
type Loader struct {
	global  *WatchedFile[Settings]
	project *WatchedFile[Settings]
}

// NewLoader builds a Loader. globalPath empty means "use the default
// location"; it can be overridden by the globalConfigPath init option
// (spec.md §4.H).
func NewLoader(globalPath string) *Loader {
	if globalPath == "" {
		globalPath = DefaultGlobalConfigPath()
	} else {
		globalPath = ExpandTilde(globalPath)
	}
	return &Loader{
		global:  NewWatchedFile[Settings](globalPath),
		project: NewWatchedFile[Settings](""),
	}
}

// SetProjectDir re-points the project config watcher at the nearest
// ancestor codebook.toml of dir.
func (l *Loader) SetProjectDir(dir string) {
	l.project.SetPath(FindProjectConfig(dir))
}

// Load returns the merged effective Settings, falling back to defaults on
// ConfigParse errors per spec.md §7 ("logged; falls back to defaults; LSP
// keeps running") -- logging is the caller's responsibility via the
// returned error.
func (l *Loader) Load() (Settings, error) {
	global, gerr := l.global.Load(loadFile)
	if gerr != nil {
		global = Default()
	}

	project, perr := l.project.Load(loadFile)
	if perr != nil {
		project = Default()
	}

	merged := project.Merge(global)

	var err error
	if gerr != nil && !os.IsNotExist(gerr) {
		err = fmt.Errorf("global config: %w", gerr)
	}
	if perr != nil && !os.IsNotExist(perr) && l.project.Path() != "" {
		if err != nil {
			err = fmt.Errorf("%w; project config: %v", err, perr)
		} else {
			err = fmt.Errorf("project config: %w", perr)
		}
	}
	return merged, err
}

// Reload re-checks both watched files and returns the merged settings plus
// whether anything actually changed.
func (l *Loader) Reload() (Settings, bool, error) {
	changedGlobal, _ := l.global.ReloadIfChanged(loadFile)
	changedProject, _ := l.project.ReloadIfChanged(loadFile)
	settings, err := l.Load()
	return settings, changedGlobal || changedProject, err
}

// UpdateProject mutates the current project settings via fn and persists
// them if fn reports a change, mirroring CodebookConfigFile::add_word's
// update-then-save shape (lib.rs's update_project_settings). When no
// project config file exists yet, the change is kept in the in-memory
// WatchedFile content only -- like the original's save() no-op when no
// project path is known -- so spell-checking in this session still honors
// it even though nothing is written to disk.
func (l *Loader) UpdateProject(fn func(*Settings) bool) (bool, error) {
	s := l.currentProject()
	if !fn(&s) {
		return false, nil
	}
	l.project.SetContent(s)
	if l.project.Path() == "" {
		return true, nil
	}
	return true, l.SaveProject(s)
}

// UpdateGlobal mutates the current global settings via fn and persists
// them if fn reports a change (lib.rs's update_global_settings).
func (l *Loader) UpdateGlobal(fn func(*Settings) bool) (bool, error) {
	s := l.currentGlobal()
	if !fn(&s) {
		return false, nil
	}
	l.global.SetContent(s)
	return true, l.SaveGlobal(s)
}

func (l *Loader) currentProject() Settings {
	if s, ok := l.project.Content(); ok {
		return s
	}
	if p := l.project.Path(); p != "" {
		if s, err := loadFile(p); err == nil {
			return s
		}
	}
	return Default()
}

func (l *Loader) currentGlobal() Settings {
	if s, ok := l.global.Content(); ok {
		return s
	}
	if p := l.global.Path(); p != "" {
		if s, err := loadFile(p); err == nil {
			return s
		}
	}
	return Default()
}

// Describe reports which config file(s) are in effect, for CLI
// diagnostics (lint.rs's print_config_source).
func (l *Loader) Describe() string {
	if p := l.project.Path(); p != "" {
		return p
	}
	if p := l.global.Path(); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p + " (global)"
		}
	}
	return "defaults"
}

// SaveGlobal persists settings to the global config path, creating parent
// directories as needed.
func (l *Loader) SaveGlobal(s Settings) error {
	return saveSettings(l.global.Path(), s)
}

// SaveProject persists settings to the project config path. Returns an
// error if no project config path is known.
func (l *Loader) SaveProject(s Settings) error {
	path := l.project.Path()
	if path == "" {
		return fmt.Errorf("no project config file known")
	}
	return saveSettings(path, s)
}

func saveSettings(path string, s Settings) error {
	if path == "" {
		return fmt.Errorf("no path to save to")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := SerializeTOML(s)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
