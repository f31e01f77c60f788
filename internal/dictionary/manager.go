package dictionary

import (
	"fmt"
	"os"
	"sync"

	"codebooklsp/internal/cache"
)

// CustomDictEntry names a user-configured custom dictionary, resolved
// before falling back to the built-in repo lookup (ported from
// codebook-config's CustomDictionariesEntry).
type CustomDictEntry struct {
	Name string
	Path string
}

// RepoEntry is a known dictionary's download locations, analogous to the
// original's DictionaryRepo enum (Hunspell variant only; word-list variants
// are represented by a non-empty Builtin list, with no URLs).
type RepoEntry struct {
	ID      string
	AffURL  string
	DicURL  string
	Builtin []string // used instead of download when non-empty
}

// Logger is the logging surface the manager needs; *logging.Logger
// satisfies it.
type Logger interface {
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}

// Manager caches loaded Dictionary instances by id, lazily resolving and
// downloading them, grounded on
// original_source/crates/codebook/src/dictionaries/manager.rs.
type Manager struct {
	mu         sync.RWMutex
	cache      map[string]Dictionary
	downloader *cache.Downloader
	repos      map[string]RepoEntry
	log        Logger
}

// NewManager builds a Manager backed by a downloader cache directory and a
// static table of known dictionary repos.
func NewManager(cacheDir string, repos map[string]RepoEntry, log Logger) (*Manager, error) {
	dl, err := cache.NewDownloader(cacheDir)
	if err != nil {
		return nil, fmt.Errorf("dictionary manager: %w", err)
	}
	return &Manager{
		cache:      make(map[string]Dictionary),
		downloader: dl,
		repos:      repos,
		log:        log,
	}, nil
}

// InvalidateCacheEntry evicts a single dictionary, forcing reload on next
// Get, matching manager.rs's invalidate_cache_entry.
func (m *Manager) InvalidateCacheEntry(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cache, id)
}

// Get resolves a dictionary by id, consulting custom definitions before the
// built-in repo table, and caches the result.
func (m *Manager) Get(id string, custom []CustomDictEntry) (Dictionary, bool) {
	m.mu.RLock()
	if d, ok := m.cache[id]; ok {
		m.mu.RUnlock()
		return d, true
	}
	m.mu.RUnlock()

	for _, c := range custom {
		if c.Name != id {
			continue
		}
		d, err := m.loadTextFile(id, c.Path)
		if err != nil {
			if m.log != nil {
				m.log.Errorf("loading custom dictionary %q: %v", id, err)
			}
			return nil, false
		}
		m.store(id, d)
		return d, true
	}

	repo, ok := m.repos[id]
	if !ok {
		if m.log != nil {
			m.log.Debugf("no repo for dictionary %q, skipping", id)
		}
		return nil, false
	}

	var d Dictionary
	var err error
	if len(repo.Builtin) > 0 {
		d, err = NewTextDictionary(id, repo.Builtin)
	} else {
		d, err = m.loadHunspell(repo)
	}
	if err != nil {
		if m.log != nil {
			m.log.Errorf("loading dictionary %q: %v", id, err)
		}
		return nil, false
	}
	m.store(id, d)
	return d, true
}

func (m *Manager) store(id string, d Dictionary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache[id] = d
}

func (m *Manager) loadHunspell(repo RepoEntry) (Dictionary, error) {
	affPath, err := m.downloader.Get(repo.AffURL)
	if err != nil {
		return nil, fmt.Errorf("fetching aff for %s: %w", repo.ID, err)
	}
	dicPath, err := m.downloader.Get(repo.DicURL)
	if err != nil {
		return nil, fmt.Errorf("fetching dic for %s: %w", repo.ID, err)
	}
	affF, err := os.Open(affPath)
	if err != nil {
		return nil, err
	}
	defer affF.Close()
	dicF, err := os.Open(dicPath)
	if err != nil {
		return nil, err
	}
	defer dicF.Close()
	return NewHunspellDictionary(repo.ID, affF, dicF)
}

func (m *Manager) loadTextFile(id, path string) (Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return NewTextDictionaryFromReader(id, f)
}
