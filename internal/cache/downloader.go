// Package cache implements the persisted dictionary downloader cache
// (spec.md §6 "Persisted state"): a JSON manifest mapping dictionary URL to
// local path, validated on read and write-through persisted, adapted from
// the teacher's own disk-cache precedent (index_cache.go's
// temp-file-then-rename pattern, swapped from gob to JSON for a
// human-inspectable manifest).
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
)

const manifestVersion = 1

type manifestEntry struct {
	URL       string `json:"url"`
	LocalPath string `json:"local_path"`
}

type manifest struct {
	Version int              `json:"version"`
	Entries []manifestEntry `json:"entries"`
}

// Downloader resolves a URL to a cached local file, downloading on first
// use and persisting the URL->path mapping in a JSON manifest.
type Downloader struct {
	mu      sync.Mutex
	dir     string
	entries map[string]string
	client  *http.Client
}

// NewDownloader opens (or initializes) a manifest rooted at dir.
func NewDownloader(dir string) (*Downloader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	d := &Downloader{
		dir:     dir,
		entries: make(map[string]string),
		client:  http.DefaultClient,
	}
	if err := d.load(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Downloader) manifestPath() string {
	return filepath.Join(d.dir, "manifest.json")
}

func (d *Downloader) load() error {
	f, err := os.Open(d.manifestPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	var m manifest
	if err := json.NewDecoder(f).Decode(&m); err != nil {
		// corrupt manifest: start fresh rather than failing startup
		return nil
	}
	if m.Version != manifestVersion {
		return nil
	}
	for _, e := range m.Entries {
		if _, err := os.Stat(e.LocalPath); err == nil {
			d.entries[e.URL] = e.LocalPath
		}
	}
	return nil
}

func (d *Downloader) persist() error {
	m := manifest{Version: manifestVersion}
	for url, path := range d.entries {
		m.Entries = append(m.Entries, manifestEntry{URL: url, LocalPath: path})
	}

	tmpPath := d.manifestPath() + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&m); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, d.manifestPath())
}

// Get returns the local path for url, downloading and caching it if absent.
func (d *Downloader) Get(url string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if path, ok := d.entries[url]; ok {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		delete(d.entries, url)
	}

	path, err := d.download(url)
	if err != nil {
		return "", err
	}
	d.entries[url] = path
	if err := d.persist(); err != nil {
		return "", fmt.Errorf("persisting cache manifest: %w", err)
	}
	return path, nil
}

func (d *Downloader) download(url string) (string, error) {
	resp, err := d.client.Get(url)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("downloading %s: status %d", url, resp.StatusCode)
	}

	sum := sha256.Sum256([]byte(url))
	name := hex.EncodeToString(sum[:]) + filepath.Ext(url)
	localPath := filepath.Join(d.dir, name)

	tmpPath := localPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", err
	}
	if err := os.Rename(tmpPath, localPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", err
	}
	return localPath, nil
}

// Clean removes the entire cache directory contents, matching the `clean`
// CLI subcommand's contract (spec.md §6).
func Clean(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
