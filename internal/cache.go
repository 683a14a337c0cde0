package internal

import (
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	tt "github.com/gnoswap-labs/rxparse/internal/types"
)

const cacheFileName = "parse_cache.gob"

func init() {
	// production values travel through interface fields
	gob.Register(map[string]any{})
	gob.Register([]any{})
}

// stamp identifies one version of a file.
type stamp struct {
	Digest  string
	Size    int64
	ModTime time.Time
}

func (s stamp) same(o stamp) bool {
	return s.Digest == o.Digest && s.Size == o.Size && s.ModTime.Equal(o.ModTime)
}

type CacheEntry struct {
	Input stamp
	// Grammar is the digest of the dependency files when the entry was set.
	Grammar  string
	Result   tt.Result
	StoredAt time.Time
}

// Cache keeps parse results on disk, keyed by input path. An entry is stale
// when the input changed, when it is older than the max age, or when a
// dependency file (the grammar) changed.
type Cache struct {
	CacheDir string

	mu      sync.RWMutex
	entries map[string]CacheEntry
	maxAge  time.Duration
	deps    []string
}

func NewCache(cacheDir string, dependencies ...string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating cache directory: %w", err)
	}

	c := &Cache{
		CacheDir: cacheDir,
		entries:  make(map[string]CacheEntry),
		deps:     dependencies,
	}
	if err := c.load(); err != nil {
		return nil, fmt.Errorf("error loading cache: %w", err)
	}
	return c, nil
}

func (c *Cache) path() string { return filepath.Join(c.CacheDir, cacheFileName) }

func (c *Cache) load() error {
	f, err := os.Open(c.path())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	return gob.NewDecoder(f).Decode(&c.entries)
}

// persist writes the entries to a temporary file renamed over the cache
// file, so that readers never see a partial file.
func (c *Cache) persist() error {
	tmp, err := os.CreateTemp(c.CacheDir, cacheFileName+".*")
	if err != nil {
		return fmt.Errorf("error writing cache: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(c.entries); err != nil {
		tmp.Close()
		return fmt.Errorf("error encoding cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error writing cache: %w", err)
	}
	return os.Rename(tmp.Name(), c.path())
}

// Set stores the result of parsing the input file at path.
func (c *Cache) Set(path string, result *tt.Result) error {
	st, err := stampFile(path)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[path] = CacheEntry{
		Input:    st,
		Grammar:  c.grammarDigest(),
		Result:   *result,
		StoredAt: time.Now(),
	}
	return c.persist()
}

// Get returns the stored result for path when it is still valid. Stale
// entries are dropped.
func (c *Cache) Get(path string) (*tt.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[path]
	if !ok {
		return nil, false
	}
	if c.stale(path, entry) {
		delete(c.entries, path)
		return nil, false
	}

	res := entry.Result
	return &res, true
}

func (c *Cache) stale(path string, entry CacheEntry) bool {
	if c.maxAge > 0 && time.Since(entry.StoredAt) > c.maxAge {
		return true
	}
	st, err := stampFile(path)
	if err != nil || !st.same(entry.Input) {
		return true
	}
	return entry.Grammar != c.grammarDigest()
}

// grammarDigest combines the digests of the dependency files. A missing
// file contributes its name only, so that its reappearance is a change.
func (c *Cache) grammarDigest() string {
	h := sha256.New()
	for _, dep := range c.deps {
		io.WriteString(h, dep)
		if st, err := stampFile(dep); err == nil {
			io.WriteString(h, st.Digest)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// SetMaxAge sets the age after which entries are stale. Zero keeps entries
// until their input or a dependency changes.
func (c *Cache) SetMaxAge(d time.Duration) {
	c.mu.Lock()
	c.maxAge = d
	c.mu.Unlock()
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// InvalidateAll drops every entry, on disk too.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]CacheEntry)
	_ = c.persist() // best effort, memory is authoritative
}

func stampFile(path string) (stamp, error) {
	f, err := os.Open(path)
	if err != nil {
		return stamp{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return stamp{}, err
	}
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return stamp{}, fmt.Errorf("error hashing %s: %w", path, err)
	}
	return stamp{
		Digest:  hex.EncodeToString(h.Sum(nil)),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}
