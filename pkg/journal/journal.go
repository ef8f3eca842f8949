// Package journal keeps backups of files before they are rewritten so that
// a run can be undone without going back to source control. The journal is
// a single msgpack file holding one entry per path: the content from before
// the first rewrite since the last restore.
package journal

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrNoEntry is returned when the journal holds no backup for a path.
var ErrNoEntry = errors.New("no journal entry")

// DefaultLimit caps the number of entries kept.
const DefaultLimit = 100

// Entry is the backup of one file.
type Entry struct {
	Path      string    `msgpack:"path"`
	Tool      string    `msgpack:"tool"`
	SHA256    string    `msgpack:"sha256"`
	Mode      uint32    `msgpack:"mode"`
	Content   []byte    `msgpack:"content"`
	CreatedAt time.Time `msgpack:"created_at"`
}

// journalData is the on-disk structure.
type journalData struct {
	Version int     `msgpack:"version"`
	Entries []Entry `msgpack:"entries"`
}

const journalVersion = 1

// Journal is a backup store backed by one file.
type Journal struct {
	mu      sync.Mutex
	path    string
	limit   int
	entries map[string]Entry
	now     func() time.Time
}

// Option configures a Journal.
type Option func(*Journal)

// WithLimit sets the maximum number of entries kept.
func WithLimit(n int) Option {
	return func(j *Journal) {
		if n > 0 {
			j.limit = n
		}
	}
}

// Open loads the journal at path. A missing file yields an empty journal.
func Open(path string, opts ...Option) (*Journal, error) {
	j := &Journal{
		path:    path,
		limit:   DefaultLimit,
		entries: make(map[string]Entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return j, nil
		}
		return nil, fmt.Errorf("reading journal %s: %w", path, err)
	}

	var jd journalData
	if err := msgpack.Unmarshal(data, &jd); err != nil {
		return nil, fmt.Errorf("failed to decode journal %s: %w", path, err)
	}
	if jd.Version != journalVersion {
		return nil, fmt.Errorf("unsupported journal version %d in %s", jd.Version, path)
	}
	for _, e := range jd.Entries {
		j.entries[e.Path] = e
	}
	return j, nil
}

// Record stores content as the backup of path. An existing entry is kept,
// so a restore undoes every rewrite recorded since the last one; the
// returned bool reports whether content was stored.
func (j *Journal) Record(path, tool string, content []byte, mode os.FileMode) (bool, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("failed to get absolute path: %w", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if _, ok := j.entries[absPath]; ok {
		return false, nil
	}

	sum := sha256.Sum256(content)
	j.entries[absPath] = Entry{
		Path:      absPath,
		Tool:      tool,
		SHA256:    hex.EncodeToString(sum[:]),
		Mode:      uint32(mode.Perm()),
		Content:   append([]byte(nil), content...),
		CreatedAt: j.now(),
	}
	j.evict()
	return true, nil
}

// Get returns the entry for path.
func (j *Journal) Get(path string) (Entry, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to get absolute path: %w", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	e, ok := j.entries[absPath]
	if !ok {
		return Entry{}, fmt.Errorf("%w for %s", ErrNoEntry, absPath)
	}
	return e, nil
}

// Restore writes the backup of path back to disk and drops the entry.
// Call Save afterwards to persist the removal.
func (j *Journal) Restore(path string) (Entry, error) {
	e, err := j.Get(path)
	if err != nil {
		return Entry{}, err
	}

	mode := os.FileMode(e.Mode)
	if mode == 0 {
		mode = 0644
	}
	if err := os.WriteFile(e.Path, e.Content, mode); err != nil {
		return Entry{}, fmt.Errorf("restoring %s: %w", e.Path, err)
	}

	j.mu.Lock()
	delete(j.entries, e.Path)
	j.mu.Unlock()
	return e, nil
}

// Entries returns all entries, newest first.
func (j *Journal) Entries() []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.sorted()
}

// Len returns the number of entries.
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.entries)
}

// Save persists the journal, creating parent directories as needed.
func (j *Journal) Save() error {
	j.mu.Lock()
	jd := journalData{Version: journalVersion, Entries: j.sorted()}
	j.mu.Unlock()

	data, err := msgpack.Marshal(&jd)
	if err != nil {
		return fmt.Errorf("failed to encode journal: %w", err)
	}

	dir := filepath.Dir(j.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	if err := os.WriteFile(j.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write journal %s: %w", j.path, err)
	}
	return nil
}

// sorted returns entries newest first; callers hold mu.
func (j *Journal) sorted() []Entry {
	out := make([]Entry, 0, len(j.entries))
	for _, e := range j.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].CreatedAt.Equal(out[b].CreatedAt) {
			return out[a].Path < out[b].Path
		}
		return out[a].CreatedAt.After(out[b].CreatedAt)
	})
	return out
}

// evict drops the oldest entries beyond the limit; callers hold mu.
func (j *Journal) evict() {
	if len(j.entries) <= j.limit {
		return
	}
	for _, e := range j.sorted()[j.limit:] {
		delete(j.entries, e.Path)
	}
}
