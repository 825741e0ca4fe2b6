package cache

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"asset-explorer/internal/logging"
)

// Defaults for snapshot pruning.
const (
	DefaultMaxBytes   = 2 << 30 // 2 GiB
	DefaultMaxEntries = 32
	DefaultMaxAge     = 90 * 24 * time.Hour
)

// Options tunes a Store.
type Options struct {
	// MaxBytes caps the total snapshot size; <= 0 uses DefaultMaxBytes.
	MaxBytes int64
	// MaxEntries caps the number of snapshots; <= 0 uses DefaultMaxEntries.
	MaxEntries int
	// MaxAge expires snapshots not used within the window; <= 0 uses
	// DefaultMaxAge.
	MaxAge time.Duration
}

// Store reads and writes scan snapshots below a cache root directory.
// Methods are not safe for concurrent use; the scan manager serializes
// access.
type Store struct {
	root       string
	maxBytes   int64
	maxEntries int
	maxAge     time.Duration
}

type manifest struct {
	SchemaVersion int                      `json:"schemaVersion"`
	Entries       map[string]manifestEntry `json:"entries"`
}

type manifestEntry struct {
	FileName       string `json:"fileName"`
	SizeBytes      int64  `json:"sizeBytes"`
	LastAccessedAt int64  `json:"lastAccessedAt"`
}

// NewStore creates a snapshot store rooted at dir, creating it if needed.
func NewStore(dir string, opts Options) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", dir, err)
	}

	store := &Store{
		root:       dir,
		maxBytes:   opts.MaxBytes,
		maxEntries: opts.MaxEntries,
		maxAge:     opts.MaxAge,
	}
	if store.maxBytes <= 0 {
		store.maxBytes = DefaultMaxBytes
	}
	if store.maxEntries <= 0 {
		store.maxEntries = DefaultMaxEntries
	}
	if store.maxAge <= 0 {
		store.maxAge = DefaultMaxAge
	}
	return store, nil
}

// Root returns the cache root directory.
func (s *Store) Root() string {
	return s.root
}

// Load returns the snapshot for a profile key, or nil when no usable
// snapshot exists. Unreadable, unparsable or stale-schema snapshots are
// evicted rather than surfaced as errors.
func (s *Store) Load(profileKey string) (*Snapshot, error) {
	m, err := s.loadManifest()
	if err != nil {
		return nil, err
	}

	path := s.snapshotPath(profileKey)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warn("Evicting unreadable snapshot %s: %v", path, err)
		}
		s.evict(m, profileKey)
		return nil, s.saveManifest(m)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil || snapshot.SchemaVersion != SchemaVersion {
		logging.Warn("Evicting stale snapshot for profile %q", profileKey)
		s.evict(m, profileKey)
		return nil, s.saveManifest(m)
	}

	now := time.Now().UnixMilli()
	entry := m.Entries[profileKey]
	entry.FileName = snapshotFileName(profileKey)
	entry.LastAccessedAt = now
	if entry.SizeBytes == 0 {
		entry.SizeBytes = int64(len(data))
	}
	m.Entries[profileKey] = entry

	if err := s.saveManifest(m); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// Save persists a snapshot, updates the manifest and prunes the store to
// its budgets.
func (s *Store) Save(snapshot *Snapshot) error {
	path := s.snapshotPath(snapshot.ProfileKey)
	if err := writeJSONAtomic(path, snapshot); err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat snapshot %s: %w", path, err)
	}

	m, err := s.loadManifest()
	if err != nil {
		return err
	}
	m.Entries[snapshot.ProfileKey] = manifestEntry{
		FileName:       snapshotFileName(snapshot.ProfileKey),
		SizeBytes:      info.Size(),
		LastAccessedAt: time.Now().UnixMilli(),
	}

	s.prune(m)
	return s.saveManifest(m)
}

// prune applies the age, entry-count and byte budgets, evicting least
// recently used snapshots first.
func (s *Store) prune(m *manifest) {
	now := time.Now().UnixMilli()
	cutoff := now - s.maxAge.Milliseconds()
	for profileKey, entry := range m.Entries {
		if entry.LastAccessedAt < cutoff {
			s.evict(m, profileKey)
		}
	}

	type aged struct {
		profileKey     string
		lastAccessedAt int64
	}
	order := make([]aged, 0, len(m.Entries))
	var totalBytes int64
	for profileKey, entry := range m.Entries {
		order = append(order, aged{profileKey, entry.LastAccessedAt})
		totalBytes += entry.SizeBytes
	}
	sort.Slice(order, func(i, j int) bool {
		return order[i].lastAccessedAt < order[j].lastAccessedAt
	})

	for _, victim := range order {
		if len(m.Entries) <= s.maxEntries && totalBytes <= s.maxBytes {
			return
		}
		totalBytes -= m.Entries[victim.profileKey].SizeBytes
		s.evict(m, victim.profileKey)
	}
}

func (s *Store) evict(m *manifest, profileKey string) {
	if entry, ok := m.Entries[profileKey]; ok {
		_ = os.Remove(filepath.Join(s.root, entry.FileName))
		delete(m.Entries, profileKey)
		return
	}
	_ = os.Remove(s.snapshotPath(profileKey))
}

func (s *Store) loadManifest() (*manifest, error) {
	m := &manifest{SchemaVersion: SchemaVersion, Entries: map[string]manifestEntry{}}

	data, err := os.ReadFile(s.manifestPath())
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, fmt.Errorf("failed to read cache manifest: %w", err)
	}

	var parsed manifest
	if err := json.Unmarshal(data, &parsed); err != nil || parsed.SchemaVersion != SchemaVersion {
		return m, nil
	}
	if parsed.Entries == nil {
		parsed.Entries = map[string]manifestEntry{}
	}
	return &parsed, nil
}

func (s *Store) saveManifest(m *manifest) error {
	return writeJSONAtomic(s.manifestPath(), m)
}

func (s *Store) manifestPath() string {
	return filepath.Join(s.root, "manifest.json")
}

func (s *Store) snapshotPath(profileKey string) string {
	return filepath.Join(s.root, snapshotFileName(profileKey))
}

func snapshotFileName(profileKey string) string {
	h := fnv.New64a()
	h.Write([]byte(profileKey))
	return fmt.Sprintf("%016x.json", h.Sum64())
}

func writeJSONAtomic(path string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", path, err)
	}

	tempPath := path + ".tmp-" + uuid.NewString()
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tempPath, err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
