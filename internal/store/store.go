package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/cadence/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketScans = []byte("scans")
	bucketSaved = []byte("saved")

	allBuckets = [][]byte{bucketScans, bucketSaved}
)

const (
	keySavedTracks = "tracks"
	keySavedAlbums = "albums"
)

// LibraryStore implements domain.LibraryStore using BoltDB.
type LibraryStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte
}

var _ domain.LibraryStore = (*LibraryStore)(nil)

// NewLibraryStore opens the cache for a music directory. Each music directory
// gets its own database under baseCacheDir. An empty baseCacheDir keeps
// everything in memory.
func NewLibraryStore(baseCacheDir, musicDir string) (*LibraryStore, error) {
	if baseCacheDir == "" {
		// Memory-only mode (no persistence)
		return &LibraryStore{cache: make(map[string][]byte)}, nil
	}

	dir := baseCacheDir
	if musicDir != "" {
		dir = filepath.Join(baseCacheDir, hashDir(musicDir))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "cadence.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &LibraryStore{db: db, cache: make(map[string][]byte)}, nil
}

func hashDir(dir string) string {
	normalized := strings.TrimRight(filepath.Clean(dir), string(filepath.Separator))
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func (s *LibraryStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

func (s *LibraryStore) get(bucket []byte, key string, dest any) bool {
	cacheKey := string(bucket) + ":" + key

	// Check memory cache first
	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return json.Unmarshal(data, dest) == nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})

	if data == nil {
		return false
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return json.Unmarshal(data, dest) == nil
}

func (s *LibraryStore) set(bucket []byte, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cache[string(bucket)+":"+key] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), data)
	})
}

func (s *LibraryStore) deletePrefix(bucket []byte, prefix string) {
	s.mu.Lock()
	cachePrefix := string(bucket) + ":" + prefix
	for k := range s.cache {
		if strings.HasPrefix(k, cachePrefix) {
			delete(s.cache, k)
		}
	}
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		// Collect first; deleting while iterating skips keys
		var keys [][]byte
		c := b.Cursor()
		prefixBytes := []byte(prefix)
		for k, _ := c.Seek(prefixBytes); k != nil && strings.HasPrefix(string(k), prefix); k, _ = c.Next() {
			keys = append(keys, append([]byte(nil), k...))
		}
		for _, k := range keys {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// === Scan cache (key: cleaned absolute path) ===

func (s *LibraryStore) GetScanned(path string) (domain.ScannedTrack, bool) {
	var rec domain.ScannedTrack
	ok := s.get(bucketScans, filepath.Clean(path), &rec)
	return rec, ok
}

func (s *LibraryStore) SaveScanned(rec domain.ScannedTrack) error {
	return s.set(bucketScans, filepath.Clean(rec.Path), rec)
}

func (s *LibraryStore) IsValid(path string, modTime int64) bool {
	rec, ok := s.GetScanned(path)
	return ok && rec.ModTime == modTime
}

// InvalidateDir wipes scan records for every file under dir
func (s *LibraryStore) InvalidateDir(dir string) {
	prefix := filepath.Clean(dir) + string(filepath.Separator)
	s.deletePrefix(bucketScans, prefix)
}

func (s *LibraryStore) InvalidateAll() {
	s.mu.Lock()
	s.cache = make(map[string][]byte)
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range allBuckets {
			if tx.Bucket(bucket) != nil {
				if err := tx.DeleteBucket(bucket); err != nil {
					return err
				}
			}
			if _, err := tx.CreateBucket(bucket); err != nil {
				return err
			}
		}
		return nil
	})
}

// === Saved items ===

func (s *LibraryStore) SavedTrackIDs() []domain.TrackID {
	var ids []domain.TrackID
	s.get(bucketSaved, keySavedTracks, &ids)
	return ids
}

func (s *LibraryStore) SaveSavedTrackIDs(ids []domain.TrackID) error {
	return s.set(bucketSaved, keySavedTracks, ids)
}

func (s *LibraryStore) SavedAlbumIDs() []string {
	var ids []string
	s.get(bucketSaved, keySavedAlbums, &ids)
	return ids
}

func (s *LibraryStore) SaveSavedAlbumIDs(ids []string) error {
	return s.set(bucketSaved, keySavedAlbums, ids)
}
