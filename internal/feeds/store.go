package feeds

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/newsdeck-hq/newsdeck-aggregator/internal/domain"
	bolt "go.etcd.io/bbolt"
)

const feedBucket = "feeds"

// Store persists user feed subscriptions in a BoltDB file. The ingestion
// pipeline only reads it; adds and removals come from user actions and
// trigger the registered change listeners.
type Store struct {
	db *bolt.DB

	mu        sync.Mutex
	listeners []func()
}

// Open initializes the BoltDB-backed subscription store at the given path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("subscription store requires a path")
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(feedBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init feed bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Seed inserts the default feeds only when the store is empty, so user
// removals of defaults survive restarts.
func (s *Store) Seed(defaults []domain.Feed) error {
	existing, err := s.List()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(feedBucket))
		if bucket == nil {
			return fmt.Errorf("feed bucket missing")
		}
		for _, f := range defaults {
			raw, err := json.Marshal(f)
			if err != nil {
				return fmt.Errorf("marshal feed %q: %w", f.ID, err)
			}
			if err := bucket.Put([]byte(f.ID), raw); err != nil {
				return err
			}
		}
		return nil
	})
}

// List returns all subscriptions ordered by feed title.
func (s *Store) List() ([]domain.Feed, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}

	var out []domain.Feed
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(feedBucket))
		if bucket == nil {
			return fmt.Errorf("feed bucket missing")
		}
		return bucket.ForEach(func(_, v []byte) error {
			var f domain.Feed
			if err := json.Unmarshal(v, &f); err != nil {
				return fmt.Errorf("decode stored feed: %w", err)
			}
			out = append(out, f)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(a, b int) bool { return out[a].Title < out[b].Title })
	return out, nil
}

// Add stores a subscription and notifies change listeners.
func (s *Store) Add(f domain.Feed) error {
	f = sanitizeFeed(f)
	if err := validateFeed(f); err != nil {
		return err
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(feedBucket))
		if bucket == nil {
			return fmt.Errorf("feed bucket missing")
		}
		raw, err := json.Marshal(f)
		if err != nil {
			return fmt.Errorf("marshal feed %q: %w", f.ID, err)
		}
		return bucket.Put([]byte(f.ID), raw)
	})
	if err != nil {
		return err
	}

	s.notify()
	return nil
}

// Remove deletes a subscription by id and notifies change listeners.
func (s *Store) Remove(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("feed id is empty")
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(feedBucket))
		if bucket == nil {
			return fmt.Errorf("feed bucket missing")
		}
		return bucket.Delete([]byte(id))
	})
	if err != nil {
		return err
	}

	s.notify()
	return nil
}

// OnChange registers a listener invoked after every add or removal. The
// aggregator uses it to trigger re-ingestion against the current list.
func (s *Store) OnChange(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Store) notify() {
	s.mu.Lock()
	listeners := append([]func(){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}
