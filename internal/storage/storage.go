// Package storage persists one JSON document per record, laid out as
// <dataDir>/<collection>/<key>.json. It is the single source of truth:
// there is no in-memory cache, every read revisits the filesystem.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

var (
	// ErrAlreadyExists is returned by Create when a document already
	// exists for the key. Exclusive create is the system's only
	// mutual-exclusion primitive.
	ErrAlreadyExists = errors.New("document already exists")
	// ErrNotFound is returned when no document exists for the key.
	ErrNotFound = errors.New("document not found")
)

// Store is a file-backed collection store. It is safe for concurrent
// use: writers hold an exclusive per-key lock for the duration of a
// write, so a concurrent reader never observes a partial document.
type Store struct {
	baseDir string

	mu    sync.Mutex
	locks map[string]*sync.RWMutex
}

// New returns a Store rooted at baseDir. Collection directories are
// created lazily on first Create.
func New(baseDir string) *Store {
	return &Store{
		baseDir: baseDir,
		locks:   make(map[string]*sync.RWMutex),
	}
}

func (s *Store) path(collection, key string) string {
	return filepath.Join(s.baseDir, collection, key+".json")
}

// lock returns the RWMutex guarding a single (collection, key) pair.
func (s *Store) lock(collection, key string) *sync.RWMutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := collection + "/" + key
	l, ok := s.locks[name]
	if !ok {
		l = &sync.RWMutex{}
		s.locks[name] = l
	}
	return l
}

// Create writes the serialized document as a new file. It fails with
// ErrAlreadyExists if a document for the key is already present; it
// never silently overwrites. Under concurrent creates for the same key
// the O_EXCL open guarantees exactly one caller succeeds.
func (s *Store) Create(collection, key string, doc any) error {
	l := s.lock(collection, key)
	l.Lock()
	defer l.Unlock()

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s/%s: %w", collection, key, err)
	}
	if err := os.MkdirAll(filepath.Join(s.baseDir, collection), 0o755); err != nil {
		return fmt.Errorf("create collection dir %s: %w", collection, err)
	}
	f, err := os.OpenFile(s.path(collection, key), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("create %s/%s: %w", collection, key, err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write %s/%s: %w", collection, key, err)
	}
	return nil
}

// Read loads the document for the key into v. A missing document is
// ErrNotFound. A present but syntactically corrupt document is read as
// an empty document rather than an error: v is left at its zero value
// and no error is returned.
func (s *Store) Read(collection, key string, v any) error {
	l := s.lock(collection, key)
	l.RLock()
	defer l.RUnlock()

	data, err := os.ReadFile(s.path(collection, key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("read %s/%s: %w", collection, key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		// Corrupt documents read as empty, by contract.
		return nil
	}
	return nil
}

// Update replaces the entire prior content of an existing document
// (truncate and rewrite, not a merge). A missing document is
// ErrNotFound.
func (s *Store) Update(collection, key string, doc any) error {
	l := s.lock(collection, key)
	l.Lock()
	defer l.Unlock()

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s/%s: %w", collection, key, err)
	}
	f, err := os.OpenFile(s.path(collection, key), os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("open %s/%s for update: %w", collection, key, err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("rewrite %s/%s: %w", collection, key, err)
	}
	return nil
}

// Delete removes the document permanently. A missing document is
// ErrNotFound.
func (s *Store) Delete(collection, key string) error {
	l := s.lock(collection, key)
	l.Lock()
	defer l.Unlock()

	if err := os.Remove(s.path(collection, key)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("delete %s/%s: %w", collection, key, err)
	}
	return nil
}
