// Package store persists artifacts as plain JSON files under a single
// root directory. Tasks are partitioned per project into active,
// completed and archived files; every other kind lives in a flat
// collection file. The files are the source of truth; search indexes
// are derived and rebuildable.
package store

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/tdzio/tdz/internal/atomicfile"
	"github.com/tdzio/tdz/internal/model"
)

// SchemaVersion is written into every store file. Readers refuse files
// written by a newer schema.
const SchemaVersion = 1

// Partition names the side of the task split a record lives on.
type Partition string

const (
	PartitionActive    Partition = "active"
	PartitionCompleted Partition = "completed"
	PartitionArchived  Partition = "archived"
)

// Op is the index-facing mutation type.
type Op string

const (
	OpUpsert Op = "upsert"
	OpDelete Op = "delete"
)

// ChangeEvent describes one store mutation for derived indexes.
type ChangeEvent struct {
	Kind model.Kind
	ID   string
	Op   Op
}

// Store is a single-writer file store. One Store value owns its root:
// a flock'd lock file keeps other processes out, and an RWMutex
// serializes writers within the process.
type Store struct {
	root string
	mu   sync.RWMutex

	lock *rootLock

	evMu     sync.Mutex
	onChange func(ChangeEvent)
	pending  []ChangeEvent

	seenMu sync.Mutex
	seen   map[string]struct{}
}

// Open prepares the directory layout under root and takes the
// cross-process lock. A second Open on the same root fails with a
// conflict error.
func Open(root string) (*Store, error) {
	for _, dir := range []string{
		root,
		filepath.Join(root, "tasks", string(PartitionActive)),
		filepath.Join(root, "tasks", string(PartitionCompleted)),
		filepath.Join(root, "tasks", string(PartitionArchived)),
		filepath.Join(root, "agents"),
		filepath.Join(root, "backups"),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, model.IOError(dir, err)
		}
	}
	lock, err := acquireRootLock(root)
	if err != nil {
		return nil, err
	}
	if err := sweepOrphans(root); err != nil {
		lock.Release()
		return nil, err
	}
	return &Store{
		root: root,
		lock: lock,
		seen: make(map[string]struct{}),
	}, nil
}

// sweepOrphans removes temp files left behind by writes that died before
// the rename. It runs with the root lock held, so any temp file found is
// abandoned rather than in flight.
func sweepOrphans(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return model.IOError(path, err)
		}
		if d.IsDir() {
			if path != root && (d.Name() == "backups" || d.Name() == ".index") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.Contains(d.Name(), ".tmp-") {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return model.IOError(path, err)
			}
		}
		return nil
	})
}

// Root returns the store's root directory.
func (s *Store) Root() string { return s.root }

// Close releases the cross-process lock.
func (s *Store) Close() error {
	if s.lock == nil {
		return nil
	}
	err := s.lock.Release()
	s.lock = nil
	return err
}

// Notify registers the change callback. The callback runs synchronously
// after the mutating operation has released the store lock, so it may
// read the store freely (the index does, to build its projection).
func (s *Store) Notify(fn func(ChangeEvent)) {
	s.evMu.Lock()
	defer s.evMu.Unlock()
	s.onChange = fn
}

// emit queues a change event. Mutating operations run under the write
// lock; delivery waits for flush so the callback never observes the
// lock held.
func (s *Store) emit(kind model.Kind, id string, op Op) {
	s.evMu.Lock()
	s.pending = append(s.pending, ChangeEvent{Kind: kind, ID: id, Op: op})
	s.evMu.Unlock()
}

// flush delivers queued change events in order. Every mutating
// operation defers it before taking the write lock, so it runs after
// the lock is released.
func (s *Store) flush() {
	s.evMu.Lock()
	events := s.pending
	s.pending = nil
	fn := s.onChange
	s.evMu.Unlock()
	if fn == nil {
		return
	}
	for _, ev := range events {
		fn(ev)
	}
}

// MarkSeen records a content fingerprint for the life of the process
// and reports whether it was already present. The ingestion facade uses
// this to skip exact duplicates within a session.
func (s *Store) MarkSeen(fingerprint string) bool {
	if fingerprint == "" {
		return false
	}
	s.seenMu.Lock()
	defer s.seenMu.Unlock()
	if _, dup := s.seen[fingerprint]; dup {
		return true
	}
	s.seen[fingerprint] = struct{}{}
	return false
}

// envelope is the common frame every store file carries.
type envelope struct {
	SchemaVersion int `json:"schema_version"`
}

// readFile decodes path into v after checking the schema version.
// A missing file leaves v untouched and returns false.
func readFile(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, model.IOError(path, err)
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return false, model.Corruptionf(path, "invalid JSON: %v", err)
	}
	if env.SchemaVersion > SchemaVersion {
		return false, model.Corruptionf(path, "schema version %d is newer than supported %d", env.SchemaVersion, SchemaVersion)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, model.Corruptionf(path, "invalid JSON: %v", err)
	}
	return true, nil
}

func writeFile(path string, v any) error {
	if err := atomicfile.WriteJSON(path, v); err != nil {
		return model.IOError(path, err)
	}
	return nil
}

// collection is the frame for flat id-keyed collection files.
type collection[T any] struct {
	SchemaVersion int          `json:"schema_version"`
	Items         map[string]T `json:"items"`
}

func readCollection[T any](path string) (map[string]T, error) {
	col := collection[T]{}
	if _, err := readFile(path, &col); err != nil {
		return nil, err
	}
	if col.Items == nil {
		col.Items = make(map[string]T)
	}
	return col.Items, nil
}

func writeCollection[T any](path string, items map[string]T) error {
	return writeFile(path, collection[T]{SchemaVersion: SchemaVersion, Items: items})
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
