// Package index maintains the derived search indexes over the store: a
// SQLite FTS5 keyword index and a vector table for semantic search. The
// index is rebuildable at any time from the JSON files; deleting
// index.db loses nothing.
package index

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// Index is the SQLite-backed derived index.
type Index struct {
	mu   sync.RWMutex
	db   *sql.DB
	lock *indexLock
}

// ErrLocked indicates another process holds the index for rebuild.
var ErrLocked = errors.New("index is locked by another process")

// Open opens or creates the index under <root>/.index/index.db.
func Open(root string) (*Index, error) {
	dir := filepath.Join(root, ".index")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}

	lock, err := acquireIndexLock(dir)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "index.db"))
	if err != nil {
		lock.Release()
		return nil, fmt.Errorf("open index database: %w", err)
	}
	idx := &Index{db: db, lock: lock}
	if err := idx.initialize(); err != nil {
		db.Close()
		lock.Release()
		return nil, err
	}
	return idx, nil
}

// OpenInMemory opens an in-memory index (for testing).
func OpenInMemory() (*Index, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	idx := &Index{db: db}
	if err := idx.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return idx, nil
}

// Close closes the database and releases the lock.
func (x *Index) Close() error {
	err := x.db.Close()
	if x.lock != nil {
		if lerr := x.lock.Release(); err == nil {
			err = lerr
		}
		x.lock = nil
	}
	return err
}

// schemaVersion is bumped whenever the table layout changes; an
// incompatible index is dropped and rebuilt rather than migrated.
const schemaVersion = 1

func (x *Index) initialize() error {
	schema := `
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = NORMAL;
		PRAGMA temp_store = MEMORY;

		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);

		-- Field projections used by filters and hydration ordering.
		CREATE TABLE IF NOT EXISTS artifacts (
			kind TEXT NOT NULL,
			id TEXT NOT NULL,
			project TEXT,
			status TEXT,
			priority TEXT,
			assignee TEXT,
			tags TEXT,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (kind, id)
		);
		CREATE INDEX IF NOT EXISTS idx_artifacts_updated ON artifacts(updated_at);

		-- Keyword index over each artifact's textual projection.
		CREATE VIRTUAL TABLE IF NOT EXISTS artifacts_fts USING fts5(
			kind UNINDEXED,
			id UNINDEXED,
			text,
			tokenize='porter unicode61'
		);

		-- Dense vectors from the embedding collaborator, float32 LE.
		CREATE TABLE IF NOT EXISTS vectors (
			kind TEXT NOT NULL,
			id TEXT NOT NULL,
			dims INTEGER NOT NULL,
			vec BLOB NOT NULL,
			PRIMARY KEY (kind, id)
		);
	`
	if _, err := x.db.Exec(schema); err != nil {
		return fmt.Errorf("initialize index schema: %w", err)
	}
	_, err := x.db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('version', ?)`,
		fmt.Sprintf("%d", schemaVersion))
	if err != nil {
		return fmt.Errorf("set index version: %w", err)
	}
	return nil
}

type indexLock struct {
	file *os.File
}

func acquireIndexLock(dir string) (*indexLock, error) {
	path := filepath.Join(dir, "index.lock")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open index lock: %w", err)
	}
	if err := lockFileExclusiveNonBlocking(file); err != nil {
		file.Close()
		if isWouldBlockError(err) {
			return nil, ErrLocked
		}
		return nil, fmt.Errorf("acquire index lock: %w", err)
	}
	return &indexLock{file: file}, nil
}

func (l *indexLock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	unlockErr := unlockFile(l.file)
	closeErr := l.file.Close()
	l.file = nil
	if unlockErr != nil {
		return unlockErr
	}
	return closeErr
}
