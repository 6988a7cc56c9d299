package store

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tdzio/tdz/internal/model"
)

const backupsDir = "backups"

// CreateBackup snapshots the whole root (minus backups and the lock
// file) under backups/<name>/. An empty name gets a timestamp.
func (s *Store) CreateBackup(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name == "" {
		name = model.Now().Format("20060102-150405")
	}
	if strings.ContainsAny(name, `/\`) {
		return "", model.Validationf("backup name must not contain path separators")
	}
	dest := filepath.Join(s.root, backupsDir, name)
	if _, err := os.Stat(dest); err == nil {
		return "", model.Conflictf("backup %q already exists", name)
	}
	if err := s.copyRoot(s.root, dest); err != nil {
		os.RemoveAll(dest)
		return "", err
	}
	return name, nil
}

// RestoreBackup replaces the live store contents with a snapshot. The
// current files are moved aside to backups/<name>.pre-restore first, so
// a failed restore loses nothing.
func (s *Store) RestoreBackup(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	src := filepath.Join(s.root, backupsDir, name)
	if st, err := os.Stat(src); err != nil || !st.IsDir() {
		return model.NotFound("backup", name)
	}

	aside := filepath.Join(s.root, backupsDir, name+".pre-restore")
	os.RemoveAll(aside)
	if err := s.copyRoot(s.root, aside); err != nil {
		return err
	}
	if err := s.clearRoot(); err != nil {
		return err
	}
	if err := copyTree(src, s.root); err != nil {
		return err
	}
	return nil
}

// ListBackups enumerates snapshot names, newest-last by name.
func (s *Store) ListBackups() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dir := filepath.Join(s.root, backupsDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, model.IOError(dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// copyRoot copies the live store files into dest, skipping the backups
// tree and the lock file.
func (s *Store) copyRoot(root, dest string) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return model.IOError(root, err)
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return model.IOError(dest, err)
	}
	for _, e := range entries {
		if e.Name() == backupsDir || e.Name() == "store.lock" {
			continue
		}
		src := filepath.Join(root, e.Name())
		dst := filepath.Join(dest, e.Name())
		if e.IsDir() {
			if err := copyTree(src, dst); err != nil {
				return err
			}
		} else if err := copyFile(src, dst); err != nil {
			return err
		}
	}
	return nil
}

// clearRoot removes live store files, keeping backups and the lock file.
func (s *Store) clearRoot() error {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return model.IOError(s.root, err)
	}
	for _, e := range entries {
		if e.Name() == backupsDir || e.Name() == "store.lock" {
			continue
		}
		if err := os.RemoveAll(filepath.Join(s.root, e.Name())); err != nil {
			return model.IOError(filepath.Join(s.root, e.Name()), err)
		}
	}
	return nil
}

func copyTree(src, dest string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return model.IOError(path, err)
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return model.IOError(path, err)
		}
		target := filepath.Join(dest, rel)
		if d.IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return model.IOError(target, err)
			}
			return nil
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return model.IOError(src, err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return model.IOError(dest, err)
	}
	out, err := os.Create(dest)
	if err != nil {
		return model.IOError(dest, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return model.IOError(dest, err)
	}
	return out.Sync()
}
