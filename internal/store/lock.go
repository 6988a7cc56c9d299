package store

import (
	"os"
	"path/filepath"

	"github.com/tdzio/tdz/internal/model"
)

// rootLock holds the cross-process exclusive lock on a store root.
type rootLock struct {
	file *os.File
}

func acquireRootLock(root string) (*rootLock, error) {
	path := filepath.Join(root, "store.lock")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, model.IOError(path, err)
	}
	if err := flockExclusiveNonBlocking(file); err != nil {
		file.Close()
		if isWouldBlock(err) {
			return nil, model.Conflictf("store at %s is locked by another process", root)
		}
		return nil, model.IOError(path, err)
	}
	return &rootLock{file: file}, nil
}

func (l *rootLock) Release() error {
	if l.file == nil {
		return nil
	}
	unlockErr := funlock(l.file)
	closeErr := l.file.Close()
	l.file = nil
	if unlockErr != nil {
		return unlockErr
	}
	return closeErr
}
