package server

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const rebuildDebounce = 500 * time.Millisecond

// watchStore rebuilds the index when another process mutates the store
// root. Returns a stop function; the watcher also stops with ctx.
func (s *Server) watchStore(ctx context.Context) (func(), error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	root := s.st.Root()
	dirs := []string{
		root,
		filepath.Join(root, "tasks", "active"),
		filepath.Join(root, "tasks", "completed"),
		filepath.Join(root, "tasks", "archived"),
		filepath.Join(root, "agents"),
	}
	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, err
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		var timer *time.Timer
		var fire <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ignoredPath(root, ev.Name) {
					continue
				}
				if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(rebuildDebounce)
					fire = timer.C
				} else {
					timer.Reset(rebuildDebounce)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				s.logger.Warn("store watcher", zap.Error(err))
			case <-fire:
				timer = nil
				fire = nil
				if err := s.idx.RebuildAll(s.st); err != nil {
					s.logger.Warn("index rebuild after external change", zap.Error(err))
				} else {
					s.logger.Debug("index rebuilt after external change")
				}
			}
		}
	}()

	return func() {
		w.Close()
		<-done
	}, nil
}

// ignoredPath filters writes the server itself causes: the index files,
// backups, lock files, and temp files from atomic renames.
func ignoredPath(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return true
	}
	if rel == "store.lock" || strings.HasPrefix(rel, ".index") || strings.HasPrefix(rel, "backups") {
		return true
	}
	return strings.Contains(filepath.Base(rel), ".tmp-")
}
