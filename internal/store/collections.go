package store

import (
	"path/filepath"
	"sort"

	"github.com/tdzio/tdz/internal/model"
	"github.com/tdzio/tdz/internal/validate"
)

// Flat collection filenames under the store root.
const (
	memoriesFile = "memories.json"
	ideasFile    = "ideas.json"
	feelingsFile = "feelings.json"
	errorsFile   = "errors.json"
	trainingFile = "training.json"
	chunksFile   = "chunks.json"
)

func (s *Store) path(name string) string {
	return filepath.Join(s.root, name)
}

// saveItem writes one record into a flat collection under the write lock.
func saveItem[T any](s *Store, file string, kind model.Kind, id string, item T) error {
	if id == "" {
		return model.Validationf("%s id is required", kind)
	}
	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := readCollection[T](s.path(file))
	if err != nil {
		return err
	}
	items[id] = item
	if err := writeCollection(s.path(file), items); err != nil {
		return err
	}
	s.emit(kind, id, OpUpsert)
	return nil
}

func loadItem[T any](s *Store, file string, kind model.Kind, id string) (T, error) {
	var zero T
	s.mu.RLock()
	defer s.mu.RUnlock()

	items, err := readCollection[T](s.path(file))
	if err != nil {
		return zero, err
	}
	item, ok := items[id]
	if !ok {
		return zero, model.NotFound(string(kind), id)
	}
	return item, nil
}

func deleteItem[T any](s *Store, file string, kind model.Kind, id string) error {
	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := readCollection[T](s.path(file))
	if err != nil {
		return err
	}
	if _, ok := items[id]; !ok {
		return model.NotFound(string(kind), id)
	}
	delete(items, id)
	if err := writeCollection(s.path(file), items); err != nil {
		return err
	}
	s.emit(kind, id, OpDelete)
	return nil
}

func listItems[T any](s *Store, file string) (map[string]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return readCollection[T](s.path(file))
}

// Memories.

func (s *Store) SaveMemory(m model.Memory) error {
	if err := validate.MemoryCoherence(m); err != nil {
		return err
	}
	return saveItem(s, memoriesFile, model.KindMemory, m.ID, m)
}

func (s *Store) LoadMemory(id string) (model.Memory, error) {
	return loadItem[model.Memory](s, memoriesFile, model.KindMemory, id)
}

func (s *Store) DeleteMemory(id string) error {
	return deleteItem[model.Memory](s, memoriesFile, model.KindMemory, id)
}

func (s *Store) ListMemories() ([]model.Memory, error) {
	items, err := listItems[model.Memory](s, memoriesFile)
	if err != nil {
		return nil, err
	}
	out := make([]model.Memory, 0, len(items))
	for _, k := range sortedKeys(items) {
		out = append(out, items[k])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

// Ideas.

func (s *Store) SaveIdea(i model.Idea) error {
	return saveItem(s, ideasFile, model.KindIdea, i.ID, i)
}

func (s *Store) LoadIdea(id string) (model.Idea, error) {
	return loadItem[model.Idea](s, ideasFile, model.KindIdea, id)
}

func (s *Store) DeleteIdea(id string) error {
	return deleteItem[model.Idea](s, ideasFile, model.KindIdea, id)
}

func (s *Store) ListIdeas() ([]model.Idea, error) {
	items, err := listItems[model.Idea](s, ideasFile)
	if err != nil {
		return nil, err
	}
	out := make([]model.Idea, 0, len(items))
	for _, k := range sortedKeys(items) {
		out = append(out, items[k])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

// Feelings.

func (s *Store) SaveFeeling(f model.Feeling) error {
	return saveItem(s, feelingsFile, model.KindFeeling, f.ID, f)
}

func (s *Store) ListFeelings() ([]model.Feeling, error) {
	items, err := listItems[model.Feeling](s, feelingsFile)
	if err != nil {
		return nil, err
	}
	out := make([]model.Feeling, 0, len(items))
	for _, k := range sortedKeys(items) {
		out = append(out, items[k])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) DeleteFeeling(id string) error {
	return deleteItem[model.Feeling](s, feelingsFile, model.KindFeeling, id)
}

// Error records.

func (s *Store) SaveErrorRecord(e model.ErrorRecord) error {
	return saveItem(s, errorsFile, model.KindError, e.ID, e)
}

func (s *Store) LoadErrorRecord(id string) (model.ErrorRecord, error) {
	return loadItem[model.ErrorRecord](s, errorsFile, model.KindError, id)
}

func (s *Store) DeleteErrorRecord(id string) error {
	return deleteItem[model.ErrorRecord](s, errorsFile, model.KindError, id)
}

func (s *Store) ListErrorRecords() ([]model.ErrorRecord, error) {
	items, err := listItems[model.ErrorRecord](s, errorsFile)
	if err != nil {
		return nil, err
	}
	out := make([]model.ErrorRecord, 0, len(items))
	for _, k := range sortedKeys(items) {
		out = append(out, items[k])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

// ResolveErrorRecord flips the resolved flag and stamps the time.
func (s *Store) ResolveErrorRecord(id string) (model.ErrorRecord, error) {
	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := readCollection[model.ErrorRecord](s.path(errorsFile))
	if err != nil {
		return model.ErrorRecord{}, err
	}
	rec, ok := items[id]
	if !ok {
		return model.ErrorRecord{}, model.NotFound("error", id)
	}
	if rec.Resolved {
		return model.ErrorRecord{}, model.Conflictf("error %s is already resolved", id)
	}
	now := model.Now()
	rec.Resolved = true
	rec.ResolvedAt = &now
	rec.UpdatedAt = now
	items[id] = rec
	if err := writeCollection(s.path(errorsFile), items); err != nil {
		return model.ErrorRecord{}, err
	}
	s.emit(model.KindError, id, OpUpsert)
	return rec, nil
}

// Training samples.

func (s *Store) SaveTrainingSample(t model.TrainingSample) error {
	return saveItem(s, trainingFile, model.KindTraining, t.ID, t)
}

func (s *Store) LoadTrainingSample(id string) (model.TrainingSample, error) {
	return loadItem[model.TrainingSample](s, trainingFile, model.KindTraining, id)
}

func (s *Store) DeleteTrainingSample(id string) error {
	return deleteItem[model.TrainingSample](s, trainingFile, model.KindTraining, id)
}

func (s *Store) ListTrainingSamples() ([]model.TrainingSample, error) {
	items, err := listItems[model.TrainingSample](s, trainingFile)
	if err != nil {
		return nil, err
	}
	out := make([]model.TrainingSample, 0, len(items))
	for _, k := range sortedKeys(items) {
		out = append(out, items[k])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

// Code chunks. Chunks are keyed by their caller-chosen chunk id, and
// the dependency graph must stay acyclic across the whole collection.

func (s *Store) SaveChunk(c model.CodeChunk) error {
	if c.ChunkID == "" {
		return model.Validationf("chunk id is required")
	}
	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := readCollection[model.CodeChunk](s.path(chunksFile))
	if err != nil {
		return err
	}
	items[c.ChunkID] = c
	if err := validate.ChunkGraph(items); err != nil {
		return err
	}
	if err := writeCollection(s.path(chunksFile), items); err != nil {
		return err
	}
	s.emit(model.KindChunk, c.ChunkID, OpUpsert)
	return nil
}

func (s *Store) DeleteChunk(id string) error {
	return deleteItem[model.CodeChunk](s, chunksFile, model.KindChunk, id)
}

// LoadChunk returns the chunk with its visible status derived from its
// dependencies' states. The derived Ready status is never written back.
func (s *Store) LoadChunk(id string) (model.CodeChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items, err := readCollection[model.CodeChunk](s.path(chunksFile))
	if err != nil {
		return model.CodeChunk{}, err
	}
	c, ok := items[id]
	if !ok {
		return model.CodeChunk{}, model.NotFound("chunk", id)
	}
	c.Status = deriveChunkStatus(c, items)
	return c, nil
}

func (s *Store) ListChunks() ([]model.CodeChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items, err := readCollection[model.CodeChunk](s.path(chunksFile))
	if err != nil {
		return nil, err
	}
	out := make([]model.CodeChunk, 0, len(items))
	for _, k := range sortedKeys(items) {
		c := items[k]
		c.Status = deriveChunkStatus(c, items)
		out = append(out, c)
	}
	return out, nil
}

// SetChunkStatus records an explicit status transition (in_progress,
// complete, failed). Ready is derived, not settable.
func (s *Store) SetChunkStatus(id string, status model.ChunkStatus) error {
	if status == model.ChunkReady {
		return model.Validationf("ready is derived from dependencies, not set")
	}
	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := readCollection[model.CodeChunk](s.path(chunksFile))
	if err != nil {
		return err
	}
	c, ok := items[id]
	if !ok {
		return model.NotFound("chunk", id)
	}
	c.Status = status
	c.UpdatedAt = model.Now()
	items[id] = c
	if err := writeCollection(s.path(chunksFile), items); err != nil {
		return err
	}
	s.emit(model.KindChunk, id, OpUpsert)
	return nil
}

func deriveChunkStatus(c model.CodeChunk, all map[string]model.CodeChunk) model.ChunkStatus {
	return c.EffectiveStatus(func(dep string) bool {
		d, ok := all[dep]
		return ok && d.Status == model.ChunkDone
	})
}
