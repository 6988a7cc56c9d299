package store

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gosimple/slug"

	"github.com/tdzio/tdz/internal/model"
	"github.com/tdzio/tdz/internal/validate"
)

// taskFile is one project's slice of a partition.
type taskFile struct {
	SchemaVersion int                   `json:"schema_version"`
	Project       string                `json:"project"`
	Tasks         map[string]model.Task `json:"tasks"`
}

func (s *Store) partitionDir(p Partition) string {
	return filepath.Join(s.root, "tasks", string(p))
}

func (s *Store) partitionPath(p Partition, project string) string {
	return filepath.Join(s.partitionDir(p), slug.Make(project)+".json")
}

func (s *Store) readPartition(p Partition, project string) (taskFile, error) {
	tf := taskFile{Project: project}
	if _, err := readFile(s.partitionPath(p, project), &tf); err != nil {
		return taskFile{}, err
	}
	if tf.Tasks == nil {
		tf.Tasks = make(map[string]model.Task)
	}
	return tf, nil
}

func (s *Store) writePartition(p Partition, project string, tf taskFile) error {
	tf.SchemaVersion = SchemaVersion
	if tf.Project == "" {
		tf.Project = project
	}
	return writeFile(s.partitionPath(p, project), tf)
}

// partitionProjects lists the project names with a file on partition p.
func (s *Store) partitionProjects(p Partition) ([]string, error) {
	entries, err := os.ReadDir(s.partitionDir(p))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, model.IOError(s.partitionDir(p), err)
	}
	var projects []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		slugged := strings.TrimSuffix(name, ".json")
		tf := taskFile{}
		if _, err := readFile(filepath.Join(s.partitionDir(p), name), &tf); err != nil {
			return nil, err
		}
		if tf.Project != "" {
			projects = append(projects, tf.Project)
		} else {
			projects = append(projects, slugged)
		}
	}
	sort.Strings(projects)
	return projects, nil
}

// AddTask appends the task to its project's active partition, creating
// the project on first use.
func (s *Store) AddTask(task model.Task) error {
	if task.ID == "" || task.Action == "" || task.ParentProject == "" {
		return model.Validationf("task needs id, action and project")
	}
	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureProjectLocked(task.ParentProject); err != nil {
		return err
	}
	part := PartitionActive
	if task.Status.Terminal() {
		part = PartitionCompleted
	}
	tf, err := s.readPartition(part, task.ParentProject)
	if err != nil {
		return err
	}
	task.UpdatedAt = model.Now()
	tf.Tasks[task.ID] = task
	if err := s.writePartition(part, task.ParentProject, tf); err != nil {
		return err
	}
	s.emit(model.KindTask, task.ID, OpUpsert)
	return nil
}

// findTask locates id on the given partitions. Scan order follows the
// argument order.
func (s *Store) findTask(id string, parts ...Partition) (model.Task, Partition, error) {
	for _, p := range parts {
		projects, err := s.partitionProjects(p)
		if err != nil {
			return model.Task{}, "", err
		}
		for _, project := range projects {
			tf, err := s.readPartition(p, project)
			if err != nil {
				return model.Task{}, "", err
			}
			if task, ok := tf.Tasks[id]; ok {
				return task, p, nil
			}
		}
	}
	return model.Task{}, "", model.NotFound("task", id)
}

// GetTask scans active, then completed, then archived.
func (s *Store) GetTask(id string) (model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, _, err := s.findTask(id, PartitionActive, PartitionCompleted, PartitionArchived)
	return task, err
}

// CompleteTask marks the task done and moves it from the active to the
// completed partition in one logical operation.
func (s *Store) CompleteTask(id string) (model.Task, error) {
	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	task, part, err := s.findTask(id, PartitionActive, PartitionCompleted)
	if err != nil {
		return model.Task{}, err
	}
	if part == PartitionCompleted {
		return model.Task{}, model.Conflictf("task %s is already completed", id)
	}
	task.Status = model.StatusDone
	task.UpdatedAt = model.Now()
	if err := s.moveTaskLocked(task, PartitionActive, PartitionCompleted); err != nil {
		return model.Task{}, err
	}
	s.emit(model.KindTask, id, OpUpsert)
	return task, nil
}

// DeleteTask removes the task from whichever partition owns it.
func (s *Store) DeleteTask(id string) error {
	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	task, part, err := s.findTask(id, PartitionActive, PartitionCompleted, PartitionArchived)
	if err != nil {
		return err
	}
	tf, err := s.readPartition(part, task.ParentProject)
	if err != nil {
		return err
	}
	delete(tf.Tasks, id)
	if err := s.writePartition(part, task.ParentProject, tf); err != nil {
		return err
	}
	s.emit(model.KindTask, id, OpDelete)
	return nil
}

// UpdateTask applies a partial patch. A status change that crosses the
// active/completed boundary moves the record between partitions.
func (s *Store) UpdateTask(id string, patch model.TaskUpdate) (model.Task, error) {
	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	task, part, err := s.findTask(id, PartitionActive, PartitionCompleted)
	if err != nil {
		return model.Task{}, err
	}
	oldProject := task.ParentProject
	patch.Apply(&task)
	if task.Action == "" || task.ParentProject == "" {
		return model.Task{}, model.Validationf("task needs action and project")
	}
	if err := validate.Progress(task.Status, task.Progress); err != nil {
		return model.Task{}, err
	}
	task.UpdatedAt = model.Now()

	target := PartitionActive
	if task.Status.Terminal() {
		target = PartitionCompleted
	}
	if task.ParentProject != oldProject {
		if err := s.ensureProjectLocked(task.ParentProject); err != nil {
			return model.Task{}, err
		}
	}
	if part != target || task.ParentProject != oldProject {
		if err := s.removeFromPartitionLocked(id, part, oldProject); err != nil {
			return model.Task{}, err
		}
		tf, err := s.readPartition(target, task.ParentProject)
		if err != nil {
			return model.Task{}, err
		}
		tf.Tasks[id] = task
		if err := s.writePartition(target, task.ParentProject, tf); err != nil {
			return model.Task{}, err
		}
	} else {
		tf, err := s.readPartition(part, task.ParentProject)
		if err != nil {
			return model.Task{}, err
		}
		tf.Tasks[id] = task
		if err := s.writePartition(part, task.ParentProject, tf); err != nil {
			return model.Task{}, err
		}
	}
	s.emit(model.KindTask, id, OpUpsert)
	return task, nil
}

// ListTasks returns matches across active and completed, newest update
// first. A terminal status filter pins the scan to the completed side.
func (s *Store) ListTasks(filters model.TaskFilters) ([]model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	parts := []Partition{PartitionActive, PartitionCompleted}
	if filters.Status != "" {
		if filters.Status.Terminal() {
			parts = []Partition{PartitionCompleted}
		} else {
			parts = []Partition{PartitionActive}
		}
	}

	var out []model.Task
	for _, p := range parts {
		projects, err := s.partitionProjects(p)
		if err != nil {
			return nil, err
		}
		if filters.Project != "" {
			projects = []string{filters.Project}
		}
		for _, project := range projects {
			tf, err := s.readPartition(p, project)
			if err != nil {
				return nil, err
			}
			for _, task := range tf.Tasks {
				if filters.Matches(task) {
					out = append(out, task)
				}
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ArchiveProject merges a project's active and completed partitions into
// the archived partition.
func (s *Store) ArchiveProject(project string) (int, error) {
	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	archived, err := s.readPartition(PartitionArchived, project)
	if err != nil {
		return 0, err
	}
	moved := 0
	for _, p := range []Partition{PartitionActive, PartitionCompleted} {
		tf, err := s.readPartition(p, project)
		if err != nil {
			return 0, err
		}
		if len(tf.Tasks) == 0 {
			continue
		}
		for id, task := range tf.Tasks {
			archived.Tasks[id] = task
			moved++
		}
		if err := os.Remove(s.partitionPath(p, project)); err != nil && !os.IsNotExist(err) {
			return 0, model.IOError(s.partitionPath(p, project), err)
		}
	}
	if moved == 0 {
		return 0, model.NotFound("project tasks", project)
	}
	if err := s.writePartition(PartitionArchived, project, archived); err != nil {
		return 0, err
	}
	for id := range archived.Tasks {
		s.emit(model.KindTask, id, OpUpsert)
	}
	return moved, nil
}

// FixCompletedTasksConsistency repairs partition placement: a done task
// found on the active side moves to completed, and a task present on
// both sides keeps only the copy matching its status.
func (s *Store) FixCompletedTasksConsistency() (int, error) {
	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	fixed := 0
	projects := map[string]struct{}{}
	for _, p := range []Partition{PartitionActive, PartitionCompleted} {
		names, err := s.partitionProjects(p)
		if err != nil {
			return 0, err
		}
		for _, n := range names {
			projects[n] = struct{}{}
		}
	}

	for _, project := range sortedKeys(projects) {
		active, err := s.readPartition(PartitionActive, project)
		if err != nil {
			return 0, err
		}
		completed, err := s.readPartition(PartitionCompleted, project)
		if err != nil {
			return 0, err
		}
		dirty := false
		for id, task := range active.Tasks {
			if _, dup := completed.Tasks[id]; dup {
				// Both sides own the id: the partition matching the
				// status is authoritative.
				if task.Status.Terminal() {
					delete(active.Tasks, id)
				} else {
					delete(completed.Tasks, id)
				}
				dirty = true
				fixed++
				continue
			}
			if task.Status.Terminal() {
				completed.Tasks[id] = task
				delete(active.Tasks, id)
				dirty = true
				fixed++
			}
		}
		if dirty {
			if err := s.writePartition(PartitionActive, project, active); err != nil {
				return 0, err
			}
			if err := s.writePartition(PartitionCompleted, project, completed); err != nil {
				return 0, err
			}
		}
	}
	return fixed, nil
}

func (s *Store) moveTaskLocked(task model.Task, from, to Partition) error {
	if err := s.removeFromPartitionLocked(task.ID, from, task.ParentProject); err != nil {
		return err
	}
	tf, err := s.readPartition(to, task.ParentProject)
	if err != nil {
		return err
	}
	tf.Tasks[task.ID] = task
	return s.writePartition(to, task.ParentProject, tf)
}

func (s *Store) removeFromPartitionLocked(id string, p Partition, project string) error {
	tf, err := s.readPartition(p, project)
	if err != nil {
		return err
	}
	delete(tf.Tasks, id)
	return s.writePartition(p, project, tf)
}
