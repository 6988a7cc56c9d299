package store

import (
	"sort"

	"github.com/tdzio/tdz/internal/model"
)

const projectsFile = "projects.json"

// ensureProjectLocked creates the project record on first reference.
// Caller holds the write lock.
func (s *Store) ensureProjectLocked(name string) error {
	projects, err := readCollection[model.Project](s.path(projectsFile))
	if err != nil {
		return err
	}
	if _, ok := projects[name]; ok {
		return nil
	}
	projects[name] = model.NewProject(name, "")
	if err := writeCollection(s.path(projectsFile), projects); err != nil {
		return err
	}
	s.emit(model.KindProject, name, OpUpsert)
	return nil
}

// CreateProject registers a project explicitly. Creating an existing
// project is a conflict; task writes auto-create silently instead.
func (s *Store) CreateProject(p model.Project) error {
	if p.Name == "" {
		return model.Validationf("project name is required")
	}
	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	projects, err := readCollection[model.Project](s.path(projectsFile))
	if err != nil {
		return err
	}
	if _, ok := projects[p.Name]; ok {
		return model.Conflictf("project %q already exists", p.Name)
	}
	projects[p.Name] = p
	if err := writeCollection(s.path(projectsFile), projects); err != nil {
		return err
	}
	s.emit(model.KindProject, p.Name, OpUpsert)
	return nil
}

// GetProject loads one project record.
func (s *Store) GetProject(name string) (model.Project, error) {
	return loadItem[model.Project](s, projectsFile, model.KindProject, name)
}

// ListProjects returns all projects sorted by name.
func (s *Store) ListProjects() ([]model.Project, error) {
	projects, err := listItems[model.Project](s, projectsFile)
	if err != nil {
		return nil, err
	}
	out := make([]model.Project, 0, len(projects))
	for _, k := range sortedKeys(projects) {
		out = append(out, projects[k])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// DeleteProject removes the project record. It refuses while the
// project still owns tasks on the active partition; archive first.
func (s *Store) DeleteProject(name string) error {
	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	active, err := s.readPartition(PartitionActive, name)
	if err != nil {
		return err
	}
	if len(active.Tasks) > 0 {
		return model.Conflictf("project %q still has %d active tasks", name, len(active.Tasks))
	}
	projects, err := readCollection[model.Project](s.path(projectsFile))
	if err != nil {
		return err
	}
	if _, ok := projects[name]; !ok {
		return model.NotFound("project", name)
	}
	delete(projects, name)
	if err := writeCollection(s.path(projectsFile), projects); err != nil {
		return err
	}
	s.emit(model.KindProject, name, OpDelete)
	return nil
}

// SetProjectStatus updates the lifecycle state of a project.
func (s *Store) SetProjectStatus(name string, status model.ProjectStatus) (model.Project, error) {
	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	projects, err := readCollection[model.Project](s.path(projectsFile))
	if err != nil {
		return model.Project{}, err
	}
	p, ok := projects[name]
	if !ok {
		return model.Project{}, model.NotFound("project", name)
	}
	p.Status = status
	p.UpdatedAt = model.Now()
	projects[name] = p
	if err := writeCollection(s.path(projectsFile), projects); err != nil {
		return model.Project{}, err
	}
	s.emit(model.KindProject, name, OpUpsert)
	return p, nil
}
