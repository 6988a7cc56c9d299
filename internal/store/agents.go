package store

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tdzio/tdz/internal/model"
)

const apiKeysFile = "api_keys.json"

// agentFile wraps one agent record under agents/<id>.json.
type agentFile struct {
	SchemaVersion int         `json:"schema_version"`
	Agent         model.Agent `json:"agent"`
}

func (s *Store) agentPath(id string) string {
	return filepath.Join(s.root, "agents", id+".json")
}

// SaveAgent writes an agent record to its own file.
func (s *Store) SaveAgent(a model.Agent) error {
	if a.ID == "" || a.Name == "" {
		return model.Validationf("agent needs id and name")
	}
	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	a.UpdatedAt = model.Now()
	if err := writeFile(s.agentPath(a.ID), agentFile{SchemaVersion: SchemaVersion, Agent: a}); err != nil {
		return err
	}
	s.emit(model.KindAgent, a.ID, OpUpsert)
	return nil
}

// GetAgent loads one agent.
func (s *Store) GetAgent(id string) (model.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readAgent(id)
}

func (s *Store) readAgent(id string) (model.Agent, error) {
	af := agentFile{}
	ok, err := readFile(s.agentPath(id), &af)
	if err != nil {
		return model.Agent{}, err
	}
	if !ok {
		return model.Agent{}, model.NotFound("agent", id)
	}
	return af.Agent, nil
}

// ListAgents enumerates agents/*.json sorted by id.
func (s *Store) ListAgents() ([]model.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dir := filepath.Join(s.root, "agents")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, model.IOError(dir, err)
	}
	var out []model.Agent
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		a, err := s.readAgent(strings.TrimSuffix(e.Name(), ".json"))
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// DeleteAgent removes the agent's file.
func (s *Store) DeleteAgent(id string) error {
	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.agentPath(id)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return model.NotFound("agent", id)
		}
		return model.IOError(path, err)
	}
	s.emit(model.KindAgent, id, OpDelete)
	return nil
}

// AssignTask records an assignment on the agent and tags the task with
// the agent assignee. Returns the task as updated.
func (s *Store) AssignTask(agentID, taskID string) (model.Task, error) {
	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	agent, err := s.readAgent(agentID)
	if err != nil {
		return model.Task{}, err
	}
	task, part, err := s.findTask(taskID, PartitionActive, PartitionCompleted)
	if err != nil {
		return model.Task{}, err
	}
	for _, a := range agent.Assignments {
		if a.TaskID == taskID && a.Status != model.AssignmentCompleted && a.Status != model.AssignmentFailed {
			return model.Task{}, model.Conflictf("task %s is already assigned to agent %s", taskID, agentID)
		}
	}
	agent.Assignments = append(agent.Assignments, model.AgentAssignment{
		AgentID:    agentID,
		TaskID:     taskID,
		ProjectID:  task.ParentProject,
		AssignedAt: model.Now(),
		Status:     model.AssignmentAssigned,
	})
	agent.UpdatedAt = model.Now()
	if err := writeFile(s.agentPath(agentID), agentFile{SchemaVersion: SchemaVersion, Agent: agent}); err != nil {
		return model.Task{}, err
	}

	tf, err := s.readPartition(part, task.ParentProject)
	if err != nil {
		return model.Task{}, err
	}
	task.Assignee = model.AgentAssignee(agentID)
	task.UpdatedAt = model.Now()
	tf.Tasks[taskID] = task
	if err := s.writePartition(part, task.ParentProject, tf); err != nil {
		return model.Task{}, err
	}

	s.emit(model.KindAgent, agentID, OpUpsert)
	s.emit(model.KindTask, taskID, OpUpsert)
	return task, nil
}

// SeedDefaultAgents creates the built-in agents if the agents directory
// holds none. Called once at init.
func (s *Store) SeedDefaultAgents() error {
	agents, err := s.ListAgents()
	if err != nil {
		return err
	}
	if len(agents) > 0 {
		return nil
	}
	defaults := []model.Agent{
		model.NewAgent("planner", "Planner", "breaks prose into tasks and queue items"),
		model.NewAgent("reviewer", "Reviewer", "reviews completed work before archival"),
	}
	for i := range defaults {
		defaults[i].Capabilities = []string{"tasks", "queue"}
		if err := s.SaveAgent(defaults[i]); err != nil {
			return err
		}
	}
	return nil
}

// API keys.

// CreateAPIKey stores the hash of raw key material under a display name.
func (s *Store) CreateAPIKey(name, raw string) (model.APIKey, error) {
	if name == "" || raw == "" {
		return model.APIKey{}, model.Validationf("api key needs a name and key material")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := readCollection[model.APIKey](s.path(apiKeysFile))
	if err != nil {
		return model.APIKey{}, err
	}
	key := model.NewAPIKey(name, raw)
	keys[key.ID] = key
	if err := writeCollection(s.path(apiKeysFile), keys); err != nil {
		return model.APIKey{}, err
	}
	return key, nil
}

// VerifyAPIKey checks raw against the stored live keys and stamps
// last_used on the match.
func (s *Store) VerifyAPIKey(raw string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := readCollection[model.APIKey](s.path(apiKeysFile))
	if err != nil {
		return false, err
	}
	for id, key := range keys {
		if key.Verify(raw) {
			now := model.Now()
			key.LastUsed = &now
			keys[id] = key
			if err := writeCollection(s.path(apiKeysFile), keys); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// RevokeAPIKey marks the key dead; the record stays for audit.
func (s *Store) RevokeAPIKey(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := readCollection[model.APIKey](s.path(apiKeysFile))
	if err != nil {
		return err
	}
	key, ok := keys[id]
	if !ok {
		return model.NotFound("api key", id)
	}
	key.Revoked = true
	key.UpdatedAt = model.Now()
	keys[id] = key
	return writeCollection(s.path(apiKeysFile), keys)
}

// ListAPIKeys returns key records (hashes only, never raw material).
func (s *Store) ListAPIKeys() ([]model.APIKey, error) {
	keys, err := listItems[model.APIKey](s, apiKeysFile)
	if err != nil {
		return nil, err
	}
	out := make([]model.APIKey, 0, len(keys))
	for _, k := range sortedKeys(keys) {
		out = append(out, keys[k])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
