package store

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/tdzio/tdz/internal/atomicfile"
	"github.com/tdzio/tdz/internal/model"
)

// Stats is the store-wide summary behind `tdz stats` and GET /stats.
type Stats struct {
	Tasks           int             `json:"tasks" yaml:"tasks"`
	CompletedTasks  int             `json:"completed_tasks" yaml:"completed_tasks"`
	CompletionRatio float64         `json:"completion_ratio" yaml:"completion_ratio"`
	TasksPerProject map[string]int  `json:"tasks_per_project" yaml:"tasks_per_project"`
	Counts          map[string]int  `json:"counts" yaml:"counts"`
	Projects        int             `json:"projects" yaml:"projects"`
	OpenSessions    int             `json:"open_sessions" yaml:"open_sessions"`
}

// GetStats walks every collection and returns the counts.
func (s *Store) GetStats() (Stats, error) {
	stats := Stats{
		TasksPerProject: map[string]int{},
		Counts:          map[string]int{},
	}

	all, err := s.ListTasks(model.TaskFilters{})
	if err != nil {
		return Stats{}, err
	}
	for _, t := range all {
		stats.Tasks++
		stats.TasksPerProject[t.ParentProject]++
		if t.Status.Terminal() {
			stats.CompletedTasks++
		}
	}
	if stats.Tasks > 0 {
		stats.CompletionRatio = float64(stats.CompletedTasks) / float64(stats.Tasks)
	}
	stats.Counts["tasks"] = stats.Tasks

	count := func(kind string, n int, err error) error {
		if err != nil {
			return err
		}
		stats.Counts[kind] = n
		return nil
	}
	memories, err := s.ListMemories()
	if err := count("memories", len(memories), err); err != nil {
		return Stats{}, err
	}
	ideas, err := s.ListIdeas()
	if err := count("ideas", len(ideas), err); err != nil {
		return Stats{}, err
	}
	feelings, err := s.ListFeelings()
	if err := count("feelings", len(feelings), err); err != nil {
		return Stats{}, err
	}
	errRecs, err := s.ListErrorRecords()
	if err := count("errors", len(errRecs), err); err != nil {
		return Stats{}, err
	}
	training, err := s.ListTrainingSamples()
	if err := count("training", len(training), err); err != nil {
		return Stats{}, err
	}
	chunks, err := s.ListChunks()
	if err := count("chunks", len(chunks), err); err != nil {
		return Stats{}, err
	}
	queue, err := s.ListQueue("")
	if err := count("queue", len(queue), err); err != nil {
		return Stats{}, err
	}

	projects, err := s.ListProjects()
	if err != nil {
		return Stats{}, err
	}
	stats.Projects = len(projects)

	sessions, err := s.ListSessions("")
	if err != nil {
		return Stats{}, err
	}
	for _, sess := range sessions {
		if sess.Open() {
			stats.OpenSessions++
		}
	}
	return stats, nil
}

// ExportFormat selects the export encoding.
type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportYAML ExportFormat = "yaml"
)

// Export writes one collection to path in the chosen format.
func (s *Store) Export(kind model.Kind, format ExportFormat, path string) error {
	var v any
	var err error
	switch kind {
	case model.KindTask:
		v, err = s.ListTasks(model.TaskFilters{})
	case model.KindMemory:
		v, err = s.ListMemories()
	case model.KindIdea:
		v, err = s.ListIdeas()
	case model.KindFeeling:
		v, err = s.ListFeelings()
	case model.KindError:
		v, err = s.ListErrorRecords()
	case model.KindTraining:
		v, err = s.ListTrainingSamples()
	case model.KindChunk:
		v, err = s.ListChunks()
	case model.KindQueue:
		v, err = s.ListQueue("")
	case model.KindProject:
		v, err = s.ListProjects()
	case model.KindAgent:
		v, err = s.ListAgents()
	default:
		return model.Validationf("unknown export kind %q", kind)
	}
	if err != nil {
		return err
	}

	switch format {
	case ExportJSON:
		if err := atomicfile.WriteJSON(path, v); err != nil {
			return model.IOError(path, err)
		}
	case ExportYAML:
		// Round-trip through JSON so the YAML keys match the on-disk
		// JSON field names.
		raw, err := json.Marshal(v)
		if err != nil {
			return model.IOError(path, fmt.Errorf("encode: %w", err))
		}
		var generic any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return model.IOError(path, fmt.Errorf("encode: %w", err))
		}
		data, err := yaml.Marshal(generic)
		if err != nil {
			return model.IOError(path, fmt.Errorf("encode yaml: %w", err))
		}
		if err := atomicfile.WriteFile(path, data, 0o644); err != nil {
			return model.IOError(path, err)
		}
	default:
		return model.Validationf("unknown export format %q", format)
	}
	return nil
}
