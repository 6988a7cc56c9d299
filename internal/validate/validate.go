// Package validate turns parsed drafts into persistable artifacts.
// Every string field is trimmed, enum names are decoded through the
// central parsers in internal/model, and omitted fields take their
// documented defaults. Each function rejects with a tagged validation
// error; batches never abort on a single bad draft.
package validate

import (
	"strconv"
	"strings"

	"github.com/tdzio/tdz/internal/model"
	"github.com/tdzio/tdz/internal/tags"
)

const (
	maxActionLen = 500
	maxTextLen   = 1000
)

// Task validates a task draft and returns the artifact.
func Task(d tags.TaskDraft) (model.Task, error) {
	action := strings.TrimSpace(d.Action)
	if action == "" {
		return model.Task{}, model.Validationf("task action is required")
	}
	if len(action) > maxActionLen {
		return model.Task{}, model.Validationf("task action exceeds %d characters", maxActionLen)
	}
	project := strings.TrimSpace(d.Project)
	if project == "" {
		return model.Task{}, model.Validationf("task project is required")
	}

	priority := model.PriorityMedium
	if d.Priority != "" {
		p, err := model.ParsePriority(d.Priority)
		if err != nil {
			return model.Task{}, err
		}
		priority = p
	}
	status := model.StatusTodo
	if d.Status != "" {
		s, err := model.ParseStatus(d.Status)
		if err != nil {
			return model.Task{}, err
		}
		status = s
	}

	task := model.NewTask(action, strings.TrimSpace(d.Time), priority, project, status)
	if d.Assignee != "" {
		a, err := model.ParseAssignee(d.Assignee)
		if err != nil {
			return model.Task{}, err
		}
		task.Assignee = a
	}
	task.Tags = CleanTags(d.Tags)
	return task, nil
}

// Progress checks a progress percentage against its range and the
// terminal-status rule: done tasks carry either no progress or 100.
func Progress(status model.Status, progress *int) error {
	if progress == nil {
		return nil
	}
	if *progress < 0 || *progress > 100 {
		return model.Validationf("progress %d out of range 0..100", *progress)
	}
	if status.Terminal() && *progress != 100 {
		return model.Validationf("a %s task's progress must be 100 or unset", status)
	}
	return nil
}

// Memory validates a memory draft, resolving the polymorphic first field
// into subtype, term, and emotion.
func Memory(d tags.MemoryDraft) (model.Memory, error) {
	moment := strings.TrimSpace(d.Moment)
	meaning := strings.TrimSpace(d.Meaning)
	reason := strings.TrimSpace(d.Reason)
	for name, v := range map[string]string{"moment": moment, "meaning": meaning, "reason": reason} {
		if len(v) > maxTextLen {
			return model.Memory{}, model.Validationf("memory %s exceeds %d characters", name, maxTextLen)
		}
	}

	memType, err := model.ParseMemoryType(d.Type)
	if err != nil {
		return model.Memory{}, err
	}
	importance := model.ImportanceMedium
	if d.Importance != "" {
		importance, err = model.ParseImportance(d.Importance)
		if err != nil {
			return model.Memory{}, err
		}
	}
	term := model.TermShort
	if d.Term != "" {
		term, err = model.ParseMemoryTerm(d.Term)
		if err != nil {
			return model.Memory{}, err
		}
	}
	// short/long subtypes force the term regardless of the term field.
	switch memType {
	case model.MemoryShort:
		term = model.TermShort
	case model.MemoryLong:
		term = model.TermLong
	}

	m := model.NewMemory(moment, meaning, reason)
	m.MemoryType = memType
	m.Importance = importance
	m.Term = term
	if emotion, ok := memType.Emotion(); ok {
		m.Emotion = emotion
	}
	m.Tags = CleanTags(d.Tags)
	return m, nil
}

// MemoryCoherence checks the persisted invariant: an emotional memory's
// explicit emotion field must equal the subtype's emotion.
func MemoryCoherence(m model.Memory) error {
	emotion, ok := m.MemoryType.Emotion()
	if !ok {
		return nil
	}
	if m.Emotion != "" && m.Emotion != emotion {
		return model.Validationf("memory emotion %q conflicts with memory type %q", m.Emotion, emotion)
	}
	return nil
}

// Idea validates an idea draft.
func Idea(d tags.IdeaDraft) (model.Idea, error) {
	text := strings.TrimSpace(d.Idea)
	if text == "" {
		return model.Idea{}, model.Validationf("idea text is required")
	}
	if len(text) > maxTextLen {
		return model.Idea{}, model.Validationf("idea exceeds %d characters", maxTextLen)
	}

	idea := model.NewIdea(text)
	if d.Share != "" {
		share, err := model.ParseShareLevel(d.Share)
		if err != nil {
			return model.Idea{}, err
		}
		idea.Share = share
	}
	if d.Importance != "" {
		importance, err := model.ParseIdeaImportance(d.Importance)
		if err != nil {
			return model.Idea{}, err
		}
		idea.Importance = importance
	}
	idea.Context = strings.TrimSpace(d.Context)
	idea.Tags = CleanTags(d.Tags)
	return idea, nil
}

// Feeling validates a feel draft; intensity is clamped to 0..10.
func Feeling(d tags.FeelDraft) (model.Feeling, error) {
	emotion := strings.TrimSpace(d.Emotion)
	if emotion == "" {
		return model.Feeling{}, model.Validationf("feeling emotion is required")
	}
	intensity := 5
	if d.Intensity != "" {
		n, err := strconv.Atoi(strings.TrimSpace(d.Intensity))
		if err != nil {
			return model.Feeling{}, model.Validationf("invalid intensity: %q", d.Intensity)
		}
		intensity = clamp(n, 0, 10)
	}

	f := model.NewFeeling(emotion, intensity, strings.TrimSpace(d.Description))
	f.Context = strings.TrimSpace(d.Context)
	f.Tags = CleanTags(d.Tags)
	return f, nil
}

// Training validates a train draft.
func Training(d tags.TrainDraft) (model.TrainingSample, error) {
	dataType, err := model.ParseTrainingDataType(d.DataType)
	if err != nil {
		return model.TrainingSample{}, err
	}
	prompt := strings.TrimSpace(d.Prompt)
	completion := strings.TrimSpace(d.Completion)
	if prompt == "" || completion == "" {
		return model.TrainingSample{}, model.Validationf("training prompt and completion are required")
	}

	sample := model.NewTrainingSample(dataType, prompt, completion, strings.TrimSpace(d.Source))
	sample.Context = strings.TrimSpace(d.Context)
	sample.Tags = CleanTags(d.Tags)
	if d.QualityScore != "" {
		score, err := strconv.ParseFloat(strings.TrimSpace(d.QualityScore), 64)
		if err != nil {
			return model.TrainingSample{}, model.Validationf("invalid quality score: %q", d.QualityScore)
		}
		sample.QualityScore = &score
	}
	return sample, nil
}

// ErrorRecord validates an error draft.
func ErrorRecord(d tags.ErrorDraft) (model.ErrorRecord, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return model.ErrorRecord{}, model.Validationf("error title is required")
	}
	severity, err := model.ParseImportance(d.Severity)
	if err != nil {
		return model.ErrorRecord{}, err
	}
	category, err := model.ParseErrorCategory(d.Category)
	if err != nil {
		return model.ErrorRecord{}, err
	}

	rec := model.NewErrorRecord(title, strings.TrimSpace(d.Description), severity, category, strings.TrimSpace(d.Source))
	rec.Context = strings.TrimSpace(d.Context)
	rec.Tags = CleanTags(d.Tags)
	return rec, nil
}

// Chunk validates a chunk draft. Dependency existence and cycles are
// checked at write time by the store, which sees the whole graph.
func Chunk(d tags.ChunkDraft) (model.CodeChunk, error) {
	id := strings.TrimSpace(d.ID)
	if id == "" {
		return model.CodeChunk{}, model.Validationf("chunk id is required")
	}
	level, err := model.ParseChunkLevel(d.Level)
	if err != nil {
		return model.CodeChunk{}, err
	}

	chunk := model.NewCodeChunk(id, level, strings.TrimSpace(d.Description))
	chunk.Dependencies = CleanTags(d.Dependencies)
	chunk.Code = d.Code
	return chunk, nil
}

// ChunkGraph rejects a chunk set whose dependency edges contain a cycle.
// Dangling references are tolerated (the chunk stays pending).
func ChunkGraph(chunks map[string]model.CodeChunk) error {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(chunks))

	var visit func(id string) bool
	visit = func(id string) bool {
		switch state[id] {
		case visiting:
			return false
		case done:
			return true
		}
		state[id] = visiting
		for _, dep := range chunks[id].Dependencies {
			if _, exists := chunks[dep]; !exists {
				continue
			}
			if !visit(dep) {
				return false
			}
		}
		state[id] = done
		return true
	}

	for id := range chunks {
		if !visit(id) {
			return model.Validationf("cycle in chunk dependencies involving %q", id)
		}
	}
	return nil
}

// CleanTags trims entries and drops empties, preserving order.
func CleanTags(in []string) []string {
	var out []string
	for _, t := range in {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
