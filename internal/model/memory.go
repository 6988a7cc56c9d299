package model

import (
	"strings"
	"time"
)

// Memory is a recalled event with its meaning and the reason it matters.
type Memory struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	ProjectID  string     `json:"project_id,omitempty"`
	Moment     string     `json:"moment"`
	Meaning    string     `json:"meaning"`
	Reason     string     `json:"reason"`
	Importance Importance `json:"importance"`
	Term       MemoryTerm `json:"term"`
	MemoryType MemoryType `json:"memory_type"`
	Emotion    string     `json:"emotion,omitempty"`
	Tags       []string   `json:"tags,omitempty"`
	Status     ItemStatus `json:"status"`
	Embedding  []float32  `json:"embedding,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// NewMemory builds a memory with generated id and timestamps.
func NewMemory(moment, meaning, reason string) Memory {
	now := Now()
	return Memory{
		ID:         NewID(),
		UserID:     "anonymous",
		Moment:     moment,
		Meaning:    meaning,
		Reason:     reason,
		Importance: ImportanceMedium,
		Term:       TermShort,
		MemoryType: MemoryStandard,
		Status:     ItemActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// SearchText returns the textual projection indexed for this memory.
func (m Memory) SearchText() string {
	parts := []string{m.Moment, m.Meaning, m.Reason}
	if len(m.Tags) > 0 {
		parts = append(parts, strings.Join(m.Tags, " "))
	}
	return strings.Join(parts, " ")
}

// Idea is a captured thought with a visibility level.
type Idea struct {
	ID         string         `json:"id"`
	Idea       string         `json:"idea"`
	ProjectID  string         `json:"project_id,omitempty"`
	Share      ShareLevel     `json:"share"`
	Importance IdeaImportance `json:"importance"`
	Context    string         `json:"context,omitempty"`
	Tags       []string       `json:"tags,omitempty"`
	Status     ItemStatus     `json:"status"`
	Embedding  []float32      `json:"embedding,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// NewIdea builds an idea with generated id and timestamps.
func NewIdea(text string) Idea {
	now := Now()
	return Idea{
		ID:         NewID(),
		Idea:       text,
		Share:      SharePrivate,
		Importance: IdeaMedium,
		Status:     ItemActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// SearchText returns the textual projection indexed for this idea.
func (i Idea) SearchText() string {
	parts := []string{i.Idea}
	if i.Context != "" {
		parts = append(parts, i.Context)
	}
	if len(i.Tags) > 0 {
		parts = append(parts, strings.Join(i.Tags, " "))
	}
	return strings.Join(parts, " ")
}

// Feeling is a recorded emotional state with an intensity from 0 to 10.
type Feeling struct {
	ID          string    `json:"id"`
	Emotion     string    `json:"emotion"`
	Intensity   int       `json:"intensity"`
	Description string    `json:"description"`
	Context     string    `json:"context,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewFeeling builds a feeling with generated id and timestamps.
func NewFeeling(emotion string, intensity int, description string) Feeling {
	now := Now()
	return Feeling{
		ID:          NewID(),
		Emotion:     emotion,
		Intensity:   intensity,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// TrainingSample is a prompt/completion pair collected for model training.
type TrainingSample struct {
	ID           string           `json:"id"`
	DataType     TrainingDataType `json:"data_type"`
	Prompt       string           `json:"prompt"`
	Completion   string           `json:"completion"`
	Source       string           `json:"source"`
	Context      string           `json:"context,omitempty"`
	Tags         []string         `json:"tags,omitempty"`
	QualityScore *float64         `json:"quality_score,omitempty"`
	Embedding    []float32        `json:"embedding,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// NewTrainingSample builds a training sample with generated id and timestamps.
func NewTrainingSample(dataType TrainingDataType, prompt, completion, source string) TrainingSample {
	now := Now()
	return TrainingSample{
		ID:         NewID(),
		DataType:   dataType,
		Prompt:     prompt,
		Completion: completion,
		Source:     source,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// SearchText returns the textual projection indexed for this sample.
func (t TrainingSample) SearchText() string {
	return t.Prompt + " " + t.Completion
}

// ErrorRecord is a captured failure with severity, category, and
// resolution state.
type ErrorRecord struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Severity    ErrorSeverity `json:"severity"`
	Category    ErrorCategory `json:"category"`
	Source      string        `json:"source"`
	Context     string        `json:"context,omitempty"`
	Tags        []string      `json:"tags,omitempty"`
	Resolved    bool          `json:"resolved"`
	Resolution  string        `json:"resolution,omitempty"`
	ResolvedAt  *time.Time    `json:"resolved_at,omitempty"`
	Embedding   []float32     `json:"embedding,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// NewErrorRecord builds an error record with generated id and timestamps.
func NewErrorRecord(title, description string, severity ErrorSeverity, category ErrorCategory, source string) ErrorRecord {
	now := Now()
	return ErrorRecord{
		ID:          NewID(),
		Title:       title,
		Description: description,
		Severity:    severity,
		Category:    category,
		Source:      source,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// SearchText returns the textual projection indexed for this record.
func (e ErrorRecord) SearchText() string {
	return e.Title + " " + e.Description + " " + e.Source
}
