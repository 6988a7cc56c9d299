// Package model defines the artifact value types persisted by the store:
// tasks, memories, ideas, feelings, code chunks, training samples, error
// records, queue items, projects, agents, and API keys.
//
// Enum parsing is centralized here so every field uses one decoder; all
// parsers lowercase their input and return tagged validation errors.
package model

import (
	"sort"
	"strings"
)

// Priority is the task priority scale.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
	PriorityUrgent   Priority = "urgent"
)

// ParsePriority decodes a priority name, accepting any case.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return PriorityLow, nil
	case "medium":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	case "critical":
		return PriorityCritical, nil
	case "urgent":
		return PriorityUrgent, nil
	}
	return "", Validationf("invalid priority: %q", s)
}

// Status is the task status lifecycle.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusBlocked    Status = "blocked"
	StatusReview     Status = "review"
	StatusDone       Status = "done"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusDeferred   Status = "deferred"
)

// ParseStatus decodes a status name with the historical aliases:
// pending maps to todo, completed to done, canceled to cancelled.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "todo", "pending":
		return StatusTodo, nil
	case "in_progress", "in-progress":
		return StatusInProgress, nil
	case "blocked":
		return StatusBlocked, nil
	case "review":
		return StatusReview, nil
	case "done", "completed":
		return StatusDone, nil
	case "cancelled", "canceled":
		return StatusCancelled, nil
	case "deferred":
		return StatusDeferred, nil
	}
	return "", Validationf("invalid status: %q", s)
}

// Terminal reports whether the status places a task in the completed partition.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusCompleted
}

// Assignee identifies who a task is assigned to. Agent assignees carry
// the agent name after a colon ("agent:planner").
type Assignee string

const (
	AssigneeAI            Assignee = "ai"
	AssigneeHuman         Assignee = "human"
	AssigneeCollaborative Assignee = "collaborative"
)

// ParseAssignee decodes an assignee. Unrecognized names are treated as
// agent names, with or without the "agent:" prefix.
func ParseAssignee(s string) (Assignee, error) {
	t := strings.TrimSpace(s)
	switch strings.ToLower(t) {
	case "":
		return "", Validationf("empty assignee")
	case "ai":
		return AssigneeAI, nil
	case "human":
		return AssigneeHuman, nil
	case "collaborative":
		return AssigneeCollaborative, nil
	}
	if name, ok := strings.CutPrefix(t, "agent:"); ok {
		return AgentAssignee(name), nil
	}
	return AgentAssignee(t), nil
}

// AgentAssignee builds the assignee value for a named agent.
func AgentAssignee(name string) Assignee {
	return Assignee("agent:" + strings.TrimSpace(name))
}

// AgentName returns the agent name and true when the assignee is an agent.
func (a Assignee) AgentName() (string, bool) {
	return strings.CutPrefix(string(a), "agent:")
}

// Importance is the shared low/medium/high/critical scale used by
// memories and error records.
type Importance string

const (
	ImportanceLow      Importance = "low"
	ImportanceMedium   Importance = "medium"
	ImportanceHigh     Importance = "high"
	ImportanceCritical Importance = "critical"
)

// ParseImportance decodes an importance level.
func ParseImportance(s string) (Importance, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return ImportanceLow, nil
	case "medium":
		return ImportanceMedium, nil
	case "high":
		return ImportanceHigh, nil
	case "critical":
		return ImportanceCritical, nil
	}
	return "", Validationf("invalid importance: %q", s)
}

// MemoryTerm is the retention horizon of a memory.
type MemoryTerm string

const (
	TermShort MemoryTerm = "short"
	TermLong  MemoryTerm = "long"
)

// ParseMemoryTerm decodes a memory term.
func ParseMemoryTerm(s string) (MemoryTerm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "short":
		return TermShort, nil
	case "long":
		return TermLong, nil
	}
	return "", Validationf("invalid memory term: %q", s)
}

// coreEmotions is the fixed emotion vocabulary for emotional memories.
var coreEmotions = map[string]struct{}{
	"happy": {}, "sad": {}, "angry": {}, "fearful": {}, "surprised": {},
	"disgusted": {}, "excited": {}, "anxious": {}, "confident": {},
	"frustrated": {}, "motivated": {}, "overwhelmed": {}, "curious": {},
	"satisfied": {}, "disappointed": {}, "grateful": {}, "proud": {},
	"ashamed": {}, "hopeful": {}, "resigned": {},
}

// IsCoreEmotion reports whether s names one of the 20 recognized emotions.
func IsCoreEmotion(s string) bool {
	_, ok := coreEmotions[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// CoreEmotions returns the emotion vocabulary in sorted order.
func CoreEmotions() []string {
	out := make([]string, 0, len(coreEmotions))
	for e := range coreEmotions {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

// MemoryType selects the memory subtype. Structural subtypes are
// standard, secret, and human; short and long force the term; any core
// emotion makes the memory emotional.
type MemoryType string

const (
	MemoryStandard MemoryType = "standard"
	MemorySecret   MemoryType = "secret"
	MemoryHuman    MemoryType = "human"
	MemoryShort    MemoryType = "short"
	MemoryLong     MemoryType = "long"
)

// ParseMemoryType decodes a memory type; emotion names yield emotional
// subtypes carrying the emotion.
func ParseMemoryType(s string) (MemoryType, error) {
	t := strings.ToLower(strings.TrimSpace(s))
	switch t {
	case "standard":
		return MemoryStandard, nil
	case "secret":
		return MemorySecret, nil
	case "human":
		return MemoryHuman, nil
	case "short":
		return MemoryShort, nil
	case "long":
		return MemoryLong, nil
	}
	if IsCoreEmotion(t) {
		return MemoryType(t), nil
	}
	return "", Validationf("invalid memory type: %q", s)
}

// Emotion returns the emotion and true for emotional memory types.
func (m MemoryType) Emotion() (string, bool) {
	if IsCoreEmotion(string(m)) {
		return string(m), true
	}
	return "", false
}

// ShareLevel is an idea's visibility.
type ShareLevel string

const (
	SharePrivate ShareLevel = "private"
	ShareTeam    ShareLevel = "team"
	SharePublic  ShareLevel = "public"
)

// ParseShareLevel decodes a share level, accepting the conversational
// forms the tag format allows ("share", "dont share").
func ParseShareLevel(s string) (ShareLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "private", "dont share", "don't share":
		return SharePrivate, nil
	case "team":
		return ShareTeam, nil
	case "public", "share":
		return SharePublic, nil
	}
	return "", Validationf("invalid share level: %q", s)
}

// IdeaImportance is the idea importance scale.
type IdeaImportance string

const (
	IdeaLow          IdeaImportance = "low"
	IdeaMedium       IdeaImportance = "medium"
	IdeaHigh         IdeaImportance = "high"
	IdeaBreakthrough IdeaImportance = "breakthrough"
)

// ParseIdeaImportance decodes an idea importance level.
func ParseIdeaImportance(s string) (IdeaImportance, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return IdeaLow, nil
	case "medium":
		return IdeaMedium, nil
	case "high":
		return IdeaHigh, nil
	case "breakthrough":
		return IdeaBreakthrough, nil
	}
	return "", Validationf("invalid idea importance: %q", s)
}

// ItemStatus is the lifecycle of flat-collection artifacts.
type ItemStatus string

const (
	ItemActive   ItemStatus = "active"
	ItemArchived ItemStatus = "archived"
)

// ErrorSeverity is the severity of a recorded error.
type ErrorSeverity = Importance

// ErrorCategory classifies recorded errors.
type ErrorCategory string

const (
	CategoryNetwork        ErrorCategory = "network"
	CategoryDatabase       ErrorCategory = "database"
	CategoryAuthentication ErrorCategory = "authentication"
	CategoryAuthorization  ErrorCategory = "authorization"
	CategoryValidation     ErrorCategory = "validation"
	CategoryPerformance    ErrorCategory = "performance"
	CategorySecurity       ErrorCategory = "security"
	CategoryIntegration    ErrorCategory = "integration"
	CategoryConfiguration  ErrorCategory = "configuration"
	CategoryRuntime        ErrorCategory = "runtime"
	CategoryCompilation    ErrorCategory = "compilation"
	CategoryDependency     ErrorCategory = "dependency"
	CategoryUserError      ErrorCategory = "user_error"
	CategorySystemError    ErrorCategory = "system_error"
)

// ParseErrorCategory decodes an error category.
func ParseErrorCategory(s string) (ErrorCategory, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "network":
		return CategoryNetwork, nil
	case "database":
		return CategoryDatabase, nil
	case "authentication":
		return CategoryAuthentication, nil
	case "authorization":
		return CategoryAuthorization, nil
	case "validation":
		return CategoryValidation, nil
	case "performance":
		return CategoryPerformance, nil
	case "security":
		return CategorySecurity, nil
	case "integration":
		return CategoryIntegration, nil
	case "configuration":
		return CategoryConfiguration, nil
	case "runtime":
		return CategoryRuntime, nil
	case "compilation":
		return CategoryCompilation, nil
	case "dependency":
		return CategoryDependency, nil
	case "usererror", "user_error":
		return CategoryUserError, nil
	case "systemerror", "system_error":
		return CategorySystemError, nil
	}
	return "", Validationf("invalid error category: %q", s)
}

// TrainingDataType classifies training samples.
type TrainingDataType string

const (
	TrainInstruction   TrainingDataType = "instruction"
	TrainCompletion    TrainingDataType = "completion"
	TrainConversation  TrainingDataType = "conversation"
	TrainCode          TrainingDataType = "code"
	TrainAnalysis      TrainingDataType = "analysis"
	TrainPlanning      TrainingDataType = "planning"
	TrainReview        TrainingDataType = "review"
	TrainDocumentation TrainingDataType = "documentation"
	TrainExample       TrainingDataType = "example"
	TrainTest          TrainingDataType = "test"
	TrainValidation    TrainingDataType = "validation"
)

// ParseTrainingDataType decodes a training sample type.
func ParseTrainingDataType(s string) (TrainingDataType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "instruction":
		return TrainInstruction, nil
	case "completion":
		return TrainCompletion, nil
	case "conversation":
		return TrainConversation, nil
	case "code":
		return TrainCode, nil
	case "analysis":
		return TrainAnalysis, nil
	case "planning":
		return TrainPlanning, nil
	case "review":
		return TrainReview, nil
	case "documentation":
		return TrainDocumentation, nil
	case "example":
		return TrainExample, nil
	case "test":
		return TrainTest, nil
	case "validation":
		return TrainValidation, nil
	}
	return "", Validationf("invalid training data type: %q", s)
}

// ChunkLevel is a code chunk's place in the decomposition hierarchy.
type ChunkLevel string

const (
	LevelProject ChunkLevel = "project"
	LevelModule  ChunkLevel = "module"
	LevelClass   ChunkLevel = "class"
	LevelMethod  ChunkLevel = "method"
	LevelBlock   ChunkLevel = "block"
)

// ParseChunkLevel decodes a chunk level.
func ParseChunkLevel(s string) (ChunkLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "project":
		return LevelProject, nil
	case "module":
		return LevelModule, nil
	case "class":
		return LevelClass, nil
	case "method":
		return LevelMethod, nil
	case "block":
		return LevelBlock, nil
	}
	return "", Validationf("invalid chunk level: %q", s)
}

// ChunkStatus is a code chunk's persisted lifecycle state. Ready is
// derived from dependencies on read and never persisted.
type ChunkStatus string

const (
	ChunkPending    ChunkStatus = "pending"
	ChunkReady      ChunkStatus = "ready"
	ChunkInProgress ChunkStatus = "in_progress"
	ChunkDone       ChunkStatus = "done"
	ChunkFailed     ChunkStatus = "failed"
)

// ParseChunkStatus decodes a chunk status.
func ParseChunkStatus(s string) (ChunkStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return ChunkPending, nil
	case "ready":
		return ChunkReady, nil
	case "in_progress", "in-progress":
		return ChunkInProgress, nil
	case "done":
		return ChunkDone, nil
	case "failed":
		return ChunkFailed, nil
	}
	return "", Validationf("invalid chunk status: %q", s)
}

// QueueStatus is the planning-queue workflow state.
type QueueStatus string

const (
	QueueBacklog  QueueStatus = "backlog"
	QueueActive   QueueStatus = "active"
	QueueComplete QueueStatus = "complete"
)

// ParseQueueStatus decodes a queue status.
func ParseQueueStatus(s string) (QueueStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "backlog":
		return QueueBacklog, nil
	case "active":
		return QueueActive, nil
	case "complete":
		return QueueComplete, nil
	}
	return "", Validationf("invalid queue status: %q", s)
}

// ProjectStatus is a project's lifecycle state.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectArchived  ProjectStatus = "archived"
	ProjectCompleted ProjectStatus = "completed"
)

// ParseProjectStatus decodes a project status.
func ParseProjectStatus(s string) (ProjectStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active":
		return ProjectActive, nil
	case "archived":
		return ProjectArchived, nil
	case "completed":
		return ProjectCompleted, nil
	}
	return "", Validationf("invalid project status: %q", s)
}
