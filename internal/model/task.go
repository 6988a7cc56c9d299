package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Task is a unit of work owned by a project partition.
type Task struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	Action        string     `json:"action"`
	Time          string     `json:"time"`
	Priority      Priority   `json:"priority"`
	ParentProject string     `json:"parent_project"`
	Status        Status     `json:"status"`
	Assignee      Assignee   `json:"assignee,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
	Dependencies  []string   `json:"dependencies,omitempty"`
	ContextNotes  string     `json:"context_notes,omitempty"`
	Progress      *int       `json:"progress,omitempty"`
	Embedding     []float32  `json:"embedding,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// NewTask builds a task with generated id and timestamps.
func NewTask(action, timeEstimate string, priority Priority, project string, status Status) Task {
	now := Now()
	return Task{
		ID:            NewID(),
		UserID:        "anonymous",
		Action:        action,
		Time:          timeEstimate,
		Priority:      priority,
		ParentProject: project,
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// SearchText returns the textual projection indexed for this task.
func (t Task) SearchText() string {
	parts := []string{t.Action}
	if t.ContextNotes != "" {
		parts = append(parts, t.ContextNotes)
	}
	if len(t.Tags) > 0 {
		parts = append(parts, strings.Join(t.Tags, " "))
	}
	return strings.Join(parts, " ")
}

// TaskUpdate is a partial patch applied by the store's update operation.
// Nil fields are left unchanged.
type TaskUpdate struct {
	Action       *string   `json:"action,omitempty"`
	Time         *string   `json:"time,omitempty"`
	Priority     *Priority `json:"priority,omitempty"`
	Project      *string   `json:"parent_project,omitempty"`
	Status       *Status   `json:"status,omitempty"`
	Assignee     *Assignee `json:"assignee,omitempty"`
	Tags         *[]string `json:"tags,omitempty"`
	Dependencies *[]string `json:"dependencies,omitempty"`
	ContextNotes *string   `json:"context_notes,omitempty"`
	Progress     *int      `json:"progress,omitempty"`
}

// Apply copies the patch onto the task in place. The caller re-validates
// and refreshes UpdatedAt.
func (u TaskUpdate) Apply(t *Task) {
	if u.Action != nil {
		t.Action = *u.Action
	}
	if u.Time != nil {
		t.Time = *u.Time
	}
	if u.Priority != nil {
		t.Priority = *u.Priority
	}
	if u.Project != nil {
		t.ParentProject = *u.Project
	}
	if u.Status != nil {
		t.Status = *u.Status
	}
	if u.Assignee != nil {
		t.Assignee = *u.Assignee
	}
	if u.Tags != nil {
		t.Tags = *u.Tags
	}
	if u.Dependencies != nil {
		t.Dependencies = *u.Dependencies
	}
	if u.ContextNotes != nil {
		t.ContextNotes = *u.ContextNotes
	}
	if u.Progress != nil {
		t.Progress = u.Progress
	}
}

// TaskFilters selects tasks in list operations. Zero values match everything.
type TaskFilters struct {
	Project  string
	Status   Status
	Priority Priority
	Assignee Assignee
	Tags     []string // any-match
	Text     string   // case-insensitive substring over action and notes
}

// Matches reports whether the task satisfies every set filter.
func (f TaskFilters) Matches(t Task) bool {
	if f.Project != "" && t.ParentProject != f.Project {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Assignee != "" && t.Assignee != f.Assignee {
		return false
	}
	if len(f.Tags) > 0 && !anyTagMatch(f.Tags, t.Tags) {
		return false
	}
	if f.Text != "" {
		needle := strings.ToLower(f.Text)
		if !strings.Contains(strings.ToLower(t.Action), needle) &&
			!strings.Contains(strings.ToLower(t.ContextNotes), needle) {
			return false
		}
	}
	return true
}

func anyTagMatch(want, have []string) bool {
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(w, h) {
				return true
			}
		}
	}
	return false
}

// NewID returns a fresh random 128-bit identifier in UUID form.
func NewID() string { return uuid.NewString() }

// Now returns the current UTC time truncated to second resolution,
// matching the on-disk timestamp format.
func Now() time.Time { return time.Now().UTC().Truncate(time.Second) }
