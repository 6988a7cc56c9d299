package model

import "time"

// QueueItem is an entry in the planning queue.
type QueueItem struct {
	ID          string      `json:"id"`
	TaskName    string      `json:"task_name"`
	Description string      `json:"task_description"`
	Priority    Priority    `json:"priority"`
	ProjectID   string      `json:"project_id,omitempty"`
	Status      QueueStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// NewQueueItem builds a backlog queue item.
func NewQueueItem(name, description string, priority Priority, projectID string) QueueItem {
	now := Now()
	return QueueItem{
		ID:          NewID(),
		TaskName:    name,
		Description: description,
		Priority:    priority,
		ProjectID:   projectID,
		Status:      QueueBacklog,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// QueueSession is one timed working session on a queue item. At most one
// session per item may be open at a time.
type QueueSession struct {
	SessionID       string     `json:"session_id"`
	QueueItemID     string     `json:"queue_item_id"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationSeconds *int64     `json:"duration_seconds,omitempty"`
}

// Open reports whether the session has not ended yet.
func (s QueueSession) Open() bool { return s.EndTime == nil }

// Project groups tasks into partitions. Name is the unique key.
type Project struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Status      ProjectStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// NewProject builds an active project.
func NewProject(name, description string) Project {
	now := Now()
	return Project{
		Name:        name,
		Description: description,
		Status:      ProjectActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
