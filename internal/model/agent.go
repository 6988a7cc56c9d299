package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// AgentStatus is an agent's availability.
type AgentStatus string

const (
	AgentActive   AgentStatus = "active"
	AgentInactive AgentStatus = "inactive"
	AgentTraining AgentStatus = "training"
)

// ModelConfig names the model an agent runs with.
type ModelConfig struct {
	Name        string  `json:"name"`
	Temperature float64 `json:"temperature"`
}

// AssignmentStatus is the lifecycle of a task assignment to an agent.
type AssignmentStatus string

const (
	AssignmentAssigned   AssignmentStatus = "assigned"
	AssignmentAccepted   AssignmentStatus = "accepted"
	AssignmentInProgress AssignmentStatus = "in_progress"
	AssignmentCompleted  AssignmentStatus = "completed"
	AssignmentFailed     AssignmentStatus = "failed"
)

// AgentAssignment links an agent to a task inside a project.
type AgentAssignment struct {
	AgentID    string           `json:"agent_id"`
	TaskID     string           `json:"task_id"`
	ProjectID  string           `json:"project_id"`
	AssignedAt time.Time        `json:"assigned_at"`
	Status     AssignmentStatus `json:"status"`
}

// Agent is a named AI collaborator. Agents are persisted one file each
// under agents/<id>.json; assignments ride along in the agent file and
// reference tasks by id only.
type Agent struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Description  string            `json:"description,omitempty"`
	Capabilities []string          `json:"capabilities,omitempty"`
	Model        ModelConfig       `json:"model"`
	Status       AgentStatus       `json:"status"`
	Assignments  []AgentAssignment `json:"assignments,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// NewAgent builds an active agent.
func NewAgent(id, name, description string) Agent {
	now := Now()
	return Agent{
		ID:          id,
		Name:        name,
		Description: description,
		Model:       ModelConfig{Name: "default", Temperature: 0.7},
		Status:      AgentActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// APIKey is a named credential. Only the sha256 of the key material is
// stored.
type APIKey struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	KeyHash   string     `json:"key_hash"`
	Revoked   bool       `json:"revoked"`
	LastUsed  *time.Time `json:"last_used,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewAPIKey builds a key record from raw key material.
func NewAPIKey(name, raw string) APIKey {
	now := Now()
	return APIKey{
		ID:        NewID(),
		Name:      name,
		KeyHash:   HashKey(raw),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HashKey returns the sha256 hex digest of raw key material.
func HashKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Verify reports whether raw matches the stored hash and the key is live.
func (k APIKey) Verify(raw string) bool {
	return !k.Revoked && k.KeyHash == HashKey(raw)
}
