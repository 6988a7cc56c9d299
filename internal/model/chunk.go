package model

import "time"

// CodeChunk is a node in the task-decomposition DAG. Dependencies refer
// to other chunk ids; the graph must stay acyclic.
type CodeChunk struct {
	ChunkID         string      `json:"chunk_id"`
	Level           ChunkLevel  `json:"level"`
	Description     string      `json:"description"`
	Dependencies    []string    `json:"dependencies,omitempty"`
	Code            string      `json:"code,omitempty"`
	Tests           string      `json:"tests,omitempty"`
	Validated       bool        `json:"validated"`
	Status          ChunkStatus `json:"status"`
	EstimatedTokens int         `json:"estimated_tokens,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// NewCodeChunk builds a pending chunk.
func NewCodeChunk(chunkID string, level ChunkLevel, description string) CodeChunk {
	now := Now()
	return CodeChunk{
		ChunkID:     chunkID,
		Level:       level,
		Description: description,
		Status:      ChunkPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// MaxTokens returns the generation budget for the chunk's level.
func (l ChunkLevel) MaxTokens() int {
	switch l {
	case LevelProject:
		return 8000
	case LevelModule:
		return 4000
	case LevelClass:
		return 2000
	case LevelMethod:
		return 1000
	case LevelBlock:
		return 500
	}
	return 1000
}

// EffectiveStatus derives the chunk's visible status: a pending chunk
// whose dependencies are all done is ready. Ready is never persisted.
func (c CodeChunk) EffectiveStatus(done func(id string) bool) ChunkStatus {
	if c.Status != ChunkPending {
		return c.Status
	}
	for _, dep := range c.Dependencies {
		if !done(dep) {
			return ChunkPending
		}
	}
	return ChunkReady
}
