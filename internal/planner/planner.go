// Package planner delegates free-form extraction ("turn this prose
// into tasks") to a remote AI endpoint. The store is never touched on
// failure; callers persist the extracted drafts themselves.
package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/tdzio/tdz/internal/model"
)

// Client posts extraction requests to a configured endpoint.
type Client struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// New builds a client. endpoint is the full URL of the extraction API.
func New(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

type request struct {
	Message string `json:"message"`
	Context string `json:"context,omitempty"`
}

// Extraction is the remote endpoint's structured answer.
type Extraction struct {
	Tasks    []ExtractedTask   `json:"tasks"`
	Memories []ExtractedMemory `json:"memories"`
	Ideas    []ExtractedIdea   `json:"ideas"`
}

// ExtractedTask is one task suggestion from the planner.
type ExtractedTask struct {
	Action   string `json:"action"`
	Time     string `json:"time,omitempty"`
	Priority string `json:"priority,omitempty"`
	Project  string `json:"project,omitempty"`
}

// ExtractedMemory is one memory suggestion from the planner.
type ExtractedMemory struct {
	Moment  string `json:"moment"`
	Meaning string `json:"meaning,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// ExtractedIdea is one idea suggestion from the planner.
type ExtractedIdea struct {
	Idea       string `json:"idea"`
	Importance string `json:"importance,omitempty"`
}

type response struct {
	ExtractedContent Extraction `json:"extracted_content"`
}

// Extract sends message and context to the endpoint and decodes the
// extraction. Deadlines come from ctx; failures map to Unavailable.
func (c *Client) Extract(ctx context.Context, message, contextText string) (Extraction, error) {
	if c.endpoint == "" {
		return Extraction{}, model.Unavailablef("no planner endpoint configured")
	}
	body, err := json.Marshal(request{Message: message, Context: contextText})
	if err != nil {
		return Extraction{}, model.Unavailablef("encode planner request: %v", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Extraction{}, model.Unavailablef("build planner request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return Extraction{}, model.Cancelled(ctx.Err())
		}
		return Extraction{}, model.Unavailablef("planner request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Extraction{}, model.Unavailablef("planner error %d: %s", resp.StatusCode, string(b))
	}
	var decoded response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Extraction{}, model.Unavailablef("decode planner response: %v", err)
	}
	return decoded.ExtractedContent, nil
}

// TaskRecords converts the extraction's task suggestions into store-ready
// records, applying the usual defaults. Bad suggestions are dropped.
func (e Extraction) TaskRecords(defaultProject string) []model.Task {
	var out []model.Task
	for _, t := range e.Tasks {
		if t.Action == "" {
			continue
		}
		priority := model.PriorityMedium
		if t.Priority != "" {
			if p, err := model.ParsePriority(t.Priority); err == nil {
				priority = p
			}
		}
		project := t.Project
		if project == "" {
			project = defaultProject
		}
		if project == "" {
			continue
		}
		out = append(out, model.NewTask(t.Action, t.Time, priority, project, model.StatusTodo))
	}
	return out
}
