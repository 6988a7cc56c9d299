package planner

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tdzio/tdz/internal/model"
)

func TestExtract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["message"] != "ship the release and remember the retro insight" {
			t.Fatalf("unexpected message: %q", req["message"])
		}
		json.NewEncoder(w).Encode(map[string]any{
			"extracted_content": map[string]any{
				"tasks": []map[string]string{
					{"action": "ship the release", "priority": "high", "project": "platform"},
				},
				"memories": []map[string]string{
					{"moment": "retro insight", "meaning": "smaller batches"},
				},
				"ideas": []map[string]string{},
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	ex, err := c.Extract(context.Background(), "ship the release and remember the retro insight", "")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(ex.Tasks) != 1 || ex.Tasks[0].Action != "ship the release" {
		t.Fatalf("unexpected tasks: %+v", ex.Tasks)
	}
	if len(ex.Memories) != 1 || ex.Memories[0].Meaning != "smaller batches" {
		t.Fatalf("unexpected memories: %+v", ex.Memories)
	}
}

func TestExtractServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "").Extract(context.Background(), "hello", "")
	if !model.IsKind(err, model.KindUnavailable) {
		t.Fatalf("want Unavailable, got %v", err)
	}
}

func TestExtractCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := New(srv.URL, "").Extract(ctx, "hello", "")
	if !model.IsKind(err, model.KindCancelled) {
		t.Fatalf("want Cancelled, got %v", err)
	}
}

func TestExtractNoEndpoint(t *testing.T) {
	_, err := New("", "").Extract(context.Background(), "hello", "")
	if !model.IsKind(err, model.KindUnavailable) {
		t.Fatalf("want Unavailable, got %v", err)
	}
}

func TestTaskRecords(t *testing.T) {
	ex := Extraction{Tasks: []ExtractedTask{
		{Action: "write docs", Priority: "high", Project: "platform"},
		{Action: "triage bugs"},
		{Action: ""},
		{Action: "no project, no default"},
	}}
	got := ex.TaskRecords("inbox")
	if len(got) != 3 {
		t.Fatalf("want 3 tasks, got %d", len(got))
	}
	if got[0].Priority != model.PriorityHigh || got[0].ParentProject != "platform" {
		t.Fatalf("unexpected first record: %+v", got[0])
	}
	if got[1].Priority != model.PriorityMedium || got[1].ParentProject != "inbox" {
		t.Fatalf("unexpected defaults: %+v", got[1])
	}
}
