package model

import (
	"errors"
	"testing"
)

func TestParseStatusAliases(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"todo", StatusTodo},
		{"pending", StatusTodo},
		{"In-Progress", StatusInProgress},
		{"in_progress", StatusInProgress},
		{"completed", StatusDone},
		{"done", StatusDone},
		{"canceled", StatusCancelled},
		{"cancelled", StatusCancelled},
		{"deferred", StatusDeferred},
	}
	for _, tt := range tests {
		got, err := ParseStatus(tt.in)
		if err != nil {
			t.Errorf("ParseStatus(%q): unexpected error %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if _, err := ParseStatus("napping"); !IsKind(err, KindValidation) {
		t.Errorf("expected validation error for unknown status, got %v", err)
	}
}

func TestParseAssignee(t *testing.T) {
	if a, _ := ParseAssignee("AI"); a != AssigneeAI {
		t.Errorf("got %q", a)
	}
	if a, _ := ParseAssignee("agent:planner"); a != AgentAssignee("planner") {
		t.Errorf("got %q", a)
	}
	// Bare agent names are agents too.
	a, err := ParseAssignee("planner")
	if err != nil {
		t.Fatal(err)
	}
	name, ok := a.AgentName()
	if !ok || name != "planner" {
		t.Errorf("AgentName() = %q, %v", name, ok)
	}
}

func TestParseMemoryType(t *testing.T) {
	mt, err := ParseMemoryType("happy")
	if err != nil {
		t.Fatal(err)
	}
	emotion, ok := mt.Emotion()
	if !ok || emotion != "happy" {
		t.Errorf("Emotion() = %q, %v", emotion, ok)
	}

	mt, err = ParseMemoryType("standard")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := mt.Emotion(); ok {
		t.Error("standard memory should not be emotional")
	}

	if _, err := ParseMemoryType("melancholy"); err == nil {
		t.Error("expected error for unknown memory type")
	}
}

func TestParseShareLevelConversationalForms(t *testing.T) {
	if s, _ := ParseShareLevel("share"); s != SharePublic {
		t.Errorf("got %q", s)
	}
	if s, _ := ParseShareLevel("don't share"); s != SharePrivate {
		t.Errorf("got %q", s)
	}
	if s, _ := ParseShareLevel("team"); s != ShareTeam {
		t.Errorf("got %q", s)
	}
}

func TestParseKindPlural(t *testing.T) {
	for in, want := range map[string]Kind{
		"tasks":    KindTask,
		"memories": KindMemory,
		"ideas":    KindIdea,
		"errors":   KindError,
		"training": KindTraining,
	} {
		got, err := ParseKind(in)
		if err != nil {
			t.Errorf("ParseKind(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseKind(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestErrorKindMatching(t *testing.T) {
	err := NotFound("task", "abc")
	if !IsKind(err, KindNotFound) {
		t.Error("expected not_found kind")
	}
	wrapped := errors.Join(errors.New("outer"), err)
	if KindOf(wrapped) != KindNotFound {
		t.Error("KindOf should see through wrapping")
	}
}

func TestEffectiveChunkStatus(t *testing.T) {
	c := NewCodeChunk("c1", LevelMethod, "parse header")
	c.Dependencies = []string{"c0"}

	status := c.EffectiveStatus(func(string) bool { return false })
	if status != ChunkPending {
		t.Errorf("got %q, want pending", status)
	}
	status = c.EffectiveStatus(func(string) bool { return true })
	if status != ChunkReady {
		t.Errorf("got %q, want ready", status)
	}

	c.Status = ChunkDone
	if got := c.EffectiveStatus(func(string) bool { return false }); got != ChunkDone {
		t.Errorf("non-pending status must pass through, got %q", got)
	}
}
