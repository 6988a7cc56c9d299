package validate

import (
	"strings"
	"testing"

	"github.com/tdzio/tdz/internal/model"
	"github.com/tdzio/tdz/internal/tags"
)

func TestTaskDefaults(t *testing.T) {
	task, err := Task(tags.TaskDraft{Action: "  write release notes ", Project: "launch"})
	if err != nil {
		t.Fatalf("Task: %v", err)
	}
	if task.Action != "write release notes" {
		t.Errorf("action = %q, want trimmed", task.Action)
	}
	if task.Priority != model.PriorityMedium {
		t.Errorf("priority = %q, want medium default", task.Priority)
	}
	if task.Status != model.StatusTodo {
		t.Errorf("status = %q, want todo default", task.Status)
	}
}

func TestTaskRejectsBadInput(t *testing.T) {
	cases := []struct {
		name  string
		draft tags.TaskDraft
	}{
		{"empty action", tags.TaskDraft{Action: "   ", Project: "p"}},
		{"empty project", tags.TaskDraft{Action: "do it"}},
		{"long action", tags.TaskDraft{Action: strings.Repeat("x", maxActionLen+1), Project: "p"}},
		{"unknown priority", tags.TaskDraft{Action: "do it", Project: "p", Priority: "urgent-ish"}},
	}
	for _, tc := range cases {
		if _, err := Task(tc.draft); !model.IsKind(err, model.KindValidation) {
			t.Errorf("%s: err = %v, want validation error", tc.name, err)
		}
	}
}

func TestTaskStatusAliases(t *testing.T) {
	task, err := Task(tags.TaskDraft{Action: "ship", Project: "p", Status: "Completed"})
	if err != nil {
		t.Fatalf("Task: %v", err)
	}
	if task.Status != model.StatusDone {
		t.Errorf("status = %q, want done via completed alias", task.Status)
	}
}

func TestProgress(t *testing.T) {
	n := func(v int) *int { return &v }
	if err := Progress(model.StatusInProgress, n(50)); err != nil {
		t.Errorf("in-range progress rejected: %v", err)
	}
	if err := Progress(model.StatusInProgress, n(101)); err == nil {
		t.Error("progress 101 accepted")
	}
	if err := Progress(model.StatusDone, n(40)); err == nil {
		t.Error("done task with progress 40 accepted")
	}
	if err := Progress(model.StatusDone, nil); err != nil {
		t.Errorf("done task with unset progress rejected: %v", err)
	}
}

func TestMemorySubtypes(t *testing.T) {
	cases := []struct {
		typeField string
		wantType  model.MemoryType
		wantTerm  model.MemoryTerm
		emotion   string
	}{
		{"standard", model.MemoryStandard, model.TermShort, ""},
		{"long", model.MemoryLong, model.TermLong, ""},
		{"short", model.MemoryShort, model.TermShort, ""},
		{"happy", model.MemoryType("happy"), model.TermShort, "happy"},
	}
	for _, tc := range cases {
		m, err := Memory(tags.MemoryDraft{Type: tc.typeField, Moment: "m", Meaning: "w", Reason: "r"})
		if err != nil {
			t.Fatalf("Memory(%q): %v", tc.typeField, err)
		}
		if m.MemoryType != tc.wantType {
			t.Errorf("%q: type = %q, want %q", tc.typeField, m.MemoryType, tc.wantType)
		}
		if m.Term != tc.wantTerm {
			t.Errorf("%q: term = %q, want %q", tc.typeField, m.Term, tc.wantTerm)
		}
		if m.Emotion != tc.emotion {
			t.Errorf("%q: emotion = %q, want %q", tc.typeField, m.Emotion, tc.emotion)
		}
	}
}

func TestMemoryTermForcedBySubtype(t *testing.T) {
	// An explicit term field loses to the short/long subtype.
	m, err := Memory(tags.MemoryDraft{Type: "long", Moment: "m", Meaning: "w", Reason: "r", Term: "short"})
	if err != nil {
		t.Fatalf("Memory: %v", err)
	}
	if m.Term != model.TermLong {
		t.Errorf("term = %q, want long forced by subtype", m.Term)
	}
}

func TestMemoryCoherence(t *testing.T) {
	m := model.NewMemory("m", "w", "r")
	m.MemoryType = model.MemoryType("happy")
	m.Emotion = "happy"
	if err := MemoryCoherence(m); err != nil {
		t.Errorf("coherent memory rejected: %v", err)
	}
	m.Emotion = "sad"
	if err := MemoryCoherence(m); err == nil {
		t.Error("mismatched emotion accepted")
	}
}

func TestIdeaDefaults(t *testing.T) {
	idea, err := Idea(tags.IdeaDraft{Idea: "cache embeddings locally"})
	if err != nil {
		t.Fatalf("Idea: %v", err)
	}
	if idea.Share != model.SharePrivate {
		t.Errorf("share = %q, want private default", idea.Share)
	}
	if idea.Importance != model.IdeaMedium {
		t.Errorf("importance = %q, want medium default", idea.Importance)
	}
	if _, err := Idea(tags.IdeaDraft{Idea: "  "}); !model.IsKind(err, model.KindValidation) {
		t.Errorf("empty idea: err = %v, want validation error", err)
	}
}

func TestFeelingIntensityClamped(t *testing.T) {
	f, err := Feeling(tags.FeelDraft{Emotion: "focused", Intensity: "14"})
	if err != nil {
		t.Fatalf("Feeling: %v", err)
	}
	if f.Intensity != 10 {
		t.Errorf("intensity = %d, want clamped to 10", f.Intensity)
	}
	f, err = Feeling(tags.FeelDraft{Emotion: "tired"})
	if err != nil {
		t.Fatalf("Feeling: %v", err)
	}
	if f.Intensity != 5 {
		t.Errorf("intensity = %d, want default 5", f.Intensity)
	}
	if _, err := Feeling(tags.FeelDraft{Emotion: "calm", Intensity: "lots"}); err == nil {
		t.Error("non-numeric intensity accepted")
	}
}

func TestTrainingQualityScore(t *testing.T) {
	sample, err := Training(tags.TrainDraft{DataType: "conversation", Prompt: "q", Completion: "a", QualityScore: "0.9"})
	if err != nil {
		t.Fatalf("Training: %v", err)
	}
	if sample.QualityScore == nil || *sample.QualityScore != 0.9 {
		t.Errorf("quality score = %v, want 0.9", sample.QualityScore)
	}
	if _, err := Training(tags.TrainDraft{DataType: "conversation", Prompt: "q", Completion: ""}); err == nil {
		t.Error("empty completion accepted")
	}
}

func TestErrorRecord(t *testing.T) {
	rec, err := ErrorRecord(tags.ErrorDraft{Title: "nil deref", Description: "crash on load", Severity: "high", Category: "runtime", Source: "loader"})
	if err != nil {
		t.Fatalf("ErrorRecord: %v", err)
	}
	if rec.Resolved {
		t.Error("new error record marked resolved")
	}
	if _, err := ErrorRecord(tags.ErrorDraft{Title: "x", Severity: "high", Category: "no-such-category"}); !model.IsKind(err, model.KindValidation) {
		t.Errorf("unknown category: err = %v, want validation error", err)
	}
}

func TestChunkGraph(t *testing.T) {
	mk := func(id string, deps ...string) model.CodeChunk {
		c := model.NewCodeChunk(id, model.LevelMethod, id)
		c.Dependencies = deps
		return c
	}
	ok := map[string]model.CodeChunk{
		"a": mk("a", "b"),
		"b": mk("b", "c"),
		"c": mk("c"),
		"d": mk("d", "missing"), // dangling refs are fine
	}
	if err := ChunkGraph(ok); err != nil {
		t.Errorf("acyclic graph rejected: %v", err)
	}
	cyclic := map[string]model.CodeChunk{
		"a": mk("a", "b"),
		"b": mk("b", "a"),
	}
	if err := ChunkGraph(cyclic); !model.IsKind(err, model.KindValidation) {
		t.Errorf("cycle: err = %v, want validation error", err)
	}
}

func TestCleanTags(t *testing.T) {
	got := CleanTags([]string{" a ", "", "b", "  "})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("CleanTags = %v, want [a b]", got)
	}
}
