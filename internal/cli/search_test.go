package cli

import (
	"testing"

	"github.com/tdzio/tdz/internal/model"
	"github.com/tdzio/tdz/internal/search"
)

func TestFlattenResultsPrefersTopRanking(t *testing.T) {
	envlp := search.Envelope{
		TaskResults: []model.Task{{ID: "t1", Action: "ship release"}},
		IdeaResults: []model.Idea{{ID: "i1", Idea: "release checklist"}},
		Top: []search.Result{
			{Kind: model.KindIdea, ID: "i1", Text: "release checklist", Score: 0.9},
			{Kind: model.KindTask, ID: "t1", Text: "ship release", Score: 0.7},
		},
	}

	rows := flattenResults(envlp)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].kind != model.KindIdea || rows[0].id != "i1" {
		t.Fatalf("rows[0] = %s:%s, want idea:i1", rows[0].kind, rows[0].id)
	}
	if rows[1].kind != model.KindTask {
		t.Fatalf("rows[1].kind = %s, want task", rows[1].kind)
	}
}

func TestFlattenResultsPerKindOrder(t *testing.T) {
	envlp := search.Envelope{
		TaskResults:   []model.Task{{ID: "t1", Action: "fix parser", ParentProject: "infra"}},
		MemoryResults: []model.Memory{{ID: "m1", Moment: "parser bug root cause", MemoryType: model.MemoryStandard}},
		ErrorResults:  []model.ErrorRecord{{ID: "e1", Title: "panic in parser"}},
	}

	rows := flattenResults(envlp)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0].kind != model.KindTask {
		t.Errorf("rows[0].kind = %s, want task", rows[0].kind)
	}
	if rows[1].kind != model.KindMemory {
		t.Errorf("rows[1].kind = %s, want memory", rows[1].kind)
	}
	if rows[2].kind != model.KindError {
		t.Errorf("rows[2].kind = %s, want error", rows[2].kind)
	}
	if rows[0].meta != "infra" {
		t.Errorf("rows[0].meta = %q, want project name", rows[0].meta)
	}
}
