package cli

import (
	"testing"

	"github.com/tdzio/tdz/internal/ingest"
	"github.com/tdzio/tdz/internal/model"
	"github.com/tdzio/tdz/internal/tags"
)

func TestIngestWarnings(t *testing.T) {
	report := &ingest.Report{
		Errors: []tags.FragmentError{
			{Fragment: "<todozi>broken", Offset: 10, Reason: "unterminated fragment"},
		},
		Items: []ingest.ItemResult{
			{Kind: model.KindTask, ID: "t1"},
			{Kind: model.KindIdea, Skipped: true},
		},
		Commands: []ingest.CommandResult{
			{Command: "list", Target: "tasks", Handled: true},
			{Command: "deploy", Target: "prod", Handled: false},
		},
	}

	warnings := ingestWarnings(report)
	if len(warnings) != 3 {
		t.Fatalf("got %d warnings, want 3", len(warnings))
	}
	if warnings[0].Code != WarnFragmentSkipped {
		t.Errorf("warnings[0].Code = %q, want %q", warnings[0].Code, WarnFragmentSkipped)
	}
	if warnings[0].Message != "unterminated fragment" {
		t.Errorf("warnings[0].Message = %q", warnings[0].Message)
	}
	if warnings[1].Code != WarnDuplicateInput {
		t.Errorf("warnings[1].Code = %q, want %q", warnings[1].Code, WarnDuplicateInput)
	}
	if warnings[2].Code != WarnCommandUnhandled {
		t.Errorf("warnings[2].Code = %q, want %q", warnings[2].Code, WarnCommandUnhandled)
	}
}

func TestIngestWarningsEmptyReport(t *testing.T) {
	if got := ingestWarnings(&ingest.Report{}); got != nil {
		t.Fatalf("got %v, want nil", got)
	}
}

func TestPluralize(t *testing.T) {
	if got := pluralize(1, "task", "tasks"); got != "task" {
		t.Errorf("pluralize(1) = %q", got)
	}
	if got := pluralize(2, "task", "tasks"); got != "tasks" {
		t.Errorf("pluralize(2) = %q", got)
	}
	if got := pluralize(0, "task", "tasks"); got != "tasks" {
		t.Errorf("pluralize(0) = %q", got)
	}
}
