package tags

import (
	"strings"
	"testing"
)

func TestParseMixedBatch(t *testing.T) {
	text := `Kickoff meeting. <todozi>Write project charter;2 days;high;atlas;todo</todozi>
Don't forget: <memory>standard;2025-01-13 10:30;client prefers weekly demos;affects cadence;high;long</memory>
Also <idea>sharded storage layer;team;high</idea> and <garbage>ignored</garbage>.`

	batch, err := Parse(text)
	if err != nil {
		t.Fatal(err)
	}
	if len(batch.Errors) != 0 {
		t.Fatalf("expected no fragment errors, got %v", batch.Errors)
	}
	if len(batch.Tasks) != 1 || len(batch.Memories) != 1 || len(batch.Ideas) != 1 {
		t.Fatalf("unexpected counts: %d tasks, %d memories, %d ideas",
			len(batch.Tasks), len(batch.Memories), len(batch.Ideas))
	}

	task := batch.Tasks[0]
	if task.Action != "Write project charter" || task.Priority != "high" ||
		task.Project != "atlas" || task.Status != "todo" {
		t.Errorf("unexpected task draft: %+v", task)
	}
	mem := batch.Memories[0]
	if mem.Type != "standard" || mem.Term != "long" || mem.Importance != "high" {
		t.Errorf("unexpected memory draft: %+v", mem)
	}
	idea := batch.Ideas[0]
	if idea.Share != "team" || idea.Importance != "high" {
		t.Errorf("unexpected idea draft: %+v", idea)
	}
}

func TestParseShorthandAliases(t *testing.T) {
	batch, err := Parse(`<tz>Fix bug;1h;high;core;todo</tz> <mm>happy;shipped;team won;morale;high;short</mm>`)
	if err != nil {
		t.Fatal(err)
	}
	if len(batch.Tasks) != 1 {
		t.Fatalf("shorthand <tz> not expanded: %+v", batch)
	}
	if len(batch.Memories) != 1 || batch.Memories[0].Type != "happy" {
		t.Fatalf("shorthand <mm> not expanded: %+v", batch)
	}
}

func TestParseOptionalFields(t *testing.T) {
	batch, err := Parse(`<todozi>Implement OAuth2;6 hours;high;web;todo;human;auth,backend</todozi>`)
	if err != nil {
		t.Fatal(err)
	}
	task := batch.Tasks[0]
	if task.Assignee != "human" {
		t.Errorf("assignee = %q", task.Assignee)
	}
	if len(task.Tags) != 2 || task.Tags[0] != "auth" || task.Tags[1] != "backend" {
		t.Errorf("tags = %v", task.Tags)
	}
}

func TestParseMalformedFragments(t *testing.T) {
	// Too few fields: dropped with exactly one error.
	batch, err := Parse(`<todozi>just an action;1h</todozi>`)
	if err != nil {
		t.Fatal(err)
	}
	if len(batch.Tasks) != 0 || len(batch.Errors) != 1 {
		t.Fatalf("expected 1 error and no drafts, got %+v", batch)
	}
	if batch.Errors[0].Fragment != "todozi" {
		t.Errorf("error fragment = %q", batch.Errors[0].Fragment)
	}

	// Unterminated fragment: error recorded; a later fragment still parses.
	batch, err = Parse(`<memory>standard;a;b;c;high <idea>good idea;team;high</idea>`)
	if err != nil {
		t.Fatal(err)
	}
	if len(batch.Errors) != 1 || len(batch.Ideas) != 1 {
		t.Fatalf("unterminated handling wrong: %+v", batch)
	}
}

func TestParseTdzCommands(t *testing.T) {
	batch, err := Parse(`<tdz>list;tasks</tdz> then <tdz>update;task;abc-123;status=done</tdz>`)
	if err != nil {
		t.Fatal(err)
	}
	if len(batch.Commands) != 2 {
		t.Fatalf("got %d commands", len(batch.Commands))
	}
	first, second := batch.Commands[0], batch.Commands[1]
	if first.Command != "list" || first.Target != "tasks" {
		t.Errorf("first command: %+v", first)
	}
	if second.Command != "update" || len(second.Args) != 1 || second.Args[0] != "abc-123" {
		t.Errorf("second command: %+v", second)
	}
	if second.Options["status"] != "done" {
		t.Errorf("options: %v", second.Options)
	}
	if !first.KnownVerb() {
		t.Error("list should be a known verb")
	}
}

func TestParseInputCaps(t *testing.T) {
	if _, err := Parse(strings.Repeat("x", MaxInputBytes+1)); err == nil {
		t.Error("expected error for oversized input")
	}

	big := "<todozi>" + strings.Repeat("a", MaxPayloadBytes+1) + "</todozi>"
	batch, err := Parse(big)
	if err != nil {
		t.Fatal(err)
	}
	if len(batch.Errors) != 1 || !strings.Contains(batch.Errors[0].Reason, "4 KB") {
		t.Fatalf("expected payload cap error, got %+v", batch.Errors)
	}
}

func TestParseDraftCountMatchesFragments(t *testing.T) {
	text := `<todozi>a;b;high;p;todo</todozi><idea>x;team;low</idea>` +
		`<feel>happy;7;won the demo</feel><chunk>c1;method;parse header</chunk>` +
		`<train>instruction;q;a;chat</train><error>boom;stack;high;runtime;api</error>`
	batch, err := Parse(text)
	if err != nil {
		t.Fatal(err)
	}
	if batch.DraftCount() != 6 {
		t.Errorf("DraftCount = %d, want 6", batch.DraftCount())
	}
	if len(batch.Errors) != 0 {
		t.Errorf("errors: %v", batch.Errors)
	}
}

func TestFragmentOffsets(t *testing.T) {
	text := "prefix <idea>x;team;low</idea>"
	batch, err := Parse(text)
	if err != nil {
		t.Fatal(err)
	}
	if batch.Ideas[0].Offset != strings.Index(text, "<idea>") {
		t.Errorf("offset = %d", batch.Ideas[0].Offset)
	}
}
