package ingest

import (
	"context"
	"strings"
	"testing"

	"github.com/tdzio/tdz/internal/index"
	"github.com/tdzio/tdz/internal/model"
	"github.com/tdzio/tdz/internal/search"
	"github.com/tdzio/tdz/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestIngestMixedBatch(t *testing.T) {
	st := newTestStore(t)
	f := New(st)

	text := `Planning notes from today.
<todozi>refactor config loading;3h;high;infra;todo</todozi>
<memory>standard;shipped the beta;users are happy;worth remembering;high;long</memory>
<idea>cache config between runs;private;high</idea>
<feel>relieved;7;beta is out the door</feel>`

	report, err := f.Ingest(context.Background(), text)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if report.Persisted != 4 || report.Failed != 0 {
		t.Fatalf("persisted = %d, failed = %d: %+v", report.Persisted, report.Failed, report.Items)
	}
	for kind, want := range map[model.Kind]int{
		model.KindTask: 1, model.KindMemory: 1, model.KindIdea: 1, model.KindFeeling: 1,
	} {
		if report.Counts[kind] != want {
			t.Errorf("count[%s] = %d, want %d", kind, report.Counts[kind], want)
		}
	}

	tasks, err := st.ListTasks(model.TaskFilters{})
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 1 || tasks[0].ParentProject != "infra" {
		t.Errorf("tasks = %+v", tasks)
	}
}

func TestIngestBadFragmentDoesNotAbortBatch(t *testing.T) {
	st := newTestStore(t)
	f := New(st)

	text := `<todozi>only two;fields</todozi>
<idea>this one is fine;private;high</idea>`
	report, err := f.Ingest(context.Background(), text)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if len(report.Errors) != 1 {
		t.Errorf("errors = %+v, want 1 fragment error", report.Errors)
	}
	if report.Persisted != 1 || report.Counts[model.KindIdea] != 1 {
		t.Errorf("report = %+v", report)
	}
}

func TestIngestValidationFailureRecorded(t *testing.T) {
	st := newTestStore(t)
	f := New(st)

	// Enough fields to parse, but the priority enum is garbage.
	report, err := f.Ingest(context.Background(), "<todozi>do it;1h;someday;p;todo</todozi>")
	if err != nil {
		t.Fatal(err)
	}
	if report.Failed != 1 || report.Persisted != 0 {
		t.Fatalf("report = %+v", report)
	}
	if report.Items[0].Error == "" {
		t.Error("item error message missing")
	}
}

func TestIngestDedupe(t *testing.T) {
	st := newTestStore(t)
	f := New(st, WithDedupe())

	text := "<idea>only once;private;high</idea>"
	if _, err := f.Ingest(context.Background(), text); err != nil {
		t.Fatal(err)
	}
	report, err := f.Ingest(context.Background(), text)
	if err != nil {
		t.Fatal(err)
	}
	if report.Skipped != 1 || report.Persisted != 0 {
		t.Errorf("report = %+v, want duplicate skipped", report)
	}
	ideas, _ := st.ListIdeas()
	if len(ideas) != 1 {
		t.Errorf("ideas = %d, want 1", len(ideas))
	}
}

func TestIngestWithoutDedupeCreatesNewArtifacts(t *testing.T) {
	st := newTestStore(t)
	f := New(st)
	for i := 0; i < 2; i++ {
		if _, err := f.Ingest(context.Background(), "<idea>twice;private;high</idea>"); err != nil {
			t.Fatal(err)
		}
	}
	ideas, _ := st.ListIdeas()
	if len(ideas) != 2 {
		t.Errorf("ideas = %d, want 2 without dedupe", len(ideas))
	}
}

func TestCommandRouting(t *testing.T) {
	st := newTestStore(t)
	idx, err := index.OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()
	st.Notify(func(ev store.ChangeEvent) { idx.Apply(st, ev) })
	eng := search.New(st, idx, nil, 0)
	f := New(st, WithSearch(eng))

	seed := `<todozi>find me later;1h;low;p;todo</todozi>`
	if _, err := f.Ingest(context.Background(), seed); err != nil {
		t.Fatal(err)
	}

	report, err := f.Ingest(context.Background(), `<tdz>list;tasks</tdz><tdz>search;tasks;find</tdz><tdz>run;agent;planner</tdz>`)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Commands) != 3 {
		t.Fatalf("commands = %+v", report.Commands)
	}
	if !report.Commands[0].Handled {
		t.Errorf("list not handled: %+v", report.Commands[0])
	}
	listed, ok := report.Commands[0].Output.([]model.Task)
	if !ok || len(listed) != 1 {
		t.Errorf("list output = %#v", report.Commands[0].Output)
	}
	if !report.Commands[1].Handled {
		t.Errorf("search not handled: %+v", report.Commands[1])
	}
	if report.Commands[2].Handled {
		t.Errorf("run should be unhandled: %+v", report.Commands[2])
	}
}

func TestCommandCreateQueueItem(t *testing.T) {
	st := newTestStore(t)
	f := New(st)
	report, err := f.Ingest(context.Background(), `<tdz>create;queue;spike embeddings;priority=high</tdz>`)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Commands) != 1 || !report.Commands[0].Handled {
		t.Fatalf("commands = %+v", report.Commands)
	}
	items, _ := st.ListQueue("")
	if len(items) != 1 || items[0].Priority != model.PriorityHigh {
		t.Errorf("queue = %+v", items)
	}
}

func TestCommandUpdateTask(t *testing.T) {
	st := newTestStore(t)
	f := New(st)

	seed, err := f.Ingest(context.Background(), `<todozi>tune retries;1h;low;infra;todo</todozi>`)
	if err != nil {
		t.Fatal(err)
	}
	id := seed.Items[0].ID

	report, err := f.Ingest(context.Background(), `<tdz>update;task;`+id+`;status=done;priority=high</tdz>`)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Commands) != 1 || !report.Commands[0].Handled {
		t.Fatalf("commands = %+v", report.Commands)
	}
	got, err := st.GetTask(id)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != model.StatusDone || got.Priority != model.PriorityHigh {
		t.Errorf("task after update = %+v", got)
	}

	bad, err := f.Ingest(context.Background(), `<tdz>update;task;`+id+`;flavor=mint</tdz>`)
	if err != nil {
		t.Fatal(err)
	}
	if bad.Commands[0].Handled || bad.Commands[0].Error == "" {
		t.Errorf("unknown field should fail: %+v", bad.Commands[0])
	}

	other, err := f.Ingest(context.Background(), `<tdz>update;memory;`+id+`;meaning=x</tdz>`)
	if err != nil {
		t.Fatal(err)
	}
	if other.Commands[0].Handled {
		t.Errorf("update on non-task should stay unhandled: %+v", other.Commands[0])
	}
}

func TestIngestOversizedInput(t *testing.T) {
	st := newTestStore(t)
	f := New(st)
	if _, err := f.Ingest(context.Background(), strings.Repeat("x", 101*1024)); err == nil {
		t.Error("oversized input accepted")
	}
}

func TestIngestCancelledContext(t *testing.T) {
	st := newTestStore(t)
	f := New(st)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := f.Ingest(ctx, "<idea>never stored;private;high</idea>")
	if err != nil {
		t.Fatal(err)
	}
	if report.Failed != 1 || report.Persisted != 0 {
		t.Errorf("report = %+v, want cancelled failure", report)
	}
	ideas, _ := st.ListIdeas()
	if len(ideas) != 0 {
		t.Error("cancelled ingest still wrote")
	}
}
