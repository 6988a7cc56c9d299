package search

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/tdzio/tdz/internal/index"
	"github.com/tdzio/tdz/internal/model"
	"github.com/tdzio/tdz/internal/store"
)

// fixedEmbedder returns canned vectors keyed by exact text.
type fixedEmbedder struct {
	vectors map[string][]float32
}

func (f *fixedEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

func (f *fixedEmbedder) Dims() int { return 3 }

type fixture struct {
	st  *store.Store
	idx *index.Index
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	st, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	idx, err := index.OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { idx.Close() })
	st.Notify(func(ev store.ChangeEvent) {
		if err := idx.Apply(st, ev); err != nil {
			t.Errorf("index apply: %v", err)
		}
	})
	return fixture{st: st, idx: idx}
}

func TestFastSearch(t *testing.T) {
	f := newFixture(t)
	task := model.NewTask("profile the slow search path", "", model.PriorityHigh, "perf", model.StatusTodo)
	if err := f.st.AddTask(task); err != nil {
		t.Fatal(err)
	}
	m := model.NewMemory("search got faster", "profiling paid off", "")
	if err := f.st.SaveMemory(m); err != nil {
		t.Fatal(err)
	}

	eng := New(f.st, f.idx, nil, 0)
	env, err := eng.Fast(context.Background(), "search", Options{})
	if err != nil {
		t.Fatalf("Fast: %v", err)
	}
	if len(env.TaskResults) != 1 || len(env.MemoryResults) != 1 {
		t.Errorf("envelope = %d tasks, %d memories", len(env.TaskResults), len(env.MemoryResults))
	}
	if env.Total() != 2 {
		t.Errorf("total = %d", env.Total())
	}
}

func TestFastDropsStragglers(t *testing.T) {
	f := newFixture(t)
	task := model.NewTask("ephemeral", "", model.PriorityLow, "p", model.StatusTodo)
	if err := f.st.AddTask(task); err != nil {
		t.Fatal(err)
	}
	// Simulate an index lagging behind a delete: remove from the store
	// with events detached.
	f.st.Notify(nil)
	if err := f.st.DeleteTask(task.ID); err != nil {
		t.Fatal(err)
	}

	eng := New(f.st, f.idx, nil, 0)
	env, err := eng.Fast(context.Background(), "ephemeral", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if env.Total() != 0 {
		t.Errorf("straggler survived hydration: %+v", env)
	}
}

func TestDeepRequiresEmbedder(t *testing.T) {
	f := newFixture(t)
	eng := New(f.st, f.idx, nil, 0)
	if _, err := eng.Deep(context.Background(), "anything", Options{}); !model.IsKind(err, model.KindUnavailable) {
		t.Errorf("err = %v, want unavailable", err)
	}
}

func TestDeepThresholdAndOrder(t *testing.T) {
	f := newFixture(t)
	a := model.NewTask("vector twin", "", model.PriorityLow, "p", model.StatusTodo)
	a.Embedding = []float32{1, 0, 0}
	b := model.NewTask("vector stranger", "", model.PriorityLow, "p", model.StatusTodo)
	b.Embedding = []float32{0, 1, 0}
	for _, task := range []model.Task{a, b} {
		if err := f.st.AddTask(task); err != nil {
			t.Fatal(err)
		}
	}

	emb := &fixedEmbedder{vectors: map[string][]float32{"twin": {1, 0, 0}}}
	eng := New(f.st, f.idx, emb, 0.7)
	env, err := eng.Deep(context.Background(), "twin", Options{})
	if err != nil {
		t.Fatalf("Deep: %v", err)
	}
	if len(env.TaskResults) != 1 || env.TaskResults[0].ID != a.ID {
		t.Errorf("results = %+v", env.TaskResults)
	}
	if len(env.Top) != 1 || env.Top[0].Score < 0.999 {
		t.Errorf("top = %+v", env.Top)
	}
}

func TestSmartBlendsBothPaths(t *testing.T) {
	f := newFixture(t)
	// Found by both paths.
	both := model.NewTask("tune search ranking", "", model.PriorityLow, "p", model.StatusTodo)
	both.Embedding = []float32{1, 0, 0}
	// Keyword-only.
	kw := model.NewTask("search the logs", "", model.PriorityLow, "p", model.StatusTodo)
	kw.Embedding = []float32{0, 1, 0}
	for _, task := range []model.Task{both, kw} {
		if err := f.st.AddTask(task); err != nil {
			t.Fatal(err)
		}
	}

	emb := &fixedEmbedder{vectors: map[string][]float32{"search": {1, 0, 0}}}
	eng := New(f.st, f.idx, emb, 0.7)
	env, err := eng.Smart(context.Background(), "search", Options{})
	if err != nil {
		t.Fatalf("Smart: %v", err)
	}
	if len(env.Top) != 2 {
		t.Fatalf("top = %+v", env.Top)
	}
	if env.Top[0].ID != both.ID {
		t.Errorf("agreement between paths should rank first: %+v", env.Top)
	}
}

func TestSmartDegradesWithoutVectors(t *testing.T) {
	f := newFixture(t)
	task := model.NewTask("plain keyword hit", "", model.PriorityLow, "p", model.StatusTodo)
	if err := f.st.AddTask(task); err != nil {
		t.Fatal(err)
	}
	eng := New(f.st, f.idx, nil, 0)
	env, err := eng.Smart(context.Background(), "keyword", Options{})
	if err != nil {
		t.Fatalf("Smart without embedder: %v", err)
	}
	if len(env.TaskResults) != 1 {
		t.Errorf("results = %+v", env.TaskResults)
	}
}

func TestFindKindFilter(t *testing.T) {
	f := newFixture(t)
	task := model.NewTask("shared word falcon", "", model.PriorityLow, "p", model.StatusTodo)
	if err := f.st.AddTask(task); err != nil {
		t.Fatal(err)
	}
	idea := model.NewIdea("falcon themed release names")
	if err := f.st.SaveIdea(idea); err != nil {
		t.Fatal(err)
	}

	eng := New(f.st, f.idx, nil, 0)
	env, err := eng.Find(context.Background(), "falcon", "ideas", Options{})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(env.IdeaResults) != 1 || len(env.TaskResults) != 0 {
		t.Errorf("filter leaked: %+v", env)
	}

	if _, err := eng.Find(context.Background(), "x", "frogs", Options{}); !model.IsKind(err, model.KindValidation) {
		t.Errorf("bad filter: err = %v, want validation", err)
	}
}

func TestOptionsWindowAndLimit(t *testing.T) {
	f := newFixture(t)
	task := model.NewTask("windowed", "", model.PriorityLow, "p", model.StatusTodo)
	if err := f.st.AddTask(task); err != nil {
		t.Fatal(err)
	}
	eng := New(f.st, f.idx, nil, 0)

	past := Options{Until: time.Now().Add(-time.Hour)}
	env, err := eng.Fast(context.Background(), "windowed", past)
	if err != nil {
		t.Fatal(err)
	}
	if env.Total() != 0 {
		t.Errorf("until filter leaked: %+v", env)
	}

	future := Options{Since: time.Now().Add(-time.Hour)}
	env, _ = eng.Fast(context.Background(), "windowed", future)
	if env.Total() != 1 {
		t.Errorf("since filter dropped a live hit")
	}
}

func TestFuseWeights(t *testing.T) {
	keyword := []Result{{Kind: model.KindTask, ID: "a", Score: 1.0}, {Kind: model.KindTask, ID: "k", Score: 0.8}}
	semantic := []Result{{Kind: model.KindTask, ID: "a", Score: 0.9}, {Kind: model.KindTask, ID: "s", Score: 0.8}}

	fused := Fuse(keyword, semantic)
	byID := map[string]float64{}
	for _, r := range fused {
		byID[r.ID] = r.Score
	}
	if got, want := byID["a"], 0.4*1.0+0.6*0.9; math.Abs(got-want) > 1e-9 {
		t.Errorf("both-lists score = %f, want %f", got, want)
	}
	if got, want := byID["k"], 0.8*0.5; math.Abs(got-want) > 1e-9 {
		t.Errorf("keyword-only score = %f, want %f", got, want)
	}
	if got, want := byID["s"], 0.8*0.5; math.Abs(got-want) > 1e-9 {
		t.Errorf("semantic-only score = %f, want %f", got, want)
	}
}
