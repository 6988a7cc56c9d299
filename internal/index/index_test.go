package index

import (
	"math"
	"testing"

	"github.com/tdzio/tdz/internal/model"
	"github.com/tdzio/tdz/internal/store"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	x, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	t.Cleanup(func() { x.Close() })
	return x
}

func TestKeywordSearch(t *testing.T) {
	x := openTestIndex(t)
	entries := []Entry{
		{Kind: model.KindTask, ID: "t1", Text: "write the launch email", UpdatedAt: 100},
		{Kind: model.KindTask, ID: "t2", Text: "fix the login bug", UpdatedAt: 200},
		{Kind: model.KindMemory, ID: "m1", Text: "the launch went well", UpdatedAt: 300},
	}
	for _, e := range entries {
		if err := x.Upsert(e); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}

	hits, err := x.SearchKeyword("launch", nil, 10)
	if err != nil {
		t.Fatalf("SearchKeyword: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("hits = %d, want 2", len(hits))
	}
	for _, h := range hits {
		if h.ID != "t1" && h.ID != "m1" {
			t.Errorf("unexpected hit %q", h.ID)
		}
	}

	// Kind filter pins the result set.
	hits, err = x.SearchKeyword("launch", []model.Kind{model.KindMemory}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].ID != "m1" {
		t.Errorf("filtered hits = %+v", hits)
	}
}

func TestKeywordSearchHostileInput(t *testing.T) {
	x := openTestIndex(t)
	if err := x.Upsert(Entry{Kind: model.KindTask, ID: "t1", Text: "re-index the vault"}); err != nil {
		t.Fatal(err)
	}
	// Hyphens, colons and other operator characters must not break the
	// MATCH parser.
	for _, q := range []string{"re-index", "a:b", "semi;colon", "trailing.", ""} {
		if _, err := x.SearchKeyword(q, nil, 10); err != nil {
			t.Errorf("query %q: %v", q, err)
		}
	}
}

func TestUpsertReplacesRows(t *testing.T) {
	x := openTestIndex(t)
	if err := x.Upsert(Entry{Kind: model.KindTask, ID: "t1", Text: "old words"}); err != nil {
		t.Fatal(err)
	}
	if err := x.Upsert(Entry{Kind: model.KindTask, ID: "t1", Text: "new words"}); err != nil {
		t.Fatal(err)
	}
	hits, err := x.SearchKeyword("old", nil, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("stale rows survived upsert: %+v", hits)
	}
	hits, _ = x.SearchKeyword("new", nil, 10)
	if len(hits) != 1 {
		t.Errorf("new projection not indexed")
	}
}

func TestVectorSearch(t *testing.T) {
	x := openTestIndex(t)
	entries := []Entry{
		{Kind: model.KindTask, ID: "t1", Text: "a", Vector: []float32{1, 0, 0}},
		{Kind: model.KindTask, ID: "t2", Text: "b", Vector: []float32{0, 1, 0}},
		{Kind: model.KindIdea, ID: "i1", Text: "c", Vector: []float32{0.9, 0.1, 0}},
	}
	for _, e := range entries {
		if err := x.Upsert(e); err != nil {
			t.Fatal(err)
		}
	}

	hits, err := x.SearchVector([]float32{1, 0, 0}, nil, 0.7, 10)
	if err != nil {
		t.Fatalf("SearchVector: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("hits = %+v, want t1 and i1", hits)
	}
	if hits[0].ID != "t1" || hits[0].Score < 0.999 {
		t.Errorf("best hit = %+v, want exact match first", hits[0])
	}

	// Threshold prunes orthogonal vectors.
	hits, _ = x.SearchVector([]float32{0, 1, 0}, nil, 0.7, 10)
	if len(hits) != 1 || hits[0].ID != "t2" {
		t.Errorf("hits = %+v, want only t2", hits)
	}
}

func TestCosine(t *testing.T) {
	if got := Cosine([]float32{1, 0}, []float32{1, 0}); math.Abs(got-1) > 1e-9 {
		t.Errorf("identical vectors: %f", got)
	}
	if got := Cosine([]float32{1, 0}, []float32{0, 1}); math.Abs(got) > 1e-9 {
		t.Errorf("orthogonal vectors: %f", got)
	}
	if got := Cosine([]float32{0, 0}, []float32{1, 0}); got != 0 {
		t.Errorf("zero vector: %f", got)
	}
}

func TestApplyAndRebuildFromStore(t *testing.T) {
	st, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	x := openTestIndex(t)
	st.Notify(func(ev store.ChangeEvent) {
		if err := x.Apply(st, ev); err != nil {
			t.Errorf("Apply: %v", err)
		}
	})

	task := model.NewTask("tune the indexer", "", model.PriorityMedium, "search", model.StatusTodo)
	if err := st.AddTask(task); err != nil {
		t.Fatal(err)
	}
	hits, err := x.SearchKeyword("indexer", nil, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].ID != task.ID {
		t.Fatalf("hits = %+v", hits)
	}

	if err := st.DeleteTask(task.ID); err != nil {
		t.Fatal(err)
	}
	hits, _ = x.SearchKeyword("indexer", nil, 10)
	if len(hits) != 0 {
		t.Errorf("deleted task still indexed: %+v", hits)
	}

	// Rebuild reprojects whatever the store holds.
	m := model.NewMemory("indexer rebuilt cleanly", "derived state is cheap", "test")
	if err := st.SaveMemory(m); err != nil {
		t.Fatal(err)
	}
	if err := x.RebuildAll(st); err != nil {
		t.Fatalf("RebuildAll: %v", err)
	}
	hits, _ = x.SearchKeyword("rebuilt", nil, 10)
	if len(hits) != 1 || hits[0].Kind != model.KindMemory {
		t.Errorf("after rebuild: %+v", hits)
	}
}
