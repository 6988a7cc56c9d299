package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/tdzio/tdz/internal/index"
	"github.com/tdzio/tdz/internal/ingest"
	"github.com/tdzio/tdz/internal/model"
	"github.com/tdzio/tdz/internal/search"
	"github.com/tdzio/tdz/internal/store"
)

func newTestServer(t *testing.T, cfg Config) (*Server, *store.Store) {
	t.Helper()
	st, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })

	idx, err := index.Open(st.Root())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { idx.Close() })
	st.Notify(func(ev store.ChangeEvent) {
		if err := idx.Apply(st, ev); err != nil {
			t.Errorf("apply change: %v", err)
		}
	})

	engine := search.New(st, idx, nil, 0)
	facade := ingest.New(st, ingest.WithSearch(engine))
	return New(cfg, st, idx, engine, facade, nil, nil, zap.NewNop()), st
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	rec := doJSON(t, srv.Handler(), http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestTaskLifecycle(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodPost, "/tasks", map[string]any{
		"action":   "wire the release pipeline",
		"project":  "infra",
		"priority": "high",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	task := decode[model.Task](t, rec)
	if task.Priority != model.PriorityHigh || task.ParentProject != "infra" {
		t.Fatalf("unexpected task: %+v", task)
	}

	rec = doJSON(t, h, http.MethodGet, "/tasks/"+task.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/tasks?project=infra&priority=high", nil)
	if got := decode[[]model.Task](t, rec); len(got) != 1 {
		t.Fatalf("list: want 1, got %d", len(got))
	}

	rec = doJSON(t, h, http.MethodPatch, "/tasks/"+task.ID, map[string]any{"progress": 40, "status": "in_progress"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodPost, "/tasks/"+task.ID+"/complete", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("complete: %d %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, h, http.MethodPost, "/tasks/"+task.ID+"/complete", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second complete: want 409, got %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodDelete, "/tasks/"+task.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rec.Code)
	}
}

func TestNotFoundEnvelope(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	rec := doJSON(t, srv.Handler(), http.MethodGet, "/tasks/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d", rec.Code)
	}
	body := decode[map[string]string](t, rec)
	if body["code"] != "not_found" {
		t.Fatalf("unexpected error body: %v", body)
	}
}

func TestValidationRejected(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	rec := doJSON(t, srv.Handler(), http.MethodPost, "/tasks", map[string]any{
		"action":   "x",
		"project":  "infra",
		"priority": "someday",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestIngestEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	rec := doJSON(t, srv.Handler(), http.MethodPost, "/ingest", map[string]string{
		"text": "<todozi>draft the roadmap; 2h; high; planning; todo</todozi> and <idea>publish the roadmap internally; private; high</idea>",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	report := decode[ingest.Report](t, rec)
	if report.Persisted != 2 || report.Failed != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestSearchEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodPost, "/tasks", map[string]any{
		"action":  "rotate the signing keys",
		"project": "security",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/search?q=signing+keys&mode=fast", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("search: %d %s", rec.Code, rec.Body.String())
	}
	env := decode[search.Envelope](t, rec)
	if len(env.TaskResults) != 1 {
		t.Fatalf("want 1 task result, got %+v", env)
	}

	// Deep mode needs an embedder; with none configured it's a 503.
	rec = doJSON(t, h, http.MethodGet, "/search?q=keys&mode=deep", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("deep without embedder: want 503, got %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/search?q=keys&mode=psychic", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad mode: want 400, got %d", rec.Code)
	}
}

func TestQueueWorkflowOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodPost, "/queue", map[string]string{
		"name":     "spike vector quantization",
		"priority": "high",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("enqueue: %d %s", rec.Code, rec.Body.String())
	}
	item := decode[model.QueueItem](t, rec)

	rec = doJSON(t, h, http.MethodPost, "/queue/"+item.ID+"/start", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("start: %d %s", rec.Code, rec.Body.String())
	}
	session := decode[model.QueueSession](t, rec)

	rec = doJSON(t, h, http.MethodPost, "/queue/"+item.ID+"/start", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second start: want 409, got %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/sessions/"+session.SessionID+"/end", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("end: %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodGet, "/queue?status=complete", nil)
	if got := decode[[]model.QueueItem](t, rec); len(got) != 1 {
		t.Fatalf("complete list: want 1, got %d", len(got))
	}
}

func TestAPIKeyMiddleware(t *testing.T) {
	srv, st := newTestServer(t, Config{RequireAPIKey: true})
	h := srv.Handler()

	// Health stays open for probes.
	rec := doJSON(t, h, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health: %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/tasks", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no key: want 401, got %d", rec.Code)
	}

	if _, err := st.CreateAPIKey("ci", "s3cret"); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("with key: want 200, got %d %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong key: want 401, got %d", rec.Code)
	}
}

func TestProjectEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodPost, "/projects", map[string]string{"name": "research", "description": "long-range bets"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, h, http.MethodPost, "/projects", map[string]string{"name": "research"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate: want 409, got %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPut, "/projects/research/status", map[string]string{"status": "completed"})
	if rec.Code != http.StatusOK {
		t.Fatalf("set status: %d %s", rec.Code, rec.Body.String())
	}
	project := decode[model.Project](t, rec)
	if project.Status != model.ProjectCompleted {
		t.Fatalf("unexpected project: %+v", project)
	}

	rec = doJSON(t, h, http.MethodPut, "/projects/research/status", map[string]string{"status": "paused"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad status: want 400, got %d", rec.Code)
	}
}

func TestChunkStatusEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodPost, "/chunks", map[string]any{
		"id":          "auth.login",
		"level":       "method",
		"description": "login handler",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodPut, "/chunks/auth.login/status", map[string]string{"status": "done"})
	if rec.Code != http.StatusOK {
		t.Fatalf("set status: %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodPut, "/chunks/auth.login/status", map[string]string{"status": "ready"})
	if rec.Code != http.StatusBadRequest && rec.Code != http.StatusConflict {
		t.Fatalf("ready is derived: want rejection, got %d", rec.Code)
	}
}

func TestMemoryRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodPost, "/memories", map[string]any{
		"type":   "happy",
		"moment": "shipped the migration with zero downtime",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	m := decode[model.Memory](t, rec)
	if m.Emotion != "happy" {
		t.Fatalf("unexpected memory: %+v", m)
	}

	rec = doJSON(t, h, http.MethodGet, fmt.Sprintf("/memories/%s", m.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: %d", rec.Code)
	}
}
