// Package search unifies keyword and semantic queries over the indexed
// artifact kinds. Results are always hydrated from the store, so a
// straggler id left in the index after a delete is silently dropped.
package search

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/tdzio/tdz/internal/embedding"
	"github.com/tdzio/tdz/internal/index"
	"github.com/tdzio/tdz/internal/model"
	"github.com/tdzio/tdz/internal/store"
)

// DefaultLimit caps the total result count when the caller gives none.
const DefaultLimit = 20

// DefaultThreshold is the minimum cosine similarity for semantic hits.
const DefaultThreshold = 0.7

// Engine answers fast, deep and smart queries.
type Engine struct {
	st        *store.Store
	idx       *index.Index
	embedder  embedding.Embedder
	threshold float64
}

// New builds an engine. embedder may be nil; deep and smart then run
// keyword-only paths.
func New(st *store.Store, idx *index.Index, embedder embedding.Embedder, threshold float64) *Engine {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Engine{st: st, idx: idx, embedder: embedder, threshold: threshold}
}

// Options narrow a query.
type Options struct {
	Limit int
	Kinds []model.Kind
	Since time.Time
	Until time.Time
}

func (o Options) limit() int {
	if o.Limit <= 0 {
		return DefaultLimit
	}
	return o.Limit
}

func (o Options) kinds() []model.Kind {
	if len(o.Kinds) == 0 {
		return model.SearchableKinds
	}
	return o.Kinds
}

// Result is one flattened hit.
type Result struct {
	Kind  model.Kind `json:"kind"`
	ID    string     `json:"id"`
	Text  string     `json:"text"`
	Score float64    `json:"score"`
}

// Envelope groups hydrated results per kind; Top carries the smart
// path's flattened cross-kind ranking.
type Envelope struct {
	TaskResults     []model.Task           `json:"task_results"`
	MemoryResults   []model.Memory         `json:"memory_results"`
	IdeaResults     []model.Idea           `json:"idea_results"`
	ErrorResults    []model.ErrorRecord    `json:"error_results"`
	TrainingResults []model.TrainingSample `json:"training_results"`
	Top             []Result               `json:"top,omitempty"`
}

// Total counts hits across all kinds.
func (e Envelope) Total() int {
	return len(e.TaskResults) + len(e.MemoryResults) + len(e.IdeaResults) +
		len(e.ErrorResults) + len(e.TrainingResults)
}

// Fast runs the keyword-only query.
func (e *Engine) Fast(ctx context.Context, query string, opts Options) (Envelope, error) {
	if err := ctx.Err(); err != nil {
		return Envelope{}, model.Cancelled(err)
	}
	postings, err := e.idx.SearchKeyword(query, opts.kinds(), opts.limit()*2)
	if err != nil {
		return Envelope{}, err
	}
	results := make([]Result, 0, len(postings))
	for _, p := range postings {
		results = append(results, Result{Kind: p.Kind, ID: p.ID, Score: p.Score})
	}
	normalizeScores(results)
	return e.hydrate(results, opts, false)
}

// Deep runs the semantic-only query. Without an embedder it fails
// Unavailable; callers that want graceful degradation use Smart.
func (e *Engine) Deep(ctx context.Context, query string, opts Options) (Envelope, error) {
	if e.embedder == nil {
		return Envelope{}, model.Unavailablef("no embedding provider configured")
	}
	vec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return Envelope{}, err
	}
	hits, err := e.idx.SearchVector(vec, opts.kinds(), e.threshold, opts.limit()*2)
	if err != nil {
		return Envelope{}, err
	}
	results := make([]Result, 0, len(hits))
	for _, h := range hits {
		results = append(results, Result{Kind: h.Kind, ID: h.ID, Score: h.Score})
	}
	return e.hydrate(results, opts, true)
}

// Smart fuses keyword and semantic rankings. Items found by both paths
// blend 0.4 keyword and 0.6 semantic; single-path items carry half
// their own score. When embeddings are unavailable it degrades to the
// keyword ranking alone.
func (e *Engine) Smart(ctx context.Context, query string, opts Options) (Envelope, error) {
	if err := ctx.Err(); err != nil {
		return Envelope{}, model.Cancelled(err)
	}
	postings, err := e.idx.SearchKeyword(query, opts.kinds(), opts.limit()*2)
	if err != nil {
		return Envelope{}, err
	}
	keyword := make([]Result, 0, len(postings))
	for _, p := range postings {
		keyword = append(keyword, Result{Kind: p.Kind, ID: p.ID, Score: p.Score})
	}
	normalizeScores(keyword)

	var semantic []Result
	if e.embedder != nil {
		if vec, err := e.embedder.Embed(ctx, query); err == nil {
			hits, err := e.idx.SearchVector(vec, opts.kinds(), e.threshold, opts.limit()*2)
			if err != nil {
				return Envelope{}, err
			}
			for _, h := range hits {
				semantic = append(semantic, Result{Kind: h.Kind, ID: h.ID, Score: h.Score})
			}
		} else if model.IsKind(err, model.KindCancelled) {
			return Envelope{}, err
		}
		// Unavailable degrades to keyword-only fusion.
	}

	fused := Fuse(keyword, semantic)
	return e.hydrate(fused, opts, true)
}

// Find is Smart with a comma-separated kind filter such as
// "tasks,memories". An empty filter means all kinds.
func (e *Engine) Find(ctx context.Context, query, kindFilter string, opts Options) (Envelope, error) {
	kinds, err := ParseKindFilter(kindFilter)
	if err != nil {
		return Envelope{}, err
	}
	if len(kinds) > 0 {
		opts.Kinds = kinds
	}
	return e.Smart(ctx, query, opts)
}

// ParseKindFilter decodes "tasks,memories,ideas" into kinds, accepting
// singular and plural names.
func ParseKindFilter(filter string) ([]model.Kind, error) {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return nil, nil
	}
	var kinds []model.Kind
	for _, part := range strings.Split(filter, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kind, err := model.ParseKind(part)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

// hydrate loads each hit from the store, applies time filters, and
// packs the envelope. flat controls whether Top is populated.
func (e *Engine) hydrate(results []Result, opts Options, flat bool) (Envelope, error) {
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	limit := opts.limit()

	var env Envelope
	taken := 0
	for _, r := range results {
		if taken >= limit {
			break
		}
		switch r.Kind {
		case model.KindTask:
			t, err := e.st.GetTask(r.ID)
			if err != nil || !inWindow(t.UpdatedAt, opts) {
				continue
			}
			env.TaskResults = append(env.TaskResults, t)
			r.Text = t.SearchText()
		case model.KindMemory:
			m, err := e.st.LoadMemory(r.ID)
			if err != nil || !inWindow(m.UpdatedAt, opts) {
				continue
			}
			env.MemoryResults = append(env.MemoryResults, m)
			r.Text = m.SearchText()
		case model.KindIdea:
			i, err := e.st.LoadIdea(r.ID)
			if err != nil || !inWindow(i.UpdatedAt, opts) {
				continue
			}
			env.IdeaResults = append(env.IdeaResults, i)
			r.Text = i.SearchText()
		case model.KindError:
			rec, err := e.st.LoadErrorRecord(r.ID)
			if err != nil || !inWindow(rec.UpdatedAt, opts) {
				continue
			}
			env.ErrorResults = append(env.ErrorResults, rec)
			r.Text = rec.SearchText()
		case model.KindTraining:
			ts, err := e.st.LoadTrainingSample(r.ID)
			if err != nil || !inWindow(ts.UpdatedAt, opts) {
				continue
			}
			env.TrainingResults = append(env.TrainingResults, ts)
			r.Text = ts.SearchText()
		default:
			continue
		}
		taken++
		if flat {
			env.Top = append(env.Top, r)
		}
	}
	return env, nil
}

func inWindow(t time.Time, opts Options) bool {
	if !opts.Since.IsZero() && t.Before(opts.Since) {
		return false
	}
	if !opts.Until.IsZero() && t.After(opts.Until) {
		return false
	}
	return true
}

// normalizeScores maps bm25-derived scores onto 0..1 by dividing by the
// best score, so they can blend with cosine similarities.
func normalizeScores(results []Result) {
	if len(results) == 0 {
		return
	}
	max := results[0].Score
	for _, r := range results[1:] {
		if r.Score > max {
			max = r.Score
		}
	}
	if max <= 0 {
		for i := range results {
			results[i].Score = 1
		}
		return
	}
	for i := range results {
		results[i].Score /= max
	}
}
