// Package ingest is the facade over the pipeline: parse chat text,
// validate the drafts, persist the survivors, and route command
// intents. One call in, one structured report out.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/tdzio/tdz/internal/embedding"
	"github.com/tdzio/tdz/internal/model"
	"github.com/tdzio/tdz/internal/search"
	"github.com/tdzio/tdz/internal/store"
	"github.com/tdzio/tdz/internal/tags"
	"github.com/tdzio/tdz/internal/validate"
)

// Facade wires the pipeline stages together.
type Facade struct {
	st       *store.Store
	engine   *search.Engine
	embedder embedding.Embedder
	dedupe   bool
}

// Option configures the facade.
type Option func(*Facade)

// WithEmbedder attaches an embedding provider; persisted artifacts get
// vectors when the provider answers in time.
func WithEmbedder(e embedding.Embedder) Option {
	return func(f *Facade) { f.embedder = e }
}

// WithSearch lets tdz search commands run through the engine.
func WithSearch(eng *search.Engine) Option {
	return func(f *Facade) { f.engine = eng }
}

// WithDedupe skips drafts whose content hash was already ingested in
// this process.
func WithDedupe() Option {
	return func(f *Facade) { f.dedupe = true }
}

// New builds a facade over the store.
func New(st *store.Store, opts ...Option) *Facade {
	f := &Facade{st: st}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ItemResult records one draft's fate.
type ItemResult struct {
	Kind    model.Kind `json:"kind"`
	ID      string     `json:"id,omitempty"`
	Offset  int        `json:"offset"`
	Skipped bool       `json:"skipped,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// CommandResult records one routed tdz command.
type CommandResult struct {
	Command string `json:"command"`
	Target  string `json:"target"`
	Handled bool   `json:"handled"`
	Output  any    `json:"output,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Report is the ingestion outcome.
type Report struct {
	Counts    map[model.Kind]int   `json:"counts"`
	Items     []ItemResult         `json:"items"`
	Commands  []CommandResult      `json:"commands,omitempty"`
	Errors    []tags.FragmentError `json:"errors,omitempty"`
	Failed    int                  `json:"failed"`
	Skipped   int                  `json:"skipped"`
	Persisted int                  `json:"persisted"`
}

// Ingest runs the full pipeline on one batch of chat text.
func (f *Facade) Ingest(ctx context.Context, text string) (*Report, error) {
	batch, err := tags.Parse(text)
	if err != nil {
		return nil, err
	}

	report := &Report{Counts: map[model.Kind]int{}}
	report.Errors = batch.Errors

	for _, d := range batch.Tasks {
		f.persist(ctx, report, model.KindTask, d.Offset, fingerprintDraft("task", d.Action, d.Project), func() (string, error) {
			task, err := validate.Task(d)
			if err != nil {
				return "", err
			}
			task.Embedding = f.embed(ctx, task.SearchText())
			return task.ID, f.st.AddTask(task)
		})
	}
	for _, d := range batch.Memories {
		f.persist(ctx, report, model.KindMemory, d.Offset, fingerprintDraft("memory", d.Moment, d.Meaning, d.Reason), func() (string, error) {
			m, err := validate.Memory(d)
			if err != nil {
				return "", err
			}
			m.Embedding = f.embed(ctx, m.SearchText())
			return m.ID, f.st.SaveMemory(m)
		})
	}
	for _, d := range batch.Ideas {
		f.persist(ctx, report, model.KindIdea, d.Offset, fingerprintDraft("idea", d.Idea), func() (string, error) {
			idea, err := validate.Idea(d)
			if err != nil {
				return "", err
			}
			idea.Embedding = f.embed(ctx, idea.SearchText())
			return idea.ID, f.st.SaveIdea(idea)
		})
	}
	for _, d := range batch.Feelings {
		f.persist(ctx, report, model.KindFeeling, d.Offset, fingerprintDraft("feel", d.Emotion, d.Description), func() (string, error) {
			feel, err := validate.Feeling(d)
			if err != nil {
				return "", err
			}
			return feel.ID, f.st.SaveFeeling(feel)
		})
	}
	for _, d := range batch.Training {
		f.persist(ctx, report, model.KindTraining, d.Offset, fingerprintDraft("train", d.Prompt, d.Completion), func() (string, error) {
			sample, err := validate.Training(d)
			if err != nil {
				return "", err
			}
			sample.Embedding = f.embed(ctx, sample.SearchText())
			return sample.ID, f.st.SaveTrainingSample(sample)
		})
	}
	for _, d := range batch.ErrorTags {
		f.persist(ctx, report, model.KindError, d.Offset, fingerprintDraft("error", d.Title, d.Description), func() (string, error) {
			rec, err := validate.ErrorRecord(d)
			if err != nil {
				return "", err
			}
			rec.Embedding = f.embed(ctx, rec.SearchText())
			return rec.ID, f.st.SaveErrorRecord(rec)
		})
	}
	for _, d := range batch.Chunks {
		f.persist(ctx, report, model.KindChunk, d.Offset, fingerprintDraft("chunk", d.ID), func() (string, error) {
			chunk, err := validate.Chunk(d)
			if err != nil {
				return "", err
			}
			return chunk.ChunkID, f.st.SaveChunk(chunk)
		})
	}

	for _, cmd := range batch.Commands {
		report.Commands = append(report.Commands, f.route(ctx, cmd))
	}
	return report, nil
}

// persist runs one draft through validation and storage, respecting
// cancellation and the session dedupe set.
func (f *Facade) persist(ctx context.Context, report *Report, kind model.Kind, offset int, fp string, save func() (string, error)) {
	item := ItemResult{Kind: kind, Offset: offset}
	defer func() { report.Items = append(report.Items, item) }()

	if err := ctx.Err(); err != nil {
		item.Error = model.Cancelled(err).Error()
		report.Failed++
		return
	}
	if f.dedupe && f.st.MarkSeen(fp) {
		item.Skipped = true
		report.Skipped++
		return
	}
	id, err := save()
	if err != nil {
		item.Error = err.Error()
		report.Failed++
		return
	}
	item.ID = id
	report.Counts[kind]++
	report.Persisted++
}

// embed returns a vector for text, or nil when the provider is absent,
// fails, or times out. The write proceeds either way.
func (f *Facade) embed(ctx context.Context, text string) []float32 {
	if f.embedder == nil || text == "" {
		return nil
	}
	vec, err := f.embedder.Embed(ctx, text)
	if err != nil {
		return nil
	}
	return vec
}

func fingerprintDraft(kind string, fields ...string) string {
	h := sha256.New()
	h.Write([]byte(kind))
	for _, fieldValue := range fields {
		h.Write([]byte{0})
		h.Write([]byte(fieldValue))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// route translates a tdz command intent into a store operation. Targets
// the core does not own come back unhandled.
func (f *Facade) route(ctx context.Context, cmd tags.Command) CommandResult {
	res := CommandResult{Command: cmd.Command, Target: cmd.Target}
	if !cmd.KnownVerb() {
		res.Error = fmt.Sprintf("unknown command %q", cmd.Command)
		return res
	}

	kind, err := model.ParseKind(cmd.Target)
	if err != nil {
		// Not a local resource family; the caller decides what to do.
		return res
	}

	arg := func(i int) string {
		if i < len(cmd.Args) {
			return cmd.Args[i]
		}
		return ""
	}

	switch cmd.Command {
	case "list":
		res.Output, err = f.list(kind)
	case "get":
		res.Output, err = f.get(kind, arg(0))
	case "delete":
		err = f.del(kind, arg(0))
	case "create":
		res.Output, err = f.create(kind, cmd)
	case "search":
		if f.engine == nil {
			return res
		}
		types := cmd.Options["types"]
		if types == "" {
			types = cmd.Target
		}
		var env search.Envelope
		env, err = f.engine.Find(ctx, arg(0), types, search.Options{})
		res.Output = env
	case "update":
		if kind != model.KindTask {
			// Only tasks take field patches through commands.
			return res
		}
		res.Output, err = f.updateTask(cmd, arg(0))
	case "run", "execute":
		// Owned elsewhere (agents, remote planners).
		return res
	default:
		return res
	}
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Handled = true
	return res
}

func (f *Facade) list(kind model.Kind) (any, error) {
	switch kind {
	case model.KindTask:
		return f.st.ListTasks(model.TaskFilters{})
	case model.KindMemory:
		return f.st.ListMemories()
	case model.KindIdea:
		return f.st.ListIdeas()
	case model.KindFeeling:
		return f.st.ListFeelings()
	case model.KindError:
		return f.st.ListErrorRecords()
	case model.KindTraining:
		return f.st.ListTrainingSamples()
	case model.KindChunk:
		return f.st.ListChunks()
	case model.KindQueue:
		return f.st.ListQueue("")
	case model.KindProject:
		return f.st.ListProjects()
	case model.KindAgent:
		return f.st.ListAgents()
	}
	return nil, model.Validationf("cannot list %q", kind)
}

func (f *Facade) get(kind model.Kind, id string) (any, error) {
	if id == "" {
		return nil, model.Validationf("get needs an id")
	}
	switch kind {
	case model.KindTask:
		return f.st.GetTask(id)
	case model.KindMemory:
		return f.st.LoadMemory(id)
	case model.KindIdea:
		return f.st.LoadIdea(id)
	case model.KindError:
		return f.st.LoadErrorRecord(id)
	case model.KindTraining:
		return f.st.LoadTrainingSample(id)
	case model.KindChunk:
		return f.st.LoadChunk(id)
	case model.KindQueue:
		return f.st.GetQueueItem(id)
	case model.KindProject:
		return f.st.GetProject(id)
	case model.KindAgent:
		return f.st.GetAgent(id)
	}
	return nil, model.Validationf("cannot get %q", kind)
}

func (f *Facade) del(kind model.Kind, id string) error {
	if id == "" {
		return model.Validationf("delete needs an id")
	}
	switch kind {
	case model.KindTask:
		return f.st.DeleteTask(id)
	case model.KindMemory:
		return f.st.DeleteMemory(id)
	case model.KindIdea:
		return f.st.DeleteIdea(id)
	case model.KindFeeling:
		return f.st.DeleteFeeling(id)
	case model.KindError:
		return f.st.DeleteErrorRecord(id)
	case model.KindTraining:
		return f.st.DeleteTrainingSample(id)
	case model.KindChunk:
		return f.st.DeleteChunk(id)
	case model.KindQueue:
		return f.st.DeleteQueueItem(id)
	case model.KindProject:
		return f.st.DeleteProject(id)
	case model.KindAgent:
		return f.st.DeleteAgent(id)
	}
	return model.Validationf("cannot delete %q", kind)
}

// updateTask maps a command's key=value options onto a task patch.
func (f *Facade) updateTask(cmd tags.Command, id string) (any, error) {
	if id == "" {
		return nil, model.Validationf("update needs an id")
	}
	var patch model.TaskUpdate
	for key, value := range cmd.Options {
		switch key {
		case "action":
			v := value
			patch.Action = &v
		case "time":
			v := value
			patch.Time = &v
		case "priority":
			p, err := model.ParsePriority(value)
			if err != nil {
				return nil, err
			}
			patch.Priority = &p
		case "project":
			v := value
			patch.Project = &v
		case "status":
			st, err := model.ParseStatus(value)
			if err != nil {
				return nil, err
			}
			patch.Status = &st
		case "assignee":
			a, err := model.ParseAssignee(value)
			if err != nil {
				return nil, err
			}
			patch.Assignee = &a
		case "notes":
			v := value
			patch.ContextNotes = &v
		case "progress":
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, model.Validationf("progress %q is not a number", value)
			}
			patch.Progress = &n
		default:
			return nil, model.Validationf("unknown task field %q", key)
		}
	}
	return f.st.UpdateTask(id, patch)
}

func (f *Facade) create(kind model.Kind, cmd tags.Command) (any, error) {
	switch kind {
	case model.KindQueue:
		name := firstNonEmpty(cmd.Options["name"], argAt(cmd.Args, 0))
		if name == "" {
			return nil, model.Validationf("queue create needs a name")
		}
		priority := model.PriorityMedium
		if p := cmd.Options["priority"]; p != "" {
			parsed, err := model.ParsePriority(p)
			if err != nil {
				return nil, err
			}
			priority = parsed
		}
		item := model.NewQueueItem(name, cmd.Options["description"], priority, cmd.Options["project"])
		return item, f.st.AddQueueItem(item)
	case model.KindProject:
		name := firstNonEmpty(cmd.Options["name"], argAt(cmd.Args, 0))
		if name == "" {
			return nil, model.Validationf("project create needs a name")
		}
		p := model.NewProject(name, cmd.Options["description"])
		return p, f.st.CreateProject(p)
	}
	// Artifact kinds are created by their fragments, not by commands.
	return nil, model.Validationf("cannot create %q by command", kind)
}

func argAt(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
