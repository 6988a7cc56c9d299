package index

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/tdzio/tdz/internal/model"
	"github.com/tdzio/tdz/internal/store"
)

// Entry is one artifact's projection into the index.
type Entry struct {
	Kind      model.Kind
	ID        string
	Text      string
	Project   string
	Status    string
	Priority  string
	Assignee  string
	Tags      []string
	UpdatedAt int64
	Vector    []float32
}

// Upsert replaces the artifact's rows in both indexes. A nil vector
// clears any stored vector (the projection changed, so the old vector
// no longer describes it).
func (x *Index) Upsert(e Entry) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	tx, err := x.db.Begin()
	if err != nil {
		return fmt.Errorf("begin index tx: %w", err)
	}
	defer tx.Rollback()

	if err := deleteRows(tx, e.Kind, e.ID); err != nil {
		return err
	}
	_, err = tx.Exec(
		`INSERT INTO artifacts (kind, id, project, status, priority, assignee, tags, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(e.Kind), e.ID, e.Project, e.Status, e.Priority, e.Assignee,
		strings.Join(e.Tags, ","), e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert artifact row: %w", err)
	}
	_, err = tx.Exec(
		`INSERT INTO artifacts_fts (kind, id, text) VALUES (?, ?, ?)`,
		string(e.Kind), e.ID, e.Text,
	)
	if err != nil {
		return fmt.Errorf("insert fts row: %w", err)
	}
	if len(e.Vector) > 0 {
		_, err = tx.Exec(
			`INSERT INTO vectors (kind, id, dims, vec) VALUES (?, ?, ?, ?)`,
			string(e.Kind), e.ID, len(e.Vector), encodeVector(e.Vector),
		)
		if err != nil {
			return fmt.Errorf("insert vector row: %w", err)
		}
	}
	return tx.Commit()
}

// Delete removes the artifact from all index tables.
func (x *Index) Delete(kind model.Kind, id string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	tx, err := x.db.Begin()
	if err != nil {
		return fmt.Errorf("begin index tx: %w", err)
	}
	defer tx.Rollback()
	if err := deleteRows(tx, kind, id); err != nil {
		return err
	}
	return tx.Commit()
}

func deleteRows(tx *sql.Tx, kind model.Kind, id string) error {
	for _, stmt := range []string{
		`DELETE FROM artifacts WHERE kind = ? AND id = ?`,
		`DELETE FROM artifacts_fts WHERE kind = ? AND id = ?`,
		`DELETE FROM vectors WHERE kind = ? AND id = ?`,
	} {
		if _, err := tx.Exec(stmt, string(kind), id); err != nil {
			return fmt.Errorf("delete index rows: %w", err)
		}
	}
	return nil
}

// Apply handles one store change event, pulling the artifact's current
// projection from the store. Events for non-searchable kinds are
// ignored.
func (x *Index) Apply(st *store.Store, ev store.ChangeEvent) error {
	if !searchable(ev.Kind) {
		return nil
	}
	if ev.Op == store.OpDelete {
		return x.Delete(ev.Kind, ev.ID)
	}
	entry, ok, err := projectArtifact(st, ev.Kind, ev.ID)
	if err != nil {
		return err
	}
	if !ok {
		// Deleted between the event and the read; drop the rows.
		return x.Delete(ev.Kind, ev.ID)
	}
	return x.Upsert(entry)
}

// RebuildAll drops the index contents and reprojects every searchable
// artifact from the store.
func (x *Index) RebuildAll(st *store.Store) error {
	x.mu.Lock()
	for _, stmt := range []string{
		`DELETE FROM artifacts`,
		`DELETE FROM artifacts_fts`,
		`DELETE FROM vectors`,
	} {
		if _, err := x.db.Exec(stmt); err != nil {
			x.mu.Unlock()
			return fmt.Errorf("clear index: %w", err)
		}
	}
	x.mu.Unlock()

	tasks, err := st.ListTasks(model.TaskFilters{})
	if err != nil {
		return err
	}
	for _, t := range tasks {
		if err := x.Upsert(taskEntry(t)); err != nil {
			return err
		}
	}
	memories, err := st.ListMemories()
	if err != nil {
		return err
	}
	for _, m := range memories {
		if err := x.Upsert(memoryEntry(m)); err != nil {
			return err
		}
	}
	ideas, err := st.ListIdeas()
	if err != nil {
		return err
	}
	for _, i := range ideas {
		if err := x.Upsert(ideaEntry(i)); err != nil {
			return err
		}
	}
	errRecs, err := st.ListErrorRecords()
	if err != nil {
		return err
	}
	for _, e := range errRecs {
		if err := x.Upsert(errorEntry(e)); err != nil {
			return err
		}
	}
	samples, err := st.ListTrainingSamples()
	if err != nil {
		return err
	}
	for _, ts := range samples {
		if err := x.Upsert(trainingEntry(ts)); err != nil {
			return err
		}
	}
	return nil
}

func searchable(kind model.Kind) bool {
	for _, k := range model.SearchableKinds {
		if k == kind {
			return true
		}
	}
	return false
}

func projectArtifact(st *store.Store, kind model.Kind, id string) (Entry, bool, error) {
	switch kind {
	case model.KindTask:
		t, err := st.GetTask(id)
		if err != nil {
			return Entry{}, false, ignoreNotFound(err)
		}
		return taskEntry(t), true, nil
	case model.KindMemory:
		m, err := st.LoadMemory(id)
		if err != nil {
			return Entry{}, false, ignoreNotFound(err)
		}
		return memoryEntry(m), true, nil
	case model.KindIdea:
		i, err := st.LoadIdea(id)
		if err != nil {
			return Entry{}, false, ignoreNotFound(err)
		}
		return ideaEntry(i), true, nil
	case model.KindError:
		e, err := st.LoadErrorRecord(id)
		if err != nil {
			return Entry{}, false, ignoreNotFound(err)
		}
		return errorEntry(e), true, nil
	case model.KindTraining:
		ts, err := st.LoadTrainingSample(id)
		if err != nil {
			return Entry{}, false, ignoreNotFound(err)
		}
		return trainingEntry(ts), true, nil
	}
	return Entry{}, false, nil
}

func ignoreNotFound(err error) error {
	if model.IsKind(err, model.KindNotFound) {
		return nil
	}
	return err
}

func taskEntry(t model.Task) Entry {
	return Entry{
		Kind:      model.KindTask,
		ID:        t.ID,
		Text:      t.SearchText(),
		Project:   t.ParentProject,
		Status:    string(t.Status),
		Priority:  string(t.Priority),
		Assignee:  string(t.Assignee),
		Tags:      t.Tags,
		UpdatedAt: t.UpdatedAt.Unix(),
		Vector:    t.Embedding,
	}
}

func memoryEntry(m model.Memory) Entry {
	return Entry{
		Kind:      model.KindMemory,
		ID:        m.ID,
		Text:      m.SearchText(),
		Project:   m.ProjectID,
		Status:    string(m.Status),
		Tags:      m.Tags,
		UpdatedAt: m.UpdatedAt.Unix(),
		Vector:    m.Embedding,
	}
}

func ideaEntry(i model.Idea) Entry {
	return Entry{
		Kind:      model.KindIdea,
		ID:        i.ID,
		Text:      i.SearchText(),
		Project:   i.ProjectID,
		Tags:      i.Tags,
		UpdatedAt: i.UpdatedAt.Unix(),
		Vector:    i.Embedding,
	}
}

func errorEntry(e model.ErrorRecord) Entry {
	return Entry{
		Kind:      model.KindError,
		ID:        e.ID,
		Text:      e.SearchText(),
		Status:    string(e.Category),
		Priority:  string(e.Severity),
		Tags:      e.Tags,
		UpdatedAt: e.UpdatedAt.Unix(),
		Vector:    e.Embedding,
	}
}

func trainingEntry(t model.TrainingSample) Entry {
	return Entry{
		Kind:      model.KindTraining,
		ID:        t.ID,
		Text:      t.SearchText(),
		Status:    string(t.DataType),
		Tags:      t.Tags,
		UpdatedAt: t.UpdatedAt.Unix(),
		Vector:    t.Embedding,
	}
}
