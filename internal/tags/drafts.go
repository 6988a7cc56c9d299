// Package tags implements the inline tag microformat: angle-bracketed
// fragments embedded in free-form chat text, each carrying a single
// semicolon-separated payload. The parser extracts drafts; it never
// validates domain invariants (see internal/validate) and never executes
// commands (see internal/ingest).
package tags

// TaskDraft is a parsed <todozi> fragment before validation.
type TaskDraft struct {
	Action   string
	Time     string
	Priority string
	Project  string
	Status   string
	Assignee string
	Tags     []string
	Offset   int
}

// MemoryDraft is a parsed <memory> fragment. The leading Type field
// selects the subtype: a structural name, a term, or an emotion.
type MemoryDraft struct {
	Type       string
	Moment     string
	Meaning    string
	Reason     string
	Importance string
	Term       string
	Tags       []string
	Offset     int
}

// IdeaDraft is a parsed <idea> fragment.
type IdeaDraft struct {
	Idea       string
	Share      string
	Importance string
	Tags       []string
	Context    string
	Offset     int
}

// ChunkDraft is a parsed <chunk> fragment.
type ChunkDraft struct {
	ID           string
	Level        string
	Description  string
	Dependencies []string
	Code         string
	Offset       int
}

// FeelDraft is a parsed <feel> fragment.
type FeelDraft struct {
	Emotion     string
	Intensity   string
	Description string
	Context     string
	Tags        []string
	Offset      int
}

// TrainDraft is a parsed <train> fragment.
type TrainDraft struct {
	DataType     string
	Prompt       string
	Completion   string
	Source       string
	Context      string
	Tags         []string
	QualityScore string
	Offset       int
}

// ErrorDraft is a parsed <error> fragment.
type ErrorDraft struct {
	Title       string
	Description string
	Severity    string
	Category    string
	Source      string
	Context     string
	Tags        []string
	Offset      int
}

// Command is a parsed <tdz> fragment: a CRUD-style intent against a
// resource family. The parser only extracts it; routing happens in the
// ingestion facade.
type Command struct {
	Command string
	Target  string
	Args    []string
	Options map[string]string
	Offset  int
}

// FragmentError records one malformed fragment without aborting the batch.
type FragmentError struct {
	Fragment string `json:"fragment"`
	Offset   int    `json:"offset"`
	Reason   string `json:"reason"`
}

// Batch is the parser's output: drafts grouped by kind, per-fragment
// errors, and the ordered command intents.
type Batch struct {
	Tasks     []TaskDraft
	Memories  []MemoryDraft
	Ideas     []IdeaDraft
	Chunks    []ChunkDraft
	Feelings  []FeelDraft
	Training  []TrainDraft
	ErrorTags []ErrorDraft
	Commands  []Command
	Errors    []FragmentError
}

// DraftCount returns the number of artifact drafts in the batch,
// commands excluded.
func (b *Batch) DraftCount() int {
	return len(b.Tasks) + len(b.Memories) + len(b.Ideas) + len(b.Chunks) +
		len(b.Feelings) + len(b.Training) + len(b.ErrorTags)
}
