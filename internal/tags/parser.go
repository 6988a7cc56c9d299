package tags

import (
	"strings"

	"github.com/tdzio/tdz/internal/model"
)

const (
	// MaxInputBytes caps the text handed to Parse.
	MaxInputBytes = 100 * 1024
	// MaxPayloadBytes caps a single fragment's payload.
	MaxPayloadBytes = 4 * 1024
)

// fragmentNames are the recognized long-form markers. Anything else in
// angle brackets is plain prose and is ignored.
var fragmentNames = []string{"todozi", "memory", "idea", "chunk", "feel", "train", "error", "tdz"}

// shorthands maps two-letter aliases to their long forms. Aliases are
// expanded before scanning, so offsets refer to the expanded text.
var shorthands = [][2]string{
	{"tz", "todozi"},
	{"mm", "memory"},
	{"id", "idea"},
	{"ch", "chunk"},
	{"fe", "feel"},
	{"tn", "train"},
	{"er", "error"},
}

// requiredFields is the minimum positional field count per fragment.
var requiredFields = map[string]int{
	"todozi": 5, // action; time; priority; project; status
	"memory": 6, // type; moment; meaning; reason; importance; term
	"idea":   3, // idea; share; importance
	"chunk":  3, // id; level; description
	"feel":   3, // emotion; intensity; description
	"train":  4, // data_type; prompt; completion; source
	"error":  5, // title; description; severity; category; source
	"tdz":    2, // command; target
}

// ExpandShorthand rewrites the two-letter alias markers to their long
// forms. Exposed so callers can normalize text before display.
func ExpandShorthand(text string) string {
	if !strings.Contains(text, "<") {
		return text
	}
	r := make([]string, 0, len(shorthands)*4)
	for _, m := range shorthands {
		r = append(r,
			"<"+m[0]+">", "<"+m[1]+">",
			"</"+m[0]+">", "</"+m[1]+">",
		)
	}
	return strings.NewReplacer(r...).Replace(text)
}

// Parse scans text for tag fragments and returns the draft batch.
// Malformed fragments are recorded as errors and never abort the scan.
// The only hard failure is an input larger than MaxInputBytes.
func Parse(text string) (*Batch, error) {
	if len(text) > MaxInputBytes {
		return nil, model.Validationf("input of %d bytes exceeds the %d byte cap", len(text), MaxInputBytes)
	}
	text = ExpandShorthand(text)

	batch := &Batch{}
	pos := 0
	for {
		i := strings.Index(text[pos:], "<")
		if i < 0 {
			break
		}
		start := pos + i
		name, ok := fragmentAt(text, start)
		if !ok {
			pos = start + 1
			continue
		}

		open := start + len(name) + 2 // past "<name>"
		closer := "</" + name + ">"
		end := strings.Index(text[open:], closer)
		if end < 0 {
			batch.Errors = append(batch.Errors, FragmentError{
				Fragment: name,
				Offset:   start,
				Reason:   "missing " + closer + " end tag",
			})
			pos = open
			continue
		}

		payload := text[open : open+end]
		pos = open + end + len(closer)

		if len(payload) > MaxPayloadBytes {
			batch.Errors = append(batch.Errors, FragmentError{
				Fragment: name,
				Offset:   start,
				Reason:   "payload exceeds 4 KB cap",
			})
			continue
		}

		parts := splitPayload(payload)
		if len(parts) < requiredFields[name] {
			batch.Errors = append(batch.Errors, FragmentError{
				Fragment: name,
				Offset:   start,
				Reason:   requireReason(name),
			})
			continue
		}

		collect(batch, name, parts, start)
	}
	return batch, nil
}

// fragmentAt checks whether text[start:] opens a known fragment marker
// and returns its name.
func fragmentAt(text string, start int) (string, bool) {
	rest := text[start+1:]
	for _, name := range fragmentNames {
		if strings.HasPrefix(rest, name+">") {
			return name, true
		}
	}
	return "", false
}

// splitPayload splits on semicolons and trims each field.
func splitPayload(payload string) []string {
	parts := strings.Split(payload, ";")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// field returns parts[i] or "" when the optional position is absent.
func field(parts []string, i int) string {
	if i < len(parts) {
		return parts[i]
	}
	return ""
}

// csvList splits an optional CSV field, dropping empties.
func csvList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func collect(batch *Batch, name string, parts []string, offset int) {
	switch name {
	case "todozi":
		batch.Tasks = append(batch.Tasks, TaskDraft{
			Action:   parts[0],
			Time:     parts[1],
			Priority: parts[2],
			Project:  parts[3],
			Status:   parts[4],
			Assignee: field(parts, 5),
			Tags:     csvList(field(parts, 6)),
			Offset:   offset,
		})
	case "memory":
		batch.Memories = append(batch.Memories, MemoryDraft{
			Type:       parts[0],
			Moment:     parts[1],
			Meaning:    parts[2],
			Reason:     parts[3],
			Importance: parts[4],
			Term:       parts[5],
			Tags:       csvList(field(parts, 6)),
			Offset:     offset,
		})
	case "idea":
		batch.Ideas = append(batch.Ideas, IdeaDraft{
			Idea:       parts[0],
			Share:      parts[1],
			Importance: parts[2],
			Tags:       csvList(field(parts, 3)),
			Context:    field(parts, 4),
			Offset:     offset,
		})
	case "chunk":
		batch.Chunks = append(batch.Chunks, ChunkDraft{
			ID:           parts[0],
			Level:        parts[1],
			Description:  parts[2],
			Dependencies: csvList(field(parts, 3)),
			Code:         field(parts, 4),
			Offset:       offset,
		})
	case "feel":
		batch.Feelings = append(batch.Feelings, FeelDraft{
			Emotion:     parts[0],
			Intensity:   parts[1],
			Description: parts[2],
			Context:     field(parts, 3),
			Tags:        csvList(field(parts, 4)),
			Offset:      offset,
		})
	case "train":
		batch.Training = append(batch.Training, TrainDraft{
			DataType:     parts[0],
			Prompt:       parts[1],
			Completion:   parts[2],
			Source:       parts[3],
			Context:      field(parts, 4),
			Tags:         csvList(field(parts, 5)),
			QualityScore: field(parts, 6),
			Offset:       offset,
		})
	case "error":
		batch.ErrorTags = append(batch.ErrorTags, ErrorDraft{
			Title:       parts[0],
			Description: parts[1],
			Severity:    parts[2],
			Category:    parts[3],
			Source:      parts[4],
			Context:     field(parts, 5),
			Tags:        csvList(field(parts, 6)),
			Offset:      offset,
		})
	case "tdz":
		batch.Commands = append(batch.Commands, parseCommand(parts, offset))
	}
}

func requireReason(name string) string {
	switch name {
	case "todozi":
		return "need at least 5 fields (action; time; priority; project; status)"
	case "memory":
		return "need at least 6 fields (type; moment; meaning; reason; importance; term)"
	case "idea":
		return "need at least 3 fields (idea; share; importance)"
	case "chunk":
		return "need at least 3 fields (id; level; description)"
	case "feel":
		return "need at least 3 fields (emotion; intensity; description)"
	case "train":
		return "need at least 4 fields (data_type; prompt; completion; source)"
	case "error":
		return "need at least 5 fields (title; description; severity; category; source)"
	case "tdz":
		return "need at least 2 fields (command; target)"
	}
	return "too few fields"
}
