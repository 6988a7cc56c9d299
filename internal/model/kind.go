package model

import "strings"

// Kind names an artifact family. It keys index postings, change events,
// and search type filters.
type Kind string

const (
	KindTask     Kind = "task"
	KindMemory   Kind = "memory"
	KindIdea     Kind = "idea"
	KindFeeling  Kind = "feeling"
	KindChunk    Kind = "chunk"
	KindTraining Kind = "training"
	KindError    Kind = "error"
	KindQueue    Kind = "queue"
	KindProject  Kind = "project"
	KindAgent    Kind = "agent"
)

// SearchableKinds are the families the search engine unifies.
var SearchableKinds = []Kind{KindTask, KindMemory, KindIdea, KindError, KindTraining}

// ParseKind decodes a kind name, accepting plural forms ("tasks").
func ParseKind(s string) (Kind, error) {
	t := strings.ToLower(strings.TrimSpace(s))
	t = strings.TrimSuffix(t, "s")
	switch t {
	case "task":
		return KindTask, nil
	case "memory", "memorie":
		return KindMemory, nil
	case "idea":
		return KindIdea, nil
	case "feeling", "feel":
		return KindFeeling, nil
	case "chunk":
		return KindChunk, nil
	case "training", "train":
		return KindTraining, nil
	case "error":
		return KindError, nil
	case "queue":
		return KindQueue, nil
	case "project":
		return KindProject, nil
	case "agent":
		return KindAgent, nil
	}
	return "", Validationf("invalid artifact kind: %q", s)
}
