package cli

import "github.com/tdzio/tdz/internal/model"

// Error codes for structured error responses.
// These codes are stable and can be relied upon by agents.
const (
	// Store errors
	ErrRootNotFound  = "ROOT_NOT_FOUND"
	ErrStoreLocked   = "STORE_LOCKED"
	ErrStoreCorrupt  = "STORE_CORRUPT"
	ErrStoreIO       = "STORE_IO_ERROR"
	ErrConfigInvalid = "CONFIG_INVALID"

	// Artifact errors
	ErrArtifactNotFound = "ARTIFACT_NOT_FOUND"
	ErrArtifactExists   = "ARTIFACT_EXISTS"
	ErrValidationFailed = "VALIDATION_FAILED"
	ErrConflict         = "CONFLICT"

	// Pipeline errors
	ErrParseFailed    = "PARSE_FAILED"
	ErrInputTooLarge  = "INPUT_TOO_LARGE"
	ErrEmbedderDown   = "EMBEDDER_UNAVAILABLE"
	ErrPlannerDown    = "PLANNER_UNAVAILABLE"
	ErrSearchFailed   = "SEARCH_FAILED"
	ErrIndexCorrupt   = "INDEX_CORRUPT"
	ErrOperationAbort = "OPERATION_CANCELLED"

	// Input errors
	ErrInvalidInput    = "INVALID_INPUT"
	ErrMissingArgument = "MISSING_ARGUMENT"

	// General errors
	ErrInternal = "INTERNAL_ERROR"
)

// Warning codes for non-fatal issues.
const (
	WarnFragmentSkipped  = "FRAGMENT_SKIPPED"
	WarnCommandUnhandled = "COMMAND_UNHANDLED"
	WarnEmbeddingSkipped = "EMBEDDING_SKIPPED"
	WarnDuplicateInput   = "DUPLICATE_INPUT"
)

// codeForError maps a tagged error to its stable CLI code.
func codeForError(err error) string {
	switch model.KindOf(err) {
	case model.KindValidation:
		return ErrValidationFailed
	case model.KindNotFound:
		return ErrArtifactNotFound
	case model.KindConflict:
		return ErrConflict
	case model.KindCorruption:
		return ErrStoreCorrupt
	case model.KindUnavailable:
		return ErrEmbedderDown
	case model.KindCancelled:
		return ErrOperationAbort
	case model.KindIO:
		return ErrStoreIO
	}
	return ErrInternal
}

// fail routes a tagged error through the JSON/text error machinery.
func fail(err error) error {
	return handleError(codeForError(err), err, "")
}
