package cli

import (
	"errors"
	"testing"

	"github.com/tdzio/tdz/internal/model"
)

func TestCodeForError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"validation", model.Validationf("bad priority"), ErrValidationFailed},
		{"not found", model.NotFound(string(model.KindTask), "abc"), ErrArtifactNotFound},
		{"conflict", model.Conflictf("already completed"), ErrConflict},
		{"corruption", model.Corruptionf("tasks.json", "truncated file"), ErrStoreCorrupt},
		{"unavailable", model.Unavailablef("embedder down"), ErrEmbedderDown},
		{"cancelled", model.Cancelled(errors.New("ctx done")), ErrOperationAbort},
		{"io", model.IOError("tasks.json", errors.New("disk full")), ErrStoreIO},
		{"untagged", errors.New("something"), ErrStoreIO},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := codeForError(tc.err); got != tc.want {
				t.Fatalf("codeForError = %q, want %q", got, tc.want)
			}
		})
	}
}
