package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tdzio/tdz/internal/ingest"
	"github.com/tdzio/tdz/internal/ui"
)

var ingestDedupe bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [text]",
	Short: "Parse tag-formatted text and file every fragment",
	Long: `Parse tag-formatted text and persist every fragment it contains.

Reads from the argument or, with no argument, from stdin. Fragments
that fail validation are reported individually; the rest of the batch
still lands.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := ingestInput(args)
		if err != nil {
			return handleError(ErrInvalidInput, err, "")
		}
		if strings.TrimSpace(text) == "" {
			return handleErrorMsg(ErrMissingArgument, "no input text", "pass text as an argument or pipe it on stdin")
		}

		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		facade := e.facade
		if ingestDedupe {
			opts := []ingest.Option{ingest.WithSearch(e.engine), ingest.WithDedupe()}
			if e.embedder != nil {
				opts = append(opts, ingest.WithEmbedder(e.embedder))
			}
			facade = ingest.New(e.st, opts...)
		}

		report, err := facade.Ingest(cmd.Context(), text)
		if err != nil {
			return fail(err)
		}

		if isJSONOutput() {
			warnings := ingestWarnings(report)
			outputSuccessWithWarnings(report, warnings, &Meta{Count: report.Persisted})
			return nil
		}

		printReport(report)
		return nil
	},
}

func ingestInput(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

func ingestWarnings(report *ingest.Report) []Warning {
	var warnings []Warning
	for _, fe := range report.Errors {
		warnings = append(warnings, Warning{Code: WarnFragmentSkipped, Message: fe.Reason})
	}
	for _, item := range report.Items {
		if item.Skipped {
			warnings = append(warnings, Warning{Code: WarnDuplicateInput, Message: fmt.Sprintf("duplicate %s fragment skipped", item.Kind)})
		}
	}
	for _, c := range report.Commands {
		if !c.Handled {
			warnings = append(warnings, Warning{Code: WarnCommandUnhandled, Message: fmt.Sprintf("command %q not handled locally", c.Command)})
		}
	}
	return warnings
}

func printReport(report *ingest.Report) {
	if report.Persisted > 0 {
		fmt.Println(ui.Successf("filed %d %s", report.Persisted, pluralize(report.Persisted, "fragment", "fragments")))
		for kind, n := range report.Counts {
			fmt.Printf("  %s %s\n", ui.Muted.Render(fmt.Sprintf("%d", n)), kind)
		}
	}
	if report.Skipped > 0 {
		fmt.Println(ui.Infof("%d duplicate %s skipped", report.Skipped, pluralize(report.Skipped, "fragment", "fragments")))
	}
	for _, c := range report.Commands {
		if c.Handled {
			fmt.Println(ui.Successf("ran %s %s", c.Command, c.Target))
		} else {
			fmt.Println(ui.Warningf("command %q not handled locally", c.Command))
		}
	}
	for _, fe := range report.Errors {
		fmt.Println(ui.Errorf("offset %d: %s", fe.Offset, fe.Reason))
	}
	if report.Failed > 0 {
		fmt.Println(ui.Warningf("%d %s failed validation", report.Failed, pluralize(report.Failed, "fragment", "fragments")))
	}
	if report.Persisted == 0 && report.Failed == 0 && len(report.Errors) == 0 && len(report.Commands) == 0 {
		fmt.Println(ui.Hint("no tagged fragments found"))
	}
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestDedupe, "dedupe", false, "Skip fragments already ingested (content fingerprint)")
	rootCmd.AddCommand(ingestCmd)
}
