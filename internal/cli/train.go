package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tdzio/tdz/internal/tags"
	"github.com/tdzio/tdz/internal/ui"
	"github.com/tdzio/tdz/internal/validate"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Collect training samples",
}

var (
	trainType    string
	trainSource  string
	trainContext string
	trainQuality string
	trainTags    []string
)

var trainAddCmd = &cobra.Command{
	Use:   "add <prompt> <completion>",
	Short: "Record a training sample",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sample, err := validate.Training(tags.TrainDraft{
			DataType:     trainType,
			Prompt:       args[0],
			Completion:   args[1],
			Source:       trainSource,
			Context:      trainContext,
			QualityScore: trainQuality,
			Tags:         trainTags,
		})
		if err != nil {
			return fail(err)
		}

		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		if e.embedder != nil {
			if vec, embErr := e.embedder.Embed(cmd.Context(), sample.SearchText()); embErr == nil {
				sample.Embedding = vec
			}
		}
		if err := e.st.SaveTrainingSample(sample); err != nil {
			return fail(err)
		}
		if isJSONOutput() {
			outputSuccess(sample, nil)
			return nil
		}
		fmt.Println(ui.Successf("recorded %s", ui.Accent.Render(sample.ID)))
		return nil
	},
}

var trainListCmd = &cobra.Command{
	Use:   "list",
	Short: "List training samples",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return fail(err)
		}
		defer e.Close()

		samples, err := e.st.ListTrainingSamples()
		if err != nil {
			return fail(err)
		}
		if isJSONOutput() {
			outputSuccess(samples, &Meta{Count: len(samples)})
			return nil
		}
		if len(samples) == 0 {
			fmt.Println(ui.Hint("no training samples"))
			return nil
		}
		display := ui.NewDisplayContext()
		table := ui.NewResultsTable(display, ui.SearchLayout)
		contentWidth := table.ContentWidth("content")
		for i, s := range samples {
			meta := string(s.DataType)
			if s.QualityScore != nil {
				meta += fmt.Sprintf(" %.1f", *s.QualityScore)
			}
			table.AddRow(ui.ResultRow{
				Num:      i + 1,
				Cells:    []string{ui.FormatRowNum(i+1, len(samples)), ui.TruncateWithEllipsis(s.Prompt, contentWidth), meta, s.Source},
				Location: "training:" + s.ID,
			})
		}
		fmt.Println(table.Render())
		return nil
	},
}

var trainDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a training sample",
	Args:  cobra.ExactArgs(1),
	RunE:  deleteByID(func(e *env, id string) error { return e.st.DeleteTrainingSample(id) }),
}

func init() {
	trainAddCmd.Flags().StringVarP(&trainType, "type", "T", "", "Data type (conversation, correction, preference, ...)")
	trainAddCmd.Flags().StringVar(&trainSource, "source", "", "Where the sample came from")
	trainAddCmd.Flags().StringVar(&trainContext, "context", "", "Supporting context")
	trainAddCmd.Flags().StringVar(&trainQuality, "quality", "", "Quality score between 0 and 1")
	trainAddCmd.Flags().StringSliceVar(&trainTags, "tags", nil, "Comma-separated tags")
	trainCmd.AddCommand(trainAddCmd, trainListCmd, trainDeleteCmd)
	rootCmd.AddCommand(trainCmd)
}
