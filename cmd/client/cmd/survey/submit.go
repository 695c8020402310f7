// cmd/client/cmd/survey/submit.go
package survey

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var SubmitCmd = &cobra.Command{
	Use:   "submit [id]",
	Short: "Mark a survey as submitted",
	Long: `Mark a survey ready for upload.

A submitted survey is picked up by the next sync. The transition is
one-way: a submitted survey never reverts to incomplete.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		if err := app.Surveys().MarkSubmitted(args[0]); err != nil {
			return fmt.Errorf("failed to submit survey: %w", err)
		}

		color.Green("Survey %s submitted. Run 'surveysync sync' to upload.", args[0])
		return nil
	},
}
