// cmd/client/cmd/survey/delete.go
package survey

import (
	"fmt"

	"github.com/spf13/cobra"
)

var DeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a local survey",
	Long: `Remove a survey from the device along with its photos.

This only affects local storage; surveys already uploaded to the
collector server are not touched.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		if err := app.Surveys().Remove(args[0]); err != nil {
			return fmt.Errorf("failed to delete survey: %w", err)
		}

		fmt.Printf("Survey %s deleted\n", args[0])
		return nil
	},
}
