// cmd/client/cmd/survey/get.go
package survey

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var GetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Show one survey",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		s, err := app.Surveys().GetByID(args[0])
		if err != nil {
			return fmt.Errorf("failed to get survey: %w", err)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	},
}
