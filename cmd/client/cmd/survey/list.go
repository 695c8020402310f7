// cmd/client/cmd/survey/list.go
package survey

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"surveysync/internal/domain/survey"

	"github.com/spf13/cobra"
)

var (
	listStatus string
	listFormat string
)

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List local surveys",
	Long: `Show the surveys stored on the device.

Use --status to filter by incomplete or submitted.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		all := app.Surveys().GetAll()
		if listStatus != "" {
			filtered := all[:0]
			for _, s := range all {
				if s.Status == survey.Status(listStatus) {
					filtered = append(filtered, s)
				}
			}
			all = filtered
		}

		switch listFormat {
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(all)
		default:
			return printSurveysTable(all)
		}
	},
}

func printSurveysTable(surveys []survey.LocalSurvey) error {
	if len(surveys) == 0 {
		fmt.Println("No surveys found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tType\tStatus\tFloors\tCreated\t\n")
	fmt.Fprintf(w, "---\t---\t---\t---\t---\t\n")

	for _, s := range surveys {
		floors := len(s.Data.ResidentialPropertyAssessments) +
			len(s.Data.NonResidentialPropertyAssessments)
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t\n",
			s.ID,
			s.SurveyType,
			s.Status,
			floors,
			s.CreatedAt.Format("2006-01-02"),
		)
	}

	w.Flush()
	fmt.Printf("\nTotal: %d\n", len(surveys))
	return nil
}

func init() {
	ListCmd.Flags().StringVarP(&listStatus, "status", "s", "", "filter by status (incomplete, submitted)")
	ListCmd.Flags().StringVarP(&listFormat, "format", "f", "table", "output format (table, json)")
}
