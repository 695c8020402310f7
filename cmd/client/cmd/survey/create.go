// cmd/client/cmd/survey/create.go
package survey

import (
	"encoding/json"
	"fmt"
	"os"

	"surveysync/internal/app/client"
	"surveysync/internal/domain/survey"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	surveyType string
	dataFile   string
)

var CreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new local survey",
	Long: `Create a survey on the device.

Survey types: Residential, NonResidential, Mixed.

With --file the survey data is read as JSON from the given file.
Without it an empty form is created, with location details pre-filled
from your primary ward assignment.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		t := survey.Type(surveyType)
		if !t.Valid() {
			return fmt.Errorf("unsupported survey type: %s", surveyType)
		}

		var data survey.Data
		if dataFile != "" {
			raw, err := os.ReadFile(dataFile)
			if err != nil {
				return fmt.Errorf("failed to read data file: %w", err)
			}
			if err := json.Unmarshal(raw, &data); err != nil {
				return fmt.Errorf("invalid survey data: %w", err)
			}
		} else {
			data = emptyForm(app)
		}

		s := &survey.LocalSurvey{
			SurveyType: t,
			Data:       data,
		}
		if err := app.Surveys().Save(s); err != nil {
			return fmt.Errorf("failed to save survey: %w", err)
		}

		color.Green("Survey created: %s", s.ID)
		return nil
	},
}

// emptyForm builds a blank payload. Location details are pre-filled
// from the primary assignment when one is set.
func emptyForm(app *client.App) survey.Data {
	empty := json.RawMessage("{}")
	data := survey.Data{
		SurveyDetails:   empty,
		PropertyDetails: empty,
		OwnerDetails:    empty,
		LocationDetails: empty,
		OtherDetails:    empty,
	}
	if primary := app.Master().Primary(); primary != nil {
		loc, err := json.Marshal(map[string]any{
			"ulbNameId":  primary.ULB.ID,
			"zoneNameId": primary.Zone.ID,
			"wardNameId": primary.Ward.ID,
		})
		if err == nil {
			data.LocationDetails = loc
		}
	}
	return data
}

func init() {
	CreateCmd.Flags().StringVarP(&surveyType, "type", "t", "", "survey type (Residential, NonResidential, Mixed)")
	CreateCmd.Flags().StringVarP(&dataFile, "file", "f", "", "JSON file with survey data")
	_ = CreateCmd.MarkFlagRequired("type")
}
