// cmd/client/cmd/survey/surveys.go
package survey

import (
	"fmt"

	"surveysync/cmd/client/cmd/types"
	"surveysync/internal/app/client"

	"github.com/spf13/cobra"
)

var SurveyCmd = &cobra.Command{
	Use:   "survey",
	Short: "Work with local surveys",
	Long: `Capture and manage property surveys on the device.

Surveys live entirely in local storage until they are submitted and a
sync uploads them to the collector server.`,
}

func appFrom(cmd *cobra.Command) (*client.App, error) {
	app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
	if !ok || app == nil {
		return nil, fmt.Errorf("application is not initialized")
	}
	return app, nil
}
