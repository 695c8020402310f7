// cmd/client/cmd/auth/whoami.go
package auth

import (
	"fmt"

	"surveysync/cmd/client/cmd/types"
	"surveysync/internal/app/client"

	"github.com/spf13/cobra"
)

var WhoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok || app == nil {
			return fmt.Errorf("application is not initialized")
		}

		if !app.IsAuthenticated() {
			fmt.Println("Not logged in. Run: surveysync auth login")
			return nil
		}

		state := app.State()
		fmt.Printf("Username:  %s\n", state.Username)
		fmt.Printf("User ID:   %d\n", state.UserID)
		fmt.Printf("Role:      %s\n", state.Role)
		if !state.LastSync.IsZero() {
			fmt.Printf("Last sync: %s\n", state.LastSync.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}
