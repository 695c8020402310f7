// cmd/client/cmd/auth/logout.go
package auth

import (
	"fmt"

	"surveysync/cmd/client/cmd/types"
	"surveysync/internal/app/client"

	"github.com/spf13/cobra"
)

var LogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and clear the stored token",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok || app == nil {
			return fmt.Errorf("application is not initialized")
		}

		if err := app.Logout(); err != nil {
			return fmt.Errorf("logout failed: %w", err)
		}

		fmt.Println("Logged out. Local surveys are kept on the device.")
		return nil
	},
}
