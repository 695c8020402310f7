// cmd/client/cmd/auth/auth.go
package auth

import (
	"github.com/spf13/cobra"
)

var AuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long: `Manage the session with the collector server.

Login stores the JWT token locally so surveys can be captured and
synced under your account. Logout clears the token but keeps local
surveys intact.`,
}
