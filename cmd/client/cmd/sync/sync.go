// cmd/client/cmd/sync/sync.go
package sync

import (
	"fmt"
	"time"

	"surveysync/cmd/client/cmd/types"
	"surveysync/internal/app/client"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	syncStatus bool
	showLog    bool
)

var SyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Upload submitted surveys",
	Long: `Upload submitted surveys to the collector server.

Surveys are uploaded one at a time. Each accepted survey is removed
from the device together with its photos; rejected or failed surveys
stay local and are retried on the next sync.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok || app == nil {
			return fmt.Errorf("application is not initialized")
		}

		if syncStatus {
			return showSyncStatus(app)
		}
		if showLog {
			return showSyncedLog(app)
		}

		return runSync(cmd, app)
	},
}

func runSync(cmd *cobra.Command, app *client.App) error {
	if !app.IsAuthenticated() {
		return fmt.Errorf("authentication required, run: surveysync auth login")
	}

	pending := app.PendingSurveys()
	if len(pending) == 0 {
		fmt.Println("Nothing to sync")
		return nil
	}

	fmt.Printf("Uploading %d surveys...\n", len(pending))
	start := time.Now()

	result, err := app.Sync(cmd.Context())
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	fmt.Println()
	color.Green("Uploaded: %d", result.SuccessCount)
	if result.FailedCount > 0 {
		color.Yellow("Failed:   %d (kept locally, retried on next sync)", result.FailedCount)
	}
	fmt.Printf("Took %v\n", time.Since(start).Round(time.Millisecond))
	return nil
}

func showSyncStatus(app *client.App) error {
	pending := app.PendingSurveys()
	state := app.State()

	fmt.Printf("Pending surveys: %d\n", len(pending))
	for _, s := range pending {
		fmt.Printf("  %s (%s, created %s)\n", s.ID, s.SurveyType, s.CreatedAt.Format("2006-01-02"))
	}
	if !state.LastSync.IsZero() {
		fmt.Printf("Last sync: %s\n", state.LastSync.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func showSyncedLog(app *client.App) error {
	entries := app.SyncedLog()
	if len(entries) == 0 {
		fmt.Println("No surveys synced yet")
		return nil
	}

	for _, e := range entries {
		fmt.Printf("%s  user=%d  %s\n", e.SyncedAt.Format("2006-01-02 15:04:05"), e.UserID, e.ID)
	}
	return nil
}

func init() {
	SyncCmd.Flags().BoolVar(&syncStatus, "status", false, "show pending surveys instead of syncing")
	SyncCmd.Flags().BoolVar(&showLog, "log", false, "show the synced-surveys audit log")
}
