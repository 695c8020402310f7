// cmd/client/cmd/master/master.go
package master

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"surveysync/cmd/client/cmd/types"
	"surveysync/internal/app/client"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var MasterCmd = &cobra.Command{
	Use:   "master",
	Short: "Master data and ward assignments",
	Long: `Inspect and refresh the cached lookup tables and ward
assignments. The caches are also refreshed automatically on login.`,
}

var RefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh caches from the collector server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		if err := app.Master().Refresh(ctx); err != nil {
			return fmt.Errorf("refresh failed: %w", err)
		}

		color.Green("Master data and assignments refreshed")
		return nil
	},
}

var ShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show cached assignments",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		assignments := app.Master().Assignments()
		if len(assignments) == 0 {
			fmt.Println("No cached assignments. Run: surveysync master refresh")
			return nil
		}

		primary := app.Master().Primary()
		for _, a := range assignments {
			marker := " "
			if primary != nil && primary.ID == a.ID {
				marker = "*"
			}
			fmt.Printf("%s %d: %s / %s / %s (%d mohallas)\n",
				marker, a.ID, a.ULB.Name, a.Zone.Name, a.Ward.Name, len(a.Mohallas))
		}

		if bundle := app.Master().Bundle(); bundle != nil {
			fmt.Printf("\nLookup tables: %d property types, %d construction types, %d floor numbers\n",
				len(bundle.PropertyTypes), len(bundle.ConstructionTypes), len(bundle.FloorNumbers))
		}
		return nil
	},
}

var SetPrimaryCmd = &cobra.Command{
	Use:   "set-primary [assignment-id]",
	Short: "Choose the assignment that pre-fills new surveys",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid assignment id: %s", args[0])
		}

		if err := app.Master().SetPrimary(id); err != nil {
			return fmt.Errorf("failed to set primary assignment: %w", err)
		}

		color.Green("Primary assignment set to %d", id)
		return nil
	},
}

func appFrom(cmd *cobra.Command) (*client.App, error) {
	app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
	if !ok || app == nil {
		return nil, fmt.Errorf("application is not initialized")
	}
	return app, nil
}
