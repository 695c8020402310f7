// cmd/client/cmd/survey/floor.go
package survey

import (
	"fmt"

	"surveysync/internal/domain/survey"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	floorSection       string
	floorNumber        string
	occupancyStatus    string
	constructionNature string
	coveredArea        float64
	carpetArea         float64
	floorUsage         string
	establishmentName  string
	licenseNumber      string
)

var FloorCmd = &cobra.Command{
	Use:   "floor",
	Short: "Manage per-floor assessments",
	Long: `Add and remove floor assessments on a survey.

A survey carries two independent assessment sequences, selected with
--section: residential and nonResidential.`,
}

var FloorAddCmd = &cobra.Command{
	Use:   "add [survey-id]",
	Short: "Add a floor assessment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		section, err := parseSection(floorSection)
		if err != nil {
			return err
		}

		floor := survey.FloorAssessment{
			FloorNumber:        floorNumber,
			OccupancyStatus:    occupancyStatus,
			ConstructionNature: constructionNature,
			CoveredArea:        coveredArea,
			CarpetArea:         carpetArea,
			Usage:              floorUsage,
			EstablishmentName:  establishmentName,
			LicenseNumber:      licenseNumber,
		}

		id, err := app.Surveys().AddFloor(args[0], section, floor)
		if err != nil {
			return fmt.Errorf("failed to add floor: %w", err)
		}

		color.Green("Floor added: %s", id)
		return nil
	},
}

var FloorRemoveCmd = &cobra.Command{
	Use:   "remove [survey-id] [floor-id]",
	Short: "Remove a floor assessment",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		section, err := parseSection(floorSection)
		if err != nil {
			return err
		}

		if err := app.Surveys().RemoveFloor(args[0], section, args[1]); err != nil {
			return fmt.Errorf("failed to remove floor: %w", err)
		}

		fmt.Printf("Floor %s removed\n", args[1])
		return nil
	},
}

func parseSection(s string) (survey.Section, error) {
	switch survey.Section(s) {
	case survey.SectionResidential, survey.SectionNonResidential:
		return survey.Section(s), nil
	}
	return "", fmt.Errorf("unsupported section: %s (use residential or nonResidential)", s)
}

func init() {
	FloorCmd.PersistentFlags().StringVar(&floorSection, "section", "residential", "assessment section (residential, nonResidential)")

	FloorAddCmd.Flags().StringVar(&floorNumber, "number", "", "floor number")
	FloorAddCmd.Flags().StringVar(&occupancyStatus, "occupancy", "", "occupancy status")
	FloorAddCmd.Flags().StringVar(&constructionNature, "construction", "", "construction nature")
	FloorAddCmd.Flags().Float64Var(&coveredArea, "covered-area", 0, "covered area in sq ft")
	FloorAddCmd.Flags().Float64Var(&carpetArea, "carpet-area", 0, "carpet area in sq ft")
	FloorAddCmd.Flags().StringVar(&floorUsage, "usage", "", "floor usage")
	FloorAddCmd.Flags().StringVar(&establishmentName, "establishment", "", "establishment name")
	FloorAddCmd.Flags().StringVar(&licenseNumber, "license", "", "license number")
	_ = FloorAddCmd.MarkFlagRequired("number")
}
