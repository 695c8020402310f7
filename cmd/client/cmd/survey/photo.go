// cmd/client/cmd/survey/photo.go
package survey

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var photoLabel string

var PhotoCmd = &cobra.Command{
	Use:   "photo",
	Short: "Manage survey photos",
	Long: `Attach and list photos for a survey.

Attached photos are copied into the managed image directory and are
deleted together with the survey after a successful upload.`,
}

var PhotoAttachCmd = &cobra.Command{
	Use:   "attach [survey-id] [file]",
	Short: "Attach a photo to a survey",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		uri, err := app.AttachPhoto(args[0], args[1], photoLabel)
		if err != nil {
			return fmt.Errorf("failed to attach photo: %w", err)
		}

		color.Green("Photo stored: %s", uri)
		return nil
	},
}

var PhotoListCmd = &cobra.Command{
	Use:   "list [survey-id]",
	Short: "List photos of a survey",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		photos := app.Photos(args[0])
		if len(photos) == 0 {
			fmt.Println("No photos found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "ID\tLabel\tURI\tTaken\t\n")
		for _, p := range photos {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t\n",
				p.ID, p.Label, p.PhotoURI, p.Timestamp.Format("2006-01-02 15:04:05"))
		}
		return w.Flush()
	},
}

func init() {
	PhotoAttachCmd.Flags().StringVarP(&photoLabel, "label", "l", "", "photo label (e.g. front, electricity-meter)")
}
