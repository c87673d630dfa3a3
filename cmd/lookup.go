package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cinelens/cinelens/internal/utils"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <title>",
	Short: "Look up a title in the external catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		match, err := newClient().LookupTitle(cmd.Context(), args[0])
		if err != nil {
			utils.ShowError("Catalog lookup failed", err)
			return err
		}
		if match.Title == "" {
			fmt.Println("❌ No catalog match found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "Title:\t%s\n", match.Title)
		if match.Year != "" {
			fmt.Fprintf(w, "Year:\t%s\n", match.Year)
		}
		if match.Rating > 0 {
			fmt.Fprintf(w, "Rating:\t%.1f\n", match.Rating)
		}
		if match.PosterURL != "" {
			fmt.Fprintf(w, "Poster:\t%s\n", match.PosterURL)
		}
		if match.Overview != "" {
			fmt.Fprintf(w, "Overview:\t%s\n", match.Overview)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd)
}
