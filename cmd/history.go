package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cinelens/cinelens/internal/utils"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past analyses stored in the history database",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		if err := requireDB(); err != nil {
			utils.ShowError("History unavailable", err)
			return err
		}

		rows, err := DB.ListAnalyses(cmd.Context())
		if err != nil {
			utils.ShowError("Failed to list analyses", err)
			return err
		}
		if len(rows) == 0 {
			fmt.Println("No stored analyses yet. Run an analyze with a database configured.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tDATE\tDURATION\tFRAMES\tACTORS")
		for _, row := range rows {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.1fs\t%d\t%d\n",
				row.ID, row.Title, row.CreatedAt.Format("2006-01-02 15:04"),
				row.Duration, row.FrameCount, row.ActorCount)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
