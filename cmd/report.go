package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cinelens/cinelens/internal/report"
	"github.com/cinelens/cinelens/internal/utils"
)

var reportOpts Options

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Assemble the PDF report from a saved analysis",
	Long: `Builds the multi-page PDF document from a report JSON saved by "analyze",
or from a stored history entry when --id is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runReport(cmd.Context(), reportOpts)
	},
}

func init() {
	reportCmd.Flags().StringVarP(&reportOpts.InputPath, "input", "i", "", "Report JSON produced by analyze")
	reportCmd.Flags().StringVar(&reportOpts.ReportID, "id", "", "Stored analysis ID from the history database")
	reportCmd.Flags().StringVarP(&reportOpts.OutputPath, "output", "o", "", `Output path (default: "CineLens - <title>.pdf")`)
	rootCmd.AddCommand(reportCmd)
}

func runReport(ctx context.Context, opts Options) error {
	var rep *report.AnalysisReport
	switch {
	case opts.ReportID != "":
		if err := requireDB(); err != nil {
			utils.ShowError("Cannot load stored analysis", err)
			return err
		}
		stored, err := DB.GetReport(ctx, opts.ReportID)
		if err != nil {
			utils.ShowError("Failed to load stored analysis", err)
			return err
		}
		if stored == nil {
			err := fmt.Errorf("no stored analysis with id %s", opts.ReportID)
			utils.ShowError("Unknown analysis", err)
			return err
		}
		rep = stored

	case opts.InputPath != "":
		data, err := os.ReadFile(opts.InputPath)
		if err != nil {
			utils.ShowError("Failed to read report JSON", err)
			return err
		}
		rep = &report.AnalysisReport{}
		if err := json.Unmarshal(data, rep); err != nil {
			utils.ShowError("Report JSON is not valid", err)
			return err
		}

	default:
		err := fmt.Errorf("either --input or --id is required")
		utils.ShowError("Nothing to assemble", err)
		return err
	}

	return assemblePDF(ctx, newClient(), rep, opts.OutputPath)
}
