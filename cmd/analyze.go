package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/cinelens/cinelens/internal/client"
	"github.com/cinelens/cinelens/internal/protocol"
	"github.com/cinelens/cinelens/internal/report"
	"github.com/cinelens/cinelens/internal/session"
	"github.com/cinelens/cinelens/internal/stream"
	"github.com/cinelens/cinelens/internal/utils"
)

var analyzeOpts Options

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Upload a clip and stream its live cinematography analysis",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runAnalyze(cmd.Context(), analyzeOpts)
	},
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeOpts.InputPath, "input", "i", "", "Path to video clip")
	analyzeCmd.Flags().StringVarP(&analyzeOpts.Title, "title", "t", "", "Clip title (default: file name)")
	analyzeCmd.Flags().StringVarP(&analyzeOpts.OutputPath, "output", "o", "", "Where to save the report JSON (default: <clip>.report.json)")
	analyzeCmd.Flags().BoolVar(&analyzeOpts.MakePDF, "pdf", false, "Also assemble the PDF report after the analysis completes")

	analyzeCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(analyzeCmd)
}

// runAnalyze orchestrates one analysis: Upload, Event Stream, Progress
// tracking, and report persistence.
func runAnalyze(ctx context.Context, opts Options) error {
	if _, err := os.Stat(opts.InputPath); err != nil {
		utils.ShowError("Input file does not exist", err)
		return err
	}
	if opts.Title == "" {
		base := filepath.Base(opts.InputPath)
		opts.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	cl := newClient()

	// 1. Upload; the response body is the live event stream.
	fmt.Fprintf(os.Stderr, "🎞️  Uploading %s...\n", filepath.Base(opts.InputPath))
	body, err := cl.Upload(ctx, opts.InputPath, opts.Title)
	if err != nil {
		utils.ShowError("Upload failed", err)
		return err
	}
	defer body.Close()

	// 2. Decode the stream into the session, driving the progress bar.
	bar := progressbar.NewOptions(100,
		progressbar.OptionSetDescription("🎬 Analyzing"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
	)

	sess := session.New(session.WithRewriter(cl.RewriteImageURL))
	dec := stream.NewDecoder()

	err = dec.Run(ctx, body, func(ev stream.Event) error {
		sess.Apply(protocol.Parse(ev))
		bar.Set(int(sess.Percent))
		if sess.Stage != "" {
			desc := "🎬 " + sess.Stage
			if sess.ETA > 0 {
				desc += " (ETA " + utils.FormatDuration(sess.ETA) + ")"
			}
			bar.Describe(desc)
		}
		return nil
	})
	bar.Finish()
	fmt.Fprintln(os.Stderr)
	if err != nil {
		utils.ShowError("Analysis stream failed", err)
		return err
	}

	// 3. Terminal state: server error, silent truncation, or a report.
	if sess.ErrMsg != "" {
		err := fmt.Errorf("%s", sess.ErrMsg)
		utils.ShowError("Analysis failed", err)
		return err
	}
	rep := sess.Report
	if rep == nil {
		err := fmt.Errorf("stream ended without a completed analysis")
		utils.ShowError("Analysis incomplete", err)
		return err
	}

	// 4. Persist the report JSON for later PDF assembly.
	outPath := opts.OutputPath
	if outPath == "" {
		outPath = strings.TrimSuffix(opts.InputPath, filepath.Ext(opts.InputPath)) + ".report.json"
	}
	if err := writeReportJSON(outPath, rep); err != nil {
		utils.ShowError("Failed to save report", err)
		return err
	}
	fmt.Fprintf(os.Stderr, "💾 Report saved to %s\n", outPath)

	// 5. Record the run in the history store when one is configured.
	if DB != nil {
		if err := DB.SaveAnalysis(ctx, rep); err != nil {
			utils.ShowError("Failed to record analysis history (continuing)", err)
		}
	}

	printSummary(sess, rep)

	if opts.MakePDF {
		return assemblePDF(ctx, cl, rep, "")
	}
	return nil
}

func writeReportJSON(path string, rep *report.AnalysisReport) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func printSummary(sess *session.Session, rep *report.AnalysisReport) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Title:\t%s\n", rep.Title)
	fmt.Fprintf(w, "Duration:\t%.1fs\n", rep.Duration)
	fmt.Fprintf(w, "Frames analyzed:\t%d\n", rep.FrameCount)
	fmt.Fprintf(w, "Faces detected:\t%d\n", sess.Faces)
	if sess.Rate > 0 {
		fmt.Fprintf(w, "Throughput:\t%.1f frames/s\n", sess.Rate)
	}
	fmt.Fprintf(w, "Actors recognized:\t%d\n", len(rep.Actors))
	for _, actor := range rep.Actors {
		line := actor.Name
		if actor.Character != "" {
			line += " as " + actor.Character
		}
		fmt.Fprintf(w, "\t%s (%d detections)\n", line, actor.Detections)
	}
	w.Flush()
}

// assemblePDF builds and writes the PDF document. An empty outPath derives
// the canonical "<product> - <title>.pdf" name next to the working directory.
func assemblePDF(ctx context.Context, cl *client.Client, rep *report.AnalysisReport, outPath string) error {
	asm := report.NewAssembler(report.WithImageFetcher(cl.FetchImage))
	doc, err := asm.Build(ctx, rep)
	if err != nil {
		utils.ShowError("Report generation failed", err)
		return err
	}
	if outPath == "" {
		outPath = asm.Filename(rep.Title)
	}
	if err := os.WriteFile(outPath, doc, 0o644); err != nil {
		utils.ShowError("Failed to write PDF", err)
		return err
	}
	fmt.Fprintf(os.Stderr, "📄 PDF written to %s\n", outPath)
	return nil
}
