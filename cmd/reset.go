package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cinelens/cinelens/internal/utils"
)

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the analysis history database",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		if err := requireDB(); err != nil {
			utils.ShowError("Nothing to reset", err)
			return err
		}

		if !resetYes {
			reader := bufio.NewReader(os.Stdin)
			if !confirm(reader, "⚠️  Are you sure you want to DROP the analysis history?") {
				fmt.Println("Aborted.")
				return nil
			}
		}

		fmt.Println("🗑️  Clearing analysis history...")
		if err := DB.Reset(cmd.Context()); err != nil {
			utils.ShowError("Failed to reset history", err)
			return err
		}
		fmt.Println("✅ Done.")
		return nil
	},
}

func confirm(reader *bufio.Reader, prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func init() {
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}
