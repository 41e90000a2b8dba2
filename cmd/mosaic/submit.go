package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var submitCmd = &cobra.Command{
	Use:   "submit <username>",
	Short: "Submit a mosaic task for a Letterboxd user",
	Long: `Submit a mosaic generation task for a Letterboxd username.

Mode 0 renders films watched in the current month, mode 1 the
most recent 30 watched films.

Examples:
  mosaic submit davidlynch             # Current month mosaic
  mosaic submit davidlynch --mode 1    # Most recent 30 films`,
	Args: cobra.ExactArgs(1),
	RunE: runSubmitCmd,
}

func init() {
	rootCmd.AddCommand(submitCmd)
	submitCmd.Flags().Int("mode", 0, "Selection mode (0 = current month, 1 = recent 30)")
}

func runSubmitCmd(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL)
	mode, _ := cmd.Flags().GetInt("mode")

	task, err := client.Submit(args[0], mode)
	if err != nil {
		return fmt.Errorf("submit failed: %w", err)
	}

	if jsonOutput {
		printJSON(task)
		return nil
	}

	fmt.Printf("Task #%d queued for %s (mode %d)\n", task.ID, task.Username, task.Mode)
	fmt.Printf("Check progress with: mosaic status %d\n", task.ID)
	return nil
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
