package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var resultCmd = &cobra.Command{
	Use:   "result <task-id>",
	Short: "Download the rendered mosaic for a completed task",
	Long: `Download the rendered mosaic image for a completed task.

Writes the PNG to mosaic-<task-id>.png unless -o is given.

Examples:
  mosaic result 42
  mosaic result 42 -o davidlynch.png`,
	Args: cobra.ExactArgs(1),
	RunE: runResultCmd,
}

func init() {
	rootCmd.AddCommand(resultCmd)
	resultCmd.Flags().StringP("output", "o", "", "Output file path")
}

func runResultCmd(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid task ID: %s", args[0])
	}

	client := NewClient(serverURL)
	data, err := client.GetResult(id)
	if err != nil {
		return fmt.Errorf("result fetch failed: %w", err)
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = fmt.Sprintf("mosaic-%d.png", id)
	}

	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	fmt.Printf("Wrote %s (%d bytes)\n", output, len(data))
	return nil
}
