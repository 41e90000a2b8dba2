package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <task-id>",
	Short: "Show the status of a mosaic task",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatusCmd,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatusCmd(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid task ID: %s", args[0])
	}

	client := NewClient(serverURL)
	task, err := client.GetTask(id)
	if err != nil {
		return fmt.Errorf("status check failed: %w", err)
	}

	if jsonOutput {
		printJSON(task)
		return nil
	}

	fmt.Printf("Task #%d  %s  (mode %d)\n", task.ID, task.Username, task.Mode)
	fmt.Printf("Status: %s\n", task.Status)
	if task.ErrorMsg != "" {
		fmt.Printf("Error:  %s\n", task.ErrorMsg)
	}
	fmt.Printf("Updated: %s\n", task.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
	return nil
}
