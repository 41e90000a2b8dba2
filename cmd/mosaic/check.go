package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// UserCheck mirrors the server's user existence response.
type UserCheck struct {
	Username string `json:"username"`
	Exists   bool   `json:"exists"`
}

var checkCmd = &cobra.Command{
	Use:   "check <username>",
	Short: "Check whether a Letterboxd user has a public feed",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheckCmd,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheckCmd(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL)

	var res UserCheck
	if err := client.get("/api/v1/users/"+args[0], &res); err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	if jsonOutput {
		printJSON(res)
		return nil
	}

	if res.Exists {
		fmt.Printf("%s has a public feed\n", res.Username)
	} else {
		fmt.Printf("%s not found\n", res.Username)
	}
	return nil
}
