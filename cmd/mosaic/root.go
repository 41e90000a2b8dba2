package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	serverURL  string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "mosaic",
	Short: "CLI client for the moviemosaic daemon",
	Long: `mosaic - CLI client for the moviemosaic daemon

Submit mosaic generation tasks for a Letterboxd username,
poll their status, and download the rendered image.

Run 'mosaicd' to start the server daemon.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("mosaic {{.Version}}\n")
}
