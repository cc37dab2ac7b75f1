package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "openair",
	Short: "OpenAir is a declarative instrument control panel",
	Long:  `OpenAir builds live control panels from declarative documents and keeps every panel on the message bus converged on the same values.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("panel", "panel.yaml", "Path to the panel document")
	rootCmd.PersistentFlags().String("config", "", "Path to the application config file")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}
