package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/apkaudio/openair"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of openair",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("openair version %s\n", strings.TrimSpace(openair.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
