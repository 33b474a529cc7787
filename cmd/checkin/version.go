package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "0.1.0-dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of checkin",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("checkin version %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
