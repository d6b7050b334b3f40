package main

import (
	"fmt"

	"github.com/aretw0/cinegraph"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of cinegraph",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("cinegraph version %s\n", cinegraph.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
