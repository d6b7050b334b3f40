package main

import (
	"fmt"
	"os"

	"github.com/aretw0/cinegraph/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cinegraph",
	Short: "cinegraph is an assistant that researches and writes film blog articles",
	Long: `cinegraph drives a language model through web search, scraping, writing and
fact-checking capabilities, pausing for a human review of every generated article.`,
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
	rootCmd.PersistentFlags().String("dir", ".", "Project directory (cinegraph.yaml and .cinegraph/)")
	rootCmd.PersistentFlags().Bool("debug", false, "Log engine events to stderr")
}

// loadConfig reads cinegraph.yaml from --dir.
func loadConfig(cmd *cobra.Command) (*config.Config, string) {
	dir, _ := cmd.Flags().GetString("dir")
	cfg, err := config.LoadDir(dir)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg, dir
}
