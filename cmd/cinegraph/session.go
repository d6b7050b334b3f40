package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/cinegraph/internal/cli"
	"github.com/aretw0/cinegraph/internal/config"
	"github.com/aretw0/cinegraph/pkg/domain"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage checkpointed sessions",
	Long:  `List, inspect, and remove the sessions stored by the configured checkpoint store.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all stored sessions",
	Run: func(cmd *cobra.Command, args []string) {
		backend, _ := openBackend(cmd)
		defer backend.Close()

		keys, err := backend.Store.List(cmd.Context())
		if err != nil {
			fmt.Printf("Error listing sessions: %v\n", err)
			os.Exit(1)
		}

		if len(keys) == 0 {
			fmt.Println("No sessions found.")
			return
		}

		fmt.Println("Sessions:")
		for _, k := range keys {
			fmt.Println("- " + k.String())
		}
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <thread-id | thread/ns/checkpoint>",
	Short: "Print the latest checkpoint of a session",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		backend, cfg := openBackend(cmd)
		defer backend.Close()

		key, err := parseKey(cfg, args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		cp, err := backend.Store.Load(cmd.Context(), key)
		if err != nil {
			fmt.Printf("Error loading session '%s': %v\n", key, err)
			os.Exit(1)
		}

		data, err := json.MarshalIndent(cp, "", "  ")
		if err != nil {
			fmt.Printf("Error marshaling checkpoint: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <thread-id | thread/ns/checkpoint>...",
	Short: "Remove one or more sessions",
	Args: func(cmd *cobra.Command, args []string) error {
		if all, _ := cmd.Flags().GetBool("all"); all {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.MinimumNArgs(1)(cmd, args)
	},
	Run: func(cmd *cobra.Command, args []string) {
		backend, cfg := openBackend(cmd)
		defer backend.Close()

		var keys []domain.CheckpointKey
		if all, _ := cmd.Flags().GetBool("all"); all {
			var err error
			keys, err = backend.Store.List(cmd.Context())
			if err != nil {
				fmt.Printf("Error listing sessions: %v\n", err)
				os.Exit(1)
			}
		}
		hasError := false
		for _, arg := range args {
			key, err := parseKey(cfg, arg)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				hasError = true
				continue
			}
			keys = append(keys, key)
		}

		for _, key := range keys {
			if err := backend.Store.Delete(cmd.Context(), key); err != nil {
				fmt.Printf("Error removing '%s': %v\n", key, err)
				hasError = true
			} else {
				fmt.Printf("Removed session '%s'\n", key)
			}
		}

		if hasError {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)

	sessionRmCmd.Flags().Bool("all", false, "Remove every stored session")
}

func openBackend(cmd *cobra.Command) (*cli.Backend, *config.Config) {
	cfg, dir := loadConfig(cmd)
	backend, err := cli.NewBackend(cfg, dir)
	if err != nil {
		fmt.Printf("Error opening store: %v\n", err)
		os.Exit(1)
	}
	return backend, cfg
}

// parseKey accepts a full thread/ns/checkpoint key or a bare thread id,
// which gets the configured namespace and checkpoint id.
func parseKey(cfg *config.Config, s string) (domain.CheckpointKey, error) {
	if strings.Contains(s, "/") {
		return domain.ParseCheckpointKey(s)
	}
	sess := cfg.SessionFor(s)
	if err := sess.Validate(); err != nil {
		return domain.CheckpointKey{}, err
	}
	return sess.Key(), nil
}
