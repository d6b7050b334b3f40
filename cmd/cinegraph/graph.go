package main

import (
	"fmt"
	"os"

	"github.com/aretw0/cinegraph/internal/presentation/graph"
	"github.com/aretw0/cinegraph/internal/runtime"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph [thread-id | thread/ns/checkpoint]",
	Short: "Print the orchestration graph as Mermaid",
	Long:  `Print the node graph as a Mermaid flowchart. With a session argument, the nodes it visited and the node it stopped at are highlighted.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var overlay *graph.Overlay
		if len(args) == 1 {
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
			overlay = graph.OverlayFor(cp)
		}
		fmt.Print(graph.GenerateMermaid(runtime.Edges(), overlay))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
