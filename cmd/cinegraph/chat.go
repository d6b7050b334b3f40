package main

import (
	"fmt"
	"os"

	"github.com/aretw0/cinegraph/internal/cli"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive session with the film blog assistant",
	Long: `Reads requests from stdin and runs them through the assistant.
Type 'no', 'basta' or 'esci' to quit. Sessions are checkpointed, so running
again with the same --thread resumes the conversation, including a pending review.`,
	Run: func(cmd *cobra.Command, args []string) {
		opts := cli.ChatOptions{}
		opts.Dir, _ = cmd.Flags().GetString("dir")
		opts.Debug, _ = cmd.Flags().GetBool("debug")
		opts.JSON, _ = cmd.Flags().GetBool("json")
		opts.ThreadID, _ = cmd.Flags().GetString("thread")
		opts.Fresh, _ = cmd.Flags().GetBool("fresh")
		opts.Quiet, _ = cmd.Flags().GetBool("quiet")
		if cmd.Flags().Changed("follow-up") {
			followUp, _ := cmd.Flags().GetBool("follow-up")
			opts.FollowUp = &followUp
		}

		if opts.Fresh && opts.ThreadID == "" {
			fmt.Println("Error: --fresh requires --thread.")
			os.Exit(1)
		}

		if err := cli.Execute(opts); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringP("thread", "t", "", "Thread id to resume (default: a new random thread)")
	chatCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	chatCmd.Flags().Bool("fresh", false, "Delete the thread's checkpoint before starting")
	chatCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner and session messages")
	chatCmd.Flags().Bool("follow-up", true, "Ask whether to continue after each turn (overrides policy.follow_up)")

	// chat is the default command.
	rootCmd.Run = chatCmd.Run
	rootCmd.Flags().AddFlagSet(chatCmd.Flags())
}
