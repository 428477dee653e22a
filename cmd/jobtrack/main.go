// Command jobtrack serves the job tracking assistant over HTTP or runs it as
// an interactive chat on the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/jobtrack/config"
)

var envFiles []string

var rootCmd = &cobra.Command{
	Use:   "jobtrack",
	Short: "Conversational job application tracker",
	Long: `jobtrack resolves chat messages into job tracking operations: adding
applications, updating their status, deleting and listing them.

Configuration is read from the environment, optionally seeded from .env files.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve GET /health and POST /agent/message",
	RunE:  runServe,
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the assistant on stdin",
	Long: `Reads one message per line from stdin and prints each reply.

Example:
  jobtrack chat --user me
  > add Stripe backend engineer
  > mark stripe as interview`,
	RunE: runChat,
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "Load environment from these files (default: .env)")

	serveCmd.Flags().String("port", "", "Listen port (overrides PORT)")

	chatCmd.Flags().String("user", "local", "Owner id of the chat")
	chatCmd.Flags().String("conversation", "", "Conversation id (default: random)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(chatCmd)
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
