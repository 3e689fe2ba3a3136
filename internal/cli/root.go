package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "dicectl",
		Short: "CLI tool for the dice game API",
		Long: `dicectl is a CLI tool for interacting with the escrowed dice game JSON API.

It can create game instances, send join/roll/leave messages on behalf of a
sender address, query winners and balances, and stream live game events.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			client = NewClient(cfg.ServerURL, cfg.Sender)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: DICE_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.Sender, "sender", cfg.Sender, "Sender address for messages (env: DICE_SENDER)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newGameCmd())
	rootCmd.AddCommand(newJoinCmd())
	rootCmd.AddCommand(newRollCmd())
	rootCmd.AddCommand(newLeaveCmd())
	rootCmd.AddCommand(newWhoWonCmd())
	rootCmd.AddCommand(newBalanceCmd())
	rootCmd.AddCommand(newEventsCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
