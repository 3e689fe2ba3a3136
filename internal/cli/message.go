package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

func newJoinCmd() *cobra.Command {
	var (
		name   string
		secret string
		amount uint64
		denom  string
	)

	cmd := &cobra.Command{
		Use:   "join <game-id>",
		Short: "Join a game, attaching the stake as the deposit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := cfg.RequireSender(); err != nil {
				return err
			}
			if name == "" || secret == "" {
				return errors.New("--name and --secret are required")
			}

			req := map[string]any{
				"name":   name,
				"secret": secret,
			}
			if amount > 0 {
				req["funds"] = []Coin{{Denom: denom, Amount: amount}}
			}

			return sendMessage(cmd, gamePath(args[0], "/join"), req)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&secret, "secret", "", "Secret mixed into the dice roll")
	cmd.Flags().Uint64Var(&amount, "amount", 1_000_000, "Deposit amount in base units")
	cmd.Flags().StringVar(&denom, "denom", "uscrt", "Deposit denomination")

	return cmd
}

func newRollCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roll <game-id>",
		Short: "Roll the dice in a full game and pay out the pot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := cfg.RequireSender(); err != nil {
				return err
			}
			return sendMessage(cmd, gamePath(args[0], "/roll"), nil)
		},
	}
}

func newLeaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leave <game-id>",
		Short: "Leave a game you are waiting in alone and get your deposit back",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := cfg.RequireSender(); err != nil {
				return err
			}
			return sendMessage(cmd, gamePath(args[0], "/leave"), nil)
		},
	}
}

func newWhoWonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "who-won <game-id>",
		Short: "Show the winner of a resolved game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Winner

			if err := client.Get(cmd.Context(), gamePath(args[0], "/winner"), &result); err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func sendMessage(cmd *cobra.Command, path string, body any) error {
	var result TransactionResult

	if err := client.Post(cmd.Context(), path, body, &result); err != nil {
		return err
	}

	out := NewOutput(cmd.OutOrStdout(), cfg.Output)
	out.Print(result)
	return nil
}
