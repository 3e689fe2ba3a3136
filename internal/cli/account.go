package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance [address]",
		Short: "Show the balance credited to an address (defaults to the sender)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var addr string
			if len(args) == 1 {
				addr = args[0]
			} else {
				sender, err := cfg.RequireSender()
				if err != nil {
					return err
				}
				addr = sender
			}

			var result Balance
			if err := client.Get(cmd.Context(), fmt.Sprintf("/api/v1/accounts/%s/balance", url.PathEscape(addr)), &result); err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
