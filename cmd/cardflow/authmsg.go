package main

import (
	"encoding/hex"
	"fmt"

	"github.com/alovak/cardflow-gateway/card"
	"github.com/alovak/cardflow-gateway/internal/cardmsg"
	"github.com/spf13/cobra"
)

func authmsgCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authmsg [card arguments as for classify]",
		Short: "Pack an ISO 8583 authorization request for a card",
		Args:  cobra.RangeArgs(1, 7),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, _ := cmd.Flags().GetInt64("amount")
			currency, _ := cmd.Flags().GetString("currency")

			req := cardmsg.AuthorizationRequest{
				Amount:   amount,
				Currency: currency,
				Card:     card.New(card.FromArgs(args...)),
			}
			if cmd.Flags().Changed("stan") {
				stan, _ := cmd.Flags().GetInt("stan")
				req.STAN = &stan
			}

			b, err := cardmsg.PackAuthorization(req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(b))
			return nil
		},
	}

	cmd.Flags().Int64("amount", 0, "amount in minor units")
	cmd.Flags().String("currency", "USD", "ISO 4217 alpha currency code")
	cmd.Flags().Int("stan", 0, "system trace audit number (DE11)")

	return cmd
}
