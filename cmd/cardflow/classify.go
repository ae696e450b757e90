package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/alovak/cardflow-gateway/card"
	"github.com/spf13/cobra"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify [track] | [holder email number month year cvc] | [first last email number month year [cvc]]",
		Short: "Classify a card and check its number",
		Long: `Classify reads a card in one of three shapes: a single argument is raw
magnetic stripe data, six arguments with an email second are the compact
holder name form, anything else is first name, last name, email, number,
month, year and an optional cvc.`,
		Args: cobra.RangeArgs(1, 7),
		RunE: func(cmd *cobra.Command, args []string) error {
			policyName, _ := cmd.Flags().GetString("policy")
			policy, err := card.ParseMatchPolicy(policyName)
			if err != nil {
				return err
			}
			asJSON, _ := cmd.Flags().GetBool("json")

			c := card.New(card.FromArgs(args...), card.WithMatchPolicy(policy))
			return printCard(cmd, c, asJSON)
		},
	}

	cmd.Flags().StringP("policy", "p", card.LastMatch.String(), "rule match policy: last, first or specific")
	cmd.Flags().BoolP("json", "j", false, "Output as JSON")

	return cmd
}

func printCard(cmd *cobra.Command, c *card.Card, asJSON bool) error {
	out := cmd.OutOrStdout()

	expired := "unknown"
	if e, err := c.Expired(time.Now()); err == nil {
		expired = fmt.Sprint(e)
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"number":          c.Masked(),
			"network":         c.Network(),
			"valid":           c.Valid(),
			"expirationMonth": c.ExpirationMonth(),
			"expirationYear":  c.ExpirationYear(),
			"expired":         expired,
		})
	}

	network := string(c.Network())
	if network == "" {
		network = "(none)"
	}
	fmt.Fprintf(out, "PAN: %s\nNETWORK: %s\nVALID: %t\nEXP: %s/%s  EXPIRED: %s\n",
		c.Masked(), network, c.Valid(), c.ExpirationMonth(), c.ExpirationYear(), expired)
	if name := cardName(c); name != "" {
		fmt.Fprintf(out, "NAME(card-face): %s\n", name)
	}
	return nil
}

func cardName(c *card.Card) string {
	if c.HolderName != "" {
		return normalizeCardName(c.HolderName)
	}
	return normalizeCardName(c.FirstName + " " + c.LastName)
}
