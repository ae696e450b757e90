package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alovak/cardflow-gateway/card"
	"github.com/alovak/cardflow-gateway/internal/cardgen"
	"github.com/spf13/cobra"
)

// prefixes each network's rule accepts without overlapping another rule
var testPrefixes = map[card.Network]string{
	card.Visa:            "411111",
	card.Master:          "555555",
	card.AmericanExpress: "378282",
	card.Discover:        "601111",
	card.JCB:             "353011",
	card.DinersClub:      "305693",
	card.Dankort:         "501971",
}

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a Luhn-valid test card number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			network, _ := cmd.Flags().GetString("network")
			length, _ := cmd.Flags().GetInt("length")
			prefix, _ := cmd.Flags().GetString("prefix")
			sequence, _ := cmd.Flags().GetString("sequence")
			verbose, _ := cmd.Flags().GetBool("verbose")
			name, _ := cmd.Flags().GetString("card-name")

			pan, err := generatePAN(card.Network(network), prefix, length, sequence)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printPAN := cardgen.MaskPAN(pan)
			if verbose {
				printPAN = pan
			}
			fmt.Fprintf(out, "PAN: %s\n", printPAN)
			fmt.Fprintf(out, "NETWORK: %s\n", card.Classify(pan, "", card.LastMatch).Network)
			if cardName := normalizeCardName(name); cardName != "" {
				fmt.Fprintf(out, "NAME(card-face): %s\n", cardName)
			}
			return nil
		},
	}

	cmd.Flags().StringP("network", "n", string(card.Visa), "network: "+strings.Join(networkNames(), ", "))
	cmd.Flags().IntP("length", "l", 0, "number length (defaults to the network's longest)")
	cmd.Flags().String("prefix", "", "override the network's test prefix (1-9 digits)")
	cmd.Flags().String("sequence", "", "optional numeric sequence (before check digit)")
	cmd.Flags().BoolP("verbose", "v", false, "print full PAN (otherwise masked)")
	cmd.Flags().String("card-name", "", "cardholder name for card face imprint")

	return cmd
}

// generatePAN builds a number the network's rule accepts.
func generatePAN(network card.Network, prefix string, length int, sequence string) (string, error) {
	var rule *card.Rule
	for _, r := range card.Rules() {
		if r.Network == network {
			r := r
			rule = &r
		}
	}
	if rule == nil {
		return "", fmt.Errorf("unknown network %q", network)
	}

	if length == 0 {
		length = rule.Lengths[len(rule.Lengths)-1]
	}
	allowed := false
	for _, l := range rule.Lengths {
		allowed = allowed || l == length
	}
	if !allowed {
		return "", fmt.Errorf("%s numbers are %v digits long, not %d", network, rule.Lengths, length)
	}

	if prefix == "" {
		prefix = testPrefixes[network]
	}
	if !rule.Pattern.MatchString(prefix) {
		return "", fmt.Errorf("prefix %s does not belong to %s", prefix, network)
	}

	return cardgen.GeneratePANWithLength(prefix, length, sequence)
}

func networkNames() []string {
	out := make([]string, 0, len(testPrefixes))
	for n := range testPrefixes {
		out = append(out, string(n))
	}
	sort.Strings(out)
	return out
}

func normalizeCardName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	normalized := strings.Join(strings.Fields(trimmed), " ")
	up := strings.ToUpper(normalized)
	if len(up) > 26 {
		return up[:26]
	}
	return up
}
