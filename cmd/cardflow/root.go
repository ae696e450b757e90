package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "cardflow",
		Short:         "Card classification and gateway wire tooling",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(classifyCmd())
	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(authmsgCmd())
	rootCmd.AddCommand(serveCmd())

	return rootCmd
}
