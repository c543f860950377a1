package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/civicwatch/civicwatch/internal/interfaces/cli/migrate"
	"github.com/civicwatch/civicwatch/internal/interfaces/cli/seed"
	"github.com/civicwatch/civicwatch/internal/interfaces/cli/server"
	"github.com/civicwatch/civicwatch/internal/interfaces/cli/token"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "civicwatch",
		Short: "CivicWatch - barangay issue reporting portal",
		Long:  `CivicWatch takes citizen incident reports, triages and deduplicates them, and gives barangay staff an API to moderate them.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		seed.NewCommand(),
		token.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
