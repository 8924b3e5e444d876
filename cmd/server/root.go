package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var envFile string

// NewRootCmd creates the root command for the DevCode CLI. Without a
// subcommand it serves the API.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devcode",
		Short: "DevCode backend - accounts, sessions and saved projects",
		Long: `DevCode backend serves registration, login, password reset and
project storage for the DevCode web editor.`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	cmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load (default .env)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
