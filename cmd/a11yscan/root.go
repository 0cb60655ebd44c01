package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for a11yscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "a11yscan",
		Short: "Accessibility auditing tool for web pages",
		Long: `a11yscan fetches a list of web pages and checks each one against a set of
accessibility rules, then reports the findings per page and per category.

By default pages are fetched through a proxy endpoint. Run "a11yscan proxy"
to start one locally, or use --source direct to fetch pages yourself.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().String("log-format", "text", "Log format: text or json")

	// Add subcommands
	cmd.AddCommand(NewAuditCmd())
	cmd.AddCommand(NewProxyCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
