// Package cli implements the updflow command line.
package cli

import (
	"github.com/spf13/cobra"
)

// Global flag values.
var (
	configPath   string
	verbose      bool
	outputFormat string
)

// NewRootCmd builds the updflow command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "updflow",
		Short: "Keep installed packages up to date",
		Long: `updflow selects the newest applicable version of installed packages from
local manifest sources and records the upgrade:
- update: upgrade one package, or every installed package with --all
- list, search: inspect installed and available packages
- source, config: manage manifest sources and settings`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: auto-detect)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "output format (text, json)")

	cmd.AddCommand(
		NewUpdateCmd(),
		NewListCmd(),
		NewSearchCmd(),
		NewSourceCmd(),
		NewConfigCmd(),
		NewVersionCmd(),
	)

	return cmd
}
