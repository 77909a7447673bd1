package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/updflow/pkg/installed"
)

// NewListCmd creates the list command.
func NewListCmd() *cobra.Command {
	var nameFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed packages",
		Long: `List all installed packages from the local database.

Use --name to filter packages by ID (partial match).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, nameFilter)
		},
	}

	cmd.Flags().StringVar(&nameFilter, "name", "", "Filter packages by ID (partial match)")

	return cmd
}

func runList(cmd *cobra.Command, nameFilter string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openInstalled(cfg)
	if err != nil {
		return err
	}

	var entries []installed.Entry
	for _, e := range store.Entries() {
		if nameFilter == "" || strings.Contains(strings.ToLower(e.ID), strings.ToLower(nameFilter)) {
			entries = append(entries, e)
		}
	}

	out := cmd.OutOrStdout()
	if isJSON(cfg) {
		if entries == nil {
			entries = []installed.Entry{}
		}
		return writeJSON(out, entries)
	}
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(out, "No packages installed")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tVERSION\tSOURCE\tTYPE\tSCOPE")
	for _, e := range entries {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.Version, e.Source, e.InstallerType, e.Scope)
	}
	return tw.Flush()
}
