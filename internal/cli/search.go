package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/updflow/pkg/catalog"
	"github.com/glorpus-work/updflow/pkg/model"
)

type searchRow struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	Version string `json:"version"`
	Source  string `json:"source"`
	Match   string `json:"match"`
}

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	var exact bool

	cmd := &cobra.Command{
		Use:   "search [QUERY]",
		Short: "Search for packages",
		Long: `Search the configured sources by package ID or name.

Without a query every package is listed. Results are ordered by source priority.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) > 0 {
				query = args[0]
			}
			return runSearch(cmd, query, exact)
		},
	}

	cmd.Flags().BoolVarP(&exact, "exact", "e", false, "Match the package ID exactly")

	return cmd
}

func runSearch(cmd *cobra.Command, query string, exact bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cat, err := loadCatalog(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	res := cat.Search(catalog.SearchRequest{Query: query, Exact: exact})
	rows := make([]searchRow, 0, len(res.Matches))
	for _, m := range res.Matches {
		row := searchRow{ID: m.Package.ID(), Match: m.Criteria.Field}
		if keys := m.Package.AvailableVersionKeys(); len(keys) > 0 {
			row.Version = keys[0].Version
			row.Source = keys[0].SourceIdentifier
			if v, err := m.Package.AvailableVersion(keys[0]); err == nil {
				row.Name = v.Property(model.PropertyName)
			}
		}
		rows = append(rows, row)
	}

	out := cmd.OutOrStdout()
	if isJSON(cfg) {
		return writeJSON(out, rows)
	}
	if len(rows) == 0 {
		_, _ = fmt.Fprintf(out, "No packages found matching '%s'\n", query)
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tVERSION\tSOURCE")
	for _, r := range rows {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, r.Name, r.Version, r.Source)
	}
	return tw.Flush()
}
