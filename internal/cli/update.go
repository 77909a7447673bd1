package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/updflow/internal/logger"
	"github.com/glorpus-work/updflow/pkg/catalog"
	"github.com/glorpus-work/updflow/pkg/config"
	"github.com/glorpus-work/updflow/pkg/errors"
	"github.com/glorpus-work/updflow/pkg/execution"
	"github.com/glorpus-work/updflow/pkg/installed"
	"github.com/glorpus-work/updflow/pkg/model"
	"github.com/glorpus-work/updflow/pkg/orchestrator"
	"github.com/glorpus-work/updflow/pkg/policy"
	"github.com/glorpus-work/updflow/pkg/workflow"
)

type updateOptions struct {
	all      bool
	dryRun   bool
	exact    bool
	source   string
	parallel int
}

// updateReport is the JSON form of an update run.
type updateReport struct {
	Lines []execution.Line `json:"lines"`
	Code  errors.Code      `json:"code,omitempty"`
	Error string           `json:"error,omitempty"`
}

// NewUpdateCmd creates the update command.
func NewUpdateCmd() *cobra.Command {
	var opts updateOptions

	cmd := &cobra.Command{
		Use:   "update [PACKAGE]",
		Short: "Update packages",
		Long: `Update an installed package to the newest version that has an applicable installer.

Use --all to update every installed package. Packages that are already current are
skipped silently with --all; a failure of one package does not stop the others.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !opts.all && len(args) == 0 {
				return errors.ErrNoArgsSpecified
			}
			if opts.all && len(args) > 0 {
				return fmt.Errorf("--all cannot be combined with a package: %w", errors.ErrNoArgsSpecified)
			}
			query := ""
			if len(args) > 0 {
				query = args[0]
			}
			return runUpdate(cmd.Context(), cmd.OutOrStdout(), query, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.all, "all", false, "Update all installed packages")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Select updates and print them without recording")
	cmd.Flags().BoolVarP(&opts.exact, "exact", "e", false, "Match the package ID exactly")
	cmd.Flags().StringVarP(&opts.source, "source", "s", "", "Only consider packages from this source")
	cmd.Flags().IntVar(&opts.parallel, "parallel", 0, "Packages evaluated in parallel with --all (0=config)")

	return cmd
}

func runUpdate(ctx context.Context, out io.Writer, query string, opts updateOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cat, err := loadCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	store, err := openInstalled(cfg)
	if err != nil {
		return err
	}
	flow, err := newFlow(cfg, store, opts)
	if err != nil {
		return err
	}

	var textOut io.Writer
	if !isJSON(cfg) {
		textOut = out
	}
	reporter := execution.NewReporter(textOut, execution.Hooks{OnEvent: func(e execution.Event) {
		logger.Debug("progress", logger.Fields{"phase": e.Phase, "id": e.ID, "msg": e.Msg})
	}})
	c := execution.New(ctx, reporter)

	var step execution.Step
	if opts.all {
		res, err := cat.SearchInstalled(ctx, store.IDs())
		if err != nil {
			return err
		}
		execution.Add(c, execution.DataSearchResult, filterSource(res, opts.source))
		step = flow.UpdateAllApplicable()
	} else {
		res := cat.Search(catalog.SearchRequest{Query: query, Exact: opts.exact})
		execution.Add(c, execution.DataSearchResult, filterSource(res, opts.source))
		step = flow.UpdateSinglePackage()
	}
	c.Run(step)

	if isJSON(cfg) {
		report := updateReport{Lines: reporter.Lines(), Code: c.TerminationCode()}
		if err := c.TerminationError(); err != nil {
			report.Error = err.Error()
		}
		if err := writeJSON(out, report); err != nil {
			return err
		}
	}
	return c.TerminationError()
}

func newFlow(cfg *config.Config, store *installed.Store, opts updateOptions) (*workflow.Flow, error) {
	var pol workflow.UpdatePolicy
	if path := cfg.Settings.UpdatePolicy; path != "" {
		tp, err := policy.LoadTengoPolicy(path)
		if err != nil {
			return nil, err
		}
		pol = tp
	}

	parallel := opts.parallel
	if parallel <= 0 {
		parallel = cfg.Settings.MaxConcurrent
	}

	orch := orchestrator.New(&orchestrator.RecordingExecutor{Store: store}, opts.dryRun)
	return workflow.New(store, orch, cfg.ComparatorOptions(), pol, parallel), nil
}

func filterSource(res model.SearchResult, source string) model.SearchResult {
	if source == "" {
		return res
	}
	var out model.SearchResult
	for _, m := range res.Matches {
		if p, ok := m.Package.(*catalog.Package); ok && p.Source() == source {
			out.Matches = append(out.Matches, m)
		}
	}
	return out
}
