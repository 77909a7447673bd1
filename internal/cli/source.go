package cli

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/updflow/internal/logger"
	"github.com/glorpus-work/updflow/pkg/catalog"
	"github.com/glorpus-work/updflow/pkg/errors"
)

// NewSourceCmd creates the source command with subcommands.
func NewSourceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "source",
		Short: "Manage manifest sources",
		Long:  "Add, remove, list and pack the directories or archives manifests are read from",
	}

	cmd.AddCommand(
		newSourceAddCmd(),
		newSourceRemoveCmd(),
		newSourceListCmd(),
		newSourcePackCmd(),
	)

	return cmd
}

func newSourceAddCmd() *cobra.Command {
	var priority int

	cmd := &cobra.Command{
		Use:   "add NAME PATH",
		Short: "Add a source",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := readConfig()
			if err != nil {
				return err
			}
			path, err := filepath.Abs(args[1])
			if err != nil {
				return errors.Wrap(errors.ErrInvalidPath, err.Error())
			}
			if err := cfg.AddSource(args[0], path, priority); err != nil {
				return err
			}
			if err := cfg.SaveConfig(getConfigPath()); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}
			logger.Success("Source added", logger.Fields{"name": args[0], "path": path})
			return nil
		},
	}

	cmd.Flags().IntVar(&priority, "priority", 0, "Search priority; higher is searched first")

	return cmd
}

func newSourceRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove a source",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := readConfig()
			if err != nil {
				return err
			}
			if !cfg.RemoveSource(args[0]) {
				return fmt.Errorf("source '%s': %w", args[0], errors.ErrSourceNotFound)
			}
			if err := cfg.SaveConfig(getConfigPath()); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}
			logger.Success("Source removed", logger.Fields{"name": args[0]})
			return nil
		},
	}
}

func newSourceListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sources",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, TabWidth, ' ', 0)
			_, _ = fmt.Fprintln(tw, "NAME\tPRIORITY\tENABLED\tPATH")
			for _, src := range cfg.Sources {
				_, _ = fmt.Fprintf(tw, "%s\t%d\t%t\t%s\n", src.Name, src.Priority, src.IsEnabled(), src.Path)
			}
			return tw.Flush()
		},
	}
}

func newSourcePackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pack DIR ARCHIVE",
		Short: "Pack a manifest directory into a tar.gz source",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := catalog.Pack(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			logger.Success("Source packed", logger.Fields{"archive": args[1]})
			return nil
		},
	}
}
