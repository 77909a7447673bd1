//go:generate mockgen -destination=./mocks/orchestrator.go . ItemExecutor,InstalledRecorder

package orchestrator

import (
	"context"
	"fmt"

	"github.com/glorpus-work/updflow/internal/logger"
	"github.com/glorpus-work/updflow/pkg/errors"
	"github.com/glorpus-work/updflow/pkg/execution"
	"github.com/glorpus-work/updflow/pkg/model"
	"github.com/glorpus-work/updflow/pkg/workflow"
)

// ItemExecutor performs the update of one package.
type ItemExecutor interface {
	Execute(ctx context.Context, pkg model.PackageToInstall) error
}

// InstalledRecorder persists the outcome of an update.
type InstalledRecorder interface {
	Record(pkg model.PackageToInstall) error
}

// Orchestrator runs a batch of selected updates one by one. A failing item never
// stops the remaining items; the batch fails as a whole afterwards.
type Orchestrator struct {
	Executor ItemExecutor
	DryRun   bool
}

// Summary counts the outcomes of a batch.
type Summary struct {
	Succeeded int
	Skipped   int
	Failed    int
}

// New constructs an Orchestrator. Helper for wiring.
func New(executor ItemExecutor, dryRun bool) *Orchestrator {
	return &Orchestrator{Executor: executor, DryRun: dryRun}
}

// InstallMultiple implements workflow.BatchInstaller.
func (o *Orchestrator) InstallMultiple(c *execution.Context, req workflow.BatchRequest) {
	if o.Executor == nil && !o.DryRun {
		c.Terminate(errors.WithCode(errors.ErrExecutorMissing, errors.CodeInternal, "cannot install"))
		return
	}

	if len(req.Packages) > 0 && req.Label != "" {
		c.Reporter().Info(req.Label)
	}

	var (
		summary Summary
		errs    []error
	)
	for _, f := range req.Failures {
		summary.Failed++
		errs = append(errs, fmt.Errorf("%s: %w", f.PackageID, f.Err))
		c.Reporter().Error(execution.MsgInstallFailed, f.PackageID, f.Err)
	}

	for _, pkg := range req.Packages {
		item := o.installOne(c, pkg)
		switch code := item.TerminationCode(); {
		case code == errors.CodeNone:
			summary.Succeeded++
		case req.IsIgnorable(code):
			summary.Skipped++
		default:
			summary.Failed++
			errs = append(errs, fmt.Errorf("%s: %w", pkg.Manifest.ID, item.TerminationError()))
			c.Reporter().Error(execution.MsgInstallFailed, pkg.Manifest.ID, item.TerminationError())
		}
	}

	c.Reporter().Info(execution.MsgUpdateAllSummary, summary.Succeeded, summary.Skipped, summary.Failed)
	c.Reporter().Event(execution.Event{
		Phase: "summary",
		Msg:   fmt.Sprintf("%d/%d/%d", summary.Succeeded, summary.Skipped, summary.Failed),
	})
	logger.Debug("batch finished", logger.Fields{
		"succeeded": summary.Succeeded,
		"skipped":   summary.Skipped,
		"failed":    summary.Failed,
		"dry_run":   o.DryRun,
	})

	if summary.Failed > 0 {
		c.Terminate(errors.WithCode(fmt.Errorf("%w: %w", errors.ErrBatchHasFailures, errors.Join(errs...)), req.FailureCode,
			fmt.Sprintf("%d of %d updates failed", summary.Failed, len(req.Packages)+len(req.Failures))))
	}
}

// installOne runs a single package in its own clone and returns the clone.
func (o *Orchestrator) installOne(parent *execution.Context, pkg model.PackageToInstall) *execution.Context {
	c := parent.Clone()
	c.SetSubExecutionID(pkg.SubExecutionID)
	execution.Add(c, execution.DataInstalledPackageVersion, pkg.InstalledPackageVersion)
	execution.Add(c, execution.DataPackageVersion, pkg.PackageVersion)
	execution.Add(c, execution.DataManifest, pkg.Manifest)
	execution.Add(c, execution.DataInstaller, pkg.Installer)

	c.Run(
		workflow.EnsureUpdateVersionApplicable(),
		execution.StepFunc(func(c *execution.Context) { o.execute(c, pkg) }),
	)
	return c
}

func (o *Orchestrator) execute(c *execution.Context, pkg model.PackageToInstall) {
	installed := ""
	if pkg.InstalledPackageVersion != nil {
		installed = pkg.InstalledPackageVersion.Property(model.PropertyVersion)
	}

	if o.DryRun {
		c.Reporter().Info(execution.MsgDryRunPackage, pkg.Manifest.ID, installed, pkg.Manifest.Version, pkg.Installer.Type)
		return
	}

	c.SetStage(execution.StageDownload)
	c.Reporter().Info(execution.MsgInstallingPackage, pkg.Manifest.ID, installed, pkg.Manifest.Version, pkg.Installer.Type)
	c.SetStage(execution.StageExecution)
	if err := o.Executor.Execute(c.Context(), pkg); err != nil {
		c.Terminate(errors.WithCode(err, errors.CodeInstallFailed, pkg.Manifest.ID))
		return
	}
	c.SetStage(execution.StagePostExecution)
	c.Reporter().Info(execution.MsgInstallSucceeded, pkg.Manifest.ID, pkg.Manifest.Version)
}

// RecordingExecutor completes an update by recording the new version as installed.
// It does not download or run installers.
type RecordingExecutor struct {
	Store InstalledRecorder
}

// Execute implements ItemExecutor.
func (e *RecordingExecutor) Execute(ctx context.Context, pkg model.PackageToInstall) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.Store.Record(pkg)
}
