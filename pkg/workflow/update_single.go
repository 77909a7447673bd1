package workflow

import (
	"github.com/glorpus-work/updflow/pkg/errors"
	"github.com/glorpus-work/updflow/pkg/execution"
	"github.com/glorpus-work/updflow/pkg/model"
)

// UpdateSinglePackage updates the one package the search result must contain.
// Unlike UpdateAllApplicable, a package that is already current is reported.
func (f *Flow) UpdateSinglePackage() execution.Step {
	return execution.StepFunc(func(c *execution.Context) {
		matches := execution.Get(c, execution.DataSearchResult).Matches
		switch len(matches) {
		case 0:
			c.Reporter().Error(execution.MsgNoPackageFound)
			c.Terminate(errors.WithCode(errors.ErrPackageNotFound, errors.CodeNoPackageFound, "no package matches the query"))
			return
		case 1:
		default:
			c.Reporter().Error(execution.MsgMultiplePackagesFound)
			c.Terminate(errors.Newf(errors.CodeMultiplePackagesFound, "%d packages found", len(matches)))
			return
		}

		execution.Add(c, execution.DataPackage, matches[0].Package)
		c.Run(
			f.GetInstalledPackageVersion(),
			ReportExecutionStage(execution.StageDiscovery),
			f.SelectLatestApplicableUpdate(true),
			f.CheckUpdatePolicy(),
			execution.StepFunc(f.installSelected),
		)
	})
}

func (f *Flow) installSelected(c *execution.Context) {
	packages := []model.PackageToInstall{packageToInstall(c)}
	execution.Add(c, execution.DataPackagesToInstall, packages)
	f.Installer.InstallMultiple(c, BatchRequest{
		Packages:       packages,
		Label:          execution.MsgInstallAndUpgradeCommandsReportDependencies,
		FailureCode:    errors.CodeInstallFailed,
		IgnorableCodes: []errors.Code{errors.CodeUpdateNotApplicable},
	})
}
