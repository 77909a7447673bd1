// Package workflow implements the update steps: resolving the installed version,
// selecting the newest applicable update and batching updates across packages.
package workflow

import (
	"github.com/glorpus-work/updflow/internal/logger"
	"github.com/glorpus-work/updflow/pkg/comparator"
	"github.com/glorpus-work/updflow/pkg/errors"
	"github.com/glorpus-work/updflow/pkg/execution"
	"github.com/glorpus-work/updflow/pkg/model"
	"github.com/glorpus-work/updflow/pkg/policy"
	"github.com/glorpus-work/updflow/pkg/version"
)

// GetInstalledPackageVersion stores the installed version of the context's
// package. A package that is not installed terminates the context.
func (f *Flow) GetInstalledPackageVersion() execution.Step {
	return execution.StepFunc(func(c *execution.Context) {
		pkg := execution.Get(c, execution.DataPackage)

		installed, err := f.Installed.InstalledVersion(c.Context(), pkg.ID())
		switch {
		case errors.Is(err, errors.ErrNotInstalled) || (err == nil && installed == nil):
			c.Reporter().Error(execution.MsgNoInstalledPackageFound)
			c.Terminate(errors.WithCode(err, errors.CodeNoInstalledPackage, pkg.ID()))
			return
		case err != nil:
			c.Terminate(errors.WithCode(err, errors.CodeInternal, "failed to read installed state of "+pkg.ID()))
			return
		}
		execution.Add(c, execution.DataInstalledPackageVersion, installed)
	})
}

// ReportExecutionStage moves the context to stage.
func ReportExecutionStage(stage execution.Stage) execution.Step {
	return execution.StepFunc(func(c *execution.Context) {
		c.SetStage(stage)
	})
}

// SelectLatestApplicableUpdate walks the package's versions newest first and
// selects the first one that is newer than the installed version and has an
// applicable installer. On success it stores the manifest, package version and
// installer; otherwise it terminates with CodeUpdateNotApplicable, reporting why
// when reportUpdateNotFound is set.
func (f *Flow) SelectLatestApplicableUpdate(reportUpdateNotFound bool) execution.Step {
	return execution.StepFunc(func(c *execution.Context) {
		f.selectLatestApplicableUpdate(c, reportUpdateNotFound)
	})
}

func (f *Flow) selectLatestApplicableUpdate(c *execution.Context, reportUpdateNotFound bool) {
	pkg := execution.Get(c, execution.DataPackage)
	installed := execution.Get(c, execution.DataInstalledPackageVersion)
	installedVersion := version.Parse(installed.Property(model.PropertyVersion))
	cmp := comparator.New(f.Comparator, installed.Metadata())

	installedTypeInapplicable := false
	for _, key := range pkg.AvailableVersionKeys() {
		candidate := version.Parse(key.Version)
		// Keys are sorted newest first, so no later key can pass either.
		if !version.IsUpdateApplicable(installedVersion, candidate) {
			break
		}

		available, err := pkg.AvailableVersion(key)
		if err != nil {
			c.Terminate(errors.WithCode(err, errors.CodeManifestUnavailable, pkg.ID()+" "+key.Version))
			return
		}
		manifest, err := available.Manifest()
		if err != nil {
			c.Terminate(errors.WithCode(err, errors.CodeManifestUnavailable, pkg.ID()+" "+key.Version))
			return
		}

		selection := cmp.SelectInstaller(manifest)
		installer, ok := selection.Installer()
		if !ok {
			if selection.OnlyInstalledType() {
				installedTypeInapplicable = true
			}
			logger.Debug("skipping version without applicable installer", logger.Fields{
				"id":      pkg.ID(),
				"version": key.Version,
				"reasons": selection.Flags().String(),
			})
			continue
		}

		manifest = manifest.Clone()
		manifest.ApplyLocale(installer.Locale)
		if manifest.ID == "" {
			manifest.ID = pkg.ID()
		}
		if manifest.Version == "" {
			manifest.Version = key.Version
		}
		if installedTypeInapplicable {
			c.Reporter().Info(execution.MsgUpgradeDifferentInstallTechnology, pkg.ID(), manifest.Version)
		}

		execution.Add(c, execution.DataManifest, manifest)
		execution.Add(c, execution.DataPackageVersion, available)
		execution.Add(c, execution.DataInstaller, installer)
		logger.Debug("selected update", logger.Fields{
			"id":        pkg.ID(),
			"installed": installedVersion.String(),
			"version":   manifest.Version,
			"type":      string(installer.Type),
		})
		return
	}

	if reportUpdateNotFound {
		if installedTypeInapplicable {
			c.Reporter().Info(execution.MsgUpgradeDifferentInstallTechnologyInNewerVersions)
		} else {
			c.Reporter().Info(execution.MsgUpdateNotApplicable)
		}
	}
	c.Terminate(errors.Newf(errors.CodeUpdateNotApplicable, "no applicable update for %s", pkg.ID()))
}

// EnsureUpdateVersionApplicable re-checks a previously selected update against
// the installed version.
func EnsureUpdateVersionApplicable() execution.Step {
	return execution.StepFunc(func(c *execution.Context) {
		installed := execution.Get(c, execution.DataInstalledPackageVersion)
		manifest := execution.Get(c, execution.DataManifest)

		if !version.IsUpdateApplicable(version.Parse(installed.Property(model.PropertyVersion)), version.Parse(manifest.Version)) {
			c.Reporter().Info(execution.MsgUpdateNotApplicable)
			c.Terminate(errors.Newf(errors.CodeUpdateNotApplicable, "%s %s is not newer than the installed version", manifest.ID, manifest.Version))
		}
	})
}

// CheckUpdatePolicy asks the configured policy whether the selected update may
// proceed. A held update ends as not applicable.
func (f *Flow) CheckUpdatePolicy() execution.Step {
	return execution.StepFunc(func(c *execution.Context) {
		if f.Policy == nil {
			return
		}
		installed := execution.Get(c, execution.DataInstalledPackageVersion)
		manifest := execution.Get(c, execution.DataManifest)
		available := execution.Get(c, execution.DataPackageVersion)
		installer := execution.Get(c, execution.DataInstaller)

		candidate := policy.Candidate{
			ID:            manifest.ID,
			Installed:     installed.Property(model.PropertyVersion),
			Candidate:     manifest.Version,
			Source:        available.Property(model.PropertySourceIdentifier),
			InstallerType: string(installer.Type),
			Latest:        version.Parse(manifest.Version).IsLatest(),
		}
		decision, err := f.Policy.Evaluate(c.Context(), candidate)
		if err != nil {
			c.Terminate(errors.WithCode(err, errors.CodePolicyFailed, manifest.ID))
			return
		}
		if decision.Hold {
			c.Reporter().Info(execution.MsgUpdateHeldByPolicy, manifest.ID, manifest.Version, decision.Reason)
			c.Terminate(errors.Newf(errors.CodeUpdateNotApplicable, "%s held by policy", manifest.ID))
		}
	})
}
