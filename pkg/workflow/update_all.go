package workflow

import (
	"sync"

	"github.com/google/uuid"

	"github.com/glorpus-work/updflow/internal/logger"
	"github.com/glorpus-work/updflow/pkg/errors"
	"github.com/glorpus-work/updflow/pkg/execution"
	"github.com/glorpus-work/updflow/pkg/model"
)

type forkOutcome int

const (
	outcomeNotApplicable forkOutcome = iota
	outcomeFailed
	outcomeSelected
)

// forkResult is what one match contributes to the batch.
type forkResult struct {
	outcome  forkOutcome
	pkg      model.PackageToInstall
	failure  ItemFailure
	reporter *execution.Reporter
}

// UpdateAllApplicable selects an update for every match of the context's search
// result, each in its own cloned context, and hands the de-duplicated selection
// to the batch installer. Matches that are already current are skipped.
func (f *Flow) UpdateAllApplicable() execution.Step {
	return execution.StepFunc(f.updateAllApplicable)
}

func (f *Flow) updateAllApplicable(c *execution.Context) {
	matches := execution.Get(c, execution.DataSearchResult).Matches
	results := f.evaluateMatches(c, matches)
	if err := c.Context().Err(); err != nil {
		c.Terminate(errors.WithCode(err, errors.CodeCancelled, "update of all packages cancelled"))
		return
	}

	var (
		packages []model.PackageToInstall
		failures []ItemFailure
		seen     = make(map[model.PackageKey]struct{})
		found    bool
	)
	for _, r := range results {
		switch r.outcome {
		case outcomeNotApplicable:
			continue
		case outcomeFailed:
			found = true
			failures = append(failures, r.failure)
		case outcomeSelected:
			found = true
			key := r.pkg.Key()
			if _, dup := seen[key]; dup {
				logger.Debug("dropping duplicate update", logger.Fields{
					"id":      key.ID,
					"version": key.Version,
					"source":  key.SourceIdentifier,
				})
				continue
			}
			seen[key] = struct{}{}
			packages = append(packages, r.pkg)
		}
	}

	if !found {
		c.Reporter().Info(execution.MsgUpdateNotApplicable)
		return
	}

	execution.Add(c, execution.DataPackagesToInstall, packages)
	f.Installer.InstallMultiple(c, BatchRequest{
		Packages:       packages,
		Label:          execution.MsgInstallAndUpgradeCommandsReportDependencies,
		FailureCode:    errors.CodeUpdateAllHasFailure,
		IgnorableCodes: []errors.Code{errors.CodeUpdateNotApplicable},
		Failures:       failures,
	})
}

// evaluateMatches runs every match in its own clone and returns the results in
// match order. Output of parallel clones is buffered and flushed in match order
// once all of them finished.
func (f *Flow) evaluateMatches(c *execution.Context, matches []model.Match) []forkResult {
	results := make([]forkResult, len(matches))

	if f.Concurrency < 2 || len(matches) < 2 {
		for i, m := range matches {
			results[i] = f.evaluateMatch(c.Clone(), m)
		}
		return results
	}

	tasks := make(chan int)
	var wg sync.WaitGroup
	workers := min(f.Concurrency, len(matches))
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range tasks {
				buffered := c.Reporter().Buffer()
				r := f.evaluateMatch(c.CloneWithReporter(buffered), matches[i])
				r.reporter = buffered
				// each index is written by exactly one worker
				results[i] = r
			}
		}()
	}
	for i := range matches {
		tasks <- i
	}
	close(tasks)
	wg.Wait()

	for _, r := range results {
		r.reporter.Flush()
	}
	return results
}

func (f *Flow) evaluateMatch(fork *execution.Context, m model.Match) forkResult {
	execution.Add(fork, execution.DataPackage, m.Package)
	fork.Run(
		f.GetInstalledPackageVersion(),
		ReportExecutionStage(execution.StageDiscovery),
		f.SelectLatestApplicableUpdate(false),
		f.CheckUpdatePolicy(),
	)

	if fork.IsTerminated() {
		if fork.TerminationCode() == errors.CodeUpdateNotApplicable {
			return forkResult{outcome: outcomeNotApplicable}
		}
		return forkResult{
			outcome: outcomeFailed,
			failure: ItemFailure{PackageID: m.Package.ID(), Err: fork.TerminationError()},
		}
	}

	return forkResult{
		outcome: outcomeSelected,
		pkg:     packageToInstall(fork),
	}
}

func packageToInstall(c *execution.Context) model.PackageToInstall {
	return model.PackageToInstall{
		PackageVersion:          execution.Get(c, execution.DataPackageVersion),
		InstalledPackageVersion: execution.Get(c, execution.DataInstalledPackageVersion),
		Manifest:                execution.Get(c, execution.DataManifest),
		Installer:               execution.Get(c, execution.DataInstaller),
		SubExecutionID:          uuid.New(),
	}
}
