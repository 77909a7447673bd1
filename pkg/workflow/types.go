//go:generate mockgen -destination=./mocks/workflow.go . InstalledStore,BatchInstaller,UpdatePolicy

package workflow

import (
	"context"
	"slices"

	"github.com/glorpus-work/updflow/pkg/comparator"
	"github.com/glorpus-work/updflow/pkg/errors"
	"github.com/glorpus-work/updflow/pkg/execution"
	"github.com/glorpus-work/updflow/pkg/model"
	"github.com/glorpus-work/updflow/pkg/policy"
)

// InstalledStore resolves the installed version of a package.
// It returns errors.ErrNotInstalled when the package is not installed.
type InstalledStore interface {
	InstalledVersion(ctx context.Context, id string) (model.PackageVersion, error)
}

// BatchInstaller installs a set of selected updates, accounting for per-item
// failures itself. It terminates c with req.FailureCode when any item failed.
type BatchInstaller interface {
	InstallMultiple(c *execution.Context, req BatchRequest)
}

// UpdatePolicy may hold a selected update back.
type UpdatePolicy interface {
	Evaluate(ctx context.Context, c policy.Candidate) (policy.Decision, error)
}

// ItemFailure is a package whose discovery failed before it reached the batch.
type ItemFailure struct {
	PackageID string
	Err       error
}

// BatchRequest is the input of a batch install.
type BatchRequest struct {
	Packages []model.PackageToInstall
	// Label is reported once before the batch starts.
	Label       execution.MessageID
	FailureCode errors.Code
	// IgnorableCodes are item outcomes counted as skipped rather than failed.
	IgnorableCodes []errors.Code
	Failures       []ItemFailure
}

// IsIgnorable reports whether code is benign within the batch.
func (r BatchRequest) IsIgnorable(code errors.Code) bool {
	return slices.Contains(r.IgnorableCodes, code)
}

// Flow holds the collaborators of the update workflow and builds its steps.
type Flow struct {
	Installed  InstalledStore
	Installer  BatchInstaller
	Comparator comparator.Options
	Policy     UpdatePolicy // optional
	// Concurrency bounds the number of packages evaluated at once by
	// UpdateAllApplicable; values below 2 evaluate sequentially.
	Concurrency int
}

// New constructs a Flow. Helper for wiring; policy may be nil.
func New(installed InstalledStore, installer BatchInstaller, opts comparator.Options, policy UpdatePolicy, concurrency int) *Flow {
	return &Flow{
		Installed:   installed,
		Installer:   installer,
		Comparator:  opts,
		Policy:      policy,
		Concurrency: concurrency,
	}
}
