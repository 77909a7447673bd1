package workflow_test

import (
	"context"
	"sync"
	"time"

	"github.com/glorpus-work/updflow/pkg/comparator"
	"github.com/glorpus-work/updflow/pkg/execution"
	"github.com/glorpus-work/updflow/pkg/model"
	"github.com/glorpus-work/updflow/pkg/platform"
)

var winX64 = comparator.Options{Platform: platform.Platform{OS: "windows", Arch: "amd64"}}

type fakeVersion struct {
	props       map[model.Property]string
	meta        model.Metadata
	manifest    model.Manifest
	manifestErr error
}

func (v *fakeVersion) Property(p model.Property) string { return v.props[p] }
func (v *fakeVersion) Metadata() model.Metadata { return v.meta }
func (v *fakeVersion) Manifest() (model.Manifest, error) {
	return v.manifest, v.manifestErr
}

func installedVersion(id, ver, installerType string) *fakeVersion {
	return &fakeVersion{
		props: map[model.Property]string{model.PropertyID: id, model.PropertyVersion: ver},
		meta:  model.Metadata{model.MetadataInstalledType: installerType},
	}
}

type fakePackage struct {
	id       string
	keys     []model.VersionKey
	versions map[model.VersionKey]*fakeVersion
	delay    time.Duration
	resolved []string
	mu       sync.Mutex
	err      error
}

func newPackage(id string) *fakePackage {
	return &fakePackage{id: id, versions: make(map[model.VersionKey]*fakeVersion)}
}

// with appends a version with the given installers; call newest first.
func (p *fakePackage) with(source, ver string, installers ...model.Installer) *fakePackage {
	key := model.VersionKey{SourceIdentifier: source, Version: ver}
	p.keys = append(p.keys, key)
	p.versions[key] = &fakeVersion{
		props: map[model.Property]string{
			model.PropertyID:               p.id,
			model.PropertyVersion:          ver,
			model.PropertySourceIdentifier: source,
		},
		manifest: model.Manifest{ID: p.id, Version: ver, Installers: installers},
	}
	return p
}

func (p *fakePackage) version(ver string) *fakeVersion {
	for k, v := range p.versions {
		if k.Version == ver {
			return v
		}
	}
	return nil
}

func (p *fakePackage) ID() string { return p.id }
func (p *fakePackage) AvailableVersionKeys() []model.VersionKey { return p.keys }
func (p *fakePackage) AvailableVersion(key model.VersionKey) (model.PackageVersion, error) {
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	p.mu.Lock()
	p.resolved = append(p.resolved, key.Version)
	p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	return p.versions[key], nil
}

func (p *fakePackage) resolvedVersions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.resolved...)
}

func x64(t model.InstallerType) model.Installer {
	return model.Installer{Architecture: "x64", Type: t}
}

func newContext() (*execution.Context, *execution.Reporter) {
	r := execution.NewReporter(nil, execution.Hooks{})
	return execution.New(context.Background(), r), r
}

func searchResult(pkgs ...model.Package) model.SearchResult {
	var res model.SearchResult
	for _, p := range pkgs {
		res.Matches = append(res.Matches, model.Match{Package: p, Criteria: model.MatchCriteria{Field: "Id", Value: p.ID()}})
	}
	return res
}
