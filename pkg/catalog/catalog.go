// Package catalog loads package manifests from sources and answers searches
// against them.
package catalog

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/mholt/archives"
	"gopkg.in/yaml.v3"

	"github.com/glorpus-work/updflow/internal/logger"
	"github.com/glorpus-work/updflow/pkg/errors"
	"github.com/glorpus-work/updflow/pkg/model"
	"github.com/glorpus-work/updflow/pkg/version"
)

// Source is a named location of manifests. Path may be a directory or an archive.
// Sources with a higher Priority are searched first.
type Source struct {
	Name     string
	Path     string
	Priority int
}

type packageKey struct {
	source string
	id     string
}

// Catalog is the in-memory view of all loaded sources.
type Catalog struct {
	sources  []Source
	packages map[packageKey]*Package
}

// Load reads every *.yaml and *.yml manifest of every source.
func Load(ctx context.Context, sources []Source) (*Catalog, error) {
	c := &Catalog{packages: make(map[packageKey]*Package)}
	c.sources = slices.Clone(sources)
	slices.SortStableFunc(c.sources, func(a, b Source) int {
		if a.Priority != b.Priority {
			return cmp.Compare(b.Priority, a.Priority)
		}
		return strings.Compare(a.Name, b.Name)
	})

	for _, src := range c.sources {
		if err := c.loadSource(ctx, src); err != nil {
			return nil, err
		}
	}
	for _, p := range c.packages {
		p.sortKeys()
	}
	return c, nil
}

func (c *Catalog) loadSource(ctx context.Context, src Source) error {
	fsys, err := archives.FileSystem(ctx, src.Path, nil)
	if err != nil {
		return fmt.Errorf("failed to open source %s: %w", src.Name, err)
	}
	if closer, ok := fsys.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}

	count := 0
	err = fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !isManifestFile(p) {
			return nil
		}
		m, err := readManifest(fsys, p)
		if err != nil {
			return fmt.Errorf("source %s: %w", src.Name, err)
		}
		c.add(src.Name, m)
		count++
		return nil
	})
	if err != nil {
		return err
	}

	logger.Debug("loaded source", logger.Fields{"source": src.Name, "path": src.Path, "manifests": count})
	return nil
}

func isManifestFile(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	return ext == ".yaml" || ext == ".yml"
}

func readManifest(fsys fs.FS, p string) (model.Manifest, error) {
	data, err := fs.ReadFile(fsys, p)
	if err != nil {
		return model.Manifest{}, fmt.Errorf("failed to read %s: %w", p, err)
	}
	var m model.Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return model.Manifest{}, fmt.Errorf("%s: %w: %v", p, errors.ErrManifestInvalid, err)
	}
	m.ID = strings.TrimSpace(m.ID)
	m.Version = strings.TrimSpace(m.Version)
	if m.ID == "" || m.Version == "" {
		return model.Manifest{}, fmt.Errorf("%s: %w: id and version are required", p, errors.ErrManifestInvalid)
	}
	for i := range m.Installers {
		m.Installers[i].Type = model.ParseInstallerType(string(m.Installers[i].Type))
		m.Installers[i].Scope = model.ParseScope(string(m.Installers[i].Scope))
	}
	return m, nil
}

func (c *Catalog) add(source string, m model.Manifest) {
	k := packageKey{source: source, id: strings.ToLower(m.ID)}
	p, ok := c.packages[k]
	if !ok {
		p = &Package{id: m.ID, source: source, versions: make(map[model.VersionKey]*PackageVersion)}
		c.packages[k] = p
	}
	vk := model.VersionKey{SourceIdentifier: source, Version: m.Version, Channel: m.Channel}
	if _, dup := p.versions[vk]; !dup {
		p.keys = append(p.keys, vk)
	}
	p.versions[vk] = &PackageVersion{source: source, manifest: m}
}

// Sources returns the loaded sources in search order.
func (c *Catalog) Sources() []Source {
	return slices.Clone(c.sources)
}

// Package returns the package id from source, if present.
func (c *Catalog) Package(source, id string) (*Package, bool) {
	p, ok := c.packages[packageKey{source: source, id: strings.ToLower(id)}]
	return p, ok
}

// SearchRequest selects packages by ID or name.
type SearchRequest struct {
	Query string
	Exact bool
}

// Search returns matching packages in source order, then by ID.
// An empty query matches everything.
func (c *Catalog) Search(req SearchRequest) model.SearchResult {
	q := strings.ToLower(strings.TrimSpace(req.Query))
	var res model.SearchResult
	for _, src := range c.sources {
		var found []model.Match
		for k, p := range c.packages {
			if k.source != src.Name {
				continue
			}
			if crit, ok := p.match(q, req.Exact); ok {
				found = append(found, model.Match{Package: p, Criteria: crit})
			}
		}
		slices.SortFunc(found, func(a, b model.Match) int {
			return strings.Compare(strings.ToLower(a.Package.ID()), strings.ToLower(b.Package.ID()))
		})
		res.Matches = append(res.Matches, found...)
	}
	return res
}

// SearchInstalled returns one match per installed ID and source that carries it.
// Matches are grouped by ID in the order given, then by source order.
func (c *Catalog) SearchInstalled(ctx context.Context, ids []string) (model.SearchResult, error) {
	var res model.SearchResult
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return model.SearchResult{}, err
		}
		for _, src := range c.sources {
			if p, ok := c.Package(src.Name, id); ok {
				res.Matches = append(res.Matches, model.Match{
					Package:  p,
					Criteria: model.MatchCriteria{Field: string(model.PropertyID), Value: id},
				})
			}
		}
	}
	return res, nil
}

// Package is one package of one source. It implements model.Package.
type Package struct {
	id       string
	source   string
	keys     []model.VersionKey
	versions map[model.VersionKey]*PackageVersion
}

func (p *Package) sortKeys() {
	slices.SortStableFunc(p.keys, func(a, b model.VersionKey) int {
		return version.Parse(b.Version).Compare(version.Parse(a.Version))
	})
}

func (p *Package) match(q string, exact bool) (model.MatchCriteria, bool) {
	id := strings.ToLower(p.id)
	if exact {
		return model.MatchCriteria{Field: string(model.PropertyID), Value: p.id}, id == q
	}
	if q == "" || strings.Contains(id, q) {
		return model.MatchCriteria{Field: string(model.PropertyID), Value: p.id}, true
	}
	if name := p.name(); strings.Contains(strings.ToLower(name), q) {
		return model.MatchCriteria{Field: string(model.PropertyName), Value: name}, true
	}
	return model.MatchCriteria{}, false
}

func (p *Package) name() string {
	if len(p.keys) == 0 {
		return ""
	}
	return p.versions[p.keys[0]].manifest.Name
}

// ID implements model.Package.
func (p *Package) ID() string {
	return p.id
}

// Source returns the name of the source the package was loaded from.
func (p *Package) Source() string {
	return p.source
}

// AvailableVersionKeys implements model.Package. Keys are newest first.
func (p *Package) AvailableVersionKeys() []model.VersionKey {
	return slices.Clone(p.keys)
}

// AvailableVersion implements model.Package.
func (p *Package) AvailableVersion(key model.VersionKey) (model.PackageVersion, error) {
	v, ok := p.versions[key]
	if !ok {
		return nil, fmt.Errorf("%s %s from %s: %w", p.id, key.Version, key.SourceIdentifier, errors.ErrVersionNotFound)
	}
	return v, nil
}

// PackageVersion is one manifest of a source. It implements model.PackageVersion.
type PackageVersion struct {
	source   string
	manifest model.Manifest
}

// Property implements model.PackageVersion.
func (v *PackageVersion) Property(p model.Property) string {
	switch p {
	case model.PropertyID:
		return v.manifest.ID
	case model.PropertyName:
		return v.manifest.Name
	case model.PropertyVersion:
		return v.manifest.Version
	case model.PropertyChannel:
		return v.manifest.Channel
	case model.PropertySourceIdentifier:
		return v.source
	default:
		return ""
	}
}

// Metadata implements model.PackageVersion.
func (v *PackageVersion) Metadata() model.Metadata {
	return model.Metadata{model.MetadataSourceIdentifier: v.source}
}

// Manifest implements model.PackageVersion. The returned manifest is a copy.
func (v *PackageVersion) Manifest() (model.Manifest, error) {
	return v.manifest.Clone(), nil
}
