package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/updflow/pkg/errors"
	"github.com/glorpus-work/updflow/pkg/model"
)

func writeManifests(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		full := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

const contosoV1 = `
id: Contoso.App
version: 1.0.0
name: Contoso App
installers:
  - architecture: x64
    type: MSI
    scope: machine
`

const contosoV2 = `
id: Contoso.App
version: 2.0.0
name: Contoso App
installers:
  - architecture: x64
    type: msi
`

const contosoV10 = `
id: Contoso.App
version: 10.0.0
installers:
  - architecture: arm64
    type: msix
`

const fabrikam = `
id: Fabrikam.Tool
version: latest
name: Fabrikam Toolbox
installers:
  - architecture: neutral
    type: zip
`

func loadTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	mainDir := t.TempDir()
	writeManifests(t, mainDir, map[string]string{
		"c/contoso/1.0.0.yaml":  contosoV1,
		"c/contoso/2.0.0.yaml":  contosoV2,
		"c/contoso/10.0.0.yml":  contosoV10,
		"f/fabrikam/latest.yml": fabrikam,
		"README.md":             "not a manifest",
	})
	extra := t.TempDir()
	writeManifests(t, extra, map[string]string{"contoso.yaml": contosoV2})

	cat, err := Load(context.Background(), []Source{
		{Name: "extra", Path: extra, Priority: 0},
		{Name: "main", Path: mainDir, Priority: 10},
	})
	require.NoError(t, err)
	return cat
}

func TestLoad(t *testing.T) {
	cat := loadTestCatalog(t)

	t.Run("SourceOrder", func(t *testing.T) {
		srcs := cat.Sources()
		require.Len(t, srcs, 2)
		assert.Equal(t, "main", srcs[0].Name)
		assert.Equal(t, "extra", srcs[1].Name)
	})

	t.Run("VersionsNewestFirst", func(t *testing.T) {
		p, ok := cat.Package("main", "contoso.app")
		require.True(t, ok)
		var versions []string
		for _, k := range p.AvailableVersionKeys() {
			versions = append(versions, k.Version)
			assert.Equal(t, "main", k.SourceIdentifier)
		}
		assert.Equal(t, []string{"10.0.0", "2.0.0", "1.0.0"}, versions)
	})

	t.Run("ManifestNormalized", func(t *testing.T) {
		p, _ := cat.Package("main", "Contoso.App")
		v, err := p.AvailableVersion(model.VersionKey{SourceIdentifier: "main", Version: "1.0.0"})
		require.NoError(t, err)
		m, err := v.Manifest()
		require.NoError(t, err)
		assert.Equal(t, model.InstallerTypeMSI, m.Installers[0].Type)
		assert.Equal(t, model.ScopeMachine, m.Installers[0].Scope)
		assert.Equal(t, "main", v.Property(model.PropertySourceIdentifier))
		assert.Equal(t, "Contoso App", v.Property(model.PropertyName))

		m.Installers[0].Type = model.InstallerTypeExe
		again, _ := v.Manifest()
		assert.Equal(t, model.InstallerTypeMSI, again.Installers[0].Type, "manifest must be returned as a copy")
	})

	t.Run("UnknownVersion", func(t *testing.T) {
		p, _ := cat.Package("main", "Contoso.App")
		_, err := p.AvailableVersion(model.VersionKey{SourceIdentifier: "main", Version: "9.9"})
		assert.ErrorIs(t, err, errors.ErrVersionNotFound)
	})

	t.Run("InvalidManifest", func(t *testing.T) {
		dir := t.TempDir()
		writeManifests(t, dir, map[string]string{"bad.yaml": "name: no id\n"})
		_, err := Load(context.Background(), []Source{{Name: "bad", Path: dir}})
		assert.ErrorIs(t, err, errors.ErrManifestInvalid)
	})

	t.Run("MissingSource", func(t *testing.T) {
		_, err := Load(context.Background(), []Source{{Name: "gone", Path: filepath.Join(t.TempDir(), "nope")}})
		assert.Error(t, err)
	})
}

func TestSearch(t *testing.T) {
	cat := loadTestCatalog(t)

	tests := []struct {
		name     string
		req      SearchRequest
		expected []string
	}{
		{"exact id", SearchRequest{Query: "contoso.app", Exact: true}, []string{"main/Contoso.App", "extra/Contoso.App"}},
		{"exact partial misses", SearchRequest{Query: "contoso", Exact: true}, nil},
		{"substring id", SearchRequest{Query: "tool"}, []string{"main/Fabrikam.Tool"}},
		{"by name", SearchRequest{Query: "toolbox"}, []string{"main/Fabrikam.Tool"}},
		{"everything", SearchRequest{}, []string{"main/Contoso.App", "main/Fabrikam.Tool", "extra/Contoso.App"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, m := range cat.Search(tt.req).Matches {
				got = append(got, m.Package.(*Package).Source()+"/"+m.Package.ID())
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSearchInstalled(t *testing.T) {
	cat := loadTestCatalog(t)

	res, err := cat.SearchInstalled(context.Background(), []string{"Fabrikam.Tool", "Missing.Pkg", "Contoso.App"})
	require.NoError(t, err)

	var got []string
	for _, m := range res.Matches {
		got = append(got, m.Package.(*Package).Source()+"/"+m.Criteria.Value)
	}
	assert.Equal(t, []string{"main/Fabrikam.Tool", "main/Contoso.App", "extra/Contoso.App"}, got)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = cat.SearchInstalled(ctx, []string{"Contoso.App"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPackedSource(t *testing.T) {
	dir := t.TempDir()
	writeManifests(t, dir, map[string]string{
		"contoso/2.0.0.yaml": contosoV2,
		"contoso/1.0.0.yaml": contosoV1,
	})
	archivePath := filepath.Join(t.TempDir(), "source.tar.gz")
	require.NoError(t, Pack(context.Background(), dir, archivePath))

	cat, err := Load(context.Background(), []Source{{Name: "packed", Path: archivePath}})
	require.NoError(t, err)

	p, ok := cat.Package("packed", "Contoso.App")
	require.True(t, ok)
	require.Len(t, p.AvailableVersionKeys(), 2)
	assert.Equal(t, "2.0.0", p.AvailableVersionKeys()[0].Version)
}
