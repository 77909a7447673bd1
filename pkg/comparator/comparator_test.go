package comparator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/updflow/pkg/model"
	"github.com/glorpus-work/updflow/pkg/platform"
)

var winX64 = Options{Platform: platform.Platform{OS: "windows", Arch: "amd64"}}

func manifest(installers ...model.Installer) model.Manifest {
	return model.Manifest{ID: "Contoso.App", Version: "2.0", Installers: installers}
}

func TestFlags(t *testing.T) {
	f := FlagInstalledType | FlagLocale
	assert.True(t, f.Has(FlagInstalledType))
	assert.False(t, f.Has(FlagOS))
	assert.False(t, f.Has(FlagNone))
	assert.False(t, f.Only(FlagInstalledType))
	assert.True(t, FlagInstalledType.Only(FlagInstalledType))
	assert.Equal(t, "InstalledType|Locale", f.String())
	assert.Equal(t, "None", FlagNone.String())
}

func TestSelectInstallerFilters(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		installed model.Metadata
		installer model.Installer
		want      InapplicabilityFlags
	}{
		{
			name:      "applicable",
			opts:      winX64,
			installer: model.Installer{Architecture: "x64", Type: model.InstallerTypeMSI},
			want:      FlagNone,
		},
		{
			name:      "wrong os",
			opts:      winX64,
			installer: model.Installer{OS: "linux", Architecture: "x64"},
			want:      FlagOS,
		},
		{
			name:      "wrong architecture",
			opts:      winX64,
			installer: model.Installer{Architecture: "arm64"},
			want:      FlagMachineArchitecture,
		},
		{
			name:      "incompatible installed type",
			opts:      winX64,
			installed: model.Metadata{model.MetadataInstalledType: "msi"},
			installer: model.Installer{Architecture: "x64", Type: model.InstallerTypeExe},
			want:      FlagInstalledType,
		},
		{
			name:      "compatible installed type family",
			opts:      winX64,
			installed: model.Metadata{model.MetadataInstalledType: "wix"},
			installer: model.Installer{Architecture: "x64", Type: model.InstallerTypeMSI},
			want:      FlagNone,
		},
		{
			name:      "installed scope mismatch",
			opts:      winX64,
			installed: model.Metadata{model.MetadataInstalledScope: "user"},
			installer: model.Installer{Architecture: "x64", Scope: model.ScopeMachine},
			want:      FlagInstalledScope,
		},
		{
			name:      "required scope mismatch",
			opts:      Options{Platform: winX64.Platform, RequiredScope: model.ScopeUser},
			installer: model.Installer{Architecture: "x64", Scope: model.ScopeMachine},
			want:      FlagScope,
		},
		{
			name:      "installed locale mismatch",
			opts:      winX64,
			installed: model.Metadata{model.MetadataInstalledLocale: "en-US"},
			installer: model.Installer{Architecture: "x64", Locale: "fr-FR"},
			want:      FlagInstalledLocale,
		},
		{
			name:      "required locale mismatch",
			opts:      Options{Platform: winX64.Platform, RequiredLocales: []string{"de-DE"}},
			installer: model.Installer{Architecture: "x64", Locale: "ja-JP"},
			want:      FlagLocale,
		},
		{
			name:      "several reasons",
			opts:      winX64,
			installed: model.Metadata{model.MetadataInstalledType: "msix"},
			installer: model.Installer{Architecture: "arm64", Type: model.InstallerTypeExe},
			want:      FlagMachineArchitecture | FlagInstalledType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.opts, tt.installed)
			assert.Equal(t, tt.want, c.Evaluate(tt.installer))

			sel := c.SelectInstaller(manifest(tt.installer))
			_, ok := sel.Installer()
			assert.Equal(t, tt.want == FlagNone, ok)
			if tt.want != FlagNone {
				require.Len(t, sel.Rejections(), 1)
				assert.Equal(t, tt.want, sel.Rejections()[0].Flags)
				assert.Equal(t, tt.want, sel.Flags())
			}
		})
	}
}

func TestSelectInstallerOnlyInstalledType(t *testing.T) {
	installed := model.Metadata{model.MetadataInstalledType: "msi"}

	t.Run("single reason", func(t *testing.T) {
		sel := New(winX64, installed).SelectInstaller(manifest(
			model.Installer{Architecture: "x64", Type: model.InstallerTypeExe},
			model.Installer{Architecture: "arm64", Type: model.InstallerTypeMSI},
		))
		_, ok := sel.Installer()
		assert.False(t, ok)
		assert.True(t, sel.OnlyInstalledType())
		assert.Equal(t, FlagInstalledType|FlagMachineArchitecture, sel.Flags())
	})

	t.Run("mixed reasons", func(t *testing.T) {
		sel := New(winX64, installed).SelectInstaller(manifest(
			model.Installer{Architecture: "arm64", Type: model.InstallerTypeExe},
		))
		assert.False(t, sel.OnlyInstalledType())
	})
}

func TestSelectInstallerRanking(t *testing.T) {
	tests := []struct {
		name       string
		opts       Options
		installed  model.Metadata
		installers []model.Installer
		wantIndex  int
	}{
		{
			name:      "exact installed type over compatible",
			opts:      winX64,
			installed: model.Metadata{model.MetadataInstalledType: "inno"},
			installers: []model.Installer{
				{Architecture: "x64", Type: model.InstallerTypeExe},
				{Architecture: "x64", Type: model.InstallerTypeInno},
			},
			wantIndex: 1,
		},
		{
			name:      "installed locale first",
			opts:      Options{Platform: winX64.Platform, PreferredLocales: []string{"en-US"}},
			installed: model.Metadata{model.MetadataInstalledLocale: "en-GB"},
			installers: []model.Installer{
				{Architecture: "x64", Locale: "en-US"},
				{Architecture: "x64", Locale: "en-GB"},
			},
			wantIndex: 1,
		},
		{
			name: "preferred scope",
			opts: Options{Platform: winX64.Platform, PreferredScope: model.ScopeMachine},
			installers: []model.Installer{
				{Architecture: "x64", Scope: model.ScopeUser},
				{Architecture: "x64", Scope: model.ScopeMachine},
			},
			wantIndex: 1,
		},
		{
			name: "native architecture over emulated",
			opts: winX64,
			installers: []model.Installer{
				{Architecture: "x86"},
				{Architecture: "neutral"},
				{Architecture: "x64"},
			},
			wantIndex: 2,
		},
		{
			name:      "installed architecture moved to front",
			opts:      winX64,
			installed: model.Metadata{model.MetadataInstalledArchitecture: "x86"},
			installers: []model.Installer{
				{Architecture: "x64"},
				{Architecture: "x86"},
			},
			wantIndex: 1,
		},
		{
			name: "installer type preference",
			opts: Options{Platform: winX64.Platform, InstallerTypes: []model.InstallerType{model.InstallerTypeMSIX, model.InstallerTypeMSI}},
			installers: []model.Installer{
				{Architecture: "x64", Type: model.InstallerTypeExe},
				{Architecture: "x64", Type: model.InstallerTypeMSI},
				{Architecture: "x64", Type: model.InstallerTypeMSIX},
			},
			wantIndex: 2,
		},
		{
			name: "ties keep manifest order",
			opts: winX64,
			installers: []model.Installer{
				{Architecture: "x64", URL: "first"},
				{Architecture: "x64", URL: "second"},
			},
			wantIndex: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := manifest(tt.installers...)
			c := New(tt.opts, tt.installed)

			for i := 0; i < 5; i++ {
				got, ok := c.SelectInstaller(m).Installer()
				require.True(t, ok)
				assert.Equal(t, tt.installers[tt.wantIndex], got)
			}
		})
	}
}

func TestUserIntentArchitecture(t *testing.T) {
	c := New(winX64, model.Metadata{model.MetadataUserIntentArchitecture: "x86"})
	assert.Equal(t, []string{"386", "any"}, c.Architectures())

	sel := c.SelectInstaller(manifest(model.Installer{Architecture: "x64"}))
	_, ok := sel.Installer()
	assert.False(t, ok)
	assert.Equal(t, FlagMachineArchitecture, sel.Flags())
}

func TestExplicitArchitectures(t *testing.T) {
	c := New(Options{Platform: winX64.Platform, Architectures: []string{"x86", "any"}}, nil)
	assert.Equal(t, []string{"386", "any"}, c.Architectures())
}
