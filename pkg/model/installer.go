package model

import (
	"strings"

	"github.com/glorpus-work/updflow/pkg/platform"
)

// InstallerType is the technology an installer uses.
type InstallerType string

// Known installer types.
const (
	InstallerTypeUnknown  InstallerType = ""
	InstallerTypeMSIX     InstallerType = "msix"
	InstallerTypeMSI      InstallerType = "msi"
	InstallerTypeWix      InstallerType = "wix"
	InstallerTypeExe      InstallerType = "exe"
	InstallerTypeInno     InstallerType = "inno"
	InstallerTypeNullsoft InstallerType = "nullsoft"
	InstallerTypeBurn     InstallerType = "burn"
	InstallerTypeZip      InstallerType = "zip"
	InstallerTypePortable InstallerType = "portable"
	InstallerTypeMSStore  InstallerType = "msstore"
	InstallerTypeArchive  InstallerType = "archive"
)

// ValidInstallerTypes returns every known installer type.
func ValidInstallerTypes() []InstallerType {
	return []InstallerType{
		InstallerTypeMSIX, InstallerTypeMSI, InstallerTypeWix, InstallerTypeExe,
		InstallerTypeInno, InstallerTypeNullsoft, InstallerTypeBurn, InstallerTypeZip,
		InstallerTypePortable, InstallerTypeMSStore, InstallerTypeArchive,
	}
}

// ParseInstallerType normalizes s; unknown values are kept lower-cased.
func ParseInstallerType(s string) InstallerType {
	return InstallerType(strings.ToLower(strings.TrimSpace(s)))
}

// installerTypeFamily groups technologies that can upgrade each other.
func installerTypeFamily(t InstallerType) string {
	switch t {
	case InstallerTypeExe, InstallerTypeInno, InstallerTypeNullsoft, InstallerTypeBurn:
		return "exe"
	case InstallerTypeMSI, InstallerTypeWix:
		return "msi"
	case InstallerTypeMSIX, InstallerTypeMSStore:
		return "msix"
	default:
		return string(t)
	}
}

// IsCompatible reports whether an installation made with t can be upgraded by an
// installer of type other.
func (t InstallerType) IsCompatible(other InstallerType) bool {
	return t == other || installerTypeFamily(t) == installerTypeFamily(other)
}

// Scope is the install scope of an installer or installation.
type Scope string

// Supported scopes.
const (
	ScopeUnknown Scope = ""
	ScopeUser    Scope = "user"
	ScopeMachine Scope = "machine"
)

// ParseScope normalizes s to a Scope.
func ParseScope(s string) Scope {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user":
		return ScopeUser
	case "machine", "system":
		return ScopeMachine
	default:
		return ScopeUnknown
	}
}

// Installer is one installable artifact together with its applicability attributes.
type Installer struct {
	Architecture string        `yaml:"architecture" json:"architecture"`
	OS           string        `yaml:"os,omitempty" json:"os,omitempty"`
	Type         InstallerType `yaml:"type" json:"type"`
	Scope        Scope         `yaml:"scope,omitempty" json:"scope,omitempty"`
	Locale       string        `yaml:"locale,omitempty" json:"locale,omitempty"`
	URL          string        `yaml:"url,omitempty" json:"url,omitempty"`
	SHA256       string        `yaml:"sha256,omitempty" json:"sha256,omitempty"`
	ProductCode  string        `yaml:"product_code,omitempty" json:"product_code,omitempty"`
	ReleaseDate  string        `yaml:"release_date,omitempty" json:"release_date,omitempty"`
}

// GetOS returns the operating system this installer targets, or AnyOS if not specified.
func (i Installer) GetOS() string {
	return platform.NormalizeOS(i.OS)
}

// GetArch returns the architecture this installer targets, or AnyArch if not specified.
func (i Installer) GetArch() string {
	return platform.NormalizeArch(i.Architecture)
}

// Platform returns the installer's OS and architecture as a platform.
func (i Installer) Platform() platform.Platform {
	return platform.Platform{OS: i.GetOS(), Arch: i.GetArch()}
}
