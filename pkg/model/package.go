// Package model provides the catalog and installed-state types the update flow
// reads, and the decision records it produces.
package model

import (
	"github.com/google/uuid"
)

// VersionKey is an opaque handle to one version entry of a package.
type VersionKey struct {
	SourceIdentifier string
	Version          string
	Channel          string
}

// Property names a scalar property of a package version.
type Property string

// Package version properties.
const (
	PropertyID               Property = "Id"
	PropertyName             Property = "Name"
	PropertyVersion          Property = "Version"
	PropertyChannel          Property = "Channel"
	PropertySourceIdentifier Property = "SourceIdentifier"
)

// MetadataKey names an entry in the metadata recorded for an installation.
type MetadataKey string

// Metadata keys recorded for installed package versions.
const (
	MetadataInstalledType          MetadataKey = "InstalledType"
	MetadataInstalledScope         MetadataKey = "InstalledScope"
	MetadataInstalledLocale        MetadataKey = "InstalledLocale"
	MetadataInstalledArchitecture  MetadataKey = "InstalledArchitecture"
	MetadataUserIntentArchitecture MetadataKey = "UserIntentArchitecture"
	MetadataSourceIdentifier       MetadataKey = "SourceIdentifier"
)

// Metadata is the read-only property bag of an installation.
type Metadata map[MetadataKey]string

// Get returns the value for key, or "" when absent.
func (m Metadata) Get(key MetadataKey) string {
	if m == nil {
		return ""
	}
	return m[key]
}

// PackageVersion is one concrete version of a package, available or installed.
type PackageVersion interface {
	Property(p Property) string
	Metadata() Metadata
	Manifest() (Manifest, error)
}

// Package is an identity plus its available versions.
// AvailableVersionKeys is sorted strictly from newest to oldest by the catalog.
type Package interface {
	ID() string
	AvailableVersionKeys() []VersionKey
	AvailableVersion(key VersionKey) (PackageVersion, error)
}

// MatchCriteria records why a package matched a search.
type MatchCriteria struct {
	Field string
	Value string
}

// Match is one package found by a search.
type Match struct {
	Package  Package
	Criteria MatchCriteria
}

// SearchResult is the ordered result of a catalog search.
type SearchResult struct {
	Matches []Match
}

// PackageKey identifies a PackageToInstall for de-duplication.
type PackageKey struct {
	ID               string
	Version          string
	SourceIdentifier string
}

// PackageToInstall is the decision record for one selected update.
type PackageToInstall struct {
	PackageVersion          PackageVersion
	InstalledPackageVersion PackageVersion
	Manifest                Manifest
	Installer               Installer
	SubExecutionID          uuid.UUID
}

// Key returns the (Id, Version, SourceIdentifier) identity of p.
func (p PackageToInstall) Key() PackageKey {
	key := PackageKey{ID: p.Manifest.ID, Version: p.Manifest.Version}
	if p.PackageVersion != nil {
		key.SourceIdentifier = p.PackageVersion.Property(PropertySourceIdentifier)
	}
	return key
}
