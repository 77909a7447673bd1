// Package installed provides a simple JSON-backed store of installed packages.
package installed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/glorpus-work/updflow/pkg/errors"
	"github.com/glorpus-work/updflow/pkg/fsutil"
	"github.com/glorpus-work/updflow/pkg/model"
)

// Entry records one installed package and how it was installed.
type Entry struct {
	ID            string    `json:"id"`
	Name          string    `json:"name,omitempty"`
	Version       string    `json:"version"`
	Source        string    `json:"source,omitempty"`
	InstallerType string    `json:"installer_type,omitempty"`
	Scope         string    `json:"scope,omitempty"`
	Locale        string    `json:"locale,omitempty"`
	Architecture  string    `json:"architecture,omitempty"`
	InstalledAt   time.Time `json:"installed_at"`
}

// Store is the database of installed packages.
type Store struct {
	FormatVersion string    `json:"format_version"`
	LastUpdate    time.Time `json:"last_update"`
	Packages      []*Entry  `json:"packages"`

	path    string
	rwMutex sync.RWMutex
}

const (
	// FormatVersion is the current file format.
	FormatVersion = "1"

	initialCapacity = 64
)

// NewStore creates an empty store persisted at path. An empty path keeps the
// store in memory.
func NewStore(path string) *Store {
	return &Store{
		FormatVersion: FormatVersion,
		LastUpdate:    time.Now(),
		Packages:      make([]*Entry, 0, initialCapacity),
		path:          path,
	}
}

// Open loads the store at path; a missing file yields an empty store.
func Open(path string) (*Store, error) {
	s := NewStore(path)
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the file the store is persisted to.
func (s *Store) Path() string {
	return s.path
}

// Load reads the store from its file.
func (s *Store) Load() error {
	cleanPath := filepath.Clean(s.path)
	if !filepath.IsAbs(cleanPath) {
		return fmt.Errorf("installed database path must be absolute: %s: %w", s.path, errors.ErrInvalidPath)
	}

	file, err := os.Open(cleanPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open installed database: %w", err)
	}
	defer func() { _ = file.Close() }()

	return s.parse(file)
}

func (s *Store) parse(reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to read installed database: %w", err)
	}

	s.rwMutex.Lock()
	defer s.rwMutex.Unlock()
	if err := json.Unmarshal(data, s); err != nil {
		return fmt.Errorf("failed to parse installed database: %w", err)
	}
	return nil
}

// Save writes the store atomically through a temporary file.
func (s *Store) Save() (err error) {
	if s.path == "" {
		return nil
	}
	cleanPath := filepath.Clean(s.path)
	if !filepath.IsAbs(cleanPath) {
		return fmt.Errorf("installed database path must be absolute: %s: %w", s.path, errors.ErrInvalidPath)
	}

	dir := filepath.Dir(cleanPath)
	if err := fsutil.EnsureDir(dir); err != nil {
		return errors.Wrapf(err, "failed to create %s", dir)
	}
	tmpFile, err := os.CreateTemp(dir, "updflow-db-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file in %s: %w", dir, err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	s.rwMutex.RLock()
	data, err := json.MarshalIndent(s, "", "  ")
	s.rwMutex.RUnlock()
	if err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("failed to marshal installed database: %w", err)
	}

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("failed to write to temporary file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("failed to sync temporary file to disk: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := os.Rename(tmpPath, cleanPath); err != nil {
		return fmt.Errorf("failed to rename temporary file to %s: %w", cleanPath, err)
	}
	return nil
}

func (s *Store) find(id string) (int, *Entry) {
	for i, e := range s.Packages {
		if strings.EqualFold(e.ID, id) {
			return i, e
		}
	}
	return -1, nil
}

// Find returns a copy of the entry for id, or nil.
func (s *Store) Find(id string) *Entry {
	s.rwMutex.RLock()
	defer s.rwMutex.RUnlock()
	if _, e := s.find(id); e != nil {
		c := *e
		return &c
	}
	return nil
}

// Add inserts or replaces the entry with the same ID.
func (s *Store) Add(e *Entry) {
	s.rwMutex.Lock()
	defer s.rwMutex.Unlock()

	if e.InstalledAt.IsZero() {
		e.InstalledAt = time.Now()
	}
	if i, _ := s.find(e.ID); i >= 0 {
		s.Packages[i] = e
	} else {
		s.Packages = append(s.Packages, e)
	}
	s.LastUpdate = time.Now()
}

// Remove deletes the entry for id.
func (s *Store) Remove(id string) bool {
	s.rwMutex.Lock()
	defer s.rwMutex.Unlock()

	i, _ := s.find(id)
	if i < 0 {
		return false
	}
	s.Packages = slices.Delete(s.Packages, i, i+1)
	s.LastUpdate = time.Now()
	return true
}

// Entries returns copies of all entries sorted by ID.
func (s *Store) Entries() []Entry {
	s.rwMutex.RLock()
	defer s.rwMutex.RUnlock()

	out := make([]Entry, 0, len(s.Packages))
	for _, e := range s.Packages {
		out = append(out, *e)
	}
	slices.SortFunc(out, func(a, b Entry) int {
		return strings.Compare(strings.ToLower(a.ID), strings.ToLower(b.ID))
	})
	return out
}

// IDs returns the IDs of all installed packages sorted case-insensitively.
func (s *Store) IDs() []string {
	entries := s.Entries()
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids
}

// InstalledVersion returns the installed version of id, or errors.ErrNotInstalled.
func (s *Store) InstalledVersion(ctx context.Context, id string) (model.PackageVersion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e := s.Find(id)
	if e == nil {
		return nil, fmt.Errorf("%s: %w", id, errors.ErrNotInstalled)
	}
	return Version{entry: *e}, nil
}

// Record stores the outcome of an update and saves the store.
func (s *Store) Record(pkg model.PackageToInstall) error {
	s.rwMutex.RLock()
	_, existing := s.find(pkg.Manifest.ID)
	var e Entry
	if existing != nil {
		e = *existing
	}
	s.rwMutex.RUnlock()

	e.ID = pkg.Manifest.ID
	e.Version = pkg.Manifest.Version
	if pkg.Manifest.Name != "" {
		e.Name = pkg.Manifest.Name
	}
	if pkg.PackageVersion != nil {
		e.Source = pkg.PackageVersion.Property(model.PropertySourceIdentifier)
	}
	if pkg.Installer.Type != model.InstallerTypeUnknown {
		e.InstallerType = string(pkg.Installer.Type)
	}
	if pkg.Installer.Scope != model.ScopeUnknown {
		e.Scope = string(pkg.Installer.Scope)
	}
	if pkg.Installer.Locale != "" {
		e.Locale = pkg.Installer.Locale
	}
	e.Architecture = pkg.Installer.GetArch()
	e.InstalledAt = time.Now()

	s.Add(&e)
	return s.Save()
}

// Version is the model.PackageVersion view of an installed entry.
type Version struct {
	entry Entry
}

// Property implements model.PackageVersion.
func (v Version) Property(p model.Property) string {
	switch p {
	case model.PropertyID:
		return v.entry.ID
	case model.PropertyName:
		if v.entry.Name != "" {
			return v.entry.Name
		}
		return v.entry.ID
	case model.PropertyVersion:
		return v.entry.Version
	case model.PropertySourceIdentifier:
		return v.entry.Source
	default:
		return ""
	}
}

// Metadata implements model.PackageVersion.
func (v Version) Metadata() model.Metadata {
	m := model.Metadata{}
	set := func(k model.MetadataKey, val string) {
		if val != "" {
			m[k] = val
		}
	}
	set(model.MetadataInstalledType, v.entry.InstallerType)
	set(model.MetadataInstalledScope, v.entry.Scope)
	set(model.MetadataInstalledLocale, v.entry.Locale)
	set(model.MetadataInstalledArchitecture, v.entry.Architecture)
	set(model.MetadataSourceIdentifier, v.entry.Source)
	return m
}

// Manifest implements model.PackageVersion; installed entries carry no installers.
func (v Version) Manifest() (model.Manifest, error) {
	return model.Manifest{ID: v.entry.ID, Name: v.entry.Name, Version: v.entry.Version, Locale: v.entry.Locale}, nil
}
