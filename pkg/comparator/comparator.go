// Package comparator selects the installer of a manifest that best fits an
// existing installation and the running environment.
package comparator

import (
	"cmp"
	"slices"

	"golang.org/x/text/language"

	"github.com/glorpus-work/updflow/internal/logger"
	"github.com/glorpus-work/updflow/pkg/model"
	"github.com/glorpus-work/updflow/pkg/platform"
)

// Options describe the environment and user preferences installers are judged by.
type Options struct {
	Platform platform.Platform
	// Architectures overrides the architectures derived from Platform, in preference order.
	Architectures    []string
	PreferredScope   model.Scope
	RequiredScope    model.Scope
	PreferredLocales []string
	RequiredLocales  []string
	// InstallerTypes lists installer technologies in preference order.
	InstallerTypes []model.InstallerType
}

// Rejection records why one installer of a manifest was not applicable.
type Rejection struct {
	Index     int
	Installer model.Installer
	Flags     InapplicabilityFlags
}

// Selection is the outcome of SelectInstaller: either an installer, or the
// reasons every installer was rejected.
type Selection struct {
	installer  model.Installer
	selected   bool
	rejections []Rejection
}

// Installer returns the selected installer, if any.
func (s Selection) Installer() (model.Installer, bool) {
	return s.installer, s.selected
}

// Rejections returns the rejected installers in manifest order.
func (s Selection) Rejections() []Rejection {
	return s.rejections
}

// Flags returns the union of all rejection reasons.
func (s Selection) Flags() InapplicabilityFlags {
	var f InapplicabilityFlags
	for _, r := range s.rejections {
		f |= r.Flags
	}
	return f
}

// OnlyInstalledType reports whether some installer was rejected for its install
// technology alone, meaning the version would be usable with a different technology.
func (s Selection) OnlyInstalledType() bool {
	for _, r := range s.rejections {
		if r.Flags.Only(FlagInstalledType) {
			return true
		}
	}
	return false
}

type filter struct {
	flag       InapplicabilityFlags
	applicable func(inst model.Installer) bool
}

// ManifestComparator filters and ranks the installers of manifests against one
// installation. It is safe for concurrent use once constructed.
type ManifestComparator struct {
	opts Options

	installedType   model.InstallerType
	installedScope  model.Scope
	installedLocale string
	architectures   []string
	locales         []string

	filters []filter
}

// New builds a comparator for an installation described by installed.
// installed may be nil for a package that is not installed yet.
func New(opts Options, installed model.Metadata) *ManifestComparator {
	if opts.Platform == (platform.Platform{}) {
		opts.Platform = platform.CurrentPlatform()
	}
	m := &ManifestComparator{
		opts:            opts,
		installedType:   model.ParseInstallerType(installed.Get(model.MetadataInstalledType)),
		installedScope:  model.ParseScope(installed.Get(model.MetadataInstalledScope)),
		installedLocale: installed.Get(model.MetadataInstalledLocale),
	}
	m.architectures = m.applicableArchitectures(installed)
	if m.installedLocale != "" {
		m.locales = append(m.locales, m.installedLocale)
	}
	m.locales = append(m.locales, opts.PreferredLocales...)

	m.filters = []filter{
		{FlagOS, m.osApplicable},
		{FlagMachineArchitecture, m.architectureApplicable},
		{FlagInstalledType, m.installedTypeApplicable},
		{FlagInstalledScope, m.installedScopeApplicable},
		{FlagScope, m.requiredScopeApplicable},
		{FlagInstalledLocale, m.installedLocaleApplicable},
		{FlagLocale, m.requiredLocaleApplicable},
	}
	return m
}

func (m *ManifestComparator) applicableArchitectures(installed model.Metadata) []string {
	var archs []string
	if len(m.opts.Architectures) > 0 {
		for _, a := range m.opts.Architectures {
			archs = append(archs, platform.NormalizeArch(a))
		}
	} else {
		archs = platform.ApplicableArchitectures(m.opts.Platform)
	}

	if intent := installed.Get(model.MetadataUserIntentArchitecture); intent != "" {
		intent = platform.NormalizeArch(intent)
		if slices.Contains(archs, intent) {
			return []string{intent, platform.AnyArch}
		}
	}
	if arch := installed.Get(model.MetadataInstalledArchitecture); arch != "" {
		arch = platform.NormalizeArch(arch)
		if i := slices.Index(archs, arch); i > 0 {
			archs = append([]string{arch}, slices.Delete(slices.Clone(archs), i, i+1)...)
		}
	}
	return archs
}

// Architectures returns the applicable architectures in preference order.
func (m *ManifestComparator) Architectures() []string {
	return slices.Clone(m.architectures)
}

// SelectInstaller returns the best applicable installer of manifest, or every
// installer's rejection reasons when none applies.
func (m *ManifestComparator) SelectInstaller(manifest model.Manifest) Selection {
	type candidate struct {
		index     int
		installer model.Installer
	}
	var (
		applicable []candidate
		rejections []Rejection
	)
	for i, inst := range manifest.Installers {
		if flags := m.evaluate(inst); flags != FlagNone {
			rejections = append(rejections, Rejection{Index: i, Installer: inst, Flags: flags})
			continue
		}
		applicable = append(applicable, candidate{index: i, installer: inst})
	}

	if len(applicable) == 0 {
		logger.Debug("no applicable installer", logger.Fields{
			"id":         manifest.ID,
			"version":    manifest.Version,
			"rejections": len(rejections),
		})
		return Selection{rejections: rejections}
	}

	slices.SortStableFunc(applicable, func(a, b candidate) int {
		return m.compare(a.installer, b.installer)
	})
	best := applicable[0]
	logger.Debug("selected installer", logger.Fields{
		"id":      manifest.ID,
		"version": manifest.Version,
		"index":   best.index,
		"type":    string(best.installer.Type),
		"arch":    best.installer.GetArch(),
	})
	return Selection{installer: best.installer, selected: true, rejections: rejections}
}

// Evaluate returns the rejection reasons of one installer, FlagNone if it applies.
func (m *ManifestComparator) Evaluate(inst model.Installer) InapplicabilityFlags {
	return m.evaluate(inst)
}

func (m *ManifestComparator) evaluate(inst model.Installer) InapplicabilityFlags {
	var flags InapplicabilityFlags
	for _, f := range m.filters {
		if !f.applicable(inst) {
			flags |= f.flag
		}
	}
	return flags
}

func (m *ManifestComparator) osApplicable(inst model.Installer) bool {
	return m.opts.Platform.SupportsOS(inst.GetOS())
}

func (m *ManifestComparator) architectureApplicable(inst model.Installer) bool {
	return platform.ArchitectureRank(m.architectures, inst.GetArch()) >= 0
}

func (m *ManifestComparator) installedTypeApplicable(inst model.Installer) bool {
	if m.installedType == model.InstallerTypeUnknown || inst.Type == model.InstallerTypeUnknown {
		return true
	}
	return m.installedType.IsCompatible(inst.Type)
}

func (m *ManifestComparator) installedScopeApplicable(inst model.Installer) bool {
	if m.installedScope == model.ScopeUnknown || inst.Scope == model.ScopeUnknown {
		return true
	}
	return m.installedScope == inst.Scope
}

func (m *ManifestComparator) requiredScopeApplicable(inst model.Installer) bool {
	if m.opts.RequiredScope == model.ScopeUnknown || inst.Scope == model.ScopeUnknown {
		return true
	}
	return m.opts.RequiredScope == inst.Scope
}

func (m *ManifestComparator) installedLocaleApplicable(inst model.Installer) bool {
	if m.installedLocale == "" || inst.Locale == "" {
		return true
	}
	return model.SameLanguage(m.installedLocale, inst.Locale)
}

func (m *ManifestComparator) requiredLocaleApplicable(inst model.Installer) bool {
	if len(m.opts.RequiredLocales) == 0 || inst.Locale == "" {
		return true
	}
	for _, want := range m.opts.RequiredLocales {
		if model.MatchLocale(want, inst.Locale) >= model.LocaleScore(language.High) {
			return true
		}
	}
	return false
}

// compare orders two applicable installers; negative means a is preferred.
func (m *ManifestComparator) compare(a, b model.Installer) int {
	if c := m.compareInstalledType(a, b); c != 0 {
		return c
	}
	if c := m.compareLocale(a, b); c != 0 {
		return c
	}
	if c := m.compareScope(a, b); c != 0 {
		return c
	}
	if c := cmp.Compare(
		platform.ArchitectureRank(m.architectures, a.GetArch()),
		platform.ArchitectureRank(m.architectures, b.GetArch()),
	); c != 0 {
		return c
	}
	return cmp.Compare(m.typePreference(a.Type), m.typePreference(b.Type))
}

func (m *ManifestComparator) compareInstalledType(a, b model.Installer) int {
	if m.installedType == model.InstallerTypeUnknown {
		return 0
	}
	return preferTrue(a.Type == m.installedType, b.Type == m.installedType)
}

// localeRank is the position of the first wanted locale the installer satisfies
// with high confidence, and the confidence of that match.
func (m *ManifestComparator) localeRank(inst model.Installer) (int, model.LocaleScore) {
	for i, want := range m.locales {
		if score := model.MatchLocale(want, inst.Locale); score >= model.LocaleScore(language.High) {
			return i, score
		}
	}
	return len(m.locales), model.LocaleScore(language.No)
}

func (m *ManifestComparator) compareLocale(a, b model.Installer) int {
	if len(m.locales) == 0 {
		return 0
	}
	ai, as := m.localeRank(a)
	bi, bs := m.localeRank(b)
	if c := cmp.Compare(ai, bi); c != 0 {
		return c
	}
	return cmp.Compare(bs, as)
}

func (m *ManifestComparator) compareScope(a, b model.Installer) int {
	want := m.opts.PreferredScope
	if want == model.ScopeUnknown {
		want = m.installedScope
	}
	if want == model.ScopeUnknown {
		return 0
	}
	return preferTrue(a.Scope == want, b.Scope == want)
}

func (m *ManifestComparator) typePreference(t model.InstallerType) int {
	if i := slices.Index(m.opts.InstallerTypes, t); i >= 0 {
		return i
	}
	return len(m.opts.InstallerTypes)
}

func preferTrue(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return -1
	default:
		return 1
	}
}
