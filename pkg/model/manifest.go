package model

import (
	"slices"
	"strings"

	"golang.org/x/text/language"
)

// Localization carries the locale-dependent fields of a manifest.
type Localization struct {
	Locale      string `yaml:"locale" json:"locale"`
	Name        string `yaml:"name,omitempty" json:"name,omitempty"`
	Publisher   string `yaml:"publisher,omitempty" json:"publisher,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	License     string `yaml:"license,omitempty" json:"license,omitempty"`
}

// Manifest is the package metadata and installer set for one version.
type Manifest struct {
	ID            string         `yaml:"id" json:"id"`
	Version       string         `yaml:"version" json:"version"`
	Channel       string         `yaml:"channel,omitempty" json:"channel,omitempty"`
	Locale        string         `yaml:"locale,omitempty" json:"locale,omitempty"`
	Name          string         `yaml:"name,omitempty" json:"name,omitempty"`
	Publisher     string         `yaml:"publisher,omitempty" json:"publisher,omitempty"`
	Description   string         `yaml:"description,omitempty" json:"description,omitempty"`
	License       string         `yaml:"license,omitempty" json:"license,omitempty"`
	Localizations []Localization `yaml:"localizations,omitempty" json:"localizations,omitempty"`
	Installers    []Installer    `yaml:"installers" json:"installers"`
}

// Clone returns a deep copy of m.
func (m Manifest) Clone() Manifest {
	m.Localizations = slices.Clone(m.Localizations)
	m.Installers = slices.Clone(m.Installers)
	return m
}

// ApplyLocale overlays the localization that best matches locale onto the default
// fields. An empty locale or one without a usable localization leaves m unchanged.
func (m *Manifest) ApplyLocale(locale string) {
	if locale == "" {
		return
	}
	best := -1
	bestScore := LocaleScore(language.High)
	for i, loc := range m.Localizations {
		if score := MatchLocale(locale, loc.Locale); score > bestScore || (best < 0 && score == bestScore) {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return
	}

	loc := m.Localizations[best]
	m.Locale = loc.Locale
	overlay(&m.Name, loc.Name)
	overlay(&m.Publisher, loc.Publisher)
	overlay(&m.Description, loc.Description)
	overlay(&m.License, loc.License)
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// LocaleScore orders locale matches; higher is better.
type LocaleScore int

// MatchLocale scores how well an available locale satisfies a wanted one.
// Unparsable or empty locales score language.No.
func MatchLocale(want, have string) LocaleScore {
	if want == "" || have == "" {
		return LocaleScore(language.No)
	}
	wantTag, err := language.Parse(want)
	if err != nil {
		return LocaleScore(language.No)
	}
	haveTag, err := language.Parse(have)
	if err != nil {
		return LocaleScore(language.No)
	}
	if wantTag.String() == haveTag.String() {
		return LocaleScore(language.Exact)
	}
	_, _, confidence := language.NewMatcher([]language.Tag{haveTag}).Match(wantTag)
	return LocaleScore(confidence)
}

// SameLanguage reports whether two locales share a base language.
func SameLanguage(a, b string) bool {
	at, errA := language.Parse(a)
	bt, errB := language.Parse(b)
	if errA != nil || errB != nil {
		return strings.EqualFold(a, b)
	}
	ab, _ := at.Base()
	bb, _ := bt.Base()
	return ab == bb
}
