package comparator

import "strings"

// InapplicabilityFlags is the set of reasons an installer was rejected.
type InapplicabilityFlags uint32

// Rejection reasons. FlagNone means the installer is applicable.
const (
	FlagNone                InapplicabilityFlags = 0
	FlagOS                  InapplicabilityFlags = 1 << (iota - 1)
	FlagMachineArchitecture
	FlagInstalledType
	FlagInstalledScope
	FlagScope
	FlagInstalledLocale
	FlagLocale
)

var flagNames = []struct {
	flag InapplicabilityFlags
	name string
}{
	{FlagOS, "OS"},
	{FlagMachineArchitecture, "MachineArchitecture"},
	{FlagInstalledType, "InstalledType"},
	{FlagInstalledScope, "InstalledScope"},
	{FlagScope, "Scope"},
	{FlagInstalledLocale, "InstalledLocale"},
	{FlagLocale, "Locale"},
}

// Has reports whether every bit of flag is set.
func (f InapplicabilityFlags) Has(flag InapplicabilityFlags) bool {
	return flag != FlagNone && f&flag == flag
}

// Only reports whether flag is the one and only reason set.
func (f InapplicabilityFlags) Only(flag InapplicabilityFlags) bool {
	return f == flag
}

func (f InapplicabilityFlags) String() string {
	if f == FlagNone {
		return "None"
	}
	var parts []string
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			parts = append(parts, fn.name)
		}
	}
	return strings.Join(parts, "|")
}
