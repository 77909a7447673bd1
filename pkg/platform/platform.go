package platform

import (
	"fmt"
	"runtime"
	"slices"
	"strings"
)

// Platform represents a target platform with OS and Architecture
// Both OS and Arch can be "any" to match any platform
// or a specific value like "linux", "windows", "amd64", etc.
type Platform struct {
	OS   string `yaml:"os" json:"os"`
	Arch string `yaml:"arch" json:"arch"`
}

// CurrentPlatform returns the current platform (OS and architecture)
func CurrentPlatform() Platform {
	return Platform{
		OS:   NormalizeOS(runtime.GOOS),
		Arch: NormalizeArch(runtime.GOARCH),
	}
}

// Matches checks if this platform matches the target platform
// "any" (or an empty value) is a wildcard that matches any value
func (p Platform) Matches(target Platform) bool {
	return matchPart(p.OS, target.OS) && matchPart(p.Arch, target.Arch)
}

func matchPart(a, b string) bool {
	a, b = strings.ToLower(a), strings.ToLower(b)
	return a == "" || b == "" || a == AnyOS || b == AnyOS || a == b
}

// String returns a string representation of the platform
func (p Platform) String() string {
	return fmt.Sprintf("%s/%s", p.OS, p.Arch)
}

// NormalizeOS normalizes OS names to a common format
func NormalizeOS(os string) string {
	os = strings.ToLower(strings.TrimSpace(os))
	switch os {
	case "macos", "osx", "mac":
		return OSDarwin
	case "win", "win32", "win64":
		return OSWindows
	case "", "neutral":
		return AnyOS
	default:
		return os
	}
}

// NormalizeArch normalizes architecture names to a common format
func NormalizeArch(arch string) string {
	arch = strings.ToLower(strings.TrimSpace(arch))
	switch arch {
	case "x86_64", "x64":
		return ArchAMD64
	case "x86", "i386", "i686":
		return Arch386
	case "aarch64":
		return ArchARM64
	case "armv7", "armv7l", "armhf":
		return ArchARM
	case "", "neutral":
		return AnyArch
	default:
		return arch
	}
}

// ApplicableArchitectures returns the architectures whose installers can run on p,
// most preferred first. Architecture-neutral installers always come last.
func ApplicableArchitectures(p Platform) []string {
	arch := NormalizeArch(p.Arch)
	var archs []string
	switch arch {
	case ArchAMD64:
		archs = []string{ArchAMD64, Arch386}
	case ArchARM64:
		switch NormalizeOS(p.OS) {
		case OSWindows:
			archs = []string{ArchARM64, ArchAMD64, ArchARM, Arch386}
		case OSDarwin:
			archs = []string{ArchARM64, ArchAMD64}
		default:
			archs = []string{ArchARM64, ArchARM}
		}
	case AnyArch:
		archs = nil
	default:
		archs = []string{arch}
	}
	return append(archs, AnyArch)
}

// ArchitectureRank returns the position of arch in the applicable list, or -1 when
// the architecture cannot run on the platform.
func ArchitectureRank(applicable []string, arch string) int {
	return slices.Index(applicable, NormalizeArch(arch))
}

// SupportsOS reports whether software built for targetOS runs on p.
// An empty or "any" value on either side matches.
func (p Platform) SupportsOS(targetOS string) bool {
	return matchPart(NormalizeOS(p.OS), NormalizeOS(targetOS))
}
