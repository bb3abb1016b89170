// Package procmacro decides which toolchain variable a unit must build
// with, and which library file extension its output takes on a given
// host platform.
package procmacro

import "strings"

// LibraryExtension maps a platform triple to the shared-library extension
// rustc produces there: contains "darwin"/"apple" -> dylib; contains
// "windows" -> dll; otherwise so. The mapping itself is emitted into the
// generated shell script (it selects at build time) rather than resolved
// here — this function exists so the emitter and its tests share one
// source of truth for the same decision table.
func LibraryExtension(platform string) string {
	p := strings.ToLower(platform)
	switch {
	case strings.Contains(p, "darwin"), strings.Contains(p, "apple"):
		return "dylib"
	case strings.Contains(p, "windows"):
		return "dll"
	default:
		return "so"
	}
}

// ToolchainVar picks the Nix variable name a unit's nativeBuildInputs
// should reference. In native (non-cross) mode both host and target
// units resolve to rustToolchain. In cross-compiling mode, units that
// RequiresHostToolchain (proc-macros, build scripts) use
// hostRustToolchain; everything else uses rustToolchain.
func ToolchainVar(requiresHostToolchain, crossCompiling bool) string {
	if crossCompiling && requiresHostToolchain {
		return "hostRustToolchain"
	}
	return "rustToolchain"
}
