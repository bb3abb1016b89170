// Package rustcflags reconstructs the rustc argument vector cargo would
// have passed for a unit: crate name normalization, edition, crate
// types, profile-derived codegen flags, feature cfgs, and the
// metadata/extra-filename suffixing that gives each unit its own build
// artifact name.
package rustcflags

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/andrewgazelka/nix-cargo-unit/internal/sourceloc"
	"github.com/andrewgazelka/nix-cargo-unit/internal/unitgraph"
)

// LintCompat controls whether Build emits the umbrella
// `-A mismatched_lifetime_syntaxes` allow. Defaulting true matches
// current behavior; the flag exists because the allow is a compatibility
// shim for one specific compiler version range and is expected to become
// unnecessary once the toolchain baseline moves past it.
type LintCompat bool

const (
	LintCompatOn  LintCompat = true
	LintCompatOff LintCompat = false
)

// Build reconstructs the ordered argument vector for unit u, in the exact
// emission order the compiler's plan depends on: crate-name, edition,
// crate-types, codegen flags, feature cfgs, --test, the lint-compat
// allow, then --cap-lints warn for external dependencies. It does not
// include the metadata/extra-filename pair (added separately by
// AddMetadata once the unit's identity hash is known) or the trailing
// -L/--extern/source/-o arguments the emitter appends itself.
func Build(u unitgraph.Unit, sourceKind sourceloc.SourceKind, lintCompat LintCompat) []string {
	var args []string

	args = append(args, "--crate-name", u.NormalizedCrateName())
	args = append(args, "--edition", u.Target.Edition)
	for _, ct := range u.Target.CrateTypes {
		args = append(args, "--crate-type", ct)
	}

	args = append(args, codegenFlags(u.Profile)...)

	features := append([]string(nil), u.Features...)
	sort.Strings(features)
	for _, f := range features {
		args = append(args, "--cfg", fmt.Sprintf(`feature="%s"`, f))
	}

	if u.IsTest() {
		args = append(args, "--test")
	}

	if lintCompat {
		args = append(args, "-A", "mismatched_lifetime_syntaxes")
	}

	if isExternalDependency(sourceKind) {
		args = append(args, "--cap-lints", "warn")
	}

	return args
}

func isExternalDependency(kind sourceloc.SourceKind) bool {
	return kind == sourceloc.SourceRegistry || kind == sourceloc.SourceGit
}

func codegenFlags(p unitgraph.Profile) []string {
	var args []string
	args = append(args, "-C", "opt-level="+p.OptLevel)
	args = append(args, "-C", "debuginfo="+p.DebugInfo.String())
	args = append(args, "-C", "lto="+p.LTO.String())
	if p.CodegenUnits != nil {
		args = append(args, "-C", "codegen-units="+strconv.Itoa(*p.CodegenUnits))
	}
	args = append(args, "-C", "debug-assertions="+yesNo(p.DebugAssertions))
	args = append(args, "-C", "overflow-checks="+yesNo(p.OverflowChecks))
	args = append(args, "-C", "panic="+string(p.Panic))
	args = append(args, "-C", "strip="+p.Strip.String())
	if p.SplitDebuginfo != "" {
		args = append(args, "-C", "split-debuginfo="+p.SplitDebuginfo)
	}
	if p.RPath {
		args = append(args, "-C", "rpath=yes")
	}
	return args
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// AddMetadata appends the -C metadata/-C extra-filename pair that
// finalizes a unit's flags for emission, once its identity hash is
// known. This is kept separate from Build because the hash is computed
// from the unit alone, but the flag vector that carries it is only
// assembled when the emitter is ready to render the final derivation.
func AddMetadata(args []string, identityHash string) []string {
	return append(args, "-C", "metadata="+identityHash, "-C", "extra-filename=-"+identityHash)
}
