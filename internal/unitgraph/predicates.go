package unitgraph

import "strings"

// IsLib reports whether u produces a library artifact (including
// staticlib/cdylib/proc-macro crate types, which all share the "lib"
// target kind family in cargo's plan).
func (u Unit) IsLib() bool {
	return u.Target.HasKind("lib") || u.Target.HasKind("rlib") ||
		u.Target.HasKind("dylib") || u.Target.HasKind("staticlib") ||
		u.Target.HasKind("cdylib") || u.Target.HasKind("proc-macro")
}

// IsBin reports whether u produces an executable.
func (u Unit) IsBin() bool {
	return u.Target.HasKind("bin")
}

// IsProcMacro reports whether u is a procedural-macro crate.
func (u Unit) IsProcMacro() bool {
	return u.Target.HasKind("proc-macro") || u.Target.HasCrateType("proc-macro")
}

// IsBuildScriptCompile reports whether u is the compiled binary half of a
// build script (mode=build, kind contains custom-build).
func (u Unit) IsBuildScriptCompile() bool {
	return u.Mode == ModeBuild && u.Target.HasKind("custom-build")
}

// IsBuildScriptRun reports whether u is the executed half of a build
// script.
func (u Unit) IsBuildScriptRun() bool {
	return u.Mode == ModeRunCustomBuild
}

// IsBuildScript reports whether u is either half of a build script.
func (u Unit) IsBuildScript() bool {
	return u.IsBuildScriptCompile() || u.IsBuildScriptRun()
}

// IsTest reports whether u is a test compilation.
func (u Unit) IsTest() bool {
	return u.Mode == ModeTest
}

// RequiresHostToolchain reports whether u must be compiled with the host
// (not target) toolchain: proc-macros and build scripts both execute on
// the machine doing the build, regardless of cross-compilation target.
func (u Unit) RequiresHostToolchain() bool {
	return u.IsProcMacro() || u.IsBuildScript()
}

// NormalizedCrateName is the target name with every '-' rewritten to '_',
// the form rustc expects after --crate-name.
func (u Unit) NormalizedCrateName() string {
	return strings.ReplaceAll(u.Target.Name, "-", "_")
}

// FeatureEnvName upper-cases a feature name and rewrites '-' to '_', the
// transform applied when exposing it as CARGO_FEATURE_X.
func FeatureEnvName(feature string) string {
	return strings.ToUpper(strings.ReplaceAll(feature, "-", "_"))
}

// BuildScriptCompileSibling finds the compile unit that pairs with the
// run-custom-build unit at runIndex: its sole dependency whose target
// kind contains custom-build and whose mode is build. Returns a
// GraphInconsistent diagnostic if no such dependency exists.
func (g *Graph) BuildScriptCompileSibling(runIndex int) (*Unit, error) {
	run := g.Units[runIndex]
	for _, d := range run.Dependencies {
		candidate := &g.Units[d.Index]
		if candidate.IsBuildScriptCompile() {
			return candidate, nil
		}
	}
	return nil, missingCompileSibling(runIndex)
}
