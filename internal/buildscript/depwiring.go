package buildscript

import "github.com/andrewgazelka/nix-cargo-unit/internal/unitgraph"

// DepOutput names one dependency build-script run's contribution to a
// consuming run unit's environment: the package name (for DEP_{PKG}_*
// naming downstream) and the derivation reference the run's own output
// store path is read from.
type DepOutput struct {
	PackageName   string
	RunUnitIndex  int
}

// PackageBuildScriptRuns indexes every run-custom-build unit in g by its
// package id, so DepOutputsFor can look up "does package P have its own
// build script" in constant time.
func PackageBuildScriptRuns(g *unitgraph.Graph) map[string]int {
	runs := make(map[string]int)
	for _, u := range g.Units {
		if u.IsBuildScriptRun() {
			runs[u.PkgID] = u.Index
		}
	}
	return runs
}

// DepOutputsFor computes the DEP_* wiring for the run-custom-build unit
// at runIndex, per the algorithm: find the sibling library unit for the
// same package, walk its direct dependencies, and for each dependency
// whose package has its own build-script run unit (excluding the run
// unit's own package), collect that run's output reference. Order
// matches the sibling's dependency order for determinism.
func DepOutputsFor(g *unitgraph.Graph, runIndex int, runsByPackage map[string]int) []DepOutput {
	run := g.Units[runIndex]
	sibling := findLibrarySibling(g, run.PkgID)
	if sibling == nil {
		return nil
	}

	var outs []DepOutput
	seen := make(map[int]bool)
	for _, d := range sibling.Dependencies {
		dep := g.Units[d.Index]
		if dep.PkgID == run.PkgID {
			continue
		}
		depRunIndex, ok := runsByPackage[dep.PkgID]
		if !ok || depRunIndex == runIndex || seen[depRunIndex] {
			continue
		}
		seen[depRunIndex] = true
		outs = append(outs, DepOutput{PackageName: dep.Target.Name, RunUnitIndex: depRunIndex})
	}
	return outs
}

// findLibrarySibling locates the library (or binary) unit for pkgID that
// is not itself a build-script half, preferring a library target when
// more than one candidate exists.
func findLibrarySibling(g *unitgraph.Graph, pkgID string) *unitgraph.Unit {
	var fallback *unitgraph.Unit
	for i := range g.Units {
		u := &g.Units[i]
		if u.PkgID != pkgID || u.IsBuildScript() {
			continue
		}
		if u.IsLib() {
			return u
		}
		if fallback == nil {
			fallback = u
		}
	}
	return fallback
}
