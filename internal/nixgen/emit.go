// Package nixgen assembles a parsed unit graph into a single Nix
// expression: one derivation per compilation unit, wired together through
// buildInputs/nativeBuildInputs exactly as the unit graph's dependency
// edges describe, and a handful of convenience views (packages, binaries,
// libraries, roots, default) over the result.
package nixgen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/andrewgazelka/nix-cargo-unit/internal/buildscript"
	"github.com/andrewgazelka/nix-cargo-unit/internal/diag"
	"github.com/andrewgazelka/nix-cargo-unit/internal/sourceloc"
	"github.com/andrewgazelka/nix-cargo-unit/internal/unitgraph"
)

// compilation carries the state shared by every per-unit derivation
// builder: the graph itself, the emitter configuration, and everything
// computed once up front (identity hashes, derivation names, parsed
// pkg_ids, the dependency closure index, and the run-script index).
type compilation struct {
	graph           *unitgraph.Graph
	config          Config
	closures        *ClosureIndex
	identities      []string
	derivNames      []string
	pkgIDs          []sourceloc.PkgID
	buildScriptRuns map[string]int
}

func (c *compilation) targetTriple() string {
	if c.config.TargetPlatform != "" {
		return c.config.TargetPlatform
	}
	return "x86_64-unknown-linux-gnu"
}

func (c *compilation) hostTriple() string {
	if c.config.HostPlatform != "" {
		return c.config.HostPlatform
	}
	return c.targetTriple()
}

// Generate renders g into a complete Nix expression, a function from
// { pkgs, rustToolchain, ... } to an attribute set exposing every unit's
// derivation plus the packages/binaries/libraries/roots/default
// convenience views.
func Generate(g *unitgraph.Graph, cfg Config) (string, error) {
	c := &compilation{
		graph:           g,
		config:          cfg,
		identities:      make([]string, len(g.Units)),
		derivNames:      make([]string, len(g.Units)),
		pkgIDs:          make([]sourceloc.PkgID, len(g.Units)),
		buildScriptRuns: buildscript.PackageBuildScriptRuns(g),
	}

	for i, u := range g.Units {
		pk, err := sourceloc.ParsePkgID(u.PkgID)
		if err != nil {
			return "", diag.Wrap(diag.InputMalformed, u.PkgID, err)
		}
		c.pkgIDs[i] = pk
		c.identities[i] = u.IdentityHash(cfg.ToolchainHash)
		c.derivNames[i] = unitgraph.DerivationName(u.Target.Name, pk.Version, c.identities[i])
	}
	c.closures = NewClosureIndex(g)

	var runIndices, otherIndices []int
	for i, u := range g.Units {
		if u.IsBuildScriptRun() {
			runIndices = append(runIndices, i)
		} else {
			otherIndices = append(otherIndices, i)
		}
	}

	var b strings.Builder
	b.WriteString("{ pkgs, rustToolchain, hostRustToolchain ? rustToolchain, src, extraNativeBuildInputs ? [ ], vendorDir ? null }:\n\n")
	b.WriteString("let\n")
	b.WriteString("  mkUnit = attrs: pkgs.stdenv.mkDerivation (attrs // {\n")
	b.WriteString("    nativeBuildInputs = (attrs.nativeBuildInputs or [ ]) ++ extraNativeBuildInputs;\n")
	b.WriteString("  });\n\n")
	b.WriteString("  units = rec {\n")

	for _, i := range runIndices {
		set, err := c.buildRunUnitDerivation(i)
		if err != nil {
			return "", err
		}
		writeUnitEntry(&b, c.derivNames[i], set)
	}
	for _, i := range otherIndices {
		set, err := c.buildUnitDerivation(i)
		if err != nil {
			return "", err
		}
		writeUnitEntry(&b, c.derivNames[i], set)
	}
	for _, i := range otherIndices {
		fmt.Fprintf(&b, "    _idx_%d = units.\"%s\";\n", i, c.derivNames[i])
	}
	b.WriteString("  };\n\n")

	hints := c.filesetHints()
	b.WriteString("  srcFileset = " + indentContinuation(sourceloc.ToFilesetExpr(hints, "src"), "  ") + ";\n")
	b.WriteString("in\n")
	b.WriteString("{\n")
	b.WriteString("  units = units;\n")
	c.writeRootViews(&b)
	b.WriteString("  srcFileset = srcFileset;\n")
	b.WriteString("}\n")

	return b.String(), nil
}

func writeUnitEntry(b *strings.Builder, derivName string, set interface{ Render(int) string }) {
	fmt.Fprintf(b, "    %q = mkUnit %s;\n", derivName, set.Render(2))
}

// indentContinuation re-indents every line after the first in a
// multi-line expression so it lines up under an `attr = ` prefix already
// written at the given indent.
func indentContinuation(expr, indent string) string {
	lines := strings.Split(expr, "\n")
	for i := 1; i < len(lines); i++ {
		lines[i] = indent + lines[i]
	}
	return strings.Join(lines, "\n")
}

func (c *compilation) filesetHints() []sourceloc.FilesetHint {
	var roots []string
	for _, u := range c.graph.Units {
		if u.IsBuildScriptRun() {
			continue
		}
		roots = append(roots, sourceloc.ExtractCrateRoot(u.Target.SrcPath))
	}
	return sourceloc.CollectFilesetHints(c.config.WorkspaceRoot, roots)
}

// writeRootViews renders the packages/binaries/libraries/roots/default
// attributes, all derived from the graph's declared root units.
func (c *compilation) writeRootViews(b *strings.Builder) {
	b.WriteString("  packages = {\n")
	for _, i := range c.graph.Roots {
		fmt.Fprintf(b, "    %q = units.\"%s\";\n", c.graph.Units[i].Target.Name, c.derivNames[i])
	}
	b.WriteString("  };\n")

	b.WriteString("  binaries = {\n")
	for _, i := range c.graph.Roots {
		if c.graph.Units[i].IsBin() {
			fmt.Fprintf(b, "    %q = units.\"%s\";\n", c.graph.Units[i].Target.Name, c.derivNames[i])
		}
	}
	b.WriteString("  };\n")

	b.WriteString("  libraries = {\n")
	for _, i := range c.graph.Roots {
		if c.graph.Units[i].IsLib() {
			fmt.Fprintf(b, "    %q = units.\"%s\";\n", c.graph.Units[i].Target.Name, c.derivNames[i])
		}
	}
	b.WriteString("  };\n")

	roots := append([]int(nil), c.graph.Roots...)
	sort.Ints(roots)
	b.WriteString("  roots = [\n")
	for _, i := range roots {
		fmt.Fprintf(b, "    units.\"%s\"\n", c.derivNames[i])
	}
	b.WriteString("  ];\n")

	if len(c.graph.Roots) > 0 {
		fmt.Fprintf(b, "  default = units.\"%s\";\n", c.derivNames[c.graph.Roots[0]])
	} else {
		b.WriteString("  default = null;\n")
	}
}
