package nixgen

import (
	"fmt"
	"strings"

	"github.com/andrewgazelka/nix-cargo-unit/internal/buildscript"
	"github.com/andrewgazelka/nix-cargo-unit/internal/nixattr"
	"github.com/andrewgazelka/nix-cargo-unit/internal/procmacro"
	"github.com/andrewgazelka/nix-cargo-unit/internal/rustcflags"
	"github.com/andrewgazelka/nix-cargo-unit/internal/shellquote"
	"github.com/andrewgazelka/nix-cargo-unit/internal/sourceloc"
	"github.com/andrewgazelka/nix-cargo-unit/internal/unitgraph"
)

// unitRef renders the Nix expression that reaches a unit's derivation
// through the top-level `units` attribute set.
func unitRef(derivName string) string {
	return `units."` + derivName + `"`
}

// buildScriptRunDependency returns the direct dependency that is a
// run-custom-build unit, if u has one. A unit has at most one such
// dependency per the data model.
func buildScriptRunDependency(g *unitgraph.Graph, u unitgraph.Unit) (int, bool) {
	for _, d := range u.Dependencies {
		if g.Units[d.Index].IsBuildScriptRun() {
			return d.Index, true
		}
	}
	return 0, false
}

// buildUnitDerivation renders the complete Nix attribute set for a
// non-run unit (library, binary, test, or build-script compile) at
// index i.
func (c *compilation) buildUnitDerivation(i int) (*nixattr.Set, error) {
	u := c.graph.Units[i]
	pk := c.pkgIDs[i]
	identity := c.identities[i]
	version := pk.Version

	set := nixattr.New()
	set.String("pname", u.Target.Name)
	set.String("version", versionOrDefault(version))
	set.Bool("dontUnpack", true)
	set.Bool("dontConfigure", true)

	buildInputs := make([]string, 0, len(u.Dependencies)+1)
	var procMacroDeps []procMacroDep
	var externArgs []string
	seenBuildInput := map[string]bool{}

	for _, d := range u.Dependencies {
		dep := c.graph.Units[d.Index]
		if dep.IsBuildScriptRun() {
			continue
		}
		depRef := unitRef(c.derivNames[d.Index])
		if !seenBuildInput[depRef] {
			buildInputs = append(buildInputs, depRef)
			seenBuildInput[depRef] = true
		}

		if dep.IsProcMacro() {
			varName := "PROCMACRO_" + strings.ToUpper(unitgraph.FeatureEnvName(dep.Target.Name))
			procMacroDeps = append(procMacroDeps, procMacroDep{
				VarName:     varName,
				LibDir:      "${" + depRef + "}/lib",
				LibBaseName: "lib" + dep.NormalizedCrateName() + "-" + c.identities[d.Index],
			})
			externArgs = append(externArgs, "--extern", d.ExternCrateName+"=$"+varName)
		} else {
			rlibPath := fmt.Sprintf("${%s}/lib/lib%s-%s.rlib", depRef, dep.NormalizedCrateName(), c.identities[d.Index])
			externArgs = append(externArgs, "--extern", d.ExternCrateName+"="+rlibPath)
		}
	}

	runIdx, hasBuildScript := buildScriptRunDependency(c.graph, u)
	var buildScriptRunRef string
	if hasBuildScript {
		buildScriptRunRef = unitRef(c.derivNames[runIdx])
		if !seenBuildInput[buildScriptRunRef] {
			buildInputs = append(buildInputs, buildScriptRunRef)
		}
	}

	sourceExpr := sourceloc.RemapSourcePath(u.Target.SrcPath, c.config.WorkspaceRoot, "src")

	closureRefs := make([]string, 0)
	for _, idx := range c.closures.Closure(i).Sorted() {
		closureRefs = append(closureRefs, unitRef(c.derivNames[idx]))
	}

	args := rustcflags.Build(u, pk.Source.Kind, rustcflags.LintCompat(c.config.LintCompat))
	args = rustcflags.AddMetadata(args, identity)

	buildPhase := c.generateBuildPhase(u, sourceExpr, args, closureRefs, externArgs, procMacroDeps, buildScriptRunRef)
	set.Multiline("buildPhase", buildPhase)
	set.Multiline("installPhase", generateInstallPhase(u))

	set.ExprList("buildInputs", buildInputs)
	set.ExprList("nativeBuildInputs", []string{procmacro.ToolchainVar(u.RequiresHostToolchain(), c.config.CrossCompiling)})

	if c.config.ContentAddressed {
		set.AddContentAddressed()
	}
	set.Bool("dontStrip", true)

	return set, nil
}

type procMacroDep struct {
	VarName     string
	LibDir      string
	LibBaseName string
}

func (c *compilation) generateBuildPhase(u unitgraph.Unit, sourceExpr string, args, closureRefs, externArgs []string, procMacroDeps []procMacroDep, buildScriptRunRef string) string {
	var b strings.Builder
	b.WriteString("mkdir -p build\n")
	b.WriteString(generateCargoPkgExports(u, c.pkgIDs[u.Index].Version))

	if buildScriptRunRef != "" {
		b.WriteString(generateBuildScriptFlagsScript("${" + buildScriptRunRef + "}"))
	} else {
		b.WriteString("BUILD_SCRIPT_FLAGS=\"\"\n")
	}

	for _, pmd := range procMacroDeps {
		b.WriteString(generateProcMacroProbeScript(pmd.VarName, pmd.LibDir, pmd.LibBaseName))
	}

	cmd := []string{"rustc"}
	cmd = append(cmd, args...)
	for _, ref := range closureRefs {
		cmd = append(cmd, "-L", "dependency=${"+ref+"}/lib")
	}
	if u.IsProcMacro() {
		cmd = append(cmd, "--extern", "proc_macro")
	}
	cmd = append(cmd, externArgs...)
	cmd = append(cmd, sourceExpr)
	if u.IsBin() {
		cmd = append(cmd, "-o", "build/"+u.Target.Name)
	} else {
		cmd = append(cmd, "--out-dir", "build", "--emit=dep-info,link")
	}

	b.WriteString(shellquote.QuoteJoin(cmd))
	b.WriteString(" $BUILD_SCRIPT_FLAGS\n")

	return b.String()
}

func generateInstallPhase(u unitgraph.Unit) string {
	var b strings.Builder
	if u.IsBin() {
		b.WriteString("mkdir -p $out/bin\n")
		fmt.Fprintf(&b, "if [ ! -e $out/bin/%s ]; then\n", u.Target.Name)
		fmt.Fprintf(&b, "  cp build/%s $out/bin/\n", u.Target.Name)
		fmt.Fprintf(&b, "  chmod 755 $out/bin/%s\n", u.Target.Name)
		b.WriteString("fi\n")
		return b.String()
	}

	b.WriteString("mkdir -p $out/lib\n")
	b.WriteString("if [ -z \"$(ls -A $out/lib 2>/dev/null)\" ]; then\n")
	b.WriteString("  cp build/* $out/lib/\n")
	b.WriteString("  for f in $out/lib/*; do\n")
	b.WriteString("    case \"$f\" in\n")
	b.WriteString("      *.dylib|*.so) chmod 755 \"$f\" ;;\n")
	b.WriteString("      *) chmod 644 \"$f\" ;;\n")
	b.WriteString("    esac\n")
	b.WriteString("  done\n")
	b.WriteString("  if [ \"$(uname)\" = \"Darwin\" ]; then\n")
	b.WriteString("    for f in $out/lib/*.dylib; do\n")
	b.WriteString("      [ -e \"$f\" ] || continue\n")
	b.WriteString("      install_name_tool -id \"$f\" \"$f\"\n")
	b.WriteString("    done\n")
	b.WriteString("  fi\n")
	b.WriteString("fi\n")
	return b.String()
}

// buildRunUnitDerivation renders the complete Nix attribute set for a
// run-custom-build unit: it locates its compiled build-script sibling,
// wires in whatever DEP_* environment its dependencies' own build
// scripts expose, and delegates the actual phase text to
// buildscript.GenerateRunPhase.
func (c *compilation) buildRunUnitDerivation(i int) (*nixattr.Set, error) {
	u := c.graph.Units[i]
	pk := c.pkgIDs[i]

	compile, err := c.graph.BuildScriptCompileSibling(i)
	if err != nil {
		return nil, err
	}
	compileRef := unitRef(c.derivNames[compile.Index])
	crateRoot := sourceloc.ExtractCrateRoot(compile.Target.SrcPath)
	manifestDir := sourceloc.RemapManifestDir(pk, crateRoot, c.config.WorkspaceRoot, "src", "vendorDir")

	depOutputs := buildscript.DepOutputsFor(c.graph, i, c.buildScriptRuns)
	depOutputVar := func(runUnitIndex int) string {
		return "${" + unitRef(c.derivNames[runUnitIndex]) + "}"
	}

	cfg := buildscript.RunPhaseConfig{
		ManifestDir:  manifestDir,
		Target:       c.targetTriple(),
		Host:         c.hostTriple(),
		CompileVar:   "${" + compileRef + "}/bin/" + compile.Target.Name,
		DepOutputs:   depOutputs,
		DepOutputVar: depOutputVar,
	}

	set := nixattr.New()
	set.String("pname", u.Target.Name+"-build-script-run")
	set.String("version", versionOrDefault(pk.Version))
	set.Bool("dontUnpack", true)
	set.Bool("dontConfigure", true)
	set.Bool("dontInstall", true)
	set.Multiline("buildPhase", buildscript.GenerateRunPhase(u, pk.Version, cfg))
	set.ExprList("buildInputs", []string{compileRef})
	set.ExprList("nativeBuildInputs", []string{procmacro.ToolchainVar(true, c.config.CrossCompiling)})

	if c.config.ContentAddressed {
		set.AddContentAddressed()
	}

	return set, nil
}

func versionOrDefault(v string) string {
	if v == "" {
		return "0.0.0"
	}
	return v
}
