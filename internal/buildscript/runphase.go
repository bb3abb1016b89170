package buildscript

import (
	"fmt"
	"strings"

	"github.com/andrewgazelka/nix-cargo-unit/internal/sourceloc"
	"github.com/andrewgazelka/nix-cargo-unit/internal/unitgraph"
)

// RunPhaseConfig carries everything GenerateRunPhase needs beyond the
// unit itself: the resolved target/host triples and profile name (never
// hardcoded — a sharp edge in the tool this module was generalized from,
// where TARGET/HOST/PROFILE were fixed constants regardless of the
// emitter's actual configuration).
type RunPhaseConfig struct {
	ManifestDir  string // sandbox-relative CARGO_MANIFEST_DIR
	Target       string
	Host         string
	CompileVar   string // Nix variable bound to the compiled build-script binary derivation
	DepOutputs   []DepOutput
	DepOutputVar func(runUnitIndex int) string // renders the Nix reference for a dependency run derivation's output
}

// GenerateRunPhase renders the full build phase for a build-script run
// derivation: output-file setup, the CARGO_* environment a build script
// expects, DEP_* variables imported from dependency build scripts,
// execution of the compiled binary, and directive parsing of its
// captured stdout.
func GenerateRunPhase(u unitgraph.Unit, version string, cfg RunPhaseConfig) string {
	var b strings.Builder

	b.WriteString("mkdir -p $out\n")
	b.WriteString("mkdir -p $out/out-dir\n")
	b.WriteString(TouchOutputFilesScript())
	b.WriteString("\n")

	b.WriteString("export OUT_DIR=$out/out-dir\n")
	fmt.Fprintf(&b, "export CARGO_MANIFEST_DIR=%s\n", cfg.ManifestDir)
	pkgName := u.Target.Name
	if pk, err := sourceloc.ParsePkgID(u.PkgID); err == nil {
		pkgName = pk.Name
	}
	fmt.Fprintf(&b, "export CARGO_PKG_NAME=%s\n", pkgName)
	fmt.Fprintf(&b, "export CARGO_PKG_VERSION=%s\n", version)
	fmt.Fprintf(&b, "export TARGET=%s\n", cfg.Target)
	fmt.Fprintf(&b, "export HOST=%s\n", cfg.Host)
	fmt.Fprintf(&b, "export PROFILE=%s\n", u.Profile.Name)

	for _, f := range u.Features {
		fmt.Fprintf(&b, "export CARGO_FEATURE_%s=1\n", unitgraph.FeatureEnvName(f))
	}

	for _, dep := range cfg.DepOutputs {
		depRef := cfg.DepOutputVar(dep.RunUnitIndex)
		pkgEnv := unitgraph.FeatureEnvName(dep.PackageName)
		fmt.Fprintf(&b, "while IFS='=' read -r dep_key dep_value; do\n")
		fmt.Fprintf(&b, "  [ -z \"$dep_key\" ] && continue\n")
		fmt.Fprintf(&b, "  export \"DEP_%s_${dep_key}=${dep_value}\"\n", pkgEnv)
		fmt.Fprintf(&b, "done < %s/rustc-env\n", depRef)
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "%s > build-script-stdout.txt\n", cfg.CompileVar)
	b.WriteString(GenerateDirectiveParserScript("build-script-stdout.txt"))

	return b.String()
}
