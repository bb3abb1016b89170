package nixgen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/andrewgazelka/nix-cargo-unit/internal/unitgraph"
)

// generateCargoPkgExports renders the CARGO_PKG_* and CARGO_FEATURE_*
// environment block every unit's build phase exports before invoking
// rustc, mirroring what cargo itself exports for build scripts and
// proc-macro/library compilation alike. CARGO_FEATURE_* lines are written
// in sorted feature order, so the input order of features does not change
// the output.
func generateCargoPkgExports(u unitgraph.Unit, version string) string {
	vp := ParseVersionParts(version)
	var b strings.Builder
	fmt.Fprintf(&b, "export CARGO_PKG_NAME=%s\n", u.Target.Name)
	fmt.Fprintf(&b, "export CARGO_PKG_VERSION=%s\n", version)
	fmt.Fprintf(&b, "export CARGO_PKG_VERSION_MAJOR=%s\n", vp.Major)
	fmt.Fprintf(&b, "export CARGO_PKG_VERSION_MINOR=%s\n", vp.Minor)
	fmt.Fprintf(&b, "export CARGO_PKG_VERSION_PATCH=%s\n", vp.Patch)
	features := append([]string(nil), u.Features...)
	sort.Strings(features)
	for _, f := range features {
		fmt.Fprintf(&b, "export CARGO_FEATURE_%s=1\n", unitgraph.FeatureEnvName(f))
	}
	return b.String()
}

// generateBuildScriptFlagsScript renders the shell lines that populate
// $BUILD_SCRIPT_FLAGS from a build-script run derivation's output files:
// rustc-cfg, rustc-link-lib, rustc-link-search, and
// rustc-cdylib-link-arg lines each become one more flag; rustc-env
// entries are exported directly as environment variables rather than
// appended as flags, since that is how rustc itself would have seen
// them.
func generateBuildScriptFlagsScript(runRef string) string {
	var b strings.Builder
	b.WriteString("BUILD_SCRIPT_FLAGS=\"\"\n")

	appendFlag := func(file, flagPrefix string) {
		fmt.Fprintf(&b, "if [ -s %s/%s ]; then\n", runRef, file)
		fmt.Fprintf(&b, "  while IFS= read -r line; do BUILD_SCRIPT_FLAGS=\"$BUILD_SCRIPT_FLAGS %s$line\"; done < %s/%s\n", flagPrefix, runRef, file)
		b.WriteString("fi\n")
	}
	appendFlag("rustc-cfg", "--cfg ")
	appendFlag("rustc-link-lib", "-l ")
	appendFlag("rustc-link-search", "-L ")
	appendFlag("rustc-cdylib-link-arg", "-C link-arg=")

	fmt.Fprintf(&b, "if [ -s %s/rustc-env ]; then\n", runRef)
	fmt.Fprintf(&b, "  while IFS='=' read -r env_key env_value; do\n")
	fmt.Fprintf(&b, "    [ -z \"$env_key\" ] && continue\n")
	fmt.Fprintf(&b, "    export \"${env_key}=${env_value}\"\n")
	fmt.Fprintf(&b, "  done < %s/rustc-env\n", runRef)
	b.WriteString("fi\n")

	return b.String()
}

// generateProcMacroProbeScript renders the shell lines that bind a shell
// variable to a proc-macro dependency's library file, probing .dylib
// first and falling back to .so on every platform — the
// dylib-then-so fallback the build phase needs because the
// emitter cannot know at emit time which extension the Nix sandbox's
// rustc actually produced.
func generateProcMacroProbeScript(varName, libDir, libBaseName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "if [ -f %s/%s.dylib ]; then\n", libDir, libBaseName)
	fmt.Fprintf(&b, "  %s=%s/%s.dylib\n", varName, libDir, libBaseName)
	b.WriteString("else\n")
	fmt.Fprintf(&b, "  %s=%s/%s.so\n", varName, libDir, libBaseName)
	b.WriteString("fi\n")
	return b.String()
}
