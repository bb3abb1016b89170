// Package buildscript implements the two-derivation build-script model:
// parsing a build script's `cargo:` directive stream into per-kind output
// files, assembling the run derivation's environment, and propagating
// DEP_* variables between a package's build script and the build scripts
// of its dependencies.
package buildscript

import "fmt"

// Kind names a cargo: directive family, each with its own output file
// under the run derivation's $out.
type Kind string

const (
	KindRustcCfg           Kind = "rustc-cfg"
	KindRustcLinkLib       Kind = "rustc-link-lib"
	KindRustcLinkSearch    Kind = "rustc-link-search"
	KindRustcEnv           Kind = "rustc-env"
	KindRustcCdylibLinkArg Kind = "rustc-cdylib-link-arg"
)

// outputFileKinds lists, in the order they should be created, the output
// files a run derivation always prepares (even if empty) so a consumer
// unit's build phase has a stable set of files to source.
var outputFileKinds = []Kind{
	KindRustcCfg, KindRustcLinkLib, KindRustcLinkSearch, KindRustcEnv, KindRustcCdylibLinkArg,
}

// GenerateDirectiveParserScript renders the shell snippet that reads a
// build script's captured stdout line by line and dispatches each
// `cargo:` directive to its output file, matching the fixed directive
// table:
//
//	cargo:rustc-cfg=X              -> append X to $out/rustc-cfg
//	cargo:rustc-link-lib=X         -> append to $out/rustc-link-lib
//	cargo:rustc-link-search=X      -> append to $out/rustc-link-search
//	cargo:rustc-env=K=V            -> append to $out/rustc-env
//	cargo:rustc-cdylib-link-arg=X  -> append to $out/rustc-cdylib-link-arg
//	cargo:warning=X                -> surfaced as a builder warning (stderr)
//	cargo:rerun-if-changed=*       -> ignored (content-addressing subsumes it)
//	cargo:rerun-if-env-changed=*   -> ignored
//	cargo:* (other)                -> surfaced as an unknown-directive warning
//	any other line                 -> ignored
//
// This is emitted as shell text executed inside the Nix build sandbox at
// build time, not evaluated by this module — the emitter never runs a
// build script itself.
func GenerateDirectiveParserScript(stdoutVar string) string {
	s := "while IFS= read -r line; do\n"
	s += fmt.Sprintf("  case \"$line\" in\n")
	s += "    cargo:rustc-cfg=*)\n"
	s += "      echo \"${line#cargo:rustc-cfg=}\" >> $out/rustc-cfg\n      ;;\n"
	s += "    cargo:rustc-link-lib=*)\n"
	s += "      echo \"${line#cargo:rustc-link-lib=}\" >> $out/rustc-link-lib\n      ;;\n"
	s += "    cargo:rustc-link-search=*)\n"
	s += "      echo \"${line#cargo:rustc-link-search=}\" >> $out/rustc-link-search\n      ;;\n"
	s += "    cargo:rustc-env=*)\n"
	s += "      echo \"${line#cargo:rustc-env=}\" >> $out/rustc-env\n      ;;\n"
	s += "    cargo:rustc-cdylib-link-arg=*)\n"
	s += "      echo \"${line#cargo:rustc-cdylib-link-arg=}\" >> $out/rustc-cdylib-link-arg\n      ;;\n"
	s += "    cargo:warning=*)\n"
	s += "      echo \"warning: ${line#cargo:warning=}\" >&2\n      ;;\n"
	s += "    cargo:rerun-if-changed=*|cargo:rerun-if-env-changed=*)\n"
	s += "      ;;\n"
	s += "    cargo:*)\n"
	s += "      echo \"warning: unknown build script directive: $line\" >&2\n      ;;\n"
	s += "    *)\n"
	s += "      ;;\n"
	s += "  esac\n"
	s += fmt.Sprintf("done < %s\n", stdoutVar)
	return s
}

// TouchOutputFilesScript renders the shell lines that create every
// output file up front (even when empty), so a consumer reading
// $out/rustc-cfg etc. never needs to special-case "directive never
// emitted".
func TouchOutputFilesScript() string {
	s := ""
	for _, k := range outputFileKinds {
		s += fmt.Sprintf("touch $out/%s\n", string(k))
	}
	return s
}
