package nixgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewgazelka/nix-cargo-unit/internal/unitgraph"
)

func mustParse(t *testing.T, data string) *unitgraph.Graph {
	t.Helper()
	g, err := unitgraph.Parse([]byte(data))
	require.NoError(t, err)
	return g
}

func TestGenerateMinimalLibrary(t *testing.T) {
	g := mustParse(t, `{
		"version": 1,
		"units": [
			{
				"pkg_id": "test 0.1.0 (path+file:///ws)",
				"target": {"kind":["lib"],"crate_types":["lib"],"name":"test","src_path":"/ws/src/lib.rs","edition":"2024"},
				"profile": {"name":"dev","opt_level":"0"},
				"features": [],
				"mode": "build",
				"dependencies": []
			}
		],
		"roots": [0]
	}`)

	cfg := DefaultConfig()
	cfg.WorkspaceRoot = "/ws"
	out, err := Generate(g, cfg)
	require.NoError(t, err)

	assert.Contains(t, out, `pname = "test"`)
	assert.Contains(t, out, `version = "0.1.0"`)
	assert.Contains(t, out, "--edition 2024")
	assert.Contains(t, out, "--crate-type lib")
	assert.Contains(t, out, "${src}/src/lib.rs")
	assert.Equal(t, 1, strings.Count(out, "mkUnit {"))
}

func TestGenerateBinDependsOnLib(t *testing.T) {
	g := mustParse(t, `{
		"version": 1,
		"units": [
			{
				"pkg_id": "dep 0.1.0 (path+file:///ws)",
				"target": {"kind":["lib"],"crate_types":["lib"],"name":"dep","src_path":"/ws/dep/src/lib.rs","edition":"2021"},
				"profile": {"name":"dev","opt_level":"0"},
				"features": [],
				"mode": "build",
				"dependencies": []
			},
			{
				"pkg_id": "app 0.1.0 (path+file:///ws)",
				"target": {"kind":["bin"],"crate_types":["bin"],"name":"app","src_path":"/ws/app/src/main.rs","edition":"2021"},
				"profile": {"name":"dev","opt_level":"0"},
				"features": [],
				"mode": "build",
				"dependencies": [{"index":0,"extern_crate_name":"dep"}]
			}
		],
		"roots": [1]
	}`)

	cfg := DefaultConfig()
	cfg.WorkspaceRoot = "/ws"
	out, err := Generate(g, cfg)
	require.NoError(t, err)

	depHash := g.Units[0].IdentityHash("")
	assert.Contains(t, out, "--extern dep=${units.\"dep-0.1.0-"+depHash+"\"}/lib/libdep-"+depHash+".rlib")
	assert.Contains(t, out, "cp build/app $out/bin/")
}

func TestGenerateProcMacroCrossCompiling(t *testing.T) {
	g := mustParse(t, `{
		"version": 1,
		"units": [
			{
				"pkg_id": "serde_derive 1.0.0 (registry+https://example.com)",
				"target": {"kind":["proc-macro"],"crate_types":["proc-macro"],"name":"serde_derive","src_path":"/ws/.cargo/registry/src/idx/serde_derive-1.0.0/src/lib.rs","edition":"2021"},
				"profile": {"name":"dev","opt_level":"0"},
				"features": [],
				"mode": "build",
				"dependencies": [],
				"platform": "aarch64-apple-darwin"
			},
			{
				"pkg_id": "my_app 0.1.0 (path+file:///ws)",
				"target": {"kind":["bin"],"crate_types":["bin"],"name":"my_app","src_path":"/ws/src/main.rs","edition":"2021"},
				"profile": {"name":"dev","opt_level":"0"},
				"features": [],
				"mode": "build",
				"dependencies": [{"index":0,"extern_crate_name":"serde_derive"}]
			}
		],
		"roots": [1]
	}`)

	cfg := DefaultConfig()
	cfg.WorkspaceRoot = "/ws"
	cfg.CrossCompiling = true
	cfg.HostPlatform = "aarch64-apple-darwin"
	cfg.TargetPlatform = "x86_64-unknown-linux-gnu"
	out, err := Generate(g, cfg)
	require.NoError(t, err)

	assert.Contains(t, out, "hostRustToolchain ? rustToolchain")
	assert.Contains(t, out, "nativeBuildInputs = [\n        hostRustToolchain\n      ]")
	assert.Contains(t, out, "nativeBuildInputs = [\n        rustToolchain\n      ]")
	assert.Contains(t, out, "PROCMACRO_SERDE_DERIVE")
	assert.Contains(t, out, ".dylib")
	assert.Contains(t, out, ".so")
}

func TestGenerateBuildScriptWithFeatures(t *testing.T) {
	g := mustParse(t, `{
		"version": 1,
		"units": [
			{
				"pkg_id": "pkg 0.1.0 (path+file:///ws)",
				"target": {"kind":["custom-build"],"crate_types":["bin"],"name":"build-script-build","src_path":"/ws/build.rs","edition":"2021"},
				"profile": {"name":"dev","opt_level":"0"},
				"features": [],
				"mode": "build",
				"dependencies": []
			},
			{
				"pkg_id": "pkg 0.1.0 (path+file:///ws)",
				"target": {"kind":["custom-build"],"crate_types":["bin"],"name":"build-script-build","src_path":"/ws/build.rs","edition":"2021"},
				"profile": {"name":"dev","opt_level":"0"},
				"features": ["serde"],
				"mode": "run-custom-build",
				"dependencies": [{"index":0,"extern_crate_name":"build_script_build"}]
			},
			{
				"pkg_id": "pkg 0.1.0 (path+file:///ws)",
				"target": {"kind":["lib"],"crate_types":["lib"],"name":"pkg","src_path":"/ws/src/lib.rs","edition":"2021"},
				"profile": {"name":"dev","opt_level":"0"},
				"features": ["serde"],
				"mode": "build",
				"dependencies": [{"index":1,"extern_crate_name":"build_script_build"}]
			}
		],
		"roots": [2]
	}`)

	cfg := DefaultConfig()
	cfg.WorkspaceRoot = "/ws"
	out, err := Generate(g, cfg)
	require.NoError(t, err)

	assert.Contains(t, out, "build-script-build")
	assert.Contains(t, out, "CARGO_FEATURE_SERDE=1")
	assert.Contains(t, out, "OUT_DIR=$out/out-dir")
	assert.Contains(t, out, "rustc-cfg")
	assert.Contains(t, out, "BUILD_SCRIPT_FLAGS")
}

func TestGenerateContentAddressedMode(t *testing.T) {
	g := mustParse(t, `{
		"version": 1,
		"units": [
			{
				"pkg_id": "test 0.1.0 (path+file:///ws)",
				"target": {"kind":["lib"],"crate_types":["lib"],"name":"test","src_path":"/ws/src/lib.rs","edition":"2021"},
				"profile": {"name":"dev","opt_level":"0"},
				"features": [],
				"mode": "build",
				"dependencies": []
			}
		],
		"roots": [0]
	}`)

	cfg := DefaultConfig()
	cfg.WorkspaceRoot = "/ws"
	cfg.ContentAddressed = true
	out, err := Generate(g, cfg)
	require.NoError(t, err)

	assert.Contains(t, out, "__contentAddressed = true")
	assert.Contains(t, out, `outputHashMode = "recursive"`)
	assert.Contains(t, out, `outputHashAlgo = "sha256"`)
	assert.Contains(t, out, "dontFixup = true")
}

func TestGenerateIdentityStableUnderFeaturePermutation(t *testing.T) {
	mk := func(featuresJSON string) *unitgraph.Graph {
		return mustParse(t, `{"version":1,"units":[{"pkg_id":"a 0.1.0 (path+file:///ws)","target":{"kind":["lib"],"crate_types":["lib"],"name":"a","src_path":"/ws/src/lib.rs","edition":"2021"},"profile":{"name":"dev","opt_level":"0"},"features":`+featuresJSON+`,"mode":"build","dependencies":[]}],"roots":[0]}`)
	}

	g1 := mk(`["a","b","c"]`)
	g2 := mk(`["c","a","b"]`)

	cfg := DefaultConfig()
	cfg.WorkspaceRoot = "/ws"
	out1, err := Generate(g1, cfg)
	require.NoError(t, err)
	out2, err := Generate(g2, cfg)
	require.NoError(t, err)

	assert.Equal(t, out1, out2)
}

func TestGenerateIsDeterministic(t *testing.T) {
	g := mustParse(t, `{"version":1,"units":[{"pkg_id":"a 0.1.0 (path+file:///ws)","target":{"kind":["lib"],"crate_types":["lib"],"name":"a","src_path":"/ws/src/lib.rs","edition":"2021"},"profile":{"name":"dev","opt_level":"0"},"features":[],"mode":"build","dependencies":[]}],"roots":[0]}`)
	cfg := DefaultConfig()
	cfg.WorkspaceRoot = "/ws"

	out1, err := Generate(g, cfg)
	require.NoError(t, err)
	out2, err := Generate(g, cfg)
	require.NoError(t, err)
	assert.Equal(t, out1, out2)
}
