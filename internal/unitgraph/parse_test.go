package unitgraph

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewgazelka/nix-cargo-unit/internal/diag"
)

func minimalLibraryJSON() []byte {
	return []byte(`{
		"version": 1,
		"units": [
			{
				"pkg_id": "test 0.1.0 (path+file:///ws)",
				"target": { "kind": ["lib"], "crate_types": ["lib"], "name": "test",
					"src_path": "/ws/src/lib.rs", "edition": "2024" },
				"profile": { "name": "dev", "opt_level": "0" },
				"features": [],
				"mode": "build",
				"dependencies": [],
				"platform": null
			}
		],
		"roots": [0]
	}`)
}

func TestParseMinimalLibrary(t *testing.T) {
	g, err := Parse(minimalLibraryJSON())
	require.NoError(t, err)
	require.Len(t, g.Units, 1)
	u := g.Units[0]
	assert.Equal(t, "test", u.Target.Name)
	assert.Equal(t, "2024", u.Target.Edition)
	assert.True(t, u.IsLib())
	assert.False(t, u.IsBin())
	assert.Equal(t, LTOOff, u.Profile.LTO)
	assert.Equal(t, DebugInfoNone, u.Profile.DebugInfo)
	assert.Equal(t, StripNone, u.Profile.Strip)
	assert.Equal(t, PanicUnwind, u.Profile.Panic)
	assert.True(t, u.Target.Test)
}

func TestParseRejectsInvalidJSON(t *testing.T) {
	_, err := Parse([]byte("not json"))
	require.Error(t, err)
	assert.True(t, diag.Is(err, diag.InputMalformed))
}

func TestParseRejectsOutOfRangeRoot(t *testing.T) {
	data := []byte(`{"version":1,"units":[{"pkg_id":"a 0.1.0 (path+file:///ws)","target":{"kind":["lib"],"crate_types":["lib"],"name":"a","src_path":"/ws/src/lib.rs","edition":"2021"},"profile":{"name":"dev","opt_level":"0"},"features":[],"mode":"build","dependencies":[]}],"roots":[5]}`)
	_, err := Parse(data)
	require.Error(t, err)
	assert.True(t, diag.Is(err, diag.GraphInconsistent))
}

func TestParseRejectsOutOfRangeDependency(t *testing.T) {
	data := []byte(`{"version":1,"units":[{"pkg_id":"a 0.1.0 (path+file:///ws)","target":{"kind":["lib"],"crate_types":["lib"],"name":"a","src_path":"/ws/src/lib.rs","edition":"2021"},"profile":{"name":"dev","opt_level":"0"},"features":[],"mode":"build","dependencies":[{"index":9,"extern_crate_name":"missing"}]}],"roots":[0]}`)
	_, err := Parse(data)
	require.Error(t, err)
	assert.True(t, diag.Is(err, diag.GraphInconsistent))
}

func TestParseAccumulatesMultipleInconsistencies(t *testing.T) {
	data := []byte(`{"version":1,"units":[{"pkg_id":"a 0.1.0 (path+file:///ws)","target":{"kind":["lib"],"crate_types":["lib"],"name":"a","src_path":"/ws/src/lib.rs","edition":"2021"},"profile":{"name":"dev","opt_level":"0"},"features":[],"mode":"build","dependencies":[{"index":9,"extern_crate_name":"missing"}]}],"roots":[5]}`)
	_, err := Parse(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 graph inconsistencies found")
}

func TestParseRejectsUnknownLTOString(t *testing.T) {
	data := []byte(`{"version":1,"units":[{"pkg_id":"a 0.1.0 (path+file:///ws)","target":{"kind":["lib"],"crate_types":["lib"],"name":"a","src_path":"/ws/src/lib.rs","edition":"2021"},"profile":{"name":"dev","opt_level":"0","lto":"aggressive"},"features":[],"mode":"build","dependencies":[]}],"roots":[0]}`)
	_, err := Parse(data)
	require.Error(t, err)
	assert.True(t, diag.Is(err, diag.UnknownVariant))
}

func TestParseRejectsMissingBuildScriptSibling(t *testing.T) {
	data := []byte(`{"version":1,"units":[{"pkg_id":"a 0.1.0 (path+file:///ws)","target":{"kind":["lib"],"crate_types":["lib"],"name":"a","src_path":"/ws/src/lib.rs","edition":"2021"},"profile":{"name":"dev","opt_level":"0"},"features":[],"mode":"run-custom-build","dependencies":[]}],"roots":[0]}`)
	_, err := Parse(data)
	require.Error(t, err)
	assert.True(t, diag.Is(err, diag.GraphInconsistent))
}

func TestStripUnmarshalsResolvedObjectForm(t *testing.T) {
	data := []byte(`{"version":1,"units":[{"pkg_id":"a 0.1.0 (path+file:///ws)","target":{"kind":["lib"],"crate_types":["lib"],"name":"a","src_path":"/ws/src/lib.rs","edition":"2021"},"profile":{"name":"release","opt_level":"3","strip":{"resolved":"symbols"}},"features":[],"mode":"build","dependencies":[]}],"roots":[0]}`)
	g, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, StripSymbols, g.Units[0].Profile.Strip)
}

func TestDebugInfoUnmarshalsIntegerAndStringForms(t *testing.T) {
	mk := func(debuginfo string) *Graph {
		data := []byte(`{"version":1,"units":[{"pkg_id":"a 0.1.0 (path+file:///ws)","target":{"kind":["lib"],"crate_types":["lib"],"name":"a","src_path":"/ws/src/lib.rs","edition":"2021"},"profile":{"name":"dev","opt_level":"0","debuginfo":` + debuginfo + `},"features":[],"mode":"build","dependencies":[]}],"roots":[0]}`)
		g, err := Parse(data)
		require.NoError(t, err)
		return g
	}
	assert.Equal(t, DebugInfoNone, mk("0").Units[0].Profile.DebugInfo)
	assert.Equal(t, DebugInfoLimited, mk("1").Units[0].Profile.DebugInfo)
	assert.Equal(t, DebugInfoFull, mk("2").Units[0].Profile.DebugInfo)
	assert.Equal(t, DebugInfoFull, mk("true").Units[0].Profile.DebugInfo)
	assert.Equal(t, DebugInfoLineTablesOnly, mk(`"line-tables-only"`).Units[0].Profile.DebugInfo)
}

func TestIdentityHashDeterministic(t *testing.T) {
	g, err := Parse(minimalLibraryJSON())
	require.NoError(t, err)
	h1 := g.Units[0].IdentityHash("toolchain-1")
	h2 := g.Units[0].IdentityHash("toolchain-1")
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 16)
}

func TestIdentityHashFeatureOrderIndependent(t *testing.T) {
	base := unitWithFeatures(t, []string{"a", "b", "c"})
	permuted := unitWithFeatures(t, []string{"c", "a", "b"})
	assert.Equal(t, base.IdentityHash("tc"), permuted.IdentityHash("tc"))
}

func TestIdentityHashDiscriminatesOnFields(t *testing.T) {
	u := unitWithFeatures(t, []string{"a"})
	h := u.IdentityHash("tc")

	variants := []func(*Unit){
		func(u *Unit) { u.PkgID = "other 0.1.0 (path+file:///ws)" },
		func(u *Unit) { u.Target.CrateTypes = []string{"rlib"} },
		func(u *Unit) { u.Profile.OptLevel = "3" },
		func(u *Unit) { u.Profile.LTO = LTOFat },
		func(u *Unit) { u.Profile.DebugInfo = DebugInfoFull },
		func(u *Unit) { u.Profile.Panic = PanicAbort },
		func(u *Unit) { u.Profile.DebugAssertions = true },
		func(u *Unit) { u.Profile.OverflowChecks = true },
		func(u *Unit) { cu := 16; u.Profile.CodegenUnits = &cu },
		func(u *Unit) { u.Mode = ModeCheck },
		func(u *Unit) { u.Platform = "x86_64-unknown-linux-gnu" },
	}
	for i, mutate := range variants {
		mutated := u
		mutate(&mutated)
		got := mutated.IdentityHash("tc")
		assert.NotEqual(t, h, got, "variant %d should change identity hash", i)
	}

	assert.NotEqual(t, h, u.IdentityHash("different-toolchain"), "toolchain hash must discriminate")
}

func TestDerivationNameFormat(t *testing.T) {
	assert.Equal(t, "test-0.1.0-abcdef0123456789", DerivationName("test", "0.1.0", "abcdef0123456789"))
	assert.Equal(t, "test-0.0.0-abcdef0123456789", DerivationName("test", "", "abcdef0123456789"))
}

func TestSerializeParseRoundTrip(t *testing.T) {
	g, err := Parse(minimalLibraryJSON())
	require.NoError(t, err)

	data, err := Serialize(g)
	require.NoError(t, err)

	g2, err := Parse(data)
	require.NoError(t, err)

	if diff := cmp.Diff(g, g2); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func unitWithFeatures(t *testing.T, features []string) Unit {
	t.Helper()
	featJSON := `["` + features[0] + `"`
	for _, f := range features[1:] {
		featJSON += `,"` + f + `"`
	}
	featJSON += "]"
	data := []byte(`{"version":1,"units":[{"pkg_id":"a 0.1.0 (path+file:///ws)","target":{"kind":["lib"],"crate_types":["lib"],"name":"a","src_path":"/ws/src/lib.rs","edition":"2021"},"profile":{"name":"dev","opt_level":"0"},"features":` + featJSON + `,"mode":"build","dependencies":[]}],"roots":[0]}`)
	g, err := Parse(data)
	require.NoError(t, err)
	return g.Units[0]
}
