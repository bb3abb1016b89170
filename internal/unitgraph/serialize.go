package unitgraph

import "encoding/json"

// Serialize re-renders a Graph as unit-graph JSON in the same schema
// Parse accepts, so that parse(serialize(g)) reproduces g. It is mainly
// exercised by the "json" output format and by round-trip tests.
func Serialize(g *Graph) ([]byte, error) {
	wire := graphWire{Version: g.Version, Roots: g.Roots}
	wire.Units = make([]unitWire, len(g.Units))
	for i, u := range g.Units {
		wire.Units[i] = toWire(u)
	}
	return json.Marshal(wire)
}

func toWire(u Unit) unitWire {
	deps := make([]dependencyWire, len(u.Dependencies))
	for i, d := range u.Dependencies {
		pub, noPrelude := d.Public, d.NoPrelude
		deps[i] = dependencyWire{
			Index:           d.Index,
			ExternCrateName: d.ExternCrateName,
			Public:          &pub,
			NoPrelude:       &noPrelude,
		}
	}

	test, doctest, doc := u.Target.Test, u.Target.Doctest, u.Target.Doc
	targetW := targetWire{
		Kind:       u.Target.Kind,
		CrateTypes: u.Target.CrateTypes,
		Name:       u.Target.Name,
		SrcPath:    u.Target.SrcPath,
		Edition:    u.Target.Edition,
		Test:       &test,
		Doctest:    &doctest,
		Doc:        &doc,
	}

	lto, debugInfo, strip := u.Profile.LTO, u.Profile.DebugInfo, u.Profile.Strip
	debugAssertions, overflowChecks := u.Profile.DebugAssertions, u.Profile.OverflowChecks
	rpath, incremental := u.Profile.RPath, u.Profile.Incremental
	panicStr := string(u.Profile.Panic)
	profileW := profileWire{
		Name:            u.Profile.Name,
		OptLevel:        u.Profile.OptLevel,
		LTO:             &lto,
		CodegenUnits:    u.Profile.CodegenUnits,
		DebugInfo:       &debugInfo,
		DebugAssertions: &debugAssertions,
		OverflowChecks:  &overflowChecks,
		RPath:           &rpath,
		Incremental:     &incremental,
		Panic:           &panicStr,
		Strip:           &strip,
	}
	if u.Profile.SplitDebuginfo != "" {
		sd := u.Profile.SplitDebuginfo
		profileW.SplitDebuginfo = &sd
	}

	var platform *string
	if u.Platform != "" {
		platform = &u.Platform
	}
	isStd := u.IsStd

	return unitWire{
		PkgID:        u.PkgID,
		Target:       targetW,
		Profile:      profileW,
		Features:     u.Features,
		Mode:         string(u.Mode),
		Dependencies: deps,
		Platform:     platform,
		IsStd:        &isStd,
	}
}

// MarshalJSON renders LTO as its lowercase string alias, so Serialize
// output matches the documented string form rather than a raw integer.
func (l LTO) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// MarshalJSON renders DebugInfo as its canonical string form for the
// non-numeric variants, and as an integer for None/Limited/Full so the
// common case stays compact.
func (d DebugInfo) MarshalJSON() ([]byte, error) {
	switch d {
	case DebugInfoNone:
		return json.Marshal(0)
	case DebugInfoLimited:
		return json.Marshal(1)
	case DebugInfoFull:
		return json.Marshal(2)
	default:
		return json.Marshal(d.String())
	}
}

// MarshalJSON renders Strip as its lowercase string alias.
func (s Strip) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}
