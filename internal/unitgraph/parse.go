package unitgraph

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/andrewgazelka/nix-cargo-unit/internal/diag"
	"github.com/hashicorp/go-multierror"
)

// Parse decodes raw unit-graph JSON into a frozen Graph, validating every
// structural invariant listed in the data model: in-range roots, in-range
// non-self-referential dependency indices, and a compile sibling for
// every run-custom-build unit. Parse errors are fatal and never produce a
// partial graph; a non-nil error means the returned Graph is the zero
// value.
func Parse(data []byte) (*Graph, error) {
	var wire graphWire
	if err := json.Unmarshal(data, &wire); err != nil {
		var de *diag.Error
		if errors.As(err, &de) {
			return nil, de
		}
		return nil, diag.Wrap(diag.InputMalformed, "unit graph", err)
	}

	units := make([]Unit, len(wire.Units))
	for i, uw := range wire.Units {
		u, err := fromWire(uw)
		if err != nil {
			return nil, err
		}
		u.Index = i
		units[i] = u
	}

	g := &Graph{Version: wire.Version, Units: units, Roots: wire.Roots}
	if err := Validate(g); err != nil {
		return nil, err
	}
	return g, nil
}

func fromWire(uw unitWire) (Unit, error) {
	mode, err := parseMode(uw.Mode)
	if err != nil {
		return Unit{}, err
	}

	target := Target{
		Kind:       uw.Target.Kind,
		CrateTypes: uw.Target.CrateTypes,
		Name:       uw.Target.Name,
		SrcPath:    uw.Target.SrcPath,
		Edition:    uw.Target.Edition,
		Test:       boolDefault(uw.Target.Test, true),
		Doctest:    boolDefault(uw.Target.Doctest, true),
		Doc:        boolDefault(uw.Target.Doc, true),
	}

	profile, err := profileFromWire(uw.Profile)
	if err != nil {
		return Unit{}, err
	}

	deps := make([]Dependency, len(uw.Dependencies))
	for i, dw := range uw.Dependencies {
		deps[i] = Dependency{
			Index:           dw.Index,
			ExternCrateName: dw.ExternCrateName,
			Public:          boolDefault(dw.Public, false),
			NoPrelude:       boolDefault(dw.NoPrelude, false),
		}
	}

	platform := ""
	if uw.Platform != nil {
		platform = *uw.Platform
	}

	return Unit{
		PkgID:        uw.PkgID,
		Target:       target,
		Profile:      profile,
		Features:     append([]string(nil), uw.Features...),
		Mode:         mode,
		Dependencies: deps,
		Platform:     platform,
		IsStd:        boolDefault(uw.IsStd, false),
	}, nil
}

func profileFromWire(pw profileWire) (Profile, error) {
	panicStrategy, err := parsePanic(pw.Panic)
	if err != nil {
		return Profile{}, err
	}
	p := Profile{
		Name:            pw.Name,
		OptLevel:        pw.OptLevel,
		CodegenUnits:    pw.CodegenUnits,
		DebugAssertions: boolDefault(pw.DebugAssertions, false),
		OverflowChecks:  boolDefault(pw.OverflowChecks, false),
		RPath:           boolDefault(pw.RPath, false),
		Incremental:     boolDefault(pw.Incremental, false),
		Panic:           panicStrategy,
	}
	if pw.LTO != nil {
		p.LTO = *pw.LTO
	} else {
		p.LTO = LTOOff
	}
	if pw.DebugInfo != nil {
		p.DebugInfo = *pw.DebugInfo
	} else {
		p.DebugInfo = DebugInfoNone
	}
	if pw.Strip != nil {
		p.Strip = *pw.Strip
	} else {
		p.Strip = StripNone
	}
	if pw.SplitDebuginfo != nil {
		p.SplitDebuginfo = *pw.SplitDebuginfo
	}
	return p, nil
}

func parseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeBuild, ModeCheck, ModeTest, ModeDoc, ModeDoctest, ModeRunCustomBuild:
		return Mode(s), nil
	default:
		return "", diag.New(diag.UnknownVariant, fmt.Sprintf("unit.mode=%q", s))
	}
}

func parsePanic(s *string) (PanicStrategy, error) {
	if s == nil {
		return PanicUnwind, nil
	}
	switch PanicStrategy(*s) {
	case PanicUnwind, PanicAbort:
		return PanicStrategy(*s), nil
	default:
		return "", diag.New(diag.UnknownVariant, fmt.Sprintf("profile.panic=%q", *s))
	}
}

func boolDefault(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

// Validate checks the structural invariants of a Graph that Parse cannot
// check while decoding a single unit in isolation: root indices,
// dependency indices, and build-script compile/run pairing. Every
// violation found is accumulated into a single multierror so a caller
// (the validate CLI subcommand) can report them all in one pass, rather
// than fixing one and re-running to discover the next.
func Validate(g *Graph) error {
	var result *multierror.Error

	for _, r := range g.Roots {
		if r < 0 || r >= len(g.Units) {
			result = multierror.Append(result, diag.New(diag.GraphInconsistent, fmt.Sprintf("root index %d out of range [0,%d)", r, len(g.Units))))
		}
	}

	for _, u := range g.Units {
		for _, d := range u.Dependencies {
			if d.Index < 0 || d.Index >= len(g.Units) {
				result = multierror.Append(result, diag.New(diag.GraphInconsistent, fmt.Sprintf("unit %d dependency index %d out of range", u.Index, d.Index)))
				continue
			}
			if d.Index == u.Index {
				result = multierror.Append(result, diag.New(diag.GraphInconsistent, fmt.Sprintf("unit %d depends on itself", u.Index)))
			}
		}
		if u.Mode == ModeRunCustomBuild {
			if _, err := g.BuildScriptCompileSibling(u.Index); err != nil {
				result = multierror.Append(result, err)
			}
		}
	}

	if result != nil {
		result.ErrorFormat = formatMultierror
		return result
	}
	return nil
}

func missingCompileSibling(runIndex int) error {
	return diag.New(diag.GraphInconsistent, fmt.Sprintf("unit %d (run-custom-build) has no compile sibling", runIndex))
}

func formatMultierror(errs []error) string {
	if len(errs) == 1 {
		return errs[0].Error()
	}
	msg := fmt.Sprintf("%d graph inconsistencies found:", len(errs))
	for _, e := range errs {
		msg += "\n  - " + e.Error()
	}
	return msg
}
