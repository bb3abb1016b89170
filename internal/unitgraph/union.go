package unitgraph

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/andrewgazelka/nix-cargo-unit/internal/diag"
)

// LTO is the link-time-optimization setting cargo resolved for a profile.
// It deserializes from either a boolean or one of the documented string
// aliases; any other JSON value is an UnknownVariant error.
type LTO int

const (
	LTOOff LTO = iota
	LTOThin
	LTOFat
)

func (l LTO) String() string {
	switch l {
	case LTOOff:
		return "off"
	case LTOThin:
		return "thin"
	case LTOFat:
		return "fat"
	default:
		return "off"
	}
}

func (l *LTO) UnmarshalJSON(data []byte) error {
	var asBool bool
	if err := json.Unmarshal(data, &asBool); err == nil {
		if asBool {
			*l = LTOFat
		} else {
			*l = LTOOff
		}
		return nil
	}
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		switch strings.ToLower(asString) {
		case "false", "off":
			*l = LTOOff
			return nil
		case "true", "fat":
			*l = LTOFat
			return nil
		case "thin":
			*l = LTOThin
			return nil
		default:
			return diag.New(diag.UnknownVariant, fmt.Sprintf("profile.lto=%q", asString))
		}
	}
	return diag.New(diag.UnknownVariant, fmt.Sprintf("profile.lto: unsupported JSON value %s", string(data)))
}

// DebugInfo is the debug-information level cargo resolved for a profile.
// It deserializes from an integer, a boolean, or one of the documented
// string aliases.
type DebugInfo int

const (
	DebugInfoNone DebugInfo = iota
	DebugInfoLineDirectivesOnly
	DebugInfoLineTablesOnly
	DebugInfoLimited
	DebugInfoFull
)

func (d DebugInfo) String() string {
	switch d {
	case DebugInfoNone:
		return "0"
	case DebugInfoLineDirectivesOnly:
		return "line-directives-only"
	case DebugInfoLineTablesOnly:
		return "line-tables-only"
	case DebugInfoLimited:
		return "1"
	case DebugInfoFull:
		return "2"
	default:
		return "0"
	}
}

func (d *DebugInfo) UnmarshalJSON(data []byte) error {
	var asInt int
	if err := json.Unmarshal(data, &asInt); err == nil {
		switch {
		case asInt <= 0:
			*d = DebugInfoNone
		case asInt == 1:
			*d = DebugInfoLimited
		default:
			*d = DebugInfoFull
		}
		return nil
	}
	var asBool bool
	if err := json.Unmarshal(data, &asBool); err == nil {
		if asBool {
			*d = DebugInfoFull
		} else {
			*d = DebugInfoNone
		}
		return nil
	}
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		switch strings.ToLower(asString) {
		case "none":
			*d = DebugInfoNone
			return nil
		case "line-directives-only":
			*d = DebugInfoLineDirectivesOnly
			return nil
		case "line-tables-only":
			*d = DebugInfoLineTablesOnly
			return nil
		case "limited":
			*d = DebugInfoLimited
			return nil
		case "full":
			*d = DebugInfoFull
			return nil
		default:
			return diag.New(diag.UnknownVariant, fmt.Sprintf("profile.debuginfo=%q", asString))
		}
	}
	return diag.New(diag.UnknownVariant, fmt.Sprintf("profile.debuginfo: unsupported JSON value %s", string(data)))
}

// Strip is the symbol-stripping setting cargo resolved for a profile. It
// deserializes from a boolean, a string, or the {"resolved": ...} object
// shape cargo's own JSON sometimes nests it in.
type Strip int

const (
	StripNone Strip = iota
	StripDebuginfo
	StripSymbols
)

func (s Strip) String() string {
	switch s {
	case StripNone:
		return "none"
	case StripDebuginfo:
		return "debuginfo"
	case StripSymbols:
		return "symbols"
	default:
		return "none"
	}
}

func (s *Strip) UnmarshalJSON(data []byte) error {
	var asBool bool
	if err := json.Unmarshal(data, &asBool); err == nil {
		if asBool {
			*s = StripSymbols
		} else {
			*s = StripNone
		}
		return nil
	}
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		return s.fromString(asString)
	}
	var asObject struct {
		Resolved json.RawMessage `json:"resolved"`
	}
	if err := json.Unmarshal(data, &asObject); err == nil && asObject.Resolved != nil {
		var resolvedString string
		if err := json.Unmarshal(asObject.Resolved, &resolvedString); err == nil {
			return s.fromString(resolvedString)
		}
		var named struct {
			Named string `json:"Named"`
		}
		if err := json.Unmarshal(asObject.Resolved, &named); err == nil && named.Named != "" {
			return s.fromString(named.Named)
		}
		return diag.New(diag.UnknownVariant, fmt.Sprintf("profile.strip.resolved: unsupported shape %s", string(asObject.Resolved)))
	}
	return diag.New(diag.UnknownVariant, fmt.Sprintf("profile.strip: unsupported JSON value %s", string(data)))
}

func (s *Strip) fromString(v string) error {
	switch strings.ToLower(v) {
	case "none", "false":
		*s = StripNone
		return nil
	case "debuginfo":
		*s = StripDebuginfo
		return nil
	case "symbols", "true":
		*s = StripSymbols
		return nil
	default:
		return diag.New(diag.UnknownVariant, fmt.Sprintf("profile.strip=%q", v))
	}
}
