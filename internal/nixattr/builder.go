// Package nixattr renders Nix attribute sets with the two escaping regimes
// the emitted expression needs: single-line string escaping and multiline
// (''...'') escaping. The two regimes live in separate functions (see
// escape.go) so neither leaks into the other, and the builder here only
// ever calls the one that matches the value kind it is rendering.
package nixattr

import (
	"strconv"
	"strings"
)

const indentUnit = "  "

// value is anything the builder knows how to render at a given indent
// depth. depth is the indent level of the line the value's first
// character appears on; continuation lines add to it themselves.
type value interface {
	render(depth int) string
}

// Set is an ordered Nix attribute set under construction. Attributes
// render in insertion order because the output is diffed in tests and by
// humans reviewing generated derivations; Nix itself does not care about
// attribute order, but this package's callers do.
type Set struct {
	keys   []string
	values map[string]value
}

// New returns an empty attribute set.
func New() *Set {
	return &Set{values: make(map[string]value)}
}

func (s *Set) put(key string, v value) *Set {
	if _, exists := s.values[key]; !exists {
		s.keys = append(s.keys, key)
	}
	s.values[key] = v
	return s
}

// String adds a quoted, escaped string attribute.
func (s *Set) String(key, val string) *Set {
	return s.put(key, stringVal(val))
}

// Expr adds a raw Nix expression attribute, rendered byte-for-byte.
func (s *Set) Expr(key, expr string) *Set {
	return s.put(key, exprVal(expr))
}

// Bool adds a boolean attribute.
func (s *Set) Bool(key string, val bool) *Set {
	return s.put(key, boolVal(val))
}

// Int adds an integer attribute.
func (s *Set) Int(key string, val int) *Set {
	return s.put(key, intVal(val))
}

// StringList adds a list-of-strings attribute, each element quoted and
// escaped independently.
func (s *Set) StringList(key string, vals []string) *Set {
	return s.put(key, stringListVal(vals))
}

// ExprList adds a list-of-expressions attribute, each element rendered
// raw.
func (s *Set) ExprList(key string, vals []string) *Set {
	return s.put(key, exprListVal(vals))
}

// Multiline adds an indented-string (''...'') attribute whose body is
// escaped so that literal '' and ${ sequences in text do not terminate
// the string or trigger interpolation.
func (s *Set) Multiline(key, text string) *Set {
	return s.put(key, multilineVal{text: EscapeMultiline(text)})
}

// MultilineRaw adds an indented-string attribute whose body is emitted
// unescaped, for callers that intend literal ${...} interpolation inside
// the generated script.
func (s *Set) MultilineRaw(key, text string) *Set {
	return s.put(key, multilineVal{text: text})
}

// Nested adds a child attribute set.
func (s *Set) Nested(key string, child *Set) *Set {
	return s.put(key, child)
}

// AddContentAddressed appends the fixed attribute block that marks a
// derivation content-addressed: __contentAddressed, outputHashMode,
// outputHashAlgo, and dontFixup.
func (s *Set) AddContentAddressed() *Set {
	return s.Bool("__contentAddressed", true).
		String("outputHashMode", "recursive").
		String("outputHashAlgo", "sha256").
		Bool("dontFixup", true)
}

// Render produces the Nix source text for the set at the given indent
// depth (0 = top level).
func (s *Set) Render(depth int) string {
	return s.render(depth)
}

func (s *Set) render(depth int) string {
	pad := strings.Repeat(indentUnit, depth)
	inner := strings.Repeat(indentUnit, depth+1)
	if len(s.keys) == 0 {
		return "{ }"
	}
	var b strings.Builder
	b.WriteString("{\n")
	for _, k := range s.keys {
		b.WriteString(inner)
		b.WriteString(attrKey(k))
		b.WriteString(" = ")
		b.WriteString(s.values[k].render(depth + 1))
		b.WriteString(";\n")
	}
	b.WriteString(pad)
	b.WriteString("}")
	return b.String()
}

// attrKey quotes an attribute name if it is not a bare Nix identifier
// (this matters for names like derivation strings used as map keys, e.g.
// "dep-0.1.0-abcdef0123456789").
func attrKey(k string) string {
	if isBareIdent(k) {
		return k
	}
	return `"` + EscapeString(k) + `"`
}

func isBareIdent(k string) bool {
	if k == "" {
		return false
	}
	for i, r := range k {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9', r == '\'', r == '-':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

type stringVal string

func (v stringVal) render(int) string { return `"` + EscapeString(string(v)) + `"` }

type exprVal string

func (v exprVal) render(int) string { return string(v) }

type boolVal bool

func (v boolVal) render(int) string {
	if v {
		return "true"
	}
	return "false"
}

type intVal int

func (v intVal) render(int) string { return strconv.Itoa(int(v)) }

type stringListVal []string

func (v stringListVal) render(depth int) string { return renderList(depth, []string(v), true) }

type exprListVal []string

func (v exprListVal) render(depth int) string { return renderList(depth, []string(v), false) }

func renderList(depth int, items []string, quote bool) string {
	if len(items) == 0 {
		return "[ ]"
	}
	pad := strings.Repeat(indentUnit, depth)
	inner := strings.Repeat(indentUnit, depth+1)
	var b strings.Builder
	b.WriteString("[\n")
	for _, it := range items {
		b.WriteString(inner)
		if quote {
			b.WriteString(`"` + EscapeString(it) + `"`)
		} else {
			b.WriteString(it)
		}
		b.WriteString("\n")
	}
	b.WriteString(pad)
	b.WriteString("]")
	return b.String()
}

// multilineVal renders a Nix indented string. Continuation lines are
// indented two extra columns past the attribute's own depth, per the
// rendering contract.
type multilineVal struct {
	text string
}

func (v multilineVal) render(depth int) string {
	pad := strings.Repeat(indentUnit, depth) + indentUnit
	lines := strings.Split(v.text, "\n")
	var b strings.Builder
	b.WriteString("''\n")
	for _, line := range lines {
		if line == "" {
			b.WriteString("\n")
			continue
		}
		b.WriteString(pad)
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(strings.Repeat(indentUnit, depth))
	b.WriteString("''")
	return b.String()
}
