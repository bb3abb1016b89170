package nixattr

import "strings"

// EscapeString escapes s for placement inside a single-line Nix string
// literal ("..."). Every dollar sign is escaped too, even when it is not
// followed by `{`, because the builder cannot know whether a later edit
// will introduce the brace; escaping unconditionally is cheap and safe.
func EscapeString(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '$':
			b.WriteString(`\$`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// EscapeMultiline escapes s for placement inside a Nix indented string
// (''...''). Only the two sentinels that would otherwise terminate the
// string or trigger interpolation are rewritten; everything else,
// including literal backslashes and quote characters, passes through
// unchanged because '' strings do not treat them specially.
func EscapeMultiline(s string) string {
	s = strings.ReplaceAll(s, "''", "'''")
	s = strings.ReplaceAll(s, "${", "''${")
	return s
}
