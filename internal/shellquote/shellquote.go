// Package shellquote implements the single escaping rule the build phases
// share: a shell token is wrapped in single quotes if it contains a
// space, a double quote, a dollar sign, or a single quote itself. Tabs
// and newlines do not trigger quoting.
package shellquote

import "strings"

// needsQuoting reports whether arg contains a character that is unsafe to
// leave bare in a POSIX shell word.
func needsQuoting(arg string) bool {
	return strings.ContainsAny(arg, " \"$'")
}

// Quote renders arg as a single shell word. Arguments with no special
// characters are returned unchanged; otherwise the result is wrapped in
// single quotes with any embedded single quote rewritten as `'\''`.
func Quote(arg string) string {
	if !needsQuoting(arg) {
		return arg
	}
	var b strings.Builder
	b.Grow(len(arg) + 2)
	b.WriteByte('\'')
	for _, r := range arg {
		if r == '\'' {
			b.WriteString(`'\''`)
		} else {
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// QuoteJoin renders args as a space-separated shell command line, quoting
// each token independently.
func QuoteJoin(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = Quote(a)
	}
	return strings.Join(quoted, " ")
}
