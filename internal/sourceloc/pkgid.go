// Package sourceloc parses cargo's opaque pkg_id strings, classifies the
// embedded source into path/registry/git, and remaps absolute build-time
// paths into sandbox-relative Nix references.
package sourceloc

import (
	"fmt"
	"strings"

	"github.com/andrewgazelka/nix-cargo-unit/internal/diag"
)

// SourceKind discriminates the three places a crate's source can live.
type SourceKind int

const (
	SourcePath SourceKind = iota
	SourceRegistry
	SourceGit
)

// Source is the classified form of a pkg_id's source substring.
type Source struct {
	Kind      SourceKind
	Path      string // SourcePath: absolute filesystem path
	URL       string // SourceRegistry/SourceGit: the URL before query/fragment
	Reference string // SourceGit: rev|branch|tag value, from the first recognized key
	Commit    string // SourceGit: the #commit fragment, if present
}

// PkgID is the parsed form of a unit's pkg_id field: the crate name,
// version, and classified source.
type PkgID struct {
	Name    string
	Version string
	Source  Source
}

// ParsePkgID accepts both historical pkg_id grammars, trying the newer
// "source#name@version" form first because it is unambiguous, falling
// back to the older "name version (source)" form only if the first
// attempt fails to match.
func ParsePkgID(raw string) (PkgID, error) {
	if pk, ok := parseNewForm(raw); ok {
		source, err := ParseSource(pk.Source.rawSource)
		if err != nil {
			return PkgID{}, err
		}
		return PkgID{Name: pk.Name, Version: pk.Version, Source: source}, nil
	}
	if pk, ok := parseOldForm(raw); ok {
		source, err := ParseSource(pk.Source.rawSource)
		if err != nil {
			return PkgID{}, err
		}
		return PkgID{Name: pk.Name, Version: pk.Version, Source: source}, nil
	}
	return PkgID{}, diag.New(diag.InputMalformed, fmt.Sprintf("pkg_id=%q: matches neither accepted grammar", raw))
}

type rawParts struct {
	Name, Version string
	Source        struct{ rawSource string }
}

// parseNewForm handles "SOURCE#NAME@VERSION" and the git-only-version
// variant "SOURCE#VERSION" (where the crate name must be recovered from
// the source URL's last path segment).
func parseNewForm(raw string) (rawParts, bool) {
	hashIdx := strings.Index(raw, "#")
	if hashIdx < 0 {
		return rawParts{}, false
	}
	sourcePart := raw[:hashIdx]
	rest := raw[hashIdx+1:]
	if !looksLikeSource(sourcePart) {
		return rawParts{}, false
	}

	var p rawParts
	p.Source.rawSource = sourcePart

	if atIdx := strings.Index(rest, "@"); atIdx >= 0 {
		p.Name = rest[:atIdx]
		p.Version = rest[atIdx+1:]
		return p, true
	}

	// git-only-version form: rest is just the version; recover the name
	// from the trailing path segment of the source URL.
	p.Version = rest
	p.Name = lastPathSegment(sourcePart)
	return p, true
}

// parseOldForm handles "NAME VERSION (SOURCE)".
func parseOldForm(raw string) (rawParts, bool) {
	openParen := strings.LastIndex(raw, "(")
	if openParen < 0 || !strings.HasSuffix(raw, ")") {
		return rawParts{}, false
	}
	head := strings.TrimSpace(raw[:openParen])
	source := raw[openParen+1 : len(raw)-1]
	fields := strings.SplitN(head, " ", 2)
	if len(fields) != 2 {
		return rawParts{}, false
	}
	var p rawParts
	p.Name, p.Version = fields[0], fields[1]
	p.Source.rawSource = source
	return p, true
}

func looksLikeSource(s string) bool {
	return strings.HasPrefix(s, "path+") || strings.HasPrefix(s, "registry+") || strings.HasPrefix(s, "git+")
}

func lastPathSegment(url string) string {
	url = strings.TrimRight(url, "/")
	idx := strings.LastIndexByte(url, '/')
	if idx < 0 {
		return url
	}
	return url[idx+1:]
}

// ParseSource classifies a SOURCE substring per the grammar:
// path+file://ABS | registry+URL | git+URL[?rev=R|?branch=B|?tag=T][#COMMIT].
func ParseSource(raw string) (Source, error) {
	switch {
	case strings.HasPrefix(raw, "path+file://"):
		return Source{Kind: SourcePath, Path: strings.TrimPrefix(raw, "path+file://")}, nil
	case strings.HasPrefix(raw, "registry+"):
		return Source{Kind: SourceRegistry, URL: strings.TrimPrefix(raw, "registry+")}, nil
	case strings.HasPrefix(raw, "git+"):
		return parseGitSource(strings.TrimPrefix(raw, "git+"))
	default:
		return Source{}, diag.New(diag.InputMalformed, fmt.Sprintf("pkg_id source=%q: unrecognized scheme", raw))
	}
}

func parseGitSource(rest string) (Source, error) {
	s := Source{Kind: SourceGit}

	if hashIdx := strings.LastIndex(rest, "#"); hashIdx >= 0 {
		s.Commit = rest[hashIdx+1:]
		rest = rest[:hashIdx]
	}

	if qIdx := strings.Index(rest, "?"); qIdx >= 0 {
		query := rest[qIdx+1:]
		rest = rest[:qIdx]
		for _, key := range []string{"rev", "branch", "tag"} {
			if v, ok := queryValue(query, key); ok {
				s.Reference = v
				break
			}
		}
	}

	s.URL = rest
	return s, nil
}

func queryValue(query, key string) (string, bool) {
	for _, pair := range strings.Split(query, "&") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) == 2 && kv[0] == key {
			return kv[1], true
		}
	}
	return "", false
}
