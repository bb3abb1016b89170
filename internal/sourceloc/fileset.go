package sourceloc

import "sort"

// FilesetHint names the crate root a path-sourced unit needs from the
// workspace tree, relative to the workspace root. The emitter collects
// one per distinct path-source crate root in the graph and renders them
// into the `srcFileset` convenience attribute (a `lib.fileset.toSource`
// expression over `lib.fileset.unions`) so a caller may scope Nix's source input to exactly what
// the graph touches instead of the whole workspace.
type FilesetHint struct {
	RelativeCrateRoot string
}

// CollectFilesetHints deduplicates and sorts, relative to workspaceRoot,
// every entry of crateRoots that lies under workspaceRoot (entries outside
// it are dropped), producing a stable, testable ordering for srcFileset
// rendering.
func CollectFilesetHints(workspaceRoot string, crateRoots []string) []FilesetHint {
	seen := make(map[string]bool)
	var rels []string
	for _, cr := range crateRoots {
		rel, ok := relativeTo(cr, workspaceRoot)
		if !ok {
			continue
		}
		if seen[rel] {
			continue
		}
		seen[rel] = true
		rels = append(rels, rel)
	}
	sort.Strings(rels)

	hints := make([]FilesetHint, len(rels))
	for i, rel := range rels {
		hints[i] = FilesetHint{RelativeCrateRoot: rel}
	}
	return hints
}

// ToFilesetExpr renders a `lib.fileset.toSource` Nix expression rooted at
// the `src` path whose fileset is a `lib.fileset.unions [...]` over hints.
// An empty hint set renders
// the bare `src` so callers that never touch path sources still get a
// usable attribute.
func ToFilesetExpr(hints []FilesetHint, srcVar string) string {
	if len(hints) == 0 {
		return srcVar
	}
	expr := "lib.fileset.toSource {\n  root = " + srcVar + ";\n  fileset = lib.fileset.unions [\n"
	for _, h := range hints {
		expr += "    " + srcVar + " + \"/" + h.RelativeCrateRoot + "\"\n"
	}
	expr += "  ];\n}"
	return expr
}
