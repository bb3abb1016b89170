package sourceloc

import "strings"

const registrySrcMarker = "/registry/src/"

// RemapSourcePath rewrites an absolute build-time path into a
// sandbox-relative Nix reference:
//  1. If srcPath falls under workspaceRoot, return "${var}/" + relative.
//  2. Else, if it matches the registry vendoring pattern
//     (".../registry/src/<index-hash>/<crate>-<version>/..."), skip the
//     opaque index-hash segment and return "${vendorDir}/...".
//  3. Otherwise return srcPath unchanged — a deliberate fallback; Nix's
//     sandbox will reject a path outside both the workspace and the
//     vendor directory, which is the point: the builder should have
//     caught such a case earlier, not silently synthesized a good path.
func RemapSourcePath(srcPath, workspaceRoot, varName string) string {
	if rel, ok := relativeTo(srcPath, workspaceRoot); ok {
		return "${" + varName + "}/" + rel
	}
	if idx := strings.Index(srcPath, registrySrcMarker); idx >= 0 {
		afterMarker := srcPath[idx+len(registrySrcMarker):]
		if slash := strings.IndexByte(afterMarker, '/'); slash >= 0 {
			return "${vendorDir}/" + afterMarker[slash+1:]
		}
	}
	return srcPath
}

// RemapManifestDir yields the sandbox-relative CARGO_MANIFEST_DIR for a
// unit: "${srcVar}[/relative]" for path sources, or
// "${vendorVar}/{name}-{version}" for registry/git sources.
func RemapManifestDir(pk PkgID, crateRoot, workspaceRoot, srcVar, vendorVar string) string {
	if pk.Source.Kind == SourcePath {
		if rel, ok := relativeTo(crateRoot, workspaceRoot); ok && rel != "" {
			return "${" + srcVar + "}/" + rel
		}
		return "${" + srcVar + "}"
	}
	return "${" + vendorVar + "}/" + pk.Name + "-" + pk.Version
}

func relativeTo(path, root string) (string, bool) {
	root = strings.TrimRight(root, "/")
	if root == "" {
		return "", false
	}
	if path == root {
		return "", true
	}
	prefix := root + "/"
	if strings.HasPrefix(path, prefix) {
		return path[len(prefix):], true
	}
	return "", false
}

// ExtractCrateRoot computes the crate-root directory (the directory a
// manifest lives in) from a unit's src_path: everything before the last
// "/src/" segment, or the file's parent directory when the path has no
// such segment (as for a top-level build.rs). Path, registry and git
// sources all go through the same rule.
func ExtractCrateRoot(srcPath string) string {
	if idx := strings.LastIndex(srcPath, "/src/"); idx >= 0 {
		return srcPath[:idx]
	}
	return parentDir(srcPath)
}

func parentDir(p string) string {
	idx := strings.LastIndexByte(p, '/')
	if idx < 0 {
		return p
	}
	return p[:idx]
}

// EntryPoint returns srcPath relative to crateRoot, the
// "path_to_src/lib.rs"-style entry point the data model specifies.
func EntryPoint(srcPath, crateRoot string) string {
	if rel, ok := relativeTo(srcPath, crateRoot); ok {
		return rel
	}
	return srcPath
}
