package nixgen

import "strings"

// VersionParts is a semver triple with any pre-release/build suffix on
// the patch component stripped, matching the CARGO_PKG_VERSION_MAJOR /
// _MINOR / _PATCH environment variables cargo exports.
type VersionParts struct {
	Major, Minor, Patch string
}

// ParseVersionParts splits a version string into its three numeric
// components. Missing components default to "0"; a pre-release or build
// suffix on the patch component (after '-' or '+') is dropped.
func ParseVersionParts(version string) VersionParts {
	fields := strings.SplitN(version, ".", 3)
	vp := VersionParts{Major: "0", Minor: "0", Patch: "0"}
	if len(fields) > 0 && fields[0] != "" {
		vp.Major = fields[0]
	}
	if len(fields) > 1 {
		vp.Minor = fields[1]
	}
	if len(fields) > 2 {
		patch := fields[2]
		if idx := strings.IndexAny(patch, "-+"); idx >= 0 {
			patch = patch[:idx]
		}
		vp.Patch = patch
	}
	return vp
}
