package unitgraph

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
)

// IdentityHash computes the 16-hex-character fingerprint for u: the first
// eight bytes of SHA-256 over a canonical, NUL-delimited byte sequence
// built from every field that affects the compiled artifact, plus the
// caller-supplied toolchain hash (so changing the compiler invalidates
// every content-addressed output without touching any unit field).
//
// crypto/sha256 is the standard library's hash package, used here
// because the fingerprint format is specified down to the exact
// algorithm (SHA-256, truncated to 64 bits) rather than left to the
// implementation's discretion — there is no third-party substitute to
// reach for when the spec names the primitive directly.
func (u Unit) IdentityHash(toolchainHash string) string {
	h := sha256.New()
	write := func(s string) {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}

	write(u.PkgID)
	write(u.Target.Name)
	for _, ct := range u.Target.CrateTypes {
		write(ct)
	}
	write("\x00crate-types-end\x00")

	features := append([]string(nil), u.Features...)
	sort.Strings(features)
	for _, f := range features {
		write(f)
	}
	write("\x00features-end\x00")

	write(u.Profile.Name)
	write(u.Profile.OptLevel)
	write(u.Profile.LTO.String())
	write(u.Profile.DebugInfo.String())
	write(string(u.Profile.Panic))
	write(strconv.FormatBool(u.Profile.DebugAssertions))
	write(strconv.FormatBool(u.Profile.OverflowChecks))
	if u.Profile.CodegenUnits != nil {
		write(strconv.Itoa(*u.Profile.CodegenUnits))
	} else {
		write("")
	}
	write(string(u.Mode))
	write(u.Platform)
	write(toolchainHash)

	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:8])
}

// DerivationName is the "{target-name}-{version|0.0.0}-{identity-hash}"
// name the emitter uses for a unit's Nix attribute and store path.
func DerivationName(targetName, version, identityHash string) string {
	if version == "" {
		version = "0.0.0"
	}
	return targetName + "-" + version + "-" + identityHash
}
