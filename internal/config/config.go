// Package config loads optional on-disk defaults for the emitter: a
// .nix-cargo-unit.toml file contributes fallback values for anything the
// caller did not pass explicitly on the command line.
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/andrewgazelka/nix-cargo-unit/internal/diag"
	"github.com/andrewgazelka/nix-cargo-unit/internal/nixgen"
)

// File is the on-disk shape of .nix-cargo-unit.toml. Every field is
// optional; an absent field leaves the corresponding nixgen.Config field
// at its flag-resolved value.
type File struct {
	WorkspaceRoot     string `toml:"workspace_root"`
	HostPlatform      string `toml:"host_platform"`
	TargetPlatform    string `toml:"target_platform"`
	ToolchainHash     string `toml:"toolchain_hash"`
	ContentAddressed  *bool  `toml:"content_addressed"`
	CrossCompiling    *bool  `toml:"cross_compiling"`
	LintCompat        *bool  `toml:"lint_compat"`
}

// Load reads and decodes a config file at path. A missing file is not an
// error — it returns the zero File, which contributes no overrides.
func Load(path string) (File, error) {
	if path == "" {
		return File{}, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return File{}, nil
	}

	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return File{}, diag.Wrap(diag.InputMalformed, path, err)
	}
	return f, nil
}

// Resolve builds the final emitter configuration: flags values win where
// the caller explicitly set them (tracked in explicit, keyed by flag
// name); otherwise a value from the config file is used; otherwise the
// flags struct's own zero/default value stands, since cobra already
// populated it with each flag's declared default.
func Resolve(file File, flags nixgen.Config, explicit map[string]bool) nixgen.Config {
	resolved := flags

	if !explicit["workspace-root"] {
		resolved.WorkspaceRoot = stringOr(file.WorkspaceRoot, resolved.WorkspaceRoot)
	}
	if !explicit["host-platform"] {
		resolved.HostPlatform = stringOr(file.HostPlatform, resolved.HostPlatform)
	}
	if !explicit["target-platform"] {
		resolved.TargetPlatform = stringOr(file.TargetPlatform, resolved.TargetPlatform)
	}
	if !explicit["toolchain-hash"] {
		resolved.ToolchainHash = stringOr(file.ToolchainHash, resolved.ToolchainHash)
	}
	if !explicit["content-addressed"] {
		resolved.ContentAddressed = boolOr(file.ContentAddressed, resolved.ContentAddressed)
	}
	if !explicit["cross-compiling"] {
		resolved.CrossCompiling = boolOr(file.CrossCompiling, resolved.CrossCompiling)
	}
	if !explicit["lint-compat"] {
		resolved.LintCompat = boolOr(file.LintCompat, resolved.LintCompat)
	}

	return resolved
}

// boolOr returns override if set, else fallback.
func boolOr(override *bool, fallback bool) bool {
	if override != nil {
		return *override
	}
	return fallback
}

// stringOr returns override if non-empty, else fallback.
func stringOr(override, fallback string) string {
	if override != "" {
		return override
	}
	return fallback
}
