package procmacro

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLibraryExtension(t *testing.T) {
	assert.Equal(t, "dylib", LibraryExtension("aarch64-apple-darwin"))
	assert.Equal(t, "dylib", LibraryExtension("x86_64-apple-ios"))
	assert.Equal(t, "dll", LibraryExtension("x86_64-pc-windows-msvc"))
	assert.Equal(t, "so", LibraryExtension("x86_64-unknown-linux-gnu"))
}

func TestToolchainVarNativeAlwaysRustToolchain(t *testing.T) {
	assert.Equal(t, "rustToolchain", ToolchainVar(true, false))
	assert.Equal(t, "rustToolchain", ToolchainVar(false, false))
}

func TestToolchainVarCrossCompilingSplitsHostAndTarget(t *testing.T) {
	assert.Equal(t, "hostRustToolchain", ToolchainVar(true, true))
	assert.Equal(t, "rustToolchain", ToolchainVar(false, true))
}
