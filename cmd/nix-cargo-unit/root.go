package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var log = logrus.New()

var rootFlags struct {
	workspaceRoot    string
	hostPlatform     string
	targetPlatform   string
	toolchainHash    string
	contentAddressed bool
	crossCompiling   bool
	lintCompat       bool
	configPath       string
	verbose          bool
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "nix-cargo-unit",
		Short:         "Compile a cargo unit graph into a Nix derivation tree",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if rootFlags.verbose {
				log.SetLevel(logrus.DebugLevel)
			}
		},
	}

	cmd.PersistentFlags().StringVar(&rootFlags.workspaceRoot, "workspace-root", ".", "workspace root every path-sourced unit is remapped relative to")
	cmd.PersistentFlags().StringVar(&rootFlags.hostPlatform, "host-platform", "", "host platform triple (defaults to target-platform)")
	cmd.PersistentFlags().StringVar(&rootFlags.targetPlatform, "target-platform", "", "target platform triple")
	cmd.PersistentFlags().StringVar(&rootFlags.toolchainHash, "toolchain-hash", "", "extra identity input distinguishing compiler builds")
	cmd.PersistentFlags().BoolVar(&rootFlags.contentAddressed, "content-addressed", false, "emit content-addressed derivations")
	cmd.PersistentFlags().BoolVar(&rootFlags.crossCompiling, "cross-compiling", false, "split host/target units across hostRustToolchain/rustToolchain")
	cmd.PersistentFlags().BoolVar(&rootFlags.lintCompat, "lint-compat", true, "emit the mismatched_lifetime_syntaxes lint-compat allow")
	cmd.PersistentFlags().StringVar(&rootFlags.configPath, "config", ".nix-cargo-unit.toml", "optional config file; missing file is not an error")
	cmd.PersistentFlags().BoolVarP(&rootFlags.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newEmitCommand())
	cmd.AddCommand(newValidateCommand())

	return cmd
}

// explicitFlags returns the set of persistent flag names the caller
// passed on the command line, so config.Resolve knows which flag values
// must win over the config file rather than being silently replaced by
// it.
func explicitFlags(cmd *cobra.Command) map[string]bool {
	explicit := make(map[string]bool)
	cmd.Flags().Visit(func(f *pflag.Flag) {
		explicit[f.Name] = true
	})
	return explicit
}
