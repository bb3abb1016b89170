package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/andrewgazelka/nix-cargo-unit/internal/config"
	"github.com/andrewgazelka/nix-cargo-unit/internal/nixgen"
	"github.com/andrewgazelka/nix-cargo-unit/internal/unitgraph"
)

func newEmitCommand() *cobra.Command {
	var inputPath, outputPath, format string

	cmd := &cobra.Command{
		Use:   "emit",
		Short: "Compile a unit graph into a Nix expression",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(inputPath)
			if err != nil {
				return err
			}

			graph, err := unitgraph.Parse(data)
			if err != nil {
				return err
			}

			file, err := config.Load(rootFlags.configPath)
			if err != nil {
				return err
			}
			cfg := config.Resolve(file, flagsToConfig(), explicitFlags(cmd))

			var out string
			switch format {
			case "json":
				reserialized, err := unitgraph.Serialize(graph)
				if err != nil {
					return err
				}
				pretty, err := prettyJSON(reserialized)
				if err != nil {
					return err
				}
				out = pretty
			case "nix", "":
				out, err = nixgen.Generate(graph, cfg)
				if err != nil {
					return err
				}
			default:
				return errUnknownFormat(format)
			}

			return writeOutput(outputPath, out)
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "read unit-graph JSON from this file instead of stdin")
	cmd.Flags().StringVar(&outputPath, "output", "", "write output to this file instead of stdout")
	cmd.Flags().StringVar(&format, "format", "nix", "output format: nix or json")

	return cmd
}

func flagsToConfig() nixgen.Config {
	return nixgen.Config{
		WorkspaceRoot:     rootFlags.workspaceRoot,
		HostPlatform:      rootFlags.hostPlatform,
		TargetPlatform:    rootFlags.targetPlatform,
		ToolchainHash:     rootFlags.toolchainHash,
		ContentAddressed:  rootFlags.contentAddressed,
		CrossCompiling:    rootFlags.crossCompiling,
		LintCompat:        rootFlags.lintCompat,
	}
}

func readInput(path string) ([]byte, error) {
	if path == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func writeOutput(path, content string) error {
	if path == "" {
		_, err := os.Stdout.WriteString(content)
		return err
	}
	return os.WriteFile(path, []byte(content), 0644)
}

func prettyJSON(data []byte) (string, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return "", err
	}
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(pretty) + "\n", nil
}

func errUnknownFormat(format string) error {
	return &unknownFormatError{format: format}
}

type unknownFormatError struct{ format string }

func (e *unknownFormatError) Error() string {
	return "unknown --format " + e.format + ", expected nix or json"
}
