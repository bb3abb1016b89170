// Command nix-cargo-unit compiles a cargo unit-graph JSON document into a
// Nix expression describing one derivation per compilation unit.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := newRootCommand().Execute(); err != nil {
		log.WithError(err).Error("nix-cargo-unit failed")
		os.Exit(1)
	}
}
