// Package main implements the cprep CLI, the build-preparation rewriter for
// C sources: it resolves IS_ENABLED flags and strips unwanted functions and
// state table entries.
package main

import (
	"os"

	"github.com/l3aro/cprep/cmd/cprep/commands"
)

var version = "dev"

func main() {
	root := commands.NewRootCmd()
	root.Version = version
	root.SetVersionTemplate(`cprep version {{.Version}}
`)

	if err := commands.Execute(root); err != nil {
		os.Exit(1)
	}
}
