// Command docgate runs the document ingestion and query gateway.
package main

import (
	"context"
	"os"

	"github.com/custodia-labs/docgate/internal/adapters/driving/cli"
)

// version is set at build time via -ldflags "-X main.version=...".
var version string

func main() {
	cli.SetVersion(version)
	if err := cli.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
