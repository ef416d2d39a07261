package main

import (
	"context"
	"fmt"
	"os"

	"releve/internal/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := cli.Execute(context.Background(), version, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "releve:", err)
		os.Exit(1)
	}
}
