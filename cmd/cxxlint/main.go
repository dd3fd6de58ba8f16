package main

import (
	"os"

	"github.com/cxxlint/cxxlint/internal/adapters/inbound/cli"
)

func main() {
	os.Exit(cli.Execute())
}
