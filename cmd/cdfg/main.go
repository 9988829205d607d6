// Package main implements the cdfg CLI.
// It builds control/data flow graphs for functions of LLVM IR text modules.
package main

import (
	"os"

	"github.com/l3aro/go-cdfg/cmd/cdfg/commands"
)

var version = "dev"

func main() {
	commands.RootCmd.Version = version
	commands.RootCmd.SetVersionTemplate(`cdfg version {{.Version}}
`)

	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
