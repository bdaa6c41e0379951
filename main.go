// Package main is the entry point for gopck.
package main

import (
	"os"

	"github.com/charmbracelet/log"

	"github.com/idelchi/gopck/internal/commands"
	"github.com/idelchi/gopck/internal/fileutil"
)

// Global variable for CI stamping.
var version = "unknown - unofficial & generated by unknown"

func main() {
	root := commands.NewRootCommand(version, fileutil.NewOSFS())

	if err := root.Execute(); err != nil {
		log.NewWithOptions(os.Stderr, log.Options{Prefix: "gopck"}).Error(err)
		os.Exit(1)
	}
}
