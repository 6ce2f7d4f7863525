// gctlogin - Google account switcher for developer tools
package main

import (
	"fmt"
	"os"

	"github.com/kevinelliott/gctlogin/internal/cli"
	"github.com/kevinelliott/gctlogin/pkg/config"
)

// Version information (set by build flags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Load configuration
	loader := config.NewLoader()
	cfg, err := loader.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	root := cli.NewRootCommand(cfg, version, commit, date)
	if err := root.Execute(); err != nil {
		cli.PrintError("%v", err)
		os.Exit(1)
	}
}
