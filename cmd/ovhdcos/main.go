// Package main is the entry point for the ovhdcos CLI.
//
// ovhdcos provisions a set of OVH Public Cloud instances, installs DC/OS on
// them with the DC/OS installer and deletes the instances again when it
// exits. OVH API credentials are read from OVH_* environment variables, a
// .env file in the working directory or ovh.conf.
//
// Commands: deploy, catalog, version.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/imamik/ovhdcos/cmd/ovhdcos/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "failed to load .env:", err)
		os.Exit(1)
	}

	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
