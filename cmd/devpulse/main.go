// main is the entry point for the devpulse CLI.
package main

import (
	"github.com/devpulse/devpulse/cmd"
	"github.com/devpulse/devpulse/internal/contract"
)

func main() {
	if err := cmd.Execute(); err != nil {
		contract.LogFatal("command failed", err)
	}
}
