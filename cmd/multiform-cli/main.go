package main

import (
	"os"

	"github.com/goliatone/go-multiform/cmd/multiform-cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
