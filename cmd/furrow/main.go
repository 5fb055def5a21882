package main

import (
	"os"

	"github.com/furrow-dev/furrow/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
