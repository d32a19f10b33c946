package main

import (
	"os"

	"github.com/gcbaptista/go-trademark-similarity/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
