package main

import (
	"os"

	"github.com/lazypower/neurodose/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
