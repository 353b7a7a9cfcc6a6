package main

import (
	"fmt"
	"os"

	"github.com/danieljhkim/layerctl/internal/cli"
)

var version = "dev"

func main() {
	cli.SetVersion(version)

	if err := cli.Execute(); err != nil {
		if !cli.Reported(err) {
			fmt.Fprintln(os.Stderr, cli.FormatError(err))
		}
		os.Exit(1)
	}
}
