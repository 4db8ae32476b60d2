package main

import (
	"os"

	"github.com/evfleet/ocppcore/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
