package main

import (
	"os"

	"github.com/minic-lang/minic/cmd/minic/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
